package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/masteringmarket/server/internal/database"
)

// SystemHandlers serves system monitoring endpoints.
type SystemHandlers struct {
	log       zerolog.Logger
	databases []*database.DB
	startedAt time.Time
}

// NewSystemHandlers creates system handlers over the given databases.
func NewSystemHandlers(log zerolog.Logger, databases ...*database.DB) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		databases: databases,
		startedAt: time.Now(),
	}
}

type healthResponse struct {
	Status        string            `json:"status"`
	UptimeSeconds float64           `json:"uptime_seconds"`
	CPUPercent    float64           `json:"cpu_percent"`
	MemoryPercent float64           `json:"memory_percent"`
	MemoryUsedMB  float64           `json:"memory_used_mb"`
	Databases     map[string]string `json:"databases"`
}

// HandleHealth handles GET /api/system/health
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(h.startedAt).Seconds(),
		Databases:     make(map[string]string),
	}

	if cpuPercent, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(cpuPercent) > 0 {
		resp.CPUPercent = cpuPercent[0]
	}

	if memStat, err := mem.VirtualMemory(); err == nil {
		resp.MemoryPercent = memStat.UsedPercent
		resp.MemoryUsedMB = float64(memStat.Used) / 1024 / 1024
	}

	for _, db := range h.databases {
		if err := db.QuickCheck(r.Context()); err != nil {
			resp.Databases[db.Name()] = "unreachable"
			resp.Status = "degraded"
		} else {
			resp.Databases[db.Name()] = "ok"
		}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode health response")
	}
}
