package news

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLog() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

func rssFeed(title string, items int) string {
	body := fmt.Sprintf(`<?xml version="1.0"?><rss version="2.0"><channel><title>%s</title>`, title)
	for i := 0; i < items; i++ {
		body += fmt.Sprintf(
			`<item><title>Headline %d</title><link>https://example.com/%d</link><description>Summary %d</description></item>`,
			i, i, i)
	}
	return body + `</channel></rss>`
}

func TestHeadlines_AggregatesFeeds(t *testing.T) {
	feedA := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssFeed("Feed A", 2))
	}))
	defer feedA.Close()

	feedB := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssFeed("Feed B", 1))
	}))
	defer feedB.Close()

	svc := NewService([]string{feedA.URL, feedB.URL}, testLog())
	headlines := svc.Headlines(context.Background())

	require.Len(t, headlines, 3)
	assert.Equal(t, "Feed A", headlines[0].Source)
	assert.Equal(t, "Headline 0", headlines[0].Title)
	assert.Equal(t, "Feed B", headlines[2].Source)
}

func TestHeadlines_CapsPerFeed(t *testing.T) {
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssFeed("Big Feed", 25))
	}))
	defer feed.Close()

	svc := NewService([]string{feed.URL}, testLog())
	headlines := svc.Headlines(context.Background())

	assert.Len(t, headlines, headlinesPerFeed)
}

func TestHeadlines_SkipsFailingFeeds(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssFeed("Working", 1))
	}))
	defer working.Close()

	svc := NewService([]string{broken.URL, working.URL}, testLog())
	headlines := svc.Headlines(context.Background())

	require.Len(t, headlines, 1)
	assert.Equal(t, "Working", headlines[0].Source)
}

func TestNewService_DefaultFeeds(t *testing.T) {
	svc := NewService(nil, testLog())
	assert.Equal(t, DefaultFeeds, svc.feeds)
}
