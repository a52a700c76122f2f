// Package news aggregates market headlines from RSS feeds. Individual feed
// failures degrade to fewer headlines, never to an error.
package news

import (
	"context"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"
)

// DefaultFeeds are the market feeds used when none are configured.
var DefaultFeeds = []string{
	"https://www.moneycontrol.com/rss/markets.xml",
	"https://www.business-standard.com/rss/markets-5.rss",
	"https://www.livemint.com/rss/markets",
}

// headlinesPerFeed caps how many entries each feed contributes.
const headlinesPerFeed = 10

// fetchTimeout bounds a single feed fetch.
const fetchTimeout = 10 * time.Second

// Headline is one aggregated news item.
type Headline struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Published string `json:"published,omitempty"`
	Summary   string `json:"summary,omitempty"`
	Source    string `json:"source"`
}

// Service fetches and aggregates feeds.
type Service struct {
	parser *gofeed.Parser
	feeds  []string
	log    zerolog.Logger
}

// NewService creates a news service over the given feed URLs.
func NewService(feeds []string, log zerolog.Logger) *Service {
	if len(feeds) == 0 {
		feeds = DefaultFeeds
	}
	return &Service{
		parser: gofeed.NewParser(),
		feeds:  feeds,
		log:    log.With().Str("service", "news").Logger(),
	}
}

// Headlines fetches every configured feed and returns up to ten headlines
// per feed, in feed order. Feeds that fail are skipped.
func (s *Service) Headlines(ctx context.Context) []Headline {
	var headlines []Headline

	for _, feedURL := range s.feeds {
		fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
		feed, err := s.parser.ParseURLWithContext(feedURL, fetchCtx)
		cancel()

		if err != nil {
			s.log.Warn().Err(err).Str("feed", feedURL).Msg("Feed fetch failed, skipping")
			continue
		}

		source := feed.Title
		if source == "" {
			source = feedURL
		}

		for i, item := range feed.Items {
			if i >= headlinesPerFeed {
				break
			}
			headlines = append(headlines, Headline{
				Title:     item.Title,
				Link:      item.Link,
				Published: item.Published,
				Summary:   item.Description,
				Source:    source,
			})
		}
	}

	return headlines
}
