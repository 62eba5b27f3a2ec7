package trends

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/gocolly/colly/v2"
)

// MarketplaceScraperConfig configures a MarketplaceScraper.
type MarketplaceScraperConfig struct {
	Name string // Source name (default: marketplace)

	// SearchURL is a template with one %s for the escaped keyword.
	SearchURL string

	// CountSelector locates the element holding the result count. The
	// data-result-count attribute is preferred over element text.
	CountSelector string

	UserAgent string
	Timeout   time.Duration
	Delay     time.Duration // Pause between keyword requests
	Logger    *slog.Logger
}

// MarketplaceScraper estimates demand from the number of marketplace search
// results for a keyword. The count is a weak proxy for search volume.
type MarketplaceScraper struct {
	name          string
	searchURL     string
	countSelector string
	userAgent     string
	timeout       time.Duration
	delay         time.Duration
	logger        *slog.Logger
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// NewMarketplaceScraper creates a scraper.
func NewMarketplaceScraper(cfg MarketplaceScraperConfig) *MarketplaceScraper {
	if cfg.Name == "" {
		cfg.Name = SourceMarketplace
	}
	if cfg.CountSelector == "" {
		cfg.CountSelector = "[data-result-count]"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &MarketplaceScraper{
		name:          cfg.Name,
		searchURL:     cfg.SearchURL,
		countSelector: cfg.CountSelector,
		userAgent:     cfg.UserAgent,
		timeout:       cfg.Timeout,
		delay:         cfg.Delay,
		logger:        cfg.Logger.With("component", "marketplace_scraper", "source", cfg.Name),
	}
}

// Name implements VolumeEstimator.
func (s *MarketplaceScraper) Name() string {
	return s.name
}

// Availability implements VolumeEstimator.
func (s *MarketplaceScraper) Availability() Availability {
	if s.searchURL == "" {
		return AvailabilityUnavailable
	}
	return AvailabilityLive
}

// EstimateVolume implements VolumeEstimator. Keywords whose page cannot be
// fetched or has no count are omitted. It fails only when every keyword fails.
func (s *MarketplaceScraper) EstimateVolume(ctx context.Context, keywords []string) (map[string]int, error) {
	if s.searchURL == "" {
		return nil, fmt.Errorf("%w: %s: search url not configured", ErrSourceUnavailable, s.name)
	}

	c := colly.NewCollector(
		colly.UserAgent(s.userAgent),
		colly.AllowURLRevisit(),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(s.timeout)

	var current string
	var found bool
	volumes := make(map[string]int, len(keywords))

	c.OnHTML(s.countSelector, func(e *colly.HTMLElement) {
		if found {
			return
		}
		raw := e.Attr("data-result-count")
		if raw == "" {
			raw = e.Text
		}
		if n, ok := ParseCount(raw); ok {
			volumes[current] = n
			found = true
		}
	})

	var errs []error
	for i, kw := range keywords {
		if i > 0 && s.delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.delay):
			}
		}

		current, found = kw, false
		target := fmt.Sprintf(s.searchURL, url.QueryEscape(kw))
		if err := c.Visit(target); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Warn("marketplace search failed", "keyword", kw, "error", err)
			errs = append(errs, err)
			continue
		}
		if !found {
			s.logger.Debug("no result count on page", "keyword", kw, "url", target)
		}
	}

	if len(volumes) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return volumes, nil
}

// ParseCount extracts the first integer from text such as "12,345 results".
func ParseCount(text string) (int, bool) {
	var digits strings.Builder
	started := false
	for _, r := range text {
		switch {
		case unicode.IsDigit(r):
			digits.WriteRune(r)
			started = true
		case started && (r == ',' || r == '.' || r == ' '):
			// thousands separator
		case started:
			n, err := strconv.Atoi(digits.String())
			return n, err == nil
		}
	}
	if !started {
		return 0, false
	}
	n, err := strconv.Atoi(digits.String())
	return n, err == nil
}
