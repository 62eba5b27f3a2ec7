package trends

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

// DefaultSerpAPIBaseURL is the SerpAPI endpoint serving Google Trends data.
const DefaultSerpAPIBaseURL = "https://serpapi.com"

// GoogleTrendsOpts configures a GoogleTrendsClient.
type GoogleTrendsOpts struct {
	BaseURL string
	APIKey  string
	Region  string // Default geo for interest queries (default: GB)
}

// GoogleTrendsClient reads trending searches and interest series through a
// SerpAPI-compatible JSON API.
type GoogleTrendsClient struct {
	httpClient *resty.Client
	apiKey     string
	region     string
}

// NewGoogleTrendsClient creates a client.
func NewGoogleTrendsClient(opts GoogleTrendsOpts) *GoogleTrendsClient {
	c := GoogleTrendsClient{apiKey: opts.APIKey, region: opts.Region}
	baseURL := DefaultSerpAPIBaseURL
	if opts.BaseURL != "" {
		baseURL = opts.BaseURL
	}
	if c.region == "" {
		c.region = "GB"
	}
	c.httpClient = resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json")

	return &c
}

type trendingNowResponse struct {
	TrendingSearches []struct {
		Query string `json:"query"`
	} `json:"trending_searches"`
	Error string `json:"error"`
}

type interestOverTimeResponse struct {
	InterestOverTime struct {
		TimelineData []struct {
			Date   string `json:"date"`
			Values []struct {
				Query          string  `json:"query"`
				ExtractedValue float64 `json:"extracted_value"`
			} `json:"values"`
		} `json:"timeline_data"`
	} `json:"interest_over_time"`
	Error string `json:"error"`
}

func (c *GoogleTrendsClient) req(ctx context.Context, result any) *resty.Request {
	return c.httpClient.
		NewRequest().
		SetContext(ctx).
		SetQueryParam("api_key", c.apiKey).
		SetResult(result)
}

// TrendingKeywords implements SearchTrendSource.
func (c *GoogleTrendsClient) TrendingKeywords(ctx context.Context, region string, limit int) ([]string, error) {
	if region == "" {
		region = c.region
	}
	result := &trendingNowResponse{}

	_, err := handleError(c.req(ctx, result).
		SetQueryParams(map[string]string{
			"engine": "google_trends_trending_now",
			"geo":    region,
		}).
		Get("/search.json"))
	if err != nil {
		return nil, err
	}
	if result.Error != "" {
		return nil, fmt.Errorf("trending searches: %s", result.Error)
	}

	keywords := make([]string, 0, len(result.TrendingSearches))
	for _, s := range result.TrendingSearches {
		if s.Query == "" {
			continue
		}
		keywords = append(keywords, s.Query)
		if limit > 0 && len(keywords) == limit {
			break
		}
	}
	return keywords, nil
}

// InterestSeries implements SearchTrendSource.
func (c *GoogleTrendsClient) InterestSeries(ctx context.Context, keywords []string, timeframe string) (map[string][]float64, error) {
	if len(keywords) == 0 {
		return map[string][]float64{}, nil
	}
	if len(keywords) > MaxInterestBatch {
		return nil, fmt.Errorf("interest series accepts at most %d keywords, got %d", MaxInterestBatch, len(keywords))
	}
	if timeframe == "" {
		timeframe = DefaultTimeframe
	}
	result := &interestOverTimeResponse{}

	_, err := handleError(c.req(ctx, result).
		SetQueryParams(map[string]string{
			"engine":    "google_trends",
			"q":         strings.Join(keywords, ","),
			"data_type": "TIMESERIES",
			"date":      timeframe,
			"geo":       c.region,
		}).
		Get("/search.json"))
	if err != nil {
		return nil, err
	}
	if result.Error != "" {
		return nil, fmt.Errorf("interest over time: %s", result.Error)
	}

	// Values are matched to the requested keyword case-insensitively.
	requested := make(map[string]string, len(keywords))
	for _, kw := range keywords {
		requested[strings.ToLower(kw)] = kw
	}

	series := make(map[string][]float64, len(keywords))
	for _, point := range result.InterestOverTime.TimelineData {
		for _, v := range point.Values {
			kw, ok := requested[strings.ToLower(v.Query)]
			if !ok {
				continue
			}
			series[kw] = append(series[kw], v.ExtractedValue)
		}
	}
	return series, nil
}

// handleError turns a >399 response into an error. Without this, failing
// responses would have a nil error.
func handleError(res *resty.Response, err error) (*resty.Response, error) {
	if err != nil {
		return res, err
	}
	if res.IsError() {
		return res, fmt.Errorf("request failed: %s %s (status: %d)", res.Request.Method, res.Request.URL, res.StatusCode())
	}
	return res, nil
}
