package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrObjectNotFound is returned when the configured key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	Client   ObjectGetter
	Bucket   string
	Key      string
	CacheTTL time.Duration // Minimum time between fetches (default: 5 min)
	Logger   *slog.Logger
}

// LoadResult is the outcome of a Fetch.
type LoadResult struct {
	Data       []byte
	ETag       string
	FetchedAt  time.Time
	NotChanged bool // Cached copy is still current
}

// Loader fetches a JSON document from object storage with ETag revalidation.
type Loader struct {
	client   ObjectGetter
	bucket   string
	key      string
	cacheTTL time.Duration
	logger   *slog.Logger

	mu        sync.Mutex
	etag      string
	lastFetch time.Time
	lastCheck time.Time
}

// NewLoader creates a Loader.
func NewLoader(cfg LoaderConfig) *Loader {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Loader{
		client:   cfg.Client,
		bucket:   cfg.Bucket,
		key:      cfg.Key,
		cacheTTL: cfg.CacheTTL,
		logger:   cfg.Logger.With("bucket", cfg.Bucket, "key", cfg.Key),
	}
}

// IsEnabled returns true if a client and key are configured.
func (l *Loader) IsEnabled() bool {
	return l.client != nil && l.key != ""
}

// Fetch returns the document. Within CacheTTL of the last check, or when the
// stored ETag still matches, the result has NotChanged set and no Data.
func (l *Loader) Fetch(ctx context.Context) (*LoadResult, error) {
	if !l.IsEnabled() {
		return nil, ErrObjectNotFound
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.lastCheck.IsZero() && time.Since(l.lastCheck) < l.cacheTTL {
		return &LoadResult{ETag: l.etag, NotChanged: true}, nil
	}

	input := &s3.GetObjectInput{Bucket: &l.bucket, Key: &l.key}
	if l.etag != "" {
		quoted := `"` + l.etag + `"`
		input.IfNoneMatch = &quoted
	}

	resp, err := l.client.GetObject(ctx, input)
	l.lastCheck = time.Now()
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			l.logger.Debug("config object not found")
			return nil, ErrObjectNotFound
		}
		var coded interface{ ErrorCode() string }
		if errors.As(err, &coded) && coded.ErrorCode() == "NotModified" {
			return &LoadResult{ETag: l.etag, NotChanged: true}, nil
		}
		l.logger.Error("failed to fetch config object", "error", err)
		return nil, fmt.Errorf("fetch s3://%s/%s: %w", l.bucket, l.key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", l.bucket, l.key, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("s3://%s/%s is not valid JSON", l.bucket, l.key)
	}

	if resp.ETag != nil {
		l.etag = strings.Trim(*resp.ETag, `"`)
	}
	l.lastFetch = l.lastCheck
	l.logger.Debug("config object fetched", "etag", l.etag, "size", len(data))

	return &LoadResult{Data: data, ETag: l.etag, FetchedAt: l.lastFetch}, nil
}

// LoaderStats describes the loader's cache state.
type LoaderStats struct {
	ETag      string    `json:"etag"`
	LastFetch time.Time `json:"last_fetch"`
	LastCheck time.Time `json:"last_check"`
	CacheTTL  string    `json:"cache_ttl"`
	Bucket    string    `json:"bucket"`
	Key       string    `json:"key"`
}

// Stats returns current loader statistics.
func (l *Loader) Stats() LoaderStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return LoaderStats{
		ETag:      l.etag,
		LastFetch: l.lastFetch,
		LastCheck: l.lastCheck,
		CacheTTL:  l.cacheTTL.String(),
		Bucket:    l.bucket,
		Key:       l.key,
	}
}
