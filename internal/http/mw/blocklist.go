package mw

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jmylchreest/pod-pipeline/internal/storage"
)

// BlocklistSource returns the current blocklist document.
type BlocklistSource interface {
	IsEnabled() bool
	Fetch(ctx context.Context) (*storage.LoadResult, error)
}

// IPBlocklist rejects requests from IPs and CIDR ranges listed in a JSON
// array held in object storage. It fails open: requests pass while the
// list is unavailable.
type IPBlocklist struct {
	source BlocklistSource
	logger *slog.Logger

	mu         sync.RWMutex
	blocked    map[string]bool
	cidrs      []*net.IPNet
	refreshing bool
}

// NewIPBlocklist creates a blocklist fed by source.
func NewIPBlocklist(source BlocklistSource, logger *slog.Logger) *IPBlocklist {
	if logger == nil {
		logger = slog.Default()
	}
	return &IPBlocklist{
		source:  source,
		blocked: make(map[string]bool),
		logger:  logger.With("component", "blocklist"),
	}
}

// Middleware returns the HTTP middleware handler.
func (b *IPBlocklist) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if b.source == nil || !b.source.IsEnabled() {
				next.ServeHTTP(w, r)
				return
			}

			b.maybeRefresh()

			clientIP := extractIP(r)
			if b.isBlocked(clientIP) {
				b.logger.Warn("blocked request", "ip", clientIP, "path", r.URL.Path)
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// maybeRefresh starts a background refresh unless one is running. The
// loader's cache TTL decides whether storage is actually contacted.
func (b *IPBlocklist) maybeRefresh() {
	b.mu.Lock()
	if b.refreshing {
		b.mu.Unlock()
		return
	}
	b.refreshing = true
	b.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Refresh(ctx)
	}()
}

// Refresh reloads the list from its source.
func (b *IPBlocklist) Refresh(ctx context.Context) {
	defer func() {
		b.mu.Lock()
		b.refreshing = false
		b.mu.Unlock()
	}()

	res, err := b.source.Fetch(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrObjectNotFound) {
			b.logger.Error("failed to fetch blocklist", "error", err)
		}
		return
	}
	if res.NotChanged {
		return
	}

	var entries []string
	if err := json.Unmarshal(res.Data, &entries); err != nil {
		b.logger.Error("failed to parse blocklist", "error", err)
		return
	}
	blocked, cidrs := b.parse(entries)

	b.mu.Lock()
	b.blocked = blocked
	b.cidrs = cidrs
	b.mu.Unlock()

	b.logger.Info("blocklist refreshed", "ips", len(blocked), "cidrs", len(cidrs), "etag", res.ETag)
}

func (b *IPBlocklist) parse(entries []string) (map[string]bool, []*net.IPNet) {
	blocked := make(map[string]bool)
	var cidrs []*net.IPNet
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			_, ipNet, err := net.ParseCIDR(entry)
			if err != nil {
				b.logger.Warn("invalid CIDR in blocklist", "entry", entry)
				continue
			}
			cidrs = append(cidrs, ipNet)
			continue
		}
		if ip := net.ParseIP(entry); ip != nil {
			blocked[ip.String()] = true
		} else {
			b.logger.Warn("invalid IP in blocklist", "entry", entry)
		}
	}
	return blocked, cidrs
}

func (b *IPBlocklist) isBlocked(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.blocked[ip.String()] {
		return true
	}
	for _, cidr := range b.cidrs {
		if cidr.Contains(ip) {
			return true
		}
	}
	return false
}

// extractIP gets the client IP from the request.
// Assumes middleware.RealIP has already been applied.
func extractIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
