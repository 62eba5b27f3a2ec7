// Package shutdown stops an idle server so scale-to-zero platforms can park it.
package shutdown

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// BusyFunc reports whether background work, such as a running generation,
// should keep the server up.
type BusyFunc func() bool

// IdleMonitorConfig holds configuration for the idle monitor.
type IdleMonitorConfig struct {
	Timeout time.Duration // 0 disables the monitor
	Logger  *slog.Logger
	// ExcludePaths are path prefixes that do not count as activity (probes).
	ExcludePaths []string
	// BackgroundWorkCheck keeps the server up while it returns true.
	BackgroundWorkCheck BusyFunc
	// CheckInterval overrides the polling interval derived from Timeout.
	CheckInterval time.Duration
}

// IdleMonitor tracks request activity and closes ShutdownChan once no request
// or background work has been seen for Timeout.
type IdleMonitor struct {
	cfg      IdleMonitorConfig
	logger   *slog.Logger
	active   atomic.Int64
	mu       sync.Mutex
	lastSeen time.Time
	idle     chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
}

// NewIdleMonitor creates an idle monitor.
func NewIdleMonitor(cfg IdleMonitorConfig) *IdleMonitor {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = min(max(cfg.Timeout/6, 5*time.Second), 30*time.Second)
	}
	return &IdleMonitor{
		cfg:      cfg,
		logger:   cfg.Logger.With("component", "idle_monitor"),
		lastSeen: time.Now(),
		idle:     make(chan struct{}),
		stop:     make(chan struct{}),
	}
}

// Start begins monitoring. It does nothing when the timeout is 0.
func (m *IdleMonitor) Start() {
	if m.cfg.Timeout <= 0 {
		m.logger.Debug("idle shutdown disabled")
		return
	}
	m.logger.Info("idle shutdown enabled", "timeout", m.cfg.Timeout, "exclude_paths", m.cfg.ExcludePaths)
	go m.run()
}

// Stop stops the monitor. Safe to call more than once.
func (m *IdleMonitor) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

// ShutdownChan is closed when the idle timeout is reached.
func (m *IdleMonitor) ShutdownChan() <-chan struct{} {
	return m.idle
}

// Middleware counts requests outside the excluded paths as activity.
func (m *IdleMonitor) Middleware(next http.Handler) http.Handler {
	if m.cfg.Timeout <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.excluded(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		m.active.Add(1)
		m.touch()
		defer func() {
			m.active.Add(-1)
			m.touch()
		}()
		next.ServeHTTP(w, r)
	})
}

func (m *IdleMonitor) excluded(path string) bool {
	for _, p := range m.cfg.ExcludePaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func (m *IdleMonitor) touch() {
	m.mu.Lock()
	m.lastSeen = time.Now()
	m.mu.Unlock()
}

func (m *IdleMonitor) run() {
	ticker := time.NewTicker(m.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			if m.check() {
				close(m.idle)
				return
			}
		}
	}
}

// check reports whether the server has been idle for the full timeout.
// Busy background work restarts the idle period.
func (m *IdleMonitor) check() bool {
	busy := m.cfg.BackgroundWorkCheck != nil && m.cfg.BackgroundWorkCheck()
	if m.active.Load() > 0 || busy {
		m.touch()
		return false
	}

	m.mu.Lock()
	idleFor := time.Since(m.lastSeen)
	m.mu.Unlock()

	if idleFor < m.cfg.Timeout {
		m.logger.Debug("idle check", "idle_for", idleFor)
		return false
	}
	m.logger.Info("idle timeout reached", "idle_for", idleFor, "timeout", m.cfg.Timeout)
	return true
}
