package health

import (
	"context"
	"sync"
	"time"

	"github.com/promptgate/promptgate/pkg/config"
	"github.com/promptgate/promptgate/pkg/domain/usage"
	"github.com/sirupsen/logrus"
)

type Snapshot struct {
	Timestamp       time.Time `json:"timestamp"`
	Status          string    `json:"status"`
	LedgerReachable bool      `json:"ledger_reachable"`
	AvgLatencyMs    float64   `json:"avg_latency_ms"`
	ErrorRate       float64   `json:"error_rate"`
	Samples         int       `json:"samples"`
}

type sample struct {
	latency time.Duration
	failed  bool
}

// Monitor keeps a bounded ring of gateway-reported samples and probes the
// usage ledger on a fixed interval. It only observes the components it
// reports on; a failing probe degrades the snapshot, never the request path.
type Monitor struct {
	ledger   usage.Ledger
	logger   *logrus.Logger
	interval time.Duration

	mu       sync.RWMutex
	ring     []sample
	next     int
	filled   int
	snapshot Snapshot
}

func NewMonitor(ledger usage.Ledger, cfg config.HealthConfig, logger *logrus.Logger) *Monitor {
	// The ring must never be empty: Observe indexes modulo its length.
	size := cfg.SampleSize
	if size < 1 {
		size = 1
	}
	m := &Monitor{
		ledger:   ledger,
		logger:   logger,
		interval: cfg.Interval(),
		ring:     make([]sample, size),
	}
	m.snapshot = Snapshot{
		Timestamp:       time.Now(),
		Status:          "healthy",
		LedgerReachable: true,
	}
	return m
}

// Observe records one completed request. Called from the gateway's hot path,
// so it does nothing but a ring write under the lock.
func (m *Monitor) Observe(latency time.Duration, failed bool) {
	m.mu.Lock()
	m.ring[m.next] = sample{latency: latency, failed: failed}
	m.next = (m.next + 1) % len(m.ring)
	if m.filled < len(m.ring) {
		m.filled++
	}
	m.mu.Unlock()
}

func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// Run ticks until ctx is cancelled. A tick that finds the ledger unreachable
// marks the snapshot degraded instead of raising.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

func (m *Monitor) tick(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	reachable := true
	if err := m.ledger.Ping(probeCtx); err != nil {
		reachable = false
		m.logger.WithError(err).Warn("usage ledger unreachable")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var totalLatency time.Duration
	var failures int
	for i := 0; i < m.filled; i++ {
		totalLatency += m.ring[i].latency
		if m.ring[i].failed {
			failures++
		}
	}

	next := Snapshot{
		Timestamp:       time.Now(),
		LedgerReachable: reachable,
		Samples:         m.filled,
		Status:          "healthy",
	}
	if m.filled > 0 {
		next.AvgLatencyMs = float64(totalLatency.Milliseconds()) / float64(m.filled)
		next.ErrorRate = float64(failures) / float64(m.filled)
	}
	if !reachable {
		next.Status = "degraded"
	}

	m.snapshot = next
}
