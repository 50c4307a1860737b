package health

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/promptgate/promptgate/pkg/config"
	"github.com/promptgate/promptgate/pkg/domain/usage"
	"github.com/promptgate/promptgate/pkg/domain/usage/mocks"
)

func testMonitor(ledger usage.Ledger, samples int) *Monitor {
	return NewMonitor(ledger, config.HealthConfig{IntervalSeconds: 300, SampleSize: samples}, logrus.New())
}

func TestMonitor_InitialSnapshotHealthy(t *testing.T) {
	m := testMonitor(new(mocks.MockLedger), 10)

	snap := m.Snapshot()

	assert.Equal(t, "healthy", snap.Status)
	assert.True(t, snap.LedgerReachable)
	assert.Zero(t, snap.Samples)
}

func TestMonitor_TickComputesRates(t *testing.T) {
	ledger := new(mocks.MockLedger)
	ledger.On("Ping", mock.Anything).Return(nil)

	m := testMonitor(ledger, 10)
	m.Observe(100*time.Millisecond, false)
	m.Observe(300*time.Millisecond, false)
	m.Observe(200*time.Millisecond, true)

	m.tick(context.Background())
	snap := m.Snapshot()

	assert.Equal(t, "healthy", snap.Status)
	assert.True(t, snap.LedgerReachable)
	assert.Equal(t, 3, snap.Samples)
	assert.InDelta(t, 200, snap.AvgLatencyMs, 1)
	assert.InDelta(t, 1.0/3.0, snap.ErrorRate, 0.001)
}

func TestMonitor_LedgerUnreachableDegrades(t *testing.T) {
	ledger := new(mocks.MockLedger)
	ledger.On("Ping", mock.Anything).Return(usage.ErrStorageUnavailable)

	m := testMonitor(ledger, 10)
	m.tick(context.Background())
	snap := m.Snapshot()

	assert.Equal(t, "degraded", snap.Status)
	assert.False(t, snap.LedgerReachable)
}

func TestMonitor_RingBufferBounded(t *testing.T) {
	ledger := new(mocks.MockLedger)
	ledger.On("Ping", mock.Anything).Return(nil)

	m := testMonitor(ledger, 4)
	// Four slow failures, then four fast successes: the successes must
	// evict the failures entirely.
	for i := 0; i < 4; i++ {
		m.Observe(time.Second, true)
	}
	for i := 0; i < 4; i++ {
		m.Observe(10*time.Millisecond, false)
	}

	m.tick(context.Background())
	snap := m.Snapshot()

	assert.Equal(t, 4, snap.Samples)
	assert.Zero(t, snap.ErrorRate)
	assert.InDelta(t, 10, snap.AvgLatencyMs, 1)
}

func TestMonitor_ZeroSampleSizeDoesNotPanic(t *testing.T) {
	m := testMonitor(new(mocks.MockLedger), 0)

	assert.NotPanics(t, func() {
		m.Observe(10*time.Millisecond, false)
	})
}

func TestMonitor_RunStopsOnCancel(t *testing.T) {
	ledger := new(mocks.MockLedger)
	ledger.On("Ping", mock.Anything).Return(nil)

	m := testMonitor(ledger, 10)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop on context cancellation")
	}
}
