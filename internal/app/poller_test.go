package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 60 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 60 * time.Second},
		{"negative failures", -1, 60 * time.Second},
		{"one failure", 1, 2 * time.Minute},
		{"two failures", 2, 4 * time.Minute},
		{"three failures capped", 3, 5 * time.Minute}, // Would be 8m, capped to 5m
		{"many failures capped", 40, 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 64; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

func TestCalculateBackoff_LongBaseIsKept(t *testing.T) {
	if got := calculateBackoff(3, 10*time.Minute); got != 10*time.Minute {
		t.Fatalf("calculateBackoff = %v, want base interval 10m", got)
	}
}

type fakeSession struct{ signedIn atomic.Bool }

func (f *fakeSession) IsAuthenticated() bool { return f.signedIn.Load() }

type countingTarget struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingTarget) Refresh(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.err
}

func (c *countingTarget) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestStartPoller_RefreshesWhileSignedIn(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	session := &fakeSession{}
	session.signedIn.Store(true)
	lofts, pigeons := &countingTarget{}, &countingTarget{}

	done := StartPoller(ctx, session, []Refresher{lofts, pigeons}, 5*time.Millisecond, nil)
	require.Eventually(t, func() bool { return lofts.count() >= 2 && pigeons.count() >= 2 }, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}

func TestStartPoller_SkipsWhenSignedOut(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	target := &countingTarget{}

	StartPoller(ctx, &fakeSession{}, []Refresher{target}, 2*time.Millisecond, nil)
	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, target.count())
}

func TestStartPoller_FailuresDoNotStopPolling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	session := &fakeSession{}
	session.signedIn.Store(true)
	failing := &countingTarget{err: errors.New("offline")}
	healthy := &countingTarget{}

	StartPoller(ctx, session, []Refresher{failing, healthy}, time.Millisecond, nil)
	require.Eventually(t, func() bool { return failing.count() >= 2 }, time.Second, time.Millisecond)
	assert.GreaterOrEqual(t, healthy.count(), 2, "one failing store must not block the others")
}

func TestRefresh_JoinsErrors(t *testing.T) {
	a := &countingTarget{err: errors.New("lofts down")}
	b := &countingTarget{err: errors.New("pigeons down")}
	err := refresh(context.Background(), []Refresher{a, b})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lofts down")
	assert.Contains(t, err.Error(), "pigeons down")
}

func TestRefreshInterval(t *testing.T) {
	configured := 90 * time.Second
	assert.Equal(t, configured, refreshInterval(configured, 0))
	assert.Equal(t, 15*time.Second, refreshInterval(configured, 15))
	assert.Zero(t, refreshInterval(configured, -1), "a negative flag disables refreshing")
	assert.Zero(t, refreshInterval(0, 0))
}
