package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingWarmer struct {
	calls atomic.Int32
	err   error
}

func (w *countingWarmer) WarmCache(ctx context.Context) error {
	w.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("missing deadline")
	}
	return w.err
}

type countingEvictor struct {
	calls   atomic.Int32
	maxIdle atomic.Int64
}

func (e *countingEvictor) EvictIdle(maxIdle time.Duration) int {
	e.calls.Add(1)
	e.maxIdle.Store(int64(maxIdle))
	return 2
}

func TestScheduler_RunsJobs(t *testing.T) {
	warmer := &countingWarmer{}
	evictor := &countingEvictor{}

	s := NewScheduler(warmer, evictor, Options{
		WarmSpec:  "@every 1s",
		EvictSpec: "@every 1s",
		MaxIdle:   time.Minute,
	})
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return warmer.calls.Load() > 0 && evictor.calls.Load() > 0
	}, 3*time.Second, 50*time.Millisecond)
	assert.Equal(t, int64(time.Minute), evictor.maxIdle.Load())
}

func TestScheduler_InvalidSpec(t *testing.T) {
	s := NewScheduler(&countingWarmer{}, &countingEvictor{}, Options{WarmSpec: "every now and then"})
	assert.Error(t, s.Start())
}

func TestScheduler_DisabledJobs(t *testing.T) {
	s := NewScheduler(nil, nil, Options{WarmSpec: "@every 1s", EvictSpec: "@every 1s"})
	require.NoError(t, s.Start())
	assert.Empty(t, s.cron.Entries())
	s.Stop()
}

func TestScheduler_DirectRuns(t *testing.T) {
	warmer := &countingWarmer{err: errors.New("catalog down")}
	evictor := &countingEvictor{}
	s := NewScheduler(warmer, evictor, Options{})

	s.WarmCatalog()
	assert.Equal(t, int32(1), warmer.calls.Load())

	assert.Equal(t, 2, s.EvictIdleCarts())
	assert.Equal(t, int64(30*time.Minute), evictor.maxIdle.Load())
}
