package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) Refresh(ctx context.Context) error {
	r.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("refresh without deadline")
	}
	return r.err
}

func TestDisabledSchedulerNeverRuns(t *testing.T) {
	r := &countingRefresher{}
	s := New(r, 0, time.Second)
	require.NoError(t, s.Start())
	defer s.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, r.calls.Load())
}

func TestSchedulerRefreshesPeriodically(t *testing.T) {
	r := &countingRefresher{}
	s := New(r, 20*time.Millisecond, time.Second)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return r.calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestRunSurvivesRefreshErrors(t *testing.T) {
	r := &countingRefresher{err: errors.New("upstream down")}
	s := New(r, time.Hour, 0)

	s.run()
	s.run()
	assert.EqualValues(t, 2, r.calls.Load())
}
