package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vv031/Stock-Market/pkg/logger"
)

type stubJob struct {
	name     string
	schedule string
	err      error
	runs     atomic.Int32
}

func (j *stubJob) Name() string     { return j.name }
func (j *stubJob) Schedule() string { return j.schedule }
func (j *stubJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	return j.err
}

func TestAddJob(t *testing.T) {
	s := New(logger.Nop())

	require.NoError(t, s.AddJob(&stubJob{name: "b", schedule: "0 0 * * * *"}))
	require.NoError(t, s.AddJob(&stubJob{name: "a", schedule: "@every 1h"}))
	assert.Error(t, s.AddJob(&stubJob{name: "a", schedule: "@every 1h"}), "duplicate name")
	assert.Error(t, s.AddJob(&stubJob{name: "c", schedule: "not a schedule"}))

	assert.Equal(t, []string{"a", "b"}, s.GetAllJobs())
}

func TestRunJob_RecordsHistoryWithoutRetry(t *testing.T) {
	s := New(logger.Nop())
	failing := &stubJob{name: "failing", schedule: "@every 1h", err: errors.New("source down")}
	ok := &stubJob{name: "ok", schedule: "@every 1h"}
	require.NoError(t, s.AddJob(failing))
	require.NoError(t, s.AddJob(ok))

	result, err := s.RunJob("failing")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "source down", result.Error)
	assert.Equal(t, int32(1), failing.runs.Load())

	_, err = s.RunJob("ok")
	require.NoError(t, err)
	_, err = s.RunJob("ok")
	require.NoError(t, err)

	stats := s.GetJobStats()
	assert.Equal(t, 1, stats["failing"].FailureCount)
	assert.NotNil(t, stats["failing"].LastFailure)
	assert.Nil(t, stats["failing"].LastSuccess)
	assert.Equal(t, 2, stats["ok"].SuccessCount)
	assert.Equal(t, 1.0, stats["ok"].SuccessRate)

	_, err = s.RunJob("missing")
	assert.Error(t, err)
}

func TestScheduler_RunsOnSchedule(t *testing.T) {
	s := New(logger.Nop())
	job := &stubJob{name: "tick", schedule: "@every 1s"}
	require.NoError(t, s.AddJob(job))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return job.runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}
	assert.Equal(t, 0.0, h.GetSuccessRate())
	assert.Empty(t, h.GetLatestResults(5))

	for i := 0; i < maxHistory+10; i++ {
		h.AddResult(JobResult{Success: i%2 == 0})
	}
	assert.Len(t, h.Results, maxHistory)
	assert.Len(t, h.GetLatestResults(3), 3)
	assert.InDelta(t, 0.5, h.GetSuccessRate(), 1e-9)
	assert.Len(t, h.GetFailedResults(), maxHistory/2)
}
