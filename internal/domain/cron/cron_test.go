package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tensaku-lab/backend/internal/entity"
	"github.com/tensaku-lab/backend/pkg/testutil"
)

type mockSettler struct {
	pending []entity.Post
	failing map[string]bool
	settled []string
}

func (s *mockSettler) Pending(context.Context, int) ([]entity.Post, error) {
	return s.pending, nil
}

func (s *mockSettler) Settle(_ context.Context, postID string) (*entity.Post, error) {
	if s.failing[postID] {
		return nil, errors.New("payout failed")
	}

	s.settled = append(s.settled, postID)
	return &entity.Post{Base: entity.Base{ID: postID}}, nil
}

func Test_SettlementRetryCronJob_Do(t *testing.T) {
	settler := &mockSettler{
		pending: []entity.Post{
			{Base: entity.Base{ID: "p1"}},
			{Base: entity.Base{ID: "p2"}},
			{Base: entity.Base{ID: "p3"}},
		},
		failing: map[string]bool{"p2": true},
	}

	job := NewSettlementRetryCronJob(settler, time.Minute)
	job.Do(testutil.MockContext())

	require.Equal(t, []string{"p1", "p3"}, settler.settled)
	require.True(t, job.RunNow())
	require.WithinDuration(t, time.Now().Add(time.Minute), job.Next(), time.Second)
}

type countingJob struct {
	runs atomic.Int32
}

func (j *countingJob) Do(context.Context) { j.runs.Add(1) }

func (j *countingJob) RunNow() bool { return true }

func (j *countingJob) Next() time.Time { return time.Now().Add(10 * time.Millisecond) }

func Test_CronJobManager(t *testing.T) {
	ctx := context.Background()
	job := &countingJob{}

	manager := NewCronJobManager()
	manager.Register(job)

	done := make(chan struct{})
	go func() {
		manager.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return job.runs.Load() >= 3 }, time.Second, 5*time.Millisecond)

	manager.Cancel(ctx)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("manager did not stop")
	}
}
