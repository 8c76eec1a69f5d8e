package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/filevault/pkg/configs"
)

// yearly 实际上不会在测试期间自然触发.
const yearly = "0 0 1 1 *"

func newScheduler(t *testing.T) *Scheduler {
	t.Helper()

	s, err := NewScheduler(configs.JobsConfig{Timezone: "UTC", StopTimeout: time.Second})
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Stop() })

	return s
}

func TestNewScheduler_BadTimezone(t *testing.T) {
	_, err := NewScheduler(configs.JobsConfig{Timezone: "Mars/Olympus"})
	assert.True(t, errors.Is(err, errors.NotValid))
}

func TestAddCron(t *testing.T) {
	s := newScheduler(t)
	noop := func(context.Context) error { return nil }

	require.NoError(t, s.AddCron(context.Background(), "b", yearly, noop))
	require.NoError(t, s.AddCron(context.Background(), "a", yearly, noop))

	err := s.AddCron(context.Background(), "a", yearly, noop)
	assert.True(t, errors.Is(err, errors.AlreadyExists))

	err = s.AddCron(context.Background(), "bad", "not a cron", noop)
	assert.True(t, errors.Is(err, errors.NotValid))

	infos := s.GetJobInfos()
	require.Len(t, infos, 2)
	assert.Equal(t, "a", infos[0].Name)
	assert.Equal(t, StatusScheduled, infos[0].Status)
	assert.False(t, infos[0].NextRun.IsZero())
}

func TestRunNow(t *testing.T) {
	s := newScheduler(t)

	calls := make(chan struct{}, 1)
	require.NoError(t, s.AddCron(context.Background(), "sweep", yearly, func(context.Context) error {
		calls <- struct{}{}
		return nil
	}))

	s.Start()
	require.NoError(t, s.RunNow("sweep"))

	select {
	case <-calls:
	case <-time.After(5 * time.Second):
		t.Fatal("job was not triggered")
	}

	require.Eventually(t, func() bool {
		info, err := s.GetJobInfoByName("sweep")
		return err == nil && !info.LastSuccess.IsZero()
	}, 5*time.Second, 10*time.Millisecond)

	assert.True(t, errors.Is(s.RunNow("missing"), errors.NotFound))
}

func TestRunNow_RecordsFailure(t *testing.T) {
	s := newScheduler(t)

	require.NoError(t, s.AddCron(context.Background(), "boom", yearly, func(context.Context) error {
		panic("kaboom")
	}))

	s.Start()
	require.NoError(t, s.RunNow("boom"))

	require.Eventually(t, func() bool {
		info, err := s.GetJobInfoByName("boom")
		return err == nil && info.Status == StatusError
	}, 5*time.Second, 10*time.Millisecond)

	info, err := s.GetJobInfoByName("boom")
	require.NoError(t, err)
	assert.Contains(t, info.Error, "kaboom")
	assert.True(t, info.LastSuccess.IsZero())
}

func TestRemoveJobByName(t *testing.T) {
	s := newScheduler(t)

	require.NoError(t, s.AddCron(context.Background(), "x", yearly, func(context.Context) error { return nil }))
	require.NoError(t, s.RemoveJobByName("x"))
	assert.Empty(t, s.GetJobInfos())
	assert.True(t, errors.Is(s.RemoveJobByName("x"), errors.NotFound))
}
