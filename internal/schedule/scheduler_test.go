package schedule

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func noop(context.Context) error { return nil }

func TestNew_Validates(t *testing.T) {
	_, err := New(" ", nil, noop, nil)
	require.ErrorContains(t, err, "must not be empty")

	_, err = New("0 9 * * *", nil, nil, nil)
	require.ErrorContains(t, err, "job")

	_, err = New("not a cron", nil, noop, nil)
	require.ErrorContains(t, err, "parse")
}

func TestNext_DailyInLocation(t *testing.T) {
	s, err := New("0 9 * * *", time.UTC, noop, quietLogger())
	require.NoError(t, err)
	from := time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC), s.Next(from).UTC())

	madrid := time.FixedZone("CEST", 2*60*60)
	s, err = New("0 9 * * *", madrid, noop, quietLogger())
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 10, 15, 7, 0, 0, 0, time.UTC), s.Next(from).UTC())
}

func TestRun_FiresJobAndStopsOnCancel(t *testing.T) {
	var runs atomic.Int32
	fired := make(chan struct{}, 1)
	job := func(context.Context) error {
		runs.Add(1)
		select {
		case fired <- struct{}{}:
		default:
		}
		return errors.New("logged, not fatal")
	}
	s, err := New("@every 1s", nil, job, quietLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("job never fired")
	}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	require.GreaterOrEqual(t, runs.Load(), int32(1))
}
