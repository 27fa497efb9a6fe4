package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"year-progress-bot/internal/usecase"
)

type stubReporter struct {
	out   usecase.Outcome
	err   error
	calls int
}

func (s *stubReporter) Run(_ context.Context) (usecase.Outcome, error) {
	s.calls++
	return s.out, s.err
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, nil)), &buf
}

func scheduledEvent(id string) events.CloudWatchEvent {
	return events.CloudWatchEvent{
		Version:    "0",
		ID:         id,
		DetailType: "Scheduled Event",
		Source:     "aws.events",
		Time:       time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC),
		Region:     "eu-south-2",
		Detail:     json.RawMessage(`{}`),
	}
}

func TestNewHandler_ValidatesDependency(t *testing.T) {
	_, err := NewHandler(nil, nil)
	require.Error(t, err)
}

func TestHandle_HappyPath(t *testing.T) {
	r := &stubReporter{out: usecase.Outcome{Status: usecase.StatusSent, Date: "2026-10-14", Percent: 78.4}}
	logger, buf := bufferLogger()
	h, err := NewHandler(r, logger)
	require.NoError(t, err)

	res, err := h.Handle(context.Background(), scheduledEvent("evt-1"))
	require.NoError(t, err)
	require.Equal(t, Result{RunID: "evt-1", Status: usecase.StatusSent, Date: "2026-10-14", Percent: 78.4}, res)
	require.Equal(t, 1, r.calls)
	require.Contains(t, buf.String(), `"run_id":"evt-1"`)
	require.Contains(t, buf.String(), `"source":"aws.events"`)
}

func TestHandle_GeneratesRunIDWithoutEvent(t *testing.T) {
	prev := newUUID
	newUUID = func() string { return "generated-id" }
	t.Cleanup(func() { newUUID = prev })

	r := &stubReporter{out: usecase.Outcome{Status: usecase.StatusAlreadySent, Date: "2026-10-14"}}
	logger, buf := bufferLogger()
	h, err := NewHandler(r, logger)
	require.NoError(t, err)

	res, err := h.Handle(context.Background(), events.CloudWatchEvent{})
	require.NoError(t, err)
	require.Equal(t, "generated-id", res.RunID)
	require.Equal(t, usecase.StatusAlreadySent, res.Status)
	require.NotContains(t, buf.String(), `"source"`)
}

func TestHandle_DefaultRunIDIsUUID(t *testing.T) {
	h, err := NewHandler(&stubReporter{}, nil)
	require.NoError(t, err)
	res, err := h.Handle(context.Background(), events.CloudWatchEvent{})
	require.NoError(t, err)
	require.Len(t, res.RunID, 36)
}

func TestHandle_LogsUseCaseErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   string
		reason string
	}{
		{name: "upstream", err: &usecase.Error{Code: usecase.ErrorUpstream, Reason: "telegram_send_error"}, code: string(usecase.ErrorUpstream), reason: "telegram_send_error"},
		{name: "internal", err: &usecase.Error{Code: usecase.ErrorInternal, Reason: "state_save_error"}, code: string(usecase.ErrorInternal), reason: "state_save_error"},
		{name: "unexpected", err: errors.New("boom"), code: string(usecase.ErrorInternal), reason: "unexpected_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logger, buf := bufferLogger()
			h, err := NewHandler(&stubReporter{err: tc.err}, logger)
			require.NoError(t, err)

			res, err := h.Handle(context.Background(), scheduledEvent("evt-2"))
			require.ErrorIs(t, err, tc.err)
			require.Equal(t, "evt-2", res.RunID)

			var line map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
			require.Equal(t, "ERROR", line["level"])
			require.Equal(t, tc.code, line["code"])
			require.Equal(t, tc.reason, line["reason"])
		})
	}
}
