package handler

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"year-progress-bot/internal/usecase"
)

// Reporter runs one daily report.
type Reporter interface {
	Run(ctx context.Context) (usecase.Outcome, error)
}

// Result is returned to the Lambda runtime (and logged in local mode).
type Result struct {
	RunID   string  `json:"runId"`
	Status  string  `json:"status"`
	Date    string  `json:"date"`
	Percent float64 `json:"percent,omitempty"`
}

type Handler struct {
	reporter Reporter
	logger   *slog.Logger
}

func NewHandler(r Reporter, logger *slog.Logger) (*Handler, error) {
	if r == nil {
		return nil, errors.New("handler: reporter must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{reporter: r, logger: logger}, nil
}

// Handle serves an EventBridge scheduled event. Local runs pass a zero event.
func (h *Handler) Handle(ctx context.Context, event events.CloudWatchEvent) (Result, error) {
	runID := strings.TrimSpace(event.ID)
	if runID == "" {
		runID = newUUID()
	}
	log := h.logger.With("run_id", runID)
	if event.Source != "" {
		log = log.With("source", event.Source, "detail_type", event.DetailType)
	}

	out, err := h.reporter.Run(ctx)
	if err != nil {
		code, reason := usecase.ErrorInternal, "unexpected_error"
		var usecaseErr *usecase.Error
		if errors.As(err, &usecaseErr) {
			code, reason = usecaseErr.Code, usecaseErr.Reason
		}
		log.Error("daily report failed", "code", code, "reason", reason, "err", err)
		return Result{RunID: runID}, err
	}

	log.Info("daily report finished", "status", out.Status, "date", out.Date)
	return Result{
		RunID:   runID,
		Status:  out.Status,
		Date:    out.Date,
		Percent: out.Percent,
	}, nil
}

var newUUID = func() string {
	return uuid.NewString()
}
