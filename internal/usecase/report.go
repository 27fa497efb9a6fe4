package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"year-progress-bot/internal/domain"
	"year-progress-bot/internal/phrases"
)

const defaultPlace = "Madrid"

// Run outcomes.
const (
	StatusSent        = "sent"
	StatusSilenced    = "silenced"
	StatusAlreadySent = "already_sent"
)

type StateStore interface {
	Load(ctx context.Context) (*domain.State, error)
	Save(ctx context.Context, st *domain.State) error
}

type WeatherSource interface {
	Today(ctx context.Context) domain.Weather
}

type Sender interface {
	SendMessage(ctx context.Context, text string) error
}

// Outcome describes what a run did.
type Outcome struct {
	Status  string
	Date    string
	Percent float64
	Message string
}

// ReportService sends at most one year-progress message per UTC day.
type ReportService struct {
	state   StateStore
	weather WeatherSource
	sender  Sender
	phrases domain.Phrases

	place   string
	silence bool
	now     func() time.Time
	rng     *rand.Rand
	logger  *slog.Logger
}

type Option func(*ReportService)

// WithPlace sets the place name shown in the weather block. The name is
// rendered inside Markdown bold, so it must not contain '_', '*', '`' or '['.
func WithPlace(place string) Option {
	return func(s *ReportService) {
		if p := strings.TrimSpace(place); p != "" {
			s.place = p
		}
	}
}

// WithSilence toggles the random silent days.
func WithSilence(enabled bool) Option {
	return func(s *ReportService) {
		s.silence = enabled
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *ReportService) {
		if now != nil {
			s.now = now
		}
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(s *ReportService) {
		if rng != nil {
			s.rng = rng
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *ReportService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// markdownReserved are the legacy Markdown entity characters.
const markdownReserved = "_*`["

func NewReportService(st StateStore, w WeatherSource, sender Sender, p domain.Phrases, opts ...Option) (*ReportService, error) {
	if st == nil {
		return nil, errors.New("usecase: state store must not be nil")
	}
	if w == nil {
		return nil, errors.New("usecase: weather source must not be nil")
	}
	if sender == nil {
		return nil, errors.New("usecase: sender must not be nil")
	}
	if err := phrases.Validate(p); err != nil {
		return nil, err
	}
	s := &ReportService{
		state:   st,
		weather: w,
		sender:  sender,
		phrases: p,
		place:   defaultPlace,
		silence: true,
		now:     time.Now,
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if strings.ContainsAny(s.place, markdownReserved) {
		return nil, fmt.Errorf("usecase: place %q must not contain any of %s", s.place, markdownReserved)
	}
	return s, nil
}

// Run sends today's message unless it was already handled or today is a
// silent day. State is saved only after a send or a silence; a failed send
// leaves it untouched so the next invocation tries again.
func (s *ReportService) Run(ctx context.Context) (Outcome, error) {
	now := s.now().UTC()
	today := now.Format(time.DateOnly)

	st, err := s.state.Load(ctx)
	if err != nil {
		return Outcome{}, newError(ErrorInternal, "state_load_error", err)
	}
	if st == nil {
		st = domain.NewState()
	}

	if st.LastSent == today {
		s.logger.Info("already sent today", "date", today)
		return Outcome{Status: StatusAlreadySent, Date: today}, nil
	}

	if s.silence {
		days := ensureSilentDays(s.rng, st, now)
		if slices.Contains(days, now.Day()) {
			st.LastSent = today
			if err := s.state.Save(ctx, st); err != nil {
				return Outcome{}, newError(ErrorInternal, "state_save_error", err)
			}
			s.logger.Info("silent day, nothing sent", "date", today, "silent_days", days)
			return Outcome{Status: StatusSilenced, Date: today}, nil
		}
	}

	percent := YearProgress(now)
	w := s.weather.Today(ctx)
	text := composer{phrases: s.phrases, place: s.place, rng: s.rng}.compose(now, percent, w, st)

	if err := s.sender.SendMessage(ctx, text); err != nil {
		return Outcome{}, newError(ErrorUpstream, "telegram_send_error", err)
	}

	st.LastSent = today
	if err := s.state.Save(ctx, st); err != nil {
		return Outcome{}, newError(ErrorInternal, "state_save_error", err)
	}
	s.logger.Info("year progress sent", "date", today, "percent", percent, "weather_ok", w.OK)
	return Outcome{Status: StatusSent, Date: today, Percent: percent, Message: text}, nil
}
