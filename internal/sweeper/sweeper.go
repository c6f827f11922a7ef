package sweeper

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"hotel-booking-backend/config"
	"hotel-booking-backend/internal/booking"
	"hotel-booking-backend/internal/logger"
	"hotel-booking-backend/internal/model"
	"hotel-booking-backend/internal/notification"
)

// Store is the part of the store the sweeper needs.
type Store interface {
	ListStaysEndedBefore(ctx context.Context, t time.Time) ([]model.Booking, error)
	UpdateBooking(ctx context.Context, b *model.Booking, events ...model.BookingStatusEvent) error
}

// Notifier receives one job per completed booking.
type Notifier interface {
	Dispatch(job notification.StatusChange) bool
}

// Service periodically marks confirmed and approved bookings whose check-out
// has passed as completed.
type Service struct {
	cfg      config.SweeperConfig
	store    Store
	notifier Notifier
	onChange func()
	now      func() time.Time
	log      zerolog.Logger
	wg       sync.WaitGroup
}

// NewService creates a sweeper. notifier may be nil.
func NewService(cfg config.SweeperConfig, s Store, notifier Notifier) *Service {
	return &Service{
		cfg:      cfg,
		store:    s,
		notifier: notifier,
		onChange: func() {},
		now:      time.Now,
		log:      logger.Component("sweeper"),
	}
}

// OnChange registers fn to run after a sweep that changed at least one booking.
func (s *Service) OnChange(fn func()) {
	if fn != nil {
		s.onChange = fn
	}
}

// Start runs the sweeper in the background until ctx is done.
func (s *Service) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Run(ctx)
	}()
}

// Wait blocks until a started sweeper has returned, including any sweep in
// progress when ctx was cancelled.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Run sweeps once immediately, then on every interval until ctx is done.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		s.log.Info().Msg("sweeper is disabled, not starting")
		return
	}
	s.log.Info().Dur("interval", s.cfg.Interval).Msg("starting sweeper")

	s.sweepAndLog(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("sweeper shutting down")
			return
		case <-timer.C:
			s.sweepAndLog(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

func (s *Service) sweepAndLog(ctx context.Context) {
	n, err := s.SweepOnce(ctx)
	if err != nil {
		s.log.Error().Err(err).Int("completed", n).Msg("sweep failed")
		return
	}
	if n > 0 {
		s.log.Info().Int("completed", n).Msg("sweep finished")
	}
}

// SweepOnce completes every finished stay and returns how many bookings
// changed. It stops at the first storage error.
func (s *Service) SweepOnce(ctx context.Context) (int, error) {
	now := s.now().UTC()
	stays, err := s.store.ListStaysEndedBefore(ctx, now)
	if err != nil {
		return 0, err
	}

	completed := 0
	defer func() {
		if completed > 0 {
			s.onChange()
		}
	}()

	for i := range stays {
		b := &stays[i]
		event, err := booking.Transition(b, booking.System, model.StatusCompleted, now)
		if err != nil {
			return completed, err
		}
		if event == nil {
			continue
		}
		if err := s.store.UpdateBooking(ctx, b, *event); err != nil {
			return completed, err
		}
		completed++

		if s.notifier != nil {
			s.notifier.Dispatch(notification.StatusChange{
				BookingID: b.ID,
				UserID:    b.UserID,
				Field:     event.Field,
				From:      event.From,
				To:        event.To,
			})
		}
	}
	return completed, nil
}
