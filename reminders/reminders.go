// ABOUTME: Cron-driven sweep that persists advanced next-meet dates
// ABOUTME: Also logs which meets and birthdays fall due today for every store

package reminders

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/networkia/networkia/agenda"
	"github.com/networkia/networkia/store"
)

// DefaultSpec runs the sweep every morning at 08:00.
const DefaultSpec = "0 8 * * *"

// Source enumerates the stores a sweep visits. *store.Selector satisfies it.
type Source interface {
	All(ctx context.Context) ([]store.Store, error)
}

// Report summarizes one sweep.
type Report struct {
	Stores    int
	Advanced  int
	DueToday  int
	Birthdays int
}

type Scheduler struct {
	source  Source
	spec    string
	logger  *zap.Logger
	options []agenda.Option

	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex // one sweep at a time
}

// New validates spec (standard five-field cron syntax) and prepares a
// scheduler. agendaOpts are applied to the agenda built for every store.
func New(source Source, spec string, logger *zap.Logger, agendaOpts ...agenda.Option) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultSpec
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Scheduler{
		source:  source,
		spec:    spec,
		logger:  logger,
		options: append([]agenda.Option{agenda.WithLogger(logger)}, agendaOpts...),
		cron:    cron.New(),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		s.cancel()
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) tick() {
	report, err := s.RunOnce(s.ctx)
	if err != nil {
		s.logger.Error("reminder sweep failed", zap.Error(err))
		return
	}
	s.logger.Info("reminder sweep finished",
		zap.Int("stores", report.Stores),
		zap.Int("advanced", report.Advanced),
		zap.Int("due_today", report.DueToday),
		zap.Int("birthdays", report.Birthdays),
	)
}

// Start runs the schedule in the background.
func (s *Scheduler) Start() {
	s.logger.Info("reminder scheduler started", zap.String("spec", s.spec))
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish, or for ctx
// to expire, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		return ctx.Err()
	}
}

// RunOnce performs a single sweep immediately.
func (s *Scheduler) RunOnce(ctx context.Context) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var report Report
	stores, err := s.source.All(ctx)
	if err != nil {
		return report, err
	}

	for _, st := range stores {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Stores++

		a := agenda.New(st, s.options...)
		n, err := a.AdvanceStale(ctx)
		if err != nil {
			return report, fmt.Errorf("failed to sweep %s: %w", st.Scope(), err)
		}
		report.Advanced += n

		items, err := a.Upcoming(ctx, 1)
		if err != nil {
			return report, err
		}
		for _, item := range items {
			if item.DaysAway > 0 {
				continue
			}
			report.DueToday++
			s.logger.Info("meet due",
				zap.String("scope", st.Scope()),
				zap.String("contact", item.Contact.Name),
				zap.String("date", item.Date.String()),
				zap.Bool("overdue", item.Overdue),
			)
		}

		birthdays, err := a.UpcomingBirthdays(ctx, 1)
		if err != nil {
			return report, err
		}
		for _, b := range birthdays {
			if b.DaysAway != 0 {
				continue
			}
			report.Birthdays++
			s.logger.Info("birthday today",
				zap.String("scope", st.Scope()),
				zap.String("contact", b.Contact.Name),
			)
		}
	}

	return report, nil
}
