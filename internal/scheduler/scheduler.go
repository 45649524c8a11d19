package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"sprout/internal/logger"
	"sprout/internal/services"
)

// dailySpec runs the maintenance sweep each morning before most users check
// their budgets.
const dailySpec = "0 6 * * *"

// PaydayNotifier pushes payday summaries to linked chats.
type PaydayNotifier interface {
	SendPaydaySummaries(today time.Time) (int, error)
}

// Scheduler owns the recurring maintenance jobs: rolling over overdue cycles
// and sending payday notifications.
type Scheduler struct {
	cron     *cron.Cron
	cycles   services.PayCycleServicer
	notifier PaydayNotifier
}

// New creates a Scheduler. The notifier may be nil, in which case only the
// rollover sweep runs.
func New(cycles services.PayCycleServicer, notifier PaydayNotifier) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		cycles:   cycles,
		notifier: notifier,
	}
}

// Start registers the daily job and begins the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(dailySpec, s.RunDaily); err != nil {
		return err
	}
	s.cron.Start()
	logger.Get().Infof("Scheduler started (daily sweep at %s)", dailySpec)
	return nil
}

// Stop halts the cron loop; running jobs finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// RunDaily executes one maintenance sweep: cycles past their end date roll
// over first so payday summaries go out for the freshly promoted cycles.
func (s *Scheduler) RunDaily() {
	now := time.Now()

	count, err := s.cycles.MarkOverdueCycles(now)
	if err != nil {
		logger.Get().Errorw("overdue cycle sweep failed", "error", err.Error())
	} else if count > 0 {
		logger.Get().Infow("rolled over overdue cycles", "count", count)
	}

	if s.notifier == nil {
		return
	}
	sent, err := s.notifier.SendPaydaySummaries(now)
	if err != nil {
		logger.Get().Errorw("payday notifications failed", "error", err.Error())
	} else if sent > 0 {
		logger.Get().Infow("sent payday summaries", "count", sent)
	}
}
