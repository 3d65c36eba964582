package workers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/aethernova/habits-api/internal/core/domain"
)

const reminderWorkerName = "reminder"

type ReminderLister interface {
	ListByReminderTime(ctx context.Context, hhmm string) ([]*domain.User, error)
}

// Notifier delivers a reminder to one user.
type Notifier interface {
	Notify(ctx context.Context, user *domain.User) error
}

// LogNotifier only records the dispatch.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) Notify(_ context.Context, user *domain.User) error {
	n.Logger.Info("Reminder dispatched", zap.String("user_id", user.ID), zap.Stringp("reminder_time", user.ReminderTime))
	return nil
}

// ReminderWorker checks once per minute for users whose reminder time is now.
type ReminderWorker struct {
	users    ReminderLister
	notifier Notifier
	clock    domain.Clock
	observer Observer
	logger   *zap.Logger

	lastMinute string
}

func NewReminderWorker(users ReminderLister, notifier Notifier, clock domain.Clock, observer Observer, logger *zap.Logger) *ReminderWorker {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = LogNotifier{Logger: logger}
	}
	return &ReminderWorker{
		users:    users,
		notifier: notifier,
		clock:    clock,
		observer: observerOrNop(observer),
		logger:   logger.Named("reminder_worker"),
	}
}

func (w *ReminderWorker) Start(ctx context.Context) {
	go func() {
		w.logger.Info("Reminder worker started")
		ticker := time.NewTicker(20 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				w.Tick(ctx)
			case <-ctx.Done():
				w.logger.Info("Reminder worker shutting down")
				return
			}
		}
	}()
}

// Tick dispatches the reminders of the current minute. A minute is only
// processed once, however often Tick runs within it.
func (w *ReminderWorker) Tick(ctx context.Context) int {
	minute := w.clock.Now().Format("15:04")
	if minute == w.lastMinute {
		return 0
	}
	w.lastMinute = minute

	users, err := w.users.ListByReminderTime(ctx, minute)
	w.observer.JobDone(reminderWorkerName, err)
	if err != nil {
		w.logger.Error("Failed to list reminders", zap.String("minute", minute), zap.Error(err))
		return 0
	}

	sent := 0
	for _, u := range users {
		if err := w.notifier.Notify(ctx, u); err != nil {
			w.logger.Warn("Reminder delivery failed", zap.String("user_id", u.ID), zap.Error(err))
			continue
		}
		w.observer.ReminderDispatched()
		sent++
	}
	return sent
}
