// Package workers runs the background jobs that keep denormalized habit
// state current and dispatch reminders.
package workers

// Observer is told how background jobs went. *metrics.Collector satisfies it.
type Observer interface {
	JobDone(worker string, err error)
	FreezesCleared(n int)
	ReminderDispatched()
}

type nopObserver struct{}

func (nopObserver) JobDone(string, error) {}
func (nopObserver) FreezesCleared(int)    {}
func (nopObserver) ReminderDispatched()   {}

func observerOrNop(o Observer) Observer {
	if o == nil {
		return nopObserver{}
	}
	return o
}
