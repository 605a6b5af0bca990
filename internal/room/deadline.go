package room

import (
	"time"
)

// deadlineScheduler arms one countdown per room. Re-arming replaces
// any pending timer; a fire delivers the round start it was armed
// against so the coordinator can drop stale deliveries.
type deadlineScheduler struct {
	timer    *time.Timer
	armedFor time.Time
}

// schedule arms the timer for roundStart + duration, replacing any
// pending one. fire runs on the timer goroutine and must hand off to
// the coordinator inbox rather than touch state itself.
func (d *deadlineScheduler) schedule(roundStart time.Time, duration time.Duration, fire func(armedFor time.Time)) {
	d.cancel()

	deadline := roundStart.Add(duration)
	delay := time.Until(deadline)
	if delay < 0 {
		delay = 0
	}

	armedFor := roundStart
	d.armedFor = armedFor
	d.timer = time.AfterFunc(delay, func() { fire(armedFor) })
}

func (d *deadlineScheduler) cancel() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *deadlineScheduler) armed() bool { return d.timer != nil }
