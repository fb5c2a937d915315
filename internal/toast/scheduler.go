package toast

import "time"

// Timer is a pending scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs toast lifecycle callbacks. NextFrame approximates the next
// paint so an entrance transition can apply.
type Scheduler interface {
	Now() time.Time
	NextFrame(fn func()) Timer
	AfterFunc(d time.Duration, fn func()) Timer
}

type clockScheduler struct {
	frame time.Duration
}

// NewScheduler returns a wall-clock scheduler with the given frame interval.
func NewScheduler(frame time.Duration) Scheduler {
	if frame <= 0 {
		frame = 16 * time.Millisecond
	}
	return &clockScheduler{frame: frame}
}

func (s *clockScheduler) Now() time.Time {
	return time.Now()
}

func (s *clockScheduler) NextFrame(fn func()) Timer {
	return time.AfterFunc(s.frame, fn)
}

func (s *clockScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
