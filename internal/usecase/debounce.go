package usecase

import "time"

// timerHandle wraps a one-shot timer so the coordinator can replace a
// scheduled push: at most one live handle exists at a time, and each new
// mutation cancels the previous one.
type timerHandle struct {
	timer *time.Timer
}

// scheduleAfter runs task once after d unless the handle is canceled
// first. task runs on its own goroutine.
func scheduleAfter(d time.Duration, task func()) *timerHandle {
	return &timerHandle{timer: time.AfterFunc(d, task)}
}

// Cancel stops the timer. Returns false when the task already fired or
// the timer was stopped before.
func (h *timerHandle) Cancel() bool {
	if h == nil || h.timer == nil {
		return false
	}
	return h.timer.Stop()
}
