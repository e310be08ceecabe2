package service

import "time"

// TimerScheduler is the production scheduler, backed by time.AfterFunc.
type TimerScheduler struct{}

// Schedule runs fn once after delay on a timer goroutine.
func (TimerScheduler) Schedule(delay time.Duration, fn func()) (cancel func()) {
	t := time.AfterFunc(delay, fn)
	return func() { t.Stop() }
}
