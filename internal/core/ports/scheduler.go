package ports

import "time"

// Scheduler defers a function call. The production implementation wraps
// time.AfterFunc; tests substitute a manual scheduler and drive ticks
// synchronously, so the polling loop runs without real delays.
type Scheduler interface {
	// Schedule runs fn once after delay and returns a cancel function.
	// Cancelling after fn started has no effect.
	Schedule(delay time.Duration, fn func()) (cancel func())
}
