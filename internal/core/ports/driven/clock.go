package driven

import "time"

// Clock abstracts time so that simulated progress can be driven by tests.
type Clock interface {
	// Now returns the current time
	Now() time.Time

	// AfterFunc calls f in its own goroutine after d has elapsed
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending AfterFunc call
type Timer interface {
	// Stop prevents the call from firing. It reports whether the call was stopped.
	Stop() bool
}
