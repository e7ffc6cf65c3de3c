package profiler

import "time"

// Clock returns the current time. Tests substitute a manual clock.
type Clock func() time.Time

// Timer is a pausable stopwatch. The zero value uses time.Now and is stopped.
type Timer struct {
	clock   Clock
	running bool
	start   time.Time
	elapsed time.Duration
}

// NewTimer creates a stopped Timer reading the given clock. A nil clock means time.Now.
//
// Parameters:
//   - clock: the time source
//
// Returns:
//   - *Timer: the new timer
func NewTimer(clock Clock) *Timer {
	return &Timer{clock: clock}
}

// Now returns the current time of the timer's clock.
func (t *Timer) Now() time.Time {
	if t.clock == nil {
		return time.Now()
	}
	return t.clock()
}

// Start resumes accumulation. It does nothing if the timer is already running.
func (t *Timer) Start() {
	if t.running {
		return
	}
	t.running = true
	t.start = t.Now()
}

// Pause stops accumulation, keeping the elapsed time. It does nothing if the timer is stopped.
func (t *Timer) Pause() {
	if !t.running {
		return
	}
	t.running = false
	t.elapsed += t.Now().Sub(t.start)
}

// Elapsed returns the accumulated running time, including the current run.
func (t *Timer) Elapsed() time.Duration {
	if !t.running {
		return t.elapsed
	}
	return t.elapsed + t.Now().Sub(t.start)
}

// IsRunning reports whether the timer is accumulating.
func (t *Timer) IsRunning() bool {
	return t.running
}

// Clear zeroes the accumulated time from completed runs without stopping the timer.
func (t *Timer) Clear() {
	t.elapsed = 0
}

// Reset stops the timer and zeroes the accumulated time.
func (t *Timer) Reset() {
	t.running = false
	t.elapsed = 0
}
