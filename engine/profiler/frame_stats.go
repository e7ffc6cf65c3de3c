package profiler

import "time"

// statsWindow is the span over which FrameStats averages the frame rate.
const statsWindow = time.Second

// FrameStats accumulates frame timing. FPS is recomputed each time the accumulation window
// passes one second.
type FrameStats struct {
	// FrameCount is the number of frames in the current window.
	FrameCount int

	// FrameTime is the duration of the most recent frame.
	FrameTime time.Duration

	// TotalTime is the sum of all frame times since the baseline was set.
	TotalTime time.Duration

	// WindowTime is the sum of frame times in the current window.
	WindowTime time.Duration

	// FPS is the frame rate of the last completed window.
	FPS float32

	last time.Time
}

// Restart sets the frame time baseline to now so that time spent paused is not counted.
//
// Parameters:
//   - now: the new baseline
func (s *FrameStats) Restart(now time.Time) {
	s.last = now
}

// Tick records one frame ending at now.
//
// Parameters:
//   - now: the frame end time
//
// Returns:
//   - bool: true if the window completed and FPS was updated
func (s *FrameStats) Tick(now time.Time) bool {
	s.FrameCount++
	if s.last.IsZero() {
		s.last = now
	}
	s.FrameTime = now.Sub(s.last)
	s.last = now
	s.TotalTime += s.FrameTime
	s.WindowTime += s.FrameTime

	if s.WindowTime <= statsWindow {
		return false
	}
	s.FPS = float32(float64(s.FrameCount) / s.WindowTime.Seconds())
	s.FrameCount = 0
	s.WindowTime = 0
	return true
}
