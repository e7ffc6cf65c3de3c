package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type manualClock struct {
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Unix(1000, 0)}
}

func (c *manualClock) read() time.Time { return c.now }

func (c *manualClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func TestTimer_PauseResume(t *testing.T) {
	clk := newManualClock()
	tm := NewTimer(clk.read)
	assert.False(t, tm.IsRunning())

	tm.Start()
	clk.advance(2 * time.Second)
	assert.Equal(t, 2*time.Second, tm.Elapsed())

	tm.Pause()
	clk.advance(5 * time.Second)
	assert.Equal(t, 2*time.Second, tm.Elapsed(), "paused time is not counted")

	tm.Start()
	tm.Start()
	clk.advance(time.Second)
	assert.Equal(t, 3*time.Second, tm.Elapsed())
	assert.True(t, tm.IsRunning())
}

func TestTimer_ClearAndReset(t *testing.T) {
	clk := newManualClock()
	tm := NewTimer(clk.read)
	tm.Start()
	clk.advance(time.Second)
	tm.Pause()
	tm.Start()
	clk.advance(time.Second)

	tm.Clear()
	assert.True(t, tm.IsRunning())
	assert.Equal(t, time.Second, tm.Elapsed(), "clear keeps the current run")

	tm.Reset()
	assert.False(t, tm.IsRunning())
	assert.Equal(t, time.Duration(0), tm.Elapsed())
}

func TestTimer_ZeroValue(t *testing.T) {
	var tm Timer
	tm.Pause()
	assert.Equal(t, time.Duration(0), tm.Elapsed())
	assert.False(t, tm.Now().IsZero())
}

func TestFrameStats_Window(t *testing.T) {
	clk := newManualClock()
	var s FrameStats
	s.Restart(clk.now)

	for range 10 {
		clk.advance(100 * time.Millisecond)
		assert.False(t, s.Tick(clk.now))
	}
	assert.Equal(t, 10, s.FrameCount)
	assert.Equal(t, float32(0), s.FPS, "a window of exactly one second is not complete")

	clk.advance(250 * time.Millisecond)
	assert.True(t, s.Tick(clk.now))
	assert.InDelta(t, 11/1.25, s.FPS, 1e-4)
	assert.Equal(t, 0, s.FrameCount)
	assert.Equal(t, time.Duration(0), s.WindowTime)
	assert.Equal(t, 1250*time.Millisecond, s.TotalTime)
	assert.Equal(t, 250*time.Millisecond, s.FrameTime)
}

func TestFrameStats_RestartSkipsPause(t *testing.T) {
	clk := newManualClock()
	var s FrameStats
	s.Restart(clk.now)
	clk.advance(time.Hour)
	s.Restart(clk.now)
	clk.advance(10 * time.Millisecond)
	s.Tick(clk.now)
	assert.Equal(t, 10*time.Millisecond, s.TotalTime)
}

func TestProfiler_TickInterval(t *testing.T) {
	clk := newManualClock()
	p := NewProfiler(WithClock(clk.read), WithInterval(500*time.Millisecond))

	clk.advance(200 * time.Millisecond)
	assert.False(t, p.Tick())
	clk.advance(300 * time.Millisecond)
	assert.True(t, p.Tick())
	clk.advance(100 * time.Millisecond)
	assert.False(t, p.Tick())
	assert.Equal(t, 100*time.Millisecond, p.Stats().FrameTime)
}
