package link

import "time"

// FrameCounter measures frames per second over one second windows.
type FrameCounter struct {
	start  time.Time
	frames int
	fps    float64
}

func NewFrameCounter(now time.Time) *FrameCounter {
	return &FrameCounter{start: now}
}

// Frame records a frame drawn at now. updated is set when a window closed
// and fps holds a new measurement.
func (f *FrameCounter) Frame(now time.Time) (fps float64, updated bool) {
	f.frames++

	elapsed := now.Sub(f.start)
	if elapsed < time.Second {
		return f.fps, false
	}

	f.fps = float64(f.frames) / elapsed.Seconds()
	f.frames = 0
	f.start = now
	return f.fps, true
}

func (f *FrameCounter) FPS() float64 {
	return f.fps
}
