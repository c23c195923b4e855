package profiling

import "time"

// FrameMeter computes frames per second over a sliding half-second window
// and flags sustained drops below a threshold.
type FrameMeter struct {
	// Window is how much time is accumulated before the rate is recomputed
	Window time.Duration

	// DropThreshold is the rate below which Drop reports true
	DropThreshold float64

	// WarmUp ignores drops during the first frames after start
	WarmUp time.Duration

	fps     float64
	frames  int
	elapsed time.Duration
	total   time.Duration
}

// NewFrameMeter creates a meter assuming an initial rate of 60 fps
func NewFrameMeter(threshold float64) *FrameMeter {
	return &FrameMeter{
		Window:        500 * time.Millisecond,
		DropThreshold: threshold,
		WarmUp:        3 * time.Second,
		fps:           60,
	}
}

// Tick records one frame. It returns true when the rate was recomputed.
func (m *FrameMeter) Tick(elapsed time.Duration) bool {
	m.frames++
	m.elapsed += elapsed
	m.total += elapsed
	if m.elapsed < m.Window {
		return false
	}

	m.fps = float64(m.frames) / m.elapsed.Seconds()
	m.frames = 0
	m.elapsed = 0
	return true
}

// FPS returns the last computed rate
func (m *FrameMeter) FPS() float64 {
	return m.fps
}

// Drop reports whether the last computed rate is below the threshold,
// ignoring the warm-up period
func (m *FrameMeter) Drop() bool {
	return m.total >= m.WarmUp && m.fps < m.DropThreshold
}
