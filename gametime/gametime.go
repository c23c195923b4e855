// Package gametime carries frame timing through scene updates and input commands.
package gametime

import "time"

// Time is the timing information for a single simulation frame
type Time struct {
	// Elapsed is the time since the previous frame
	Elapsed time.Duration

	// Total is the time since the game started
	Total time.Duration
}

// Step returns the Time that follows t after elapsed has passed
func (t Time) Step(elapsed time.Duration) Time {
	return Time{Elapsed: elapsed, Total: t.Total + elapsed}
}

// Delta returns the elapsed frame time in seconds
func (t Time) Delta() float64 {
	return t.Elapsed.Seconds()
}

// ElapsedMillis returns the elapsed frame time in milliseconds
func (t Time) ElapsedMillis() float64 {
	return float64(t.Elapsed) / float64(time.Millisecond)
}

// Substeps returns how many equal steps no longer than max the frame
// splits into. A non-positive max or elapsed time gives a single step.
func (t Time) Substeps(max time.Duration) int {
	if max <= 0 || t.Elapsed <= max {
		return 1
	}
	return int((t.Elapsed + max - 1) / max)
}

// FromSeconds builds a single-frame Time from a delta expressed in seconds
func FromSeconds(dt float64) Time {
	d := time.Duration(dt * float64(time.Second))
	return Time{Elapsed: d, Total: d}
}
