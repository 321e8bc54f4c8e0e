package driver

import "github.com/rodnoy/orangenote/pkg/transcript"

// generateWindows produces the half-open window sequence spec.md §4.3
// describes for chunked inference: stride S = W - O, window k covers
// [k*S, min(k*S+W, D)) for k = 0, 1, … up to the first k with k*S+W >= D.
//
// Callers must ensure overlapMs < windowMs and durationMs > 0; this function
// does not validate those preconditions itself (driver.go does, once, before
// calling it in a loop).
func generateWindows(durationMs, windowMs, overlapMs int64) []transcript.Window {
	stride := windowMs - overlapMs
	var windows []transcript.Window

	for k := int64(0); ; k++ {
		start := k * stride
		end := start + windowMs
		if end >= durationMs {
			windows = append(windows, transcript.Window{StartMs: start, EndMs: durationMs})
			break
		}
		windows = append(windows, transcript.Window{StartMs: start, EndMs: end})
	}

	return windows
}
