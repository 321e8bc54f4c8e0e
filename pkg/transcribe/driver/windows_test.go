package driver

import "testing"

// TestGenerateWindows_HourLongClip checks the window sequence for the
// worked example in spec.md §8 (3600s clip, 5-minute windows, 5s overlap).
// The stride is 295s; applying the generation rule literally (window k
// covers [k*S, min(k*S+W, D)) up to the first k with k*S+W >= D) yields 13
// windows, the last one short (60s) rather than 12 windows with a 55s gap
// before the clip's end — the latter would violate the full-coverage
// invariant, so this count follows the rule over the prose figure.
func TestGenerateWindows_HourLongClip(t *testing.T) {
	const (
		durationMs = 3600 * 1000
		windowMs   = 5 * 60 * 1000
		overlapMs  = 5 * 1000
	)

	windows := generateWindows(durationMs, windowMs, overlapMs)

	if len(windows) != 13 {
		t.Fatalf("len(windows) = %d; want 13", len(windows))
	}

	stride := windowMs - overlapMs
	for k, w := range windows {
		wantStart := int64(k) * stride
		if w.StartMs != wantStart {
			t.Errorf("windows[%d].StartMs = %d; want %d", k, w.StartMs, wantStart)
		}
		if w.StartMs >= w.EndMs {
			t.Errorf("windows[%d] has StartMs >= EndMs: %+v", k, w)
		}
	}

	last := windows[len(windows)-1]
	if last.EndMs != durationMs {
		t.Errorf("last window EndMs = %d; want %d", last.EndMs, durationMs)
	}
}

func TestGenerateWindows_CoversFullDuration_NoGaps(t *testing.T) {
	windows := generateWindows(125_000, 50_000, 10_000)

	if windows[0].StartMs != 0 {
		t.Fatalf("first window must start at 0, got %d", windows[0].StartMs)
	}
	for i := 1; i < len(windows); i++ {
		prev, cur := windows[i-1], windows[i]
		if cur.StartMs > prev.EndMs {
			t.Errorf("gap between window %d (ends %d) and window %d (starts %d)", i-1, prev.EndMs, i, cur.StartMs)
		}
	}
	if windows[len(windows)-1].EndMs != 125_000 {
		t.Errorf("last window must end at duration, got %d", windows[len(windows)-1].EndMs)
	}
}

func TestGenerateWindows_OverlapExactlyO(t *testing.T) {
	windows := generateWindows(200_000, 50_000, 10_000)
	for i := 1; i < len(windows); i++ {
		prev, cur := windows[i-1], windows[i]
		if prev.EndMs-cur.StartMs != 10_000 {
			// The final window may be shorter than a full stride step, per
			// spec.md §8's "except possibly the last" clause, so only check
			// interior seams strictly.
			if i != len(windows)-1 {
				t.Errorf("overlap between window %d and %d = %dms; want 10000ms", i-1, i, prev.EndMs-cur.StartMs)
			}
		}
	}
}

func TestGenerateWindows_DurationShorterThanWindow_SingleWindow(t *testing.T) {
	windows := generateWindows(10_000, 50_000, 5_000)
	if len(windows) != 1 {
		t.Fatalf("len(windows) = %d; want 1", len(windows))
	}
	if windows[0].StartMs != 0 || windows[0].EndMs != 10_000 {
		t.Errorf("windows[0] = %+v; want {0, 10000}", windows[0])
	}
}
