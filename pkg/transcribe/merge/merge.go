// Package merge implements the Overlap Merger: it takes the flat,
// per-window-ordered segment sequence the Inference Driver produces and
// resolves the duplicate text the model emits in every overlap region into
// one monotonic, deduplicated sequence.
//
// Grounded on the teacher's pkg/provider/stt/whisper/native.go
// silence-triggered flush, which already treats each flush's inference
// output as an independent, possibly-overlapping-in-content unit; this
// package generalizes that "trust but reconcile" stance into an explicit
// confidence-weighted dedup pass instead of simply appending every flush's
// text.
package merge

import (
	"sort"
	"strings"
	"unicode"

	"github.com/rodnoy/orangenote/pkg/transcript"
)

// Merge deduplicates segments that appear in the overlap region of two
// adjacent windows and returns them in monotonic start_ms order.
//
// The algorithm follows spec.md §4.4 exactly: stable-sort by start_ms, then
// walk the sequence comparing each candidate against every already-accepted
// segment whose end_ms still extends past the candidate's start_ms (the
// short "look-back tail" bounded by the window overlap). A normalized-text
// match within an overlapping interval triggers the quality-preserving
// replacement rule; everything else is accepted as-is.
func Merge(segments []transcript.Segment) []transcript.Segment {
	candidates := make([]transcript.Segment, 0, len(segments))
	for _, s := range segments {
		if strings.TrimSpace(s.Text) == "" || s.EndMs <= s.StartMs {
			continue
		}
		candidates = append(candidates, s)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].StartMs < candidates[j].StartMs
	})

	var accepted []transcript.Segment

	for _, cand := range candidates {
		candNorm := normalizeText(cand.Text)

		replaced := false
		dropped := false

		for i := len(accepted) - 1; i >= 0; i-- {
			acc := accepted[i]
			if acc.EndMs <= cand.StartMs {
				// This one ends before the candidate starts, but an
				// earlier-starting accepted segment may still reach past
				// it, so keep scanning.
				continue
			}
			if !intervalsOverlap(acc, cand) {
				continue
			}
			if normalizeText(acc.Text) != candNorm {
				continue
			}

			if wins(cand, acc) {
				accepted[i] = cand
				replaced = true
			} else {
				dropped = true
			}
			break
		}

		if !replaced && !dropped {
			accepted = append(accepted, cand)
		}
	}

	// Final pass: a replacement can leave the slice momentarily out of
	// start_ms order (the replacement's StartMs may differ from the slot it
	// overwrote) and, in principle, degenerate; re-sort and re-filter.
	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].StartMs < accepted[j].StartMs
	})

	out := accepted[:0]
	for _, s := range accepted {
		if strings.TrimSpace(s.Text) == "" || s.EndMs <= s.StartMs {
			continue
		}
		out = append(out, s)
	}

	return out
}

func intervalsOverlap(a, b transcript.Segment) bool {
	return a.StartMs < b.EndMs && b.StartMs < a.EndMs
}

// wins reports whether candidate beats incumbent under spec.md §4.4's
// quality-preserving rule: higher confidence wins; ties broken by longer
// duration, then by earlier start_ms.
func wins(candidate, incumbent transcript.Segment) bool {
	if candidate.Confidence != incumbent.Confidence {
		return candidate.Confidence > incumbent.Confidence
	}
	if candidate.DurationMs() != incumbent.DurationMs() {
		return candidate.DurationMs() > incumbent.DurationMs()
	}
	return candidate.StartMs < incumbent.StartMs
}

// normalizeText lowercases, strips punctuation surrounding each
// whitespace-separated word (dropping words that were punctuation only), and
// joins the words with single spaces, per spec.md §4.4's
// normalized-text-match definition: "Hello,   World!" becomes "hello world".
func normalizeText(s string) string {
	words := strings.Fields(strings.ToLower(s))
	kept := words[:0]
	for _, w := range words {
		if w = strings.TrimFunc(w, unicode.IsPunct); w != "" {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}
