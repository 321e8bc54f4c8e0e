package driver

import (
	"context"
	"fmt"

	"github.com/rodnoy/orangenote/pkg/transcribe/whisperadapter"
	"github.com/rodnoy/orangenote/pkg/transcript"
)

// modelAdapter is the narrow surface the Driver needs from the Model
// Adapter. whisperadapter.Adapter satisfies it; tests use a fake.
type modelAdapter interface {
	Transcribe(samples []float32, opts whisperadapter.Options) (whisperadapter.Result, error)
}

// Driver decides between single-shot and chunked execution and assembles
// the per-window segments a Model Adapter produces into a flat,
// window-ordered sequence. It does not deduplicate overlap-region segments;
// that is pkg/transcribe/merge's job.
type Driver struct {
	adapter modelAdapter
}

// New returns a Driver that invokes adapter once per window (or once total,
// for single-shot inference).
func New(adapter *whisperadapter.Adapter) *Driver {
	return &Driver{adapter: adapter}
}

// newWith wraps an arbitrary modelAdapter; used by tests to inject a fake
// without going through whisperadapter.Adapter.
func newWith(adapter modelAdapter) *Driver {
	return &Driver{adapter: adapter}
}

// Run executes spec.md §4.3's policy over pcm: single-shot inference if
// opts.ChunkSizeMinutes == 0 or pcm is shorter than that many minutes,
// otherwise chunked inference over overlapping windows. ctx is checked for
// cancellation between windows (the driver itself never overlaps windows,
// so this bounds worst-case stop latency to one window's inference time).
//
// The returned Transcript.Language is taken from the first window's result,
// per spec.md §4.3's documented first-window-wins policy.
func (d *Driver) Run(ctx context.Context, pcm transcript.PcmBuffer, opts transcript.Options) (transcript.Transcript, error) {
	if err := ctx.Err(); err != nil {
		return transcript.Transcript{}, newError("Run", transcript.ErrorKindInferenceFailure, err)
	}

	windowMs := int64(opts.ChunkSizeMinutes) * 60_000
	durationMs := pcm.DurationMs()

	if windowMs == 0 || durationMs < windowMs {
		return d.runSingleShot(pcm, opts)
	}
	return d.runChunked(ctx, pcm, opts, windowMs)
}

func (d *Driver) runSingleShot(pcm transcript.PcmBuffer, opts transcript.Options) (transcript.Transcript, error) {
	result, err := d.adapter.Transcribe(pcm.Samples, whisperadapter.Options{
		Language:     opts.Language,
		Translate:    opts.Translate,
		Threads:      opts.Threads,
		TimeOffsetMs: 0,
	})
	if err != nil {
		return transcript.Transcript{}, err
	}
	return transcript.Transcript{Language: result.Language, Segments: result.Segments}, nil
}

func (d *Driver) runChunked(ctx context.Context, pcm transcript.PcmBuffer, opts transcript.Options, windowMs int64) (transcript.Transcript, error) {
	overlapMs := int64(opts.ChunkOverlapSeconds) * 1_000
	if overlapMs >= windowMs {
		return transcript.Transcript{}, newError("Run", transcript.ErrorKindInferenceFailure,
			fmt.Errorf("chunk_overlap_seconds (%dms) must be less than chunk_size_minutes (%dms)", overlapMs, windowMs))
	}

	windows := generateWindows(pcm.DurationMs(), windowMs, overlapMs)

	var (
		segments []transcript.Segment
		language string
	)

	for k, win := range windows {
		if err := ctx.Err(); err != nil {
			return transcript.Transcript{}, newError("Run", transcript.ErrorKindInferenceFailure, err)
		}

		samples := pcm.Slice(win.StartMs, win.EndMs)
		result, err := d.adapter.Transcribe(samples, whisperadapter.Options{
			Language:     opts.Language,
			Translate:    opts.Translate,
			Threads:      opts.Threads,
			TimeOffsetMs: win.StartMs,
		})
		if err != nil {
			return transcript.Transcript{}, fmt.Errorf("window %d [%d,%d): %w", k, win.StartMs, win.EndMs, err)
		}

		if k == 0 {
			language = result.Language
		}
		segments = append(segments, result.Segments...)
	}

	return transcript.Transcript{Language: language, Segments: segments}, nil
}
