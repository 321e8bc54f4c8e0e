// Package transcript defines the data model shared by every stage of the
// audio-to-transcript pipeline: the normalized PCM buffer the Normalizer
// produces, the windows the Inference Driver slices it into, the segments
// the Model Adapter returns, and the Transcript the Inference Driver
// assembles, whose segments the Overlap Merger deduplicates.
//
// Types in this package carry no behavior beyond small accessors; the
// pipeline stages that populate and consume them live in sibling packages
// (pkg/audio/normalize, pkg/transcribe/driver, pkg/transcribe/merge,
// pkg/transcribe/whisperadapter).
package transcript

// PcmBuffer is a finite ordered sequence of single-precision floating point
// samples in the closed range [-1.0, +1.0].
//
// After normalization, SampleRate == 16000 and Channels == 1; see
// pkg/audio/normalize for the component that establishes this invariant.
type PcmBuffer struct {
	// Samples holds one float32 per sample, interleaved if Channels > 1.
	Samples []float32

	// SampleRate is the rate, in Hz, of Samples.
	SampleRate int

	// Channels is the channel count of Samples.
	Channels int

	// OriginalSampleRate is the source file's sample rate before any
	// resampling, preserved for diagnostics.
	OriginalSampleRate int

	// OriginalChannels is the source file's channel count before mixdown,
	// preserved for diagnostics.
	OriginalChannels int

	// DurationSeconds is len(Samples)/SampleRate for mono buffers, computed
	// once at normalization time.
	DurationSeconds float64
}

// DurationMs returns the buffer's duration in whole milliseconds, derived
// from the sample count and sample rate rather than the cached
// DurationSeconds field, so callers get an integral value suitable for
// window arithmetic.
func (p PcmBuffer) DurationMs() int64 {
	if p.SampleRate <= 0 {
		return 0
	}
	return int64(len(p.Samples)) * 1000 / int64(p.SampleRate)
}

// Slice returns a read-only view of the samples covering [startMs, endMs)
// of a mono, 16kHz PcmBuffer. The returned slice aliases p.Samples; callers
// that need an owned copy must clone it themselves.
func (p PcmBuffer) Slice(startMs, endMs int64) []float32 {
	rate := int64(p.SampleRate)
	start := startMs * rate / 1000
	end := endMs * rate / 1000
	if start < 0 {
		start = 0
	}
	if end > int64(len(p.Samples)) {
		end = int64(len(p.Samples))
	}
	if start >= end {
		return nil
	}
	return p.Samples[start:end]
}

// Window is a half-open interval [StartMs, EndMs) over a PcmBuffer,
// produced by the Inference Driver when chunking a clip.
type Window struct {
	StartMs int64
	EndMs   int64
}

// Token is a single recognized unit within a Segment, together with the
// model's confidence in it.
type Token struct {
	Text        string
	Probability float32
}

// Segment is the model's output unit: a span of time with recognized text
// and a confidence score. Timestamps on segments returned by the Inference
// Driver are absolute with respect to the original audio's origin.
type Segment struct {
	StartMs    int64
	EndMs      int64
	Text       string
	Confidence float32
	Tokens     []Token
}

// DurationMs returns EndMs - StartMs.
func (s Segment) DurationMs() int64 {
	return s.EndMs - s.StartMs
}

// Transcript is the final result of the core pipeline.
type Transcript struct {
	// Language is the ISO-639-1 tag reported by the model, or set by the
	// caller when a language hint was supplied.
	Language string

	// Segments, as returned by the Inference Driver, holds every window's
	// segments in window order, not yet deduplicated. merge.Merge turns them
	// into a sequence ordered by non-decreasing StartMs, with no two segments
	// sharing overlapping intervals and matching normalized text (see
	// pkg/transcribe/merge).
	Segments []Segment
}

// Options configures a single transcription run across the Inference
// Driver and Model Adapter. It is the Go shape of the "options" record in
// spec.md §6's exposed transcribe() interface.
type Options struct {
	// Language constrains recognition to a single ISO-639-1 tag. Empty lets
	// the model auto-detect.
	Language string

	// Translate, when true, instructs the model to emit English regardless
	// of the detected source language.
	Translate bool

	// Threads is the native worker thread count the Model Adapter should
	// configure for each transcribe call.
	Threads uint32

	// ChunkSizeMinutes selects chunked inference when > 0 and the clip is at
	// least this long; 0 forces single-shot inference regardless of length.
	ChunkSizeMinutes uint32

	// ChunkOverlapSeconds is the overlap, in seconds, between consecutive
	// windows when chunked inference is used. Must be less than
	// ChunkSizeMinutes*60.
	ChunkOverlapSeconds uint32
}
