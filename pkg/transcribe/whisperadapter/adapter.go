package whisperadapter

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/rodnoy/orangenote/pkg/transcript"
)

// nativeSegment is this package's own shape for a single decoded segment,
// independent of the exact field layout whisper.cpp's bindings expose on
// whisperlib.Segment. The real implementation converts to this shape in one
// place (nativeContextImpl.Segments); tests construct it directly without
// needing to know how to build a zero-value whisperlib.Segment.
type nativeSegment struct {
	text        string
	startMs     int64
	endMs       int64
	probability float32 // arithmetic mean of token probabilities, [0,1]
}

// nativeContext is the narrow surface this package needs from a whisper.cpp
// inference context. The real implementation is backed by whisperlib.Context;
// tests use a fake.
type nativeContext interface {
	SetLanguage(lang string) error
	SetTranslate(translate bool)
	SetThreads(n uint)
	Process(samples []float32) error
	Segments() ([]nativeSegment, error)
	DetectedLanguage() string
}

// nativeModel is the narrow surface this package needs from a loaded
// whisper.cpp model.
type nativeModel interface {
	NewContext() (nativeContext, error)
	Close() error
}

// Options configures a single Transcribe call.
type Options struct {
	// Language is a BCP-47-ish code understood by whisper.cpp (e.g. "en",
	// "de"). Empty means auto-detect.
	Language string
	// Translate requests translation to English instead of transcription
	// in the source language.
	Translate bool
	// Threads is the number of CPU threads whisper.cpp should use for this
	// call. Zero leaves the bindings' own default in place.
	Threads uint32
	// TimeOffsetMs is added to every returned segment's StartMs and EndMs,
	// converting window-relative timestamps to absolute transcript time.
	TimeOffsetMs int64
}

// Result is the outcome of one Transcribe call: the segments the model
// produced for that window, plus the language whisper.cpp used or detected.
type Result struct {
	Segments []transcript.Segment
	Language string
}

// Adapter wraps a single loaded whisper.cpp model. It is safe for concurrent
// use: Transcribe and Close are serialized on one mutex, so the model is
// never used by two calls at once nor closed mid-inference. Each Transcribe
// call creates its own whisper.cpp context, mirroring the teacher's "model
// loaded once, context per call" pattern.
type Adapter struct {
	model nativeModel

	mu     sync.Mutex
	closed bool
}

// Open loads a whisper.cpp model (a ggml .bin file) from modelPath. The
// caller must call Close when the Adapter is no longer needed.
func Open(modelPath string) (*Adapter, error) {
	if modelPath == "" {
		return nil, newError("Open", transcript.ErrorKindModelLoadFailure, errors.New("model path must not be empty"))
	}

	m, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, newError("Open", transcript.ErrorKindModelLoadFailure, fmt.Errorf("load %q: %w", modelPath, err))
	}

	return &Adapter{model: &nativeModelImpl{model: m}}, nil
}

// openWith wraps an already-constructed nativeModel; used by tests to inject
// fakes without going through whisperlib.
func openWith(m nativeModel) *Adapter {
	return &Adapter{model: m}
}

// Close releases the underlying whisper.cpp model.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	if a.model != nil {
		return a.model.Close()
	}
	return nil
}

// Transcribe runs inference over one window of mono float32 PCM, greedily
// sampling (whisper.cpp's default strategy) with no_context behavior always
// on — each call gets a fresh context, so no prior-window text ever biases
// this one. Returned segment timestamps are shifted by opts.TimeOffsetMs so
// callers can feed in window-relative audio and get back absolute-timeline
// segments directly.
func (a *Adapter) Transcribe(samples []float32, opts Options) (Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return Result{}, newError("Transcribe", transcript.ErrorKindInferenceFailure, errors.New("adapter is closed"))
	}

	if len(samples) == 0 {
		return Result{}, newError("Transcribe", transcript.ErrorKindEmptyAudio, errors.New("no samples to transcribe"))
	}

	wctx, err := a.model.NewContext()
	if err != nil {
		return Result{}, newError("Transcribe", transcript.ErrorKindInferenceFailure, fmt.Errorf("create context: %w", err))
	}

	wctx.SetTranslate(opts.Translate)
	if opts.Threads > 0 {
		wctx.SetThreads(uint(opts.Threads))
	}
	if opts.Language != "" {
		if err := wctx.SetLanguage(opts.Language); err != nil {
			return Result{}, newError("Transcribe", transcript.ErrorKindInferenceFailure, fmt.Errorf("set language %q: %w", opts.Language, err))
		}
	} else {
		// "auto" triggers whisper.cpp's own language-detection pass.
		_ = wctx.SetLanguage("auto")
	}

	if err := wctx.Process(samples); err != nil {
		return Result{}, newError("Transcribe", transcript.ErrorKindInferenceFailure, fmt.Errorf("process: %w", err))
	}

	native, err := wctx.Segments()
	if err != nil {
		return Result{}, newError("Transcribe", transcript.ErrorKindInferenceFailure, fmt.Errorf("read segments: %w", err))
	}

	segments := make([]transcript.Segment, 0, len(native))
	for _, s := range native {
		text := strings.TrimSpace(s.text)
		if text == "" {
			continue
		}
		segments = append(segments, transcript.Segment{
			StartMs:    s.startMs + opts.TimeOffsetMs,
			EndMs:      s.endMs + opts.TimeOffsetMs,
			Text:       text,
			Confidence: s.probability,
		})
	}

	lang := opts.Language
	if lang == "" {
		lang = wctx.DetectedLanguage()
	}

	return Result{Segments: segments, Language: lang}, nil
}

// ---- real whisperlib-backed implementation --------------------------------

type nativeModelImpl struct {
	model whisperlib.Model
}

func (m *nativeModelImpl) NewContext() (nativeContext, error) {
	wctx, err := m.model.NewContext()
	if err != nil {
		return nil, err
	}
	return &nativeContextImpl{ctx: wctx}, nil
}

func (m *nativeModelImpl) Close() error {
	return m.model.Close()
}

type nativeContextImpl struct {
	ctx whisperlib.Context
}

func (c *nativeContextImpl) SetLanguage(lang string) error {
	return c.ctx.SetLanguage(lang)
}

func (c *nativeContextImpl) SetTranslate(translate bool) {
	c.ctx.SetTranslate(translate)
}

func (c *nativeContextImpl) SetThreads(n uint) {
	c.ctx.SetThreads(n)
}

func (c *nativeContextImpl) Process(samples []float32) error {
	return c.ctx.Process(samples, nil, nil, nil)
}

// DetectedLanguage returns the language whisper.cpp used for the most
// recently processed call, whether it was pinned by SetLanguage or detected
// automatically.
func (c *nativeContextImpl) DetectedLanguage() string {
	return c.ctx.Language()
}

// Segments drains whisper.cpp's segment iterator (NextSegment terminates via
// io.EOF) and converts each whisperlib.Segment to this package's own
// nativeSegment shape, computing confidence as the arithmetic mean of token
// probabilities, or 0.0 if the segment carries no tokens (e.g. "[Music]"-style
// filler): a token-less segment must sort as the least trustworthy reading,
// not the most, so the Overlap Merger's confidence-weighted dedup never
// prefers it over a legitimate lower-but-nonzero-confidence neighbor.
func (c *nativeContextImpl) Segments() ([]nativeSegment, error) {
	var out []nativeSegment
	for {
		seg, err := c.ctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return out, err
		}

		probs := make([]float32, len(seg.Tokens))
		for i, tok := range seg.Tokens {
			probs[i] = tok.P
		}

		out = append(out, nativeSegment{
			text:        seg.Text,
			startMs:     seg.Start.Milliseconds(),
			endMs:       seg.End.Milliseconds(),
			probability: meanConfidence(probs),
		})
	}
	return out, nil
}

// meanConfidence returns the arithmetic mean of probs, or 0.0 for an empty
// or nil slice — per spec.md §4.2, a token-less segment reports zero
// confidence, not maximum confidence.
func meanConfidence(probs []float32) float32 {
	if len(probs) == 0 {
		return 0.0
	}
	var sum float32
	for _, p := range probs {
		sum += p
	}
	return sum / float32(len(probs))
}
