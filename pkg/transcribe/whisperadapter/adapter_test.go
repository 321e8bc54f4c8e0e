package whisperadapter

import (
	"errors"
	"testing"

	"github.com/rodnoy/orangenote/pkg/transcript"
)

// fakeContext is a test double for nativeContext that records calls and
// returns pre-seeded segments.
type fakeContext struct {
	language  string
	translate bool
	threads   uint

	processErr  error
	segments    []nativeSegment
	segmentsErr error

	setLanguageErr error
}

func (f *fakeContext) SetLanguage(lang string) error {
	f.language = lang
	return f.setLanguageErr
}

func (f *fakeContext) SetTranslate(t bool) { f.translate = t }
func (f *fakeContext) SetThreads(n uint)   { f.threads = n }

func (f *fakeContext) Process(samples []float32) error {
	return f.processErr
}

func (f *fakeContext) Segments() ([]nativeSegment, error) {
	return f.segments, f.segmentsErr
}

func (f *fakeContext) DetectedLanguage() string {
	if f.language == "auto" {
		return "en"
	}
	return f.language
}

// fakeModel is a test double for nativeModel.
type fakeModel struct {
	ctx       *fakeContext
	newCtxErr error
	closed    bool
}

func (f *fakeModel) NewContext() (nativeContext, error) {
	if f.newCtxErr != nil {
		return nil, f.newCtxErr
	}
	return f.ctx, nil
}

func (f *fakeModel) Close() error {
	f.closed = true
	return nil
}

func TestOpen_EmptyPath_ReturnsModelLoadFailure(t *testing.T) {
	_, err := Open("")
	if err == nil {
		t.Fatal("expected error for empty path")
	}
	if kind := transcript.KindOf(err); kind != transcript.ErrorKindModelLoadFailure {
		t.Errorf("KindOf(err) = %v; want %v", kind, transcript.ErrorKindModelLoadFailure)
	}
}

func TestTranscribe_EmptySamples_ReturnsEmptyAudioError(t *testing.T) {
	a := openWith(&fakeModel{ctx: &fakeContext{}})
	_, err := a.Transcribe(nil, Options{})
	if err == nil {
		t.Fatal("expected error for empty samples")
	}
	if kind := transcript.KindOf(err); kind != transcript.ErrorKindEmptyAudio {
		t.Errorf("KindOf(err) = %v; want %v", kind, transcript.ErrorKindEmptyAudio)
	}
}

func TestTranscribe_AfterClose_ReturnsInferenceFailure(t *testing.T) {
	a := openWith(&fakeModel{ctx: &fakeContext{}})
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	_, err := a.Transcribe([]float32{0.1, 0.2}, Options{})
	if err == nil {
		t.Fatal("expected error after Close()")
	}
	if kind := transcript.KindOf(err); kind != transcript.ErrorKindInferenceFailure {
		t.Errorf("KindOf(err) = %v; want %v", kind, transcript.ErrorKindInferenceFailure)
	}
}

func TestTranscribe_AppliesTimeOffsetAndFiltersBlankSegments(t *testing.T) {
	ctx := &fakeContext{
		segments: []nativeSegment{
			{text: "hello world", startMs: 0, endMs: 1000, probability: 0.9},
			{text: "   ", startMs: 1000, endMs: 1200, probability: 0.5},
			{text: "second segment", startMs: 1200, endMs: 2000, probability: 0.7},
		},
	}
	a := openWith(&fakeModel{ctx: ctx})

	result, err := a.Transcribe([]float32{0.1, 0.2, 0.3}, Options{TimeOffsetMs: 30000})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	segs := result.Segments
	if len(segs) != 2 {
		t.Fatalf("len(segs) = %d; want 2 (blank segment filtered)", len(segs))
	}
	if segs[0].StartMs != 30000 || segs[0].EndMs != 31000 {
		t.Errorf("segs[0] timestamps = (%d, %d); want (30000, 31000)", segs[0].StartMs, segs[0].EndMs)
	}
	if segs[1].StartMs != 31200 || segs[1].EndMs != 32000 {
		t.Errorf("segs[1] timestamps = (%d, %d); want (31200, 32000)", segs[1].StartMs, segs[1].EndMs)
	}
	if segs[0].Confidence != 0.9 {
		t.Errorf("segs[0].Confidence = %f; want 0.9", segs[0].Confidence)
	}
}

func TestTranscribe_UsesAutoLanguageWhenUnset(t *testing.T) {
	ctx := &fakeContext{}
	a := openWith(&fakeModel{ctx: ctx})

	if _, err := a.Transcribe([]float32{0.1}, Options{}); err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if ctx.language != "auto" {
		t.Errorf("language = %q; want %q", ctx.language, "auto")
	}
}

func TestTranscribe_PassesExplicitLanguageAndTranslate(t *testing.T) {
	ctx := &fakeContext{}
	a := openWith(&fakeModel{ctx: ctx})

	if _, err := a.Transcribe([]float32{0.1}, Options{Language: "de", Translate: true, Threads: 4}); err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if ctx.language != "de" {
		t.Errorf("language = %q; want %q", ctx.language, "de")
	}
	if !ctx.translate {
		t.Error("translate = false; want true")
	}
	if ctx.threads != 4 {
		t.Errorf("threads = %d; want 4", ctx.threads)
	}
}

func TestTranscribe_ProcessError_Propagates(t *testing.T) {
	wantErr := errors.New("boom")
	ctx := &fakeContext{processErr: wantErr}
	a := openWith(&fakeModel{ctx: ctx})

	_, err := a.Transcribe([]float32{0.1}, Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	if kind := transcript.KindOf(err); kind != transcript.ErrorKindInferenceFailure {
		t.Errorf("KindOf(err) = %v; want %v", kind, transcript.ErrorKindInferenceFailure)
	}
}

func TestClose_Idempotent(t *testing.T) {
	m := &fakeModel{ctx: &fakeContext{}}
	a := openWith(m)
	if err := a.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if !m.closed {
		t.Error("underlying model was never closed")
	}
}

func TestMeanConfidence_NoTokens_ReturnsZero(t *testing.T) {
	if got := meanConfidence(nil); got != 0.0 {
		t.Errorf("meanConfidence(nil) = %v; want 0.0", got)
	}
	if got := meanConfidence([]float32{}); got != 0.0 {
		t.Errorf("meanConfidence(empty) = %v; want 0.0", got)
	}
}

func TestMeanConfidence_AveragesTokenProbabilities(t *testing.T) {
	got := meanConfidence([]float32{0.2, 0.4, 0.9})
	want := float32(0.5)
	if diff := got - want; diff < -1e-6 || diff > 1e-6 {
		t.Errorf("meanConfidence(...) = %v; want %v", got, want)
	}
}
