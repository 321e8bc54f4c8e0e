package whisperadapter_test

import (
	"os"
	"testing"

	"github.com/rodnoy/orangenote/pkg/transcribe/whisperadapter"
)

// testModelPath returns the path to a real whisper.cpp ggml model for
// integration tests. It reads from the ORANGENOTE_TEST_MODEL_PATH
// environment variable; the test is skipped if unset, since these tests
// require a real model file and a CGO-linked whisper.cpp build.
func testModelPath(t *testing.T) string {
	t.Helper()
	p := os.Getenv("ORANGENOTE_TEST_MODEL_PATH")
	if p == "" {
		t.Skip("ORANGENOTE_TEST_MODEL_PATH not set; skipping native whisper.cpp test")
	}
	return p
}

func TestOpen_InvalidPath_ReturnsError(t *testing.T) {
	_, err := whisperadapter.Open("/nonexistent/path/to/model.bin")
	if err == nil {
		t.Fatal("expected error for invalid model path")
	}
}

func TestOpenAndTranscribe_RealModel(t *testing.T) {
	modelPath := testModelPath(t)

	a, err := whisperadapter.Open(modelPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer a.Close()

	// One second of silence; whisper.cpp should run without error even if it
	// emits no meaningful segments.
	samples := make([]float32, 16000)
	result, err := a.Transcribe(samples, whisperadapter.Options{Language: "en"})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	t.Logf("got %d segments from silence, language=%q", len(result.Segments), result.Language)
}
