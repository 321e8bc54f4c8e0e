package modelstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rodnoy/orangenote/pkg/transcript"
)

func newTestStore(t *testing.T, handler http.HandlerFunc) (*Store, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	s, err := New(WithCacheDir(dir), WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s, srv
}

func TestResolve_CacheMiss_DownloadsAndPublishesAtomically(t *testing.T) {
	const payload = "fake ggml weights"
	s, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	})

	path, err := s.Resolve(context.Background(), transcript.VariantTinyEn, "", nil)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading resolved file: %v", err)
	}
	if string(data) != payload {
		t.Errorf("content = %q; want %q", data, payload)
	}

	// No leftover temp files after a successful download.
	entries, _ := os.ReadDir(filepath.Dir(path))
	for _, e := range entries {
		if e.Name() != filepath.Base(path) {
			t.Errorf("unexpected leftover file %q after successful download", e.Name())
		}
	}
}

func TestResolve_ReportsProgress(t *testing.T) {
	const payload = "fake ggml weights for the progress reporting test"
	s, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", len(payload)))
		w.Write([]byte(payload))
	})

	var calls []int64
	var lastTotal int64
	_, err := s.Resolve(context.Background(), transcript.VariantTiny, "", func(downloaded, total int64) {
		calls = append(calls, downloaded)
		lastTotal = total
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if len(calls) == 0 {
		t.Fatal("onProgress was never called")
	}
	if got := calls[len(calls)-1]; got != int64(len(payload)) {
		t.Errorf("final downloaded = %d; want %d", got, len(payload))
	}
	if lastTotal != int64(len(payload)) {
		t.Errorf("total = %d; want %d (from Content-Length)", lastTotal, len(payload))
	}
}

func TestResolve_CacheHit_NeverReportsProgress(t *testing.T) {
	s, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data"))
	})

	if _, err := s.Resolve(context.Background(), transcript.VariantTiny, "", nil); err != nil {
		t.Fatalf("first Resolve() error = %v", err)
	}

	called := false
	if _, err := s.Resolve(context.Background(), transcript.VariantTiny, "", func(int64, int64) { called = true }); err != nil {
		t.Fatalf("second Resolve() error = %v", err)
	}
	if called {
		t.Error("onProgress was called on a cache hit")
	}
}

func TestResolve_CacheHit_DoesNotHitNetwork(t *testing.T) {
	hits := 0
	s, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("data"))
	})

	if _, err := s.Resolve(context.Background(), transcript.VariantTiny, "", nil); err != nil {
		t.Fatalf("first Resolve() error = %v", err)
	}
	if _, err := s.Resolve(context.Background(), transcript.VariantTiny, "", nil); err != nil {
		t.Fatalf("second Resolve() error = %v", err)
	}
	if hits != 1 {
		t.Errorf("server hit %d times; want 1 (second call should be a cache hit)", hits)
	}
}

func TestResolve_UnrecognizedVariant_ReturnsNotRecognized(t *testing.T) {
	s, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {})
	_, err := s.Resolve(context.Background(), transcript.VariantUnknown, "", nil)
	if err == nil {
		t.Fatal("expected error for unrecognized variant")
	}
	if kind := transcript.KindOf(err); kind != transcript.ErrorKindNotRecognized {
		t.Errorf("KindOf(err) = %v; want %v", kind, transcript.ErrorKindNotRecognized)
	}
}

func TestResolve_HTTPError_ReturnsDownloadFailure(t *testing.T) {
	s, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	_, err := s.Resolve(context.Background(), transcript.VariantBase, "", nil)
	if err == nil {
		t.Fatal("expected error for HTTP 404")
	}
	if kind := transcript.KindOf(err); kind != transcript.ErrorKindDownloadFailure {
		t.Errorf("KindOf(err) = %v; want %v", kind, transcript.ErrorKindDownloadFailure)
	}
}

func TestResolve_ChecksumMismatch_LeavesNoCachedFile(t *testing.T) {
	s, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("actual content"))
	})

	_, err := s.Resolve(context.Background(), transcript.VariantSmall, "0000000000000000000000000000000000000000000000000000000000000000", nil)
	if err == nil {
		t.Fatal("expected checksum mismatch error")
	}
	if kind := transcript.KindOf(err); kind != transcript.ErrorKindChecksumMismatch {
		t.Errorf("KindOf(err) = %v; want %v", kind, transcript.ErrorKindChecksumMismatch)
	}
	if s.IsCached(transcript.VariantSmall) {
		t.Error("variant should not be cached after a checksum mismatch")
	}
}

func TestResolve_ChecksumMatch_Publishes(t *testing.T) {
	payload := []byte("correct bytes")
	sum := sha256.Sum256(payload)
	want := hex.EncodeToString(sum[:])

	s, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	})

	path, err := s.Resolve(context.Background(), transcript.VariantMedium, want, nil)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != string(payload) {
		t.Errorf("content = %q; want %q", data, payload)
	}
}

func TestIsCached_ListCached_Remove_Clear_CacheSizeBytes(t *testing.T) {
	s, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("0123456789"))
	})

	if s.IsCached(transcript.VariantTiny) {
		t.Fatal("should not be cached before Resolve")
	}

	if _, err := s.Resolve(context.Background(), transcript.VariantTiny, "", nil); err != nil {
		t.Fatalf("Resolve(tiny) error = %v", err)
	}
	if _, err := s.Resolve(context.Background(), transcript.VariantBase, "", nil); err != nil {
		t.Fatalf("Resolve(base) error = %v", err)
	}

	if !s.IsCached(transcript.VariantTiny) {
		t.Error("tiny should be cached")
	}

	cached, err := s.ListCached()
	if err != nil {
		t.Fatalf("ListCached() error = %v", err)
	}
	if len(cached) != 2 {
		t.Fatalf("len(cached) = %d; want 2", len(cached))
	}

	size, err := s.CacheSizeBytes()
	if err != nil {
		t.Fatalf("CacheSizeBytes() error = %v", err)
	}
	if size != 20 {
		t.Errorf("CacheSizeBytes() = %d; want 20", size)
	}

	if err := s.Remove(transcript.VariantTiny); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if s.IsCached(transcript.VariantTiny) {
		t.Error("tiny should no longer be cached after Remove")
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	cached, _ = s.ListCached()
	if len(cached) != 0 {
		t.Errorf("len(cached) after Clear() = %d; want 0", len(cached))
	}
}

func TestRemove_Uncached_NoError(t *testing.T) {
	s, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {})
	if err := s.Remove(transcript.VariantLarge); err != nil {
		t.Errorf("Remove() on uncached variant returned error: %v", err)
	}
}

func TestNew_CreatesCacheDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	s, err := New(WithCacheDir(dir))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if info, err := os.Stat(s.CacheDir()); err != nil || !info.IsDir() {
		t.Errorf("cache directory %q was not created", dir)
	}
}
