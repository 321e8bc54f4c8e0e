package modelstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rodnoy/orangenote/pkg/transcript"
)

// ProgressFunc reports download progress: downloaded is the cumulative byte
// count written so far, total is the response's advertised Content-Length
// (0 if the server did not send one). Resolve invokes it after every
// chunk written to the temporary file; it is never invoked for a cache hit.
type ProgressFunc func(downloaded, total int64)

// progressWriter wraps an io.Writer, reporting cumulative bytes written to
// onProgress after every successful Write. A nil onProgress makes it a
// transparent passthrough.
type progressWriter struct {
	w          io.Writer
	total      int64
	downloaded int64
	onProgress ProgressFunc
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	if n > 0 {
		p.downloaded += int64(n)
		if p.onProgress != nil {
			p.onProgress(p.downloaded, p.total)
		}
	}
	return n, err
}

// downloadAtomically streams url's body to a temporary sibling file of dest
// and renames it into place only on complete, non-error, (optionally)
// checksum-verified receipt, per spec.md §4.5's atomic-publication
// requirement: a crash mid-download must never leave a file that could be
// mistaken for a complete cached model. onProgress, if non-nil, is called
// after every chunk written with the cumulative bytes downloaded and the
// response's advertised total (0 if unknown).
func downloadAtomically(ctx context.Context, client *http.Client, url, dest, expectedSHA256 string, onProgress ProgressFunc) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return newError("Resolve", transcript.ErrorKindDownloadFailure, fmt.Errorf("create request: %w", err))
	}

	resp, err := client.Do(req)
	if err != nil {
		return newError("Resolve", transcript.ErrorKindDownloadFailure, fmt.Errorf("http request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return newError("Resolve", transcript.ErrorKindDownloadFailure, fmt.Errorf("server returned HTTP %d for %s", resp.StatusCode, url))
	}

	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, filepath.Base(dest)+".*.tmp")
	if err != nil {
		return newError("Resolve", transcript.ErrorKindDownloadFailure, fmt.Errorf("create temp file: %w", err))
	}
	tmpPath := tmp.Name()
	// A download that fails partway must leave no trace; only a clean
	// rename below keeps the temp file.
	succeeded := false
	defer func() {
		if !succeeded {
			os.Remove(tmpPath)
		}
	}()

	hasher := sha256.New()
	var writer io.Writer = tmp
	if expectedSHA256 != "" {
		writer = io.MultiWriter(tmp, hasher)
	}
	total := resp.ContentLength
	if total < 0 {
		total = 0
	}
	writer = &progressWriter{w: writer, total: total, onProgress: onProgress}

	if _, err := io.Copy(writer, resp.Body); err != nil {
		tmp.Close()
		return newError("Resolve", transcript.ErrorKindDownloadFailure, fmt.Errorf("write response body: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return newError("Resolve", transcript.ErrorKindDownloadFailure, fmt.Errorf("close temp file: %w", err))
	}

	if expectedSHA256 != "" {
		got := hex.EncodeToString(hasher.Sum(nil))
		if got != expectedSHA256 {
			return newError("Resolve", transcript.ErrorKindChecksumMismatch, fmt.Errorf("got sha256 %s, want %s", got, expectedSHA256))
		}
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return newError("Resolve", transcript.ErrorKindDownloadFailure, fmt.Errorf("publish %q: %w", dest, err))
	}
	succeeded = true
	return nil
}
