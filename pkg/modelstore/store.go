package modelstore

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rodnoy/orangenote/pkg/transcript"
)

// DefaultBaseURL is the HuggingFace mirror ggml weight files are fetched
// from when no override is configured, per spec.md §4.5.
const DefaultBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

// Option configures a Store at construction time.
type Option func(*Store)

// WithCacheDir overrides the cache directory, taking precedence over every
// other entry in spec.md §4.5's precedence chain.
func WithCacheDir(dir string) Option {
	return func(s *Store) { s.cacheDirOverride = dir }
}

// WithBaseURL overrides the base URL weight files are downloaded from.
func WithBaseURL(url string) Option {
	return func(s *Store) { s.baseURL = strings.TrimSuffix(url, "/") }
}

// WithHTTPClient overrides the HTTP client used for downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Store) { s.httpClient = c }
}

// Store resolves ModelVariant values to cached weight files on disk,
// downloading on a cache miss.
type Store struct {
	cacheDirOverride string
	baseURL          string
	httpClient       *http.Client

	cacheDir string // resolved once in New
}

// New constructs a Store and resolves its cache directory following
// spec.md §4.5's precedence chain: (1) WithCacheDir override, (2) the OS
// user-cache directory joined with "orangenote/models", (3) a home-directory
// fallback "~/.cache/orangenote/models", (4) the process working
// directory's "./models" as a last resort. The resolved directory is
// created if it does not already exist.
func New(opts ...Option) (*Store, error) {
	s := &Store{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Minute},
	}
	for _, o := range opts {
		o(s)
	}

	dir, err := resolveCacheDir(s.cacheDirOverride)
	if err != nil {
		return nil, newError("New", transcript.ErrorKindCacheDirUnavailable, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, newError("New", transcript.ErrorKindCacheDirUnavailable, fmt.Errorf("create %q: %w", dir, err))
	}

	s.cacheDir = dir
	return s, nil
}

// resolveCacheDir walks spec.md §4.5's precedence chain, returning the
// first entry that can be determined. The earlier entries can fail on
// platforms lacking the relevant environment/home information; if the
// process working directory cannot be determined either, an error is
// returned.
func resolveCacheDir(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "orangenote", "models"), nil
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "orangenote", "models"), nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve cache directory: %w", err)
	}
	return filepath.Join(cwd, "models"), nil
}

// CacheDir returns the resolved cache directory this Store uses.
func (s *Store) CacheDir() string {
	return s.cacheDir
}

func (s *Store) pathFor(variant transcript.ModelVariant) string {
	return filepath.Join(s.cacheDir, variant.Filename())
}

// IsCached reports whether variant's weight file is already present on
// disk.
func (s *Store) IsCached(variant transcript.ModelVariant) bool {
	info, err := os.Stat(s.pathFor(variant))
	return err == nil && !info.IsDir()
}

// Resolve ensures variant's weight file is present on disk, downloading it
// on a cache miss, and returns its filesystem path. If expectedSHA256 is
// non-empty, a freshly downloaded file is verified against it before
// publication; an existing cached file is never re-verified. onProgress,
// if non-nil, is called as the download proceeds (see ProgressFunc); it is
// never invoked on a cache hit. Pass nil when progress reporting is not
// needed.
func (s *Store) Resolve(ctx context.Context, variant transcript.ModelVariant, expectedSHA256 string, onProgress ProgressFunc) (string, error) {
	if variant == transcript.VariantUnknown {
		return "", newError("Resolve", transcript.ErrorKindNotRecognized, fmt.Errorf("model variant is not recognized"))
	}

	dest := s.pathFor(variant)
	if s.IsCached(variant) {
		return dest, nil
	}

	url := s.baseURL + "/" + variant.Filename()
	if err := downloadAtomically(ctx, s.httpClient, url, dest, expectedSHA256, onProgress); err != nil {
		return "", err
	}
	return dest, nil
}

// ListCached returns every recognized variant currently present on disk.
func (s *Store) ListCached() ([]transcript.ModelVariant, error) {
	entries, err := os.ReadDir(s.cacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, newError("ListCached", transcript.ErrorKindCacheDirUnavailable, err)
	}

	var cached []transcript.ModelVariant
	for _, v := range transcript.AllVariants() {
		name := v.Filename()
		for _, e := range entries {
			if e.Name() == name && !e.IsDir() {
				cached = append(cached, v)
				break
			}
		}
	}
	return cached, nil
}

// Remove deletes variant's weight file if present. Removing an uncached
// variant is not an error.
func (s *Store) Remove(variant transcript.ModelVariant) error {
	err := os.Remove(s.pathFor(variant))
	if err != nil && !os.IsNotExist(err) {
		return newError("Remove", transcript.ErrorKindCacheDirUnavailable, err)
	}
	return nil
}

// Clear removes every cached weight file, leaving the cache directory
// itself in place.
func (s *Store) Clear() error {
	cached, err := s.ListCached()
	if err != nil {
		return err
	}
	for _, v := range cached {
		if err := s.Remove(v); err != nil {
			return err
		}
	}
	return nil
}

// CacheSizeBytes returns the total size, in bytes, of every cached weight
// file.
func (s *Store) CacheSizeBytes() (int64, error) {
	cached, err := s.ListCached()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, v := range cached {
		info, err := os.Stat(s.pathFor(v))
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}
