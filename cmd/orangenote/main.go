// Command orangenote transcribes a single audio file end-to-end: resolve a
// whisper.cpp model (downloading it on a cache miss), normalize the input
// audio to 16kHz mono PCM, run single-shot or chunked inference, and merge
// overlapping windows into one ordered transcript.
//
// Output serialization (JSON/SRT/VTT/TXT/TSV), a full CLI front end, and
// progress display are explicitly out of scope; this entry point prints the
// merged segments as plain timestamped lines to stdout.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rodnoy/orangenote/pkg/audio/normalize"
	"github.com/rodnoy/orangenote/pkg/modelstore"
	"github.com/rodnoy/orangenote/pkg/transcribe/driver"
	"github.com/rodnoy/orangenote/pkg/transcribe/merge"
	"github.com/rodnoy/orangenote/pkg/transcribe/whisperadapter"
	"github.com/rodnoy/orangenote/pkg/transcript"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────
	audioPath := flag.String("audio", "", "path to the input audio file (required)")
	defaultsPath := flag.String("defaults", "", "path to a YAML file of TranscribeDefaults; flags left unset fall back to it")
	variantName := flag.String("model", "", "whisper model variant (e.g. tiny, base.en, small, large); defaults to base.en")
	modelPath := flag.String("model-path", "", "path to a local ggml weight file; overrides -model and skips the model store")
	cacheDir := flag.String("cache-dir", "", "override the model store's cache directory")
	checksum := flag.String("checksum", "", "expected SHA-256 of the downloaded weight file; empty skips verification")
	language := flag.String("language", "", "ISO-639-1 language hint; empty auto-detects")
	translate := flag.Bool("translate", false, "translate the recognized speech to English")
	threads := flag.Uint("threads", 0, "native worker threads per inference call; 0 leaves the bindings' default")
	chunkMinutes := flag.Uint("chunk-size-minutes", 0, "chunk size in minutes; 0 forces single-shot inference unless -defaults sets chunk_size_minutes")
	chunkOverlapSeconds := flag.Uint("chunk-overlap-seconds", 0, "overlap, in seconds, between consecutive chunks")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	logger := newLogger(*logLevel)
	slog.SetDefault(logger)

	if *audioPath == "" {
		fmt.Fprintln(os.Stderr, "orangenote: -audio is required")
		return 1
	}

	defaults, err := loadDefaults(*defaultsPath)
	if err != nil {
		slog.Error("failed to load defaults", "path", *defaultsPath, "err", err)
		return 1
	}
	applyDefaults(defaults, variantName, cacheDir, language, translate, threads, chunkMinutes, chunkOverlapSeconds)
	if *variantName == "" {
		*variantName = "base.en"
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	resolvedModelPath, err := resolveModelPath(ctx, *modelPath, *variantName, *cacheDir, *checksum)
	if err != nil {
		slog.Error("failed to resolve model", "err", err)
		return 1
	}
	slog.Info("model resolved", "path", resolvedModelPath)

	pcm, err := normalize.Normalize(*audioPath)
	if err != nil {
		slog.Error("failed to normalize audio", "path", *audioPath, "err", err)
		return 1
	}
	slog.Info("audio normalized",
		"duration_seconds", pcm.DurationSeconds,
		"original_sample_rate", pcm.OriginalSampleRate,
		"original_channels", pcm.OriginalChannels,
	)

	adapter, err := whisperadapter.Open(resolvedModelPath)
	if err != nil {
		slog.Error("failed to load model", "err", err)
		return 1
	}
	defer func() {
		if err := adapter.Close(); err != nil {
			slog.Warn("failed to close model adapter", "err", err)
		}
	}()

	opts := transcript.Options{
		Language:            *language,
		Translate:           *translate,
		Threads:             uint32(*threads),
		ChunkSizeMinutes:    uint32(*chunkMinutes),
		ChunkOverlapSeconds: uint32(*chunkOverlapSeconds),
	}

	d := driver.New(adapter)
	result, err := d.Run(ctx, pcm, opts)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Warn("transcription cancelled")
			return 1
		}
		slog.Error("transcription failed", "err", err)
		return 1
	}

	merged := merge.Merge(result.Segments)
	slog.Info("transcription complete", "language", result.Language, "segments", len(merged))

	printTranscript(result.Language, merged)
	return 0
}

// resolveModelPath returns a ggml weight file path ready to hand to
// whisperadapter.Open: explicitPath verbatim if set, otherwise the
// requested variant resolved (and downloaded, on a cache miss) through the
// Model Store.
func resolveModelPath(ctx context.Context, explicitPath, variantName, cacheDir, checksum string) (string, error) {
	if explicitPath != "" {
		return explicitPath, nil
	}

	variant, err := transcript.ParseVariant(variantName)
	if err != nil {
		return "", err
	}

	var opts []modelstore.Option
	if cacheDir != "" {
		opts = append(opts, modelstore.WithCacheDir(cacheDir))
	}
	store, err := modelstore.New(opts...)
	if err != nil {
		return "", err
	}

	if !store.IsCached(variant) {
		slog.Info("downloading model", "variant", variant.String(), "approx_bytes", variant.ApproxSizeBytes())
	}
	return store.Resolve(ctx, variant, checksum, logDownloadProgress)
}

// logDownloadProgress is the modelstore.ProgressFunc this command wires in.
// orangenote renders no progress bar (out of scope, per spec.md §1); it
// only surfaces progress as a debug-level log line, which a caller wanting
// a real progress bar can replace with its own ProgressFunc.
func logDownloadProgress(downloaded, total int64) {
	if total > 0 {
		slog.Debug("model download progress", "downloaded_bytes", downloaded, "total_bytes", total, "percent", downloaded*100/total)
		return
	}
	slog.Debug("model download progress", "downloaded_bytes", downloaded)
}

// printTranscript writes one line per segment as "[start --> end] text" to
// stdout, in the style of whisper.cpp's own console output.
func printTranscript(language string, segments []transcript.Segment) {
	fmt.Printf("# language: %s\n", language)
	for _, seg := range segments {
		fmt.Printf("[%s --> %s] %s\n", formatTimestamp(seg.StartMs), formatTimestamp(seg.EndMs), seg.Text)
	}
}

func formatTimestamp(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	d -= seconds * time.Second
	millis := d / time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, millis)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
