package transcript

import "errors"

// ErrorKind is the closed set of failure categories raised anywhere in the
// audio-to-transcript pipeline, per spec.md §7's taxonomy. Representing it
// as an enum (rather than one sentinel per component) lets every component
// build a *transcript.Error with enough context to form a human-readable
// message while still letting callers branch with errors.Is against a
// single Kind sentinel, regardless of which component raised it.
type ErrorKind int

const (
	// ErrorKindUnknown is the zero value; never intentionally returned.
	ErrorKindUnknown ErrorKind = iota

	// ErrorKindUnsupportedFormat: Normalizer, file extension not recognized.
	ErrorKindUnsupportedFormat

	// ErrorKindDecodeFailure: Normalizer, container/codec rejected the stream.
	ErrorKindDecodeFailure

	// ErrorKindEmptyAudio: Normalizer, zero decoded samples.
	ErrorKindEmptyAudio

	// ErrorKindNotRecognized: Store, unrecognized model variant name.
	ErrorKindNotRecognized

	// ErrorKindCacheDirUnavailable: Store, cache directory could not be
	// resolved or created.
	ErrorKindCacheDirUnavailable

	// ErrorKindDownloadFailure: Store, HTTP or I/O error while fetching a
	// weight file.
	ErrorKindDownloadFailure

	// ErrorKindChecksumMismatch: Store, downloaded file does not match the
	// caller-supplied SHA-256.
	ErrorKindChecksumMismatch

	// ErrorKindModelLoadFailure: Adapter, native model failed to load.
	ErrorKindModelLoadFailure

	// ErrorKindInferenceFailure: Adapter, native inference call failed.
	ErrorKindInferenceFailure
)

// String returns a short machine-stable name for k, used in Error's
// message formatting.
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindUnsupportedFormat:
		return "unsupported_format"
	case ErrorKindDecodeFailure:
		return "decode_failure"
	case ErrorKindEmptyAudio:
		return "empty_audio"
	case ErrorKindNotRecognized:
		return "model_not_recognized"
	case ErrorKindCacheDirUnavailable:
		return "cache_dir_unavailable"
	case ErrorKindDownloadFailure:
		return "download_failure"
	case ErrorKindChecksumMismatch:
		return "checksum_mismatch"
	case ErrorKindModelLoadFailure:
		return "model_load_failure"
	case ErrorKindInferenceFailure:
		return "inference_failure"
	default:
		return "unknown"
	}
}

// Error is the tagged-union error type every pipeline component returns.
// It names the originating operation and failure Kind and wraps the
// underlying cause, so callers get enough context to build a human-readable
// message (spec.md §7) while still being able to match on Kind via
// errors.Is/errors.As.
type Error struct {
	// Op is the originating operation, e.g. "normalize.Normalize" or
	// "modelstore.Resolve".
	Op string

	// Kind is the machine-readable failure category.
	Kind ErrorKind

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Kind.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a *transcript.Error with the same Kind, so
// callers can write errors.Is(err, &transcript.Error{Kind:
// transcript.ErrorKindEmptyAudio}) without needing a per-kind sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf returns the ErrorKind carried by err if it is (or wraps) a
// *transcript.Error, or ErrorKindUnknown otherwise.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrorKindUnknown
}
