// Package normalize implements the Audio Normalizer: decoding an arbitrary
// supported audio container into mono float32 PCM at the model's fixed
// target sample rate (16 kHz), regardless of the input's original channel
// count or sample rate.
//
// Grounded on the teacher's pkg/audio/convert.go (FormatConverter's
// resample-then-mixdown pipeline and linear-interpolation resampler) and
// pkg/provider/stt/whisper/convert.go (integer-to-float32 PCM conversion),
// generalized from fixed 16-bit-PCM-in/any-rate-out to arbitrary compressed
// containers in.
package normalize

import "github.com/rodnoy/orangenote/pkg/transcript"

// TargetSampleRate is the sample rate every PcmBuffer is normalized to, Hz.
const TargetSampleRate = 16000

// TargetChannels is the channel count every PcmBuffer is normalized to.
const TargetChannels = 1

// RecognizedExtensions lists the container extensions the Normalizer
// accepts, per spec.md §4.1 (without the leading dot).
var RecognizedExtensions = []string{"mp3", "wav", "flac", "m4a", "ogg", "wma"}

func newError(op string, kind transcript.ErrorKind, err error) error {
	return &transcript.Error{Op: "normalize." + op, Kind: kind, Err: err}
}
