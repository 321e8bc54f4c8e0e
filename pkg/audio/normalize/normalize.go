package normalize

import (
	"fmt"

	"github.com/rodnoy/orangenote/pkg/transcript"
)

// Normalize decodes the audio file at path and returns a PcmBuffer obeying
// the spec.md §3 invariant: SampleRate == 16000, Channels == 1, and
// len(Samples) == round(DurationSeconds * 16000) within +/-1 sample.
//
// The algorithm follows spec.md §4.1 exactly: decode container -> convert
// sample format to float32 -> mono mixdown -> linear-interpolation
// resample to 16kHz. Channel mixdown always happens before resampling here
// (the mixdown is cheaper and resampling one channel instead of several
// only pays off when resampling runs first for a target *wider* than mono,
// which never applies to this Normalizer — mirrors the ordering rationale
// in the teacher's pkg/audio/convert.go, adapted to the reverse order since
// this Normalizer's target is always mono).
func Normalize(path string) (transcript.PcmBuffer, error) {
	decoded, err := decodeByExtension(path)
	if err != nil {
		return transcript.PcmBuffer{}, err
	}

	if len(decoded.samples) == 0 {
		return transcript.PcmBuffer{}, newError("Normalize", transcript.ErrorKindEmptyAudio, fmt.Errorf("%q decoded to zero samples", path))
	}

	mono := mixdownToMono(decoded.samples, decoded.channels)
	resampled := resampleLinear(mono, decoded.sampleRate, TargetSampleRate)

	if len(resampled) == 0 {
		return transcript.PcmBuffer{}, newError("Normalize", transcript.ErrorKindEmptyAudio, fmt.Errorf("%q produced zero samples after resampling", path))
	}

	return transcript.PcmBuffer{
		Samples:            resampled,
		SampleRate:         TargetSampleRate,
		Channels:           TargetChannels,
		OriginalSampleRate: decoded.sampleRate,
		OriginalChannels:   decoded.channels,
		DurationSeconds:    float64(len(resampled)) / float64(TargetSampleRate),
	}, nil
}
