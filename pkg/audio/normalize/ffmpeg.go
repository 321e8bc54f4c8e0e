package normalize

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/rodnoy/orangenote/pkg/transcript"
)

// probeResult is the subset of `ffprobe -show_streams -of json` output this
// package needs to recover a source file's original sample rate and
// channel count before decoding it to raw PCM.
type probeResult struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
}

// decodeViaFFmpeg decodes m4a (AAC) and wma containers, neither of which
// has a pure-Go decoder anywhere in the dependency set, by shelling out to
// ffmpeg. It requests raw interleaved float32 PCM at the source's own
// sample rate and channel count (no "-ar"/"-ac" override) so that mono
// mixdown and 16kHz resampling still happen uniformly in normalize.go,
// exactly as for the pure-Go-decoded containers.
//
// Grounded on _examples/richinsley-goshadertoy/audio/ffmpegbase.go's use of
// github.com/u2takey/ffmpeg-go to pipe raw f32le PCM out of ffmpeg.
func decodeViaFFmpeg(path string) (decodedAudio, error) {
	probeJSON, err := ffmpeg.Probe(path)
	if err != nil {
		return decodedAudio{}, newError("decodeViaFFmpeg", transcript.ErrorKindDecodeFailure, fmt.Errorf("probe: %w", err))
	}

	var probe probeResult
	if err := json.Unmarshal([]byte(probeJSON), &probe); err != nil {
		return decodedAudio{}, newError("decodeViaFFmpeg", transcript.ErrorKindDecodeFailure, fmt.Errorf("parse probe output: %w", err))
	}

	sampleRate, channels := 0, 0
	for _, s := range probe.Streams {
		if s.CodecType == "audio" {
			fmt.Sscanf(s.SampleRate, "%d", &sampleRate)
			channels = s.Channels
			break
		}
	}
	if sampleRate == 0 || channels == 0 {
		return decodedAudio{}, newError("decodeViaFFmpeg", transcript.ErrorKindDecodeFailure, fmt.Errorf("no audio stream found in %q", path))
	}

	var out bytes.Buffer
	err = ffmpeg.Input(path).
		Output("pipe:", ffmpeg.KwArgs{
			"f":   "f32le",
			"c:a": "pcm_f32le",
		}).
		WithOutput(&out).
		ErrorToStdOut().
		Run()
	if err != nil && out.Len() == 0 {
		return decodedAudio{}, newError("decodeViaFFmpeg", transcript.ErrorKindDecodeFailure, fmt.Errorf("ffmpeg decode: %w", err))
	}

	raw := out.Bytes()
	n := len(raw) / 4
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(raw[i*4 : i*4+4])
		samples[i] = clampF32(math.Float32frombits(bits))
	}

	return decodedAudio{
		samples:    samples,
		sampleRate: sampleRate,
		channels:   channels,
	}, nil
}
