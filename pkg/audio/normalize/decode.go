package normalize

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"

	"github.com/rodnoy/orangenote/pkg/transcript"
)

// decodedAudio is the output of a single container decoder: interleaved
// float32 samples at the container's original sample rate and channel
// count, already converted from whatever wire sample format the container
// used (spec.md §4.1 step 2), but not yet mixed down or resampled (steps 3
// and 4, applied uniformly in normalize.go regardless of container).
type decodedAudio struct {
	samples    []float32
	sampleRate int
	channels   int
}

// decodeByExtension dispatches to the decoder for path's extension. Returns
// a *transcript.Error with Kind ErrorKindUnsupportedFormat for any
// extension outside normalize.RecognizedExtensions.
func decodeByExtension(path string) (decodedAudio, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))

	switch ext {
	case "m4a", "wma":
		// These containers have no pure-Go decoder in the dependency set;
		// the ffmpeg subprocess opens the file itself.
		return decodeViaFFmpeg(path)
	case "wav", "mp3", "flac", "ogg":
		// handled below, after opening the file.
	default:
		return decodedAudio{}, newError("decodeByExtension", transcript.ErrorKindUnsupportedFormat, fmt.Errorf("unrecognized extension %q", ext))
	}

	f, err := os.Open(path)
	if err != nil {
		return decodedAudio{}, newError("decodeByExtension", transcript.ErrorKindDecodeFailure, err)
	}
	defer f.Close()

	switch ext {
	case "wav":
		return decodeWAV(f)
	case "mp3":
		return decodeMP3(f)
	case "flac":
		return decodeFLAC(path)
	case "ogg":
		return decodeOGG(f)
	default:
		// unreachable: filtered above.
		return decodedAudio{}, newError("decodeByExtension", transcript.ErrorKindUnsupportedFormat, fmt.Errorf("unrecognized extension %q", ext))
	}
}

// decodeWAV decodes a RIFF/WAV stream using github.com/go-audio/wav,
// converting its IntBuffer samples to float32 via intToF32.
func decodeWAV(r io.ReadSeeker) (decodedAudio, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return decodedAudio{}, newError("decodeWAV", transcript.ErrorKindDecodeFailure, errors.New("not a valid WAV file"))
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil && (buf == nil || len(buf.Data) == 0) {
		return decodedAudio{}, newError("decodeWAV", transcript.ErrorKindDecodeFailure, err)
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}

	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		if bitDepth == 8 {
			samples[i] = u8ToF32(uint8(v))
		} else {
			samples[i] = intToF32(int64(v), bitDepth)
		}
	}

	return decodedAudio{
		samples:    samples,
		sampleRate: int(dec.SampleRate),
		channels:   int(dec.NumChans),
	}, nil
}

// decodeMP3 decodes an MPEG audio stream using github.com/hajimehoshi/go-mp3,
// which always yields signed 16-bit little-endian stereo PCM regardless of
// the source channel layout.
func decodeMP3(r io.Reader) (decodedAudio, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return decodedAudio{}, newError("decodeMP3", transcript.ErrorKindDecodeFailure, err)
	}

	raw, readErr := io.ReadAll(dec)
	if readErr != nil && len(raw) == 0 {
		return decodedAudio{}, newError("decodeMP3", transcript.ErrorKindDecodeFailure, readErr)
	}
	// A truncated stream still yields whatever was successfully decoded
	// before the error, per spec.md §4.1 edge cases.

	n := len(raw) / 2
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		v := int16(raw[i*2]) | int16(raw[i*2+1])<<8
		samples[i] = i16ToF32(v)
	}

	return decodedAudio{
		samples:    samples,
		sampleRate: dec.SampleRate(),
		channels:   2,
	}, nil
}

// decodeFLAC decodes a FLAC stream using github.com/mewkiz/flac, converting
// each frame's per-channel int32 subframe samples to interleaved float32.
func decodeFLAC(path string) (decodedAudio, error) {
	stream, err := flac.ParseFile(path)
	if err != nil {
		return decodedAudio{}, newError("decodeFLAC", transcript.ErrorKindDecodeFailure, err)
	}
	defer stream.Close()

	bitDepth := int(stream.Info.BitsPerSample)
	channels := int(stream.Info.NChannels)

	var samples []float32
	for {
		frame, ferr := stream.ParseNext()
		if errors.Is(ferr, io.EOF) {
			break
		}
		if ferr != nil {
			if len(samples) == 0 {
				return decodedAudio{}, newError("decodeFLAC", transcript.ErrorKindDecodeFailure, ferr)
			}
			break
		}

		blockSize := len(frame.Subframes[0].Samples)
		for i := 0; i < blockSize; i++ {
			for c := 0; c < channels; c++ {
				samples = append(samples, intToF32(int64(frame.Subframes[c].Samples[i]), bitDepth))
			}
		}
	}

	return decodedAudio{
		samples:    samples,
		sampleRate: int(stream.Info.SampleRate),
		channels:   channels,
	}, nil
}

// decodeOGG decodes an Ogg/Vorbis stream using
// github.com/jfreymuth/oggvorbis, which already yields interleaved float32
// samples in [-1, 1]; only the defensive clamp from spec.md §4.1 step 2
// applies.
func decodeOGG(r io.Reader) (decodedAudio, error) {
	reader, err := oggvorbis.NewReader(r)
	if err != nil {
		return decodedAudio{}, newError("decodeOGG", transcript.ErrorKindDecodeFailure, err)
	}

	var samples []float32
	buf := make([]float32, 8192)
	for {
		n, rerr := reader.Read(buf)
		for i := 0; i < n; i++ {
			samples = append(samples, clampF32(buf[i]))
		}
		if rerr != nil {
			if !errors.Is(rerr, io.EOF) && len(samples) == 0 {
				return decodedAudio{}, newError("decodeOGG", transcript.ErrorKindDecodeFailure, rerr)
			}
			break
		}
	}

	return decodedAudio{
		samples:    samples,
		sampleRate: reader.SampleRate(),
		channels:   reader.Channels(),
	}, nil
}
