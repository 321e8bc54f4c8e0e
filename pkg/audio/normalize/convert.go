package normalize

// sampleFormat identifies the PCM sample encoding a container decoder
// yielded before conversion to float32, per spec.md §4.1 step 2.
type sampleFormat int

const (
	formatF32 sampleFormat = iota
	formatI16
	formatU8
)

// i16ToF32 converts a signed 16-bit sample to float32 in [-1, 1] using the
// full-scale divisor 32768.0, per spec.md §4.1: "i16 -> f32: divide by
// 32768.0".
func i16ToF32(v int16) float32 {
	return float32(v) / 32768.0
}

// u8ToF32 converts an unsigned 8-bit sample (centered on 128) to float32 in
// [-1, 1], per spec.md §4.1: "u8 -> f32: subtract 128, divide by 128.0".
func u8ToF32(v uint8) float32 {
	return (float32(v) - 128.0) / 128.0
}

// clampF32 defensively clamps a float32 sample to [-1, 1], per spec.md
// §4.1 step 2's "f32 -> f32: clamp to [-1, +1] (defensive)".
func clampF32(v float32) float32 {
	switch {
	case v > 1.0:
		return 1.0
	case v < -1.0:
		return -1.0
	default:
		return v
	}
}

// intToF32 converts a signed integer sample of the given bit depth to
// float32 in [-1, 1]. bitDepth 16 uses the spec-mandated 32768.0 divisor
// exactly; other depths (24, 32 — containers beyond the spec's {f32, i16,
// u8} set that some decoders still surface) use the general full-scale
// divisor 2^(bitDepth-1), which reduces to the spec formula at 16 bits.
func intToF32(v int64, bitDepth int) float32 {
	if bitDepth == 16 {
		return i16ToF32(int16(v))
	}
	divisor := float32(int64(1) << uint(bitDepth-1))
	return clampF32(float32(v) / divisor)
}

// mixdownToMono reduces interleaved multi-channel float32 samples to mono
// by averaging all channels per frame, per spec.md §4.1 step 3:
// "out[i] = (1/channels) * sum_c in[i*channels + c]". If channels <= 1 the
// input is returned unchanged (no copy).
func mixdownToMono(in []float32, channels int) []float32 {
	if channels <= 1 {
		return in
	}
	frames := len(in) / channels
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		base := i * channels
		for c := 0; c < channels; c++ {
			sum += in[base+c]
		}
		out[i] = sum / float32(channels)
	}
	return out
}

// resampleLinear resamples mono float32 samples from srcRate to dstRate
// using linear interpolation, per spec.md §4.1 step 4: for output index j,
// t = j*srcRate/dstRate, i = floor(t), f = t-i, output = (1-f)*in[i] +
// f*in[i+1] with edge clamping. Output length is ceil(len(in)*dstRate /
// srcRate). If srcRate == dstRate the input is returned unchanged.
func resampleLinear(in []float32, srcRate, dstRate int) []float32 {
	if srcRate == dstRate || srcRate <= 0 || dstRate <= 0 || len(in) == 0 {
		return in
	}

	outLen := ceilDiv(len(in)*dstRate, srcRate)
	out := make([]float32, outLen)

	ratio := float64(srcRate) / float64(dstRate)
	last := len(in) - 1

	for j := 0; j < outLen; j++ {
		t := float64(j) * ratio
		i := int(t)
		f := float32(t - float64(i))

		if i >= last {
			out[j] = in[last]
			continue
		}
		out[j] = (1-f)*in[i] + f*in[i+1]
	}
	return out
}

// ceilDiv returns ceil(a/b) for non-negative a and positive b.
func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
