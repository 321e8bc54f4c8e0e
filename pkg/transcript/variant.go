package transcript

import (
	"fmt"
	"strings"
)

// ModelVariant identifies a Whisper weight file. The set is closed and
// enumerable: any caller-supplied name outside it is rejected by
// ParseVariant rather than silently passed through.
type ModelVariant int

// Recognized model variants, per spec.md §3 and §6.
const (
	VariantUnknown ModelVariant = iota
	VariantTiny
	VariantTinyEn
	VariantBase
	VariantBaseEn
	VariantSmall
	VariantSmallEn
	VariantMedium
	VariantMediumEn
	VariantLarge
)

// allVariants lists every recognized variant in a stable order, returned
// (as a copy) by AllVariants for any caller that needs to enumerate the
// closed set.
var allVariants = []ModelVariant{
	VariantTiny, VariantTinyEn,
	VariantBase, VariantBaseEn,
	VariantSmall, VariantSmallEn,
	VariantMedium, VariantMediumEn,
	VariantLarge,
}

// canonicalNames maps each variant to its dot-separated canonical name, the
// form spec.md §6 uses for the recognized identifier set and §4.5 uses
// (hyphen-free) for the on-disk filename.
var canonicalNames = map[ModelVariant]string{
	VariantTiny:     "tiny",
	VariantTinyEn:   "tiny.en",
	VariantBase:     "base",
	VariantBaseEn:   "base.en",
	VariantSmall:    "small",
	VariantSmallEn:  "small.en",
	VariantMedium:   "medium",
	VariantMediumEn: "medium.en",
	VariantLarge:    "large",
}

// approxSizeBytes holds the approximate on-disk size of each variant's ggml
// weight file, per spec.md §3 ("each variant maps to ... an approximate
// size-on-disk"). Values mirror the well-known ggml whisper.cpp release
// sizes.
var approxSizeBytes = map[ModelVariant]int64{
	VariantTiny:     77_700_000,
	VariantTinyEn:   77_700_000,
	VariantBase:     148_000_000,
	VariantBaseEn:   148_000_000,
	VariantSmall:    488_000_000,
	VariantSmallEn:  488_000_000,
	VariantMedium:   1_530_000_000,
	VariantMediumEn: 1_530_000_000,
	VariantLarge:    3_100_000_000,
}

// String returns the variant's canonical dot-separated name (e.g.
// "small.en"), or "unknown" for the zero value.
func (v ModelVariant) String() string {
	if name, ok := canonicalNames[v]; ok {
		return name
	}
	return "unknown"
}

// Filename returns the on-disk weight filename for v, per spec.md §4.5:
// "variant -> ggml-<variant>.bin where <variant> uses the hyphen-free form".
func (v ModelVariant) Filename() string {
	return fmt.Sprintf("ggml-%s.bin", v.String())
}

// ApproxSizeBytes returns the approximate size, in bytes, of v's weight
// file on disk. Returns 0 for an unrecognized variant.
func (v ModelVariant) ApproxSizeBytes() int64 {
	return approxSizeBytes[v]
}

// ParseVariant resolves a caller-supplied variant name to a ModelVariant.
// Matching is case-insensitive and tolerates both the hyphen form used in
// spec.md §3 ("tiny-en") and the dot form used in §6 ("tiny.en").
//
// Any name outside the recognized set returns an *Error with Kind
// ErrorKindNotRecognized.
func ParseVariant(name string) (ModelVariant, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.ReplaceAll(normalized, "-", ".")
	normalized = strings.ReplaceAll(normalized, "_", ".")

	for v, canon := range canonicalNames {
		if canon == normalized {
			return v, nil
		}
	}
	// Accept the hyphen-free, dot-free spelling too (e.g. "tinyen").
	for v, canon := range canonicalNames {
		if strings.ReplaceAll(canon, ".", "") == normalized {
			return v, nil
		}
	}
	return VariantUnknown, &Error{Op: "ParseVariant", Kind: ErrorKindNotRecognized, Err: fmt.Errorf("model variant %q is not recognized", name)}
}

// AllVariants returns a copy of the closed set of recognized variants.
func AllVariants() []ModelVariant {
	out := make([]ModelVariant, len(allVariants))
	copy(out, allVariants)
	return out
}
