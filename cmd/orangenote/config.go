package main

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// TranscribeDefaults holds default values for a transcription run, loaded
// from an optional YAML file via -defaults. CLI flags always take
// precedence over these: a flag is only overridden by a default when the
// flag was left at its zero value.
type TranscribeDefaults struct {
	Model               string `yaml:"model"`
	CacheDir            string `yaml:"cache_dir"`
	Language            string `yaml:"language"`
	Translate           bool   `yaml:"translate"`
	Threads             uint   `yaml:"threads"`
	ChunkSizeMinutes    uint   `yaml:"chunk_size_minutes"`
	ChunkOverlapSeconds uint   `yaml:"chunk_overlap_seconds"`
}

// loadDefaults reads and decodes a TranscribeDefaults YAML file at path. An
// empty path is not an error: it simply means no defaults were requested,
// and the zero-value TranscribeDefaults changes nothing when merged.
func loadDefaults(path string) (TranscribeDefaults, error) {
	if path == "" {
		return TranscribeDefaults{}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return TranscribeDefaults{}, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	return decodeDefaults(f)
}

func decodeDefaults(r io.Reader) (TranscribeDefaults, error) {
	var d TranscribeDefaults
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil && err != io.EOF {
		return TranscribeDefaults{}, fmt.Errorf("decode yaml: %w", err)
	}
	return d, nil
}

// applyDefaults fills any zero-valued flag with the corresponding default,
// so a flag given a non-zero value wins and an unset flag falls back to the
// YAML file's value. A flag explicitly set to its zero value (e.g.
// -translate=false or -chunk-size-minutes=0) cannot be told apart from an
// unset one and is also replaced by the default.
func applyDefaults(d TranscribeDefaults, variantName, cacheDir, language *string, translate *bool, threads, chunkMinutes, chunkOverlapSeconds *uint) {
	if *variantName == "" {
		*variantName = d.Model
	}
	if *cacheDir == "" {
		*cacheDir = d.CacheDir
	}
	if *language == "" {
		*language = d.Language
	}
	if !*translate {
		*translate = d.Translate
	}
	if *threads == 0 {
		*threads = d.Threads
	}
	if *chunkMinutes == 0 {
		*chunkMinutes = d.ChunkSizeMinutes
	}
	if *chunkOverlapSeconds == 0 {
		*chunkOverlapSeconds = d.ChunkOverlapSeconds
	}
}
