// Package modelstore implements the Model Store: resolving a ModelVariant to
// a cached weight file on disk, downloading it on a cache miss, and managing
// the cache directory's contents.
//
// Grounded on the teacher's pkg/provider/stt/whisper/whisper.go, which
// already shows this codebase's http.Client conventions (a single client
// with a generous timeout, context-aware requests via
// http.NewRequestWithContext); generalized from a POST-per-utterance
// inference client to a GET-and-stream-to-disk download client.
package modelstore

import "github.com/rodnoy/orangenote/pkg/transcript"

func newError(op string, kind transcript.ErrorKind, err error) error {
	return &transcript.Error{Op: "modelstore." + op, Kind: kind, Err: err}
}
