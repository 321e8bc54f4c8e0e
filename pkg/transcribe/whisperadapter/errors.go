// Package whisperadapter implements the Model Adapter: a narrow wrapper
// around the whisper.cpp CGO bindings that turns one window of mono
// float32 PCM into a slice of transcript.Segment values with absolute
// timestamps.
//
// Grounded on the teacher's pkg/provider/stt/whisper/native.go, which
// already shows the bindings' call shape (Model.NewContext, Context.Process,
// Context.NextSegment terminating on io.EOF). That file drives the bindings
// from a silence-triggered streaming session; this package generalizes the
// same bindings usage to a batch, windowed call shape instead.
package whisperadapter

import "github.com/rodnoy/orangenote/pkg/transcript"

func newError(op string, kind transcript.ErrorKind, err error) error {
	return &transcript.Error{Op: "whisperadapter." + op, Kind: kind, Err: err}
}
