// Package driver implements the Inference Driver: decides between
// single-shot and chunked execution over a normalized PcmBuffer, invokes the
// Model Adapter once per window, and shifts each window's segment
// timestamps onto the clip's global time base.
//
// Grounded on the teacher's pkg/provider/stt/whisper/native.go
// processLoop/doFlush pattern of invoking inference once per accumulated
// buffer, generalized from silence-triggered buffering to fixed-size,
// overlapping windows computed up front.
package driver

import "github.com/rodnoy/orangenote/pkg/transcript"

func newError(op string, kind transcript.ErrorKind, err error) error {
	return &transcript.Error{Op: "driver." + op, Kind: kind, Err: err}
}
