package lzma2

import "fmt"

// Logger is the subset of *log.Logger a Decoder uses to trace
// chunk-framing transitions. Calling a method on a nil *log.Logger panics,
// which is unusable for an optional trace a caller can leave unset, so
// Decoder stores its own Logger field and checks it itself instead.
type Logger interface {
	Output(calldepth int, s string) error
}

// logf writes a formatted trace line when d.Logger is set; it is a no-op
// otherwise.
func (d *Decoder) logf(format string, v ...interface{}) {
	if d.Logger != nil {
		d.Logger.Output(2, fmt.Sprintf(format, v...))
	}
}
