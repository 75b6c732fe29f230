package lzma

// FinishMode is the caller's assertion about what the output limit means
// for the current call to DecodeToDic.
type FinishMode int

const (
	// FinishAny means decoding may stop as soon as the output limit is
	// reached, whether or not the stream is actually finished there.
	FinishAny FinishMode = iota
	// FinishEnd means the byte at the output limit, if any, must be the
	// last byte of the stream. At the limit the decoder reports
	// StatusMaybeFinishedWithoutMark if it stopped in a clean state;
	// otherwise it looks for the end marker and treats anything else as
	// corruption.
	FinishEnd
)

// Status reports the outcome of a DecodeToDic call.
type Status int

const (
	// StatusNotSpecified is the zero value; DecodeToDic returns it only
	// together with a non-nil error.
	StatusNotSpecified Status = iota
	// StatusFinishedWithMark means the end-of-stream marker was decoded
	// and the range coder state is clean (code == 0).
	StatusFinishedWithMark
	// StatusNotFinished means the output limit was reached but more
	// decoding work remains (a pending match, or FinishAny semantics).
	StatusNotFinished
	// StatusNeedsMoreInput means the input was exhausted in the middle
	// of a symbol; call again with more bytes appended.
	StatusNeedsMoreInput
	// StatusMaybeFinishedWithoutMark means the output limit was reached
	// with no pending match and a clean range-coder state; the stream
	// may or may not continue.
	StatusMaybeFinishedWithoutMark
)

func (s Status) String() string {
	switch s {
	case StatusFinishedWithMark:
		return "FinishedWithMark"
	case StatusNotFinished:
		return "NotFinished"
	case StatusNeedsMoreInput:
		return "NeedsMoreInput"
	case StatusMaybeFinishedWithoutMark:
		return "MaybeFinishedWithoutMark"
	default:
		return "NotSpecified"
	}
}
