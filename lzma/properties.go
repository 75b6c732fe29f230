package lzma

// Properties fixes the four parameters that control an LZMA stream: the
// number of literal context bits (LC), literal position bits (LP), position
// bits (PB), and the dictionary size in bytes.
type Properties struct {
	LC, LP, PB uint32
	DictSize   uint32
}

// lcLPMax is the maximum value of LC+LP accepted by the LZMA2 framing
// layer (the raw LZMA container allows more, but this decoder only ever
// runs inside LZMA2).
const lcLPMax = 4

// validate reports whether p describes a combination this decoder supports.
// Unlike ErrBadStream, a violation here is the caller's fault, not the
// compressed stream's: it is only reachable when something constructs a
// Core directly with properties LZMA2 framing would never produce.
func (p Properties) validate() error {
	if p.LC+p.LP > lcLPMax {
		return ErrInvalidArgument
	}
	if p.PB > 4 {
		return ErrInvalidArgument
	}
	return nil
}
