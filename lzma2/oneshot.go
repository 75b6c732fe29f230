package lzma2

import "github.com/ascheglov/lzma2/lzma"

// Decode is the one-shot façade: it decodes src, an entire LZMA2 stream
// (property byte followed by chunks), into dest, using dest itself as the
// core's dictionary. dest must be at least as large as the decoded
// output — this façade performs no wrapping.
//
// It returns the number of bytes written to dest, the number of bytes of
// src consumed, and the terminal status.
func Decode(dest, src []byte, finishMode lzma.FinishMode) (destLen, srcLen int, status lzma.Status, err error) {
	if len(src) == 0 {
		return 0, 0, lzma.StatusNeedsMoreInput, nil
	}
	prop := src[0]
	dic := &lzma.Dict{Mem: dest}
	dec, err := NewDecoder(dic, prop)
	if err != nil {
		return 0, 0, lzma.StatusNotSpecified, err
	}
	n, status, err := dec.DecodeToDic(len(dest), src[1:], finishMode)
	return dic.Pos, n + 1, status, err
}
