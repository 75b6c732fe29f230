package lzma2

import "github.com/ascheglov/lzma2/lzma"

// maxBufferedDicSize bounds the dictionary NewBufferedDecoder will attempt
// to allocate. Property byte 40 legitimately encodes a 4 GiB dictionary,
// but refusing that allocation up front is kinder than letting make()
// panic deep inside a decode call.
const maxBufferedDicSize = 1 << 31

// BufferedDecoder owns its own dictionary, sized to the stream's declared
// DictSize, and treats it as a ring buffer: once full, positions wrap and
// only the most recently produced bytes remain available for the core's
// back-references. Use this façade for streams too large to decode into a
// single caller-supplied buffer.
type BufferedDecoder struct {
	dec *Decoder
	dic *lzma.Dict
}

// NewBufferedDecoder constructs a BufferedDecoder for the given property
// byte, allocating its internal dictionary.
func NewBufferedDecoder(prop byte) (*BufferedDecoder, error) {
	if prop > maxDictSizeProp {
		return nil, ErrInvalidArgument
	}
	dicSize := dictSizeFromProp(prop)
	if dicSize > maxBufferedDicSize {
		return nil, ErrInvalidArgument
	}
	dic := &lzma.Dict{Mem: make([]byte, dicSize)}
	dec, err := NewDecoder(dic, prop)
	if err != nil {
		return nil, err
	}
	return &BufferedDecoder{dec: dec, dic: dic}, nil
}

// Reset reinitializes the decoder without reallocating the dictionary.
func (b *BufferedDecoder) Reset() {
	b.dec.Reset()
	b.dic.Pos = 0
}

// SetLogger installs l as the destination for framing-transition trace
// lines; pass nil to silence it again.
func (b *BufferedDecoder) SetLogger(l Logger) {
	b.dec.Logger = l
}

// Decode writes decoded bytes into dest, consuming a prefix of src. It
// wraps the internal ring on entry (before decoding, never after) and
// copies out newly produced bytes immediately following each sub-round, so
// a dictionary smaller than the total output is decoded correctly: see the
// wrap-ordering decision in the lzma2 package's design notes.
func (b *BufferedDecoder) Decode(dest, src []byte, finishMode lzma.FinishMode) (destLen, srcLen int, status lzma.Status, err error) {
	for destLen < len(dest) {
		if b.dic.Pos == len(b.dic.Mem) {
			b.dic.Pos = 0
		}

		room := len(b.dic.Mem) - b.dic.Pos
		want := len(dest) - destLen
		outLim := room
		if want < outLim {
			outLim = want
		}
		dicLimit := b.dic.Pos + outLim

		// A sub-round cut short by the end of the ring decodes with
		// FinishAny; the caller's finishMode applies only to the sub-round
		// that can fill the rest of dest.
		fm := lzma.FinishAny
		if want <= room {
			fm = finishMode
		}

		before := b.dic.Pos
		n, st, derr := b.dec.DecodeToDic(dicLimit, src[srcLen:], fm)
		srcLen += n
		produced := b.dic.Pos - before
		copy(dest[destLen:], b.dic.Mem[before:b.dic.Pos])
		destLen += produced
		status = st

		if derr != nil {
			return destLen, srcLen, lzma.StatusNotSpecified, derr
		}
		if st == lzma.StatusNeedsMoreInput || st == lzma.StatusFinishedWithMark {
			break
		}
		if produced == 0 && n == 0 {
			break
		}
	}
	return destLen, srcLen, status, nil
}
