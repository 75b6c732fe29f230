package lzma2

import (
	"bytes"
	"testing"

	"github.com/ascheglov/lzma2/lzma"
)

// lcgSeq is a test-only pseudo-random byte generator. It mirrors the
// decoder-test fixture generator's LCG: a 64-bit linear congruential
// generator seeded to all-ones, taking the high 32 bits of each step as a
// raw byte, then feeding that byte through a smoothing "random walk" step
// so consecutive bytes aren't independent (closer to real compressible
// data than uniform noise).
type lcgSeq struct {
	state uint64
	last  byte
	r     uint32
}

func newLcgSeq(first byte, r uint32) *lcgSeq {
	return &lcgSeq{state: ^uint64(0), last: first, r: r}
}

func (g *lcgSeq) lcgByte() byte {
	g.state = g.state*6364136223846793005 + 1
	return byte(g.state >> 32)
}

func (g *lcgSeq) next() byte {
	x := g.lcgByte()
	if g.r != 0 {
		g.last = g.last + byte(uint32(x)%g.r) - byte(g.r/2)
	}
	return g.last
}

func (g *lcgSeq) fill(buf []byte) {
	for i := range buf {
		buf[i] = g.next()
	}
}

// buildUncompressedStream wraps data into a sequence of LZMA2 uncompressed
// chunks (control 0x01 for the first, resetting the dictionary; 0x02 for
// the rest), each at most 64 KiB (the framing's 16-bit size field limit),
// terminated by the end-of-stream control byte. It does not involve any
// entropy coding.
func buildUncompressedStream(data []byte) []byte {
	const maxChunk = 1 << 16
	var buf bytes.Buffer
	first := true
	for len(data) > 0 {
		n := len(data)
		if n > maxChunk {
			n = maxChunk
		}
		ctrl := byte(0x02)
		if first {
			ctrl = 0x01
			first = false
		}
		size := uint16(n - 1)
		buf.WriteByte(ctrl)
		buf.WriteByte(byte(size >> 8))
		buf.WriteByte(byte(size))
		buf.Write(data[:n])
		data = data[n:]
	}
	buf.WriteByte(0x00)
	return buf.Bytes()
}

func TestRoundTripUncompressedChunksOneShot(t *testing.T) {
	gen := newLcgSeq(0xAA, 1)
	data := make([]byte, 256*1024)
	gen.fill(data)

	stream := append([]byte{0x18}, buildUncompressedStream(data)...)
	dest := make([]byte, len(data))

	destLen, _, status, err := Decode(dest, stream, lzma.FinishEnd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != lzma.StatusFinishedWithMark {
		t.Fatalf("status = %v, want FinishedWithMark", status)
	}
	if !bytes.Equal(dest[:destLen], data) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d", destLen, len(data))
	}
}

func TestRoundTripStreamingChunkSizes(t *testing.T) {
	gen := newLcgSeq(0x55, 0)
	data := make([]byte, 128*1024)
	gen.fill(data)

	stream := buildUncompressedStream(data)

	// One spare byte keeps dicLimit above the decoded size, so under
	// FinishAny the decoder goes on to read the end-of-stream control byte
	// instead of stopping with NotFinished once the data is all out.
	dic := &lzma.Dict{Mem: make([]byte, len(data)+1)}
	dec, err := NewDecoder(dic, 0x18)
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}

	var out []byte
	src := stream
	for {
		n := len(src)
		if n > 7 {
			n = 7 // deliberately awkward chunking, crossing field boundaries
		}
		consumed, status, err := dec.DecodeToDic(len(dic.Mem), src[:n], lzma.FinishAny)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out = dic.Mem[:dic.Pos]
		src = src[consumed:]
		if status == lzma.StatusFinishedWithMark {
			break
		}
		if consumed == 0 {
			t.Fatalf("made no progress (status %v, %d bytes offered)", status, n)
		}
	}

	if !bytes.Equal(out, data) {
		t.Fatalf("streaming round trip mismatch: got %d bytes, want %d", len(out), len(data))
	}
}

// TestRoundTripRingDictionarySmallerThanOutput exercises the wrap-ordering
// decision recorded in the package's design notes: the buffered façade's
// internal dictionary (4 KiB for property byte 0) is far smaller than the
// total decoded output, so correctness depends on copying newly produced
// bytes out before the next call wraps dic.Pos back to 0.
func TestRoundTripRingDictionarySmallerThanOutput(t *testing.T) {
	if testing.Short() {
		t.Skip("slow test")
	}
	gen := newLcgSeq(0xAA, 1)
	data := make([]byte, 5*1024*1024)
	gen.fill(data)

	stream := buildUncompressedStream(data)

	bd, err := NewBufferedDecoder(0x00)
	if err != nil {
		t.Fatalf("NewBufferedDecoder: %v", err)
	}

	dest := make([]byte, len(data))
	destLen, _, status, err := bd.Decode(dest, stream, lzma.FinishEnd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != lzma.StatusFinishedWithMark {
		t.Fatalf("status = %v, want FinishedWithMark", status)
	}
	if !bytes.Equal(dest[:destLen], data) {
		t.Fatalf("ring round trip mismatch: got %d bytes, want %d", destLen, len(data))
	}
}

func TestRoundTripTwentyMiB(t *testing.T) {
	if testing.Short() {
		t.Skip("slow test")
	}
	gen := newLcgSeq(0x00, 0)
	data := make([]byte, 20*1024*1024)
	gen.fill(data)

	stream := append([]byte{0x18}, buildUncompressedStream(data)...)

	for _, fm := range []lzma.FinishMode{lzma.FinishAny, lzma.FinishEnd} {
		dest := make([]byte, len(data))
		destLen, _, status, err := Decode(dest, stream, fm)
		if err != nil {
			t.Fatalf("finishMode=%v: unexpected error: %v", fm, err)
		}
		if status != lzma.StatusFinishedWithMark {
			t.Fatalf("finishMode=%v: status = %v, want FinishedWithMark", fm, status)
		}
		if !bytes.Equal(dest[:destLen], data) {
			t.Fatalf("finishMode=%v: 20 MiB round trip mismatch", fm)
		}
	}
}
