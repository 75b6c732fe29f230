// Package lzma2 implements the LZMA2 chunk-framing layer: it parses the
// control-byte stream, tracks dictionary/state/property reset flags across
// chunks, and drives an lzma.Core for compressed chunks or copies bytes
// directly for uncompressed ones.
//
// Decode and NewDecoder/DecodeToDic give incremental decoding of an LZMA2
// stream (a single property byte followed by a sequence of chunks) into a
// caller-supplied dictionary. NewBufferedDecoder wraps that with an
// internally owned ring-buffer dictionary for streams larger than any
// single destination buffer.
package lzma2
