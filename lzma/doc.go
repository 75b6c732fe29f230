// Package lzma implements the LZMA range-coded entropy decoder: the
// adaptive probability model, the range coder's bit and tree decoding, and
// length/distance match decoding against an externally supplied
// dictionary.
//
// Core is the low-level engine; it is normally driven by the lzma2
// package's chunk-framing state machine rather than used directly.
package lzma
