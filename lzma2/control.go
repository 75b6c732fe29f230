package lzma2

// control is the first byte of an LZMA2 chunk. Its high bits select one of
// four chunk kinds; for a packed (LZMA-coded) chunk the top three bits carry
// the packed flag and the reset mode, and the low five bits carry bits
// 16-20 of the unpacked size.
type control byte

const (
	eosCtrl              control = 0x00
	uncompressedResetCtrl control = 0x01
	uncompressedCtrl      control = 0x02

	// packedMask isolates the reset/new-props bits of a packed control byte.
	packedMask = 0xe0
	// packedCtrl is set on every packed (LZMA) chunk.
	packedCtrl = 0x80
	// packedResetStateCtrl: packed chunk, reset state only.
	packedResetStateCtrl = 0xa0
	// packedNewPropsCtrl: packed chunk, reset state, new properties.
	packedNewPropsCtrl = 0xc0
	// packedResetDictCtrl: packed chunk, reset state, new properties,
	// reset dictionary.
	packedResetDictCtrl = 0xe0
)

func (c control) eos() bool {
	return c == eosCtrl
}

func (c control) packed() bool {
	return c&packedCtrl == packedCtrl
}

// resetDict reports whether this chunk requires a dictionary reset before
// decoding: either an uncompressed chunk marked reset, or a packed chunk in
// the top reset-dict band.
func (c control) resetDict() bool {
	if !c.packed() {
		return c == uncompressedResetCtrl
	}
	return c&packedMask == packedResetDictCtrl
}

// resetState reports whether this packed chunk resets the LZMA state
// (probabilities, rep registers).
func (c control) resetState() bool {
	if !c.packed() {
		return false
	}
	return c&packedMask >= packedResetStateCtrl
}

// newProps reports whether this packed chunk carries a fresh property byte.
func (c control) newProps() bool {
	if !c.packed() {
		return false
	}
	return c&packedMask >= packedNewPropsCtrl
}

// unpackedSizeHighBits returns the high bits of the chunk's unpacked size
// contributed by the control byte itself (packed chunks only).
func (c control) unpackedSizeHighBits() uint32 {
	if !c.packed() {
		return 0
	}
	return uint32(c&^packedMask) << 16
}

// valid reports whether c is one of the defined control byte values; bytes
// in [0x03, 0x7F] are reserved and never legal.
func (c control) valid() bool {
	if c.eos() || c == uncompressedResetCtrl || c == uncompressedCtrl {
		return true
	}
	return c.packed()
}
