package lzma

// topValue is the renormalization threshold for the range coder: whenever
// range drops below this, another input byte is folded in and range is
// shifted left by 8.
const topValue = 1 << 24

// Core is the LZMA range-coded entropy decoder. It owns the adaptive
// probability table, the four repeat-distance registers, the
// literal/match state, and the range-coder registers. It writes decoded
// bytes into an externally supplied Dict and never performs I/O itself.
//
// A Core is resumable: every call to DecodeToDic either makes forward
// progress or returns StatusNeedsMoreInput, and the same instance can be
// re-entered with more input at any time. It must never be reused after a
// BadStream error.
type Core struct {
	Dic   *Dict
	Props Properties
	probs []prob

	rng  uint32
	code uint32

	processedPos uint32
	checkDicSize uint32
	state        uint32
	reps         [4]uint32
	remainLen    uint32

	needFlush     bool
	needInitState bool

	tempBuf     [requiredInputMax]byte
	tempBufSize int
}

// NewCore allocates a Core with a freshly sized probability table for the
// given properties and dictionary, and primes it for a first decode (as if
// InitDicAndState(true, true) had been called).
func NewCore(dic *Dict, props Properties) (*Core, error) {
	if err := props.validate(); err != nil {
		return nil, err
	}
	c := &Core{
		Dic:   dic,
		Props: props,
		probs: make([]prob, calcProbSize(props.LC+props.LP)),
	}
	c.InitDicAndState(true, true)
	return c, nil
}

// InitDicAndState schedules dictionary and/or probability-state
// reinitialization. The actual probability reset (initStateReal) is
// deferred to the next DecodeToDic call, mirroring the LZMA SDK so that a
// Core can be "reset" cheaply even before new properties are known.
func (c *Core) InitDicAndState(initDic, initState bool) {
	c.needFlush = true
	c.remainLen = 0
	c.tempBufSize = 0

	if initDic {
		c.processedPos = 0
		c.checkDicSize = 0
		c.needInitState = true
	}
	if initState {
		c.needInitState = true
	}
}

// initStateReal resets every probability to its midpoint, the repeat
// registers to 1, and state to 0.
func (c *Core) initStateReal() {
	for i := range c.probs {
		c.probs[i] = probInit
	}
	c.reps = [4]uint32{1, 1, 1, 1}
	c.state = 0
	c.needInitState = false
}

// UpdateWithUncompressed copies src verbatim into the dictionary at the
// current position, advancing Dic.Pos and the processed-byte counters. It
// is the LZMA2 framing layer's entry point for uncompressed chunks.
func (c *Core) UpdateWithUncompressed(src []byte) {
	copy(c.Dic.Mem[c.Dic.Pos:], src)
	c.Dic.Pos += len(src)

	if c.checkDicSize == 0 && c.Props.DictSize-c.processedPos <= uint32(len(src)) {
		c.checkDicSize = c.Props.DictSize
	}
	c.processedPos += uint32(len(src))
}

// DecodeToDic advances Dic.Pos up to dicLimit, consuming a prefix of src.
// It returns the number of bytes of src consumed and a Status describing
// how decoding stopped. A non-nil error is always ErrBadStream (wrapped in
// an Error) and is fatal: the Core must not be used again.
func (c *Core) DecodeToDic(dicLimit int, src []byte, finishMode FinishMode) (srcLen int, status Status, err error) {
	inSize := len(src)
	c.writeRem(dicLimit)

	for c.remainLen != matchSpecLenStart {
		if c.needFlush {
			for srcLen < inSize && c.tempBufSize < rcInitSize {
				c.tempBuf[c.tempBufSize] = src[srcLen]
				c.tempBufSize++
				srcLen++
			}
			if c.tempBufSize < rcInitSize {
				return srcLen, StatusNeedsMoreInput, nil
			}
			if c.tempBuf[0] != 0 {
				return srcLen, StatusNotSpecified, ErrBadStream
			}
			c.code = uint32(c.tempBuf[1])<<24 | uint32(c.tempBuf[2])<<16 |
				uint32(c.tempBuf[3])<<8 | uint32(c.tempBuf[4])
			c.rng = 0xFFFFFFFF
			c.needFlush = false
			c.tempBufSize = 0
		}

		checkEndMarkNow := false
		if c.Dic.Pos >= dicLimit {
			if c.remainLen == 0 && c.code == 0 {
				return srcLen, StatusMaybeFinishedWithoutMark, nil
			}
			if finishMode == FinishAny {
				return srcLen, StatusNotFinished, nil
			}
			if c.remainLen != 0 {
				return srcLen, StatusNotFinished, ErrBadStream
			}
			checkEndMarkNow = true
		}

		if c.needInitState {
			c.initStateReal()
		}

		if c.tempBufSize == 0 {
			avail := inSize - srcLen
			var bufLimitPos int
			if avail < requiredInputMax || checkEndMarkNow {
				res, derr := c.tryDummy(src[srcLen:inSize])
				if derr != nil {
					n := copy(c.tempBuf[:], src[srcLen:inSize])
					c.tempBufSize = n
					srcLen += n
					return srcLen, StatusNeedsMoreInput, nil
				}
				if checkEndMarkNow && res != dummyMatch {
					return srcLen, StatusNotFinished, ErrBadStream
				}
				bufLimitPos = srcLen
			} else {
				bufLimitPos = inSize - requiredInputMax
			}

			newPos, derr := c.decodeReal2(dicLimit, src, srcLen, bufLimitPos)
			srcLen = newPos
			if derr != nil {
				return srcLen, StatusNotSpecified, derr
			}
		} else {
			oldSize := c.tempBufSize
			rem := oldSize
			lookAhead := 0
			avail := inSize - srcLen
			for rem < requiredInputMax && lookAhead < avail {
				c.tempBuf[rem] = src[srcLen+lookAhead]
				rem++
				lookAhead++
			}
			c.tempBufSize = rem

			if rem < requiredInputMax || checkEndMarkNow {
				res, derr := c.tryDummy(c.tempBuf[:rem])
				if derr != nil {
					srcLen += lookAhead
					return srcLen, StatusNeedsMoreInput, nil
				}
				if checkEndMarkNow && res != dummyMatch {
					return srcLen, StatusNotFinished, ErrBadStream
				}
			}

			consumed, derr := c.decodeReal2(dicLimit, c.tempBuf[:rem], 0, 0)
			if derr != nil {
				return srcLen, StatusNotSpecified, derr
			}
			lookAhead -= rem - consumed
			srcLen += lookAhead
			c.tempBufSize = 0
		}
	}

	if c.code == 0 {
		return srcLen, StatusFinishedWithMark, nil
	}
	return srcLen, StatusNotSpecified, ErrBadStream
}

// decodeReal2 wraps decodeReal with the dictionary-size boundary check (the
// limit must not cross a not-yet-verified distance horizon) and the
// tail-length write-out (writeRem) for a pending repeat match that spans
// more than one decodeReal call.
func (c *Core) decodeReal2(dicLimit int, src []byte, bufPos, bufLimitPos int) (int, error) {
	for {
		limit2 := dicLimit
		if c.checkDicSize == 0 {
			rem := c.Props.DictSize - c.processedPos
			if uint32(dicLimit-c.Dic.Pos) > rem {
				limit2 = c.Dic.Pos + int(rem)
			}
		}

		var err error
		bufPos, err = c.decodeReal(limit2, src, bufPos, bufLimitPos)
		if err != nil {
			return bufPos, err
		}

		if c.processedPos >= c.Props.DictSize {
			c.checkDicSize = c.Props.DictSize
		}

		c.writeRem(dicLimit)

		if !(c.Dic.Pos < dicLimit && bufPos < bufLimitPos && c.remainLen < matchSpecLenStart) {
			break
		}
	}
	if c.remainLen > matchSpecLenStart {
		c.remainLen = matchSpecLenStart
	}
	return bufPos, nil
}

// backIndex returns the dictionary index `rep` bytes before dicPos,
// wrapping through the end of a dicBufSize-byte ring.
func backIndex(dicPos int, rep uint32, dicBufSize int) int {
	idx := dicPos - int(rep)
	if idx < 0 {
		idx += dicBufSize
	}
	return idx
}

// decodeReal runs the hot per-symbol loop: it decodes literals and matches
// until the dictionary reaches limit or the input reaches bufLimitPos, or
// the end-of-stream marker is found. It returns the new bufPos (number of
// bytes of src consumed, i.e. the index reached within src).
func (c *Core) decodeReal(limit int, src []byte, bufPos, bufLimitPos int) (int, error) {
	probs := c.probs
	state := c.state
	rep0, rep1, rep2, rep3 := c.reps[0], c.reps[1], c.reps[2], c.reps[3]
	pbMask := (uint32(1) << c.Props.PB) - 1
	lpMask := (uint32(1) << c.Props.LP) - 1
	lc := c.Props.LC

	dic := c.Dic.Mem
	dicBufSize := len(dic)
	dicPos := c.Dic.Pos

	processedPos := c.processedPos
	checkDicSize := c.checkDicSize
	var length uint32

	rng := c.rng
	code := c.code

	normalize := func() {
		if rng < topValue {
			rng <<= 8
			code = code<<8 | uint32(src[bufPos])
			bufPos++
		}
	}

	decodeBit := func(p *prob) uint32 {
		normalize()
		bound := p.bound(rng)
		if code < bound {
			rng = bound
			p.inc()
			return 0
		}
		rng -= bound
		code -= bound
		p.dec()
		return 1
	}

	decodeTree := func(base int, numBits uint32) uint32 {
		m := uint32(1)
		for i := uint32(0); i < numBits; i++ {
			m = (m << 1) + decodeBit(&probs[base+int(m)])
		}
		return m - (1 << numBits)
	}

	var derr error

outer:
	for {
		posState := processedPos & pbMask

		if decodeBit(&probs[isMatch+int(state)<<numPosBitsMax+int(posState)]) == 0 {
			// literal
			litBase := literal
			if checkDicSize != 0 || processedPos != 0 {
				prev := dic[backIndex(dicPos, 1, dicBufSize)]
				litBase += litSize * int(((processedPos&lpMask)<<lc)+uint32(prev)>>(8-lc))
			}

			var symbol uint32 = 1
			if state < numLitStates {
				if state < 4 {
					state = 0
				} else {
					state -= 3
				}
				for symbol < 0x100 {
					symbol = (symbol << 1) | decodeBit(&probs[litBase+int(symbol)])
				}
			} else {
				matchByte := uint32(dic[backIndex(dicPos, rep0, dicBufSize)])
				offs := uint32(0x100)
				if state < 10 {
					state -= 3
				} else {
					state -= 6
				}
				for symbol < 0x100 {
					matchByte <<= 1
					predBit := matchByte & offs
					b := decodeBit(&probs[litBase+int(offs)+int(predBit)+int(symbol)])
					symbol = (symbol << 1) | b
					if b == 0 {
						offs &^= predBit
					} else {
						offs &= predBit
					}
				}
			}
			dic[dicPos] = byte(symbol)
			dicPos++
			processedPos++
		} else {
			var probBase int
			if decodeBit(&probs[isRep+int(state)]) == 0 {
				state += numStates
				probBase = lenCoder
			} else {
				if checkDicSize == 0 && processedPos == 0 {
					derr = ErrBadStream
					break outer
				}
				shortRep := false
				if decodeBit(&probs[isRepG0+int(state)]) == 0 {
					if decodeBit(&probs[isRep0Long+int(state)<<numPosBitsMax+int(posState)]) == 0 {
						shortRep = true
					}
				} else {
					var distance uint32
					if decodeBit(&probs[isRepG1+int(state)]) == 0 {
						distance = rep1
					} else {
						if decodeBit(&probs[isRepG2+int(state)]) == 0 {
							distance = rep2
						} else {
							distance = rep3
							rep3 = rep2
						}
						rep2 = rep1
					}
					rep1 = rep0
					rep0 = distance
				}
				if shortRep {
					dic[dicPos] = dic[backIndex(dicPos, rep0, dicBufSize)]
					dicPos++
					processedPos++
					if state < numLitStates {
						state = 9
					} else {
						state = 11
					}
					goto checkLimit
				}
				if state < numLitStates {
					state = 8
				} else {
					state = 11
				}
				probBase = repLenCoder
			}

			if decodeBit(&probs[probBase+lenChoice]) == 0 {
				length = decodeTree(probBase+lenLow+int(posState)*lenNumLowSymbols, lenNumLowBits)
			} else if decodeBit(&probs[probBase+lenChoice2]) == 0 {
				length = lenNumLowSymbols + decodeTree(probBase+lenMid+int(posState)*lenNumMidSymbols, lenNumMidBits)
			} else {
				length = lenNumLowSymbols + lenNumMidSymbols + decodeTree(probBase+lenHigh, lenNumHighBits)
			}

			if state >= numStates {
				var distance uint32
				slotBase := posSlot + int(minU32(length, numLenToPosStates-1))<<numPosSlotBits
				slot := decodeTree(slotBase, numPosSlotBits)
				if slot < startPosModelIndex {
					distance = slot
				} else {
					numDirectBits := (slot >> 1) - 1
					distance = 2 | (slot & 1)
					if slot < endPosModelIndex {
						distance <<= numDirectBits
						base := specPos + int(distance) - int(slot) - 1
						m := uint32(1)
						for i := uint32(0); i < numDirectBits; i++ {
							b := decodeBit(&probs[base+int(m)])
							m = (m << 1) + b
							distance |= b << i
						}
					} else {
						numDirectBits -= numAlignBits
						for i := uint32(0); i < numDirectBits; i++ {
							normalize()
							rng >>= 1
							var bit uint32
							if code >= rng {
								code -= rng
								bit = 1
							}
							distance = (distance << 1) + bit
						}
						m := uint32(1)
						var alignBits uint32
						for i := uint32(0); i < numAlignBits; i++ {
							b := decodeBit(&probs[align+int(m)])
							m = (m << 1) + b
							alignBits |= b << i
						}
						distance = (distance << numAlignBits) | alignBits

						if distance == 0xFFFFFFFF {
							length += matchSpecLenStart
							state -= numStates
							break outer
						}
					}
				}
				rep3, rep2, rep1 = rep2, rep1, rep0
				rep0 = distance + 1

				if checkDicSize == 0 {
					if distance >= processedPos {
						derr = ErrBadStream
						break outer
					}
				} else if distance >= checkDicSize {
					derr = ErrBadStream
					break outer
				}

				if state < numStates+numLitStates {
					state = numLitStates
				} else {
					state = numLitStates + 3
				}
			}

			length += matchMinLen

			if limit == dicPos {
				derr = ErrBadStream
				break outer
			}

			rem := limit - dicPos
			curLen := length
			if uint32(rem) < curLen {
				curLen = uint32(rem)
			}
			pos := backIndex(dicPos, rep0, dicBufSize)

			processedPos += curLen
			length -= curLen

			if pos+int(curLen) <= dicBufSize {
				for i := uint32(0); i < curLen; i++ {
					dic[dicPos] = dic[pos]
					dicPos++
					pos++
				}
			} else {
				for i := uint32(0); i < curLen; i++ {
					dic[dicPos] = dic[pos]
					dicPos++
					pos++
					if pos == dicBufSize {
						pos = 0
					}
				}
			}
		}

	checkLimit:
		if !(dicPos < limit && bufPos < bufLimitPos) {
			break outer
		}
	}

	normalize()

	c.rng = rng
	c.code = code
	c.remainLen = length
	c.Dic.Pos = dicPos
	c.processedPos = processedPos
	c.reps[0], c.reps[1], c.reps[2], c.reps[3] = rep0, rep1, rep2, rep3
	c.state = state

	return bufPos, derr
}

// writeRem finishes writing out a pending repeat-of-rep0 run left over from
// a previous decodeReal call that was cut short by the output limit.
func (c *Core) writeRem(limit int) {
	if c.remainLen == 0 || c.remainLen >= matchSpecLenStart {
		return
	}

	dic := c.Dic.Mem
	dicPos := c.Dic.Pos
	dicBufSize := len(dic)

	length := c.remainLen
	rep0 := c.reps[0]
	if uint32(limit-dicPos) < length {
		length = uint32(limit - dicPos)
	}

	if c.checkDicSize == 0 && c.Props.DictSize-c.processedPos <= length {
		c.checkDicSize = c.Props.DictSize
	}

	c.processedPos += length
	c.remainLen -= length
	for length > 0 {
		dic[dicPos] = dic[backIndex(dicPos, rep0, dicBufSize)]
		dicPos++
		length--
	}

	c.Dic.Pos = dicPos
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}
