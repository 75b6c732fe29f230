package lzma2

import "github.com/ascheglov/lzma2/lzma"

// fsmState is a step of the LZMA2 chunk-framing state machine.
type fsmState int

const (
	stateControl fsmState = iota
	stateUnpack0
	stateUnpack1
	statePack0
	statePack1
	stateProp
	stateData
	stateDataCont
	stateFinished
)

// Decoder drives an lzma.Core through a stream of LZMA2 chunks. It holds no
// input or output buffers of its own beyond what the embedded Core needs;
// callers own the Dict.
type Decoder struct {
	core *lzma.Core
	dic  *lzma.Dict

	state fsmState
	ctrl  control

	packSize   uint32
	unpackSize uint32

	needInitDic   bool
	needInitState bool
	needInitProp  bool

	props lzma.Properties

	// Logger, if non-nil, receives one line per chunk-framing transition.
	// Nil-safe: a zero Decoder with no Logger assigned simply stays quiet.
	Logger Logger
}

// NewDecoder constructs a Decoder for the given property byte, using dic as
// the output dictionary. prop must be in [0, 40].
func NewDecoder(dic *lzma.Dict, prop byte) (*Decoder, error) {
	if prop > maxDictSizeProp {
		return nil, ErrInvalidArgument
	}
	props := lzma.Properties{LC: 4, LP: 0, PB: 0, DictSize: dictSizeFromProp(prop)}
	core, err := lzma.NewCore(dic, props)
	if err != nil {
		return nil, err
	}
	d := &Decoder{core: core, dic: dic, props: props}
	d.Reset()
	return d, nil
}

// Reset reinitializes the state machine and the core to their
// post-construction state, without reallocating the probability table or
// the dictionary.
func (d *Decoder) Reset() {
	d.state = stateControl
	d.needInitDic = true
	d.needInitState = true
	d.needInitProp = true
}

// maxLcLp is the highest lc+lp sum this decoder accepts; LZMA2 restricts it
// to 4 even though the bare LZMA container allows more.
const maxLcLp = 4

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// DecodeToDic drives the framing state machine, dispatching compressed
// chunks to the LZMA core and copying uncompressed chunks directly, until
// either dicLimit is reached, src is exhausted, or the stream's end-of-data
// control byte is consumed.
func (d *Decoder) DecodeToDic(dicLimit int, src []byte, finishMode lzma.FinishMode) (srcLen int, status lzma.Status, err error) {
	inSize := len(src)

	for {
		switch d.state {
		case stateFinished:
			return srcLen, lzma.StatusFinishedWithMark, nil

		case stateControl:
			if finishMode == lzma.FinishAny && d.dic.Pos >= dicLimit {
				return srcLen, lzma.StatusNotFinished, nil
			}
			if srcLen >= inSize {
				return srcLen, lzma.StatusNeedsMoreInput, nil
			}
			d.ctrl = control(src[srcLen])
			srcLen++
			d.logf("lzma2: control byte %#02x", byte(d.ctrl))

			if !d.ctrl.valid() {
				return srcLen, lzma.StatusNotSpecified, ErrBadStream
			}
			if d.ctrl.eos() {
				d.state = stateFinished
				return srcLen, lzma.StatusFinishedWithMark, nil
			}
			d.unpackSize = d.ctrl.unpackedSizeHighBits()
			d.state = stateUnpack0
			continue

		case stateUnpack0:
			if srcLen >= inSize {
				return srcLen, lzma.StatusNeedsMoreInput, nil
			}
			d.unpackSize |= uint32(src[srcLen]) << 8
			srcLen++
			d.state = stateUnpack1
			continue

		case stateUnpack1:
			if srcLen >= inSize {
				return srcLen, lzma.StatusNeedsMoreInput, nil
			}
			d.unpackSize |= uint32(src[srcLen])
			srcLen++
			d.unpackSize++
			if d.ctrl.packed() {
				d.state = statePack0
			} else {
				d.state = stateData
			}
			continue

		case statePack0:
			if srcLen >= inSize {
				return srcLen, lzma.StatusNeedsMoreInput, nil
			}
			d.packSize = uint32(src[srcLen]) << 8
			srcLen++
			d.state = statePack1
			continue

		case statePack1:
			if srcLen >= inSize {
				return srcLen, lzma.StatusNeedsMoreInput, nil
			}
			d.packSize |= uint32(src[srcLen])
			srcLen++
			d.packSize++
			if d.ctrl.newProps() {
				d.state = stateProp
			} else {
				d.state = stateData
			}
			continue

		case stateProp:
			if srcLen >= inSize {
				return srcLen, lzma.StatusNeedsMoreInput, nil
			}
			q := uint32(src[srcLen])
			srcLen++
			if q >= 225 {
				return srcLen, lzma.StatusNotSpecified, ErrBadStream
			}
			lc := q % 9
			q /= 9
			pb := q / 5
			lp := q % 5
			if lc+lp > maxLcLp {
				return srcLen, lzma.StatusNotSpecified, ErrBadStream
			}
			d.props.LC, d.props.LP, d.props.PB = lc, lp, pb
			d.state = stateData
			continue

		case stateData, stateDataCont:
			if d.state == stateData {
				if d.ctrl.packed() {
					initDic := d.ctrl.resetDict()
					initState := d.ctrl.resetState()
					if !initDic && d.needInitDic {
						return srcLen, lzma.StatusNotSpecified, ErrBadStream
					}
					if !initState && d.needInitState {
						return srcLen, lzma.StatusNotSpecified, ErrBadStream
					}
					if !d.ctrl.newProps() && d.needInitProp {
						return srcLen, lzma.StatusNotSpecified, ErrBadStream
					}
					d.core.Props.LC = d.props.LC
					d.core.Props.LP = d.props.LP
					d.core.Props.PB = d.props.PB
					d.core.InitDicAndState(initDic, initState)
					d.needInitDic = false
					d.needInitState = false
					d.needInitProp = false
				} else {
					if d.ctrl.resetDict() {
						d.core.InitDicAndState(true, false)
						d.needInitDic = false
						// Uncompressed data never touches the probability
						// model, so the next LZMA chunk still owes a real
						// state/property reset of its own.
						d.needInitState = true
						d.needInitProp = true
					} else if d.needInitDic {
						return srcLen, lzma.StatusNotSpecified, ErrBadStream
					}
				}
				d.state = stateDataCont
			}

			if d.ctrl.packed() {
				avail := inSize - srcLen
				room := dicLimit - d.dic.Pos
				inLim := minInt(avail, int(d.packSize))
				outLim := minInt(room, int(d.unpackSize))
				dicLimit2 := d.dic.Pos + outLim

				fm := lzma.FinishAny
				if d.unpackSize <= uint32(room) {
					fm = lzma.FinishEnd
				}

				oldPos := d.dic.Pos
				consumed, cstatus, cerr := d.core.DecodeToDic(dicLimit2, src[srcLen:srcLen+inLim], fm)
				srcLen += consumed
				produced := d.dic.Pos - oldPos
				d.packSize -= uint32(consumed)
				d.unpackSize -= uint32(produced)

				if cerr != nil {
					return srcLen, lzma.StatusNotSpecified, cerr
				}

				switch cstatus {
				case lzma.StatusNeedsMoreInput, lzma.StatusNotFinished:
					return srcLen, cstatus, nil
				case lzma.StatusMaybeFinishedWithoutMark:
					if d.packSize != 0 || d.unpackSize != 0 {
						return srcLen, lzma.StatusNotSpecified, ErrBadStream
					}
					d.state = stateControl
					continue
				default:
					return srcLen, lzma.StatusNotSpecified, ErrBadStream
				}
			}

			// Uncompressed chunk.
			avail := inSize - srcLen
			room := dicLimit - d.dic.Pos
			n := minInt(avail, minInt(int(d.unpackSize), room))
			if n == 0 {
				if room == 0 && finishMode == lzma.FinishAny {
					return srcLen, lzma.StatusNotFinished, nil
				}
				return srcLen, lzma.StatusNeedsMoreInput, nil
			}
			d.core.UpdateWithUncompressed(src[srcLen : srcLen+n])
			srcLen += n
			d.unpackSize -= uint32(n)
			if d.unpackSize == 0 {
				d.state = stateControl
			}
			continue
		}
	}
}
