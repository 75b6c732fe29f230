package lzma

import "testing"

func TestNewCoreRejectsLcLpOverflow(t *testing.T) {
	dic := &Dict{Mem: make([]byte, 16)}
	_, err := NewCore(dic, Properties{LC: 3, LP: 2, PB: 0, DictSize: 4096})
	if err != ErrInvalidArgument {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestNewCoreRejectsPbOverflow(t *testing.T) {
	dic := &Dict{Mem: make([]byte, 16)}
	_, err := NewCore(dic, Properties{LC: 0, LP: 0, PB: 5, DictSize: 4096})
	if err != ErrInvalidArgument {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestNewCoreInitialState(t *testing.T) {
	dic := &Dict{Mem: make([]byte, 16)}
	c, err := NewCore(dic, Properties{LC: 3, LP: 0, PB: 2, DictSize: 4096})
	if err != nil {
		t.Fatalf("NewCore: %v", err)
	}
	if got, want := len(c.probs), calcProbSize(3); got != want {
		t.Fatalf("len(probs) = %d, want %d", got, want)
	}
	if !c.needFlush {
		t.Fatalf("needFlush = false after construction, want true")
	}
	if !c.needInitState {
		t.Fatalf("needInitState = false after construction, want true")
	}
}

func TestCalcProbSizeMatchesSpecTable(t *testing.T) {
	// baseProbSize is the offset of the Literal region, 1846 per the
	// table in the probability-table layout; litSize*2^(lc+lp) follows.
	if baseProbSize != 1846 {
		t.Fatalf("baseProbSize = %d, want 1846", baseProbSize)
	}
	for lcPlusLp := uint32(0); lcPlusLp <= 8; lcPlusLp++ {
		got := calcProbSize(lcPlusLp)
		want := 1846 + 768*(1<<lcPlusLp)
		if got != want {
			t.Fatalf("calcProbSize(%d) = %d, want %d", lcPlusLp, got, want)
		}
	}
}
