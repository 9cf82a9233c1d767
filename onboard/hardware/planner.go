package hardware

import (
	"strconv"
	"strings"

	"github.com/CodedInternet/gobraille/onboard/braille"
	. "github.com/CodedInternet/gobraille/onboard/errors"
)

// UnresolvedMark is written in place of a step when a slot cannot be planned.
const UnresolvedMark = "?"

// Step is the signed rotation for one slot, in ring steps. OK is false when
// either end of the move is not on the ring.
type Step struct {
	Value int
	OK    bool
}

func (s Step) String() string {
	if !s.OK {
		return UnresolvedMark
	}
	return strconv.Itoa(s.Value)
}

// Transitions holds one step per planned slot.
type Transitions []Step

func (t Transitions) String() string {
	parts := make([]string, len(t))
	for i, s := range t {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}

// ParseTransitions reads the audit format written by Transitions.String.
func ParseTransitions(s string) (t Transitions, ok bool) {
	for _, f := range strings.Fields(s) {
		if f == UnresolvedMark {
			t = append(t, Step{})
			continue
		}
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, false
		}
		t = append(t, Step{Value: v, OK: true})
	}
	return t, true
}

// Distance is the shortest signed rotation from one ring index to another.
// When both directions are equally long the direct one is kept, since that
// fixes the turning direction the mechanism has been calibrated with.
func Distance(from, to int) int {
	direct := to - from
	var wrap int
	if direct > 0 {
		wrap = direct - braille.RingSize
	} else {
		wrap = direct + braille.RingSize
	}

	if abs(direct) <= abs(wrap) {
		return direct
	}
	return wrap
}

// Plan computes the rotation each slot needs to move from current to target.
// Only the slots both vectors have are planned.
func Plan(current, target []braille.Code) Transitions {
	n := len(current)
	if len(target) < n {
		n = len(target)
	}

	t := make(Transitions, n)
	for i := 0; i < n; i++ {
		from, okFrom := braille.IndexOf(current[i])
		to, okTo := braille.IndexOf(target[i])
		if !okFrom || !okTo {
			continue
		}
		t[i] = Step{Value: Distance(from, to), OK: true}
	}

	return t
}

// Unresolvable names every position Plan could not place on the ring, as
// UnknownCodeError with 1-based slots. A slot with both ends off the ring is
// reported once per end.
func Unresolvable(current, target []braille.Code) (errs []UnknownCodeError) {
	n := len(current)
	if len(target) < n {
		n = len(target)
	}

	for i := 0; i < n; i++ {
		for _, c := range []braille.Code{current[i], target[i]} {
			if _, ok := braille.IndexOf(c); !ok {
				errs = append(errs, UnknownCodeError{Slot: i + 1, Code: string(c)})
			}
		}
	}
	return
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
