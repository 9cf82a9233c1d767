package hardware

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/CodedInternet/gobraille/onboard/braille"
)

func TestDistance(t *testing.T) {
	Convey("every position on the ring is reached the short way", t, func() {
		for from := 0; from < braille.RingSize; from++ {
			for to := 0; to < braille.RingSize; to++ {
				d := Distance(from, to)
				if abs(d) > braille.RingSize/2 {
					t.Fatalf("%d -> %d turns %d steps", from, to, d)
				}
				if (from+d+braille.RingSize)%braille.RingSize != to {
					t.Fatalf("%d -> %d turning %d lands elsewhere", from, to, d)
				}
				if d != -Distance(to, from) {
					t.Fatalf("%d -> %d is not the reverse of %d -> %d", from, to, to, from)
				}
			}
		}
		So(Distance(5, 5), ShouldEqual, 0)
	})

	Convey("half a turn keeps the direct direction", t, func() {
		So(Distance(0, 36), ShouldEqual, 36)
		So(Distance(36, 0), ShouldEqual, -36)
		So(Distance(10, 46), ShouldEqual, 36)
	})

	Convey("wrapping is shorter near the ends", t, func() {
		So(Distance(0, 71), ShouldEqual, -1)
		So(Distance(71, 0), ShouldEqual, 1)
		So(Distance(2, 40), ShouldEqual, -34)
	})
}

func TestPlan(t *testing.T) {
	Convey("planning the same state moves nothing", t, func() {
		for _, code := range braille.Order {
			v := braille.Pad([]braille.Code{code, code})
			So(Plan(v, v).String(), ShouldEqual, "0 0 0 0 0 0 0 0 0 0")
		}
	})

	Convey("planning a full display", t, func() {
		current := braille.StateVector{"11", "22", "33", "44", "55", "66", "77", "88", "11", "22"}
		target := braille.Pad([]braille.Code{"22", "11", "44", "33"})

		tr := Plan(current, target)
		So(tr, ShouldHaveLength, braille.Slots)
		So(tr.String(), ShouldEqual, "-2 2 -5 5 3 5 1 0 4 6")

		Convey("sends one command per moving slot", func() {
			cmds, skipped := Commands(tr)
			So(skipped, ShouldBeEmpty)
			So(cmds, ShouldHaveLength, 9)
			for _, cmd := range cmds {
				So(cmd.Slot, ShouldNotEqual, 8)
			}
		})

		Convey("reversing the plan undoes it", func() {
			back := Plan(target, current)
			for i := range tr {
				So(back[i].Value, ShouldEqual, -tr[i].Value)
			}
		})
	})

	Convey("positions off the ring cannot be planned", t, func() {
		current := braille.StateVector{"00", "88"}
		target := braille.StateVector{"48", "99"}

		tr := Plan(current, target)
		So(tr.String(), ShouldEqual, "? ?")

		_, skipped := Commands(tr)
		So(skipped, ShouldResemble, []int{0, 1})

		Convey("and are named", func() {
			errs := Unresolvable(current, target)
			So(errs, ShouldHaveLength, 2)
			So(errs[0].Slot, ShouldEqual, 1)
			So(errs[0].Code, ShouldEqual, "00")
			So(errs[1].Slot, ShouldEqual, 2)
			So(errs[1].Code, ShouldEqual, "99")
			So(errs[0].Error(), ShouldEqual, `slot 1: position "00" is not reachable`)
		})

		Convey("an audit line with markers reads back", func() {
			back, ok := ParseTransitions(tr.String())
			So(ok, ShouldBeTrue)
			So(back, ShouldResemble, tr)
		})
	})

	Convey("only the slots both vectors have are planned", t, func() {
		tr := Plan(braille.StateVector{"88", "88", "88"}, braille.StateVector{"88", "88"})
		So(tr, ShouldHaveLength, 2)
		So(Unresolvable(braille.StateVector{"00"}, nil), ShouldBeEmpty)
	})
}
