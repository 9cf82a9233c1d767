package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/asdine/storm/v3"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/CodedInternet/gobraille/onboard/braille"
	. "github.com/CodedInternet/gobraille/onboard/errors"
	"github.com/CodedInternet/gobraille/onboard/hardware"
)

func TestStore(t *testing.T) {
	Convey("a fresh directory", t, func() {
		dir := t.TempDir()
		s, err := Open(dir)
		So(err, ShouldBeNil)
		defer s.Close()

		Convey("loads the idle default", func() {
			So(s.Load(), ShouldResemble, braille.DefaultState())
		})

		Convey("round trips a saved state", func() {
			v := braille.Pad([]braille.Code{"48", "17", "89"})
			So(s.Save(v), ShouldBeNil)
			So(s.Load(), ShouldResemble, v)

			data, _ := os.ReadFile(filepath.Join(dir, STATE_FILE))
			So(string(data), ShouldEqual, "48 17 89 88 88 88 88 88 88 88")
		})

		Convey("pads a short file", func() {
			os.WriteFile(filepath.Join(dir, STATE_FILE), []byte("48 17\n"), 0644)
			v := s.Load()
			So(len(v), ShouldEqual, braille.Slots)
			So(v[1], ShouldEqual, braille.Code("17"))
			So(v[2], ShouldEqual, braille.Idle)
		})

		Convey("truncates a long file", func() {
			os.WriteFile(filepath.Join(dir, STATE_FILE), []byte("17 17 17 17 17 17 17 17 17 17 17 17"), 0644)
			So(len(s.Load()), ShouldEqual, braille.Slots)
		})

		Convey("falls back to the default on garbage", func() {
			os.WriteFile(filepath.Join(dir, STATE_FILE), []byte("48 xx 17"), 0644)
			So(s.Load(), ShouldResemble, braille.DefaultState())
		})

		Convey("keeps codes that are off the ring", func() {
			os.WriteFile(filepath.Join(dir, STATE_FILE), []byte("99 48"), 0644)
			v := s.Load()
			So(v[0], ShouldEqual, braille.Code("99"))
		})

		Convey("writes the transition audit", func() {
			s.LogTransition(hardware.Transitions{{Value: -3, OK: true}, {}, {Value: 36, OK: true}})

			data, _ := os.ReadFile(filepath.Join(dir, TRANSITION_FILE))
			So(string(data), ShouldEqual, "-3 ? 36")

			tr, ok := s.LastTransition()
			So(ok, ShouldBeTrue)
			So(tr, ShouldResemble, hardware.Transitions{{Value: -3, OK: true}, {}, {Value: 36, OK: true}})
		})

		Convey("a second controller cannot open it", func() {
			_, err := Open(dir)
			So(err, ShouldNotBeNil)
			So(Is(err, ErrLocked), ShouldBeTrue)

			Convey("until the first one closes", func() {
				So(s.Close(), ShouldBeNil)
				other, err := Open(dir)
				So(err, ShouldBeNil)
				other.Close()
			})
		})
	})
}

func TestJournal(t *testing.T) {
	Convey("the render journal", t, func() {
		db, err := storm.Open(filepath.Join(t.TempDir(), "test.db"))
		So(err, ShouldBeNil)
		defer db.Close()

		j, err := NewJournal(db)
		So(err, ShouldBeNil)

		Convey("is empty to begin with", func() {
			recs, err := j.Recent(5)
			So(err, ShouldBeNil)
			So(recs, ShouldBeEmpty)
		})

		Convey("returns the newest records first", func() {
			for _, text := range []string{"a", "b", "c"} {
				So(j.Record(&RenderRecord{Text: text}), ShouldBeNil)
			}

			recs, err := j.Recent(2)
			So(err, ShouldBeNil)
			So(len(recs), ShouldEqual, 2)
			So(recs[0].Text, ShouldEqual, "c")
			So(recs[1].Text, ShouldEqual, "b")
			So(recs[0].CreatedAt.IsZero(), ShouldBeFalse)
		})
	})
}
