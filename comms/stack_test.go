package comms

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestStack(t *testing.T) {
	Convey("a new stack", t, func() {
		s := NewStack(2)
		So(s.Current(), ShouldEqual, Root{})
		So(s.History(), ShouldBeEmpty)

		Convey("keeps a bounded history", func() {
			s.Enter(StoryBrowse{})
			s.Enter(StoryReading{})
			s.Enter(Photo{})
			So(s.Current(), ShouldEqual, Photo{})
			So(s.History(), ShouldResemble, []Mode{StoryBrowse{}, StoryReading{}})
		})

		Convey("only completes the active mode", func() {
			s.Enter(LearningActive{Sub: LearningWriting})
			So(s.Complete(LearningActive{Sub: LearningReading}), ShouldBeFalse)
			So(s.Complete(LearningActive{Sub: LearningWriting}), ShouldBeTrue)
			So(s.Current(), ShouldEqual, Root{})
			So(s.History(), ShouldBeEmpty)
		})

		Convey("reset keeps the menu selection", func() {
			s.MoveSelection(2)
			s.Stories = []string{"a", "b"}
			s.StoryIndex = 1
			s.Sub = LearningReading
			s.Enter(Question{})

			s.Reset()
			So(s.Selection, ShouldEqual, ItemQuestion)
			So(s.Sub, ShouldEqual, LearningUnset)
			So(s.Stories, ShouldBeNil)
			So(s.StoryIndex, ShouldEqual, 0)
		})

		Convey("the selection wraps both ways", func() {
			So(s.MoveSelection(-1), ShouldEqual, ItemStory)
			So(s.MoveSelection(1), ShouldEqual, ItemPhoto)
			So(s.MoveSelection(5), ShouldEqual, ItemLearning)
		})

		Convey("stories cycle and an empty list never moves", func() {
			_, ok := s.MoveStory(1)
			So(ok, ShouldBeFalse)
			_, ok = s.Story()
			So(ok, ShouldBeFalse)

			s.Stories = []string{"a", "b", "c"}
			name, ok := s.MoveStory(-1)
			So(ok, ShouldBeTrue)
			So(name, ShouldEqual, "c")
			name, _ = s.MoveStory(1)
			So(name, ShouldEqual, "a")
		})

		Convey("the snapshot names everything", func() {
			s.Enter(LearningActive{Sub: LearningReading})
			s.Words = []string{"가", "나"}
			snap := s.Snapshot()
			So(snap.Mode, ShouldEqual, "learning_active(reading)")
			So(snap.History, ShouldResemble, []string{"root"})
			So(snap.WordCount, ShouldEqual, 2)
			So(snap.Selection, ShouldEqual, "photo")
		})
	})
}

func TestSignal(t *testing.T) {
	Convey("signals parse from the wire and by name", t, func() {
		for line, want := range map[string]Signal{
			"1": SignalUp, "2": SignalDown, "3": SignalDown,
			"5": SignalConfirm, "6": SignalCancel,
			"UP": SignalUp, " cancel ": SignalCancel,
		} {
			sig, ok := ParseSignal(line)
			So(ok, ShouldBeTrue)
			So(sig, ShouldEqual, want)
		}

		_, ok := ParseSignal("4")
		So(ok, ShouldBeFalse)
		So(isWireSignal("4"), ShouldBeTrue)
		So(isWireSignal("7"), ShouldBeFalse)
		So(isWireSignal("up"), ShouldBeFalse)
	})
}
