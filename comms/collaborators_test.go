package comms

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCommand(t *testing.T) {
	Convey("commands parse like a shell", t, func() {
		cmd, err := ParseCommand(`espeak -v ko "말하기 시험"`)
		So(err, ShouldBeNil)
		So(cmd, ShouldResemble, Command{"espeak", "-v", "ko", "말하기 시험"})
		again, err := ParseCommand(cmd.String())
		So(err, ShouldBeNil)
		So(again, ShouldResemble, cmd)

		cmd, err = ParseCommand("   ")
		So(err, ShouldBeNil)
		So(cmd, ShouldBeNil)

		_, err = ParseCommand(`say "unterminated`)
		So(err, ShouldNotBeNil)
	})

	Convey("running a command", t, func() {
		ctx := context.Background()

		Convey("returns trimmed stdout with the extra arguments", func() {
			out, err := Command{"echo", "-n", "hello"}.Run(ctx, " world ")
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "hello  world")
		})

		Convey("an empty command fails", func() {
			_, err := Command(nil).Run(ctx)
			So(err, ShouldNotBeNil)
		})

		Convey("a failing command carries its name", func() {
			_, err := Command{"false"}.Run(ctx)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldStartWith, "false")
		})

		Convey("a cancelled context wins", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := Command{"sleep", "5"}.Run(cctx)
			So(err, ShouldEqual, context.Canceled)
		})
	})
}

func TestReleasers(t *testing.T) {
	Convey("release commands all run", t, func() {
		r, err := NewExecReleaser([]string{"true", "", "false", "true"})
		So(err, ShouldBeNil)
		So(r.Cmds, ShouldHaveLength, 3)
		So(r.Release(context.Background()), ShouldNotBeNil)

		c := newTestCollaborator()
		So(Releasers{c, c}.Release(context.Background()), ShouldBeNil)
		So(c.Releases(), ShouldEqual, 2)
	})

	Convey("the recorder is safe to release when idle", t, func() {
		rec := &ExecRecorder{Transcribe: Command{"echo", "질문"}}
		So(rec.Release(context.Background()), ShouldBeNil)

		So(rec.Start(context.Background()), ShouldNotBeNil)

		rec.Record = Command{"sleep", "5"}
		So(rec.Start(context.Background()), ShouldBeNil)
		text, err := rec.Stop(context.Background())
		So(err, ShouldBeNil)
		So(text, ShouldEqual, "질문")
	})
}
