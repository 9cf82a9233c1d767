package hardware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	. "github.com/CodedInternet/gobraille/onboard/errors"
	"github.com/CodedInternet/gobraille/onboard/braille"
)

type testLink struct {
	sync.Mutex
	txerr, rxecho bool
	txCount       int
	lastTx        string
	listener      chan<- string
}

func (t *testLink) Name() string {
	return "/dev/test0"
}

func (t *testLink) AddListener(rx chan<- string) {
	t.listener = rx
}

func (t *testLink) SendLine(line string) error {
	t.Lock()
	defer t.Unlock()

	t.lastTx = line
	t.txCount++
	if t.txerr {
		return errors.New("this is a simulated tx error")
	}

	if t.rxecho {
		if t.listener == nil {
			return errors.New("unable to find listener")
		}
		t.listener <- "OK" // echo back for ACK
	}

	return nil
}

func createTestNodeLink() (tLink *testLink, tNode *Node) {
	tLink = &testLink{}
	tNode = NewNode(tLink)
	tNode.AckTimeout = 50 * time.Millisecond
	tNode.Settle = 0
	return
}

func TestNode(t *testing.T) {
	Convey("the listener is added when the node is created", t, func() {
		tLink, _ := createTestNodeLink()
		So(tLink.listener, ShouldNotBeNil)
	})

	Convey("emitting transitions", t, func() {
		tLink, node := createTestNodeLink()
		tLink.rxecho = true
		ctx := context.Background()

		Convey("writes one line for every moving slot", func() {
			res := node.Emit(ctx, Transitions{{Value: -1, OK: true}, {Value: 0, OK: true}, {Value: 2, OK: true}})

			So(res.Err, ShouldBeNil)
			So(res.Sent, ShouldBeTrue)
			So(res.Acked, ShouldBeTrue)
			So(res.Ack, ShouldEqual, "OK")
			So(tLink.txCount, ShouldEqual, 1)
			So(tLink.lastTx, ShouldEqual, "M1:256:0 M3:512:1\n")
		})

		Convey("does not write anything when nothing moves", func() {
			res := node.Emit(ctx, Transitions{{OK: true}, {OK: true}})

			So(res.Sent, ShouldBeFalse)
			So(res.Line, ShouldBeEmpty)
			So(tLink.txCount, ShouldEqual, 0)
		})

		Convey("skips unresolved slots and still moves the rest", func() {
			res := node.Emit(ctx, Transitions{{}, {Value: 3, OK: true}})

			So(res.Skipped, ShouldResemble, []int{0})
			So(tLink.lastTx, ShouldEqual, "M2:768:1\n")
		})

		Convey("a missing acknowledgement is reported but counts as sent", func() {
			tLink.rxecho = false
			res := node.Emit(ctx, Transitions{{Value: 1, OK: true}})

			So(res.Sent, ShouldBeTrue)
			So(res.Acked, ShouldBeFalse)
			So(res.Err, ShouldEqual, ErrAckTimeout)
		})

		Convey("giving up on the acknowledgement still counts as sent", func() {
			tLink.rxecho = false
			node.AckTimeout = time.Minute
			cctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
			defer cancel()

			res := node.Emit(cctx, Transitions{{Value: 1, OK: true}})

			So(res.Sent, ShouldBeTrue)
			So(res.Acked, ShouldBeFalse)
			So(Is(res.Err, ErrAckAborted), ShouldBeTrue)
			So(tLink.txCount, ShouldEqual, 1)
		})

		Convey("a failed write is not sent", func() {
			tLink.txerr = true
			res := node.Emit(ctx, Transitions{{Value: 1, OK: true}})

			So(res.Sent, ShouldBeFalse)
			So(res.Err, ShouldHaveSameTypeAs, LinkError{})
		})

		Convey("planning from the default state moves every slot", func() {
			target := braille.Pad([]braille.Code{"17", "18"})
			res := node.Emit(ctx, Plan(braille.DefaultState(), target))

			So(res.Sent, ShouldBeTrue)
			So(len(res.Commands), ShouldEqual, 2)
		})
	})

	Convey("a node without a link errors", t, func() {
		node := NewNode(nil)
		res := node.Emit(context.Background(), Transitions{{Value: 1, OK: true}})
		So(res.Err, ShouldEqual, ErrNoLink)
		So(res.Sent, ShouldBeFalse)
	})
}

func TestCheckFirmware(t *testing.T) {
	Convey("firmware versions are checked against the constraint", t, func() {
		So(CheckFirmware("/dev/ttyACM0", "1.0.3", "~1.0.0"), ShouldBeNil)
		So(CheckFirmware("/dev/ttyACM0", "DEV", "~1.0.0"), ShouldBeNil)
		So(CheckFirmware("/dev/ttyACM0", "1.0.3", ""), ShouldBeNil)

		err := CheckFirmware("/dev/ttyACM0", "2.1.0", "~1.0.0")
		So(err, ShouldHaveSameTypeAs, FirmwareError{})

		err = CheckFirmware("/dev/ttyACM0", "abc1234", "~1.0.0")
		So(err, ShouldHaveSameTypeAs, FirmwareError{})
	})
}
