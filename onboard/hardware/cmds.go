package hardware

import (
	"context"
	"time"

	. "github.com/CodedInternet/gobraille/onboard/errors"
)

const (
	CMD_ACK_TIMEOUT = 15 * time.Second
	CMD_SETTLE      = 500 * time.Millisecond
)

// NodeCommand is a single request line with an acknowledgement exchange.
type NodeCommand interface {
	Line() string
	Process(ctx context.Context) (resp string, err error)
	Ack(resp string)
}

// LineCommand sends one line and waits for the next line from the board.
// The board sends no NACK, so any line counts as an acknowledgement.
type LineCommand struct {
	node *Node
	line string
	ack  chan string
}

func NewLineCommand(node *Node, line string) *LineCommand {
	return &LineCommand{
		node: node,
		line: line,
		ack:  make(chan string, 1),
	}
}

func (c *LineCommand) Line() string {
	return c.line
}

// Process writes the line and blocks until the board answers, the node's ack
// timeout passes or ctx is done. A write that fails is returned as a
// LinkError; no answer is ErrAckTimeout. Once the line is written a done ctx
// gives ErrAckAborted, the board still has the line.
func (c *LineCommand) Process(ctx context.Context) (resp string, err error) {
	n := c.node
	if n == nil || n.link == nil {
		return "", ErrNoLink
	}

	n.lock.Lock()
	defer n.lock.Unlock()

	// register so the listener can route the answer to us
	n.setPending(c)
	defer n.setPending(nil)

	if err = n.link.SendLine(c.line); err != nil {
		return "", LinkError{Port: n.link.Name(), Op: "write", Err: err}
	}

	timer := time.NewTimer(n.AckTimeout)
	defer timer.Stop()

	select {
	case resp = <-c.ack:
		return resp, nil

	case <-timer.C:
		return "", ErrAckTimeout

	case <-ctx.Done():
		return "", Wrap(ErrAckAborted, ctx.Err().Error())
	}
}

func (c *LineCommand) Ack(resp string) {
	select {
	case c.ack <- resp:
	default:
		// already answered, the board sent more than one line
	}
}
