package hardware

import (
	"context"
	"sync"
	"time"

	"github.com/Masterminds/semver"
	"go.uber.org/zap"

	. "github.com/CodedInternet/gobraille/onboard/errors"
	"github.com/CodedInternet/gobraille/logger"
)

const (
	NODE_VERSION = "~1.0.0"
)

// Link is a line oriented connection to a controller board.
type Link interface {
	Name() string
	AddListener(rx chan<- string)
	SendLine(line string) error
}

// Node drives the motor controller board over a Link. One command is in
// flight at a time.
type Node struct {
	link    Link
	lock    *sync.Mutex
	ackLock *sync.Mutex
	pending NodeCommand
	rx      chan string

	AckTimeout time.Duration
	Settle     time.Duration

	log *zap.SugaredLogger
}

func NewNode(link Link) (n *Node) {
	n = &Node{
		link:       link,
		lock:       new(sync.Mutex),
		ackLock:    new(sync.Mutex),
		rx:         make(chan string, 8),
		AckTimeout: CMD_ACK_TIMEOUT,
		Settle:     CMD_SETTLE,
		log:        logger.Named("node"),
	}

	if link != nil {
		link.AddListener(n.rx)
		go n.listen()
	}

	return
}

// EmitResult describes one emission to the board.
type EmitResult struct {
	Line     string
	Commands []MotorCommand
	Skipped  []int
	Sent     bool
	Acked    bool
	Ack      string
	Err      error
}

// Emit sends the commands for t as one line and waits for the board to
// answer. Unresolved slots are skipped. When nothing moves no
// line is written. Ack timeouts and a ctx that ends after the write are
// reported on the result, they do not prevent the caller treating the target
// as reached.
func (n *Node) Emit(ctx context.Context, t Transitions) (res EmitResult) {
	res.Commands, res.Skipped = Commands(t)
	for _, slot := range res.Skipped {
		n.log.Debugw("skipping unresolvable slot", "slot", slot+1)
	}

	if len(res.Commands) == 0 {
		return
	}
	res.Line = FormatLine(res.Commands)

	cmd := NewLineCommand(n, res.Line)
	ack, err := cmd.Process(ctx)
	switch {
	case err == nil:
		res.Sent = true
		res.Acked = true
		res.Ack = ack

	case Is(err, ErrAckTimeout):
		res.Sent = true
		res.Err = err
		n.log.Warnw("no acknowledgement from board", "port", n.link.Name(), "timeout", n.AckTimeout)

	case Is(err, ErrAckAborted):
		res.Sent = true
		res.Err = err
		n.log.Infow("stopped waiting for acknowledgement", "port", n.link.Name(), "error", err)
		return

	default:
		res.Err = err
		n.log.Errorw("unable to send motor commands", "error", err)
		return
	}

	if n.Settle > 0 {
		select {
		case <-time.After(n.Settle):
		case <-ctx.Done():
		}
	}

	return
}

func (n *Node) setPending(cmd NodeCommand) {
	n.ackLock.Lock()
	defer n.ackLock.Unlock()

	n.pending = cmd
}

func (n *Node) listen() {
	for line := range n.rx {
		n.routeACK(line)
	}
}

func (n *Node) routeACK(line string) {
	n.ackLock.Lock()
	cmd := n.pending
	n.ackLock.Unlock()

	if cmd == nil {
		n.log.Debugw("unsolicited line from board", "line", line)
		return
	}
	cmd.Ack(line)
}

// CheckFirmware validates the version a board announced during its
// handshake. "DEV" builds are accepted; anything else must be a semver
// inside constraint.
func CheckFirmware(port, version, constraint string) (err error) {
	if version == "DEV" {
		return nil
	}

	if len(constraint) == 0 {
		constraint = NODE_VERSION
	}

	semVer, err := semver.NewVersion(version)
	if err != nil {
		return FirmwareError{Port: port, Version: version, Constraint: constraint}
	}

	semVerConstraint, err := semver.NewConstraint(constraint)
	if err != nil {
		return Wrapf(err, "invalid firmware constraint %q", constraint)
	}

	if !semVerConstraint.Check(semVer) {
		return FirmwareError{Port: port, Version: version, Constraint: constraint}
	}

	return nil
}
