package serial

import (
	"time"

	"go.uber.org/zap"

	"github.com/CodedInternet/gobraille/logger"
)

const (
	// ACK_BYTE clears the input device's latch so it sends the next signal.
	ACK_BYTE      = '1'
	LATCH_RESETS  = 5
	LATCH_SPACING = 100 * time.Millisecond
)

// InputLink reads raw signal lines from the input device and acknowledges
// them.
type InputLink struct {
	port  *Port
	lines chan string
	log   *zap.SugaredLogger
}

// NewInputLink resets the device latch and starts collecting lines.
func NewInputLink(port *Port) (l *InputLink) {
	l = &InputLink{
		port:  port,
		lines: make(chan string, 16),
		log:   logger.Named("input").With("port", port.Name()),
	}

	port.AddListener(l.lines)
	l.ResetLatch(LATCH_RESETS, LATCH_SPACING)

	return
}

func (l *InputLink) ResetLatch(times int, spacing time.Duration) {
	for i := 0; i < times; i++ {
		if err := l.Ack(); err != nil {
			l.log.Warnw("unable to reset latch", "error", err)
			return
		}
		if spacing > 0 && i < times-1 {
			time.Sleep(spacing)
		}
	}
}

func (l *InputLink) Lines() <-chan string {
	return l.lines
}

func (l *InputLink) Ack() error {
	return l.port.Write([]byte{ACK_BYTE})
}

func (l *InputLink) Done() <-chan struct{} {
	return l.port.Done()
}

func (l *InputLink) Close() error {
	return l.port.Close()
}
