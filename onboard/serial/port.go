package serial

import (
	"io"
	"strings"
	"sync"
	"time"

	"github.com/goburrow/serial"
	"go.uber.org/zap"

	. "github.com/CodedInternet/gobraille/onboard/errors"
	"github.com/CodedInternet/gobraille/logger"
)

const (
	BAUD_RATE    = 9600
	READ_TIMEOUT = 100 * time.Millisecond
	READ_BUFFER  = 256
)

// Opener opens the device at address. It is swapped out in tests.
type Opener func(address string, baud int, timeout time.Duration) (io.ReadWriteCloser, error)

func OpenPort(address string, baud int, timeout time.Duration) (io.ReadWriteCloser, error) {
	return serial.Open(&serial.Config{
		Address:  address,
		BaudRate: baud,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  timeout,
	})
}

// Port is a line framed serial connection. Lines read from the device are
// delivered to every listener; a listener that is not ready misses the line.
type Port struct {
	name string
	rw   io.ReadWriteCloser

	lock      sync.Mutex
	lisLock   sync.Mutex
	listeners []chan<- string

	closed chan struct{}
	once   sync.Once
	log    *zap.SugaredLogger
}

func NewPort(name string, rw io.ReadWriteCloser) (p *Port) {
	p = &Port{
		name:   name,
		rw:     rw,
		closed: make(chan struct{}),
		log:    logger.Named("serial").With("port", name),
	}

	go p.readLoop()

	return
}

func (p *Port) Name() string {
	return p.name
}

func (p *Port) AddListener(rx chan<- string) {
	p.lisLock.Lock()
	defer p.lisLock.Unlock()

	p.listeners = append(p.listeners, rx)
}

func (p *Port) RemoveListener(rx chan<- string) {
	p.lisLock.Lock()
	defer p.lisLock.Unlock()

	for i, l := range p.listeners {
		if l == rx {
			p.listeners = append(p.listeners[:i], p.listeners[i+1:]...)
			return
		}
	}
}

// SendLine writes line in a single write, adding the newline if missing.
func (p *Port) SendLine(line string) error {
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	return p.Write([]byte(line))
}

func (p *Port) Write(b []byte) error {
	if p.closedNow() {
		return LinkError{Port: p.name, Op: "write", Err: io.ErrClosedPipe}
	}

	p.lock.Lock()
	defer p.lock.Unlock()

	if _, err := p.rw.Write(b); err != nil {
		return LinkError{Port: p.name, Op: "write", Err: err}
	}
	return nil
}

func (p *Port) Close() (err error) {
	p.once.Do(func() {
		close(p.closed)
		err = p.rw.Close()
	})
	return
}

// Done is closed once the port stops reading.
func (p *Port) Done() <-chan struct{} {
	return p.closed
}

func (p *Port) closedNow() bool {
	select {
	case <-p.closed:
		return true
	default:
		return false
	}
}

func (p *Port) readLoop() {
	buf := make([]byte, READ_BUFFER)
	var pending []byte

	for {
		select {
		case <-p.closed:
			return
		default:
		}

		n, err := p.rw.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			pending = p.dispatch(pending)
		}

		if err != nil {
			if Is(err, serial.ErrTimeout) {
				continue
			}
			p.log.Infow("stopped reading", "error", err)
			p.Close()
			return
		}
	}
}

// dispatch hands every complete line in data to the listeners and returns the
// unterminated remainder.
func (p *Port) dispatch(data []byte) []byte {
	for {
		i := strings.IndexByte(string(data), '\n')
		if i < 0 {
			return data
		}

		line := strings.TrimSpace(string(data[:i]))
		data = data[i+1:]
		if len(line) == 0 {
			continue
		}

		p.log.Debugw("rx", "line", line)

		p.lisLock.Lock()
		for _, l := range p.listeners {
			select {
			case l <- line:
			default:
				p.log.Debugw("listener busy, dropping line", "line", line)
			}
		}
		p.lisLock.Unlock()
	}
}
