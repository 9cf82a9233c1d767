package comms

import (
	"context"

	"github.com/CodedInternet/gobraille/logger"
)

// InputSource delivers raw lines from the input device.
type InputSource interface {
	Lines() <-chan string
	Ack() error
	Done() <-chan struct{}
}

// Pump feeds every signal read from src to the router until ctx is cancelled
// or src closes. Each wire signal is acknowledged once handled, accepted or
// not, so the device sends the next one.
func Pump(ctx context.Context, src InputSource, r *Router) {
	log := logger.Named("pump")

	for {
		select {
		case <-ctx.Done():
			return

		case <-src.Done():
			log.Warnw("input device closed")
			return

		case line := <-src.Lines():
			if sig, ok := ParseSignal(line); ok {
				if r.Handle(sig) {
					log.Debugw("signal accepted", "signal", sig)
				}
			} else {
				log.Debugw("unknown input", "line", line)
			}

			if isWireSignal(line) {
				if err := src.Ack(); err != nil {
					log.Warnw("unable to acknowledge input", "error", err)
				}
			}
		}
	}
}
