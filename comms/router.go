package comms

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/CodedInternet/gobraille/logger"
	. "github.com/CodedInternet/gobraille/onboard/errors"
)

const (
	CHANGE_COOLDOWN  = 2 * time.Second
	CONFIRM_DEBOUNCE = 500 * time.Millisecond
	RELEASE_TIMEOUT  = 10 * time.Second
)

// Action is the long running part of handling a signal. It runs without the
// router lock while the router drops every signal except Cancel. The returned
// apply, if any, is run under the lock afterwards unless the action was
// cancelled.
type Action func(ctx context.Context) (apply func(s *Stack))

// Transition is reported to observers after every accepted signal and every
// completion.
type Transition struct {
	Signal   string    `json:"signal"`
	From     string    `json:"from"`
	To       string    `json:"to"`
	State    Snapshot  `json:"state"`
	Occurred time.Time `json:"occurred"`
}

// Router feeds input signals to the active mode. One signal is handled at a
// time: while a mode action runs, everything but Cancel is dropped.
type Router struct {
	ChangeCooldown  time.Duration
	ConfirmDebounce time.Duration

	lock       sync.Mutex
	stack      *Stack
	modes      *Modes
	releaser   Releaser
	processing bool
	releasing  bool
	cancel     context.CancelFunc
	done       chan struct{}
	wg         sync.WaitGroup

	lastChange  time.Time
	lastConfirm time.Time
	now         func() time.Time

	observers []func(Transition)
	log       *zap.SugaredLogger
}

func NewRouter(stack *Stack, modes *Modes, releaser Releaser) *Router {
	if stack == nil {
		stack = NewStack(DEFAULT_HISTORY)
	}
	return &Router{
		ChangeCooldown:  CHANGE_COOLDOWN,
		ConfirmDebounce: CONFIRM_DEBOUNCE,
		stack:           stack,
		modes:           modes,
		releaser:        releaser,
		now:             time.Now,
		log:             logger.Named("router"),
	}
}

// OnTransition registers fn to be called, under the router lock, after every
// change. fn must not block or call back into the router.
func (r *Router) OnTransition(fn func(Transition)) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.observers = append(r.observers, fn)
}

func (r *Router) Snapshot() Snapshot {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.stack.Snapshot()
}

func (r *Router) Current() Mode {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.stack.Current()
}

// Busy reports whether a mode action or a cancellation is in progress.
func (r *Router) Busy() bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.processing || r.releasing
}

// Wait blocks until the running action, if any, has finished.
func (r *Router) Wait() {
	r.wg.Wait()
}

// Handle processes one signal and reports whether it was accepted. Cancel
// blocks until the running action has stopped and resources are released.
func (r *Router) Handle(sig Signal) bool {
	if sig == SignalCancel {
		return r.cancelAll()
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	now := r.now()
	if sig == SignalConfirm {
		if !r.lastConfirm.IsZero() && now.Sub(r.lastConfirm) < r.ConfirmDebounce {
			r.log.Debugw("confirm debounced")
			return false
		}
		r.lastConfirm = now
	}

	if r.releasing || r.processing {
		r.log.Debugw("busy, dropping signal", "signal", sig)
		return false
	}

	from := r.stack.Current()
	if _, root := from.(Root); root && sig.IsDirection() {
		if !r.lastChange.IsZero() && now.Sub(r.lastChange) < r.ChangeCooldown {
			r.log.Debugw("menu change cooling down", "signal", sig)
			return false
		}
		r.lastChange = now
	}

	accepted, action := r.modes.dispatch(r.stack, sig)
	if !accepted {
		r.log.Debugw("signal ignored", "signal", sig, "mode", from)
		return false
	}

	r.notify(sig.String(), from)
	if action != nil {
		r.start(action)
	}
	return true
}

// Hold runs fn in place of a mode action: signals other than Cancel are
// dropped until it returns, and Cancel ends its ctx. ErrBusy is returned
// without calling fn when an action is already running.
func (r *Router) Hold(ctx context.Context, fn func(ctx context.Context) error) error {
	r.lock.Lock()
	if r.processing || r.releasing {
		r.lock.Unlock()
		return ErrBusy
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.processing = true
	r.cancel = cancel
	r.done = done
	r.wg.Add(1)
	r.lock.Unlock()

	defer r.wg.Done()
	err := fn(ctx)
	cancel()
	close(done)

	r.lock.Lock()
	defer r.lock.Unlock()

	// a Cancel that took over has already reset everything
	if r.done == done {
		r.processing = false
		r.cancel = nil
		r.done = nil
	}
	return err
}

// Complete returns to Root if origin is still the active mode.
func (r *Router) Complete(origin Mode) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	if !r.stack.Complete(origin) {
		return false
	}
	r.notify("complete", origin)
	return true
}

// Close stops the running action without releasing resources.
func (r *Router) Close() {
	r.lock.Lock()
	cancel := r.cancel
	r.lock.Unlock()

	if cancel != nil {
		cancel()
	}
	r.Wait()
}

// start runs action on its own goroutine. Called with the lock held.
func (r *Router) start(action Action) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	r.processing = true
	r.cancel = cancel
	r.done = done
	r.wg.Add(1)

	go func() {
		defer r.wg.Done()
		defer close(done)
		defer cancel()

		apply := action(ctx)

		r.lock.Lock()
		defer r.lock.Unlock()

		if ctx.Err() != nil {
			// cancelAll owns the state from here
			return
		}

		if apply != nil {
			from := r.stack.Current()
			apply(r.stack)
			if r.stack.Current() != from {
				r.notify("complete", from)
			}
		}
		r.processing = false
		r.cancel = nil
		r.done = nil
	}()
}

// cancelAll stops the running action, releases resources and returns to
// Root. A second Cancel while this is under way is dropped.
func (r *Router) cancelAll() bool {
	r.lock.Lock()
	if r.releasing {
		r.lock.Unlock()
		r.log.Debugw("already cancelling")
		return false
	}
	r.releasing = true
	cancel, done := r.cancel, r.done
	from := r.stack.Current()
	r.lock.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	if r.releaser != nil {
		ctx, stop := context.WithTimeout(context.Background(), RELEASE_TIMEOUT)
		if err := r.releaser.Release(ctx); err != nil {
			r.log.Warnw("unable to release resources", "error", err)
		}
		stop()
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	r.stack.Reset()
	r.stack.Selection = ItemPhoto
	r.lastConfirm = time.Time{}
	r.processing = false
	r.releasing = false
	r.cancel = nil
	r.done = nil

	r.log.Infow("cancelled", "from", from)
	r.notify(SignalCancel.String(), from)
	return true
}

// notify is called with the lock held.
func (r *Router) notify(signal string, from Mode) {
	t := Transition{
		Signal:   signal,
		From:     from.String(),
		To:       r.stack.Current().String(),
		State:    r.stack.Snapshot(),
		Occurred: r.now(),
	}
	if t.From != t.To {
		r.log.Infow("transition", "signal", signal, "from", t.From, "to", t.To)
	}
	for _, fn := range r.observers {
		fn(t)
	}
}
