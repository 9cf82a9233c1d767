package comms

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/CodedInternet/gobraille/logger"
	"github.com/CodedInternet/gobraille/onboard"
	"github.com/CodedInternet/gobraille/onboard/braille"
	. "github.com/CodedInternet/gobraille/onboard/errors"
)

const (
	CLIENT_BUFFER = 32
	WRITE_WAIT    = 10 * time.Second
	RENDER_WAIT   = 30 * time.Second
)

// Cmd is a request from a remote client.
type Cmd struct {
	Cmd  string `json:"cmd"`
	Name string `json:"name"`
	Text string `json:"text"`
}

// Display is the part of the braille device the conductor drives.
type Display interface {
	onboard.Renderer
	State() braille.StateVector
	Codec() *braille.Codec
	OnRender(fn func(onboard.RenderResult))
}

// Conductor connects remote clients to the device. Clients receive every
// navigation transition and every render as they happen and may inject
// signals or render text themselves.
type Conductor struct {
	Display Display
	Router  *Router

	lock    sync.Mutex
	clients map[*Client]struct{}
	log     *zap.SugaredLogger
}

type Client struct {
	conn *websocket.Conn
	tx   chan Event
	once sync.Once
	gone chan struct{}
}

func NewConductor(display Display, router *Router) (c *Conductor) {
	c = &Conductor{
		Display: display,
		Router:  router,
		clients: make(map[*Client]struct{}),
		log:     logger.Named("conductor"),
	}

	router.OnTransition(func(t Transition) {
		c.broadcast(Event{Type: EVENT_TRANSITION, Transition: &t})
	})
	display.OnRender(func(res onboard.RenderResult) {
		p := NewRenderPayload(res)
		c.broadcast(Event{Type: EVENT_RENDER, Render: &p})
	})

	return
}

func (c *Conductor) State() StatePayload {
	positions := c.Display.State()
	return StatePayload{
		Navigation: c.Router.Snapshot(),
		Positions:  codeStrings(positions[:]),
		Display:    c.Display.Codec().Decode(positions),
		Busy:       c.Router.Busy(),
	}
}

// ProcessCommand runs one client request. Renders are refused while a mode
// action is running, and hold the router while they run, so remote text does
// not interleave with a lesson.
func (c *Conductor) ProcessCommand(ctx context.Context, cmd Cmd) (res *onboard.RenderResult, err error) {
	switch strings.ToLower(cmd.Cmd) {
	case "signal":
		sig, ok := ParseSignal(cmd.Name)
		if !ok {
			return nil, Newf("unknown signal %q", cmd.Name)
		}
		c.log.Infow("remote signal", "signal", sig, "accepted", c.Router.Handle(sig))
		return nil, nil

	case "render":
		ctx, cancel := context.WithTimeout(ctx, RENDER_WAIT)
		defer cancel()

		var r onboard.RenderResult
		err = c.Router.Hold(ctx, func(ctx context.Context) (err error) {
			r, err = c.Display.Render(ctx, cmd.Text)
			return
		})
		if Is(err, ErrBusy) {
			return nil, WithHint(err, "wait for the current action to finish or cancel it")
		}
		return &r, err

	default:
		return nil, Newf("unknown command %q", cmd.Cmd)
	}
}

// Serve pushes events to conn and processes its commands until the
// connection fails. The current state is sent first.
func (c *Conductor) Serve(conn *websocket.Conn) {
	client := &Client{
		conn: conn,
		tx:   make(chan Event, CLIENT_BUFFER),
		gone: make(chan struct{}),
	}
	log := c.log.With("remote", conn.RemoteAddr().String())

	state := c.State()
	client.tx <- Event{Type: EVENT_STATE, State: &state, Sent: time.Now()}

	c.lock.Lock()
	c.clients[client] = struct{}{}
	c.lock.Unlock()
	log.Infow("client connected")

	defer func() {
		c.lock.Lock()
		delete(c.clients, client)
		c.lock.Unlock()
		client.close()
		log.Infow("client disconnected")
	}()

	go client.writeLoop(log)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnw("read failed", "error", err)
			}
			return
		}

		var cmd Cmd
		if err := json.Unmarshal(msg, &cmd); err != nil {
			client.send(Event{Type: EVENT_ERROR, Error: "invalid json"})
			continue
		}

		if _, err := c.ProcessCommand(context.Background(), cmd); err != nil {
			log.Infow("command refused", "cmd", cmd.Cmd, "error", err)
			client.send(Event{Type: EVENT_ERROR, Error: err.Error()})
		}
	}
}

// Clients is the number of connected clients.
func (c *Conductor) Clients() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	return len(c.clients)
}

// broadcast never blocks; slow clients miss events.
func (c *Conductor) broadcast(ev Event) {
	c.lock.Lock()
	defer c.lock.Unlock()

	for client := range c.clients {
		if !client.send(ev) {
			c.log.Debugw("client too slow, dropping event", "type", ev.Type)
		}
	}
}

func (cl *Client) send(ev Event) bool {
	if ev.Sent.IsZero() {
		ev.Sent = time.Now()
	}
	select {
	case <-cl.gone:
		return false
	case cl.tx <- ev:
		return true
	default:
		return false
	}
}

func (cl *Client) writeLoop(log *zap.SugaredLogger) {
	for {
		select {
		case <-cl.gone:
			return
		case ev := <-cl.tx:
			cl.conn.SetWriteDeadline(time.Now().Add(WRITE_WAIT))
			if err := cl.conn.WriteJSON(ev); err != nil {
				log.Warnw("write failed", "error", err)
				cl.close()
				return
			}
		}
	}
}

func (cl *Client) close() {
	cl.once.Do(func() {
		close(cl.gone)
		cl.conn.Close()
	})
}
