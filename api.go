package main

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/CodedInternet/gobraille/comms"
	"github.com/CodedInternet/gobraille/logger"
	"github.com/CodedInternet/gobraille/onboard/braille"
	. "github.com/CodedInternet/gobraille/onboard/errors"
	"github.com/CodedInternet/gobraille/onboard/hardware"
)

const DEFAULT_HISTORY_LIMIT = 20

type RenderRequest struct {
	Text string `json:"text"`
}

func (rr *RenderRequest) Bind(r *http.Request) error {
	return nil
}

type SignalRequest struct {
	Signal string `json:"signal"`
}

func (sr *SignalRequest) Bind(r *http.Request) error {
	if _, ok := comms.ParseSignal(sr.Signal); !ok {
		return Newf("unknown signal %q", sr.Signal)
	}
	return nil
}

type SignalResponse struct {
	Accepted bool           `json:"accepted"`
	State    comms.Snapshot `json:"state"`
}

type PlanResponse struct {
	Text        string   `json:"text"`
	Current     []string `json:"current"`
	Target      []string `json:"target"`
	Transitions string   `json:"transitions"`
	Line        string   `json:"line"`
	Skipped     []int    `json:"skipped"`
}

func newRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer) // make sure this is last

	authenticated := func(r chi.Router) {
		if len(ENV.JWT_SECRET) > 0 {
			r.Use(ValidateJWT)
		} else {
			logger.Named("api").Warnw("JWT_SECRET not set, authentication disabled")
		}
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", Login)

		r.Group(func(r chi.Router) {
			authenticated(r)

			r.Get("/refresh_token", JWTRefresh)
			r.Get("/state", GetState)
			r.Get("/renders", GetRenders)
			r.Get("/plan", GetPlan)
			r.Post("/render", PostRender)
			r.Post("/signal", PostSignal)
		})
	})

	r.Route("/ws", func(r chi.Router) {
		authenticated(r)

		r.Get("/events", EventsHandler)
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	log := logger.Named("http")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debugw("request", "method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "request_id", middleware.GetReqID(r.Context()))
	})
}

func GetState(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, ENV.Conductor.State())
}

// GetRenders lists the most recent renders, newest first.
func GetRenders(w http.ResponseWriter, r *http.Request) {
	limit := DEFAULT_HISTORY_LIMIT
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			render.Render(w, r, ErrInvalidRequest(Newf("invalid limit %q", s)))
			return
		}
		limit = n
	}

	recs, err := ENV.Journal.Recent(limit)
	if err != nil {
		render.Render(w, r, ErrRender(err))
		return
	}
	render.JSON(w, r, recs)
}

// GetPlan shows what rendering text would do without moving anything.
func GetPlan(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")

	current := ENV.Device.State()
	target, _, _ := ENV.Device.Target(text)
	t := hardware.Plan(current, target)
	cmds, skipped := hardware.Commands(t)

	resp := PlanResponse{
		Text:        text,
		Current:     codeStrings(current),
		Target:      codeStrings(target),
		Transitions: t.String(),
		Skipped:     skipped,
	}
	if len(cmds) > 0 {
		resp.Line = hardware.FormatLine(cmds)
	}
	render.JSON(w, r, resp)
}

func PostRender(w http.ResponseWriter, r *http.Request) {
	data := &RenderRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	res, err := ENV.Conductor.ProcessCommand(r.Context(), comms.Cmd{Cmd: "render", Text: data.Text})
	if Is(err, ErrBusy) {
		render.Render(w, r, ErrConflict(err))
		return
	}
	if res == nil {
		render.Render(w, r, ErrRender(err))
		return
	}

	// link failures are reported in the payload, the render itself happened
	render.JSON(w, r, comms.NewRenderPayload(*res))
}

func PostSignal(w http.ResponseWriter, r *http.Request) {
	data := &SignalRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	sig, _ := comms.ParseSignal(data.Signal)
	accepted := ENV.Router.Handle(sig)
	render.JSON(w, r, SignalResponse{Accepted: accepted, State: ENV.Router.Snapshot()})
}

func codeStrings(v braille.StateVector) []string {
	out := make([]string, len(v))
	for i, c := range v {
		out[i] = string(c)
	}
	return out
}
