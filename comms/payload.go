package comms

import (
	"time"

	"github.com/CodedInternet/gobraille/onboard"
)

const (
	EVENT_STATE      = "state"
	EVENT_TRANSITION = "transition"
	EVENT_RENDER     = "render"
	EVENT_ERROR      = "error"
)

// StatePayload is everything a remote client needs to draw the device.
type StatePayload struct {
	Navigation Snapshot `json:"navigation"`
	Positions  []string `json:"positions"`
	Display    string   `json:"display"`
	Busy       bool     `json:"busy"`
}

type RenderPayload struct {
	Text          string   `json:"text"`
	Previous      []string `json:"previous"`
	Target        []string `json:"target"`
	Transitions   string   `json:"transitions"`
	Line          string   `json:"line,omitempty"`
	Sent          bool     `json:"sent"`
	Acked         bool     `json:"acked"`
	DroppedChars  int      `json:"dropped_chars"`
	DroppedGlyphs int      `json:"dropped_glyphs"`
	Saved         bool     `json:"saved"`
	Error         string   `json:"error,omitempty"`
}

func NewRenderPayload(res onboard.RenderResult) (p RenderPayload) {
	p = RenderPayload{
		Text:          res.Text,
		Previous:      codeStrings(res.Previous[:]),
		Target:        codeStrings(res.Target[:]),
		Transitions:   res.Transitions.String(),
		Line:          res.Emit.Line,
		Sent:          res.Emit.Sent,
		Acked:         res.Emit.Acked,
		DroppedChars:  res.DroppedChars,
		DroppedGlyphs: res.DroppedGlyphs,
		Saved:         res.Saved,
	}
	if res.Emit.Err != nil {
		p.Error = res.Emit.Err.Error()
	}
	return
}

// Event is one message pushed to remote clients. Exactly one of the payload
// fields is set, matching Type.
type Event struct {
	Type       string         `json:"type"`
	State      *StatePayload  `json:"state,omitempty"`
	Transition *Transition    `json:"transition,omitempty"`
	Render     *RenderPayload `json:"render,omitempty"`
	Error      string         `json:"error,omitempty"`
	Sent       time.Time      `json:"sent"`
}

func codeStrings[T ~string](codes []T) []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = string(c)
	}
	return out
}
