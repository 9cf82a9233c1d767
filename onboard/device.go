package onboard

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/CodedInternet/gobraille/logger"
	"github.com/CodedInternet/gobraille/onboard/braille"
	. "github.com/CodedInternet/gobraille/onboard/errors"
	"github.com/CodedInternet/gobraille/onboard/hardware"
	"github.com/CodedInternet/gobraille/onboard/store"
)

// Renderer shows text on the braille display.
type Renderer interface {
	Render(ctx context.Context, text string) (RenderResult, error)
}

type RenderResult struct {
	Text          string
	Previous      braille.StateVector
	Target        braille.StateVector
	Transitions   hardware.Transitions
	Emit          hardware.EmitResult
	DroppedChars  int
	DroppedGlyphs int
	Saved         bool
}

// Device is the braille display: codec, controller board and the stored
// dial positions.
type Device struct {
	codec   *braille.Codec
	node    *hardware.Node
	store   *store.Store
	journal *store.Journal

	lock      sync.Mutex
	observers []func(RenderResult)
	log       *zap.SugaredLogger
}

// NewDevice wires the display together. link may be nil when no controller
// was found; renders then only update the stored state if nothing has to
// move. journal is optional.
func NewDevice(config DeviceConfig, link hardware.Link, st *store.Store, journal *store.Journal) (d *Device, err error) {
	switch config.Version {
	case CONFIG_VERSION:
		policy, err := braille.ParsePolicy(config.Braille.Override)
		if err != nil {
			return nil, err
		}

		node := hardware.NewNode(link)
		node.AckTimeout = config.Device.AckTimeout
		node.Settle = config.Device.Settle

		d = &Device{
			codec:   braille.NewCodec(braille.CodeTable, policy),
			node:    node,
			store:   st,
			journal: journal,
			log:     logger.Named("device"),
		}

	default:
		err = Newf("unable to work with version %d", config.Version)
	}

	return
}

func (d *Device) Codec() *braille.Codec {
	return d.codec
}

// OnRender registers fn to be called after every render.
func (d *Device) OnRender(fn func(RenderResult)) {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.observers = append(d.observers, fn)
}

// State is the position the display was last commanded to.
func (d *Device) State() braille.StateVector {
	return d.store.Load()
}

// LastTransition is the most recent move sent towards the display.
func (d *Device) LastTransition() (hardware.Transitions, bool) {
	return d.store.LastTransition()
}

// Target computes the dial positions for text without touching the device.
func (d *Device) Target(text string) (target braille.StateVector, droppedChars, droppedGlyphs int) {
	tr := braille.Transcode(text)
	codes, dropped := d.codec.Codes(tr.Glyphs)
	if len(codes) > braille.Slots {
		d.log.Infow("text longer than the display, truncating", "cells", len(codes))
	}
	return braille.Pad(codes), tr.Dropped, dropped
}

// Render moves the display to show text. Renders are serialised. The target
// is saved unless the command line never reached the board, so the stored
// state tracks what the mechanism was told to do.
func (d *Device) Render(ctx context.Context, text string) (res RenderResult, err error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	res.Text = text
	res.Target, res.DroppedChars, res.DroppedGlyphs = d.Target(text)
	if res.DroppedChars > 0 || res.DroppedGlyphs > 0 {
		d.log.Warnw("characters dropped while encoding", "text", text,
			"unsupported", res.DroppedChars, "unmapped", res.DroppedGlyphs)
	}

	res.Previous = d.store.Load()
	res.Transitions = hardware.Plan(res.Previous, res.Target)
	for _, uerr := range hardware.Unresolvable(res.Previous, res.Target) {
		d.log.Warnw("position is not on the ring, slot will not move", "error", uerr)
	}
	res.Emit = d.node.Emit(ctx, res.Transitions)

	if res.Emit.Sent || len(res.Emit.Commands) == 0 {
		if err = d.store.Save(res.Target); err != nil {
			d.log.Errorw("unable to save state", "error", err)
		} else {
			res.Saved = true
		}
	} else {
		err = res.Emit.Err
	}

	d.store.LogTransition(res.Transitions)
	d.record(res)

	d.log.Infow("rendered", "text", text, "target", res.Target.String(),
		"transitions", res.Transitions.String(), "acked", res.Emit.Acked)

	for _, fn := range d.observers {
		fn(res)
	}

	return
}

func (d *Device) record(res RenderResult) {
	if d.journal == nil {
		return
	}

	rec := &store.RenderRecord{
		Text:          res.Text,
		Target:        res.Target.String(),
		Transitions:   res.Transitions.String(),
		Line:          res.Emit.Line,
		Sent:          res.Emit.Sent,
		Acked:         res.Emit.Acked,
		DroppedChars:  res.DroppedChars,
		DroppedGlyphs: res.DroppedGlyphs,
	}
	if res.Emit.Err != nil {
		rec.Error = res.Emit.Err.Error()
	}

	if err := d.journal.Record(rec); err != nil {
		d.log.Warnw("unable to record render", "error", err)
	}
}
