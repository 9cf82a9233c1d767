package onboard

import (
	"strings"
	"sync"
	"time"

	"github.com/CodedInternet/gobraille/onboard/braille"
	"github.com/CodedInternet/gobraille/onboard/hardware"
)

const SIM_MOVE_TIME = 50 * time.Millisecond

// SimulatedLink stands in for the controller board. Every line is answered
// with OK after Delay, and the dial positions it was told to move are
// tracked per slot.
type SimulatedLink struct {
	Delay  time.Duration
	Silent bool // never answer, to exercise ack timeouts

	lock      sync.Mutex
	listeners []chan<- string
	lines     []string
	steps     [braille.Slots]int
}

func NewSimulatedLink() *SimulatedLink {
	return &SimulatedLink{Delay: SIM_MOVE_TIME}
}

func (s *SimulatedLink) Name() string {
	return "simulator"
}

func (s *SimulatedLink) AddListener(rx chan<- string) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.listeners = append(s.listeners, rx)
}

func (s *SimulatedLink) SendLine(line string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.lines = append(s.lines, line)
	for _, f := range strings.Fields(line) {
		cmd, err := hardware.ParseMotorCommand(f)
		if err != nil {
			continue
		}
		if cmd.Slot < 1 || cmd.Slot > len(s.steps) {
			continue
		}
		delta := cmd.Steps / hardware.STEP_UNIT
		if cmd.Direction == hardware.DIR_REVERSE {
			delta = -delta
		}
		s.steps[cmd.Slot-1] += delta
	}

	if s.Silent {
		return nil
	}

	listeners := append([]chan<- string(nil), s.listeners...)
	go func() {
		time.Sleep(s.Delay)
		for _, l := range listeners {
			l <- "OK"
		}
	}()

	return nil
}

// Lines returns every line the simulator received.
func (s *SimulatedLink) Lines() []string {
	s.lock.Lock()
	defer s.lock.Unlock()

	return append([]string(nil), s.lines...)
}

// Steps returns the net ring steps each slot has turned.
func (s *SimulatedLink) Steps() []int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return append([]int(nil), s.steps[:]...)
}
