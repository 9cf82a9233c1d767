package comms

import "strings"

type Signal int

const (
	SignalUp Signal = iota + 1
	SignalDown
	SignalConfirm
	SignalCancel
)

func (s Signal) String() string {
	switch s {
	case SignalUp:
		return "up"
	case SignalDown:
		return "down"
	case SignalConfirm:
		return "confirm"
	case SignalCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

func (s Signal) IsDirection() bool {
	return s == SignalUp || s == SignalDown
}

// delta is the index step a direction moves a selection by.
func (s Signal) delta() int {
	if s == SignalUp {
		return -1
	}
	return 1
}

// ParseSignal reads a signal from the input device's wire characters or from
// its name. The input device reports down as either '2' or '3'; '4' is sent
// but has no meaning and is not a signal.
func ParseSignal(s string) (Signal, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "up":
		return SignalUp, true
	case "2", "3", "down":
		return SignalDown, true
	case "5", "confirm":
		return SignalConfirm, true
	case "6", "cancel":
		return SignalCancel, true
	}
	return 0, false
}

// isWireSignal reports whether line is one of the characters the input device
// sends, which all need acknowledging.
func isWireSignal(line string) bool {
	line = strings.TrimSpace(line)
	return len(line) == 1 && line[0] >= '1' && line[0] <= '6'
}
