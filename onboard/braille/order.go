package braille

import (
	"regexp"
	"strings"
)

// Code identifies one reachable rotational position of a dial actuator. The
// two digits are the positions of the dial's two half discs.
type Code string

const (
	// Idle is the position used for slots beyond the rendered glyphs.
	Idle Code = "88"

	// Slots is the number of actuators on the display.
	Slots = 10
)

// Order is the mechanical adjacency ring of every reachable position. Rotating
// an actuator by one step moves it to the neighbouring entry.
var Order = [...]Code{
	"44", "22", "66", "11", "55", "33", "77", "88", "49",
	"24", "62", "16", "51", "35", "73", "87", "48", "29",
	"64", "12", "56", "31", "75", "83", "47", "28", "69",
	"14", "52", "36", "71", "85", "43", "27", "68", "19",
	"54", "32", "76", "81", "45", "23", "67", "18", "59",
	"34", "72", "86", "41", "25", "63", "17", "58", "39",
	"74", "82", "46", "21", "65", "13", "57", "38", "79",
	"84", "42", "26", "61", "15", "53", "37", "78", "89",
}

// RingSize is the number of steps in a full revolution.
const RingSize = len(Order)

var (
	orderIndex = make(map[Code]int, RingSize)
	codeFormat = regexp.MustCompile(`^[0-9]{2}$`)
)

func init() {
	for i, c := range Order {
		orderIndex[c] = i
	}
}

// IndexOf returns the ring position of c. Codes that are not on the ring are
// unknown and report false.
func IndexOf(c Code) (int, bool) {
	i, ok := orderIndex[c]
	return i, ok
}

// Valid reports whether c is a reachable position.
func (c Code) Valid() bool {
	_, ok := orderIndex[c]
	return ok
}

// WellFormed reports whether c has the two digit shape of a code, regardless
// of whether the mechanism can reach it.
func (c Code) WellFormed() bool {
	return codeFormat.MatchString(string(c))
}

// StateVector is the position of every actuator slot.
type StateVector []Code

// DefaultState returns a vector with every slot idle.
func DefaultState() StateVector {
	return Pad(nil)
}

// Pad truncates or extends codes to exactly Slots entries, filling with Idle.
func Pad(codes []Code) StateVector {
	v := make(StateVector, Slots)
	for i := range v {
		if i < len(codes) {
			v[i] = codes[i]
		} else {
			v[i] = Idle
		}
	}
	return v
}

func (v StateVector) String() string {
	parts := make([]string, len(v))
	for i, c := range v {
		parts[i] = string(c)
	}
	return strings.Join(parts, " ")
}

// ParseState splits a space separated list of codes. It fails on the first
// token that is not two digits.
func ParseState(s string) (v StateVector, ok bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, false
	}
	v = make(StateVector, len(fields))
	for i, f := range fields {
		c := Code(f)
		if !c.WellFormed() {
			return nil, false
		}
		v[i] = c
	}
	return v, true
}
