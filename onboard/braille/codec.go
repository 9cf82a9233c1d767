package braille

import (
	"fmt"
	"strings"
)

// OverridePolicy decides which code wins when the glyph table lists the same
// glyph more than once.
type OverridePolicy int

const (
	// LastWins keeps the final entry for a glyph. This matches what the
	// deployed firmware tables have been driven with.
	LastWins OverridePolicy = iota
	// FirstWins keeps the earliest entry for a glyph.
	FirstWins
)

// ParsePolicy reads the config spelling of a policy. Empty means LastWins.
func ParsePolicy(s string) (OverridePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "last":
		return LastWins, nil
	case "first":
		return FirstWins, nil
	}
	return LastWins, fmt.Errorf("unknown glyph override policy %q", s)
}

func (p OverridePolicy) String() string {
	if p == FirstWins {
		return "first"
	}
	return "last"
}

// CodeEntry pairs a glyph with one dial position that shows it.
type CodeEntry struct {
	Glyph rune
	Code  Code
}

// CodeTable lists every dial position with the glyph it raises, in the order
// of the physical calibration sheet. The 8 glyphs in the right hand column
// are reachable from two positions each, so they appear twice.
var CodeTable = []CodeEntry{
	{'⠤', "11"}, {'⠒', "22"}, {'⠶', "33"}, {'⠉', "44"}, {'⠭', "55"}, {'⠛', "66"}, {'⠿', "77"}, {'⠀', "88"}, {'⠄', "19"},
	{'⠢', "21"}, {'⠖', "32"}, {'⠱', "43"}, {'⠍', "54"}, {'⠫', "65"}, {'⠟', "76"}, {'⠸', "87"}, {'⠄', "18"}, {'⠂', "29"},
	{'⠦', "31"}, {'⠑', "42"}, {'⠵', "53"}, {'⠋', "64"}, {'⠯', "75"}, {'⠘', "86"}, {'⠼', "17"}, {'⠂', "28"}, {'⠆', "39"},
	{'⠡', "41"}, {'⠕', "52"}, {'⠳', "63"}, {'⠏', "74"}, {'⠨', "85"}, {'⠜', "16"}, {'⠺', "27"}, {'⠆', "38"}, {'⠁', "49"},
	{'⠥', "51"}, {'⠓', "62"}, {'⠷', "73"}, {'⠈', "84"}, {'⠬', "15"}, {'⠚', "26"}, {'⠾', "37"}, {'⠁', "48"}, {'⠅', "59"},
	{'⠣', "61"}, {'⠗', "72"}, {'⠰', "83"}, {'⠌', "14"}, {'⠪', "25"}, {'⠞', "36"}, {'⠹', "47"}, {'⠅', "58"}, {'⠃', "69"},
	{'⠧', "71"}, {'⠐', "82"}, {'⠴', "13"}, {'⠊', "24"}, {'⠮', "35"}, {'⠙', "46"}, {'⠽', "57"}, {'⠃', "68"}, {'⠇', "79"},
	{'⠠', "81"}, {'⠔', "12"}, {'⠲', "23"}, {'⠎', "34"}, {'⠩', "45"}, {'⠝', "56"}, {'⠻', "67"}, {'⠇', "78"}, {'⠀', "89"},
}

// Codec maps glyphs to dial positions and back.
type Codec struct {
	Policy  OverridePolicy
	toCode  map[rune]Code
	toGlyph map[Code]rune
}

// NewCodec builds a codec from table, resolving duplicate glyphs with policy.
// The reverse mapping is always complete since every code appears once.
func NewCodec(table []CodeEntry, policy OverridePolicy) *Codec {
	c := &Codec{
		Policy:  policy,
		toCode:  make(map[rune]Code, len(table)),
		toGlyph: make(map[Code]rune, len(table)),
	}

	for _, e := range table {
		c.toGlyph[e.Code] = e.Glyph
		if _, seen := c.toCode[e.Glyph]; seen && policy == FirstWins {
			continue
		}
		c.toCode[e.Glyph] = e.Code
	}

	return c
}

// DefaultCodec uses CodeTable with the LastWins policy.
func DefaultCodec() *Codec {
	return NewCodec(CodeTable, LastWins)
}

func (c *Codec) Code(glyph rune) (Code, bool) {
	code, ok := c.toCode[glyph]
	return code, ok
}

func (c *Codec) Glyph(code Code) (rune, bool) {
	g, ok := c.toGlyph[code]
	return g, ok
}

// Codes looks up every glyph in order. Glyphs without a position are skipped
// and counted in dropped.
func (c *Codec) Codes(glyphs []rune) (codes []Code, dropped int) {
	codes = make([]Code, 0, len(glyphs))
	for _, g := range glyphs {
		code, ok := c.toCode[g]
		if !ok {
			dropped++
			continue
		}
		codes = append(codes, code)
	}
	return
}

// Decode renders a state vector back into glyphs, using '?' for positions
// that are not on the ring.
func (c *Codec) Decode(v StateVector) string {
	var sb strings.Builder
	for _, code := range v {
		if g, ok := c.toGlyph[code]; ok {
			sb.WriteRune(g)
		} else {
			sb.WriteRune('?')
		}
	}
	return sb.String()
}
