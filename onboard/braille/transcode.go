package braille

import "unicode"

const (
	CapitalSign = '⠠'
	NumberSign  = '⠼'

	hangulFirst = '가'
	hangulLast  = '힣'
	vowelCount  = 21
	tailCount   = 28
)

var (
	latin = map[rune]rune{
		'a': '⠁', 'b': '⠃', 'c': '⠉', 'd': '⠙', 'e': '⠑', 'f': '⠋', 'g': '⠛',
		'h': '⠓', 'i': '⠊', 'j': '⠚', 'k': '⠅', 'l': '⠇', 'm': '⠍', 'n': '⠝',
		'o': '⠕', 'p': '⠏', 'q': '⠟', 'r': '⠗', 's': '⠎', 't': '⠞', 'u': '⠥',
		'v': '⠧', 'w': '⠺', 'x': '⠭', 'y': '⠽', 'z': '⠵',
	}

	punctuation = map[rune]rune{
		' ': '⠀', '.': '⠲', ',': '⠂', '?': '⠦', '!': '⠖', '-': '⠤',
	}

	// digits are written as the letters a-j behind a number sign
	digitLetters = [10]rune{'j', 'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h', 'i'}

	leadJamo = [...]rune{
		'ㄱ', 'ㄲ', 'ㄴ', 'ㄷ', 'ㄸ', 'ㄹ', 'ㅁ', 'ㅂ', 'ㅃ', 'ㅅ',
		'ㅆ', 'ㅇ', 'ㅈ', 'ㅉ', 'ㅊ', 'ㅋ', 'ㅌ', 'ㅍ', 'ㅎ',
	}
	vowelJamo = [vowelCount]rune{
		'ㅏ', 'ㅐ', 'ㅑ', 'ㅒ', 'ㅓ', 'ㅔ', 'ㅕ', 'ㅖ', 'ㅗ', 'ㅘ', 'ㅙ',
		'ㅚ', 'ㅛ', 'ㅜ', 'ㅝ', 'ㅞ', 'ㅟ', 'ㅠ', 'ㅡ', 'ㅢ', 'ㅣ',
	}
	// index 0 is the empty tail
	tailJamo = [tailCount]rune{
		0, 'ㄱ', 'ㄲ', 'ㄳ', 'ㄴ', 'ㄵ', 'ㄶ', 'ㄷ', 'ㄹ', 'ㄺ',
		'ㄻ', 'ㄼ', 'ㄽ', 'ㄾ', 'ㄿ', 'ㅀ', 'ㅁ', 'ㅂ', 'ㅄ', 'ㅅ',
		'ㅆ', 'ㅇ', 'ㅈ', 'ㅊ', 'ㅋ', 'ㅌ', 'ㅍ', 'ㅎ',
	}

	// A silent initial ㅇ is not written.
	leads = map[rune]string{
		'ㄱ': "⠁", 'ㄴ': "⠉", 'ㄷ': "⠙", 'ㄹ': "⠑", 'ㅁ': "⠍", 'ㅂ': "⠃", 'ㅅ': "⠛",
		'ㅇ': "", 'ㅈ': "⠚", 'ㅊ': "⠚⠓", 'ㅋ': "⠅", 'ㅌ': "⠞", 'ㅍ': "⠏", 'ㅎ': "⠓",
		'ㄲ': "⠈⠁", 'ㄸ': "⠈⠙", 'ㅃ': "⠈⠃", 'ㅆ': "⠈⠛", 'ㅉ': "⠈⠚",
	}
	vowels = map[rune]string{
		'ㅏ': "⠣", 'ㅑ': "⠜", 'ㅓ': "⠡", 'ㅕ': "⠳", 'ㅗ': "⠥", 'ㅛ': "⠬", 'ㅜ': "⠍",
		'ㅠ': "⠩", 'ㅡ': "⠪", 'ㅣ': "⠕", 'ㅐ': "⠗", 'ㅔ': "⠝", 'ㅒ': "⠜⠗", 'ㅖ': "⠳⠗",
		'ㅘ': "⠣⠗", 'ㅙ': "⠣⠗", 'ㅚ': "⠥⠗", 'ㅝ': "⠍⠗", 'ㅞ': "⠍⠗", 'ㅟ': "⠍⠗",
		'ㅢ': "⠪⠗",
	}
	tails = map[rune]string{
		'ㄱ': "⠁", 'ㄴ': "⠉", 'ㄷ': "⠊", 'ㄹ': "⠐", 'ㅁ': "⠑", 'ㅂ': "⠃", 'ㅅ': "⠆",
		'ㅇ': "⠶", 'ㅈ': "⠚", 'ㅊ': "⠚⠓", 'ㅋ': "⠅", 'ㅌ': "⠞", 'ㅍ': "⠏", 'ㅎ': "⠓",
		'ㄲ': "⠁⠁", 'ㄳ': "⠁⠆", 'ㄵ': "⠉⠚", 'ㄶ': "⠉⠓", 'ㄺ': "⠐⠁", 'ㄻ': "⠐⠑",
		'ㄼ': "⠐⠃", 'ㄽ': "⠐⠆", 'ㄾ': "⠐⠞", 'ㄿ': "⠐⠏", 'ㅀ': "⠐⠓", 'ㅄ': "⠃⠆",
		'ㅆ': "⠌",
	}
)

// Transcription is the glyph sequence for a piece of text. Dropped counts
// characters that have no braille form and were left out.
type Transcription struct {
	Glyphs  []rune
	Dropped int
}

func (t Transcription) String() string {
	return string(t.Glyphs)
}

// Decompose splits a precomposed hangul syllable into its lead, vowel and
// tail jamo. tail is 0 when the syllable is open.
func Decompose(r rune) (lead, vowel, tail rune, ok bool) {
	if r < hangulFirst || r > hangulLast {
		return 0, 0, 0, false
	}
	offset := int(r - hangulFirst)
	li, rem := offset/(vowelCount*tailCount), offset%(vowelCount*tailCount)
	vi, ti := rem/tailCount, rem%tailCount
	return leadJamo[li], vowelJamo[vi], tailJamo[ti], true
}

// Transcode converts text into braille glyphs, one character at a time. A
// number sign is written before the first digit of every run of digits.
func Transcode(text string) (t Transcription) {
	numberMode := false

	for _, r := range text {
		if lead, vowel, tail, ok := Decompose(r); ok {
			numberMode = false
			t.Glyphs = append(t.Glyphs, []rune(leads[lead])...)
			t.Glyphs = append(t.Glyphs, []rune(vowels[vowel])...)
			if tail != 0 {
				t.Glyphs = append(t.Glyphs, []rune(tails[tail])...)
			}
			continue
		}

		if g, ok := latin[unicode.ToLower(r)]; ok && r < unicode.MaxASCII {
			numberMode = false
			if unicode.IsUpper(r) {
				t.Glyphs = append(t.Glyphs, CapitalSign)
			}
			t.Glyphs = append(t.Glyphs, g)
			continue
		}

		if r >= '0' && r <= '9' {
			if !numberMode {
				t.Glyphs = append(t.Glyphs, NumberSign)
				numberMode = true
			}
			t.Glyphs = append(t.Glyphs, latin[digitLetters[r-'0']])
			continue
		}

		numberMode = false
		if g, ok := punctuation[r]; ok {
			t.Glyphs = append(t.Glyphs, g)
		} else {
			t.Dropped++
		}
	}

	return
}
