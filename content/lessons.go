package content

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	. "github.com/CodedInternet/gobraille/onboard/errors"
)

var stageHeader = regexp.MustCompile(`^===\s*(\d+)\s*단계\s*===$`)

// Lessons maps a stage number to its words in order.
type Lessons map[int][]string

// ParseLessons reads a word list split into stages. A stage starts with a
// header like "===1단계===" and lists one numbered word per line ("1. 강").
// Lines before the first header and lines without a number are ignored.
func ParseLessons(r io.Reader) (lessons Lessons, err error) {
	lessons = make(Lessons)
	stage := 0

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 {
			continue
		}

		if m := stageHeader.FindStringSubmatch(line); m != nil {
			stage, _ = strconv.Atoi(m[1])
			if _, ok := lessons[stage]; !ok {
				lessons[stage] = []string{}
			}
			continue
		}

		if stage == 0 || !unicode.IsDigit(rune(line[0])) {
			continue
		}

		parts := strings.SplitN(line, ".", 2)
		if len(parts) != 2 {
			continue
		}
		if word := strings.TrimSpace(parts[1]); len(word) > 0 {
			lessons[stage] = append(lessons[stage], word)
		}
	}

	if err = scanner.Err(); err != nil {
		return nil, Wrap(err, "unable to read lessons")
	}
	return
}

func LoadLessons(filename string) (Lessons, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, Wrapf(err, "unable to open lessons %s", filename)
	}
	defer f.Close()

	return ParseLessons(f)
}

// Stage returns the words for stage, or nil when there are none.
func (l Lessons) Stage(stage int) []string {
	return l[stage]
}
