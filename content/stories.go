package content

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	. "github.com/CodedInternet/gobraille/onboard/errors"
)

const (
	LANG_KOREAN  = "kor"
	LANG_ENGLISH = "eng"
)

// Library is a directory of stories. Each story is a sub directory holding
// <name>_kor.txt and <name>_eng.txt.
type Library struct {
	Dir      string
	Language string
}

func NewLibrary(dir string) *Library {
	return &Library{Dir: dir, Language: LANG_KOREAN}
}

func (l *Library) file(name, lang string) string {
	return filepath.Join(l.Dir, name, fmt.Sprintf("%s_%s.txt", name, lang))
}

// List returns the stories that have both language files, sorted by name.
func (l *Library) List() (stories []string, err error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, Wrapf(err, "unable to list stories in %s", l.Dir)
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		if exists(l.file(name, LANG_KOREAN)) && exists(l.file(name, LANG_ENGLISH)) {
			stories = append(stories, name)
		}
	}
	sort.Strings(stories)
	return
}

// Lines returns the non blank lines of a story in the library language.
func (l *Library) Lines(name string) (lines []string, err error) {
	data, err := os.ReadFile(l.file(name, l.Language))
	if err != nil {
		return nil, Wrapf(err, "unable to read story %s", name)
	}

	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); len(line) > 0 {
			lines = append(lines, line)
		}
	}
	return
}

// Title is the announcement read before a story starts.
func (l *Library) Title(name string) string {
	return fmt.Sprintf("동화 제목 : %s", name)
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
