package comms

const DEFAULT_HISTORY = 8

// Stack is the navigation state: the active mode, how it was reached and the
// selections made inside the modes. It is not safe for concurrent use; the
// Router owns it.
type Stack struct {
	current Mode
	history []Mode
	limit   int

	// Selection is the Root menu index and survives returning to Root.
	Selection MenuItem

	// mode local state, cleared on every return to Root
	Sub        Learning
	Stories    []string
	StoryIndex int
	Words      []string
	WordIndex  int
	Recording  bool
}

func NewStack(limit int) *Stack {
	if limit <= 0 {
		limit = DEFAULT_HISTORY
	}
	return &Stack{
		current: Root{},
		limit:   limit,
	}
}

func (s *Stack) Current() Mode {
	return s.current
}

func (s *Stack) History() []Mode {
	return append([]Mode(nil), s.history...)
}

// Enter makes m the active mode, remembering the previous one. The oldest
// entry is dropped once the history is full.
func (s *Stack) Enter(m Mode) {
	s.history = append(s.history, s.current)
	if len(s.history) > s.limit {
		s.history = s.history[len(s.history)-s.limit:]
	}
	s.current = m
}

// Complete returns to Root if origin is still the active mode. A completion
// from a mode that has already been left is ignored.
func (s *Stack) Complete(origin Mode) bool {
	if origin != s.current {
		return false
	}
	s.Reset()
	return true
}

// Reset returns to Root and clears the history and the mode local state.
func (s *Stack) Reset() {
	s.current = Root{}
	s.history = nil
	s.Sub = LearningUnset
	s.Stories = nil
	s.StoryIndex = 0
	s.Words = nil
	s.WordIndex = 0
	s.Recording = false
}

func (s *Stack) MoveSelection(delta int) MenuItem {
	s.Selection = MenuItem(wrap(int(s.Selection)+delta, MENU_ITEMS))
	return s.Selection
}

// ToggleSub flips between reading and writing. The first toggle always
// selects reading.
func (s *Stack) ToggleSub() Learning {
	if s.Sub == LearningReading {
		s.Sub = LearningWriting
	} else {
		s.Sub = LearningReading
	}
	return s.Sub
}

// MoveStory cycles the story index. It reports false when there are no
// stories.
func (s *Stack) MoveStory(delta int) (name string, ok bool) {
	if len(s.Stories) == 0 {
		return "", false
	}
	s.StoryIndex = wrap(s.StoryIndex+delta, len(s.Stories))
	return s.Stories[s.StoryIndex], true
}

func (s *Stack) Story() (name string, ok bool) {
	if s.StoryIndex < 0 || s.StoryIndex >= len(s.Stories) {
		return "", false
	}
	return s.Stories[s.StoryIndex], true
}

// Snapshot is a copy of the stack for display.
type Snapshot struct {
	Mode       string   `json:"mode"`
	History    []string `json:"history"`
	Selection  string   `json:"selection"`
	Sub        string   `json:"learning"`
	Story      string   `json:"story,omitempty"`
	StoryIndex int      `json:"story_index"`
	StoryCount int      `json:"story_count"`
	WordIndex  int      `json:"word_index"`
	WordCount  int      `json:"word_count"`
	Recording  bool     `json:"recording"`
}

func (s *Stack) Snapshot() (snap Snapshot) {
	snap = Snapshot{
		Mode:       s.current.String(),
		History:    make([]string, len(s.history)),
		Selection:  s.Selection.String(),
		Sub:        s.Sub.String(),
		StoryIndex: s.StoryIndex,
		StoryCount: len(s.Stories),
		WordIndex:  s.WordIndex,
		WordCount:  len(s.Words),
		Recording:  s.Recording,
	}
	for i, m := range s.history {
		snap.History[i] = m.String()
	}
	snap.Story, _ = s.Story()
	return
}

func wrap(v, n int) int {
	return ((v % n) + n) % n
}
