package comms

import "fmt"

// Mode is one of the application states the navigation can be in. The set is
// closed; only the types in this file implement it.
type Mode interface {
	isMode()
	String() string
}

type Root struct{}
type Photo struct{}
type LearningSelect struct{}
type Question struct{}
type StoryBrowse struct{}
type StoryReading struct{}

// LearningActive is a running lesson. Sub is never LearningUnset.
type LearningActive struct {
	Sub Learning
}

func (Root) isMode()           {}
func (Photo) isMode()          {}
func (LearningSelect) isMode() {}
func (LearningActive) isMode() {}
func (Question) isMode()       {}
func (StoryBrowse) isMode()    {}
func (StoryReading) isMode()   {}

func (Root) String() string           { return "root" }
func (Photo) String() string          { return "photo" }
func (LearningSelect) String() string { return "learning_select" }
func (m LearningActive) String() string {
	return fmt.Sprintf("learning_active(%s)", m.Sub)
}
func (Question) String() string     { return "question" }
func (StoryBrowse) String() string  { return "story_browse" }
func (StoryReading) String() string { return "story_reading" }

// Learning is the sub selection made in LearningSelect.
type Learning int

const (
	LearningUnset Learning = iota
	LearningReading
	LearningWriting
)

func (l Learning) String() string {
	switch l {
	case LearningReading:
		return "reading"
	case LearningWriting:
		return "writing"
	default:
		return "unset"
	}
}

// Label is what gets announced when the sub selection changes.
func (l Learning) Label() string {
	switch l {
	case LearningReading:
		return "읽기 기능 선택"
	case LearningWriting:
		return "쓰기 기능 선택"
	default:
		return ""
	}
}

// MenuItem is one of the entries selectable from Root.
type MenuItem int

const (
	ItemPhoto MenuItem = iota
	ItemLearning
	ItemQuestion
	ItemStory

	MENU_ITEMS = 4
)

func (i MenuItem) Mode() Mode {
	switch i {
	case ItemLearning:
		return LearningSelect{}
	case ItemQuestion:
		return Question{}
	case ItemStory:
		return StoryBrowse{}
	default:
		return Photo{}
	}
}

func (i MenuItem) Label() string {
	switch i {
	case ItemLearning:
		return "학습"
	case ItemQuestion:
		return "질문"
	case ItemStory:
		return "동화"
	default:
		return "사진"
	}
}

func (i MenuItem) String() string {
	return i.Mode().String()
}
