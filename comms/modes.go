package comms

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/CodedInternet/gobraille/logger"
	"github.com/CodedInternet/gobraille/onboard"
)

const (
	MSG_NO_STORIES   = "사용 가능한 동화가 없습니다"
	MSG_NO_WORDS     = "학습할 단어가 없습니다"
	MSG_LESSON_DONE  = "학습을 완료했습니다"
	MSG_ASK_QUESTION = "질문을 말씀해 주세요"
	MSG_WRITE_PROMPT = "글자를 쓰고 버튼을 눌러주세요"
	MSG_STORY_DONE   = "동화 읽기를 마쳤습니다"

	MSG_AVAILABLE_PREFIX = "사용가능한"
	MSG_AVAILABLE_SUFFIX = "입니다"
)

// StoryLibrary lists stories and reads them line by line.
type StoryLibrary interface {
	List() ([]string, error)
	Lines(name string) ([]string, error)
	Title(name string) string
}

// LessonBook holds the reading lesson words per stage.
type LessonBook interface {
	Stage(stage int) []string
}

// Modes holds what the mode handlers need from the rest of the device.
type Modes struct {
	Speaker    Speaker
	Captioner  Captioner
	Recorder   Recorder
	Responder  Responder
	Recognizer Recognizer
	Renderer   onboard.Renderer

	Stories     StoryLibrary
	Lessons     LessonBook
	LessonStage int

	log *zap.SugaredLogger
}

func NewModes() *Modes {
	fallback := NewLogCollaborator()
	return &Modes{
		Speaker:     fallback,
		Captioner:   fallback,
		Recorder:    fallback,
		Responder:   fallback,
		Recognizer:  fallback,
		LessonStage: 1,
		log:         logger.Named("modes"),
	}
}

// dispatch applies the immediate effect of sig on the stack and returns the
// long running part, if any. It reports false when the active mode has no
// use for sig. Called with the router lock held; must not block.
func (m *Modes) dispatch(s *Stack, sig Signal) (accepted bool, action Action) {
	switch mode := s.Current().(type) {
	case Root:
		return m.root(s, sig)
	case Photo:
		return m.photo(s, sig)
	case LearningSelect:
		return m.learningSelect(s, sig)
	case LearningActive:
		return m.learningActive(s, sig, mode)
	case Question:
		return m.question(s, sig)
	case StoryBrowse:
		return m.storyBrowse(s, sig)
	case StoryReading:
		// reading runs as one action; nothing to do until it completes
		return false, nil
	}
	return false, nil
}

func (m *Modes) root(s *Stack, sig Signal) (bool, Action) {
	if sig.IsDirection() {
		item := s.MoveSelection(sig.delta())
		return true, m.say(item.Label())
	}

	if sig != SignalConfirm {
		return false, nil
	}

	item := s.Selection
	s.Enter(item.Mode())

	switch item {
	case ItemPhoto:
		return true, m.capture()

	case ItemLearning:
		s.Sub = LearningUnset
		return true, m.say(item.Label())

	case ItemStory:
		return true, func(ctx context.Context) func(*Stack) {
			stories := m.listStories()
			if len(stories) == 0 {
				m.speak(ctx, MSG_NO_STORIES)
			} else {
				m.speak(ctx, item.Label())
				m.speak(ctx, available(stories))
				m.speak(ctx, m.Stories.Title(stories[0]))
			}
			return func(s *Stack) {
				s.Stories = stories
				s.StoryIndex = 0
			}
		}

	default:
		return true, m.say(item.Label())
	}
}

// available names every story in one announcement.
func available(stories []string) string {
	return MSG_AVAILABLE_PREFIX + " " + strings.Join(stories, ", ") + " " + MSG_AVAILABLE_SUFFIX
}

func (m *Modes) photo(s *Stack, sig Signal) (bool, Action) {
	if sig != SignalConfirm {
		return false, nil
	}

	return true, m.capture()
}

// capture describes a picture aloud and returns to Root.
func (m *Modes) capture() Action {
	return func(ctx context.Context) func(*Stack) {
		caption, err := m.Captioner.Describe(ctx)
		if err != nil {
			m.log.Warnw("unable to describe picture", "error", err)
		} else if len(caption) > 0 {
			m.speak(ctx, caption)
		}
		return completer(Photo{})
	}
}

func (m *Modes) learningSelect(s *Stack, sig Signal) (bool, Action) {
	if sig.IsDirection() {
		sub := s.ToggleSub()
		return true, m.say(sub.Label())
	}

	if sig != SignalConfirm || s.Sub == LearningUnset {
		return false, nil
	}

	active := LearningActive{Sub: s.Sub}
	s.Enter(active)
	s.WordIndex = 0

	if active.Sub == LearningWriting {
		return true, m.say(MSG_WRITE_PROMPT)
	}

	stage := m.LessonStage
	return true, func(ctx context.Context) func(*Stack) {
		var words []string
		if m.Lessons != nil {
			words = m.Lessons.Stage(stage)
		}
		if len(words) == 0 {
			m.speak(ctx, MSG_NO_WORDS)
			return completer(active)
		}

		m.show(ctx, words[0])
		return func(s *Stack) {
			s.Words = words
			s.WordIndex = 0
		}
	}
}

func (m *Modes) learningActive(s *Stack, sig Signal, mode LearningActive) (bool, Action) {
	if sig != SignalConfirm {
		return false, nil
	}

	if mode.Sub == LearningWriting {
		return true, func(ctx context.Context) func(*Stack) {
			text, err := m.Recognizer.Recognize(ctx)
			if err != nil {
				m.log.Warnw("unable to recognise writing", "error", err)
				return completer(mode)
			}
			if len(text) > 0 {
				m.show(ctx, text)
			}
			return completer(mode)
		}
	}

	next := s.WordIndex + 1
	if next >= len(s.Words) {
		return true, func(ctx context.Context) func(*Stack) {
			m.speak(ctx, MSG_LESSON_DONE)
			return completer(mode)
		}
	}

	s.WordIndex = next
	word := s.Words[next]
	return true, func(ctx context.Context) func(*Stack) {
		m.show(ctx, word)
		return nil
	}
}

func (m *Modes) question(s *Stack, sig Signal) (bool, Action) {
	if sig != SignalConfirm {
		return false, nil
	}

	if !s.Recording {
		s.Recording = true
		return true, func(ctx context.Context) func(*Stack) {
			m.speak(ctx, MSG_ASK_QUESTION)
			if ctx.Err() != nil {
				return nil
			}
			if err := m.Recorder.Start(ctx); err != nil {
				m.log.Warnw("unable to start recording", "error", err)
				return func(s *Stack) { s.Recording = false }
			}
			return nil
		}
	}

	s.Recording = false
	return true, func(ctx context.Context) func(*Stack) {
		transcript, err := m.Recorder.Stop(ctx)
		if err != nil {
			m.log.Warnw("unable to transcribe question", "error", err)
			return completer(Question{})
		}
		m.log.Infow("question", "transcript", transcript)

		answer, err := m.Responder.Respond(ctx, transcript)
		if err != nil {
			m.log.Warnw("unable to answer question", "error", err)
			return completer(Question{})
		}
		m.speak(ctx, answer)
		return completer(Question{})
	}
}

func (m *Modes) storyBrowse(s *Stack, sig Signal) (bool, Action) {
	if sig.IsDirection() {
		name, ok := s.MoveStory(sig.delta())
		if !ok {
			return false, nil
		}
		return true, m.say(m.Stories.Title(name))
	}

	if sig != SignalConfirm {
		return false, nil
	}

	name, ok := s.Story()
	if !ok {
		return false, nil
	}
	s.Enter(StoryReading{})

	return true, func(ctx context.Context) func(*Stack) {
		m.speak(ctx, m.Stories.Title(name))

		lines, err := m.Stories.Lines(name)
		if err != nil {
			m.log.Warnw("unable to read story", "story", name, "error", err)
			return completer(StoryReading{})
		}

		for i, line := range lines {
			if ctx.Err() != nil {
				m.log.Infow("story interrupted", "story", name, "line", i)
				return nil
			}
			m.speak(ctx, line)
		}
		if ctx.Err() == nil {
			m.speak(ctx, MSG_STORY_DONE)
		}
		return completer(StoryReading{})
	}
}

// say is an action that only speaks text.
func (m *Modes) say(text string) Action {
	return func(ctx context.Context) func(*Stack) {
		m.speak(ctx, text)
		return nil
	}
}

func (m *Modes) speak(ctx context.Context, text string) {
	if ctx.Err() != nil || len(text) == 0 {
		return
	}
	if err := m.Speaker.Speak(ctx, text); err != nil && ctx.Err() == nil {
		m.log.Warnw("unable to speak", "text", text, "error", err)
	}
}

// show renders text on the display, then speaks it.
func (m *Modes) show(ctx context.Context, text string) {
	if ctx.Err() != nil {
		return
	}
	if m.Renderer != nil {
		if _, err := m.Renderer.Render(ctx, text); err != nil {
			m.log.Warnw("unable to render", "text", text, "error", err)
		}
	}
	m.speak(ctx, text)
}

func (m *Modes) listStories() []string {
	if m.Stories == nil {
		return nil
	}
	stories, err := m.Stories.List()
	if err != nil {
		m.log.Warnw("unable to list stories", "error", err)
	}
	return stories
}

func completer(origin Mode) func(*Stack) {
	return func(s *Stack) {
		s.Complete(origin)
	}
}
