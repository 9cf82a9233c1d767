package comms

import (
	"context"
	"sync"
	"time"

	"github.com/CodedInternet/gobraille/onboard"
)

type fakeClock struct {
	lock sync.Mutex
	t    time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.t = c.t.Add(d)
}

// testCollaborator records every call. Speaking blockOn waits for the
// context and reports on entered.
type testCollaborator struct {
	lock       sync.Mutex
	spoken     []string
	rendered   []string
	recording  bool
	starts     int
	releases   int
	caption    string
	transcript string
	answer     string
	recognized string

	blockOn string
	entered chan struct{}
}

func newTestCollaborator() *testCollaborator {
	return &testCollaborator{
		caption:    "고양이 사진",
		transcript: "하늘은 왜 파래?",
		answer:     "빛이 흩어지기 때문입니다",
		recognized: "가",
		entered:    make(chan struct{}, 1),
	}
}

func (c *testCollaborator) Speak(ctx context.Context, text string) error {
	c.lock.Lock()
	c.spoken = append(c.spoken, text)
	block := len(c.blockOn) > 0 && text == c.blockOn
	c.lock.Unlock()

	if block {
		c.entered <- struct{}{}
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (c *testCollaborator) Spoken() []string {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]string(nil), c.spoken...)
}

func (c *testCollaborator) Rendered() []string {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]string(nil), c.rendered...)
}

func (c *testCollaborator) Releases() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.releases
}

func (c *testCollaborator) Describe(ctx context.Context) (string, error) {
	return c.caption, nil
}

func (c *testCollaborator) Start(ctx context.Context) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.recording = true
	c.starts++
	return nil
}

func (c *testCollaborator) Stop(ctx context.Context) (string, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.recording = false
	return c.transcript, nil
}

func (c *testCollaborator) Respond(ctx context.Context, question string) (string, error) {
	return c.answer, nil
}

func (c *testCollaborator) Recognize(ctx context.Context) (string, error) {
	return c.recognized, nil
}

func (c *testCollaborator) Release(ctx context.Context) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.releases++
	c.recording = false
	return nil
}

func (c *testCollaborator) Render(ctx context.Context, text string) (onboard.RenderResult, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.rendered = append(c.rendered, text)
	return onboard.RenderResult{Text: text}, nil
}

type testLibrary map[string][]string

func (l testLibrary) List() ([]string, error) {
	names := make([]string, 0, len(l))
	for _, name := range []string{"거북이", "토끼"} {
		if _, ok := l[name]; ok {
			names = append(names, name)
		}
	}
	return names, nil
}

func (l testLibrary) Lines(name string) ([]string, error) {
	return l[name], nil
}

func (l testLibrary) Title(name string) string {
	return "동화 제목 : " + name
}

type testLessons map[int][]string

func (l testLessons) Stage(stage int) []string {
	return l[stage]
}

func createTestRouter() (r *Router, c *testCollaborator, clock *fakeClock) {
	c = newTestCollaborator()
	clock = newFakeClock()

	modes := NewModes()
	modes.Speaker = c
	modes.Captioner = c
	modes.Recorder = c
	modes.Responder = c
	modes.Recognizer = c
	modes.Renderer = c
	modes.Stories = testLibrary{
		"거북이": {"옛날 옛적에", "거북이가 살았습니다", "끝"},
		"토끼":  {"토끼가 뛰었습니다"},
	}
	modes.Lessons = testLessons{1: {"가", "나", "다"}}

	r = NewRouter(NewStack(DEFAULT_HISTORY), modes, c)
	r.now = clock.Now
	return
}

// step handles sig, waits for its action and moves the clock past every
// cooldown.
func step(r *Router, clock *fakeClock, sig Signal) bool {
	ok := r.Handle(sig)
	r.Wait()
	clock.Advance(CHANGE_COOLDOWN + time.Millisecond)
	return ok
}
