package comms

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"sync"

	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"

	"github.com/CodedInternet/gobraille/logger"
	. "github.com/CodedInternet/gobraille/onboard/errors"
)

// Speaker reads text aloud and returns once it has finished.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Captioner takes a picture and describes it.
type Captioner interface {
	Describe(ctx context.Context) (string, error)
}

// Recorder captures a spoken question. Start returns as soon as recording
// has begun; Stop ends it and returns the transcript.
type Recorder interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) (string, error)
}

// Responder answers a question.
type Responder interface {
	Respond(ctx context.Context, question string) (string, error)
}

// Recognizer reads a handwritten character or word.
type Recognizer interface {
	Recognize(ctx context.Context) (string, error)
}

// Releaser frees whatever the last mode left running. It must be safe to
// call when nothing is held.
type Releaser interface {
	Release(ctx context.Context) error
}

// Command is a program with arguments, parsed from a shell style string.
type Command []string

func ParseCommand(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if len(line) == 0 {
		return nil, nil
	}
	args, err := shellquote.Split(line)
	if err != nil {
		return nil, Wrapf(err, "unable to parse command %q", line)
	}
	return Command(args), nil
}

func (c Command) String() string {
	return shellquote.Join(c...)
}

// Run executes the command with extra appended to the arguments and returns
// the trimmed stdout.
func (c Command) Run(ctx context.Context, extra ...string) (string, error) {
	if len(c) == 0 {
		return "", New("empty command")
	}
	args := append(append([]string(nil), c[1:]...), extra...)

	cmd := exec.CommandContext(ctx, c[0], args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", Wrapf(err, "%s: %s", c[0], strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// ExecSpeaker passes the text as the last argument of Cmd.
type ExecSpeaker struct {
	Cmd Command
}

func (s *ExecSpeaker) Speak(ctx context.Context, text string) error {
	_, err := s.Cmd.Run(ctx, text)
	return err
}

// ExecCaptioner uses the stdout of Cmd as the description.
type ExecCaptioner struct {
	Cmd Command
}

func (c *ExecCaptioner) Describe(ctx context.Context) (string, error) {
	return c.Cmd.Run(ctx)
}

// ExecResponder passes the question as the last argument and uses stdout as
// the answer.
type ExecResponder struct {
	Cmd Command
}

func (r *ExecResponder) Respond(ctx context.Context, question string) (string, error) {
	return r.Cmd.Run(ctx, question)
}

type ExecRecognizer struct {
	Cmd Command
}

func (r *ExecRecognizer) Recognize(ctx context.Context) (string, error) {
	return r.Cmd.Run(ctx)
}

// ExecRecorder keeps Record running until Stop, then runs Transcribe and
// uses its stdout as the transcript. It is also a Releaser so a cancelled
// question does not leave the recording running.
type ExecRecorder struct {
	Record     Command
	Transcribe Command

	lock sync.Mutex
	proc *exec.Cmd
	done chan error
}

func (r *ExecRecorder) Start(ctx context.Context) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.proc != nil {
		return nil
	}
	if len(r.Record) == 0 {
		return New("no record command configured")
	}

	// not bound to ctx, recording outlives the action that started it
	proc := exec.Command(r.Record[0], r.Record[1:]...)
	if err := proc.Start(); err != nil {
		return Wrap(err, "unable to start recording")
	}

	done := make(chan error, 1)
	go func() { done <- proc.Wait() }()

	r.proc = proc
	r.done = done
	return nil
}

func (r *ExecRecorder) Stop(ctx context.Context) (string, error) {
	r.halt()
	return r.Transcribe.Run(ctx)
}

func (r *ExecRecorder) Release(ctx context.Context) error {
	r.halt()
	return nil
}

func (r *ExecRecorder) halt() {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.proc == nil {
		return
	}
	if r.proc.Process != nil {
		r.proc.Process.Kill()
	}
	<-r.done
	r.proc = nil
	r.done = nil
}

// ExecReleaser runs every command in turn, continuing past failures.
type ExecReleaser struct {
	Cmds []Command
	log  *zap.SugaredLogger
}

func NewExecReleaser(lines []string) (*ExecReleaser, error) {
	r := &ExecReleaser{log: logger.Named("release")}
	for _, line := range lines {
		cmd, err := ParseCommand(line)
		if err != nil {
			return nil, err
		}
		if len(cmd) > 0 {
			r.Cmds = append(r.Cmds, cmd)
		}
	}
	return r, nil
}

func (r *ExecReleaser) Release(ctx context.Context) (err error) {
	for _, cmd := range r.Cmds {
		if _, cerr := cmd.Run(ctx); cerr != nil {
			r.log.Debugw("release command failed", "command", cmd.String(), "error", cerr)
			if err == nil {
				err = cerr
			}
		}
	}
	return
}

// Releasers calls every releaser and returns the first error.
type Releasers []Releaser

func (rs Releasers) Release(ctx context.Context) (err error) {
	for _, r := range rs {
		if rerr := r.Release(ctx); rerr != nil && err == nil {
			err = rerr
		}
	}
	return
}

// LogCollaborator stands in for every collaborator when no command is
// configured. It logs what would have happened and returns empty results.
type LogCollaborator struct {
	log *zap.SugaredLogger
}

func NewLogCollaborator() *LogCollaborator {
	return &LogCollaborator{log: logger.Named("collaborator")}
}

func (l *LogCollaborator) Speak(ctx context.Context, text string) error {
	l.log.Infow("speak", "text", text)
	return nil
}

func (l *LogCollaborator) Describe(ctx context.Context) (string, error) {
	l.log.Infow("describe")
	return "", nil
}

func (l *LogCollaborator) Start(ctx context.Context) error {
	l.log.Infow("recording started")
	return nil
}

func (l *LogCollaborator) Stop(ctx context.Context) (string, error) {
	l.log.Infow("recording stopped")
	return "", nil
}

func (l *LogCollaborator) Respond(ctx context.Context, question string) (string, error) {
	l.log.Infow("respond", "question", question)
	return "", nil
}

func (l *LogCollaborator) Recognize(ctx context.Context) (string, error) {
	l.log.Infow("recognize")
	return "", nil
}

func (l *LogCollaborator) Release(ctx context.Context) error {
	l.log.Infow("release")
	return nil
}
