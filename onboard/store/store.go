package store

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/CodedInternet/gobraille/logger"
	"github.com/CodedInternet/gobraille/onboard/braille"
	. "github.com/CodedInternet/gobraille/onboard/errors"
	"github.com/CodedInternet/gobraille/onboard/hardware"
)

const (
	STATE_FILE      = "state.txt"
	TRANSITION_FILE = "transition.txt"
	LOCK_FILE       = ".lock"
)

// Store persists the last commanded dial positions between runs. Only one
// process may hold a Store for a directory at a time.
type Store struct {
	dir  string
	lock *os.File
	log  *zap.SugaredLogger
}

func Open(dir string) (s *Store, err error) {
	if err = os.MkdirAll(dir, 0755); err != nil {
		return nil, Wrapf(err, "unable to create state directory %s", dir)
	}

	f, err := os.OpenFile(filepath.Join(dir, LOCK_FILE), os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, Wrap(err, "unable to open lock file")
	}

	if err = lockFile(f); err != nil {
		f.Close()
		if Is(err, ErrLocked) {
			return nil, WithHint(ErrLocked, "another controller is running against "+dir)
		}
		return nil, Wrap(err, "unable to lock state directory")
	}

	s = &Store{
		dir:  dir,
		lock: f,
		log:  logger.Named("store"),
	}
	return
}

func (s *Store) Dir() string {
	return s.dir
}

// Load returns the stored state padded or truncated to the slot count. A
// missing or unreadable file gives the all idle default.
func (s *Store) Load() braille.StateVector {
	data, err := os.ReadFile(filepath.Join(s.dir, STATE_FILE))
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warnw("unable to read state, using default", "error", err)
		}
		return braille.DefaultState()
	}

	v, ok := braille.ParseState(string(data))
	if !ok {
		s.log.Warnw("malformed state file, using default", "content", string(data))
		return braille.DefaultState()
	}

	return braille.Pad(v)
}

// Save replaces the stored state. The file is never left half written.
func (s *Store) Save(v braille.StateVector) error {
	return s.writeAtomic(STATE_FILE, []byte(v.String()))
}

// LogTransition records the last plan for diagnostics. Failures are logged
// and otherwise ignored.
func (s *Store) LogTransition(t hardware.Transitions) {
	if err := s.writeAtomic(TRANSITION_FILE, []byte(t.String())); err != nil {
		s.log.Warnw("unable to write transition log", "error", err)
	}
}

// LastTransition reads back the audit file.
func (s *Store) LastTransition() (t hardware.Transitions, ok bool) {
	data, err := os.ReadFile(filepath.Join(s.dir, TRANSITION_FILE))
	if err != nil {
		return nil, false
	}
	return hardware.ParseTransitions(string(data))
}

func (s *Store) writeAtomic(name string, data []byte) (err error) {
	tmp, err := os.CreateTemp(s.dir, name+".*")
	if err != nil {
		return Wrapf(err, "unable to write %s", name)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return Wrapf(err, "unable to write %s", name)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return Wrapf(err, "unable to write %s", name)
	}
	if err = tmp.Close(); err != nil {
		return Wrapf(err, "unable to write %s", name)
	}

	if err = os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return Wrapf(err, "unable to write %s", name)
	}
	return nil
}

func (s *Store) Close() error {
	if s.lock == nil {
		return nil
	}
	unlockFile(s.lock)
	err := s.lock.Close()
	s.lock = nil
	return err
}
