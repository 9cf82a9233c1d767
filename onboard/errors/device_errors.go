package errors

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

var (
	New      = crdb.New
	Newf     = crdb.Newf
	Wrap     = crdb.Wrap
	Wrapf    = crdb.Wrapf
	Is       = crdb.Is
	As       = crdb.As
	WithHint = crdb.WithHint
)

var (
	ErrNoLink     = New("device link not connected")
	ErrAckTimeout = New("timed out waiting for device acknowledgement")
	ErrAckAborted = New("stopped waiting for device acknowledgement")
	ErrLocked     = New("state directory is locked by another controller")
	ErrBusy       = New("controller is processing another action")
)

// LinkError reports a failure talking to a device on a serial port.
type LinkError struct {
	Port string
	Op   string
	Err  error
}

func (err LinkError) Error() string {
	if len(err.Port) == 0 {
		err.Port = "UNKNOWN"
	}
	return fmt.Sprintf("link %s: %s failed: %v", err.Port, err.Op, err.Err)
}

func (err LinkError) Unwrap() error {
	return err.Err
}

// FirmwareError is returned when a device announces a version outside the
// configured constraint.
type FirmwareError struct {
	Port       string
	Version    string
	Constraint string
}

func (err FirmwareError) Error() string {
	return fmt.Sprintf("unable to use device on %s: received version %s - require %s", err.Port, err.Version, err.Constraint)
}

// UnknownCodeError names a dial position that is not on the adjacency ring.
type UnknownCodeError struct {
	Slot int
	Code string
}

func (err UnknownCodeError) Error() string {
	return fmt.Sprintf("slot %d: position %q is not reachable", err.Slot, err.Code)
}
