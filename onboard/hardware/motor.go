package hardware

import (
	"fmt"
	"strings"
)

const (
	// STEP_UNIT is the number of motor steps in one ring step, 1/8 of a turn.
	STEP_UNIT = 256

	DIR_REVERSE = 0
	DIR_FORWARD = 1
)

// MotorCommand moves one actuator. Slots are numbered from 1 on the wire.
type MotorCommand struct {
	Slot      int
	Steps     int
	Direction int
}

func (m MotorCommand) String() string {
	return fmt.Sprintf("M%d:%d:%d", m.Slot, m.Steps, m.Direction)
}

// ParseMotorCommand reads one command in the wire format.
func ParseMotorCommand(s string) (m MotorCommand, err error) {
	_, err = fmt.Sscanf(s, "M%d:%d:%d", &m.Slot, &m.Steps, &m.Direction)
	return
}

// Commands turns transitions into motor commands. Slots that do not move are
// left out; unresolved slots are left out and returned in skipped (0 based).
func Commands(t Transitions) (cmds []MotorCommand, skipped []int) {
	for i, s := range t {
		if !s.OK {
			skipped = append(skipped, i)
			continue
		}
		if s.Value == 0 {
			continue
		}

		dir := DIR_FORWARD
		if s.Value < 0 {
			dir = DIR_REVERSE
		}
		cmds = append(cmds, MotorCommand{
			Slot:      i + 1,
			Steps:     abs(s.Value) * STEP_UNIT,
			Direction: dir,
		})
	}

	return
}

// FormatLine joins commands into the single line the controller board reads.
func FormatLine(cmds []MotorCommand) string {
	parts := make([]string, len(cmds))
	for i, c := range cmds {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ") + "\n"
}
