package onboard

import (
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/CodedInternet/gobraille/onboard/braille"
	. "github.com/CodedInternet/gobraille/onboard/errors"
	"github.com/CodedInternet/gobraille/onboard/hardware"
	"github.com/CodedInternet/gobraille/onboard/serial"
)

const CONFIG_VERSION = 1

type DeviceConfig struct {
	Version       int
	Device        LinkConfig          `yaml:"device"`
	Braille       BrailleConfig       `yaml:"braille"`
	Navigation    NavigationConfig    `yaml:"navigation"`
	Content       ContentConfig       `yaml:"content"`
	Collaborators CollaboratorsConfig `yaml:"collaborators"`
}

type LinkConfig struct {
	Globs      []string      `yaml:"globs,flow"`
	Baud       int           `yaml:"baud"`
	Handshake  time.Duration `yaml:"handshake"`
	Boot       time.Duration `yaml:"boot"`
	Firmware   string        `yaml:"firmware"`
	AckTimeout time.Duration `yaml:"ack_timeout"`
	Settle     time.Duration `yaml:"settle"`
	// positional fallbacks when a board does not announce itself
	InputPort   string `yaml:"input_port"`
	BraillePort string `yaml:"braille_port"`
	StateDir    string `yaml:"state_dir"`
}

type BrailleConfig struct {
	Override string `yaml:"override"`
}

type NavigationConfig struct {
	History         int           `yaml:"history"`
	ChangeCooldown  time.Duration `yaml:"change_cooldown"`
	ConfirmDebounce time.Duration `yaml:"confirm_debounce"`
}

type ContentConfig struct {
	Stories     string `yaml:"stories"`
	Lessons     string `yaml:"lessons"`
	LessonStage int    `yaml:"lesson_stage"`
}

// CollaboratorsConfig holds the command lines of the outside programs the
// modes call. Empty commands fall back to logging only.
type CollaboratorsConfig struct {
	Speak      string   `yaml:"speak"`
	Describe   string   `yaml:"describe"`
	Record     string   `yaml:"record"`
	Transcribe string   `yaml:"transcribe"`
	Respond    string   `yaml:"respond"`
	Recognize  string   `yaml:"recognize"`
	Release    []string `yaml:"release"`
}

// Defaults fills every unset field.
func (c *DeviceConfig) Defaults() {
	if c.Version == 0 {
		c.Version = CONFIG_VERSION
	}

	d := &c.Device
	if len(d.Globs) == 0 {
		d.Globs = serial.DefaultGlobs
	}
	if d.Baud == 0 {
		d.Baud = serial.BAUD_RATE
	}
	if d.Handshake == 0 {
		d.Handshake = serial.HANDSHAKE_WINDOW
	}
	if d.Boot == 0 {
		d.Boot = serial.BOOT_DELAY
	}
	if len(d.Firmware) == 0 {
		d.Firmware = hardware.NODE_VERSION
	}
	if d.AckTimeout == 0 {
		d.AckTimeout = hardware.CMD_ACK_TIMEOUT
	}
	if d.Settle == 0 {
		d.Settle = hardware.CMD_SETTLE
	}
	if len(d.InputPort) == 0 {
		d.InputPort = "/dev/ttyACM0"
	}
	if len(d.BraillePort) == 0 {
		d.BraillePort = "/dev/ttyACM1"
	}
	if len(d.StateDir) == 0 {
		d.StateDir = "./data"
	}

	if len(c.Braille.Override) == 0 {
		c.Braille.Override = braille.LastWins.String()
	}

	n := &c.Navigation
	if n.History == 0 {
		n.History = 8
	}
	if n.ChangeCooldown == 0 {
		n.ChangeCooldown = 2 * time.Second
	}
	if n.ConfirmDebounce == 0 {
		n.ConfirmDebounce = 500 * time.Millisecond
	}

	if len(c.Content.Stories) == 0 {
		c.Content.Stories = "./stories"
	}
	if len(c.Content.Lessons) == 0 {
		c.Content.Lessons = "./lessons/words.txt"
	}
	if c.Content.LessonStage == 0 {
		c.Content.LessonStage = 1
	}
}

// ParseConfig reads a YAML document and fills in defaults.
func ParseConfig(data []byte) (config DeviceConfig, err error) {
	if err = yaml.Unmarshal(data, &config); err != nil {
		return config, Wrap(err, "unable to unmarshal yaml")
	}
	config.Defaults()

	switch config.Version {
	case CONFIG_VERSION:
	default:
		return config, Newf("unable to work with config version %d", config.Version)
	}

	if _, err = braille.ParsePolicy(config.Braille.Override); err != nil {
		return config, err
	}

	return
}

// LoadConfig reads filename. A missing file gives the defaults.
func LoadConfig(filename string) (config DeviceConfig, err error) {
	data, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		config.Defaults()
		return config, nil
	}
	if err != nil {
		return config, Wrapf(err, "unable to read %s", filename)
	}
	return ParseConfig(data)
}

// Discovery builds a port discovery from the link settings.
func (c LinkConfig) Discovery() *serial.Discovery {
	d := serial.NewDiscovery()
	d.Globs = c.Globs
	d.Baud = c.Baud
	d.Handshake = c.Handshake
	d.Boot = c.Boot
	d.Firmware = c.Firmware
	d.FallbackInput = c.InputPort
	d.FallbackBraille = c.BraillePort
	return d
}
