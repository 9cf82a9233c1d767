package onboard

import (
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/CodedInternet/gobraille/onboard/hardware"
)

const testYaml = `
version: 1
device:
  firmware: "~1.2.0"
  ack_timeout: 3s
  settle: 250ms
  state_dir: /var/lib/braille
braille:
  override: first
navigation:
  change_cooldown: 1500ms
content:
  stories: /srv/stories
  lesson_stage: 2
collaborators:
  speak: espeak-ng -v ko
  release:
  - ollama stop gemma3
  - pkill -f espeak-ng
`

func TestConfigParsing(t *testing.T) {
	Convey("parsing is successful", t, func() {
		config, err := ParseConfig([]byte(testYaml))
		So(err, ShouldBeNil)

		Convey("durations and values are read", func() {
			So(config.Device.Firmware, ShouldEqual, "~1.2.0")
			So(config.Device.AckTimeout, ShouldEqual, 3*time.Second)
			So(config.Device.Settle, ShouldEqual, 250*time.Millisecond)
			So(config.Navigation.ChangeCooldown, ShouldEqual, 1500*time.Millisecond)
			So(config.Braille.Override, ShouldEqual, "first")
			So(config.Content.LessonStage, ShouldEqual, 2)
			So(config.Collaborators.Release, ShouldResemble, []string{"ollama stop gemma3", "pkill -f espeak-ng"})
		})

		Convey("unset values get defaults", func() {
			So(config.Device.Handshake, ShouldEqual, 4*time.Second)
			So(config.Navigation.ConfirmDebounce, ShouldEqual, 500*time.Millisecond)
			So(config.Navigation.History, ShouldEqual, 8)
			So(config.Device.Globs, ShouldResemble, []string{"/dev/ttyACM*", "/dev/ttyUSB*"})
		})
	})

	Convey("an empty document is all defaults", t, func() {
		config, err := ParseConfig([]byte(""))
		So(err, ShouldBeNil)
		So(config.Version, ShouldEqual, CONFIG_VERSION)
		So(config.Device.AckTimeout, ShouldEqual, hardware.CMD_ACK_TIMEOUT)
		So(config.Braille.Override, ShouldEqual, "last")
	})

	Convey("unknown versions are refused", t, func() {
		_, err := ParseConfig([]byte("version: 7"))
		So(err, ShouldNotBeNil)
	})

	Convey("unknown override policies are refused", t, func() {
		_, err := ParseConfig([]byte("braille:\n  override: middle"))
		So(err, ShouldNotBeNil)
	})

	Convey("a missing file gives the defaults", t, func() {
		config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		So(err, ShouldBeNil)
		So(config.Device.Baud, ShouldEqual, 9600)
	})

	Convey("discovery takes the link settings", t, func() {
		config, _ := ParseConfig([]byte(testYaml))
		d := config.Device.Discovery()
		So(d.Firmware, ShouldEqual, "~1.2.0")
		So(d.FallbackInput, ShouldEqual, "/dev/ttyACM0")
	})
}
