package serial

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/CodedInternet/gobraille/logger"
	"github.com/CodedInternet/gobraille/onboard/hardware"
)

const (
	BRAILLE_READY = "BRAILLE_MOTOR_READY"
	INPUT_READY   = "JOYSTICK_READY"

	HANDSHAKE_WINDOW = 4 * time.Second
	BOOT_DELAY       = 2 * time.Second
)

var DefaultGlobs = []string{"/dev/ttyACM*", "/dev/ttyUSB*"}

type Role int

const (
	RoleUnknown Role = iota
	RoleBraille
	RoleInput
)

func (r Role) String() string {
	switch r {
	case RoleBraille:
		return "braille"
	case RoleInput:
		return "input"
	default:
		return "unknown"
	}
}

// Discovery finds the braille controller and the input device among the
// serial ports on the machine.
type Discovery struct {
	Globs     []string
	Baud      int
	Handshake time.Duration
	Boot      time.Duration
	Firmware  string

	// used for a role no device announced
	FallbackInput   string
	FallbackBraille string

	Open Opener
	Glob func(pattern string) ([]string, error)

	log *zap.SugaredLogger
}

func NewDiscovery() *Discovery {
	return &Discovery{
		Globs:           DefaultGlobs,
		Baud:            BAUD_RATE,
		Handshake:       HANDSHAKE_WINDOW,
		Boot:            BOOT_DELAY,
		FallbackInput:   "/dev/ttyACM0",
		FallbackBraille: "/dev/ttyACM1",
		Open:            OpenPort,
		Glob:            filepath.Glob,
		log:             logger.Named("discovery"),
	}
}

// Links holds the ports that were identified. Either may be nil.
type Links struct {
	Braille *Port
	Input   *Port
}

func (l Links) Close() {
	if l.Braille != nil {
		l.Braille.Close()
	}
	if l.Input != nil {
		l.Input.Close()
	}
}

// Candidates lists the ports matching the globs, sorted and deduplicated.
func (d *Discovery) Candidates() (ports []string) {
	seen := make(map[string]bool)
	for _, pattern := range d.Globs {
		matches, err := d.Glob(pattern)
		if err != nil {
			d.log.Warnw("bad port pattern", "pattern", pattern, "error", err)
			continue
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				ports = append(ports, m)
			}
		}
	}
	sort.Strings(ports)
	return
}

type probe struct {
	address string
	port    *Port
	role    Role
}

// Run probes every candidate port at once. Ports that announce themselves
// take their role; ports that stay quiet fill the missing roles by address.
// Unused ports are closed.
func (d *Discovery) Run() (links Links) {
	candidates := d.Candidates()
	if len(candidates) == 0 {
		d.log.Warnw("no serial ports found", "patterns", d.Globs)
		return
	}

	probes := make([]*probe, len(candidates))
	wg := sync.WaitGroup{}
	for i, address := range candidates {
		probes[i] = &probe{address: address}
		wg.Add(1)
		go func(p *probe) {
			defer wg.Done()
			d.identify(p)
		}(probes[i])
	}
	wg.Wait()

	quiet := make(map[string]*probe)
	for _, p := range probes {
		if p.port == nil {
			continue
		}
		switch {
		case p.role == RoleBraille && links.Braille == nil:
			links.Braille = p.port
		case p.role == RoleInput && links.Input == nil:
			links.Input = p.port
		case p.role == RoleUnknown:
			quiet[p.address] = p
		default:
			d.log.Warnw("duplicate device, ignoring", "port", p.address, "role", p.role)
			p.port.Close()
		}
	}

	if p, ok := quiet[d.FallbackInput]; ok && links.Input == nil {
		d.log.Infow("assuming input device by address", "port", p.address)
		links.Input = p.port
		delete(quiet, p.address)
	}
	if p, ok := quiet[d.FallbackBraille]; ok && links.Braille == nil {
		d.log.Infow("assuming braille controller by address", "port", p.address)
		links.Braille = p.port
		delete(quiet, p.address)
	}
	for _, p := range quiet {
		p.port.Close()
	}

	if links.Braille == nil {
		d.log.Warnw("braille controller not found")
	}
	if links.Input == nil {
		d.log.Warnw("input device not found")
	}

	return
}

func (d *Discovery) identify(p *probe) {
	rw, err := d.Open(p.address, d.Baud, READ_TIMEOUT)
	if err != nil {
		d.log.Debugw("unable to open port", "port", p.address, "error", err)
		return
	}
	p.port = NewPort(p.address, rw)

	rx := make(chan string, 8)
	p.port.AddListener(rx)
	defer p.port.RemoveListener(rx)

	var rejected bool
	p.role, rejected = d.await(p.address, rx, p.port.Done())
	if rejected || p.port.closedNow() {
		p.port.Close()
		p.port = nil
		return
	}

	if p.role == RoleBraille {
		// wake the controller and let it reset before the first command
		if d.Boot > 0 {
			time.Sleep(d.Boot)
		}
		if err := p.port.Write([]byte("\n")); err != nil {
			d.log.Warnw("unable to wake braille controller", "port", p.address, "error", err)
		}
	}
}

// await waits for a ready token on rx. A token may be followed by the
// firmware version; a version outside the constraint disqualifies the port.
func (d *Discovery) await(address string, rx <-chan string, done <-chan struct{}) (role Role, rejected bool) {
	timer := time.NewTimer(d.Handshake)
	defer timer.Stop()

	for {
		select {
		case line := <-rx:
			var version string
			role, version = parseReady(line)
			if role == RoleUnknown {
				d.log.Debugw("ignoring line during handshake", "port", address, "line", line)
				continue
			}

			if len(version) > 0 {
				if err := hardware.CheckFirmware(address, version, d.Firmware); err != nil {
					d.log.Errorw("rejecting device", "port", address, "error", err)
					return RoleUnknown, true
				}
			}

			d.log.Infow("device identified", "port", address, "role", role, "version", version)
			return role, false

		case <-timer.C:
			return RoleUnknown, false

		case <-done:
			return RoleUnknown, false
		}
	}
}

func parseReady(line string) (role Role, version string) {
	fields := strings.Fields(line)
	for i, f := range fields {
		switch {
		case strings.Contains(f, BRAILLE_READY):
			role = RoleBraille
		case strings.Contains(f, INPUT_READY):
			role = RoleInput
		default:
			continue
		}
		if i+1 < len(fields) {
			version = fields[i+1]
		}
		return
	}
	return
}
