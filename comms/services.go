package comms

import (
	"github.com/CodedInternet/gobraille/onboard"
)

// ConfigureModes replaces the logging collaborators with the configured
// commands. The returned releaser covers the release commands and the
// recorder, so a cancelled question stops recording.
func ConfigureModes(m *Modes, config onboard.CollaboratorsConfig) (releaser Releaser, err error) {
	parse := func(line string) (cmd Command) {
		if err != nil {
			return nil
		}
		cmd, err = ParseCommand(line)
		return
	}

	speak := parse(config.Speak)
	describe := parse(config.Describe)
	record := parse(config.Record)
	transcribe := parse(config.Transcribe)
	respond := parse(config.Respond)
	recognize := parse(config.Recognize)
	if err != nil {
		return nil, err
	}

	if len(speak) > 0 {
		m.Speaker = &ExecSpeaker{Cmd: speak}
	}
	if len(describe) > 0 {
		m.Captioner = &ExecCaptioner{Cmd: describe}
	}
	if len(respond) > 0 {
		m.Responder = &ExecResponder{Cmd: respond}
	}
	if len(recognize) > 0 {
		m.Recognizer = &ExecRecognizer{Cmd: recognize}
	}

	cmds, err := NewExecReleaser(config.Release)
	if err != nil {
		return nil, err
	}
	releasers := Releasers{cmds}

	if len(record) > 0 {
		rec := &ExecRecorder{Record: record, Transcribe: transcribe}
		m.Recorder = rec
		releasers = append(releasers, rec)
	}

	m.log.Infow("collaborators configured",
		"speak", speak.String(), "describe", describe.String(), "record", record.String(),
		"respond", respond.String(), "recognize", recognize.String(), "release", len(cmds.Cmds))

	return releasers, nil
}
