package sysex

import (
	"bytes"
	"errors"
	"fmt"

	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	smfTicksPerQuarter = 480

	// Messages are spaced an eighth note apart so players pace the
	// transmission instead of flooding the unit.
	smfTicksBetweenMessages = smfTicksPerQuarter / 2
)

// WrapSMF packs the SysEx messages in data into a single-track Standard
// MIDI File. Sequencers and DAWs will happily play such a file back into a
// synthesizer, which makes it a convenient archive format for dumps.
func WrapSMF(data []byte) ([]byte, error) {
	messages := Split(data)
	if len(messages) == 0 {
		return nil, errors.New("no SysEx messages to wrap")
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(smfTicksPerQuarter)

	var track smf.Track

	// Tempo meta event, 120 BPM
	track.Add(0, smf.Message([]byte{0xFF, 0x51, 0x03, 0x07, 0xA1, 0x20}))

	var delta uint32
	for _, msg := range messages {
		track.Add(delta, smf.Message(msg.Data))
		delta = smfTicksBetweenMessages
	}

	track.Close(0)
	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return buf.Bytes(), nil
}

// ExtractSMF pulls the SysEx messages out of a Standard MIDI File and
// returns them concatenated, the way a plain .syx file stores them.
func ExtractSMF(data []byte) ([]byte, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIDI: %w", err)
	}

	var out []byte
	for _, track := range s.Tracks {
		for _, ev := range track {
			msg := []byte(ev.Message)
			if len(msg) >= 2 && msg[0] == 0xF0 && msg[len(msg)-1] == 0xF7 {
				out = append(out, msg...)
			}
		}
	}

	if len(out) == 0 {
		return nil, errors.New("no SysEx messages found in MIDI file")
	}
	return out, nil
}
