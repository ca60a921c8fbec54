// Package mididetect probes connected MIDI ports for known synthesizers.
//
// Each device adapter supplies its own detection message and knows how to
// read the channel out of the reply; this package only does the port
// plumbing: send the probe on an output port, listen for SysEx on the
// matching input, and hand every reply to the adapters.
package mididetect

import (
	"fmt"
	"log"
	"time"

	"github.com/james-see/synthlibrarian/pkg/librarian"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// DefaultWaitMilliseconds is used when a device does not recommend its own
// detection window.
const DefaultWaitMilliseconds = 500

// Result describes one device found during a scan.
type Result struct {
	Device  librarian.Device
	Channel int
	InPort  string
	OutPort string
}

// ListPorts returns the names of the available MIDI input and output ports.
func ListPorts() (ins []string, outs []string, err error) {
	inPorts, err := drivers.Ins()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list MIDI inputs: %w", err)
	}
	outPorts, err := drivers.Outs()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list MIDI outputs: %w", err)
	}
	for _, p := range inPorts {
		ins = append(ins, p.String())
	}
	for _, p := range outPorts {
		outs = append(outs, p.String())
	}
	return ins, outs, nil
}

// Scan probes every input/output port pair for the given devices and
// returns whatever answered. Ports are paired by index; interfaces that
// expose their input and output under different indices are covered by
// scanning each output against every input.
func Scan(devs []librarian.Device) ([]Result, error) {
	inPorts, err := drivers.Ins()
	if err != nil {
		return nil, fmt.Errorf("failed to list MIDI inputs: %w", err)
	}
	outPorts, err := drivers.Outs()
	if err != nil {
		return nil, fmt.Errorf("failed to list MIDI outputs: %w", err)
	}

	var results []Result
	for _, out := range outPorts {
		for _, in := range inPorts {
			found, err := ProbePair(in, out, devs)
			if err != nil {
				log.Printf("probe %s -> %s failed: %v", out.String(), in.String(), err)
				continue
			}
			results = append(results, found...)
		}
	}
	return results, nil
}

// ProbePair sends each device's detection message on out and watches in for
// a reply the device recognizes.
func ProbePair(in drivers.In, out drivers.Out, devs []librarian.Device) ([]Result, error) {
	if !out.IsOpen() {
		if err := out.Open(); err != nil {
			return nil, fmt.Errorf("failed to open output %s: %w", out.String(), err)
		}
	}

	msgCh := make(chan []byte, 16)
	stop, err := midi.ListenTo(in, func(msg midi.Message, _ int32) {
		if len(msg) > 0 && msg[0] == 0xF0 {
			select {
			case msgCh <- append([]byte{}, msg...):
			default:
			}
		}
	}, midi.UseSysEx(), midi.SysExBufferSize(4096))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", in.String(), err)
	}
	defer stop()

	var results []Result
	for _, d := range devs {
		channel, ok := probeDevice(out, msgCh, d)
		if !ok {
			continue
		}
		results = append(results, Result{
			Device:  d,
			Channel: channel,
			InPort:  in.String(),
			OutPort: out.String(),
		})
	}
	return results, nil
}

// probeDevice sends the device's detection message and waits for a reply it
// can parse. Devices that only answer probes addressed to their channel get
// one probe per channel.
func probeDevice(out drivers.Out, msgCh chan []byte, d librarian.Device) (int, bool) {
	channels := []int{0}
	if d.NeedsChannelSpecificDetection() {
		channels = make([]int, 16)
		for i := range channels {
			channels[i] = i
		}
	}

	wait := time.Duration(DefaultWaitMilliseconds) * time.Millisecond
	if t, ok := d.(librarian.DetectTimer); ok {
		wait = time.Duration(t.DetectWaitMilliseconds()) * time.Millisecond
	}

	for _, ch := range channels {
		if err := out.Send(d.DeviceDetectMessage(ch)); err != nil {
			log.Printf("failed to send %s detect message: %v", d.Name(), err)
			return -1, false
		}

		timer := time.NewTimer(wait)
	window:
		for {
			select {
			case reply := <-msgCh:
				if channel, ok := d.ChannelFromDetectResponse(reply); ok {
					timer.Stop()
					return channel, true
				}
			case <-timer.C:
				break window
			}
		}
	}
	return -1, false
}
