// Package midi adapts the core's raw-byte output contract onto real MIDI
// ports via gomidi, and renders songs to Standard MIDI Files.
package midi

import (
	"fmt"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"gruvbok/debug"
)

// reopenInterval throttles port scans while disconnected, so a port plugged
// in later still gets picked up without rescanning on every send.
const reopenInterval = 2 * time.Second

// Out is a raw-byte MIDI sink bound to a named output port. The port is
// opened lazily on send; while no port matches, sends are silent no-ops and
// the scan is retried at most every reopenInterval, keeping the engine
// best-effort.
type Out struct {
	portName string
	send     func(gomidi.Message) error
	lastScan time.Time
}

// NewOut creates a sink for the named port. An empty name matches the first
// available output port.
func NewOut(portName string) *Out {
	return &Out{portName: portName}
}

// Send writes raw MIDI bytes to the port.
func (o *Out) Send(msg []byte) {
	if o.send == nil {
		if !o.lastScan.IsZero() && time.Since(o.lastScan) < reopenInterval {
			return
		}
		o.open()
		if o.send == nil {
			return
		}
	}
	if err := o.send(gomidi.Message(msg)); err != nil {
		debug.Log("midi", "send failed: %v", err)
	}
}

// Connected reports whether a port has been opened.
func (o *Out) Connected() bool { return o.send != nil }

// PortName returns the configured port name.
func (o *Out) PortName() string { return o.portName }

func (o *Out) open() {
	o.lastScan = time.Now()
	for _, port := range gomidi.GetOutPorts() {
		if o.portName != "" && port.String() != o.portName {
			continue
		}
		send, err := gomidi.SendTo(port)
		if err != nil {
			debug.Log("midi", "open %q: %v", port.String(), err)
			continue
		}
		o.send = send
		o.portName = port.String()
		debug.Log("midi", "opened output %q", o.portName)
		return
	}
	debug.Log("midi", "no output port matching %q", o.portName)
}

// Close shuts down the driver connection for the whole process.
func Close() {
	gomidi.CloseDriver()
}

// OutPortNames lists the available MIDI output ports.
func OutPortNames() []string {
	ports := gomidi.GetOutPorts()
	names := make([]string, 0, len(ports))
	for _, p := range ports {
		names = append(names, p.String())
	}
	return names
}

// String describes the sink for status lines.
func (o *Out) String() string {
	if o.send != nil {
		return fmt.Sprintf("midi:%s", o.portName)
	}
	return "midi:(disconnected)"
}
