// Package irrecv consumes completed infrared captures and decodes them as
// NEC frames. The capture front end times the demodulated line in hardware
// (or a simulator) and posts a mailbox bit when a gap closes a frame; this
// task never touches raw edges.
//
// Decode failures are expected in normal operation. Sunlight and dimmer
// switches produce garbage trains all day; each failure earns one
// diagnostic line and the task moves on.
package irrecv

import (
	"io"

	"airnode-go/alarm"
	"airnode-go/drivers/nec"
	"airnode-go/irq"
	"airnode-go/x/fmtx"
)

// Capture hands over completed pulse trains.
type Capture interface {
	// Frame copies the finished train into dst, resets the capture buffer
	// and returns the filled prefix. An overrun frame returns nil.
	Frame(dst []uint32) []uint32
}

// Config for the receiver. Zero values get defaults.
type Config struct {
	// FrameBit is posted when a frame-ending gap elapses.
	FrameBit irq.Status
	// OverrunBit is posted when the capture buffer overflowed mid-frame.
	OverrunBit irq.Status
	// Timing for the decoder; zero fields use nec.DefaultTiming.
	Timing nec.Timing
}

// Task decodes captures into messages.
type Task struct {
	cap     Capture
	mbx     *irq.Mailbox
	diag    io.Writer
	cfg     Config
	dec     nec.Decoder
	handler func(nec.Message)

	last     nec.Message
	haveLast bool
	scratch  [96]uint32
	frames   uint32
	faults   uint32
}

// New builds the receiver. handler may be nil; messages then only hit the
// diagnostic log.
func New(cap Capture, mbx *irq.Mailbox, diag io.Writer, handler func(nec.Message), cfg Config) *Task {
	return &Task{
		cap:     cap,
		mbx:     mbx,
		diag:    diag,
		cfg:     cfg,
		dec:     nec.NewDecoder(cfg.Timing),
		handler: handler,
	}
}

// Frames returns how many trains were decoded successfully.
func (t *Task) Frames() uint32 { return t.frames }

// Faults returns how many trains failed to decode.
func (t *Task) Faults() uint32 { return t.faults }

// Start is a no-op; the receiver owns no alarms.
func (t *Task) Start(q *alarm.Queue) {}

// Update decodes at most one completed frame.
func (t *Task) Update() bool {
	s := t.mbx.GetAndClear(t.cfg.FrameBit | t.cfg.OverrunBit)
	if s == 0 {
		return false
	}
	if s&t.cfg.OverrunBit != 0 {
		t.faults++
		fmtx.Fprintf(t.diag, "ir: capture overrun\n")
		return true
	}

	pulses := t.cap.Frame(t.scratch[:])
	m, err := t.dec.Decode(pulses)
	if err != nil {
		t.faults++
		fmtx.Fprintf(t.diag, "ir: %s\n", err.Error())
		return true
	}

	if m.Repeat {
		if !t.haveLast {
			// A repeat with no preceding frame is noise.
			t.faults++
			fmtx.Fprintf(t.diag, "ir: orphan repeat\n")
			return true
		}
		m.Address, m.Command = t.last.Address, t.last.Command
	} else {
		t.last = m
		t.haveLast = true
	}

	t.frames++
	fmtx.Fprintf(t.diag, "ir: addr=%x cmd=%x repeat=%t\n", m.Address, m.Command, m.Repeat)
	if t.handler != nil {
		t.handler(m)
	}
	return true
}

// OnAlarm claims nothing; the receiver owns no alarms.
func (t *Task) OnAlarm(id alarm.ID) bool { return false }
