// Package co2meter sequences the SCD30 through boot, configuration and
// continuous measurement, entirely in split-phase steps. Readings are
// handed raw to a sink; decoding and retention are the history task's
// business.
//
// Any bus fault parks the task in a terminal error state. The sensor
// shares the bus and its state machine with nobody, so a fault means
// wiring or power trouble that a retry loop would only smear over the
// log; the unit reports once and stays quiet.
package co2meter

import (
	"io"

	"airnode-go/alarm"
	"airnode-go/drivers/scd30"
	"airnode-go/i2c"
	"airnode-go/irq"
	"airnode-go/x/fmtx"
)

// Sink receives each raw measurement.
type Sink interface {
	Offer(scd30.RawMeasurement)
}

// Config for the meter. Zero values get defaults.
type Config struct {
	// BootTicks is how long the sensor gets to come out of power-on before
	// the first command. Default 2000000 (2 s at a microsecond tick).
	BootTicks uint64
	// IntervalSeconds between sensor-side measurements. Default 2.
	IntervalSeconds uint16
	// PressureMbar for ambient compensation; 0 disables it.
	PressureMbar uint16
	// SettleTicks between a query write and its read. Default 3000 (3 ms).
	SettleTicks uint64
	// ReadyBit is the GPIO mailbox bit wired to the sensor's RDY line.
	ReadyBit irq.Status
}

type state uint8

const (
	sBoot state = iota
	sSetInterval
	sStartCont
	sWaitReady
	sMeasure
	sError
)

// Task drives the sensor.
type Task struct {
	eng    i2c.Engine
	i2cMbx *irq.Mailbox
	gpio   *irq.Mailbox
	diag   io.Writer
	sink   Sink
	cfg    Config
	q      *alarm.Queue

	state state
	boot  alarm.Delay
	set   scd30.SetOp
	get   scd30.DelayedGetOp
	buf   [18]byte
	err   error
}

// New builds the meter. eng's completion bits and the RDY line's GPIO bit
// arrive in i2cMbx and gpio respectively.
func New(eng i2c.Engine, i2cMbx, gpio *irq.Mailbox, sink Sink, diag io.Writer, cfg Config) *Task {
	if cfg.BootTicks == 0 {
		cfg.BootTicks = 2_000_000
	}
	if cfg.IntervalSeconds == 0 {
		cfg.IntervalSeconds = 2
	}
	if cfg.SettleTicks == 0 {
		cfg.SettleTicks = 3_000
	}
	t := &Task{eng: eng, i2cMbx: i2cMbx, gpio: gpio, diag: diag, sink: sink, cfg: cfg}
	t.set = scd30.NewSetOp(eng, i2cMbx)
	return t
}

// Err returns the terminal fault, if any.
func (t *Task) Err() error { return t.err }

// Failed reports whether the task has parked itself.
func (t *Task) Failed() bool { return t.state == sError }

// Start arms the boot settle delay.
func (t *Task) Start(q *alarm.Queue) {
	t.q = q
	t.get = scd30.NewDelayedGetOp(t.eng, t.i2cMbx, q, t.cfg.SettleTicks)
	t.state = sBoot
	t.boot, _ = alarm.After(q, t.cfg.BootTicks)
}

// Update advances the sequence by at most one protocol step.
func (t *Task) Update() bool {
	switch t.state {
	case sBoot:
		if !t.boot.Done() {
			return false
		}
		frame := scd30.EncodeSetInterval(t.cfg.IntervalSeconds)
		if err := t.set.Begin(frame[:]); err != nil {
			t.fail(err)
			return true
		}
		t.state = sSetInterval
		return true

	case sSetInterval:
		if !t.set.Update() {
			return false
		}
		if err := t.set.Err(); err != nil {
			t.fail(err)
			return true
		}
		frame := scd30.EncodeStartContinuous(t.cfg.PressureMbar)
		if err := t.set.Begin(frame[:]); err != nil {
			t.fail(err)
			return true
		}
		t.state = sStartCont
		return true

	case sStartCont:
		if !t.set.Update() {
			return false
		}
		if err := t.set.Err(); err != nil {
			t.fail(err)
			return true
		}
		t.state = sWaitReady
		return true

	case sWaitReady:
		if t.gpio.GetAndClear(t.cfg.ReadyBit) == 0 {
			return false
		}
		frame := scd30.EncodeReadMeasurement()
		if err := t.get.Begin(frame[:], t.buf[:]); err != nil {
			t.fail(err)
			return true
		}
		t.state = sMeasure
		return true

	case sMeasure:
		if !t.get.Update() {
			return false
		}
		if !t.get.Done() {
			return true
		}
		if err := t.get.Err(); err != nil {
			t.fail(err)
			return true
		}
		raw, err := scd30.ParseMeasurement(t.buf)
		if err != nil {
			// A corrupt frame is transient; the RDY line will rise again.
			fmtx.Fprintf(t.diag, "co2: discarding reading: %s\n", err.Error())
			t.state = sWaitReady
			return true
		}
		if t.sink != nil {
			t.sink.Offer(raw)
		}
		t.state = sWaitReady
		return true
	}
	return false
}

// OnAlarm forwards drained ids to whichever delay is live.
func (t *Task) OnAlarm(id alarm.ID) bool {
	if t.boot.OnAlarm(id) {
		return true
	}
	return t.get.OnAlarm(id)
}

func (t *Task) fail(err error) {
	t.state = sError
	t.err = err
	fmtx.Fprintf(t.diag, "co2: fault, halting: %s\n", err.Error())
}
