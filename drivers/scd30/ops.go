package scd30

import (
	"airnode-go/alarm"
	"airnode-go/i2c"
	"airnode-go/irq"
)

// Split-phase operations for the cooperative poll loop. Each op owns one
// in-flight transfer at a time and consumes the engine's completion bits
// from its mailbox; the owning task calls Update every iteration and
// forwards drained alarm ids to OnAlarm.
//
// Any fault bit ends the op in a terminal error state. There is no retry
// at this layer; the owning task decides what a bus fault means.

type opState uint8

const (
	opIdle opState = iota
	opWriting
	opSettling
	opReading
	opDone
	opFailed
)

// SetOp performs one command write.
type SetOp struct {
	eng   i2c.Engine
	mbx   *irq.Mailbox
	state opState
	err   error
}

// NewSetOp builds an op over an engine whose completion bits arrive in mbx.
func NewSetOp(eng i2c.Engine, mbx *irq.Mailbox) SetOp {
	return SetOp{eng: eng, mbx: mbx}
}

// Begin starts writing frame to the sensor.
func (o *SetOp) Begin(frame []byte) error {
	if err := o.eng.StartWrite(Addr, frame); err != nil {
		return err
	}
	o.state = opWriting
	o.err = nil
	return nil
}

// Update advances the op and reports whether it made progress.
func (o *SetOp) Update() bool {
	if o.state != opWriting {
		return false
	}
	s := o.mbx.GetAndClear(i2c.DoneBits)
	if s == 0 {
		return false
	}
	err := o.eng.Response()
	if terr := i2c.TransmissionError(s); terr != nil {
		err = terr
	}
	if err != nil {
		o.state = opFailed
		o.err = err
	} else {
		o.state = opDone
	}
	return true
}

// Done reports whether the write finished, successfully or not.
func (o *SetOp) Done() bool { return o.state == opDone || o.state == opFailed }

// Err returns the terminal fault, if any.
func (o *SetOp) Err() error { return o.err }

// DelayedGetOp performs command write, settle wait, response read. The
// sensor needs a few milliseconds between a query and its answer; the
// settle phase is an alarm wait, never a spin.
type DelayedGetOp struct {
	eng    i2c.Engine
	mbx    *irq.Mailbox
	q      *alarm.Queue
	settle uint64

	state opState
	delay alarm.Delay
	dst   []byte
	err   error
}

// NewDelayedGetOp builds an op; settleTicks is the write-to-read gap.
func NewDelayedGetOp(eng i2c.Engine, mbx *irq.Mailbox, q *alarm.Queue, settleTicks uint64) DelayedGetOp {
	return DelayedGetOp{eng: eng, mbx: mbx, q: q, settle: settleTicks}
}

// Begin starts the query; the answer will land in dst, which the op
// retains until Done.
func (o *DelayedGetOp) Begin(frame, dst []byte) error {
	if err := o.eng.StartWrite(Addr, frame); err != nil {
		return err
	}
	o.state = opWriting
	o.dst = dst
	o.err = nil
	return nil
}

// Update advances the op one phase at most and reports progress.
func (o *DelayedGetOp) Update() bool {
	switch o.state {
	case opWriting:
		s := o.mbx.GetAndClear(i2c.DoneBits)
		if s == 0 {
			return false
		}
		err := o.eng.Response()
		if terr := i2c.TransmissionError(s); terr != nil {
			err = terr
		}
		if err != nil {
			o.fail(err)
			return true
		}
		d, err := alarm.After(o.q, o.settle)
		if err != nil {
			o.fail(err)
			return true
		}
		o.delay = d
		o.state = opSettling
		return true

	case opSettling:
		if !o.delay.Done() {
			return false
		}
		if err := o.eng.StartRead(Addr, o.dst); err != nil {
			o.fail(err)
			return true
		}
		o.state = opReading
		return true

	case opReading:
		s := o.mbx.GetAndClear(i2c.DoneBits)
		if s == 0 {
			return false
		}
		err := o.eng.Response()
		if terr := i2c.TransmissionError(s); terr != nil {
			err = terr
		}
		if err != nil {
			o.fail(err)
		} else {
			o.state = opDone
		}
		return true
	}
	return false
}

// OnAlarm forwards a drained id to the settle delay.
func (o *DelayedGetOp) OnAlarm(id alarm.ID) bool {
	return o.delay.OnAlarm(id)
}

// Done reports whether the op finished, successfully or not.
func (o *DelayedGetOp) Done() bool { return o.state == opDone || o.state == opFailed }

// Err returns the terminal fault, if any.
func (o *DelayedGetOp) Err() error { return o.err }

func (o *DelayedGetOp) fail(err error) {
	o.state = opFailed
	o.err = err
	o.dst = nil
}
