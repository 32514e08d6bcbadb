package errcode

import (
	"errors"

	"airnode-go/alarm"
	"airnode-go/drivers/nec"
	"airnode-go/drivers/scd30"
	"airnode-go/i2c"
	"airnode-go/ringbuf"
)

// Code is a stable, bus-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK   Code = "ok"
	Busy Code = "busy"

	QueueFull  Code = "queue_full"
	IDNotFound Code = "id_not_found"
	Overflow   Code = "overflow"

	I2CNack    Code = "i2c_nack"
	I2CArbLost Code = "i2c_arb_lost"
	I2CTimeout Code = "i2c_timeout"
	I2CStretch Code = "i2c_stretch"

	CRCMismatch    Code = "crc_mismatch"
	ReadingRange   Code = "reading_range"
	SensorFault    Code = "sensor_fault"
	IRFrameInvalid Code = "ir_frame_invalid"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}

// Map classifies the firmware's sentinel errors into a Code, for fault
// publication on the bus.
func Map(err error) Code {
	switch {
	case err == nil:
		return OK
	case errors.Is(err, alarm.ErrQueueFull):
		return QueueFull
	case errors.Is(err, alarm.ErrIDNotFound):
		return IDNotFound
	case errors.Is(err, ringbuf.ErrOverflow):
		return Overflow
	case errors.Is(err, i2c.ErrBusy):
		return Busy
	case errors.Is(err, i2c.ErrNack):
		return I2CNack
	case errors.Is(err, i2c.ErrArbitrationLost):
		return I2CArbLost
	case errors.Is(err, i2c.ErrTimeout):
		return I2CTimeout
	case errors.Is(err, i2c.ErrSCLStretch):
		return I2CStretch
	case errors.Is(err, scd30.ErrBadCRC):
		return CRCMismatch
	case errors.Is(err, scd30.ErrNegative),
		errors.Is(err, scd30.ErrTooSmall),
		errors.Is(err, scd30.ErrTooBig):
		return ReadingRange
	case errors.Is(err, scd30.ErrNotReady):
		return SensorFault
	case isIRError(err):
		return IRFrameInvalid
	}
	return Error
}

func isIRError(err error) bool {
	switch {
	case errors.Is(err, nec.ErrTooShort),
		errors.Is(err, nec.ErrPreambleMark),
		errors.Is(err, nec.ErrPreambleSpace),
		errors.Is(err, nec.ErrRepeatFrame),
		errors.Is(err, nec.ErrTrailerMark),
		errors.Is(err, nec.ErrAddressCheck),
		errors.Is(err, nec.ErrCommandCheck):
		return true
	}
	var fl nec.FrameLengthError
	var dm nec.DataMarkError
	var ds nec.DataSpaceError
	return errors.As(err, &fl) || errors.As(err, &dm) || errors.As(err, &ds)
}
