// Package i2c defines the split-phase controller interface the sensor
// drivers program against. A transfer is started from the poll loop, runs
// in hardware (or a simulator), and posts a completion status to an
// interrupt mailbox; the driver collects the outcome on a later iteration.
package i2c

import (
	"errors"

	"airnode-go/irq"
)

// Status bits posted by the controller's interrupt handler. The layout
// mirrors the RP2040 I2C block's raw interrupt register.
const (
	IntArbitrationLost irq.Status = 1 << 5
	IntComplete        irq.Status = 1 << 7
	IntTimeout         irq.Status = 1 << 8
	IntNack            irq.Status = 1 << 10
	IntSCLStretch      irq.Status = 1 << 13
	IntSCLMainStretch  irq.Status = 1 << 14
)

// ErrorBits is the union of every fault condition a transfer can post.
const ErrorBits = IntArbitrationLost | IntTimeout | IntNack | IntSCLStretch | IntSCLMainStretch

// DoneBits is everything that ends a transfer, success or fault.
const DoneBits = IntComplete | ErrorBits

var (
	ErrNack            = errors.New("i2c: address or data not acknowledged")
	ErrArbitrationLost = errors.New("i2c: arbitration lost")
	ErrTimeout         = errors.New("i2c: bus timeout")
	ErrSCLStretch      = errors.New("i2c: clock stretched too long")
	ErrBusy            = errors.New("i2c: transfer already in flight")
)

// TransmissionError maps a posted status to a sentinel error, or nil when
// no fault bit is set. Fault precedence is fixed so a multi-bit status
// reports deterministically.
func TransmissionError(s irq.Status) error {
	switch {
	case s&IntNack != 0:
		return ErrNack
	case s&IntArbitrationLost != 0:
		return ErrArbitrationLost
	case s&IntTimeout != 0:
		return ErrTimeout
	case s&(IntSCLStretch|IntSCLMainStretch) != 0:
		return ErrSCLStretch
	default:
		return nil
	}
}

// Engine is a non-blocking I2C controller. Start calls return immediately;
// completion arrives as status bits in the engine's mailbox, after which
// Response collects read data.
//
// At most one transfer may be in flight. Starting a second returns ErrBusy.
type Engine interface {
	// StartWrite begins writing data to the 7-bit address addr.
	StartWrite(addr uint8, data []byte) error
	// StartRead begins reading len(dst) bytes from addr; the engine retains
	// dst until Response.
	StartRead(addr uint8, dst []byte) error
	// Response finishes the completed transfer and reports its outcome.
	// Must be called exactly once after a done bit was observed.
	Response() error
}
