// Package platform binds the hardware-facing interfaces to a concrete
// board. The rp2040 build drives real peripherals; every other build gets
// a deterministic simulation with the same shape, so the whole firmware
// runs under go test and on a developer laptop.
package platform

import "airnode-go/irq"

// Mailbox bit assignments for peripherals that do not define their own
// (the timer, console and I2C blocks publish theirs).
const (
	// SensorReadyBit is posted by the SCD30 RDY line's GPIO interrupt.
	SensorReadyBit irq.Status = 1 << 6
	// IRFrameBit is posted when a gap closes an infrared pulse train.
	IRFrameBit irq.Status = 1 << 1
	// IROverrunBit is posted when a train outgrew the capture buffer.
	IROverrunBit irq.Status = 1 << 2
)

// Interrupt priorities, lower is more urgent on Cortex-M. The timer wake
// path outranks everything; the console drain may lag the most.
const (
	PrioTimer   irq.Priority = 1
	PrioConsole irq.Priority = 2
	PrioI2C     irq.Priority = 3
	PrioGPIO    irq.Priority = 3
	PrioIR      irq.Priority = 3
)

// TicksPerSecond is the monotonic tick rate on every port (the rp2040
// timer runs at 1 MHz; the simulation copies it).
const TicksPerSecond = 1_000_000
