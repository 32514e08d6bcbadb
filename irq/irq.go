// Package irq provides the interrupt-to-poll-loop plumbing: per-peripheral
// event mailboxes, the handler shape that feeds them, and the critical
// section primitive the poll loop uses when it must observe several
// mailboxes atomically.
//
// A Mailbox is a single 32-bit bitmask. The bound interrupt handler ORs
// observed hardware status bits into it and acknowledges them at the
// peripheral in the same invocation; from then on the mailbox is the only
// record of those events. The poll side drains bits with GetAndClear, which
// is a single atomic read-modify-write, so an event can neither be seen
// twice nor lost between a read and a clear.
package irq

import "sync/atomic"

// Status is a bitmask of peripheral interrupt events. The meaning of each
// bit is owned by the peripheral package that declares it.
type Status uint32

// Priority of an interrupt line, assigned once at startup.
type Priority uint8

// Mailbox accumulates interrupt events for one peripheral class.
// Post is safe from interrupt context; the remaining methods are for the
// poll loop. Bits accumulate (logical OR) across undrained events.
type Mailbox struct {
	bits atomic.Uint32
}

// Post ORs s into the mailbox. Interrupt-context safe.
func (m *Mailbox) Post(s Status) {
	m.bits.Or(uint32(s))
}

// Get returns the pending bits without clearing them.
func (m *Mailbox) Get() Status {
	return Status(m.bits.Load())
}

// Clear atomically clears the bits in mask.
func (m *Mailbox) Clear(mask Status) {
	m.bits.And(uint32(^mask))
}

// GetAndClear atomically clears mask and returns the bits that were both
// set and requested. Calling it twice with no intervening Post yields a
// non-empty result at most once.
func (m *Mailbox) GetAndClear(mask Status) Status {
	return Status(m.bits.And(uint32(^mask))) & mask
}

// StatusRegister is the hardware-facing view of one peripheral's interrupt
// status: a snapshot read plus the peripheral-specific acknowledge write.
type StatusRegister interface {
	// Status reads the raw pending bits.
	Status() uint32
	// ClearAll writes the peripheral's clear pattern so the line de-asserts.
	ClearAll()
}

// Handler builds the interrupt handler for reg: read the status register,
// OR every observed bit into the mailbox, then acknowledge at the hardware.
// The acknowledge happens unconditionally on every invocation, even when
// earlier bits are still undrained.
func (m *Mailbox) Handler(reg StatusRegister) func() {
	return func() {
		m.Post(Status(reg.Status()))
		reg.ClearAll()
	}
}

// Line is one hardware interrupt line. Enable binds handler at the given
// priority; binding twice or with an unsupported priority is a fatal
// configuration error surfaced at startup, so implementations return it
// rather than panicking.
type Line interface {
	Enable(prio Priority, handler func()) error
}

// Masker runs a closure with interrupts masked. It is the only shared-state
// discipline between interrupt context and the poll loop beyond the atomic
// mailboxes themselves; hardware ports mask the interrupt controller, hosts
// serialize against the simulated dispatcher.
type Masker interface {
	Run(fn func())
}
