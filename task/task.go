// Package task defines the cooperative driver contract and the poll loop
// that runs every driver on the single main thread.
//
// A driver is a state machine advanced one non-blocking step per loop
// iteration. "Waiting" is a state that reports no progress, never a blocked
// call; the only suspension point in the system is the advisory idle hook.
package task

import (
	"io"

	"airnode-go/alarm"
	"airnode-go/irq"
	"airnode-go/x/fmtx"
)

// Task is one cooperative driver state machine.
//
// Start arms the driver's first wait. Update advances at most one protocol
// step and reports whether it produced an observable effect. OnAlarm offers
// a drained alarm id to the driver's delays and reports whether it was
// claimed; ids are globally unique, so at most one task in the system
// claims any given id.
type Task interface {
	Start(q *alarm.Queue)
	Update() bool
	OnAlarm(id alarm.ID) bool
}

// Config carries the loop's collaborators beyond queue and tasks.
type Config struct {
	// Diag receives diagnostics for protocol anomalies (best-effort sink).
	Diag io.Writer
	// Mailboxes are every interrupt mailbox in the system; the idle decision
	// reads them all inside one critical section.
	Mailboxes []*irq.Mailbox
	// Idle, when set, is invoked after an iteration that did no work and
	// found no pending interrupt. Advisory: a hardware port would execute a
	// wait-for-interrupt here, a host port can yield.
	Idle func()
	// OnWake, when set, is invoked on the first busy iteration after one or
	// more idle ones (typically wired to the debug printer's counter).
	OnWake func()
}

// Loop polls every task once per iteration in a fixed order. Task order is
// declaration order and doubles as alarm dispatch priority; no task may
// assume another has already run within the same iteration.
type Loop struct {
	q        *alarm.Queue
	cs       irq.Masker
	tasks    []Task
	cfg      Config
	scratch  []alarm.ID
	sleeping bool
	wakeups  uint32
}

// NewLoop assembles a loop. The task slice is used as-is; it must not be
// mutated afterwards.
func NewLoop(q *alarm.Queue, cs irq.Masker, cfg Config, tasks ...Task) *Loop {
	return &Loop{
		q:       q,
		cs:      cs,
		tasks:   tasks,
		cfg:     cfg,
		scratch: make([]alarm.ID, 0, q.Cap()),
	}
}

// Start arms every task's first wait, in task order.
func (l *Loop) Start() {
	for _, t := range l.tasks {
		t.Start(l.q)
	}
}

// Step runs one scheduler iteration and reports whether anything did work.
func (l *Loop) Step() bool {
	did := l.q.Update()

	for _, id := range l.q.DrainPending(l.scratch) {
		claimed := false
		for _, t := range l.tasks {
			if t.OnAlarm(id) {
				claimed = true
				break
			}
		}
		if !claimed {
			// An alarm outlived its owner; driver logic bug.
			fmtx.Fprintf(l.cfg.Diag, "alarm %d unclaimed\n", uint32(id))
		}
	}

	for _, t := range l.tasks {
		if t.Update() {
			did = true
		}
	}

	// The idle decision must observe all mailboxes and commit in one masked
	// section: a handler firing between the read and the decision would
	// otherwise stay invisible until the next spin.
	idle := false
	l.cs.Run(func() {
		quiet := true
		for _, m := range l.cfg.Mailboxes {
			if m.Get() != 0 {
				quiet = false
				break
			}
		}
		if quiet && !did {
			l.sleeping = true
			idle = true
		} else {
			if l.sleeping {
				l.wakeups++
				if l.cfg.OnWake != nil {
					l.cfg.OnWake()
				}
			}
			l.sleeping = false
		}
	})
	if idle && l.cfg.Idle != nil {
		l.cfg.Idle()
	}
	return did
}

// Wakeups returns how many times the loop left the idle state.
func (l *Loop) Wakeups() uint32 { return l.wakeups }

// Run steps forever until stop is closed. Firmware mains pass a nil channel
// and never return.
func (l *Loop) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}
		l.Step()
	}
}
