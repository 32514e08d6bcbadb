// Package alarm multiplexes one hardware comparator onto any number of
// logical delays. A Queue owns the comparator: after every Add, Remove and
// Update the comparator target equals the minimum wake tick over Waiting
// slots, and the comparator interrupt is enabled exactly when such a slot
// exists. Slots whose wake tick has passed become Pending and are handed to
// their owners by id through DrainPending.
//
// The queue is a plain fixed-size array scanned linearly; with the slot
// counts involved (single digits) anything cleverer costs more than it
// saves.
package alarm

import (
	"errors"

	"airnode-go/irq"
)

// ID identifies one outstanding logical delay. Ids are allocated by a
// monotonically increasing counter and are never reused until the counter
// wraps, which with a 32-bit space is an accepted limitation.
type ID uint32

var (
	// ErrQueueFull is returned by Add when every slot is occupied. The queue
	// is sized generously at startup, so callers treat this as a fatal
	// configuration error.
	ErrQueueFull = errors.New("alarm: queue full")
	// ErrIDNotFound is returned by Remove for an unknown id. It indicates a
	// driver logic bug (double remove, or removing an already-fired alarm).
	ErrIDNotFound = errors.New("alarm: id not found")
)

// Comparator is the single hardware countdown/compare unit the queue owns.
// Now is the monotonic tick counter the whole system keeps time by.
type Comparator interface {
	Now() uint64
	SetTarget(tick uint64)
	EnableInterrupt(on bool)
	ClearInterrupt()
}

// TargetBit is the mailbox bit the comparator's interrupt handler posts.
const TargetBit irq.Status = 1 << 0

// Guard is the bias applied when reprogramming the comparator from Update:
// a target at or behind "now" is unreliable on the hardware this models, so
// the target is pushed at least this many ticks into the future.
const Guard = 250

type slotState uint8

const (
	slotEmpty slotState = iota
	slotWaiting
	slotPending
)

type slot struct {
	id     ID
	wakeAt uint64
	state  slotState
}

// Queue maps logical delays onto one Comparator. Not safe for concurrent
// use; it belongs to the poll loop, and the interrupt side only ever
// touches the mailbox.
type Queue struct {
	cmp        Comparator
	mbx        *irq.Mailbox
	slots      []slot
	nextID     ID
	nextWake   uint64
	hasNext    bool
	anyPending bool
}

// New creates a Queue with the given slot capacity, owning cmp. mbx is the
// mailbox fed by the comparator's interrupt handler.
func New(cmp Comparator, mbx *irq.Mailbox, capacity int) *Queue {
	if capacity <= 0 {
		panic("alarm: capacity must be positive")
	}
	return &Queue{cmp: cmp, mbx: mbx, slots: make([]slot, capacity)}
}

// Now returns the current tick, for callers computing wake targets.
func (q *Queue) Now() uint64 { return q.cmp.Now() }

// Cap returns the slot capacity, which bounds how many ids DrainPending can
// yield in one call.
func (q *Queue) Cap() int { return len(q.slots) }

// Add arms a new alarm at wakeAt and returns its id. A wakeAt at or before
// now is fine; the comparator fires immediately. The comparator is only
// reprogrammed when the new alarm becomes the earliest.
func (q *Queue) Add(wakeAt uint64) (ID, error) {
	free := -1
	for i := range q.slots {
		if q.slots[i].state == slotEmpty {
			free = i
			break
		}
	}
	if free < 0 {
		return 0, ErrQueueFull
	}
	id := q.nextID
	q.nextID++
	q.slots[free] = slot{id: id, wakeAt: wakeAt, state: slotWaiting}

	setTarget := false
	if !q.hasNext {
		// First waiting slot: a stale comparator event may still be latched.
		q.cmp.ClearInterrupt()
		q.cmp.EnableInterrupt(true)
		setTarget = true
	} else if wakeAt < q.nextWake {
		setTarget = true
	}
	if setTarget {
		q.cmp.SetTarget(wakeAt)
		q.nextWake = wakeAt
		q.hasNext = true
	}
	return id, nil
}

// Remove disarms the alarm with the given id and reprograms the comparator
// to the remaining minimum, disabling the interrupt when no Waiting slot is
// left.
func (q *Queue) Remove(id ID) error {
	found := false
	var minWake uint64
	hasMin := false
	anyPending := false

	for i := range q.slots {
		s := &q.slots[i]
		switch {
		case s.state == slotEmpty:
		case s.id == id:
			found = true
			s.state = slotEmpty
		case s.state == slotWaiting:
			if !hasMin || s.wakeAt < minWake {
				minWake = s.wakeAt
				hasMin = true
			}
		case s.state == slotPending:
			anyPending = true
		}
	}
	if !found {
		return ErrIDNotFound
	}

	if !hasMin {
		if q.hasNext {
			q.cmp.EnableInterrupt(false)
			q.hasNext = false
		}
	} else if minWake != q.nextWake {
		q.cmp.SetTarget(minWake)
		q.nextWake = minWake
	}
	// The removed slot may have been the only Pending one.
	q.anyPending = anyPending
	return nil
}

// Update drains the comparator mailbox; with nothing drained it reports no
// work. Otherwise every due Waiting slot becomes Pending, and the
// comparator is retargeted to the remaining minimum, biased by Guard past
// now, or disabled when nothing is left Waiting.
func (q *Queue) Update() bool {
	if q.mbx.GetAndClear(TargetBit) == 0 {
		return false
	}

	now := q.cmp.Now()
	var minWake uint64
	hasMin := false

	for i := range q.slots {
		s := &q.slots[i]
		if s.state != slotWaiting {
			continue
		}
		if s.wakeAt <= now {
			s.state = slotPending
			q.anyPending = true
		} else if !hasMin || s.wakeAt < minWake {
			minWake = s.wakeAt
			hasMin = true
		}
	}

	q.hasNext = hasMin
	if hasMin {
		target := q.cmp.Now() + Guard
		if minWake > target {
			target = minWake
		}
		q.cmp.SetTarget(target)
		q.nextWake = minWake
	} else {
		q.cmp.EnableInterrupt(false)
	}
	return true
}

// DrainPending frees every Pending slot and appends its id to dst (reusing
// dst's backing array from index 0). Callers keep a scratch slice with
// capacity Cap() so the drain never allocates. Unlike a lazy iterator there
// is no partial-consumption hazard: after DrainPending returns, the queue
// holds no Pending slots.
func (q *Queue) DrainPending(dst []ID) []ID {
	dst = dst[:0]
	if !q.anyPending {
		return dst
	}
	for i := range q.slots {
		s := &q.slots[i]
		if s.state == slotPending {
			dst = append(dst, s.id)
			s.state = slotEmpty
		}
	}
	q.anyPending = false
	return dst
}
