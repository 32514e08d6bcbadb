package alarm

// Delay is the one-shot wait helper every driver builds its timed states
// from: arm an alarm, hold the id, flip to done when the id comes back from
// the drain. The zero Delay claims nothing.
type Delay struct {
	id    ID
	armed bool
	done  bool
}

// NewDelay wraps an id obtained from Queue.Add.
func NewDelay(id ID) Delay {
	return Delay{id: id, armed: true}
}

// After arms an alarm delta ticks from now and returns the Delay for it.
func After(q *Queue, delta uint64) (Delay, error) {
	id, err := q.Add(q.Now() + delta)
	if err != nil {
		return Delay{}, err
	}
	return NewDelay(id), nil
}

// OnAlarm claims id if it matches the armed, not yet done delay, and
// reports whether it did. Once done the delay is terminal: every further
// call returns false, whatever the id.
func (d *Delay) OnAlarm(id ID) bool {
	if d.armed && !d.done && d.id == id {
		d.done = true
		return true
	}
	return false
}

// Done reports whether the delay has fired.
func (d *Delay) Done() bool { return d.done }
