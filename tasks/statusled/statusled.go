// Package statusled runs the board LED: a short blink chain at boot so a
// flashed unit shows signs of life before any host connects, then a
// steady mirror of the console's stuck-link state.
package statusled

import "airnode-go/alarm"

// Pin is the LED output.
type Pin interface {
	Set(on bool)
}

// Stuck reports whether diagnostic output is backed up (console.TimedOut).
type Stuck interface {
	TimedOut() bool
}

// Config for the boot blink chain. Zero values get defaults.
type Config struct {
	// Blinks is the number of on periods at boot. Default 3.
	Blinks int
	// BlinkTicks is the length of each on and off period. Default 100000
	// (100 ms at a microsecond tick).
	BlinkTicks uint64
}

type state uint8

const (
	sBlinking state = iota
	sMonitor
)

// Task drives the LED.
type Task struct {
	pin   Pin
	stuck Stuck
	cfg   Config
	q     *alarm.Queue

	state  state
	lit    bool
	toggle int // blink chain toggles remaining
	delay  alarm.Delay
}

// New builds the LED task. stuck may be nil; the LED then stays off after
// the blink chain.
func New(pin Pin, stuck Stuck, cfg Config) *Task {
	if cfg.Blinks <= 0 {
		cfg.Blinks = 3
	}
	if cfg.BlinkTicks == 0 {
		cfg.BlinkTicks = 100_000
	}
	return &Task{pin: pin, stuck: stuck, cfg: cfg}
}

// Start lights the LED and arms the first blink edge.
func (t *Task) Start(q *alarm.Queue) {
	t.q = q
	t.state = sBlinking
	t.lit = true
	t.pin.Set(true)
	t.toggle = t.cfg.Blinks*2 - 1
	t.delay, _ = alarm.After(q, t.cfg.BlinkTicks)
}

// Update advances the blink chain or mirrors the stuck state.
func (t *Task) Update() bool {
	switch t.state {
	case sBlinking:
		if !t.delay.Done() {
			return false
		}
		t.lit = !t.lit
		t.pin.Set(t.lit)
		t.toggle--
		if t.toggle <= 0 {
			t.state = sMonitor
			return true
		}
		t.delay, _ = alarm.After(t.q, t.cfg.BlinkTicks)
		return true

	case sMonitor:
		want := t.stuck != nil && t.stuck.TimedOut()
		if want != t.lit {
			t.lit = want
			t.pin.Set(want)
			return true
		}
	}
	return false
}

// OnAlarm forwards drained ids to the blink delay.
func (t *Task) OnAlarm(id alarm.ID) bool {
	return t.delay.OnAlarm(id)
}
