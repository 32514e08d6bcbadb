// Package debugprint emits a periodic heartbeat line on the diagnostic
// console: uptime in ticks plus how often the loop left idle since the
// previous line. A missing heartbeat on a wedged unit narrows the fault
// faster than any other single signal.
package debugprint

import (
	"io"

	"airnode-go/alarm"
	"airnode-go/x/fmtx"
)

// Config for the printer. Zero values get defaults.
type Config struct {
	// PeriodTicks between lines. Default 1000000 (1 s at a microsecond tick).
	PeriodTicks uint64
}

// Task prints the heartbeat.
type Task struct {
	diag io.Writer
	cfg  Config
	q    *alarm.Queue

	delay   alarm.Delay
	wakeups uint32
	lines   uint32
}

// New builds the printer writing to diag.
func New(diag io.Writer, cfg Config) *Task {
	if cfg.PeriodTicks == 0 {
		cfg.PeriodTicks = 1_000_000
	}
	return &Task{diag: diag, cfg: cfg}
}

// Wakeup counts one loop wakeup; wire it to the loop's OnWake hook.
func (t *Task) Wakeup() { t.wakeups++ }

// Lines returns how many heartbeat lines have been printed.
func (t *Task) Lines() uint32 { return t.lines }

// Start arms the first period.
func (t *Task) Start(q *alarm.Queue) {
	t.q = q
	t.delay, _ = alarm.After(q, t.cfg.PeriodTicks)
}

// Update prints a line when the period elapses and re-arms.
func (t *Task) Update() bool {
	if !t.delay.Done() {
		return false
	}
	t.lines++
	fmtx.Fprintf(t.diag, "up %d ticks, %d wakeups\n", t.q.Now(), t.wakeups)
	t.wakeups = 0
	t.delay, _ = alarm.After(t.q, t.cfg.PeriodTicks)
	return true
}

// OnAlarm forwards drained ids to the period delay.
func (t *Task) OnAlarm(id alarm.ID) bool {
	return t.delay.OnAlarm(id)
}
