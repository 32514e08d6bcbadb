// Package history retains recent decoded measurements in a bounded ring,
// newest overwriting oldest. It is the hand-off point between the sensor
// sequencer (which must never block on decoding or publication) and
// whatever wants readings: the diagnostic log, a publish hook, a host
// query.
package history

import (
	"io"

	"airnode-go/alarm"
	"airnode-go/drivers/scd30"
	"airnode-go/ringbuf"
	"airnode-go/x/fmtx"
)

// Entry is one retained reading with its arrival tick.
type Entry struct {
	At uint64
	scd30.Measurement
}

// Config for the history. Zero values get defaults.
type Config struct {
	// Depth is how many readings are retained. Default 32.
	Depth int
	// Publish, when set, receives every decoded entry.
	Publish func(Entry)
}

// Task decodes and retains readings.
type Task struct {
	diag io.Writer
	cfg  Config
	q    *alarm.Queue

	ring        *ringbuf.Overwrite[Entry]
	pending     scd30.RawMeasurement
	havePending bool
	drops       uint32
}

// New builds the history writing decode diagnostics to diag.
func New(diag io.Writer, cfg Config) *Task {
	if cfg.Depth <= 0 {
		cfg.Depth = 32
	}
	return &Task{
		diag: diag,
		cfg:  cfg,
		ring: ringbuf.NewOverwrite[Entry](cfg.Depth),
	}
}

// Offer stages one raw measurement for the next Update. A second Offer
// before the first is consumed replaces it; the newest reading wins.
func (t *Task) Offer(raw scd30.RawMeasurement) {
	t.pending = raw
	t.havePending = true
}

// Len returns how many readings are retained.
func (t *Task) Len() int { return t.ring.Len() }

// Latest returns the newest reading, if any.
func (t *Task) Latest() (Entry, bool) { return t.ring.Back() }

// Drops returns how many readings failed to decode.
func (t *Task) Drops() uint32 { return t.drops }

// Start binds the tick source used to stamp entries.
func (t *Task) Start(q *alarm.Queue) { t.q = q }

// Update decodes at most one staged measurement.
func (t *Task) Update() bool {
	if !t.havePending {
		return false
	}
	t.havePending = false

	m, err := t.pending.Decode()
	if err != nil {
		t.drops++
		fmtx.Fprintf(t.diag, "history: dropping reading: %s\n", err.Error())
		return true
	}

	e := Entry{At: t.q.Now(), Measurement: m}
	t.ring.Push(e)
	fmtx.Fprintf(t.diag, "co2 %d ppm, temp %d mC, rh %d m%%\n",
		m.CO2Milli/1000, m.TempMilli, m.RHMilli)
	if t.cfg.Publish != nil {
		t.cfg.Publish(e)
	}
	return true
}

// OnAlarm claims nothing; the history owns no alarms.
func (t *Task) OnAlarm(id alarm.ID) bool { return false }
