package debugprint

import (
	"bytes"
	"strings"
	"testing"

	"airnode-go/alarm"
	"airnode-go/irq"
)

type fakeCmp struct {
	now     uint64
	target  uint64
	enabled bool
}

func (c *fakeCmp) Now() uint64             { return c.now }
func (c *fakeCmp) SetTarget(tick uint64)   { c.target = tick }
func (c *fakeCmp) EnableInterrupt(on bool) { c.enabled = on }
func (c *fakeCmp) ClearInterrupt()         {}

func fire(t *testing.T, q *alarm.Queue, cmp *fakeCmp, mbx *irq.Mailbox, task *Task) {
	t.Helper()
	cmp.now = cmp.target
	mbx.Post(alarm.TargetBit)
	q.Update()
	for _, id := range q.DrainPending(make([]alarm.ID, 0, q.Cap())) {
		if !task.OnAlarm(id) {
			t.Fatalf("alarm %d unclaimed", id)
		}
	}
}

func TestHeartbeat(t *testing.T) {
	cmp := &fakeCmp{}
	mbx := &irq.Mailbox{}
	q := alarm.New(cmp, mbx, 4)
	diag := &bytes.Buffer{}
	task := New(diag, Config{PeriodTicks: 1000})

	task.Start(q)
	if task.Update() {
		t.Fatal("printed before the period elapsed")
	}

	task.Wakeup()
	task.Wakeup()
	fire(t, q, cmp, mbx, task)
	if !task.Update() {
		t.Fatal("no line after the period elapsed")
	}
	line := diag.String()
	if !strings.Contains(line, "1000 ticks") || !strings.Contains(line, "2 wakeups") {
		t.Fatalf("line = %q", line)
	}
	if task.Lines() != 1 {
		t.Fatalf("lines = %d, want 1", task.Lines())
	}

	// The wakeup counter resets per line and the period re-arms.
	diag.Reset()
	fire(t, q, cmp, mbx, task)
	task.Update()
	if !strings.Contains(diag.String(), "0 wakeups") {
		t.Fatalf("second line = %q", diag.String())
	}
	if task.Lines() != 2 {
		t.Fatalf("lines = %d, want 2", task.Lines())
	}
}
