package console

import (
	"bytes"
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

// fakePort accepts a bounded number of bytes per drain, like a FIFO.
type fakePort struct {
	budget  int
	wrote   bytes.Buffer
	flushes int
	txIRQ   bool
}

func (p *fakePort) Ready() bool               { return p.budget > 0 }
func (p *fakePort) WriteByte(b byte)          { p.wrote.WriteByte(b); p.budget-- }
func (p *fakePort) Flush()                    { p.flushes++ }
func (p *fakePort) EnableTxInterrupt(on bool) { p.txIRQ = on }

func newConsoleUnderTest(bufSize int) (*Console, *fakePort, *fakeCmp, *irq.Mailbox) {
	port := &fakePort{}
	mbx := &irq.Mailbox{}
	cmp := &fakeCmp{}
	q := alarm.New(cmp, mbx, 4)
	c := New(port, mbx, Config{BufSize: bufSize, TimeoutTicks: 100})
	c.Start(q)
	return c, port, cmp, mbx
}

func TestConsole_WriteBuffersAndEnablesIRQ(t *testing.T) {
	c, port, _, _ := newConsoleUnderTest(8)

	n, err := c.Write([]byte("hi"))
	if n != 2 || err != nil {
		t.Fatalf("write = %d,%v", n, err)
	}
	if !port.txIRQ {
		t.Fatal("tx interrupt not enabled on first queued byte")
	}
	if c.Buffered() != 2 {
		t.Fatalf("buffered = %d, want 2", c.Buffered())
	}
}

func TestConsole_OverflowDropsSilently(t *testing.T) {
	c, _, _, _ := newConsoleUnderTest(4)

	n, err := c.Write([]byte("abcdefgh"))
	if n != 8 || err != nil {
		t.Fatalf("write = %d,%v, want 8,nil", n, err)
	}
	if c.Buffered() != 4 {
		t.Fatalf("buffered = %d, want 4", c.Buffered())
	}
}

func TestConsole_DrainToPort(t *testing.T) {
	c, port, cmp, mbx := newConsoleUnderTest(8)

	c.Write([]byte("abc"))
	c.Update() // no drained bit yet: arms the watchdog
	if !cmp.enabled {
		t.Fatal("watchdog alarm not armed")
	}

	port.budget = 8
	mbx.Post(DrainedBit)
	if !c.Update() {
		t.Fatal("update reported no work on drain")
	}
	if port.wrote.String() != "abc" {
		t.Fatalf("wrote %q, want %q", port.wrote.String(), "abc")
	}
	if port.txIRQ {
		t.Fatal("tx interrupt still enabled after full drain")
	}
	if cmp.enabled {
		t.Fatal("watchdog alarm not removed after drain")
	}
	if c.Buffered() != 0 {
		t.Fatalf("buffered = %d, want 0", c.Buffered())
	}
}

func TestConsole_PartialDrainFlushesAndRepolls(t *testing.T) {
	c, port, cmp, mbx := newConsoleUnderTest(8)

	c.Write([]byte("abcdef"))
	c.Update()

	cmp.now = 500
	port.budget = 2
	mbx.Post(DrainedBit)
	c.Update()
	if port.wrote.String() != "ab" {
		t.Fatalf("wrote %q, want %q", port.wrote.String(), "ab")
	}
	// The watchdog is re-armed at now so the leftover is retried promptly.
	if !cmp.enabled || cmp.target > 500+alarm.Guard {
		t.Fatalf("repoll alarm: enabled=%v target=%d", cmp.enabled, cmp.target)
	}
	if c.Buffered() != 4 {
		t.Fatalf("buffered = %d, want 4", c.Buffered())
	}
}

func TestConsole_FlushOnEmptyRing(t *testing.T) {
	c, port, _, mbx := newConsoleUnderTest(8)

	c.Write([]byte("x"))
	port.budget = 4
	mbx.Post(DrainedBit)
	c.Update()
	if port.flushes != 1 {
		t.Fatalf("flushes = %d, want 1", port.flushes)
	}
}

func TestConsole_TimeoutAndRecovery(t *testing.T) {
	c, port, _, mbx := newConsoleUnderTest(8)

	c.Write([]byte("stuck"))
	c.Update() // arms the watchdog
	if c.TimedOut() {
		t.Fatal("timed out before the alarm fired")
	}

	if !c.OnAlarm(c.talarm) {
		t.Fatal("watchdog alarm not claimed")
	}
	if !c.TimedOut() {
		t.Fatal("not timed out after the watchdog fired")
	}

	// The host comes back: draining clears the stuck state.
	port.budget = 8
	mbx.Post(DrainedBit)
	c.Update()
	if c.TimedOut() {
		t.Fatal("still timed out after a full drain")
	}
}

func TestConsole_ForeignAlarmNotClaimed(t *testing.T) {
	c, _, _, _ := newConsoleUnderTest(8)
	c.Write([]byte("x"))
	c.Update()
	if c.OnAlarm(c.talarm + 1) {
		t.Fatal("claimed a foreign alarm id")
	}
}
