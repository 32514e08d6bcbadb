// Package console buffers diagnostic output into a byte ring drained to a
// serial/USB TX port from the poll loop. Writes never block and are dropped
// silently once the ring is full: the console is a best-effort sink, not a
// reliable channel.
//
// The console also watches for a stuck host link. When data is queued it
// arms a one-shot alarm; if the TX-drained interrupt does not arrive before
// it fires, TimedOut reports true (the status LED mirrors this) until the
// port drains again.
package console

import (
	"airnode-go/alarm"
	"airnode-go/irq"
	"airnode-go/ringbuf"
)

// DrainedBit is posted to the console's mailbox by the TX interrupt handler
// when the port's FIFO has room again.
const DrainedBit irq.Status = 1 << 3

// TxPort is the byte-out side of the serial device.
type TxPort interface {
	// Ready reports whether the FIFO accepts one more byte.
	Ready() bool
	WriteByte(b byte)
	// Flush pushes a partially filled FIFO to the wire.
	Flush()
	// EnableTxInterrupt gates the FIFO-drained interrupt.
	EnableTxInterrupt(on bool)
}

type timeoutState uint8

const (
	tNone    timeoutState = iota
	tPending              // data queued, alarm not yet armed
	tArmed
	tTimedOut
)

// Config for a Console. Zero values get defaults.
type Config struct {
	// BufSize is the ring capacity in bytes. Default 4096.
	BufSize int
	// TimeoutTicks is how long queued data may sit undrained before the
	// link counts as stuck. Default 1000 (1 ms at a microsecond tick).
	TimeoutTicks uint64
}

// Console implements io.Writer and the task contract.
type Console struct {
	port TxPort
	mbx  *irq.Mailbox
	q    *alarm.Queue
	buf  *ringbuf.Ring[byte]

	timeout uint64
	tstate  timeoutState
	tstart  uint64
	talarm  alarm.ID
}

// New creates a Console draining into port on mbx's DrainedBit.
func New(port TxPort, mbx *irq.Mailbox, cfg Config) *Console {
	if cfg.BufSize <= 0 {
		cfg.BufSize = 4096
	}
	if cfg.TimeoutTicks == 0 {
		cfg.TimeoutTicks = 1000
	}
	return &Console{
		port:    port,
		mbx:     mbx,
		buf:     ringbuf.New[byte](cfg.BufSize),
		timeout: cfg.TimeoutTicks,
	}
}

// Write queues p for transmission. Bytes that do not fit are dropped; the
// returned count is always len(p) so formatted writers upstream never see
// an error from a full ring.
func (c *Console) Write(p []byte) (int, error) {
	emptyBefore := c.buf.Len() == 0
	n, _ := c.buf.ExtendSlice(p)
	if n > 0 && emptyBefore {
		if c.tstate == tNone && c.q != nil {
			c.tstate = tPending
			c.tstart = c.q.Now()
		}
		c.port.EnableTxInterrupt(true)
	}
	return len(p), nil
}

// TimedOut reports whether queued output has sat undrained past the
// configured window. It clears once the port drains again.
func (c *Console) TimedOut() bool { return c.tstate == tTimedOut }

// Buffered returns the number of bytes waiting for the port.
func (c *Console) Buffered() int { return c.buf.Len() }

// Start binds the alarm queue used for the stuck-link watchdog.
func (c *Console) Start(q *alarm.Queue) { c.q = q }

// Update drains the ring into the port when the drained interrupt has
// fired, and manages the watchdog alarm.
func (c *Console) Update() bool {
	if c.mbx.GetAndClear(DrainedBit) == 0 {
		if c.tstate == tPending && c.q != nil {
			id, err := c.q.Add(c.tstart + c.timeout)
			if err != nil {
				// Queue exhausted; give up on the watchdog for this burst.
				c.tstate = tNone
				return false
			}
			c.tstate = tArmed
			c.talarm = id
			return true
		}
		return false
	}

	for c.port.Ready() {
		b, ok := c.buf.PopFront()
		if !ok {
			c.port.Flush()
			break
		}
		c.port.WriteByte(b)
	}

	if c.tstate == tArmed {
		// Ignoring ErrIDNotFound here would hide a bookkeeping bug, but the
		// id cannot have fired: we hold the only reference and drain before
		// task updates. Drop to the stuck state if it somehow has.
		if err := c.q.Remove(c.talarm); err != nil {
			c.tstate = tTimedOut
			return true
		}
	}

	if c.buf.Len() == 0 {
		c.port.EnableTxInterrupt(false)
		c.tstate = tNone
	} else {
		// Port FIFO filled before the ring emptied; poll again immediately.
		id, err := c.q.Add(c.q.Now())
		if err != nil {
			c.tstate = tNone
			return true
		}
		c.tstate = tArmed
		c.talarm = id
	}
	return true
}

// OnAlarm claims the watchdog alarm and marks the link stuck.
func (c *Console) OnAlarm(id alarm.ID) bool {
	if c.tstate == tArmed && c.talarm == id {
		c.tstate = tTimedOut
		return true
	}
	return false
}
