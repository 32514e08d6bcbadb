//go:build !rp2040

package platform

import (
	"bytes"
	"io"
	"sync"

	"airnode-go/alarm"
	"airnode-go/console"
	"airnode-go/drivers/scd30"
	"airnode-go/irq"
)

// The host board is a deterministic simulation. Time only moves when the
// test or the host main advances the clock; "interrupts" are mailbox posts
// made inside the clock's critical section, which is exactly the ordering
// the hardware gives the poll loop.

// Clock simulates the monotonic timer and its single comparator.
type Clock struct {
	mu     sync.Mutex
	mbx    *irq.Mailbox
	now    uint64
	target uint64
	armed  bool
	fired  bool
}

// NewClock posts comparator hits to mbx.
func NewClock(mbx *irq.Mailbox) *Clock {
	return &Clock{mbx: mbx}
}

func (c *Clock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) SetTarget(tick uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = tick
	c.fired = false
}

func (c *Clock) EnableInterrupt(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.armed = on
}

func (c *Clock) ClearInterrupt() {}

// Advance moves time forward, firing the comparator at most once per
// programmed target.
func (c *Clock) Advance(delta uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += delta
	if c.armed && !c.fired && c.now >= c.target {
		c.fired = true
		c.mbx.Post(alarm.TargetBit)
	}
}

// SCD30Sim models the sensor on the simulated bus. Readings are staged
// with SetMeasurement, which also raises the RDY line.
type SCD30Sim struct {
	gpio     *irq.Mailbox
	readyBit irq.Status

	lastCmd  uint16
	interval uint16
	pressure uint16
	running  bool
	ready    bool
	failNext bool
	reply    [18]byte
}

// NewSCD30Sim raises readyBit on gpio whenever a fresh reading is staged.
func NewSCD30Sim(gpio *irq.Mailbox, readyBit irq.Status) *SCD30Sim {
	return &SCD30Sim{gpio: gpio, readyBit: readyBit}
}

// Interval returns the last configured measurement interval in seconds.
func (s *SCD30Sim) Interval() uint16 { return s.interval }

// Pressure returns the last configured compensation pressure in mbar.
func (s *SCD30Sim) Pressure() uint16 { return s.pressure }

// Running reports whether continuous measurement was started.
func (s *SCD30Sim) Running() bool { return s.running }

// SetMeasurement stages float bit patterns as the next reading and raises
// the RDY line.
func (s *SCD30Sim) SetMeasurement(co2, temp, rh uint32) {
	vals := [3]uint32{co2, temp, rh}
	for i, v := range vals {
		words := [2]uint16{uint16(v >> 16), uint16(v)}
		for j, w := range words {
			off := (i*2 + j) * 3
			s.reply[off] = byte(w >> 8)
			s.reply[off+1] = byte(w)
			s.reply[off+2] = scd30.WordCRC(s.reply[off], s.reply[off+1])
		}
	}
	s.ready = true
	s.gpio.Post(s.readyBit)
}

// Corrupt flips a checksum byte in the staged reading.
func (s *SCD30Sim) Corrupt() { s.reply[2] ^= 0xFF }

// FailNext makes the next transfer fail, as an unwired or unpowered
// sensor would.
func (s *SCD30Sim) FailNext() { s.failNext = true }

// Tx implements drivers.I2C for the simulated wiring.
func (s *SCD30Sim) Tx(addr uint16, w, r []byte) error {
	if s.failNext {
		s.failNext = false
		return errSimNack
	}
	if addr != scd30.Addr {
		return errSimNack
	}
	if len(w) >= 2 {
		cmd := uint16(w[0])<<8 | uint16(w[1])
		var arg uint16
		if len(w) == 5 {
			if scd30.WordCRC(w[2], w[3]) != w[4] {
				return errSimNack
			}
			arg = uint16(w[2])<<8 | uint16(w[3])
		}
		switch cmd {
		case 0x4600:
			s.interval = arg
		case 0x0010:
			s.pressure = arg
			s.running = true
		case 0x0104:
			s.running = false
		}
		s.lastCmd = cmd
	}
	if len(r) > 0 {
		switch s.lastCmd {
		case 0x0202:
			word := uint16(0)
			if s.ready {
				word = 1
			}
			r[0], r[1] = byte(word>>8), byte(word)
			r[2] = scd30.WordCRC(r[0], r[1])
		case 0x0300:
			copy(r, s.reply[:])
			s.ready = false
		default:
			return errSimNack
		}
	}
	return nil
}

type simError string

func (e simError) Error() string { return string(e) }

const errSimNack = simError("scd30 sim: nack")

// CaptureSim stages infrared pulse trains.
type CaptureSim struct {
	mbx   *irq.Mailbox
	train []uint32
}

// NewCaptureSim posts frame bits to mbx.
func NewCaptureSim(mbx *irq.Mailbox) *CaptureSim {
	return &CaptureSim{mbx: mbx}
}

// Inject stages a completed train and posts the frame-end bit.
func (c *CaptureSim) Inject(train []uint32) {
	c.train = append(c.train[:0], train...)
	c.mbx.Post(IRFrameBit)
}

// Overrun posts the overrun bit without staging anything.
func (c *CaptureSim) Overrun() { c.mbx.Post(IROverrunBit) }

// Frame hands over the staged train.
func (c *CaptureSim) Frame(dst []uint32) []uint32 {
	n := copy(dst, c.train)
	c.train = c.train[:0]
	return dst[:n]
}

// LEDSim records the LED state.
type LEDSim struct {
	lit bool
}

func (l *LEDSim) Set(on bool) { l.lit = on }

// Lit reports the current LED state.
func (l *LEDSim) Lit() bool { return l.lit }

// TxPortSim is an always-ready console port: enabling the TX interrupt
// posts the drained bit at once, and bytes land in an in-memory buffer.
type TxPortSim struct {
	mbx  *irq.Mailbox
	out  bytes.Buffer
	sink io.Writer
}

// NewTxPortSim posts drained bits to mbx.
func NewTxPortSim(mbx *irq.Mailbox) *TxPortSim {
	return &TxPortSim{mbx: mbx}
}

// Tee mirrors every drained byte to w (typically os.Stdout on a host run).
func (p *TxPortSim) Tee(w io.Writer) { p.sink = w }

func (p *TxPortSim) Ready() bool { return true }

func (p *TxPortSim) WriteByte(b byte) {
	p.out.WriteByte(b)
	if p.sink != nil {
		p.sink.Write([]byte{b})
	}
}

func (p *TxPortSim) Flush() {}

func (p *TxPortSim) EnableTxInterrupt(on bool) {
	if on {
		p.mbx.Post(console.DrainedBit)
	}
}

// Output returns everything the console has pushed out so far.
func (p *TxPortSim) Output() string { return p.out.String() }

// Board wires the whole simulated machine together.
type Board struct {
	TimerMbx   *irq.Mailbox
	I2CMbx     *irq.Mailbox
	GPIOMbx    *irq.Mailbox
	IRMbx      *irq.Mailbox
	ConsoleMbx *irq.Mailbox

	Clock   *Clock
	Engine  *I2CEngine
	Sensor  *SCD30Sim
	Capture *CaptureSim
	LED     *LEDSim
	TxPort  *TxPortSim
	Mask    irq.Masker
}

// NewBoard assembles a fresh simulation.
func NewBoard() *Board {
	b := &Board{
		TimerMbx:   &irq.Mailbox{},
		I2CMbx:     &irq.Mailbox{},
		GPIOMbx:    &irq.Mailbox{},
		IRMbx:      &irq.Mailbox{},
		ConsoleMbx: &irq.Mailbox{},
		LED:        &LEDSim{},
		Mask:       &irq.Mask{},
	}
	b.Clock = NewClock(b.TimerMbx)
	b.Sensor = NewSCD30Sim(b.GPIOMbx, SensorReadyBit)
	b.Engine = NewI2CEngine(b.Sensor, b.I2CMbx)
	b.Capture = NewCaptureSim(b.IRMbx)
	b.TxPort = NewTxPortSim(b.ConsoleMbx)
	return b
}

// Mailboxes lists every mailbox for the loop's idle decision.
func (b *Board) Mailboxes() []*irq.Mailbox {
	return []*irq.Mailbox{b.TimerMbx, b.I2CMbx, b.GPIOMbx, b.IRMbx, b.ConsoleMbx}
}
