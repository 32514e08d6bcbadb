//go:build rp2040

package platform

import (
	"device/rp"
	"machine"
	"runtime/interrupt"

	"airnode-go/alarm"
	"airnode-go/console"
	"airnode-go/irq"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

// Default wiring for the prototype carrier board.
const (
	pinSensorSDA = machine.GP4
	pinSensorSCL = machine.GP5
	pinSensorRDY = machine.GP6
	pinIRIn      = machine.GP7
	pinUARTTx    = machine.GP0
	pinUARTRx    = machine.GP1
)

// irGapTicks ends a pulse train: no edge for 15 ms means the frame is over.
const irGapTicks = 15_000

// hwMask masks all interrupts around fn.
type hwMask struct{}

func (hwMask) Run(fn func()) {
	state := interrupt.Disable()
	fn()
	interrupt.Restore(state)
}

// hwLine adapts one TinyGo interrupt to irq.Line. interrupt.New wants a
// compile-time handler, so each line owns a package-level trampoline slot
// that Enable fills in.
type hwLine struct {
	in    interrupt.Interrupt
	slot  *func()
	bound bool
}

func (l *hwLine) Enable(prio irq.Priority, handler func()) error {
	if l.bound {
		return errLineBound
	}
	l.bound = true
	*l.slot = handler
	l.in.SetPriority(uint8(prio))
	l.in.Enable()
	return nil
}

type platformError string

func (e platformError) Error() string { return string(e) }

const errLineBound = platformError("platform: interrupt line already bound")

// hwClock is the rp2040 64-bit microsecond timer with alarm 0 as the
// single comparator. The alarm compares against the low 32 bits only;
// the queue's guard offset keeps targets close enough for that to be
// unambiguous.
type hwClock struct {
	mbx *irq.Mailbox
}

// alarm0Reg is the timer's interrupt status as the mailbox handler sees
// it. INTS bit 0 happens to line up with alarm.TargetBit.
type alarm0Reg struct{}

func (alarm0Reg) Status() uint32 { return rp.TIMER.INTS.Get() & uint32(alarm.TargetBit) }
func (alarm0Reg) ClearAll()      { rp.TIMER.INTR.Set(1 << 0) }

var timerHandler func()

func timerISR(interrupt.Interrupt) { timerHandler() }

func newHWClock(mbx *irq.Mailbox) *hwClock {
	c := &hwClock{mbx: mbx}
	line := &hwLine{
		in:   interrupt.New(rp.IRQ_TIMER_IRQ_0, timerISR),
		slot: &timerHandler,
	}
	if err := line.Enable(PrioTimer, mbx.Handler(alarm0Reg{})); err != nil {
		panic(err)
	}
	return c
}

func (c *hwClock) Now() uint64 {
	for {
		hi := rp.TIMER.TIMERAWH.Get()
		lo := rp.TIMER.TIMERAWL.Get()
		if rp.TIMER.TIMERAWH.Get() == hi {
			return uint64(hi)<<32 | uint64(lo)
		}
	}
}

func (c *hwClock) SetTarget(tick uint64) {
	rp.TIMER.ALARM0.Set(uint32(tick))
}

func (c *hwClock) EnableInterrupt(on bool) {
	if on {
		rp.TIMER.INTE.SetBits(1 << 0)
	} else {
		rp.TIMER.INTE.ClearBits(1 << 0)
		rp.TIMER.ARMED.Set(1 << 0) // disarm a pending alarm
	}
}

func (c *hwClock) ClearInterrupt() {
	rp.TIMER.INTR.Set(1 << 0)
}

// ledPin adapts machine.Pin to the status LED task.
type ledPin struct{ p machine.Pin }

func (l ledPin) Set(on bool) { l.p.Set(on) }

// uartPort feeds the console ring into uartx, which runs its own
// interrupt-driven TX buffering. The port is always ready and the drained
// bit is synthesized on enable; uartx owns the real FIFO interrupts.
type uartPort struct {
	u   *uartx.UART
	mbx *irq.Mailbox
	b   [1]byte
}

func (p *uartPort) Ready() bool { return true }

func (p *uartPort) WriteByte(b byte) {
	p.b[0] = b
	p.u.Write(p.b[:])
}

func (p *uartPort) Flush() {}

func (p *uartPort) EnableTxInterrupt(on bool) {
	if on {
		p.mbx.Post(console.DrainedBit)
	}
}

// irCapture timestamps edges on the demodulated IR input and closes a
// frame when the line stays quiet past irGapTicks.
type irCapture struct {
	mbx      *irq.Mailbox
	lastEdge uint32
	active   bool

	pulses [96]uint32
	n      int
	frame  [96]uint32
	flen   int
}

var capture *irCapture

func irISR(p machine.Pin) {
	c := capture
	now := rp.TIMER.TIMERAWL.Get()
	delta := now - c.lastEdge
	c.lastEdge = now

	if c.active && delta > irGapTicks {
		// Quiet gap: the previous train is a complete frame.
		c.flen = copy(c.frame[:], c.pulses[:c.n])
		c.n = 0
		c.mbx.Post(IRFrameBit)
		return
	}
	if !c.active {
		c.active = true
		c.n = 0
		return
	}
	if c.n == len(c.pulses) {
		c.n = 0
		c.active = false
		c.mbx.Post(IROverrunBit)
		return
	}
	c.pulses[c.n] = delta
	c.n++
}

// Frame hands over the last completed train.
func (c *irCapture) Frame(dst []uint32) []uint32 {
	var n int
	hwMask{}.Run(func() {
		n = copy(dst, c.frame[:c.flen])
		c.flen = 0
	})
	return dst[:n]
}

// Board is the physical rp2040 machine.
type Board struct {
	TimerMbx   *irq.Mailbox
	I2CMbx     *irq.Mailbox
	GPIOMbx    *irq.Mailbox
	IRMbx      *irq.Mailbox
	ConsoleMbx *irq.Mailbox

	Clock   *hwClock
	Engine  *I2CEngine
	Capture *irCapture
	LED     ledPin
	TxPort  *uartPort
	Mask    irq.Masker
}

// NewBoard configures the pins, bus, UART and interrupts.
func NewBoard() *Board {
	b := &Board{
		TimerMbx:   &irq.Mailbox{},
		I2CMbx:     &irq.Mailbox{},
		GPIOMbx:    &irq.Mailbox{},
		IRMbx:      &irq.Mailbox{},
		ConsoleMbx: &irq.Mailbox{},
		Mask:       hwMask{},
	}

	b.Clock = newHWClock(b.TimerMbx)

	machine.I2C0.Configure(machine.I2CConfig{
		SDA:       pinSensorSDA,
		SCL:       pinSensorSCL,
		Frequency: 100_000,
	})
	b.Engine = NewI2CEngine(machine.I2C0, b.I2CMbx)

	// SCD30 RDY is push-pull active high.
	pinSensorRDY.Configure(machine.PinConfig{Mode: machine.PinInput})
	gpioMbx = b.GPIOMbx
	pinSensorRDY.SetInterrupt(machine.PinRising, rdyISR)

	pinIRIn.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	b.Capture = &irCapture{mbx: b.IRMbx}
	capture = b.Capture
	pinIRIn.SetInterrupt(machine.PinRising|machine.PinFalling, irISR)

	machine.LED.Configure(machine.PinConfig{Mode: machine.PinOutput})
	b.LED = ledPin{p: machine.LED}

	uartx.UART0.Configure(uartx.UARTConfig{
		BaudRate: 115200,
		TX:       pinUARTTx,
		RX:       pinUARTRx,
	})
	b.TxPort = &uartPort{u: uartx.UART0, mbx: b.ConsoleMbx}

	return b
}

var gpioMbx *irq.Mailbox

func rdyISR(machine.Pin) {
	gpioMbx.Post(SensorReadyBit)
}

// Mailboxes lists every mailbox for the loop's idle decision.
func (b *Board) Mailboxes() []*irq.Mailbox {
	return []*irq.Mailbox{b.TimerMbx, b.I2CMbx, b.GPIOMbx, b.IRMbx, b.ConsoleMbx}
}
