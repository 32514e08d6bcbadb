package platform

import (
	"airnode-go/i2c"
	"airnode-go/irq"

	"tinygo.org/x/drivers"
)

// I2CEngine adapts a blocking bus to the split-phase Engine contract: the
// transfer runs synchronously inside Start and the completion bit is
// posted immediately. The poll loop observes the same start, interrupt,
// collect sequence as a controller with a real completion interrupt would
// give it; only the latency differs. On rp2040 this wraps machine.I2C,
// on hosts the simulated sensor.
type I2CEngine struct {
	bus      drivers.I2C
	mbx      *irq.Mailbox
	inFlight bool
}

// NewI2CEngine posts completion bits to mbx.
func NewI2CEngine(bus drivers.I2C, mbx *irq.Mailbox) *I2CEngine {
	return &I2CEngine{bus: bus, mbx: mbx}
}

func (e *I2CEngine) StartWrite(addr uint8, data []byte) error {
	return e.start(addr, data, nil)
}

func (e *I2CEngine) StartRead(addr uint8, dst []byte) error {
	return e.start(addr, nil, dst)
}

func (e *I2CEngine) start(addr uint8, w, r []byte) error {
	if e.inFlight {
		return i2c.ErrBusy
	}
	e.inFlight = true
	if err := e.bus.Tx(uint16(addr), w, r); err != nil {
		e.mbx.Post(i2c.IntNack)
		return nil
	}
	e.mbx.Post(i2c.IntComplete)
	return nil
}

func (e *I2CEngine) Response() error {
	e.inFlight = false
	return nil
}
