// Package scd30 drives the Sensirion SCD30 CO2/temperature/humidity module.
//
// Two APIs are provided. Device is a conventional blocking driver over a
// tinygo I2C bus, usable from ports that can afford to wait. SetOp and
// DelayedGetOp (ops.go) are split-phase state machines over a non-blocking
// engine for the cooperative poll loop, where nothing may wait on the bus.
//
// All wire words are big-endian with a trailing CRC-8; readings come back
// as IEEE 754 float bits and are decoded to milli-units in integer math.
package scd30

import (
	"errors"

	"tinygo.org/x/drivers"

	"airnode-go/x/mathx"
)

// Addr is the sensor's fixed 7-bit bus address.
const Addr = 0x61

// Command words (per datasheet interface description 1.0).
const (
	cmdStartContinuous = 0x0010
	cmdStopContinuous  = 0x0104
	cmdSetInterval     = 0x4600
	cmdDataReady       = 0x0202
	cmdReadMeasurement = 0x0300
	cmdSoftReset       = 0xD304
)

var (
	ErrBadCRC   = errors.New("scd30: response checksum mismatch")
	ErrNotReady = errors.New("scd30: measurement not ready")
)

// RawMeasurement holds the three float bit patterns from one read, in
// wire order.
type RawMeasurement struct {
	CO2  uint32 // ppm
	Temp uint32 // degrees C
	RH   uint32 // percent
}

// Measurement is a decoded reading in thousandths: milli-ppm CO2,
// milli-degrees C, milli-percent RH.
type Measurement struct {
	CO2Milli  int32
	TempMilli int32
	RHMilli   int32
}

// Decode converts the raw float bits to fixed point. The first failing
// field aborts; readings are all-or-nothing.
func (r RawMeasurement) Decode() (Measurement, error) {
	var m Measurement
	var err error
	if m.CO2Milli, err = FixedE3FromBits(r.CO2); err != nil {
		return Measurement{}, err
	}
	if m.TempMilli, err = FixedE3FromBits(r.Temp); err != nil {
		return Measurement{}, err
	}
	if m.RHMilli, err = FixedE3FromBits(r.RH); err != nil {
		return Measurement{}, err
	}
	return m, nil
}

// ---- wire framing -----------------------------------------------------

func putWord(dst []byte, w uint16) {
	dst[0] = byte(w >> 8)
	dst[1] = byte(w)
}

// EncodeCommand frames an argumentless command.
func EncodeCommand(cmd uint16) [2]byte {
	var f [2]byte
	putWord(f[:], cmd)
	return f
}

// EncodeCommandArg frames a command with one checksummed argument word.
func EncodeCommandArg(cmd, arg uint16) [5]byte {
	var f [5]byte
	putWord(f[:2], cmd)
	putWord(f[2:4], arg)
	f[4] = WordCRC(f[2], f[3])
	return f
}

// EncodeSetInterval frames the measurement-interval command. The sensor
// accepts 2..1800 seconds; out-of-range values are clamped.
func EncodeSetInterval(seconds uint16) [5]byte {
	seconds = mathx.Clamp(seconds, 2, 1800)
	return EncodeCommandArg(cmdSetInterval, seconds)
}

// EncodeStartContinuous frames continuous-measurement start with ambient
// pressure compensation in mbar (0 disables compensation).
func EncodeStartContinuous(pressureMbar uint16) [5]byte {
	return EncodeCommandArg(cmdStartContinuous, pressureMbar)
}

// EncodeDataReady frames the data-ready query; the reply is one word.
func EncodeDataReady() [2]byte { return EncodeCommand(cmdDataReady) }

// EncodeReadMeasurement frames the measurement read; the reply is 18 bytes.
func EncodeReadMeasurement() [2]byte { return EncodeCommand(cmdReadMeasurement) }

func checkedWord(buf []byte) (uint16, error) {
	if WordCRC(buf[0], buf[1]) != buf[2] {
		return 0, ErrBadCRC
	}
	return uint16(buf[0])<<8 | uint16(buf[1]), nil
}

// ParseDataReady decodes the 3-byte data-ready reply.
func ParseDataReady(buf [3]byte) (bool, error) {
	w, err := checkedWord(buf[:])
	if err != nil {
		return false, err
	}
	return w == 1, nil
}

// ParseMeasurement decodes the 18-byte measurement reply into raw float
// bits, verifying the per-word checksums.
func ParseMeasurement(buf [18]byte) (RawMeasurement, error) {
	var words [6]uint16
	for i := range words {
		w, err := checkedWord(buf[i*3 : i*3+3])
		if err != nil {
			return RawMeasurement{}, err
		}
		words[i] = w
	}
	return RawMeasurement{
		CO2:  uint32(words[0])<<16 | uint32(words[1]),
		Temp: uint32(words[2])<<16 | uint32(words[3]),
		RH:   uint32(words[4])<<16 | uint32(words[5]),
	}, nil
}

// ---- blocking driver --------------------------------------------------

// Device is a blocking driver over a configured I2C bus.
type Device struct {
	bus  drivers.I2C
	addr uint16
	buf  [18]byte
}

// New creates a Device. The bus must already be configured.
func New(bus drivers.I2C) Device {
	return Device{bus: bus, addr: Addr}
}

// SetInterval sets the continuous measurement interval in seconds.
func (d *Device) SetInterval(seconds uint16) error {
	f := EncodeSetInterval(seconds)
	return d.bus.Tx(d.addr, f[:], nil)
}

// StartContinuous begins continuous measurement with the given pressure
// compensation in mbar.
func (d *Device) StartContinuous(pressureMbar uint16) error {
	f := EncodeStartContinuous(pressureMbar)
	return d.bus.Tx(d.addr, f[:], nil)
}

// StopContinuous halts continuous measurement.
func (d *Device) StopContinuous() error {
	f := EncodeCommand(cmdStopContinuous)
	return d.bus.Tx(d.addr, f[:], nil)
}

// SoftReset restarts the sensor firmware.
func (d *Device) SoftReset() error {
	f := EncodeCommand(cmdSoftReset)
	return d.bus.Tx(d.addr, f[:], nil)
}

// DataReady reports whether a measurement is available.
func (d *Device) DataReady() (bool, error) {
	f := EncodeDataReady()
	if err := d.bus.Tx(d.addr, f[:], nil); err != nil {
		return false, err
	}
	if err := d.bus.Tx(d.addr, nil, d.buf[:3]); err != nil {
		return false, err
	}
	return ParseDataReady([3]byte(d.buf[:3]))
}

// ReadMeasurement fetches and decodes one measurement. Returns ErrNotReady
// if the sensor has nothing new.
func (d *Device) ReadMeasurement() (Measurement, error) {
	ready, err := d.DataReady()
	if err != nil {
		return Measurement{}, err
	}
	if !ready {
		return Measurement{}, ErrNotReady
	}
	f := EncodeReadMeasurement()
	if err := d.bus.Tx(d.addr, f[:], nil); err != nil {
		return Measurement{}, err
	}
	if err := d.bus.Tx(d.addr, nil, d.buf[:]); err != nil {
		return Measurement{}, err
	}
	raw, err := ParseMeasurement(d.buf)
	if err != nil {
		return Measurement{}, err
	}
	return raw.Decode()
}
