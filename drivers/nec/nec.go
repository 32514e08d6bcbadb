// Package nec decodes NEC infrared remote frames from captured pulse
// trains. The capture front end (hardware timer capture or a simulator)
// hands over a slice of alternating mark/space durations in timer ticks;
// decoding is pure and allocation free.
//
// A data frame is 67 pulses: a 16-unit preamble mark, an 8-unit space,
// 32 bit pairs (1-unit mark, then a 1-unit space for 0 or 3-unit space
// for 1), and a 1-unit trailer mark. Bits arrive LSB first as address,
// inverted address, command, inverted command. A repeat frame is the
// preamble mark, a 4-unit space and the trailer.
package nec

import (
	"errors"
	"fmt"

	"airnode-go/x/mathx"
)

// Sentinel decode errors.
var (
	ErrTooShort      = errors.New("nec: pulse train too short")
	ErrPreambleMark  = errors.New("nec: preamble mark out of range")
	ErrPreambleSpace = errors.New("nec: preamble space out of range")
	ErrRepeatFrame   = errors.New("nec: malformed repeat frame")
	ErrTrailerMark   = errors.New("nec: trailer mark out of range")
	ErrAddressCheck  = errors.New("nec: address does not match its inverse")
	ErrCommandCheck  = errors.New("nec: command does not match its inverse")
)

// FrameLengthError reports a data frame with the wrong pulse count.
type FrameLengthError struct {
	Got int
}

func (e FrameLengthError) Error() string {
	return fmt.Sprintf("nec: data frame has %d pulses, want %d", e.Got, frameLen)
}

// DataMarkError reports a bit mark with an out-of-range duration.
type DataMarkError struct {
	Bit   int
	Ticks uint32
}

func (e DataMarkError) Error() string {
	return fmt.Sprintf("nec: bit %d mark %d ticks out of range", e.Bit, e.Ticks)
}

// DataSpaceError reports a bit space that is neither a 0 nor a 1.
type DataSpaceError struct {
	Bit   int
	Ticks uint32
}

func (e DataSpaceError) Error() string {
	return fmt.Sprintf("nec: bit %d space %d ticks out of range", e.Bit, e.Ticks)
}

const frameLen = 67

// Timing fixes the tick scale and matching tolerance. Unit is the length
// of the protocol's base unit (562.5 us) in capture ticks; a duration d
// matches n units when it is within Unit*n*TolNum/TolDiv of Unit*n.
type Timing struct {
	Unit   uint32
	TolNum uint32
	TolDiv uint32
}

// DefaultTiming matches a 1 MHz capture clock with 25% tolerance.
var DefaultTiming = Timing{Unit: 562, TolNum: 1, TolDiv: 4}

func (t Timing) match(d uint32, units uint32) bool {
	nominal := t.Unit * units
	tol := nominal * t.TolNum / t.TolDiv
	return mathx.Abs(int64(d)-int64(nominal)) <= int64(tol)
}

// Message is one decoded frame. A repeat carries no address or command;
// the receiver applies it to the previous message.
type Message struct {
	Repeat  bool
	Address uint8
	Command uint8
}

// Decoder decodes pulse trains under one Timing.
type Decoder struct {
	t Timing
}

// NewDecoder builds a decoder; zero Timing fields fall back to
// DefaultTiming.
func NewDecoder(t Timing) Decoder {
	if t.Unit == 0 {
		t.Unit = DefaultTiming.Unit
	}
	if t.TolDiv == 0 {
		t.TolNum, t.TolDiv = DefaultTiming.TolNum, DefaultTiming.TolDiv
	}
	return Decoder{t: t}
}

// Decode parses one captured frame. pulses alternates mark, space, mark,
// beginning and ending with a mark.
func (d Decoder) Decode(pulses []uint32) (Message, error) {
	if len(pulses) < 3 {
		return Message{}, ErrTooShort
	}
	if !d.t.match(pulses[0], 16) {
		return Message{}, ErrPreambleMark
	}

	if d.t.match(pulses[1], 4) {
		if len(pulses) != 3 || !d.t.match(pulses[2], 1) {
			return Message{}, ErrRepeatFrame
		}
		return Message{Repeat: true}, nil
	}
	if !d.t.match(pulses[1], 8) {
		return Message{}, ErrPreambleSpace
	}
	if len(pulses) != frameLen {
		return Message{}, FrameLengthError{Got: len(pulses)}
	}

	var raw [4]byte
	for bit := 0; bit < 32; bit++ {
		mark := pulses[2+2*bit]
		space := pulses[3+2*bit]
		if !d.t.match(mark, 1) {
			return Message{}, DataMarkError{Bit: bit, Ticks: mark}
		}
		b := &raw[bit/8]
		switch {
		case d.t.match(space, 1):
			*b >>= 1
		case d.t.match(space, 3):
			*b = *b>>1 | 0x80
		default:
			return Message{}, DataSpaceError{Bit: bit, Ticks: space}
		}
	}
	if !d.t.match(pulses[frameLen-1], 1) {
		return Message{}, ErrTrailerMark
	}

	if raw[0]^raw[1] != 0xFF {
		return Message{}, ErrAddressCheck
	}
	if raw[2]^raw[3] != 0xFF {
		return Message{}, ErrCommandCheck
	}
	return Message{Address: raw[0], Command: raw[2]}, nil
}
