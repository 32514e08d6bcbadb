package scd30

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestWordCRC_DatasheetVector(t *testing.T) {
	// The interface description's worked example: CRC(0xBEEF) = 0x92.
	if got := WordCRC(0xBE, 0xEF); got != 0x92 {
		t.Fatalf("WordCRC(0xBEEF) = %#x, want 0x92", got)
	}
	if got := crcSum([]byte{0xBE, 0xEF}); got != 0x92 {
		t.Fatalf("crcSum(0xBEEF) = %#x, want 0x92", got)
	}
}

func TestFixedE3FromBits(t *testing.T) {
	cases := []struct {
		name string
		f    float32
		want int32
	}{
		{"zero", 0, 0},
		{"one", 1, 1000},
		{"half", 0.5, 500},
		{"quarter step", 1.25, 1250},
		{"temp-ish", 25.375, 25375},
		{"co2-ish", 448, 448000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FixedE3FromBits(math.Float32bits(tc.f))
			if err != nil {
				t.Fatalf("err = %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %d, want %d", got, tc.want)
			}
		})
	}

	faults := []struct {
		name string
		bits uint32
		want error
	}{
		{"negative", math.Float32bits(-1), ErrNegative},
		{"subnormal", 0x0000_0001, ErrTooSmall},
		{"underflow", math.Float32bits(1e-7), ErrTooSmall},
		{"inf", math.Float32bits(float32(math.Inf(1))), ErrTooBig},
		{"huge", math.Float32bits(3e6), ErrTooBig},
	}
	for _, tc := range faults {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := FixedE3FromBits(tc.bits); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestEncodeCommandArg(t *testing.T) {
	f := EncodeSetInterval(2)
	want := []byte{0x46, 0x00, 0x00, 0x02}
	if !bytes.Equal(f[:4], want) {
		t.Fatalf("frame = %x, want %x...", f, want)
	}
	if f[4] != WordCRC(0x00, 0x02) {
		t.Fatalf("crc = %#x", f[4])
	}

	// Out-of-range intervals clamp.
	if f := EncodeSetInterval(0); f[3] != 2 {
		t.Fatalf("interval 0 not clamped: %x", f)
	}
	if f := EncodeSetInterval(10000); f[2] != 0x07 || f[3] != 0x08 {
		t.Fatalf("interval 10000 not clamped to 1800: %x", f)
	}

	s := EncodeStartContinuous(0)
	if s[0] != 0x00 || s[1] != 0x10 {
		t.Fatalf("start frame = %x", s)
	}
}

func readyReply(w uint16) [3]byte {
	var b [3]byte
	b[0], b[1] = byte(w>>8), byte(w)
	b[2] = WordCRC(b[0], b[1])
	return b
}

func TestParseDataReady(t *testing.T) {
	if got, err := ParseDataReady(readyReply(1)); err != nil || !got {
		t.Fatalf("ready(1) = %v,%v", got, err)
	}
	if got, err := ParseDataReady(readyReply(0)); err != nil || got {
		t.Fatalf("ready(0) = %v,%v", got, err)
	}
	bad := readyReply(1)
	bad[2] ^= 0xFF
	if _, err := ParseDataReady(bad); !errors.Is(err, ErrBadCRC) {
		t.Fatalf("bad crc = %v, want ErrBadCRC", err)
	}
}

func measurementReply(co2, temp, rh float32) [18]byte {
	var buf [18]byte
	vals := []uint32{math.Float32bits(co2), math.Float32bits(temp), math.Float32bits(rh)}
	for i, v := range vals {
		words := [2]uint16{uint16(v >> 16), uint16(v)}
		for j, w := range words {
			off := (i*2 + j) * 3
			buf[off], buf[off+1] = byte(w>>8), byte(w)
			buf[off+2] = WordCRC(buf[off], buf[off+1])
		}
	}
	return buf
}

func TestParseMeasurement(t *testing.T) {
	buf := measurementReply(448, 25.375, 41.5)
	raw, err := ParseMeasurement(buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	m, err := raw.Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.CO2Milli != 448000 || m.TempMilli != 25375 || m.RHMilli != 41500 {
		t.Fatalf("decoded = %+v", m)
	}

	buf[5] ^= 0x01 // corrupt the second word's CRC
	if _, err := ParseMeasurement(buf); !errors.Is(err, ErrBadCRC) {
		t.Fatalf("corrupt crc = %v, want ErrBadCRC", err)
	}
}

// fakeBus scripts Tx calls for the blocking Device.
type fakeBus struct {
	writes [][]byte
	reads  [][]byte
	err    error
}

func (b *fakeBus) Tx(addr uint16, w, r []byte) error {
	if b.err != nil {
		return b.err
	}
	if addr != Addr {
		return errors.New("wrong address")
	}
	if len(w) > 0 {
		b.writes = append(b.writes, append([]byte(nil), w...))
	}
	if len(r) > 0 {
		if len(b.reads) == 0 {
			return errors.New("unexpected read")
		}
		copy(r, b.reads[0])
		b.reads = b.reads[1:]
	}
	return nil
}

func TestDevice_ReadMeasurement(t *testing.T) {
	ready := readyReply(1)
	reply := measurementReply(800, 21, 50)
	bus := &fakeBus{reads: [][]byte{ready[:], reply[:]}}
	d := New(bus)

	m, err := d.ReadMeasurement()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if m.CO2Milli != 800000 || m.TempMilli != 21000 || m.RHMilli != 50000 {
		t.Fatalf("measurement = %+v", m)
	}
}

func TestDevice_NotReady(t *testing.T) {
	ready := readyReply(0)
	bus := &fakeBus{reads: [][]byte{ready[:]}}
	d := New(bus)
	if _, err := d.ReadMeasurement(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("err = %v, want ErrNotReady", err)
	}
}
