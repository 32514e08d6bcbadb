package i2c

import (
	"errors"
	"testing"

	"airnode-go/irq"
)

func TestTransmissionError(t *testing.T) {
	cases := []struct {
		name string
		s    irq.Status
		want error
	}{
		{"clean complete", IntComplete, nil},
		{"nack", IntNack, ErrNack},
		{"arbitration", IntArbitrationLost, ErrArbitrationLost},
		{"timeout", IntTimeout, ErrTimeout},
		{"stretch", IntSCLStretch, ErrSCLStretch},
		{"main stretch", IntSCLMainStretch, ErrSCLStretch},
		{"nack wins over timeout", IntNack | IntTimeout, ErrNack},
		{"nothing", 0, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := TransmissionError(tc.s)
			if tc.want == nil {
				if got != nil {
					t.Fatalf("TransmissionError(%#x) = %v, want nil", uint32(tc.s), got)
				}
				return
			}
			if !errors.Is(got, tc.want) {
				t.Fatalf("TransmissionError(%#x) = %v, want %v", uint32(tc.s), got, tc.want)
			}
		})
	}
}

func TestErrorBitsCoverEveryFault(t *testing.T) {
	for _, bit := range []irq.Status{
		IntArbitrationLost, IntTimeout, IntNack, IntSCLStretch, IntSCLMainStretch,
	} {
		if ErrorBits&bit == 0 {
			t.Fatalf("fault bit %#x not in ErrorBits", uint32(bit))
		}
	}
	if DoneBits&IntComplete == 0 {
		t.Fatal("IntComplete not in DoneBits")
	}
}
