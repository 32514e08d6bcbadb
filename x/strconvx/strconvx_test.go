package strconvx

import "testing"

func TestFormatInt(t *testing.T) {
	cases := []struct {
		v    int64
		base int
		want string
	}{
		{0, 10, "0"},
		{42, 10, "42"},
		{-42, 10, "-42"},
		{255, 16, "ff"},
		{5, 2, "101"},
		{-9223372036854775808, 10, "-9223372036854775808"},
	}
	for _, c := range cases {
		if got := FormatInt(c.v, c.base); got != c.want {
			t.Fatalf("FormatInt(%d, %d) = %q, want %q", c.v, c.base, got, c.want)
		}
	}
}

func TestFormatUint(t *testing.T) {
	if got := FormatUint(18446744073709551615, 10); got != "18446744073709551615" {
		t.Fatalf("max uint64 = %q", got)
	}
	if got := FormatUint(255, 16); got != "ff" {
		t.Fatalf("hex = %q", got)
	}
	// An out-of-range base falls back to decimal.
	if got := FormatUint(7, 99); got != "7" {
		t.Fatalf("bad base = %q", got)
	}
}

func TestAppend(t *testing.T) {
	b := []byte("n=")
	b = AppendInt(b, -3, 10)
	b = append(b, ' ')
	b = AppendUint(b, 16, 16)
	if string(b) != "n=-3 10" {
		t.Fatalf("append chain = %q", b)
	}
}

func TestItoa(t *testing.T) {
	if Itoa(-7) != "-7" || Itoa(0) != "0" {
		t.Fatal("itoa broken")
	}
}
