//go:build rp2040

package strconvx

// Integer formatting without strconv's table machinery. The firmware
// only ever formats diagnostics, so bases 2..36 and append-style output
// cover everything; parsing and floats are deliberately absent.

const digits = "0123456789abcdefghijklmnopqrstuvwxyz"

func Itoa(i int) string { return FormatInt(int64(i), 10) }

func FormatInt(i int64, base int) string {
	var scratch [65]byte
	return string(AppendInt(scratch[:0], i, base))
}

func FormatUint(u uint64, base int) string {
	var scratch [64]byte
	return string(AppendUint(scratch[:0], u, base))
}

// AppendInt appends the base-b text of i to dst.
func AppendInt(dst []byte, i int64, base int) []byte {
	if i < 0 {
		dst = append(dst, '-')
		return AppendUint(dst, uint64(-i), base)
	}
	return AppendUint(dst, uint64(i), base)
}

// AppendUint appends the base-b text of u to dst.
func AppendUint(dst []byte, u uint64, base int) []byte {
	if base < 2 || base > 36 {
		base = 10
	}
	var buf [64]byte
	i := len(buf)
	b := uint64(base)
	for {
		i--
		buf[i] = digits[u%b]
		u /= b
		if u == 0 {
			break
		}
	}
	return append(dst, buf[i:]...)
}
