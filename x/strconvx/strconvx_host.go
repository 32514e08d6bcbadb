//go:build !rp2040

package strconvx

import "strconv"

// Host builds delegate to strconv; signatures stay identical so callers
// never notice which build they are on.

func Itoa(i int) string                  { return strconv.Itoa(i) }
func FormatInt(i int64, base int) string { return strconv.FormatInt(i, base) }
func FormatUint(u uint64, base int) string {
	return strconv.FormatUint(u, base)
}
func AppendInt(dst []byte, i int64, base int) []byte { return strconv.AppendInt(dst, i, base) }
func AppendUint(dst []byte, u uint64, base int) []byte {
	return strconv.AppendUint(dst, u, base)
}
