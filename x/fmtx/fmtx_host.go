//go:build !rp2040

package fmtx

import (
	"fmt"
	"io"
)

// Host builds delegate to fmt. The MCU build implements the same verbs
// without fmt's reflection cost; keeping the signatures identical lets
// every diagnostic call site compile on both.

func Sprintf(format string, a ...any) string { return fmt.Sprintf(format, a...) }
func Fprintf(w io.Writer, format string, a ...any) (int, error) {
	return fmt.Fprintf(w, format, a...)
}
func Errorf(format string, a ...any) error { return fmt.Errorf(format, a...) }
