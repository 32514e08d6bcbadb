//go:build rp2040

package fmtx

import (
	"io"

	"airnode-go/x/strconvx"
)

// A fixed verb set covers every diagnostic in the tree: %s %q %d %x %X
// %v %t and %%. No flags, no width, no floats; anything else would pull
// reflection-sized machinery into the firmware image for strings nobody
// reads twice.

func Sprintf(format string, a ...any) string {
	return string(appendFormat(nil, format, a...))
}

func Fprintf(w io.Writer, format string, a ...any) (int, error) {
	return w.Write(appendFormat(nil, format, a...))
}

func Errorf(format string, a ...any) error {
	return &formatError{string(appendFormat(nil, format, a...))}
}

type formatError struct{ s string }

func (e *formatError) Error() string { return e.s }

func appendFormat(dst []byte, format string, args ...any) []byte {
	ai := 0
	for i := 0; i < len(format); {
		c := format[i]
		if c != '%' {
			dst = append(dst, c)
			i++
			continue
		}
		if i+1 >= len(format) {
			dst = append(dst, '%')
			break
		}
		verb := format[i+1]
		i += 2
		if verb == '%' {
			dst = append(dst, '%')
			continue
		}
		if ai >= len(args) {
			dst = append(dst, "%!missing"...)
			continue
		}
		dst = appendVerb(dst, verb, args[ai])
		ai++
	}
	return dst
}

func appendVerb(dst []byte, verb byte, arg any) []byte {
	switch verb {
	case 's':
		return appendString(dst, arg, false)
	case 'q':
		return appendString(dst, arg, true)
	case 'd':
		if u, ok := asUint(arg); ok {
			return strconvx.AppendUint(dst, u, 10)
		}
		if i, ok := asInt(arg); ok {
			return strconvx.AppendInt(dst, i, 10)
		}
	case 'x', 'X':
		var h []byte
		if u, ok := asUint(arg); ok {
			h = strconvx.AppendUint(nil, u, 16)
		} else if i, ok := asInt(arg); ok {
			h = strconvx.AppendInt(nil, i, 16)
		} else {
			break
		}
		if verb == 'X' {
			for j, c := range h {
				if 'a' <= c && c <= 'f' {
					h[j] = c - 'a' + 'A'
				}
			}
		}
		return append(dst, h...)
	case 't':
		if b, ok := arg.(bool); ok {
			return appendBool(dst, b)
		}
	case 'v':
		return appendValue(dst, arg)
	}
	return append(dst, '%', '!', verb)
}

func appendString(dst []byte, arg any, quoted bool) []byte {
	var s string
	switch v := arg.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case error:
		s = v.Error()
	default:
		return appendValue(dst, arg)
	}
	if !quoted {
		return append(dst, s...)
	}
	dst = append(dst, '"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\', '"':
			dst = append(dst, '\\', c)
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		default:
			dst = append(dst, c)
		}
	}
	return append(dst, '"')
}

func appendValue(dst []byte, arg any) []byte {
	if u, ok := asUint(arg); ok {
		return strconvx.AppendUint(dst, u, 10)
	}
	if i, ok := asInt(arg); ok {
		return strconvx.AppendInt(dst, i, 10)
	}
	switch v := arg.(type) {
	case string:
		return append(dst, v...)
	case []byte:
		return append(dst, v...)
	case bool:
		return appendBool(dst, v)
	case error:
		return append(dst, v.Error()...)
	case nil:
		return append(dst, "<nil>"...)
	}
	return append(dst, "<?>"...)
}

func appendBool(dst []byte, b bool) []byte {
	if b {
		return append(dst, "true"...)
	}
	return append(dst, "false"...)
}

func asInt(arg any) (int64, bool) {
	switch v := arg.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}

func asUint(arg any) (uint64, bool) {
	switch v := arg.(type) {
	case uint:
		return uint64(v), true
	case uint8:
		return uint64(v), true
	case uint16:
		return uint64(v), true
	case uint32:
		return uint64(v), true
	case uint64:
		return v, true
	}
	return 0, false
}
