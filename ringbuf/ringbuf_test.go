package ringbuf

import (
	"errors"
	"testing"
)

func TestRing_PushPopOrder(t *testing.T) {
	r := New[int](4)
	for i := 1; i <= 4; i++ {
		if err := r.Push(i); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if got := r.Len(); got != 4 {
		t.Fatalf("len = %d, want 4", got)
	}
	for want := 1; want <= 4; want++ {
		v, ok := r.PopFront()
		if !ok || v != want {
			t.Fatalf("pop front = %d,%v, want %d", v, ok, want)
		}
	}
	if _, ok := r.PopFront(); ok {
		t.Fatal("pop front on empty buffer succeeded")
	}
}

func TestRing_PopBack(t *testing.T) {
	r := New[byte](3)
	_ = r.Push('a')
	_ = r.Push('b')
	v, ok := r.PopBack()
	if !ok || v != 'b' {
		t.Fatalf("pop back = %c,%v, want b", v, ok)
	}
	v, ok = r.PopBack()
	if !ok || v != 'a' {
		t.Fatalf("pop back = %c,%v, want a", v, ok)
	}
	if _, ok := r.PopBack(); ok {
		t.Fatal("pop back on empty buffer succeeded")
	}
}

// Capacity invariant: len never exceeds cap, a push fails iff the buffer is
// full at call time, and a failed push leaves the contents unchanged.
func TestRing_RejectPolicyInvariant(t *testing.T) {
	r := New[int](3)
	ops := []struct {
		push bool
		v    int
	}{
		{true, 1}, {true, 2}, {false, 0}, {true, 3}, {true, 4},
		{false, 0}, {true, 5}, {true, 6}, {true, 7}, {true, 8},
	}
	model := []int{}
	for i, op := range ops {
		if op.push {
			err := r.Push(op.v)
			if len(model) == r.Cap() {
				if !errors.Is(err, ErrOverflow) {
					t.Fatalf("op %d: push on full buffer returned %v", i, err)
				}
			} else {
				if err != nil {
					t.Fatalf("op %d: push returned %v", i, err)
				}
				model = append(model, op.v)
			}
		} else {
			v, ok := r.PopFront()
			if len(model) == 0 {
				if ok {
					t.Fatalf("op %d: pop on empty buffer succeeded", i)
				}
			} else {
				if !ok || v != model[0] {
					t.Fatalf("op %d: pop = %d,%v, want %d", i, v, ok, model[0])
				}
				model = model[1:]
			}
		}
		if r.Len() > r.Cap() {
			t.Fatalf("op %d: len %d exceeds cap %d", i, r.Len(), r.Cap())
		}
		if r.Len() != len(model) {
			t.Fatalf("op %d: len %d, model %d", i, r.Len(), len(model))
		}
		for j, want := range model {
			if v, ok := r.At(j); !ok || v != want {
				t.Fatalf("op %d: at(%d) = %d,%v, want %d", i, j, v, ok, want)
			}
		}
	}
}

func TestRing_ExtendSlice(t *testing.T) {
	r := New[byte](5)
	n, err := r.ExtendSlice(nil)
	if n != 0 || err != nil {
		t.Fatalf("empty extend = %d,%v", n, err)
	}
	n, err = r.ExtendSlice([]byte("abc"))
	if n != 3 || err != nil {
		t.Fatalf("extend = %d,%v", n, err)
	}
	// Only two slots remain; the rest is reported as overflow.
	n, err = r.ExtendSlice([]byte("defg"))
	if n != 2 || !errors.Is(err, ErrOverflow) {
		t.Fatalf("extend over capacity = %d,%v", n, err)
	}
	want := "abcde"
	for i := 0; i < len(want); i++ {
		v, ok := r.PopFront()
		if !ok || v != want[i] {
			t.Fatalf("pop %d = %c,%v, want %c", i, v, ok, want[i])
		}
	}
	// Extend into a full buffer with a non-empty slice fails outright.
	r2 := New[byte](2)
	_, _ = r2.ExtendSlice([]byte("xy"))
	n, err = r2.ExtendSlice([]byte("z"))
	if n != 0 || !errors.Is(err, ErrOverflow) {
		t.Fatalf("extend on full = %d,%v", n, err)
	}
}

func TestRing_ExtendSliceWrapsSeam(t *testing.T) {
	r := New[byte](4)
	_, _ = r.ExtendSlice([]byte("ab"))
	r.PopFront()
	r.PopFront()
	// Head is now at physical index 2; the write range wraps.
	n, err := r.ExtendSlice([]byte("cdef"))
	if n != 4 || err != nil {
		t.Fatalf("wrapped extend = %d,%v", n, err)
	}
	for i, want := range []byte("cdef") {
		v, ok := r.At(i)
		if !ok || v != want {
			t.Fatalf("at(%d) = %c, want %c", i, v, want)
		}
	}
}

// Overwrite policy: pushing N+k elements keeps exactly the last N in order.
func TestOverwrite_KeepsNewest(t *testing.T) {
	o := NewOverwrite[int](3)
	for i := 1; i <= 8; i++ {
		o.Push(i)
		if o.Len() > o.Cap() {
			t.Fatalf("len %d exceeds cap %d", o.Len(), o.Cap())
		}
	}
	for i, want := range []int{6, 7, 8} {
		v, ok := o.At(i)
		if !ok || v != want {
			t.Fatalf("at(%d) = %d,%v, want %d", i, v, ok, want)
		}
	}
	if v, ok := o.Back(); !ok || v != 8 {
		t.Fatalf("back = %d,%v, want 8", v, ok)
	}
	if v, ok := o.PopFront(); !ok || v != 6 {
		t.Fatalf("pop front = %d,%v, want 6", v, ok)
	}
}

func TestRing_Reset(t *testing.T) {
	r := New[int](2)
	_ = r.Push(1)
	_ = r.Push(2)
	r.Reset()
	if r.Len() != 0 {
		t.Fatalf("len after reset = %d", r.Len())
	}
	if err := r.Push(9); err != nil {
		t.Fatalf("push after reset: %v", err)
	}
	if v, ok := r.Front(); !ok || v != 9 {
		t.Fatalf("front = %d,%v, want 9", v, ok)
	}
}
