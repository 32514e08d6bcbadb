package irq

import "sync"

// Mask is a Masker backed by a mutex, for hosts and simulators where
// "interrupt context" is another goroutine. The simulated dispatcher must
// acquire the same Mask around handler invocation for the masking to hold.
type Mask struct {
	mu sync.Mutex
}

func (m *Mask) Run(fn func()) {
	m.mu.Lock()
	fn()
	m.mu.Unlock()
}
