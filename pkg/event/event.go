// Package event provides a set of wake flags shared between producers and a
// single consumer goroutine.
//
// Producers raise bits with Set from any goroutine. The consumer blocks in
// Wait until at least one bit is raised and receives every pending bit at
// once; the returned bits are cleared atomically.
package event

import (
	"context"
	"sync"
)

// Set is a bitmask of event flags.
type Set uint32

// Has reports whether every bit in other is raised in s.
func (s Set) Has(other Set) bool {
	return s&other == other
}

// Flags is a group of event flags. The zero value is not usable; use
// NewFlags.
type Flags struct {
	mu      sync.Mutex
	pending Set
	wake    chan struct{}
}

// NewFlags returns an empty flag group.
func NewFlags() *Flags {
	return &Flags{wake: make(chan struct{}, 1)}
}

// Set raises bits and wakes the waiter.
func (f *Flags) Set(bits Set) {
	if bits == 0 {
		return
	}
	f.mu.Lock()
	f.pending |= bits
	f.mu.Unlock()

	select {
	case f.wake <- struct{}{}:
	default:
	}
}

// Pending returns the raised bits without clearing them.
func (f *Flags) Pending() Set {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}

// Take returns and clears the raised bits without blocking.
func (f *Flags) Take() Set {
	f.mu.Lock()
	defer f.mu.Unlock()
	bits := f.pending
	f.pending = 0
	return bits
}

// Wait blocks until at least one bit is raised or ctx is done. It returns
// and clears every raised bit.
func (f *Flags) Wait(ctx context.Context) (Set, error) {
	for {
		if bits := f.Take(); bits != 0 {
			return bits, nil
		}
		select {
		case <-f.wake:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}
