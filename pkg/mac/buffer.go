package mac

import "sync"

// Buffer ties a delivered message to the MAC-owned storage it occupies.
// Every message dequeued from a Sink must be released exactly once; later
// calls are no-ops.
type Buffer struct {
	once sync.Once
	free func()
}

// NewBuffer returns a Buffer that calls free on first Release. A nil free
// produces a buffer whose Release does nothing.
func NewBuffer(free func()) *Buffer {
	return &Buffer{free: free}
}

// Release returns the buffer to its owner.
func (b *Buffer) Release() {
	if b == nil {
		return
	}
	b.once.Do(func() {
		if b.free != nil {
			b.free()
		}
	})
}
