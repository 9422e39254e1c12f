package secure

import (
	"errors"
	"fmt"
)

var (
	// ErrMaxSizeExceeded is returned by Seal when the framed payload would
	// not fit into one frame.
	ErrMaxSizeExceeded = errors.New("payload exceeds maximum frame size")

	// ErrCorruptData is returned by Open for truncated frames or frames
	// whose checksum does not match.
	ErrCorruptData = errors.New("corrupt frame")

	// ErrInvalidKey is returned for network keys of the wrong length.
	ErrInvalidKey = errors.New("invalid network key")
)

// Framer seals outgoing payloads and opens incoming frames.
type Framer interface {
	// Seal returns the frame carrying payload.
	Seal(payload []byte) ([]byte, error)

	// Open returns the payload carried by frame.
	Open(frame []byte) ([]byte, error)

	// Overhead returns the number of bytes Seal adds to a payload.
	Overhead() int
}

// NopFramer passes payloads through, enforcing only the frame size.
type NopFramer struct {
	// MaxFrame is the largest frame Seal produces. Zero disables the check.
	MaxFrame int
}

// Seal returns a copy of payload.
func (f NopFramer) Seal(payload []byte) ([]byte, error) {
	if f.MaxFrame > 0 && len(payload) > f.MaxFrame {
		return nil, fmt.Errorf("%w: %d > %d", ErrMaxSizeExceeded, len(payload), f.MaxFrame)
	}
	return append([]byte(nil), payload...), nil
}

// Open returns a copy of frame.
func (NopFramer) Open(frame []byte) ([]byte, error) {
	return append([]byte(nil), frame...), nil
}

// Overhead returns 0.
func (NopFramer) Overhead() int { return 0 }

// MaxPayload returns the largest payload f accepts within maxFrame bytes.
func MaxPayload(f Framer, maxFrame int) int {
	if f == nil {
		return maxFrame
	}
	n := maxFrame - f.Overhead()
	if n < 0 {
		return 0
	}
	return n
}
