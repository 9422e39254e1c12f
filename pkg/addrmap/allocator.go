// Package addrmap allocates short addresses to devices associating with a
// PAN coordinator.
//
// Each assignable address is one bit of a fixed-width map: slot i hands out
// short address 1<<i. An allocation is first held as a single reservation
// while the association response is in flight; Commit moves it into the map
// once delivery is confirmed and Release drops it otherwise. Only one
// reservation exists at a time, which serializes concurrent joiners.
package addrmap

import (
	"errors"
	"fmt"
	"math/bits"
	"sort"
	"sync"

	"github.com/msn-network/msn-go/pkg/mac"
)

// Width limits.
const (
	// DefaultWidth is the number of assignable addresses of a coordinator.
	DefaultWidth = 4

	// MaxWidth keeps every slot address clear of 0xFFFE and 0xFFFF.
	MaxWidth = 15
)

var (
	ErrPanAtCapacity      = errors.New("no free short address")
	ErrReservationPending = errors.New("address reservation pending")
	ErrNoReservation      = errors.New("no address reservation")
	ErrNotAllocated       = errors.New("short address not allocated")
	ErrInvalidWidth       = errors.New("invalid address map width")
	ErrInvalidAddress     = errors.New("not an assignable short address")
)

// Reservation is an address offered to a device but not yet committed.
type Reservation struct {
	Address mac.ShortAddress
	Device  mac.ExtendedAddress

	// Reused is set when the device already held Address.
	Reused bool
}

// Peer is a committed address binding.
type Peer struct {
	Address mac.ShortAddress
	Device  mac.ExtendedAddress
}

// Allocator tracks committed short addresses and the pending reservation.
type Allocator struct {
	mu sync.RWMutex

	width     int
	committed uint16
	devices   map[mac.ShortAddress]mac.ExtendedAddress
	reserved  *Reservation
}

// New returns an allocator with width assignable addresses.
func New(width int) (*Allocator, error) {
	if width < 1 || width > MaxWidth {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWidth, width)
	}
	return &Allocator{
		width:   width,
		devices: make(map[mac.ShortAddress]mac.ExtendedAddress),
	}, nil
}

// Width returns the number of assignable addresses.
func (a *Allocator) Width() int {
	return a.width
}

// Allocate reserves an address for device. A device that already holds a
// committed address is offered the same one again. Otherwise the lowest free
// slot is reserved.
//
// Returns ErrReservationPending while another reservation is outstanding and
// ErrPanAtCapacity when every slot is committed.
func (a *Allocator) Allocate(device mac.ExtendedAddress) (Reservation, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.reserved != nil {
		return Reservation{}, ErrReservationPending
	}

	for addr, dev := range a.devices {
		if dev == device {
			a.reserved = &Reservation{Address: addr, Device: device, Reused: true}
			return *a.reserved, nil
		}
	}

	free := ^a.committed & a.fullMask()
	if free == 0 {
		return Reservation{}, ErrPanAtCapacity
	}
	slot := bits.TrailingZeros16(free)
	a.reserved = &Reservation{Address: mac.ShortAddress(1) << slot, Device: device}
	return *a.reserved, nil
}

// Reserved returns the pending reservation, if any.
func (a *Allocator) Reserved() (Reservation, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.reserved == nil {
		return Reservation{}, false
	}
	return *a.reserved, true
}

// Commit binds the reserved address to its device and clears the
// reservation.
func (a *Allocator) Commit() (Peer, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.reserved == nil {
		return Peer{}, ErrNoReservation
	}
	r := *a.reserved
	a.reserved = nil
	a.committed |= uint16(r.Address)
	a.devices[r.Address] = r.Device
	return Peer{Address: r.Address, Device: r.Device}, nil
}

// Release drops the reservation without committing it. A reused address
// stays bound to its device.
func (a *Allocator) Release() (Reservation, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.reserved == nil {
		return Reservation{}, false
	}
	r := *a.reserved
	a.reserved = nil
	return r, true
}

// Free unbinds a committed address.
func (a *Allocator) Free(addr mac.ShortAddress) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.validLocked(addr) || a.committed&uint16(addr) == 0 {
		return fmt.Errorf("%w: %s", ErrNotAllocated, addr)
	}
	a.committed &^= uint16(addr)
	delete(a.devices, addr)
	return nil
}

// FreeDevice unbinds whatever address device holds. It returns the freed
// address and false when the device held none.
func (a *Allocator) FreeDevice(device mac.ExtendedAddress) (mac.ShortAddress, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for addr, dev := range a.devices {
		if dev == device {
			a.committed &^= uint16(addr)
			delete(a.devices, addr)
			return addr, true
		}
	}
	return 0, false
}

// Committed returns the committed address bitmap.
func (a *Allocator) Committed() uint16 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.committed
}

// Count returns the number of committed addresses.
func (a *Allocator) Count() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return bits.OnesCount16(a.committed)
}

// Full reports whether every slot is committed.
func (a *Allocator) Full() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.committed == a.fullMask()
}

// Peers returns the committed bindings ordered by address.
func (a *Allocator) Peers() []Peer {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]Peer, 0, len(a.devices))
	for addr, dev := range a.devices {
		out = append(out, Peer{Address: addr, Device: dev})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// Restore replaces the committed bindings, for example after a restart.
// The pending reservation is dropped.
func (a *Allocator) Restore(peers []Peer) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var committed uint16
	devices := make(map[mac.ShortAddress]mac.ExtendedAddress, len(peers))
	for _, p := range peers {
		if !a.validLocked(p.Address) {
			return fmt.Errorf("%w: %s", ErrInvalidAddress, p.Address)
		}
		if committed&uint16(p.Address) != 0 {
			return fmt.Errorf("duplicate peer address %s", p.Address)
		}
		committed |= uint16(p.Address)
		devices[p.Address] = p.Device
	}
	a.committed = committed
	a.devices = devices
	a.reserved = nil
	return nil
}

func (a *Allocator) fullMask() uint16 {
	return uint16(1)<<a.width - 1
}

func (a *Allocator) validLocked(addr mac.ShortAddress) bool {
	return bits.OnesCount16(uint16(addr)) == 1 && uint16(addr)&a.fullMask() != 0
}
