// Package inbox adapts the MAC's asynchronous delivery paths to the network
// layer's single dispatcher goroutine.
//
// An Adapter implements mac.Sink. Each delivery is appended to one of two
// FIFO queues (management or data) and raises the matching event bit. The
// dispatcher pops at most one message per queue per wake; Pop re-raises the
// bit while the queue still holds messages so nothing is starved.
package inbox

import (
	"sync"

	"github.com/msn-network/msn-go/pkg/event"
	"github.com/msn-network/msn-go/pkg/mac"
)

// Config selects the event bits an Adapter raises and its queue limit.
type Config struct {
	// ManagementBit is raised when a management message is queued.
	ManagementBit event.Set

	// DataBit is raised when a data message is queued.
	DataBit event.Set

	// Depth bounds each queue. Zero means unbounded.
	Depth int
}

// Adapter is a thread-safe two-queue mac.Sink.
type Adapter struct {
	flags  *event.Flags
	mgmtID event.Set
	dataID event.Set
	depth  int

	mu   sync.Mutex
	mgmt []mac.ManagementMessage
	data []mac.DataMessage

	onDepth func(mgmt, data int)
}

var _ mac.Sink = (*Adapter)(nil)

// New returns an adapter raising bits on flags.
func New(flags *event.Flags, cfg Config) *Adapter {
	return &Adapter{
		flags:  flags,
		mgmtID: cfg.ManagementBit,
		dataID: cfg.DataBit,
		depth:  cfg.Depth,
	}
}

// OnDepthChange registers a callback invoked with both queue lengths after
// every enqueue and dequeue. It must not call back into the adapter.
func (a *Adapter) OnDepthChange(fn func(mgmt, data int)) {
	a.mu.Lock()
	a.onDepth = fn
	a.mu.Unlock()
}

// Flags returns the event flags the adapter signals.
func (a *Adapter) Flags() *event.Flags {
	return a.flags
}

// DeliverManagement queues a management message. It returns mac.ErrQueueFull
// when the queue is at its depth limit; the caller keeps the buffer.
func (a *Adapter) DeliverManagement(msg mac.ManagementMessage) error {
	if msg == nil {
		return mac.ErrInvalidParameter
	}
	a.mu.Lock()
	if a.depth > 0 && len(a.mgmt) >= a.depth {
		a.mu.Unlock()
		return mac.ErrQueueFull
	}
	a.mgmt = append(a.mgmt, msg)
	a.notifyLocked()
	a.mu.Unlock()

	a.flags.Set(a.mgmtID)
	return nil
}

// DeliverData queues a data message. It returns mac.ErrQueueFull when the
// queue is at its depth limit; the caller keeps the buffer.
func (a *Adapter) DeliverData(msg mac.DataMessage) error {
	if msg == nil {
		return mac.ErrInvalidParameter
	}
	a.mu.Lock()
	if a.depth > 0 && len(a.data) >= a.depth {
		a.mu.Unlock()
		return mac.ErrQueueFull
	}
	a.data = append(a.data, msg)
	a.notifyLocked()
	a.mu.Unlock()

	a.flags.Set(a.dataID)
	return nil
}

// PopManagement removes the oldest management message, or returns nil.
func (a *Adapter) PopManagement() mac.ManagementMessage {
	a.mu.Lock()
	if len(a.mgmt) == 0 {
		a.mu.Unlock()
		return nil
	}
	msg := a.mgmt[0]
	a.mgmt[0] = nil
	a.mgmt = a.mgmt[1:]
	more := len(a.mgmt) > 0
	a.notifyLocked()
	a.mu.Unlock()

	if more {
		a.flags.Set(a.mgmtID)
	}
	return msg
}

// PopData removes the oldest data message, or returns nil.
func (a *Adapter) PopData() mac.DataMessage {
	a.mu.Lock()
	if len(a.data) == 0 {
		a.mu.Unlock()
		return nil
	}
	msg := a.data[0]
	a.data[0] = nil
	a.data = a.data[1:]
	more := len(a.data) > 0
	a.notifyLocked()
	a.mu.Unlock()

	if more {
		a.flags.Set(a.dataID)
	}
	return msg
}

// PendingManagement returns the number of queued management messages.
func (a *Adapter) PendingManagement() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.mgmt)
}

// PendingData returns the number of queued data messages.
func (a *Adapter) PendingData() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.data)
}

// Drain releases and discards every queued message. It returns the number
// of messages released.
func (a *Adapter) Drain() int {
	a.mu.Lock()
	mgmt, data := a.mgmt, a.data
	a.mgmt, a.data = nil, nil
	a.notifyLocked()
	a.mu.Unlock()

	for _, m := range mgmt {
		m.Release()
	}
	for _, m := range data {
		m.Release()
	}
	return len(mgmt) + len(data)
}

func (a *Adapter) notifyLocked() {
	if a.onDepth != nil {
		a.onDepth(len(a.mgmt), len(a.data))
	}
}
