package nwk

import (
	"context"
	"time"

	"github.com/msn-network/msn-go/pkg/event"
	"github.com/msn-network/msn-go/pkg/mac"
)

// run is the dispatcher loop. It is the only goroutine driving the state
// machine.
func (n *Node) run(ctx context.Context) {
	defer func() {
		n.closeErr = n.teardown()
		if n.closeErr != nil {
			n.logger.Warn("close: teardown failed", "error", n.closeErr)
		}
		close(n.done)
	}()
	for {
		bits, err := n.flags.Wait(ctx)
		if err != nil {
			return
		}
		n.iterate(bits)
	}
}

// runOnce runs one dispatcher iteration over the raised bits without
// blocking. It reports whether any bit was raised.
func (n *Node) runOnce() bool {
	bits := n.flags.Take()
	if bits == 0 {
		return false
	}
	n.iterate(bits)
	return true
}

// iterate handles one wake: at most one management message with the state
// step, then at most one data message. Every dequeued message is released.
func (n *Node) iterate(bits event.Set) {
	bits = n.filterRetryTimer(bits)

	var msg mac.ManagementMessage
	if bits.Has(evManagement) {
		if msg = n.in.PopManagement(); msg != nil {
			n.captureMessage(msg)
			n.precheck(msg)
		}
	}

	n.step(bits, msg)

	if msg != nil {
		n.release(msg)
	}

	if bits.Has(evData) {
		if dm := n.in.PopData(); dm != nil {
			n.captureMessage(dm)
			n.handleData(dm)
			n.release(dm)
		}
	}
}

func (n *Node) release(msg mac.Message) {
	msg.Release()
	n.metrics.Released()
}

// precheck inspects a management message before phase dispatch.
func (n *Node) precheck(msg mac.ManagementMessage) {
	if b, ok := msg.(*mac.BeaconNotifyIndication); ok {
		n.debugLog("precheck: beacon",
			"panID", b.PanDescriptor.CoordPanID.String(),
			"channel", b.PanDescriptor.LogicalChannel,
			"coord", b.PanDescriptor.CoordAddress.String(),
			"permit", b.PanDescriptor.Superframe.AssociationPermit,
			"payload", len(b.Payload))
	}
}

// expect returns msg as T, ErrNoMessage when msg is nil and ErrWrongConfirm
// when it is of another kind.
func expect[T mac.ManagementMessage](msg mac.ManagementMessage) (T, error) {
	var zero T
	if msg == nil {
		return zero, ErrNoMessage
	}
	m, ok := msg.(T)
	if !ok {
		return zero, ErrWrongConfirm
	}
	return m, nil
}

// armRetryTimer schedules evRetryTimer after d, replacing any armed timer.
func (n *Node) armRetryTimer(d time.Duration) {
	n.timerMu.Lock()
	defer n.timerMu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
	}
	n.timerGen++
	gen := n.timerGen
	n.timer = n.clock.AfterFunc(d, func() {
		n.firedGen.Store(gen)
		n.flags.Set(evRetryTimer)
	})
}

func (n *Node) stopRetryTimer() {
	n.timerMu.Lock()
	defer n.timerMu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.timerGen++
}

// filterRetryTimer drops an evRetryTimer raised by a replaced or stopped
// timer.
func (n *Node) filterRetryTimer(bits event.Set) event.Set {
	if !bits.Has(evRetryTimer) {
		return bits
	}
	n.timerMu.Lock()
	defer n.timerMu.Unlock()

	if n.timer == nil || n.firedGen.Load() != n.timerGen {
		return bits &^ evRetryTimer
	}
	n.timer = nil
	return bits
}

func (n *Node) debugLog(msg string, args ...any) {
	n.logger.Debug(msg, args...)
}
