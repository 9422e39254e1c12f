package nwk

import (
	"errors"

	"github.com/msn-network/msn-go/pkg/mac"
	"github.com/msn-network/msn-go/pkg/txslot"
)

// handleData processes one data message. Messages arriving before the
// node connected are dropped.
func (n *Node) handleData(msg mac.DataMessage) {
	switch m := msg.(type) {
	case *mac.DataConfirm:
		req, ok := n.slot.OnConfirm(m)
		if !ok {
			n.debugLog("data confirm: no matching transmission", "handle", m.Handle)
			n.emit(DataEvent{Message: m})
			return
		}
		n.metrics.Transmission(m.Status.String())
		n.captureSlot(req, "IN_FLIGHT", "FREE", m.Status.String())
		n.emit(DataEvent{Message: m})

	case *mac.DataIndication:
		payload, err := n.framer.Open(m.Msdu)
		if err != nil {
			n.metrics.FrameDropped("corrupt")
			n.captureError(err, "open frame from "+m.SrcAddr.String())
			n.debugLog("data indication: dropped", "src", m.SrcAddr.String(), "error", err)
			return
		}
		if !n.Connected() {
			n.metrics.FrameDropped("not_connected")
			return
		}
		n.metrics.FrameReceived()
		n.emit(DataEvent{Message: m, Payload: payload})

	default:
		n.emit(DataEvent{Message: msg})
	}
}

// dispatchTransmit hands the submitted payload to the MAC. A request the
// MAC refuses frees the slot and is reported to the handler.
func (n *Node) dispatchTransmit() {
	req, err := n.slot.Dispatch(n.ShortAddress(), n.PanID())
	switch {
	case err == nil:
		n.captureSlot(req, "SUBMITTED", "IN_FLIGHT", "")
		return
	case errors.Is(err, txslot.ErrNoRequest), errors.Is(err, txslot.ErrInFlight):
		return
	}

	err = macError("data", err)
	n.metrics.Transmission("rejected")
	n.captureSlot(req, "SUBMITTED", "FREE", err.Error())
	n.logger.Warn("transmission rejected", "dest", req.Dest.String(), "error", err)
	n.emit(TransmitFailedEvent{Dest: req.Dest, Err: err})
}
