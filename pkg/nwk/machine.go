package nwk

import (
	"errors"

	"github.com/google/uuid"

	"github.com/msn-network/msn-go/pkg/event"
	"github.com/msn-network/msn-go/pkg/mac"
)

// step advances the state machine by one phase.
func (n *Node) step(bits event.Set, msg mac.ManagementMessage) {
	switch n.State() {
	case StateInit:
		if bits.Has(evConnectRequest) && n.pending() != nil {
			n.beginAttempt()
			n.advance(StateScanActiveStart, "connect requested")
		}

	case StateScanActiveStart:
		if !acting(bits) {
			return
		}
		if err := n.scanActive(); err != nil {
			n.rejected(err)
			return
		}
		n.transition(StateScanActiveWaitConfirm, "")

	case StateScanActiveWaitConfirm:
		conf, err := expect[*mac.ScanConfirm](msg)
		if err != nil || conf.ScanType != mac.ScanActive {
			return
		}
		desc, ok := n.selectCandidate(conf)
		if !ok {
			n.joinFailed(ErrNoScanResults)
			return
		}
		n.candidate = &desc
		n.advance(StateAssociate, "coordinator found")

	case StateAssociate:
		if !acting(bits) {
			return
		}
		if err := n.associate(); err != nil {
			n.rejected(err)
			return
		}
		n.transition(StateAssociateWaitConfirm, "")

	case StateAssociateWaitConfirm:
		conf, err := expect[*mac.AssociateConfirm](msg)
		if err != nil {
			return
		}
		if conf.Status != mac.StatusSuccess {
			base := ErrPanAccessDenied
			if conf.Status == mac.StatusPanAtCapacity {
				base = ErrPanAtCapacity
			}
			n.joinFailed(statusError(base, conf.Status))
			return
		}
		n.joinedDevice(conf)

	case StateWaitInterval:
		if bits.Has(evRetryTimer) {
			n.metrics.JoinAttempt()
			n.advance(StateScanEdStart, "retry interval elapsed")
		}

	case StateScanEdStart:
		if !acting(bits) {
			return
		}
		if err := n.scanEnergy(); err != nil {
			n.rejected(err)
			return
		}
		n.transition(StateScanEdWaitConfirm, "")

	case StateScanEdWaitConfirm:
		conf, err := expect[*mac.ScanConfirm](msg)
		if err != nil || conf.ScanType != mac.ScanEnergyDetect {
			return
		}
		n.edChannel = n.selectChannel(conf)
		n.transition(StateStartCoordinator, "channel selected")
		n.flags.Set(evStartCoordinator)

	case StateStartCoordinator:
		if bits&(evStartCoordinator|evRetryTimer) == 0 {
			return
		}
		if err := n.startCoordinator(); err != nil {
			n.rejected(err)
			return
		}
		n.transition(StateStartCoordinatorWaitConfirm, "")

	case StateStartCoordinatorWaitConfirm:
		conf, err := expect[*mac.StartConfirm](msg)
		if err != nil {
			return
		}
		if conf.Status != mac.StatusSuccess {
			n.joinFailed(statusError(ErrStartFailed, conf.Status))
			return
		}
		n.formedPAN(conf)

	case StateListen:
		if msg != nil {
			n.handleManagement(msg)
			n.emit(ManagementEvent{Message: msg})
		}
		if bits.Has(evTransmitRequest) {
			n.dispatchTransmit()
		}
	}
}

// acting reports whether an action state may issue its request.
func acting(bits event.Set) bool {
	return bits&(evPhaseAdvance|evRetryTimer) != 0
}

// transition moves to next and records the change.
func (n *Node) transition(next ConnectionState, reason string) {
	n.mu.Lock()
	prev := n.state
	n.state = next
	n.mu.Unlock()

	if prev == next {
		return
	}
	n.metrics.Transition(next.String())
	n.captureState(prev, next, reason)
	n.debugLog("transition", "from", prev.String(), "to", next.String(), "reason", reason)
}

// advance transitions and wakes the dispatcher for the next action.
func (n *Node) advance(next ConnectionState, reason string) {
	n.transition(next, reason)
	n.flags.Set(evPhaseAdvance)
}

// beginAttempt tags the start of a join attempt.
func (n *Node) beginAttempt() {
	n.mu.Lock()
	n.attemptID = uuid.NewString()
	n.mu.Unlock()
	n.candidate = nil
	n.metrics.JoinAttempt()
}

// rejected handles a synchronous MAC rejection in an action state. The
// state is kept and re-attempted when the retry timer fires.
func (n *Node) rejected(err error) {
	n.captureError(err, n.State().String())
	n.logger.Warn("mac request rejected", "state", n.State().String(), "error", err)
	n.metrics.JoinFailure(failureReason(err))
	n.scheduleRetry(err, n.State())
}

// joinFailed funnels an attempt failure through the retry interval.
func (n *Node) joinFailed(err error) {
	n.captureError(err, n.State().String())
	n.logger.Info("join attempt failed", "state", n.State().String(), "error", err)
	n.metrics.JoinFailure(failureReason(err))
	n.scheduleRetry(err, StateWaitInterval)
}

// scheduleRetry arms the retry timer and moves to next, or abandons the
// connect once the retry policy is exhausted.
func (n *Node) scheduleRetry(cause error, next ConnectionState) {
	if n.retry.Exhausted() {
		n.giveUp(cause)
		return
	}
	delay := n.retry.Next()
	n.armRetryTimer(delay)
	n.transition(next, cause.Error())
	n.debugLog("retry scheduled", "delay", delay, "attempt", n.retry.Attempts())
}

// giveUp abandons the pending connect and returns to Init.
func (n *Node) giveUp(cause error) {
	n.stopRetryTimer()
	n.retry.Reset()

	n.mu.Lock()
	req := n.request
	n.request = nil
	n.attemptID = ""
	n.mu.Unlock()

	n.transition(StateInit, ErrRetriesExhausted.Error())
	n.logger.Warn("connect abandoned", "cause", cause)
	if req != nil {
		req.handler(ConnectFailedEvent{Err: errors.Join(ErrRetriesExhausted, cause)})
	}
}

// complete finishes the pending connect and enters Listen.
func (n *Node) complete(role Role, short mac.ShortAddress, pan mac.PanID, channel mac.Channel, msg mac.ManagementMessage) {
	n.stopRetryTimer()
	n.retry.Reset()

	n.mu.Lock()
	req := n.request
	n.request = nil
	n.role = role
	n.shortAddr = short
	n.panID = pan
	n.channel = channel
	n.connected = true
	if req != nil {
		n.handler = req.handler
	}
	n.mu.Unlock()

	n.transition(StateListen, "connected as "+role.String())
	n.metrics.Joined(role.String())
	n.logger.Info("connected",
		"role", role.String(),
		"shortAddr", short.String(),
		"panID", pan.String(),
		"channel", channel)

	if err := n.saveState(); err != nil {
		n.logger.Warn("state save failed", "error", err)
	}
	n.emit(ManagementEvent{Message: msg})
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrNoScanResults):
		return "no_scan_results"
	case errors.Is(err, ErrPanAtCapacity):
		return "pan_at_capacity"
	case errors.Is(err, ErrPanAccessDenied):
		return "pan_access_denied"
	case errors.Is(err, ErrStartFailed):
		return "start_failed"
	case errors.Is(err, ErrAllocationFailed):
		return "allocation_failed"
	case errors.Is(err, ErrInvalidParameter):
		return "invalid_parameter"
	default:
		return "other"
	}
}
