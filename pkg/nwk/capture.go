package nwk

import (
	"github.com/msn-network/msn-go/pkg/log"
	"github.com/msn-network/msn-go/pkg/mac"
	"github.com/msn-network/msn-go/pkg/txslot"
)

// capturingService records every request before passing it to the MAC.
type capturingService struct {
	next mac.Service
	node *Node
}

var _ mac.Service = (*capturingService)(nil)

func (s *capturingService) Scan(req mac.ScanRequest) error {
	s.node.captureRequest(req)
	return s.next.Scan(req)
}

func (s *capturingService) SetPIB(attr mac.PIBAttribute, value any) error {
	s.node.captureRequest(log.SetRequest{Attribute: attr, Value: value})
	return s.next.SetPIB(attr, value)
}

func (s *capturingService) Associate(req mac.AssociateRequest) error {
	s.node.captureRequest(req)
	return s.next.Associate(req)
}

func (s *capturingService) RespondAssociate(resp mac.AssociateResponse) error {
	s.node.captureRequest(resp)
	return s.next.RespondAssociate(resp)
}

func (s *capturingService) Start(req mac.StartRequest) error {
	s.node.captureRequest(req)
	return s.next.Start(req)
}

func (s *capturingService) Data(req mac.DataRequest) error {
	s.node.captureRequest(req)
	return s.next.Data(req)
}

// newEvent returns an event stamped with the node's current identity.
func (n *Node) newEvent(layer log.Layer, category log.Category) log.Event {
	n.mu.RLock()
	defer n.mu.RUnlock()

	ev := log.Event{
		Timestamp: n.clock.Now(),
		NodeID:    n.identity.ExtendedAddress.String(),
		AttemptID: n.attemptID,
		Layer:     layer,
		Category:  category,
		LocalRole: logRole(n.role),
	}
	if n.panID != mac.UnassignedPanID {
		ev.PanID = n.panID
	}
	if n.shortAddr.Assigned() {
		ev.ShortAddress = n.shortAddr
	}
	return ev
}

func (n *Node) captureRequest(req any) {
	layer, p := log.DescribeRequest(req)
	if p == nil {
		return
	}
	ev := n.newEvent(layer, log.CategoryPrimitive)
	ev.Direction = log.DirectionOut
	ev.Primitive = p
	n.plog.Log(ev)
}

func (n *Node) captureMessage(msg mac.Message) {
	layer, p := log.DescribeMessage(msg)
	ev := n.newEvent(layer, log.CategoryPrimitive)
	ev.Direction = log.DirectionIn
	ev.Primitive = p
	n.plog.Log(ev)
}

func (n *Node) captureState(prev, next ConnectionState, reason string) {
	ev := n.newEvent(log.LayerNWK, log.CategoryState)
	ev.StateChange = &log.StateChangeEvent{
		Entity:   log.StateEntityConnection,
		OldState: prev.String(),
		NewState: next.String(),
		Reason:   reason,
	}
	n.plog.Log(ev)
}

func (n *Node) capturePeer(addr mac.ShortAddress, dev mac.ExtendedAddress, prev, next, reason string) {
	ev := n.newEvent(log.LayerNWK, log.CategoryState)
	if reason == "" {
		reason = dev.String()
	} else {
		reason = dev.String() + " " + reason
	}
	ev.StateChange = &log.StateChangeEvent{
		Entity:   log.StateEntityPeer,
		OldState: prev,
		NewState: next + " " + addr.String(),
		Reason:   reason,
	}
	n.plog.Log(ev)
}

func (n *Node) captureSlot(req txslot.Request, prev, next, reason string) {
	ev := n.newEvent(log.LayerNWK, log.CategoryState)
	ev.StateChange = &log.StateChangeEvent{
		Entity:   log.StateEntitySlot,
		OldState: prev,
		NewState: next,
		Reason:   "dest " + req.Dest.String() + reasonSuffix(reason),
	}
	n.plog.Log(ev)
}

func (n *Node) captureError(err error, context string) {
	ev := n.newEvent(log.LayerNWK, log.CategoryError)
	ev.Error = &log.ErrorEventData{
		Layer:   log.LayerNWK,
		Message: err.Error(),
		Context: context,
	}
	n.plog.Log(ev)
}

func reasonSuffix(reason string) string {
	if reason == "" {
		return ""
	}
	return ": " + reason
}

func logRole(r Role) log.Role {
	switch r {
	case RoleDevice:
		return log.RoleDevice
	case RoleCoordinator:
		return log.RoleCoordinator
	default:
		return log.RoleNone
	}
}
