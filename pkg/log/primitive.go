package log

import (
	"fmt"

	"github.com/msn-network/msn-go/pkg/mac"
)

// Request primitive names.
const (
	PrimScanRequest       = "MLME-SCAN.request"
	PrimSetRequest        = "MLME-SET.request"
	PrimAssociateRequest  = "MLME-ASSOCIATE.request"
	PrimAssociateResponse = "MLME-ASSOCIATE.response"
	PrimStartRequest      = "MLME-START.request"
	PrimDataRequest       = "MCPS-DATA.request"
)

// DescribeRequest returns the capture layer and primitive for a request
// issued to the MAC. Unknown values yield a nil primitive.
func DescribeRequest(req any) (Layer, *PrimitiveEvent) {
	switch r := req.(type) {
	case mac.ScanRequest:
		return LayerMLME, &PrimitiveEvent{
			Name:   PrimScanRequest,
			Detail: fmt.Sprintf("type=%s channels=%v duration=%d", r.Type, r.Channels.Channels(), r.Duration),
		}
	case mac.AssociateRequest:
		return LayerMLME, &PrimitiveEvent{
			Name:    PrimAssociateRequest,
			Channel: r.LogicalChannel,
			Peer:    r.CoordAddress.String(),
			Detail:  fmt.Sprintf("pan=%s capability=0x%02X", r.CoordPanID, uint8(r.CapabilityInfo)),
		}
	case mac.AssociateResponse:
		return LayerMLME, &PrimitiveEvent{
			Name:   PrimAssociateResponse,
			Status: r.Status.String(),
			Peer:   r.DeviceAddress.String(),
			Detail: fmt.Sprintf("assoc_short=%s", r.AssocShortAddress),
		}
	case mac.StartRequest:
		return LayerMLME, &PrimitiveEvent{
			Name:    PrimStartRequest,
			Channel: r.LogicalChannel,
			Detail:  fmt.Sprintf("pan=%s bo=%d so=%d coordinator=%t", r.PanID, r.BeaconOrder, r.SuperframeOrder, r.PanCoordinator),
		}
	case mac.DataRequest:
		handle := r.Handle
		p := &PrimitiveEvent{
			Name:   PrimDataRequest,
			Peer:   r.DstAddr.String(),
			Handle: &handle,
		}
		p.SetData(r.Msdu)
		return LayerMCPS, p
	case SetRequest:
		return LayerMLME, &PrimitiveEvent{
			Name:   PrimSetRequest,
			Detail: fmt.Sprintf("%s=%v", r.Attribute, r.Value),
		}
	default:
		return LayerNWK, nil
	}
}

// SetRequest describes a PIB write for capture.
type SetRequest struct {
	Attribute mac.PIBAttribute
	Value     any
}

// DescribeMessage returns the capture layer and primitive for a message
// delivered by the MAC.
func DescribeMessage(msg mac.Message) (Layer, *PrimitiveEvent) {
	p := &PrimitiveEvent{Name: msg.Type().String()}
	layer := LayerMLME

	switch m := msg.(type) {
	case *mac.BeaconNotifyIndication:
		p.Channel = m.PanDescriptor.LogicalChannel
		p.Peer = m.PanDescriptor.CoordAddress.String()
		p.Detail = fmt.Sprintf("bsn=%d pan=%s permit=%t", m.BSN, m.PanDescriptor.CoordPanID, m.PanDescriptor.Superframe.AssociationPermit)
		p.SetData(m.Payload)
	case *mac.ScanConfirm:
		p.Status = m.Status.String()
		p.Detail = fmt.Sprintf("type=%s descriptors=%d energy=%d", m.ScanType, len(m.PanDescriptors), len(m.EnergyDetect))
	case *mac.AssociateIndication:
		p.Peer = m.DeviceAddress.String()
		p.Detail = fmt.Sprintf("capability=0x%02X", uint8(m.CapabilityInfo))
	case *mac.AssociateConfirm:
		p.Status = m.Status.String()
		p.Detail = fmt.Sprintf("assoc_short=%s", m.AssocShortAddress)
	case *mac.CommStatusIndication:
		p.Status = m.Status.String()
		p.Peer = m.DestAddress.String()
	case *mac.StartConfirm:
		p.Status = m.Status.String()
	case *mac.DisassociateIndication:
		p.Peer = m.DeviceAddress.String()
		p.Detail = fmt.Sprintf("reason=%d", m.Reason)
	case *mac.SetConfirm:
		p.Status = m.Status.String()
		p.Detail = m.Attribute.String()
	case *mac.DataConfirm:
		layer = LayerMCPS
		handle := m.Handle
		p.Status = m.Status.String()
		p.Handle = &handle
	case *mac.DataIndication:
		layer = LayerMCPS
		p.Peer = m.SrcAddr.String()
		p.Detail = fmt.Sprintf("lqi=%d dsn=%d", m.LinkQuality, m.DSN)
		p.SetData(m.Msdu)
	case *mac.PurgeConfirm:
		layer = LayerMCPS
		handle := m.Handle
		p.Status = m.Status.String()
		p.Handle = &handle
	}
	return layer, p
}
