package nwk

import (
	"errors"

	"github.com/msn-network/msn-go/pkg/addrmap"
	"github.com/msn-network/msn-go/pkg/mac"
	"github.com/msn-network/msn-go/pkg/metrics"
)

// handleManagement processes a management message received in Listen.
func (n *Node) handleManagement(msg mac.ManagementMessage) {
	if !n.IsCoordinator() {
		return
	}
	switch m := msg.(type) {
	case *mac.AssociateIndication:
		n.onAssociateIndication(m)
	case *mac.CommStatusIndication:
		n.onCommStatus(m)
	case *mac.DisassociateIndication:
		n.onDisassociate(m)
	}
}

// onAssociateIndication answers a joining device. While a response is in
// flight further indications are ignored; a full PAN is denied explicitly.
func (n *Node) onAssociateIndication(ind *mac.AssociateIndication) {
	r, err := n.alloc.Allocate(ind.DeviceAddress)
	switch {
	case errors.Is(err, addrmap.ErrReservationPending):
		n.metrics.AssociationResult(metrics.AssocIgnored)
		n.debugLog("associate indication: reservation pending, ignored", "device", ind.DeviceAddress.String())
		return

	case errors.Is(err, addrmap.ErrPanAtCapacity):
		n.metrics.AssociationResult(metrics.AssocCapacity)
		n.logger.Info("associate indication: pan at capacity", "device", ind.DeviceAddress.String())
		if err := n.mac.RespondAssociate(mac.AssociateResponse{
			DeviceAddress:     ind.DeviceAddress,
			AssocShortAddress: mac.NoShortAddress,
			Status:            mac.StatusPanAtCapacity,
		}); err != nil {
			n.captureError(macError("associate response", err), "pan at capacity")
		}
		return

	case err != nil:
		n.captureError(err, "allocate")
		return
	}

	err = n.mac.RespondAssociate(mac.AssociateResponse{
		DeviceAddress:     ind.DeviceAddress,
		AssocShortAddress: r.Address,
		Status:            mac.StatusSuccess,
	})
	if err != nil {
		n.alloc.Release()
		n.metrics.AssociationResult(metrics.AssocRejected)
		n.captureError(macError("associate response", err), "reserve "+r.Address.String())
		n.logger.Warn("associate response rejected", "device", ind.DeviceAddress.String(), "error", err)
		return
	}
	n.metrics.AssociationResult(metrics.AssocGranted)
	n.debugLog("associate indication: address reserved",
		"device", ind.DeviceAddress.String(),
		"shortAddr", r.Address.String(),
		"reused", r.Reused)
}

// onCommStatus commits the reservation when the response reached its
// device and releases it otherwise.
func (n *Node) onCommStatus(ind *mac.CommStatusIndication) {
	r, ok := n.alloc.Reserved()
	if !ok || ind.DestAddress != r.Device {
		return
	}

	if ind.Status != mac.StatusSuccess {
		n.alloc.Release()
		n.capturePeer(r.Address, r.Device, "RESERVED", "RELEASED", ind.Status.String())
		n.logger.Info("association response not delivered",
			"device", r.Device.String(),
			"shortAddr", r.Address.String(),
			"status", ind.Status.String())
		return
	}

	peer, err := n.alloc.Commit()
	if err != nil {
		n.captureError(err, "commit")
		return
	}
	if _, known := n.joinedAt[peer.Address]; !known || !r.Reused {
		n.joinedAt[peer.Address] = n.clock.Now()
	}
	n.capturePeer(peer.Address, peer.Device, "RESERVED", "COMMITTED", "")
	n.metrics.SetPeers(n.alloc.Count())
	n.logger.Info("peer joined", "device", peer.Device.String(), "shortAddr", peer.Address.String())

	if err := n.saveState(); err != nil {
		n.logger.Warn("state save failed", "error", err)
	}
}

// onDisassociate frees the address a leaving device held.
func (n *Node) onDisassociate(ind *mac.DisassociateIndication) {
	addr, ok := n.alloc.FreeDevice(ind.DeviceAddress)
	if !ok {
		return
	}
	delete(n.joinedAt, addr)
	n.capturePeer(addr, ind.DeviceAddress, "COMMITTED", "FREED", "disassociated")
	n.metrics.SetPeers(n.alloc.Count())
	n.logger.Info("peer left", "device", ind.DeviceAddress.String(), "shortAddr", addr.String())

	if err := n.saveState(); err != nil {
		n.logger.Warn("state save failed", "error", err)
	}
}
