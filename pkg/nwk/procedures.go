package nwk

import (
	"github.com/msn-network/msn-go/pkg/mac"
)

// scanActive requests an active scan of the connect channel.
func (n *Node) scanActive() error {
	req := n.pending()
	if req == nil {
		return ErrClosed
	}
	err := n.mac.Scan(mac.ScanRequest{
		Type:     mac.ScanActive,
		Channels: mac.MaskOf(req.channel),
		Duration: n.cfg.ScanDuration,
	})
	return macError("active scan", err)
}

// selectCandidate picks the coordinator to associate with: a non-beacon
// PAN with the requested id that permits association. Later matches
// replace earlier ones.
func (n *Node) selectCandidate(conf *mac.ScanConfirm) (mac.PanDescriptor, bool) {
	req := n.pending()
	if req == nil || conf.Status != mac.StatusSuccess {
		return mac.PanDescriptor{}, false
	}

	var (
		found mac.PanDescriptor
		ok    bool
	)
	for _, d := range conf.PanDescriptors {
		if d.CoordPanID != req.panID || !d.NonBeacon() || !d.Superframe.AssociationPermit {
			continue
		}
		found, ok = d, true
	}
	return found, ok
}

// associate sends the association request to the stored candidate.
func (n *Node) associate() error {
	req := n.pending()
	if req == nil {
		return ErrClosed
	}
	if n.candidate == nil {
		return ErrNoScanResults
	}
	if err := n.mac.SetPIB(mac.PIBRxOnWhenIdle, true); err != nil {
		return macError("set rx on when idle", err)
	}

	c := n.candidate
	err := n.mac.Associate(mac.AssociateRequest{
		CoordAddrMode:   c.CoordAddrMode,
		CoordAddress:    c.CoordAddress,
		CoordExtAddress: c.CoordExtAddress,
		CoordPanID:      c.CoordPanID,
		LogicalChannel:  c.LogicalChannel,
		CapabilityInfo:  mac.CapAllocAddress,
	})
	return macError("associate", err)
}

// joinedDevice completes a connect as a device of the candidate's PAN.
func (n *Node) joinedDevice(conf *mac.AssociateConfirm) {
	req := n.pending()
	if req == nil || n.candidate == nil {
		return
	}
	n.complete(RoleDevice, conf.AssocShortAddress, req.panID, n.candidate.LogicalChannel, conf)
}

// scanEnergy requests an energy detect scan of the connect channel and any
// configured extra channels.
func (n *Node) scanEnergy() error {
	req := n.pending()
	if req == nil {
		return ErrClosed
	}
	err := n.mac.Scan(mac.ScanRequest{
		Type:     mac.ScanEnergyDetect,
		Channels: mac.MaskOf(req.channel) | n.cfg.EnergyScanChannels,
		Duration: n.cfg.ScanDuration,
	})
	return macError("energy scan", err)
}

// selectChannel returns the quietest measured channel. Ties prefer the
// connect channel, then the lowest channel number. Without usable results
// the connect channel is kept.
func (n *Node) selectChannel(conf *mac.ScanConfirm) mac.Channel {
	var requested mac.Channel
	if req := n.pending(); req != nil {
		requested = req.channel
	}

	best := requested
	bestLevel := -1
	for _, r := range conf.EnergyDetect {
		if !r.Channel.Valid() {
			continue
		}
		level := int(r.Level)
		switch {
		case bestLevel < 0, level < bestLevel:
			best, bestLevel = r.Channel, level
		case level == bestLevel && best != requested && (r.Channel == requested || r.Channel < best):
			best = r.Channel
		}
	}
	n.debugLog("energy scan result", "channel", best, "level", bestLevel)
	return best
}

// startCoordinator configures the PIB and starts a non-beacon PAN on the
// selected channel.
func (n *Node) startCoordinator() error {
	req := n.pending()
	if req == nil {
		return ErrClosed
	}
	if err := n.mac.SetPIB(mac.PIBShortAddress, n.cfg.CoordinatorShortAddress); err != nil {
		return macError("set short address", err)
	}
	if err := n.mac.SetPIB(mac.PIBAssociationPermit, true); err != nil {
		return macError("set association permit", err)
	}
	err := n.mac.Start(mac.StartRequest{
		PanID:           req.panID,
		LogicalChannel:  n.edChannel,
		BeaconOrder:     mac.NonBeaconOrder,
		SuperframeOrder: mac.NonBeaconOrder,
		PanCoordinator:  true,
	})
	return macError("start", err)
}

// formedPAN completes a connect as coordinator of the requested PAN.
func (n *Node) formedPAN(conf *mac.StartConfirm) {
	req := n.pending()
	if req == nil {
		return
	}
	n.complete(RoleCoordinator, n.cfg.CoordinatorShortAddress, req.panID, n.edChannel, conf)
}
