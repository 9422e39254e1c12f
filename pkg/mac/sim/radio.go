package sim

import (
	"fmt"

	"github.com/msn-network/msn-go/pkg/mac"
)

// Radio is one node's MAC on a Medium. All state is guarded by the
// medium's lock.
type Radio struct {
	medium *Medium
	sink   mac.Sink
	queue  *deliveryQueue

	ext          mac.ExtendedAddress
	hasExt       bool
	short        mac.ShortAddress
	pan          mac.PanID
	channel      mac.Channel
	rxOnWhenIdle bool
	permit       bool
	started      bool
	coordinator  *Radio
	detached     bool
	dsn          uint8
	bsn          uint8

	// pending holds devices whose association request awaits a response.
	pending map[mac.ExtendedAddress]*Radio
}

var _ mac.Service = (*Radio)(nil)

func newRadio(m *Medium, sink mac.Sink) *Radio {
	return &Radio{
		medium:  m,
		sink:    sink,
		queue:   newDeliveryQueue(m.clock, m.latency),
		short:   mac.UnassignedShortAddress,
		pan:     mac.UnassignedPanID,
		pending: make(map[mac.ExtendedAddress]*Radio),
	}
}

// ExtendedAddress returns the radio's extended address.
func (r *Radio) ExtendedAddress() mac.ExtendedAddress {
	r.medium.mu.Lock()
	defer r.medium.mu.Unlock()
	return r.ext
}

// ShortAddress returns the radio's short address.
func (r *Radio) ShortAddress() mac.ShortAddress {
	r.medium.mu.Lock()
	defer r.medium.mu.Unlock()
	return r.short
}

// Coordinator reports whether the radio started a PAN.
func (r *Radio) Coordinator() bool {
	r.medium.mu.Lock()
	defer r.medium.mu.Unlock()
	return r.started
}

// joined reports whether the radio takes part in a PAN.
func (r *Radio) joined() bool {
	return r.started || r.coordinator != nil
}

// Scan runs an active or energy-detect scan over the requested channels.
func (r *Radio) Scan(req mac.ScanRequest) error {
	if req.Channels == 0 || !req.Channels.Valid() {
		return fmt.Errorf("%w: channel mask 0x%08X", mac.ErrInvalidParameter, uint32(req.Channels))
	}

	m := r.medium
	m.mu.Lock()
	if r.detached {
		m.mu.Unlock()
		return ErrDetached
	}

	conf := &mac.ScanConfirm{Status: mac.StatusSuccess, ScanType: req.Type}
	var beacons []*mac.BeaconNotifyIndication

	switch req.Type {
	case mac.ScanEnergyDetect:
		for _, ch := range req.Channels.Channels() {
			conf.EnergyDetect = append(conf.EnergyDetect, mac.EnergyResult{Channel: ch, Level: m.energyLocked(ch)})
		}
	case mac.ScanActive, mac.ScanPassive:
		for _, c := range m.radios {
			if c == r || !c.started || !req.Channels.Contains(c.channel) {
				continue
			}
			desc := c.descriptorLocked()
			conf.PanDescriptors = append(conf.PanDescriptors, desc)
			c.bsn++
			beacons = append(beacons, &mac.BeaconNotifyIndication{BSN: c.bsn, PanDescriptor: desc})
		}
		if len(conf.PanDescriptors) == 0 {
			conf.Status = mac.StatusNoBeacon
		}
	default:
		m.mu.Unlock()
		return fmt.Errorf("%w: scan type %s", mac.ErrInvalidParameter, req.Type)
	}
	m.mu.Unlock()

	for _, b := range beacons {
		b.Buffer = m.newBuffer()
		r.deliverManagement(b)
	}
	conf.Buffer = m.newBuffer()
	r.deliverManagement(conf)
	return nil
}

func (r *Radio) descriptorLocked() mac.PanDescriptor {
	return mac.PanDescriptor{
		CoordAddrMode:   mac.AddrModeShort,
		CoordPanID:      r.pan,
		CoordAddress:    r.short,
		CoordExtAddress: r.ext,
		LogicalChannel:  r.channel,
		Superframe: mac.Superframe{
			BeaconOrder:       mac.NonBeaconOrder,
			SuperframeOrder:   mac.NonBeaconOrder,
			PanCoordinator:    true,
			AssociationPermit: r.permit,
		},
		LinkQuality: 0xFF,
	}
}

// SetPIB writes a PIB attribute synchronously.
func (r *Radio) SetPIB(attr mac.PIBAttribute, value any) error {
	m := r.medium
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.detached {
		return ErrDetached
	}

	bad := fmt.Errorf("%w: %s value %T", mac.ErrInvalidParameter, attr, value)
	switch attr {
	case mac.PIBExtendedAddress:
		v, ok := value.(mac.ExtendedAddress)
		if !ok {
			return bad
		}
		r.ext, r.hasExt = v, true
	case mac.PIBShortAddress:
		v, ok := value.(mac.ShortAddress)
		if !ok {
			return bad
		}
		r.short = v
	case mac.PIBPanID:
		v, ok := value.(mac.PanID)
		if !ok {
			return bad
		}
		r.pan = v
	case mac.PIBRxOnWhenIdle:
		v, ok := value.(bool)
		if !ok {
			return bad
		}
		r.rxOnWhenIdle = v
	case mac.PIBAssociationPermit:
		v, ok := value.(bool)
		if !ok {
			return bad
		}
		r.permit = v
	default:
		return fmt.Errorf("%w: %s", mac.ErrUnsupportedAttribute, attr)
	}
	return nil
}

// Associate forwards an association request to the addressed coordinator.
// Without a reachable coordinator that permits association the request is
// confirmed with NO_ACK.
func (r *Radio) Associate(req mac.AssociateRequest) error {
	if !req.LogicalChannel.Valid() {
		return fmt.Errorf("%w: channel %d", mac.ErrInvalidParameter, req.LogicalChannel)
	}

	m := r.medium
	m.mu.Lock()
	if r.detached {
		m.mu.Unlock()
		return ErrDetached
	}
	if !r.hasExt {
		m.mu.Unlock()
		return fmt.Errorf("%w: extended address not set", mac.ErrInvalidParameter)
	}

	coord := m.coordinatorLocked(req)
	if coord == nil || !coord.permit {
		m.mu.Unlock()
		r.deliverManagement(&mac.AssociateConfirm{
			Buffer:            m.newBuffer(),
			Status:            mac.StatusNoAck,
			AssocShortAddress: mac.UnassignedShortAddress,
		})
		return nil
	}
	coord.pending[r.ext] = r
	r.channel = req.LogicalChannel
	dev := r.ext
	m.mu.Unlock()

	coord.deliverManagement(&mac.AssociateIndication{
		Buffer:         m.newBuffer(),
		DeviceAddress:  dev,
		CapabilityInfo: req.CapabilityInfo,
	})
	return nil
}

// RespondAssociate answers a pending association. The device receives its
// confirm and the coordinator a comm-status for the response.
func (r *Radio) RespondAssociate(resp mac.AssociateResponse) error {
	m := r.medium
	m.mu.Lock()
	if r.detached {
		m.mu.Unlock()
		return ErrDetached
	}
	if !r.started {
		m.mu.Unlock()
		return fmt.Errorf("%w: not a coordinator", mac.ErrInvalidParameter)
	}

	dev, ok := r.pending[resp.DeviceAddress]
	delete(r.pending, resp.DeviceAddress)
	status := mac.StatusSuccess
	switch {
	case !ok:
		status = mac.StatusTransactionExpired
	case dev.detached:
		status = mac.StatusNoAck
	case resp.Status == mac.StatusSuccess:
		dev.short = resp.AssocShortAddress
		dev.pan = r.pan
		dev.channel = r.channel
		dev.coordinator = r
	}
	pan, short := r.pan, r.short
	m.mu.Unlock()

	if ok && status == mac.StatusSuccess {
		dev.deliverManagement(&mac.AssociateConfirm{
			Buffer:            m.newBuffer(),
			Status:            resp.Status,
			AssocShortAddress: resp.AssocShortAddress,
		})
	}
	r.deliverManagement(&mac.CommStatusIndication{
		Buffer:      m.newBuffer(),
		Status:      status,
		PanID:       pan,
		SrcAddress:  short,
		DestAddress: resp.DeviceAddress,
	})
	return nil
}

// Start begins operating as PAN coordinator.
func (r *Radio) Start(req mac.StartRequest) error {
	if !req.LogicalChannel.Valid() {
		return fmt.Errorf("%w: channel %d", mac.ErrInvalidParameter, req.LogicalChannel)
	}
	if req.BeaconOrder != mac.NonBeaconOrder {
		return fmt.Errorf("%w: beacon order %d", mac.ErrInvalidParameter, req.BeaconOrder)
	}

	m := r.medium
	m.mu.Lock()
	if r.detached {
		m.mu.Unlock()
		return ErrDetached
	}
	status := mac.StatusSuccess
	if !r.short.Assigned() {
		status = mac.StatusNoShortAddress
	} else {
		r.started = req.PanCoordinator
		r.pan = req.PanID
		r.channel = req.LogicalChannel
	}
	m.mu.Unlock()

	r.deliverManagement(&mac.StartConfirm{Buffer: m.newBuffer(), Status: status})
	return nil
}

// Data transmits an MSDU to the addressed radios. Unicasts nobody receives
// are confirmed with NO_ACK.
func (r *Radio) Data(req mac.DataRequest) error {
	if len(req.Msdu) == 0 || len(req.Msdu) > mac.MaxMACPayloadSize {
		return fmt.Errorf("%w: msdu length %d", mac.ErrInvalidParameter, len(req.Msdu))
	}
	if req.DstAddrMode != mac.AddrModeShort || req.SrcAddrMode != mac.AddrModeShort {
		return fmt.Errorf("%w: only short addressing is supported", mac.ErrInvalidParameter)
	}

	m := r.medium
	m.mu.Lock()
	if r.detached {
		m.mu.Unlock()
		return ErrDetached
	}
	var dests []*Radio
	if r.joined() {
		dests = m.destinationsLocked(r, req)
	}
	r.dsn++
	dsn := r.dsn
	m.mu.Unlock()

	for _, d := range dests {
		d.deliverData(&mac.DataIndication{
			Buffer:      m.newBuffer(),
			SrcAddrMode: req.SrcAddrMode,
			SrcAddr:     req.SrcAddr,
			SrcPanID:    req.SrcPanID,
			DstAddrMode: req.DstAddrMode,
			DstAddr:     req.DstAddr,
			DstPanID:    req.DstPanID,
			Msdu:        append([]byte(nil), req.Msdu...),
			LinkQuality: 0xFF,
			DSN:         dsn,
		})
	}

	status := mac.StatusSuccess
	if len(dests) == 0 && req.DstAddr != mac.BroadcastShortAddress {
		status = mac.StatusNoAck
	}
	r.deliverData(&mac.DataConfirm{Buffer: m.newBuffer(), Handle: req.Handle, Status: status})
	return nil
}

func (r *Radio) deliverManagement(msg mac.ManagementMessage) {
	r.queue.push(func() {
		if err := r.sink.DeliverManagement(msg); err != nil {
			r.refused(msg, err)
		}
	}, msg)
}

func (r *Radio) deliverData(msg mac.DataMessage) {
	r.queue.push(func() {
		if err := r.sink.DeliverData(msg); err != nil {
			r.refused(msg, err)
		}
	}, msg)
}

func (r *Radio) refused(msg mac.Message, err error) {
	msg.Release()
	r.medium.dropped.Add(1)
	r.medium.logger.Debug("sim: delivery refused", "type", msg.Type().String(), "error", err)
}
