package mac

// Frame size limits.
const (
	// MaxPHYPacketSize is the largest PSDU the PHY accepts.
	MaxPHYPacketSize = 127

	// MinMPDUOverhead is the smallest MAC header plus footer.
	MinMPDUOverhead = 9

	// MaxMACPayloadSize is the largest MSDU a data request may carry.
	MaxMACPayloadSize = MaxPHYPacketSize - MinMPDUOverhead
)

// NonBeaconOrder is the beacon/superframe order that disables beacons.
const NonBeaconOrder uint8 = 0x0F

// ScanType selects the kind of channel scan.
type ScanType uint8

const (
	// ScanEnergyDetect measures the energy on each channel.
	ScanEnergyDetect ScanType = 0x00
	// ScanActive solicits beacons from coordinators.
	ScanActive ScanType = 0x01
	// ScanPassive listens for beacons without soliciting them.
	ScanPassive ScanType = 0x02
	// ScanOrphan searches for a lost coordinator.
	ScanOrphan ScanType = 0x03
)

// String returns the scan type name.
func (t ScanType) String() string {
	switch t {
	case ScanEnergyDetect:
		return "ED"
	case ScanActive:
		return "ACTIVE"
	case ScanPassive:
		return "PASSIVE"
	case ScanOrphan:
		return "ORPHAN"
	default:
		return "UNKNOWN"
	}
}

// SecurityLevel selects the MAC frame security level. This layer only uses
// SecurityNone; payload protection runs above the MAC.
type SecurityLevel uint8

// SecurityNone disables MAC frame security.
const SecurityNone SecurityLevel = 0

// PIBAttribute identifies a MAC PIB attribute.
type PIBAttribute uint8

const (
	// PIBAssociationPermit (bool) allows devices to associate.
	PIBAssociationPermit PIBAttribute = 0x41
	// PIBPanID (PanID) is the PAN the node operates on.
	PIBPanID PIBAttribute = 0x50
	// PIBRxOnWhenIdle (bool) keeps the receiver on between frames.
	PIBRxOnWhenIdle PIBAttribute = 0x52
	// PIBShortAddress (ShortAddress) is the node's own short address.
	PIBShortAddress PIBAttribute = 0x53
	// PIBExtendedAddress (ExtendedAddress) is the node's 64-bit address.
	PIBExtendedAddress PIBAttribute = 0x6F
)

// String returns the attribute name.
func (a PIBAttribute) String() string {
	switch a {
	case PIBAssociationPermit:
		return "macAssociationPermit"
	case PIBPanID:
		return "macPANId"
	case PIBRxOnWhenIdle:
		return "macRxOnWhenIdle"
	case PIBShortAddress:
		return "macShortAddress"
	case PIBExtendedAddress:
		return "macExtendedAddress"
	default:
		return "unknown"
	}
}

// CapabilityInfo is the capability field of an association request.
type CapabilityInfo uint8

const (
	// CapAlternatePANCoordinator marks a device able to become coordinator.
	CapAlternatePANCoordinator CapabilityInfo = 1 << 0
	// CapDeviceTypeFFD marks a full-function device.
	CapDeviceTypeFFD CapabilityInfo = 1 << 1
	// CapPowerSourceMains marks a mains-powered device.
	CapPowerSourceMains CapabilityInfo = 1 << 2
	// CapRxOnWhenIdle marks a device that keeps its receiver on.
	CapRxOnWhenIdle CapabilityInfo = 1 << 3
	// CapSecurity marks a device capable of MAC security.
	CapSecurity CapabilityInfo = 1 << 6
	// CapAllocAddress asks the coordinator to allocate a short address.
	CapAllocAddress CapabilityInfo = 1 << 7
)

// TxOptions are data request transmission options.
type TxOptions uint8

const (
	// TxAck requests a MAC acknowledgment.
	TxAck TxOptions = 1 << 0
	// TxGTS requests transmission in a guaranteed time slot.
	TxGTS TxOptions = 1 << 1
	// TxIndirect requests indirect transmission.
	TxIndirect TxOptions = 1 << 2
)

// ScanRequest is an MLME-SCAN.request.
type ScanRequest struct {
	Type     ScanType
	Channels ChannelMask

	// Duration is the per-channel scan exponent (0-14). The time spent on
	// each channel is 960 * 16 * (2^Duration + 1) microseconds.
	Duration uint8

	SecurityLevel SecurityLevel
}

// AssociateRequest is an MLME-ASSOCIATE.request.
type AssociateRequest struct {
	CoordAddrMode   AddressMode
	CoordAddress    ShortAddress
	CoordExtAddress ExtendedAddress
	CoordPanID      PanID
	LogicalChannel  Channel
	ChannelPage     uint8
	CapabilityInfo  CapabilityInfo
	SecurityLevel   SecurityLevel
}

// AssociateResponse is an MLME-ASSOCIATE.response sent by a coordinator.
type AssociateResponse struct {
	DeviceAddress     ExtendedAddress
	AssocShortAddress ShortAddress
	Status            Status
	SecurityLevel     SecurityLevel
}

// StartRequest is an MLME-START.request.
type StartRequest struct {
	PanID                PanID
	LogicalChannel       Channel
	BeaconOrder          uint8
	SuperframeOrder      uint8
	PanCoordinator       bool
	BatteryLifeExtension bool
	CoordRealignment     bool
	SecurityLevel        SecurityLevel
}

// DataRequest is an MCPS-DATA.request.
type DataRequest struct {
	SrcAddrMode AddressMode
	SrcAddr     ShortAddress
	SrcPanID    PanID
	DstAddrMode AddressMode
	DstAddr     ShortAddress
	DstPanID    PanID

	// Msdu is the payload. Its length must not exceed MaxMACPayloadSize.
	Msdu []byte

	// Handle is returned in the matching DataConfirm.
	Handle uint8

	TxOptions     TxOptions
	SecurityLevel SecurityLevel
}
