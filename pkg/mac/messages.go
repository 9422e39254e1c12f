package mac

// MessageType tags a confirmation or indication delivered by the MAC.
type MessageType uint8

const (
	TypeBeaconNotifyIndication MessageType = iota + 1
	TypeScanConfirm
	TypeAssociateIndication
	TypeAssociateConfirm
	TypeCommStatusIndication
	TypeStartConfirm
	TypeDisassociateIndication
	TypeSetConfirm
	TypeDataConfirm
	TypeDataIndication
	TypePurgeConfirm
)

// String returns the primitive name.
func (t MessageType) String() string {
	switch t {
	case TypeBeaconNotifyIndication:
		return "MLME-BEACON-NOTIFY.indication"
	case TypeScanConfirm:
		return "MLME-SCAN.confirm"
	case TypeAssociateIndication:
		return "MLME-ASSOCIATE.indication"
	case TypeAssociateConfirm:
		return "MLME-ASSOCIATE.confirm"
	case TypeCommStatusIndication:
		return "MLME-COMM-STATUS.indication"
	case TypeStartConfirm:
		return "MLME-START.confirm"
	case TypeDisassociateIndication:
		return "MLME-DISASSOCIATE.indication"
	case TypeSetConfirm:
		return "MLME-SET.confirm"
	case TypeDataConfirm:
		return "MCPS-DATA.confirm"
	case TypeDataIndication:
		return "MCPS-DATA.indication"
	case TypePurgeConfirm:
		return "MCPS-PURGE.confirm"
	default:
		return "UNKNOWN"
	}
}

// Message is the common surface of every MAC-delivered message.
type Message interface {
	Type() MessageType
	Release()
}

// ManagementMessage is a message delivered through the MLME SAP.
type ManagementMessage interface {
	Message
	management()
}

// DataMessage is a message delivered through the MCPS SAP.
type DataMessage interface {
	Message
	data()
}

// Superframe is the decoded superframe specification of a beacon.
type Superframe struct {
	BeaconOrder       uint8
	SuperframeOrder   uint8
	PanCoordinator    bool
	AssociationPermit bool
}

// PanDescriptor describes a coordinator found by a scan.
type PanDescriptor struct {
	CoordAddrMode   AddressMode
	CoordPanID      PanID
	CoordAddress    ShortAddress
	CoordExtAddress ExtendedAddress
	LogicalChannel  Channel
	Superframe      Superframe
	LinkQuality     uint8
}

// NonBeacon reports whether the coordinator runs a non-beacon-enabled PAN.
func (d PanDescriptor) NonBeacon() bool {
	return d.Superframe.BeaconOrder == NonBeaconOrder
}

// EnergyResult is the measured energy on one channel.
type EnergyResult struct {
	Channel Channel
	Level   uint8
}

// BeaconNotifyIndication reports a received beacon during a scan.
type BeaconNotifyIndication struct {
	*Buffer
	BSN           uint8
	PanDescriptor PanDescriptor
	// Payload is the beacon payload carried after the superframe fields.
	Payload []byte
}

// ScanConfirm reports the result of a scan.
type ScanConfirm struct {
	*Buffer
	Status         Status
	ScanType       ScanType
	PanDescriptors []PanDescriptor
	EnergyDetect   []EnergyResult
}

// AssociateIndication reports an incoming association request.
type AssociateIndication struct {
	*Buffer
	DeviceAddress  ExtendedAddress
	CapabilityInfo CapabilityInfo
}

// AssociateConfirm reports the result of an association request.
type AssociateConfirm struct {
	*Buffer
	Status            Status
	AssocShortAddress ShortAddress
}

// CommStatusIndication reports the delivery result of a response frame.
type CommStatusIndication struct {
	*Buffer
	Status      Status
	PanID       PanID
	SrcAddress  ShortAddress
	DestAddress ExtendedAddress
}

// StartConfirm reports the result of a start request.
type StartConfirm struct {
	*Buffer
	Status Status
}

// DisassociateIndication reports that a device left the PAN.
type DisassociateIndication struct {
	*Buffer
	DeviceAddress ExtendedAddress
	Reason        uint8
}

// SetConfirm reports the result of an asynchronous PIB write.
type SetConfirm struct {
	*Buffer
	Status    Status
	Attribute PIBAttribute
}

// DataConfirm reports the result of a data request.
type DataConfirm struct {
	*Buffer
	Handle uint8
	Status Status
}

// DataIndication carries a received data frame.
type DataIndication struct {
	*Buffer
	SrcAddrMode AddressMode
	SrcAddr     ShortAddress
	SrcPanID    PanID
	DstAddrMode AddressMode
	DstAddr     ShortAddress
	DstPanID    PanID
	Msdu        []byte
	LinkQuality uint8
	DSN         uint8
}

// PurgeConfirm reports the result of a purge request.
type PurgeConfirm struct {
	*Buffer
	Handle uint8
	Status Status
}

func (*BeaconNotifyIndication) Type() MessageType { return TypeBeaconNotifyIndication }
func (*ScanConfirm) Type() MessageType            { return TypeScanConfirm }
func (*AssociateIndication) Type() MessageType    { return TypeAssociateIndication }
func (*AssociateConfirm) Type() MessageType       { return TypeAssociateConfirm }
func (*CommStatusIndication) Type() MessageType   { return TypeCommStatusIndication }
func (*StartConfirm) Type() MessageType           { return TypeStartConfirm }
func (*DisassociateIndication) Type() MessageType { return TypeDisassociateIndication }
func (*SetConfirm) Type() MessageType             { return TypeSetConfirm }
func (*DataConfirm) Type() MessageType            { return TypeDataConfirm }
func (*DataIndication) Type() MessageType         { return TypeDataIndication }
func (*PurgeConfirm) Type() MessageType           { return TypePurgeConfirm }

func (*BeaconNotifyIndication) management() {}
func (*ScanConfirm) management()            {}
func (*AssociateIndication) management()    {}
func (*AssociateConfirm) management()       {}
func (*CommStatusIndication) management()   {}
func (*StartConfirm) management()           {}
func (*DisassociateIndication) management() {}
func (*SetConfirm) management()             {}

func (*DataConfirm) data()    {}
func (*DataIndication) data() {}
func (*PurgeConfirm) data()   {}
