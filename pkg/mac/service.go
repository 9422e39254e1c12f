package mac

// Service is the request side of the MLME and MCPS SAPs. Requests return
// synchronously once accepted; results arrive later through the Sink the
// service was bound to. A non-nil error means the request was rejected and
// no confirmation will follow.
type Service interface {
	// Scan starts an energy-detect, active, passive or orphan scan.
	Scan(req ScanRequest) error

	// SetPIB writes a PIB attribute. The value type depends on attr.
	SetPIB(attr PIBAttribute, value any) error

	// Associate asks a coordinator for admission.
	Associate(req AssociateRequest) error

	// RespondAssociate answers an AssociateIndication.
	RespondAssociate(resp AssociateResponse) error

	// Start begins operating as a coordinator.
	Start(req StartRequest) error

	// Data transmits an MSDU.
	Data(req DataRequest) error
}

// Sink receives confirmations and indications from the MAC. Implementations
// must not block and take ownership of the message buffer on success.
type Sink interface {
	DeliverManagement(msg ManagementMessage) error
	DeliverData(msg DataMessage) error
}
