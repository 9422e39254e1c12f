package nwk

// ConnectionState is the phase of the join/formation state machine.
type ConnectionState uint8

const (
	StateInit ConnectionState = iota
	StateScanActiveStart
	StateScanActiveWaitConfirm
	StateAssociate
	StateAssociateWaitConfirm
	StateWaitInterval
	StateScanEdStart
	StateScanEdWaitConfirm
	StateStartCoordinator
	StateStartCoordinatorWaitConfirm
	StateListen
)

// String returns the state name.
func (s ConnectionState) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateScanActiveStart:
		return "SCAN_ACTIVE_START"
	case StateScanActiveWaitConfirm:
		return "SCAN_ACTIVE_WAIT_CONFIRM"
	case StateAssociate:
		return "ASSOCIATE"
	case StateAssociateWaitConfirm:
		return "ASSOCIATE_WAIT_CONFIRM"
	case StateWaitInterval:
		return "WAIT_INTERVAL"
	case StateScanEdStart:
		return "SCAN_ED_START"
	case StateScanEdWaitConfirm:
		return "SCAN_ED_WAIT_CONFIRM"
	case StateStartCoordinator:
		return "START_COORDINATOR"
	case StateStartCoordinatorWaitConfirm:
		return "START_COORDINATOR_WAIT_CONFIRM"
	case StateListen:
		return "LISTEN"
	default:
		return "UNKNOWN"
	}
}

// Role is the node's role in the PAN.
type Role uint8

const (
	RoleNone Role = iota
	RoleDevice
	RoleCoordinator
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleNone:
		return "none"
	case RoleDevice:
		return "device"
	case RoleCoordinator:
		return "coordinator"
	default:
		return "unknown"
	}
}
