package log

import (
	"time"

	"github.com/msn-network/msn-go/pkg/mac"
)

// MaxCapturedData is the number of payload bytes kept in a PrimitiveEvent.
const MaxCapturedData = 32

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// NodeID is the extended address of the capturing node.
	NodeID string `cbor:"2,keyasint"`

	// AttemptID identifies the join attempt (UUID), empty outside one.
	AttemptID string `cbor:"3,keyasint,omitempty"`

	// Direction indicates primitive flow relative to the network layer.
	Direction Direction `cbor:"4,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"5,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"6,keyasint"`

	// LocalRole is the node's role in the PAN.
	LocalRole Role `cbor:"7,keyasint,omitempty"`

	// PanID is the PAN the node operates on, if known.
	PanID mac.PanID `cbor:"8,keyasint,omitempty"`

	// ShortAddress is the node's short address, if assigned.
	ShortAddress mac.ShortAddress `cbor:"9,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Primitive   *PrimitiveEvent   `cbor:"10,keyasint,omitempty"` // MLME/MCPS
	StateChange *StateChangeEvent `cbor:"11,keyasint,omitempty"` // NWK state
	Error       *ErrorEventData   `cbor:"12,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of primitive flow.
type Direction uint8

const (
	// DirectionIn indicates a confirm or indication from the MAC.
	DirectionIn Direction = 0
	// DirectionOut indicates a request issued to the MAC.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which service access point captured the event.
type Layer uint8

const (
	// LayerMLME is the MAC management SAP.
	LayerMLME Layer = 0
	// LayerMCPS is the MAC data SAP.
	LayerMCPS Layer = 1
	// LayerNWK is the network layer itself.
	LayerNWK Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerMLME:
		return "MLME"
	case LayerMCPS:
		return "MCPS"
	case LayerNWK:
		return "NWK"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryPrimitive indicates a MAC primitive.
	CategoryPrimitive Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 1
	// CategoryError indicates an error event.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryPrimitive:
		return "PRIMITIVE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Role is the node's role in the PAN.
type Role uint8

const (
	// RoleNone indicates a node that has not joined or formed a PAN.
	RoleNone Role = 0
	// RoleDevice indicates a node associated to a coordinator.
	RoleDevice Role = 1
	// RoleCoordinator indicates the PAN coordinator.
	RoleCoordinator Role = 2
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleNone:
		return "NONE"
	case RoleDevice:
		return "DEVICE"
	case RoleCoordinator:
		return "COORDINATOR"
	default:
		return "UNKNOWN"
	}
}

// PrimitiveEvent captures a MAC request, confirm or indication.
type PrimitiveEvent struct {
	// Name is the primitive name, e.g. "MLME-SCAN.request".
	Name string `cbor:"1,keyasint"`

	// Status is the reported status name (confirms and indications).
	Status string `cbor:"2,keyasint,omitempty"`

	// Channel is the logical channel involved, if any.
	Channel mac.Channel `cbor:"3,keyasint,omitempty"`

	// Peer is the remote address (short or extended), if any.
	Peer string `cbor:"4,keyasint,omitempty"`

	// Handle is the MSDU handle for data primitives.
	Handle *uint8 `cbor:"5,keyasint,omitempty"`

	// Size is the payload size in bytes.
	Size int `cbor:"6,keyasint,omitempty"`

	// Data is the payload (may be truncated).
	Data []byte `cbor:"7,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"8,keyasint,omitempty"`

	// Detail is a short human-readable summary of the remaining fields.
	Detail string `cbor:"9,keyasint,omitempty"`
}

// SetData records payload, keeping at most MaxCapturedData bytes.
func (p *PrimitiveEvent) SetData(payload []byte) {
	p.Size = len(payload)
	if len(payload) > MaxCapturedData {
		p.Data = append([]byte(nil), payload[:MaxCapturedData]...)
		p.Truncated = true
		return
	}
	p.Data = append([]byte(nil), payload...)
	p.Truncated = false
}

// StateChangeEvent captures network layer lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityConnection indicates a join/formation state change.
	StateEntityConnection StateEntity = 0
	// StateEntityPeer indicates a peer address being committed or freed.
	StateEntityPeer StateEntity = 1
	// StateEntitySlot indicates a transmission slot change.
	StateEntitySlot StateEntity = 2
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityConnection:
		return "CONNECTION"
	case StateEntityPeer:
		return "PEER"
	case StateEntitySlot:
		return "SLOT"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Code is the MAC status code (if applicable).
	Code *int `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
