package mac

import "errors"

// Errors returned synchronously by a Service or Sink.
var (
	ErrInvalidParameter     = errors.New("mac: invalid parameter")
	ErrNoBuffer             = errors.New("mac: no message buffer available")
	ErrQueueFull            = errors.New("mac: queue full")
	ErrUnsupportedAttribute = errors.New("mac: unsupported PIB attribute")
)

// Status is a MAC result code carried in confirmations and indications.
type Status uint8

const (
	// StatusSuccess indicates the request completed successfully.
	StatusSuccess Status = 0x00

	// StatusPanAtCapacity indicates the coordinator has no free short address.
	StatusPanAtCapacity Status = 0x01

	// StatusPanAccessDenied indicates the coordinator refused the association.
	StatusPanAccessDenied Status = 0x02

	// StatusBeaconLoss indicates beacons were lost.
	StatusBeaconLoss Status = 0xE0

	// StatusChannelAccessFailure indicates CSMA-CA could not access the channel.
	StatusChannelAccessFailure Status = 0xE1

	// StatusDenied indicates the request was denied.
	StatusDenied Status = 0xE2

	// StatusInvalidHandle indicates an unknown MSDU handle.
	StatusInvalidHandle Status = 0xE7

	// StatusInvalidParameter indicates a parameter was out of range.
	StatusInvalidParameter Status = 0xE8

	// StatusNoAck indicates no acknowledgment was received.
	StatusNoAck Status = 0xE9

	// StatusNoBeacon indicates a scan found no beacons.
	StatusNoBeacon Status = 0xEA

	// StatusNoData indicates no response data was received.
	StatusNoData Status = 0xEB

	// StatusNoShortAddress indicates the node has no short address.
	StatusNoShortAddress Status = 0xEC

	// StatusTransactionExpired indicates an indirect transaction timed out.
	StatusTransactionExpired Status = 0xF0

	// StatusTransactionOverflow indicates the transaction queue is full.
	StatusTransactionOverflow Status = 0xF1

	// StatusUnsupportedAttribute indicates an unknown PIB attribute.
	StatusUnsupportedAttribute Status = 0xF4

	// StatusScanInProgress indicates another scan is running.
	StatusScanInProgress Status = 0xFC
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusPanAtCapacity:
		return "PAN_AT_CAPACITY"
	case StatusPanAccessDenied:
		return "PAN_ACCESS_DENIED"
	case StatusBeaconLoss:
		return "BEACON_LOSS"
	case StatusChannelAccessFailure:
		return "CHANNEL_ACCESS_FAILURE"
	case StatusDenied:
		return "DENIED"
	case StatusInvalidHandle:
		return "INVALID_HANDLE"
	case StatusInvalidParameter:
		return "INVALID_PARAMETER"
	case StatusNoAck:
		return "NO_ACK"
	case StatusNoBeacon:
		return "NO_BEACON"
	case StatusNoData:
		return "NO_DATA"
	case StatusNoShortAddress:
		return "NO_SHORT_ADDRESS"
	case StatusTransactionExpired:
		return "TRANSACTION_EXPIRED"
	case StatusTransactionOverflow:
		return "TRANSACTION_OVERFLOW"
	case StatusUnsupportedAttribute:
		return "UNSUPPORTED_ATTRIBUTE"
	case StatusScanInProgress:
		return "SCAN_IN_PROGRESS"
	default:
		return "UNKNOWN"
	}
}
