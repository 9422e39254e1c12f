package nwk

import (
	"errors"
	"fmt"

	"github.com/msn-network/msn-go/pkg/addrmap"
	"github.com/msn-network/msn-go/pkg/mac"
	"github.com/msn-network/msn-go/pkg/txslot"
)

// Errors returned or reported by the network layer.
var (
	// ErrAllocationFailed means the MAC had no buffer for a request.
	ErrAllocationFailed = errors.New("message allocation failed")

	// ErrInvalidParameter means a request carried out-of-range values.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrWrongConfirm means the message is not the one the phase awaits.
	ErrWrongConfirm = errors.New("unexpected confirm")

	// ErrNoMessage means the phase awaits a message and none arrived.
	ErrNoMessage = errors.New("no message")

	// ErrNoScanResults means an active scan found no matching coordinator.
	ErrNoScanResults = errors.New("no matching coordinator found")

	// ErrPanAccessDenied means the coordinator refused the association.
	ErrPanAccessDenied = errors.New("pan access denied")

	// ErrPanAtCapacity means no short address is left to hand out.
	ErrPanAtCapacity = addrmap.ErrPanAtCapacity

	// ErrStartFailed means the MAC refused to start the PAN.
	ErrStartFailed = errors.New("coordinator start failed")

	ErrAlreadyInitialized = errors.New("already initialized")
	ErrNotInitialized     = errors.New("not initialized")
	ErrAlreadyConnected   = errors.New("already connected or connecting")
	ErrNotConnected       = errors.New("not connected")
	ErrBusy               = txslot.ErrBusy
	ErrRetriesExhausted   = errors.New("join retries exhausted")
	ErrClosed             = errors.New("node closed")
)

// macError maps a synchronous MAC rejection to the network layer taxonomy.
func macError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mac.ErrNoBuffer), errors.Is(err, mac.ErrQueueFull):
		return fmt.Errorf("%s: %w: %w", op, ErrAllocationFailed, err)
	case errors.Is(err, mac.ErrInvalidParameter), errors.Is(err, mac.ErrUnsupportedAttribute):
		return fmt.Errorf("%s: %w: %w", op, ErrInvalidParameter, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// statusError maps a non-success MAC status to an error.
func statusError(base error, status mac.Status) error {
	return fmt.Errorf("%w: %s", base, status)
}
