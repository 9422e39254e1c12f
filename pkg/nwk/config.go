package nwk

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/benbjohnson/clock"

	"github.com/msn-network/msn-go/pkg/addrmap"
	"github.com/msn-network/msn-go/pkg/backoff"
	"github.com/msn-network/msn-go/pkg/event"
	"github.com/msn-network/msn-go/pkg/inbox"
	"github.com/msn-network/msn-go/pkg/log"
	"github.com/msn-network/msn-go/pkg/mac"
	"github.com/msn-network/msn-go/pkg/metrics"
	"github.com/msn-network/msn-go/pkg/persistence"
	"github.com/msn-network/msn-go/pkg/secure"
)

// Defaults.
const (
	// DefaultScanDuration is the per-channel scan exponent.
	DefaultScanDuration = 5

	// MaxScanDuration is the largest scan exponent the MAC accepts.
	MaxScanDuration = 14

	// DefaultCoordinatorShortAddress is the coordinator's own short address.
	DefaultCoordinatorShortAddress mac.ShortAddress = 0x0000
)

// StateStore persists node state. *persistence.NodeStateStore implements it.
type StateStore interface {
	Save(state *persistence.NodeState) error
	Load() (*persistence.NodeState, error)
}

// Identity is the node's permanent identity, fixed at Init.
type Identity struct {
	ExtendedAddress mac.ExtendedAddress
}

// Config configures a Node.
type Config struct {
	// MaxPeers is the number of short addresses a coordinator hands out.
	MaxPeers int

	// Retry is the policy between failed join attempts.
	Retry backoff.Config

	// ScanDuration is the per-channel scan exponent for both scans.
	ScanDuration uint8

	// EnergyScanChannels are measured in addition to the requested channel
	// before forming a PAN. The quietest channel is used.
	EnergyScanChannels mac.ChannelMask

	// CoordinatorShortAddress is set when the node starts a PAN.
	CoordinatorShortAddress mac.ShortAddress

	// MaxFrame bounds the MSDU of a data request. Zero selects
	// mac.MaxMACPayloadSize.
	MaxFrame int

	// Framer seals transmitted and opens received payloads. Nil passes
	// payloads through.
	Framer secure.Framer

	// QueueDepth bounds each inbox queue. Zero means unbounded.
	QueueDepth int

	// Clock drives the retry timer. Nil selects the wall clock.
	Clock clock.Clock

	// Logger receives operational logs. Nil discards them.
	Logger *slog.Logger

	// ProtocolLogger receives protocol capture events. Nil discards them.
	ProtocolLogger log.Logger

	// Metrics records counters. Nil records nothing.
	Metrics *metrics.Metrics

	// StateStore persists peers and PAN membership. Nil disables it.
	StateStore StateStore
}

// DefaultConfig returns a configuration matching a four-peer coordinator
// retrying every 7 seconds indefinitely.
func DefaultConfig() Config {
	return Config{
		MaxPeers:                addrmap.DefaultWidth,
		Retry:                   backoff.DefaultConfig(),
		ScanDuration:            DefaultScanDuration,
		CoordinatorShortAddress: DefaultCoordinatorShortAddress,
		MaxFrame:                mac.MaxMACPayloadSize,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.MaxPeers < 1 || c.MaxPeers > addrmap.MaxWidth {
		errs = append(errs, fmt.Errorf("max peers must be 1..%d, got %d", addrmap.MaxWidth, c.MaxPeers))
	}
	if c.ScanDuration > MaxScanDuration {
		errs = append(errs, fmt.Errorf("scan duration must be 0..%d, got %d", MaxScanDuration, c.ScanDuration))
	}
	if c.EnergyScanChannels&^mac.AllChannels != 0 {
		errs = append(errs, fmt.Errorf("energy scan channels 0x%08X outside 11..26", uint32(c.EnergyScanChannels)))
	}
	if !c.CoordinatorShortAddress.Assigned() {
		errs = append(errs, fmt.Errorf("coordinator short address %s is reserved", c.CoordinatorShortAddress))
	} else if c.MaxPeers >= 1 && c.MaxPeers <= addrmap.MaxWidth && isPeerSlot(c.CoordinatorShortAddress, c.MaxPeers) {
		errs = append(errs, fmt.Errorf("coordinator short address %s collides with peer addresses", c.CoordinatorShortAddress))
	}
	if c.MaxFrame < 0 || c.MaxFrame > mac.MaxMACPayloadSize {
		errs = append(errs, fmt.Errorf("max frame must be 0..%d, got %d", mac.MaxMACPayloadSize, c.MaxFrame))
	}
	if c.QueueDepth < 0 {
		errs = append(errs, fmt.Errorf("queue depth must not be negative, got %d", c.QueueDepth))
	}
	if c.Framer != nil && secure.MaxPayload(c.Framer, c.maxFrame()) == 0 {
		errs = append(errs, errors.New("framer overhead leaves no room for payload"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidParameter, errors.Join(errs...))
	}
	return nil
}

func (c *Config) maxFrame() int {
	if c.MaxFrame == 0 {
		return mac.MaxMACPayloadSize
	}
	return c.MaxFrame
}

func isPeerSlot(addr mac.ShortAddress, width int) bool {
	for i := 0; i < width; i++ {
		if addr == mac.ShortAddress(1)<<i {
			return true
		}
	}
	return false
}

// Event flags raised on the dispatcher.
const (
	evPhaseAdvance event.Set = 1 << iota
	evStartCoordinator
	evManagement
	evData
	evConnectRequest
	evTransmitRequest
	evRetryTimer
)

// NewInbox returns the message channel adapter a MAC must deliver into for
// a Node built with cfg.
func NewInbox(cfg Config) *inbox.Adapter {
	return inbox.New(event.NewFlags(), inbox.Config{
		ManagementBit: evManagement,
		DataBit:       evData,
		Depth:         cfg.QueueDepth,
	})
}
