package nwk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"

	"github.com/msn-network/msn-go/pkg/addrmap"
	"github.com/msn-network/msn-go/pkg/backoff"
	"github.com/msn-network/msn-go/pkg/event"
	"github.com/msn-network/msn-go/pkg/inbox"
	"github.com/msn-network/msn-go/pkg/log"
	"github.com/msn-network/msn-go/pkg/mac"
	"github.com/msn-network/msn-go/pkg/metrics"
	"github.com/msn-network/msn-go/pkg/secure"
	"github.com/msn-network/msn-go/pkg/txslot"
)

// connectRequest is the single outstanding connect.
type connectRequest struct {
	channel mac.Channel
	panID   mac.PanID
	handler Handler
}

// Node is a network layer instance bound to one MAC.
type Node struct {
	cfg     Config
	mac     mac.Service
	in      *inbox.Adapter
	flags   *event.Flags
	clock   clock.Clock
	logger  *slog.Logger
	plog    log.Logger
	metrics *metrics.Metrics
	store   StateStore
	framer  secure.Framer

	alloc *addrmap.Allocator
	slot  *txslot.Manager
	retry *backoff.Backoff

	// mu guards the fields below, shared between the dispatcher and the
	// public API.
	mu          sync.RWMutex
	initialized bool
	closed      bool
	identity    Identity
	state       ConnectionState
	role        Role
	shortAddr   mac.ShortAddress
	panID       mac.PanID
	channel     mac.Channel
	connected   bool
	request     *connectRequest
	handler     Handler
	attemptID   string

	// Owned by the dispatcher goroutine.
	candidate *mac.PanDescriptor
	edChannel mac.Channel
	joinedAt  map[mac.ShortAddress]time.Time

	timerMu  sync.Mutex
	timer    *clock.Timer
	timerGen uint64
	firedGen atomic.Uint64

	// inHandler is set while a Handler runs on the dispatcher.
	inHandler atomic.Bool

	cancel   context.CancelFunc
	done     chan struct{}
	closeErr error
}

// NewNode returns a node that issues requests to svc and consumes the
// messages svc delivers to in. in must come from NewInbox.
func NewNode(svc mac.Service, in *inbox.Adapter, cfg Config) (*Node, error) {
	if svc == nil || in == nil {
		return nil, fmt.Errorf("%w: mac service and inbox are required", ErrInvalidParameter)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	alloc, err := addrmap.New(cfg.MaxPeers)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParameter, err)
	}

	n := &Node{
		cfg:       cfg,
		in:        in,
		flags:     in.Flags(),
		clock:     cfg.Clock,
		logger:    cfg.Logger,
		plog:      cfg.ProtocolLogger,
		metrics:   cfg.Metrics,
		store:     cfg.StateStore,
		framer:    cfg.Framer,
		alloc:     alloc,
		retry:     backoff.New(cfg.Retry),
		state:     StateInit,
		shortAddr: mac.UnassignedShortAddress,
		panID:     mac.UnassignedPanID,
		joinedAt:  make(map[mac.ShortAddress]time.Time),
	}
	if n.clock == nil {
		n.clock = clock.New()
	}
	if n.logger == nil {
		n.logger = slog.New(slog.DiscardHandler)
	}
	if n.plog == nil {
		n.plog = log.NoopLogger{}
	}
	if n.framer == nil {
		n.framer = secure.NopFramer{MaxFrame: cfg.maxFrame()}
	}

	n.mac = &capturingService{next: svc, node: n}
	n.slot = txslot.New(n.mac, n.framer, cfg.maxFrame())

	if n.metrics != nil {
		in.OnDepthChange(n.metrics.SetQueueDepth)
	}
	return n, nil
}

// Init brings the node up with its permanent identity and starts the
// dispatcher. It returns once the MAC accepted the identity.
func (n *Node) Init(ctx context.Context, id Identity) error {
	if err := n.bringUp(ctx, id); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	n.cancel = cancel
	n.done = make(chan struct{})
	go n.run(runCtx)
	return nil
}

// bringUp performs Init without starting the dispatcher.
func (n *Node) bringUp(ctx context.Context, id Identity) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.mu.Lock()
	switch {
	case n.closed:
		n.mu.Unlock()
		return ErrClosed
	case n.initialized:
		n.mu.Unlock()
		return ErrAlreadyInitialized
	}
	n.initialized = true
	n.identity = id
	n.mu.Unlock()

	if err := n.mac.SetPIB(mac.PIBExtendedAddress, id.ExtendedAddress); err != nil {
		n.mu.Lock()
		n.initialized = false
		n.mu.Unlock()
		return macError("set extended address", err)
	}
	if err := n.restore(); err != nil {
		n.logger.Warn("init: state restore failed", "error", err)
	}

	n.logger.Info("node initialized", "extAddr", id.ExtendedAddress.String())
	return nil
}

// Connect starts joining the PAN pan on channel, forming it if no
// coordinator answers. It returns immediately; the outcome is delivered to
// handler, which then receives every subsequent node event.
func (n *Node) Connect(channel mac.Channel, pan mac.PanID, handler Handler) error {
	if !channel.Valid() {
		return fmt.Errorf("%w: channel %d", ErrInvalidParameter, channel)
	}
	if handler == nil {
		return fmt.Errorf("%w: nil handler", ErrInvalidParameter)
	}

	n.mu.Lock()
	switch {
	case n.closed:
		n.mu.Unlock()
		return ErrClosed
	case !n.initialized:
		n.mu.Unlock()
		return ErrNotInitialized
	case n.connected, n.request != nil:
		n.mu.Unlock()
		return ErrAlreadyConnected
	}
	n.request = &connectRequest{channel: channel, panID: pan, handler: handler}
	n.mu.Unlock()

	n.flags.Set(evConnectRequest)
	return nil
}

// Transmit queues payload for an acknowledged transmission to dest. It
// returns ErrBusy while a previous transmission awaits its confirm.
func (n *Node) Transmit(dest mac.ShortAddress, payload []byte) error {
	n.mu.RLock()
	closed, connected := n.closed, n.connected
	n.mu.RUnlock()

	if closed {
		return ErrClosed
	}
	if !connected {
		return ErrNotConnected
	}

	if err := n.slot.Submit(dest, payload); err != nil {
		if errors.Is(err, txslot.ErrInvalidParameter) {
			return fmt.Errorf("%w: %w", ErrInvalidParameter, err)
		}
		return err
	}
	n.flags.Set(evTransmitRequest)
	return nil
}

// MaxPayload returns the largest payload Transmit accepts.
func (n *Node) MaxPayload() int {
	return n.slot.MaxPayload()
}

// Close stops the dispatcher, releases every queued message and abandons
// any pending connect or transmission. The node cannot be reused.
//
// Called from a Handler, Close returns at once and the dispatcher tears the
// node down when the handler returns; teardown errors are then only logged.
func (n *Node) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	n.request = nil
	n.mu.Unlock()

	if n.cancel == nil {
		return n.teardown()
	}
	n.cancel()
	if n.inHandler.Load() {
		return nil
	}
	<-n.done
	return n.closeErr
}

// teardown releases everything the node still holds. It runs once, on the
// dispatcher's exit or inline when no dispatcher was started.
func (n *Node) teardown() error {
	n.stopRetryTimer()

	var err error
	if dropped := n.in.Drain(); dropped > 0 {
		n.logger.Debug("close: released queued messages", "count", dropped)
	}
	if req, ok := n.slot.Abandon(); ok {
		n.logger.Debug("close: abandoned transmission", "dest", req.Dest.String())
	}
	if _, ok := n.alloc.Release(); ok {
		n.logger.Debug("close: dropped address reservation")
	}
	if n.Connected() {
		err = multierr.Append(err, n.saveState())
	}
	return err
}

// State returns the current connection state.
func (n *Node) State() ConnectionState {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state
}

// Connected reports whether the node reached Listen.
func (n *Node) Connected() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.connected
}

// Role returns the node's role in the PAN.
func (n *Node) Role() Role {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.role
}

// IsCoordinator reports whether the node formed the PAN.
func (n *Node) IsCoordinator() bool {
	return n.Role() == RoleCoordinator
}

// ShortAddress returns the node's short address, or
// mac.UnassignedShortAddress before it joined.
func (n *Node) ShortAddress() mac.ShortAddress {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.shortAddr
}

// PanID returns the PAN the node joined or formed, or mac.UnassignedPanID.
func (n *Node) PanID() mac.PanID {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.panID
}

// Channel returns the channel the node operates on, or 0 before it joined.
func (n *Node) Channel() mac.Channel {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.channel
}

// ExtendedAddress returns the identity given to Init.
func (n *Node) ExtendedAddress() mac.ExtendedAddress {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.identity.ExtendedAddress
}

// Peers returns the devices associated to this coordinator.
func (n *Node) Peers() []addrmap.Peer {
	return n.alloc.Peers()
}

// TransmitPending reports whether the transmission slot is occupied.
func (n *Node) TransmitPending() bool {
	return n.slot.Busy()
}

func (n *Node) pending() *connectRequest {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.request
}

func (n *Node) currentHandler() Handler {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.handler
}

func (n *Node) emit(ev Event) {
	h := n.currentHandler()
	if h == nil {
		return
	}
	n.inHandler.Store(true)
	defer n.inHandler.Store(false)
	h(ev)
}
