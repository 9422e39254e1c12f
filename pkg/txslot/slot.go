// Package txslot owns the single outbound data transmission a node may have
// in flight.
//
// Submit occupies the slot with a request. Dispatch seals the payload and
// hands an acknowledged data request to the MAC. The slot stays occupied
// until the MAC confirms the transmission carrying its handle; the confirm
// releases it whatever the reported status. Retransmission is left to the
// caller.
package txslot

import (
	"errors"
	"fmt"
	"sync"

	"github.com/msn-network/msn-go/pkg/mac"
	"github.com/msn-network/msn-go/pkg/secure"
)

var (
	ErrBusy             = errors.New("transmission pending")
	ErrInvalidParameter = errors.New("invalid transmit parameter")
	ErrNoRequest        = errors.New("no transmit request")
	ErrInFlight         = errors.New("transmit request already dispatched")
)

// Request is an outbound payload occupying the slot.
type Request struct {
	Dest    mac.ShortAddress
	Payload []byte

	// Handle is the MSDU handle, valid once dispatched.
	Handle uint8
}

// Manager is the transmission slot. It is safe for concurrent use.
type Manager struct {
	svc      mac.Service
	framer   secure.Framer
	maxFrame int

	mu         sync.Mutex
	pending    *Request
	dispatched bool
	nextHandle uint8
}

// New returns a slot that sends through svc. A nil framer passes payloads
// through unchanged. maxFrame bounds the sealed MSDU; zero selects
// mac.MaxMACPayloadSize.
func New(svc mac.Service, framer secure.Framer, maxFrame int) *Manager {
	if maxFrame <= 0 || maxFrame > mac.MaxMACPayloadSize {
		maxFrame = mac.MaxMACPayloadSize
	}
	if framer == nil {
		framer = secure.NopFramer{MaxFrame: maxFrame}
	}
	return &Manager{svc: svc, framer: framer, maxFrame: maxFrame}
}

// MaxPayload returns the largest payload Submit accepts.
func (m *Manager) MaxPayload() int {
	return secure.MaxPayload(m.framer, m.maxFrame)
}

// Submit occupies the slot with a payload for dest. The payload is copied.
func (m *Manager) Submit(dest mac.ShortAddress, payload []byte) error {
	if len(payload) == 0 || len(payload) > m.MaxPayload() {
		return fmt.Errorf("%w: payload length %d (max %d)", ErrInvalidParameter, len(payload), m.MaxPayload())
	}
	if dest == mac.NoShortAddress {
		return fmt.Errorf("%w: destination %s", ErrInvalidParameter, dest)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending != nil {
		return ErrBusy
	}
	m.pending = &Request{Dest: dest, Payload: append([]byte(nil), payload...)}
	m.dispatched = false
	return nil
}

// Dispatch sends the submitted request as an acknowledged data frame from
// src on pan. On failure the slot is released and the request dropped.
func (m *Manager) Dispatch(src mac.ShortAddress, pan mac.PanID) (Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending == nil {
		return Request{}, ErrNoRequest
	}
	if m.dispatched {
		return *m.pending, ErrInFlight
	}

	req := m.pending
	msdu, err := m.framer.Seal(req.Payload)
	if err != nil {
		m.pending = nil
		return *req, fmt.Errorf("seal payload: %w", err)
	}

	req.Handle = m.nextHandle
	m.nextHandle++

	err = m.svc.Data(mac.DataRequest{
		SrcAddrMode: mac.AddrModeShort,
		SrcAddr:     src,
		SrcPanID:    pan,
		DstAddrMode: mac.AddrModeShort,
		DstAddr:     req.Dest,
		DstPanID:    pan,
		Msdu:        msdu,
		Handle:      req.Handle,
		TxOptions:   mac.TxAck,
	})
	if err != nil {
		m.pending = nil
		return *req, err
	}
	m.dispatched = true
	return *req, nil
}

// OnConfirm releases the slot if conf carries the in-flight handle. It
// returns the released request.
func (m *Manager) OnConfirm(conf *mac.DataConfirm) (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending == nil || !m.dispatched || conf.Handle != m.pending.Handle {
		return Request{}, false
	}
	req := *m.pending
	m.pending = nil
	m.dispatched = false
	return req, true
}

// Abandon drops any request without waiting for a confirm.
func (m *Manager) Abandon() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending == nil {
		return Request{}, false
	}
	req := *m.pending
	m.pending = nil
	m.dispatched = false
	return req, true
}

// Busy reports whether the slot is occupied.
func (m *Manager) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending != nil
}

// InFlight reports whether the occupying request was handed to the MAC.
func (m *Manager) InFlight() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending != nil && m.dispatched
}
