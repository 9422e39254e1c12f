// Package sim provides an in-memory IEEE 802.15.4 medium for running
// network layer nodes without radios.
//
// A Medium connects any number of Radios. Each Radio implements
// mac.Service and delivers its confirms and indications to the mac.Sink it
// was attached with, in issue order and after the medium's latency. Scans,
// association, coordinator start, acknowledged data and disassociation are
// modelled; superframes, security and indirect transmission are not.
//
// Every delivered message carries a buffer accounted by the medium, so
// tests can assert that consumers released everything they dequeued.
package sim

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/msn-network/msn-go/pkg/mac"
)

// ErrDetached is returned by requests on a radio removed from its medium.
var ErrDetached = errors.New("sim: radio detached")

// busyEnergy is added to the measured energy of a channel carrying a PAN.
const busyEnergy = 100

// Config configures a Medium.
type Config struct {
	// Clock drives delivery latency. Nil selects the wall clock.
	Clock clock.Clock

	// Latency delays every delivery.
	Latency time.Duration

	// Energy is the background energy per channel reported by ED scans.
	Energy map[mac.Channel]uint8

	// Logger receives debug output. Nil discards it.
	Logger *slog.Logger
}

// Medium is a shared radio channel set.
type Medium struct {
	clock   clock.Clock
	latency time.Duration
	logger  *slog.Logger

	mu     sync.Mutex
	radios []*Radio
	energy map[mac.Channel]uint8

	outstanding atomic.Int64
	dropped     atomic.Int64
}

// NewMedium returns an empty medium.
func NewMedium(cfg Config) *Medium {
	m := &Medium{
		clock:   cfg.Clock,
		latency: cfg.Latency,
		logger:  cfg.Logger,
		energy:  make(map[mac.Channel]uint8),
	}
	if m.clock == nil {
		m.clock = clock.New()
	}
	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}
	for ch, level := range cfg.Energy {
		m.energy[ch] = level
	}
	return m
}

// SetEnergy sets the background energy of a channel.
func (m *Medium) SetEnergy(ch mac.Channel, level uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.energy[ch] = level
}

// Attach adds a radio that delivers into sink. The radio has no address
// until its extended address is written with SetPIB.
func (m *Medium) Attach(sink mac.Sink) *Radio {
	r := newRadio(m, sink)

	m.mu.Lock()
	m.radios = append(m.radios, r)
	m.mu.Unlock()

	go r.queue.run()
	return r
}

// Detach removes r from the medium. A device that was associated is
// reported to its coordinator as leaving.
func (m *Medium) Detach(r *Radio) {
	m.mu.Lock()
	idx := -1
	for i, other := range m.radios {
		if other == r {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.mu.Unlock()
		return
	}
	m.radios = append(m.radios[:idx], m.radios[idx+1:]...)
	r.detached = true
	coord := r.coordinator
	r.coordinator = nil
	dev := r.ext
	m.mu.Unlock()

	if coord != nil {
		coord.deliverManagement(&mac.DisassociateIndication{
			Buffer:        m.newBuffer(),
			DeviceAddress: dev,
			Reason:        0x02,
		})
	}
	r.queue.stop()
}

// Outstanding returns the number of delivered messages not yet released.
func (m *Medium) Outstanding() int {
	return int(m.outstanding.Load())
}

// Dropped returns the number of messages a sink refused.
func (m *Medium) Dropped() int {
	return int(m.dropped.Load())
}

// Radios returns the attached radios.
func (m *Medium) Radios() []*Radio {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Radio(nil), m.radios...)
}

func (m *Medium) newBuffer() *mac.Buffer {
	m.outstanding.Add(1)
	return mac.NewBuffer(func() { m.outstanding.Add(-1) })
}

// coordinatorLocked finds a started coordinator for an association
// request.
func (m *Medium) coordinatorLocked(req mac.AssociateRequest) *Radio {
	for _, r := range m.radios {
		if !r.started || r.channel != req.LogicalChannel || r.pan != req.CoordPanID {
			continue
		}
		switch req.CoordAddrMode {
		case mac.AddrModeShort:
			if r.short == req.CoordAddress {
				return r
			}
		case mac.AddrModeExtended:
			if r.ext == req.CoordExtAddress {
				return r
			}
		}
	}
	return nil
}

// destinationsLocked returns the radios a data request from src reaches.
func (m *Medium) destinationsLocked(src *Radio, req mac.DataRequest) []*Radio {
	var out []*Radio
	for _, r := range m.radios {
		if r == src || !r.joined() || r.channel != src.channel || r.pan != req.DstPanID {
			continue
		}
		if !r.started && !r.rxOnWhenIdle {
			continue
		}
		if req.DstAddr == mac.BroadcastShortAddress || r.short == req.DstAddr {
			out = append(out, r)
		}
	}
	return out
}

func (m *Medium) energyLocked(ch mac.Channel) uint8 {
	level := int(m.energy[ch])
	for _, r := range m.radios {
		if r.started && r.channel == ch {
			level += busyEnergy
		}
	}
	if level > 0xFF {
		level = 0xFF
	}
	return uint8(level)
}
