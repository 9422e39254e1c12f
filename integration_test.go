package msn_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msn-network/msn-go/pkg/backoff"
	"github.com/msn-network/msn-go/pkg/log"
	"github.com/msn-network/msn-go/pkg/mac"
	"github.com/msn-network/msn-go/pkg/mac/sim"
	"github.com/msn-network/msn-go/pkg/nwk"
	"github.com/msn-network/msn-go/pkg/persistence"
	"github.com/msn-network/msn-go/pkg/secure"
)

const (
	e2eChannel mac.Channel = 15
	e2ePan     mac.PanID   = 0xC0C0

	coordExt mac.ExtendedAddress = 0x00124B00000000C0
)

const (
	waitFor = 5 * time.Second
	tick    = 5 * time.Millisecond
)

// recorder collects node events and echoes unicast payloads when echo is set.
type recorder struct {
	node *nwk.Node
	echo bool

	connected chan struct{}
	once      sync.Once

	mu       sync.Mutex
	received [][]byte
	failed   []error
}

func newRecorder(echo bool) *recorder {
	return &recorder{echo: echo, connected: make(chan struct{})}
}

func (r *recorder) handle(ev nwk.Event) {
	switch e := ev.(type) {
	case nwk.ManagementEvent:
		r.once.Do(func() { close(r.connected) })
	case nwk.ConnectFailedEvent:
		r.mu.Lock()
		r.failed = append(r.failed, e.Err)
		r.mu.Unlock()
	case nwk.DataEvent:
		ind, ok := e.Message.(*mac.DataIndication)
		if !ok {
			return
		}
		r.mu.Lock()
		r.received = append(r.received, append([]byte(nil), e.Payload...))
		r.mu.Unlock()
		if r.echo && ind.DstAddr != mac.BroadcastShortAddress {
			_ = r.node.Transmit(ind.SrcAddr, e.Payload)
		}
	}
}

func (r *recorder) payloads() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]byte(nil), r.received...)
}

type network struct {
	t      *testing.T
	medium *sim.Medium
	key    []byte
	plog   log.Logger
	dir    string
}

func newNetwork(t *testing.T) *network {
	return &network{t: t, medium: sim.NewMedium(sim.Config{}), plog: log.NoopLogger{}}
}

// start attaches, initializes and connects a node, closing it at cleanup.
func (nw *network) start(ext mac.ExtendedAddress, rec *recorder) *nwk.Node {
	t := nw.t
	t.Helper()

	cfg := nwk.DefaultConfig()
	cfg.Retry = backoff.Config{Initial: 10 * time.Millisecond, Max: 10 * time.Millisecond, Multiplier: 1}
	cfg.ScanDuration = 0
	cfg.ProtocolLogger = nw.plog
	if nw.key != nil {
		framer, err := secure.NewAESFramer(nw.key, e2ePan, mac.MaxMACPayloadSize)
		require.NoError(t, err)
		cfg.Framer = framer
	}
	if nw.dir != "" {
		cfg.StateStore = persistence.NewNodeStateStore(filepath.Join(nw.dir, ext.String()+".json"))
	}

	in := nwk.NewInbox(cfg)
	radio := nw.medium.Attach(in)
	node, err := nwk.NewNode(radio, in, cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	require.NoError(t, node.Init(ctx, nwk.Identity{ExtendedAddress: ext}))

	rec.node = node
	require.NoError(t, node.Connect(e2eChannel, e2ePan, rec.handle))
	t.Cleanup(func() {
		_ = node.Close()
		nw.medium.Detach(radio)
	})

	select {
	case <-rec.connected:
	case <-time.After(waitFor):
		rec.mu.Lock()
		defer rec.mu.Unlock()
		t.Fatalf("node %s did not connect, state %s, failures %v", ext, node.State(), rec.failed)
	}
	return node
}

func TestE2E_FormAndJoin(t *testing.T) {
	nw := newNetwork(t)

	coord := nw.start(coordExt, newRecorder(true))
	assert.Equal(t, nwk.RoleCoordinator, coord.Role())
	assert.Equal(t, nwk.DefaultCoordinatorShortAddress, coord.ShortAddress())
	assert.Equal(t, e2ePan, coord.PanID())

	seen := map[mac.ShortAddress]bool{coord.ShortAddress(): true}
	for i := 1; i <= 3; i++ {
		dev := nw.start(coordExt+mac.ExtendedAddress(i), newRecorder(false))
		assert.Equal(t, nwk.RoleDevice, dev.Role())
		assert.Equal(t, e2ePan, dev.PanID())
		assert.Equal(t, e2eChannel, dev.Channel())
		assert.False(t, seen[dev.ShortAddress()], "duplicate short address %s", dev.ShortAddress())
		seen[dev.ShortAddress()] = true
	}

	require.Eventually(t, func() bool { return len(coord.Peers()) == 3 }, waitFor, tick)
}

func TestE2E_EchoThroughCoordinator(t *testing.T) {
	nw := newNetwork(t)
	nw.start(coordExt, newRecorder(true))

	rec := newRecorder(false)
	dev := nw.start(coordExt+1, rec)

	require.NoError(t, dev.Transmit(nwk.DefaultCoordinatorShortAddress, []byte("ping")))
	require.Eventually(t, func() bool { return len(rec.payloads()) == 1 }, waitFor, tick)
	assert.Equal(t, []byte("ping"), rec.payloads()[0])

	require.Eventually(t, func() bool { return !dev.TransmitPending() }, waitFor, tick)
	require.Eventually(t, func() bool { return nw.medium.Outstanding() == 0 }, waitFor, tick)
}

func TestE2E_TransmitToMissingPeer(t *testing.T) {
	nw := newNetwork(t)
	coord := nw.start(coordExt, newRecorder(false))

	require.NoError(t, coord.Transmit(0x0003, []byte("anyone")))
	require.Eventually(t, func() bool { return !coord.TransmitPending() }, waitFor, tick)
}

func TestE2E_SecureEcho(t *testing.T) {
	nw := newNetwork(t)
	nw.key = bytes.Repeat([]byte{0x5A}, secure.KeySize)
	nw.start(coordExt, newRecorder(true))

	rec := newRecorder(false)
	dev := nw.start(coordExt+1, rec)
	assert.Less(t, dev.MaxPayload(), mac.MaxMACPayloadSize)

	require.NoError(t, dev.Transmit(nwk.DefaultCoordinatorShortAddress, []byte("sealed")))
	require.Eventually(t, func() bool { return len(rec.payloads()) == 1 }, waitFor, tick)
	assert.Equal(t, []byte("sealed"), rec.payloads()[0])
}

func TestE2E_ProtocolCapture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.cbor")
	fl, err := log.NewFileLogger(path)
	require.NoError(t, err)

	nw := newNetwork(t)
	nw.plog = fl
	coord := nw.start(coordExt, newRecorder(false))
	nw.start(coordExt+1, newRecorder(false))
	require.Eventually(t, func() bool { return len(coord.Peers()) == 1 }, waitFor, tick)
	require.NoError(t, fl.Close())

	reader, err := log.NewReader(path)
	require.NoError(t, err)
	defer reader.Close()

	primitives := map[string]bool{}
	for {
		ev, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		if ev.Primitive != nil {
			primitives[ev.Primitive.Name] = true
		}
	}
	for _, name := range []string{log.PrimScanRequest, log.PrimStartRequest, log.PrimAssociateRequest, log.PrimAssociateResponse} {
		assert.True(t, primitives[name], "missing %s in capture", name)
	}
}

func TestE2E_StatePersisted(t *testing.T) {
	dir := t.TempDir()
	nw := newNetwork(t)
	nw.dir = dir
	coord := nw.start(coordExt, newRecorder(false))
	nw.start(coordExt+1, newRecorder(false))
	require.Eventually(t, func() bool { return len(coord.Peers()) == 1 }, waitFor, tick)

	store := persistence.NewNodeStateStore(filepath.Join(dir, coordExt.String()+".json"))
	require.Eventually(t, func() bool {
		state, err := store.Load()
		return err == nil && state != nil && len(state.Peers) == 1
	}, waitFor, tick)
}
