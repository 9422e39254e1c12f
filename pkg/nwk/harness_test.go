package nwk

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/msn-network/msn-go/pkg/inbox"
	"github.com/msn-network/msn-go/pkg/log"
	"github.com/msn-network/msn-go/pkg/mac"
)

const (
	testChannel mac.Channel         = 11
	testPan     mac.PanID           = 0xC0C0
	testExt     mac.ExtendedAddress = 0x00124B0000000001
	coordExt    mac.ExtendedAddress = 0x00124B00000000C0
)

type setCall struct {
	Attr  mac.PIBAttribute
	Value any
}

// fakeMAC records requests in issue order. fail queues synchronous errors
// per operation name.
type fakeMAC struct {
	mu    sync.Mutex
	calls []any
	fail  map[string][]error
}

func newFakeMAC() *fakeMAC {
	return &fakeMAC{fail: make(map[string][]error)}
}

func (f *fakeMAC) failNext(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[op] = append(f.fail[op], err)
}

func (f *fakeMAC) record(op string, call any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if errs := f.fail[op]; len(errs) > 0 {
		f.fail[op] = errs[1:]
		return errs[0]
	}
	return nil
}

func (f *fakeMAC) Scan(req mac.ScanRequest) error { return f.record("scan", req) }
func (f *fakeMAC) SetPIB(attr mac.PIBAttribute, value any) error {
	return f.record("set", setCall{Attr: attr, Value: value})
}
func (f *fakeMAC) Associate(req mac.AssociateRequest) error { return f.record("associate", req) }
func (f *fakeMAC) RespondAssociate(resp mac.AssociateResponse) error {
	return f.record("respond", resp)
}
func (f *fakeMAC) Start(req mac.StartRequest) error { return f.record("start", req) }
func (f *fakeMAC) Data(req mac.DataRequest) error   { return f.record("data", req) }

// take returns and clears the recorded calls. A nil fake records nothing.
func (f *fakeMAC) take() []any {
	if f == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.calls
	f.calls = nil
	return out
}

// recordingLogger keeps captured protocol events.
type recordingLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (r *recordingLogger) Log(ev log.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// states returns the connection states entered, in order.
func (r *recordingLogger) states() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, ev := range r.events {
		if ev.StateChange != nil && ev.StateChange.Entity == log.StateEntityConnection {
			out = append(out, ev.StateChange.NewState)
		}
	}
	return out
}

type harness struct {
	t     *testing.T
	mac   *fakeMAC
	in    *inbox.Adapter
	clk   *clock.Mock
	node  *Node
	plog  *recordingLogger
	cfg   Config
	event []Event

	issued   atomic.Int32
	released atomic.Int32
}

func newHarness(t *testing.T, mutate ...func(*Config)) *harness {
	t.Helper()

	h := &harness{t: t, mac: newFakeMAC(), clk: clock.NewMock(), plog: &recordingLogger{}}
	cfg := DefaultConfig()
	cfg.Clock = h.clk
	cfg.ProtocolLogger = h.plog
	for _, m := range mutate {
		m(&cfg)
	}
	h.cfg = cfg
	h.in = NewInbox(cfg)

	node, err := NewNode(h.mac, h.in, cfg)
	require.NoError(t, err)
	h.node = node
	require.NoError(t, node.bringUp(context.Background(), Identity{ExtendedAddress: testExt}))
	h.mac.take()
	return h
}

func (h *harness) handler(ev Event) {
	h.event = append(h.event, ev)
}

func (h *harness) buffer() *mac.Buffer {
	h.issued.Add(1)
	return mac.NewBuffer(func() { h.released.Add(1) })
}

// run drives the dispatcher until no event bit is raised.
func (h *harness) run() {
	h.t.Helper()
	for i := 0; h.node.runOnce(); i++ {
		if i > 100 {
			h.t.Fatal("dispatcher did not settle")
		}
	}
}

func (h *harness) deliver(msg mac.ManagementMessage) {
	h.t.Helper()
	require.NoError(h.t, h.in.DeliverManagement(msg))
	h.run()
}

func (h *harness) deliverData(msg mac.DataMessage) {
	h.t.Helper()
	require.NoError(h.t, h.in.DeliverData(msg))
	h.run()
}

// elapse advances the mock clock and waits for the retry timer flag.
func (h *harness) elapse(d time.Duration) {
	h.t.Helper()
	h.clk.Add(d)
	require.Eventually(h.t, func() bool {
		return h.node.flags.Pending().Has(evRetryTimer)
	}, time.Second, time.Millisecond, "retry timer did not fire")
	h.run()
}

func (h *harness) requireState(want ConnectionState) {
	h.t.Helper()
	require.Equal(h.t, want, h.node.State(), "state")
}

func (h *harness) requireAllReleased() {
	h.t.Helper()
	require.Equal(h.t, h.issued.Load(), h.released.Load(), "every delivered message must be released")
}

func (h *harness) connect() {
	h.t.Helper()
	require.NoError(h.t, h.node.Connect(testChannel, testPan, h.handler))
	h.run()
	h.requireState(StateScanActiveWaitConfirm)
}

func coordinatorDescriptor() mac.PanDescriptor {
	return mac.PanDescriptor{
		CoordAddrMode:   mac.AddrModeShort,
		CoordPanID:      testPan,
		CoordAddress:    0x0000,
		CoordExtAddress: coordExt,
		LogicalChannel:  testChannel,
		Superframe: mac.Superframe{
			BeaconOrder:       mac.NonBeaconOrder,
			SuperframeOrder:   mac.NonBeaconOrder,
			PanCoordinator:    true,
			AssociationPermit: true,
		},
	}
}

// joinAsDevice drives a node to Listen through a granted association.
func (h *harness) joinAsDevice(short mac.ShortAddress) {
	h.t.Helper()
	h.connect()
	h.deliver(&mac.ScanConfirm{Buffer: h.buffer(), ScanType: mac.ScanActive, PanDescriptors: []mac.PanDescriptor{coordinatorDescriptor()}})
	h.requireState(StateAssociateWaitConfirm)
	h.deliver(&mac.AssociateConfirm{Buffer: h.buffer(), AssocShortAddress: short})
	h.requireState(StateListen)
	h.mac.take()
	h.event = nil
}

// formPAN drives a node to Listen as coordinator.
func (h *harness) formPAN() {
	h.t.Helper()
	h.connect()
	h.deliver(&mac.ScanConfirm{Buffer: h.buffer(), ScanType: mac.ScanActive})
	h.requireState(StateWaitInterval)
	h.elapse(h.cfg.Retry.Initial)
	h.requireState(StateScanEdWaitConfirm)
	h.deliver(&mac.ScanConfirm{Buffer: h.buffer(), ScanType: mac.ScanEnergyDetect, EnergyDetect: []mac.EnergyResult{{Channel: testChannel, Level: 10}}})
	h.requireState(StateStartCoordinatorWaitConfirm)
	h.deliver(&mac.StartConfirm{Buffer: h.buffer()})
	h.requireState(StateListen)
	h.mac.take()
	h.event = nil
}

func device(i int) mac.ExtendedAddress {
	return mac.ExtendedAddress(0x00124B0000001000 + uint64(i))
}

func (h *harness) associate(dev mac.ExtendedAddress) {
	h.deliver(&mac.AssociateIndication{Buffer: h.buffer(), DeviceAddress: dev, CapabilityInfo: mac.CapAllocAddress})
}

func (h *harness) commStatus(dev mac.ExtendedAddress, status mac.Status) {
	h.deliver(&mac.CommStatusIndication{Buffer: h.buffer(), Status: status, PanID: testPan, DestAddress: dev})
}

func responses(calls []any) []mac.AssociateResponse {
	var out []mac.AssociateResponse
	for _, c := range calls {
		if r, ok := c.(mac.AssociateResponse); ok {
			out = append(out, r)
		}
	}
	return out
}
