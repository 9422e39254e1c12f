package log

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/msn-network/msn-go/pkg/mac"
)

func testEvents() []Event {
	now := time.Now()
	handle := uint8(3)
	return []Event{
		{
			Timestamp: now, NodeID: "node-1", AttemptID: "a-1",
			Direction: DirectionOut, Layer: LayerMLME, Category: CategoryPrimitive,
			Primitive: &PrimitiveEvent{Name: PrimScanRequest, Channel: 11},
		},
		{
			Timestamp: now.Add(time.Millisecond), NodeID: "node-1", AttemptID: "a-1",
			Direction: DirectionIn, Layer: LayerNWK, Category: CategoryState,
			StateChange: &StateChangeEvent{Entity: StateEntityConnection, OldState: "INIT", NewState: "SCAN_ACTIVE_START"},
		},
		{
			Timestamp: now.Add(2 * time.Millisecond), NodeID: "node-2",
			Direction: DirectionIn, Layer: LayerMCPS, Category: CategoryPrimitive,
			Primitive: &PrimitiveEvent{Name: "MCPS-DATA.confirm", Handle: &handle, Status: "SUCCESS"},
		},
	}
}

func writeLog(t *testing.T, events []Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.mlog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	return path
}

func readAll(t *testing.T, path string, f Filter) []Event {
	t.Helper()
	r, err := NewFilteredReader(path, f)
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer r.Close()

	var out []Event
	for {
		e, err := r.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		out = append(out, e)
	}
}

func TestEncodeDecodeEvent(t *testing.T) {
	in := testEvents()[2]
	data, err := EncodeEvent(in)
	if err != nil {
		t.Fatalf("EncodeEvent: %v", err)
	}
	out, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	if !out.Timestamp.Equal(in.Timestamp) {
		t.Errorf("Timestamp: got %v, want %v", out.Timestamp, in.Timestamp)
	}
	if out.Primitive == nil || out.Primitive.Handle == nil || *out.Primitive.Handle != 3 {
		t.Fatalf("Primitive handle not preserved: %+v", out.Primitive)
	}
	if out.Layer != LayerMCPS || out.NodeID != "node-2" {
		t.Errorf("got layer %v node %q", out.Layer, out.NodeID)
	}
}

func TestFileLoggerAppendsAndReads(t *testing.T) {
	events := testEvents()
	path := writeLog(t, events[:2])

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	logger.Log(events[2])
	logger.Close()

	got := readAll(t, path, Filter{})
	if len(got) != 3 {
		t.Fatalf("got %d events, want 3", len(got))
	}
	if got[1].StateChange == nil || got[1].StateChange.NewState != "SCAN_ACTIVE_START" {
		t.Errorf("event order not preserved: %+v", got[1])
	}
}

func TestFileLoggerCloseIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.mlog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	logger.Log(testEvents()[0])

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("Log after Close wrote %d bytes", info.Size())
	}
}

func TestFileLoggerConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.mlog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				logger.Log(testEvents()[0])
			}
		}()
	}
	wg.Wait()
	logger.Close()

	if got := readAll(t, path, Filter{}); len(got) != 200 {
		t.Errorf("got %d events, want 200", len(got))
	}
}

func TestRotatingFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rotated.mlog")
	logger := NewRotatingFileLogger(path, RotationConfig{MaxSizeMB: 1, MaxBackups: 2})
	for _, e := range testEvents() {
		logger.Log(e)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if got := readAll(t, path, Filter{}); len(got) != 3 {
		t.Errorf("got %d events, want 3", len(got))
	}
}

func TestReaderFilter(t *testing.T) {
	events := testEvents()
	path := writeLog(t, events)

	out := DirectionOut
	mcps := LayerMCPS
	state := CategoryState
	start := events[0].Timestamp.Add(time.Millisecond)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"All", Filter{}, 3},
		{"Node", Filter{NodeID: "node-1"}, 2},
		{"Attempt", Filter{AttemptID: "a-1"}, 2},
		{"Direction", Filter{Direction: &out}, 1},
		{"Layer", Filter{Layer: &mcps}, 1},
		{"Category", Filter{Category: &state}, 1},
		{"Primitive", Filter{Primitive: PrimScanRequest}, 1},
		{"Status", Filter{Status: "SUCCESS"}, 1},
		{"PeerExcludesNonPrimitive", Filter{Peer: "0x0001"}, 0},
		{"TimeStart", Filter{TimeStart: &start}, 2},
		{"Combined", Filter{NodeID: "node-1", Layer: &mcps}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := readAll(t, path, tt.filter); len(got) != tt.want {
				t.Errorf("got %d events, want %d", len(got), tt.want)
			}
		})
	}
}

func TestReaderSkipped(t *testing.T) {
	path := writeLog(t, testEvents())
	r, err := NewFilteredReader(path, Filter{NodeID: "node-2"})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer r.Close()

	if _, err := r.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("Next = %v, want io.EOF", err)
	}
	if r.Skipped() != 2 {
		t.Errorf("Skipped = %d, want 2", r.Skipped())
	}
}

func TestMultiLogger(t *testing.T) {
	var a, b countingLogger
	m := NewMultiLogger(&a, nil, &b)
	m.Log(Event{})
	m.Log(Event{})
	if a.n != 2 || b.n != 2 {
		t.Errorf("counts = %d, %d; want 2, 2", a.n, b.n)
	}
}

type countingLogger struct{ n int }

func (c *countingLogger) Log(Event) { c.n++ }

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	NewSlogAdapter(logger).Log(testEvents()[2])

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if entry["msg"] != "protocol" {
		t.Errorf("msg: got %v", entry["msg"])
	}
	if entry["layer"] != "MCPS" || entry["primitive"] != "MCPS-DATA.confirm" {
		t.Errorf("unexpected attrs: %v", entry)
	}
	if entry["handle"] != float64(3) {
		t.Errorf("handle: got %v", entry["handle"])
	}
}

func TestPrimitiveSetDataTruncates(t *testing.T) {
	var p PrimitiveEvent
	p.SetData(make([]byte, MaxCapturedData+10))
	if !p.Truncated || len(p.Data) != MaxCapturedData || p.Size != MaxCapturedData+10 {
		t.Errorf("got truncated=%t len=%d size=%d", p.Truncated, len(p.Data), p.Size)
	}
	p.SetData([]byte{1})
	if p.Truncated || p.Size != 1 {
		t.Errorf("short payload marked truncated")
	}
}

func TestDescribe(t *testing.T) {
	layer, p := DescribeRequest(mac.DataRequest{DstAddr: 0x0002, Handle: 7, Msdu: []byte("x")})
	if layer != LayerMCPS || p.Name != PrimDataRequest || *p.Handle != 7 || p.Peer != "0x0002" {
		t.Errorf("DataRequest: layer=%v %+v", layer, p)
	}

	layer, p = DescribeRequest(SetRequest{Attribute: mac.PIBRxOnWhenIdle, Value: true})
	if layer != LayerMLME || p.Detail != "macRxOnWhenIdle=true" {
		t.Errorf("SetRequest: layer=%v %+v", layer, p)
	}

	if _, p = DescribeRequest(42); p != nil {
		t.Errorf("unknown request described: %+v", p)
	}

	layer, p = DescribeMessage(&mac.AssociateConfirm{Status: mac.StatusSuccess, AssocShortAddress: 1})
	if layer != LayerMLME || p.Name != "MLME-ASSOCIATE.confirm" || p.Status != "SUCCESS" {
		t.Errorf("AssociateConfirm: layer=%v %+v", layer, p)
	}

	layer, p = DescribeMessage(&mac.BeaconNotifyIndication{
		BSN:           3,
		PanDescriptor: mac.PanDescriptor{CoordPanID: 0xC0C0, CoordAddress: 0x0000, LogicalChannel: 11},
		Payload:       []byte{0x01, 0x02},
	})
	if layer != LayerMLME || p.Channel != 11 || p.Peer != "0x0000" || p.Detail != "bsn=3 pan=0xC0C0 permit=false" || p.Size != 2 {
		t.Errorf("BeaconNotifyIndication: layer=%v %+v", layer, p)
	}

	layer, p = DescribeMessage(&mac.DataIndication{SrcAddr: 4, Msdu: []byte("abc")})
	if layer != LayerMCPS || p.Size != 3 || p.Peer != "0x0004" {
		t.Errorf("DataIndication: layer=%v %+v", layer, p)
	}
}
