package commands

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/msn-network/msn-go/pkg/log"
)

const (
	coordID = "00:12:4B:00:00:00:00:01"
	peerID  = "00:12:4B:00:00:00:10:01"
)

var baseTime = time.Date(2026, 3, 2, 9, 30, 0, 250000000, time.UTC)

func sampleEvents() []log.Event {
	handle := uint8(7)
	code := 0xE9
	return []log.Event{
		{
			Timestamp: baseTime,
			NodeID:    coordID,
			AttemptID: "5f0c2a1e-0000-4000-8000-000000000001",
			Direction: log.DirectionOut,
			Layer:     log.LayerMLME,
			Category:  log.CategoryPrimitive,
			Primitive: &log.PrimitiveEvent{Name: "MLME-SCAN.request", Channel: 11, Detail: "active"},
		},
		{
			Timestamp: baseTime.Add(5 * time.Millisecond),
			NodeID:    coordID,
			AttemptID: "5f0c2a1e-0000-4000-8000-000000000001",
			Direction: log.DirectionIn,
			Layer:     log.LayerMLME,
			Category:  log.CategoryPrimitive,
			Primitive: &log.PrimitiveEvent{Name: "MLME-SCAN.confirm", Status: "NO_BEACON"},
		},
		{
			Timestamp:    baseTime.Add(40 * time.Millisecond),
			NodeID:       coordID,
			Direction:    log.DirectionIn,
			Layer:        log.LayerNWK,
			Category:     log.CategoryState,
			LocalRole:    log.RoleCoordinator,
			PanID:        0xC0C0,
			ShortAddress: 0x0000,
			StateChange: &log.StateChangeEvent{
				Entity:   log.StateEntityConnection,
				OldState: "START_COORDINATOR_WAIT_CONFIRM",
				NewState: "LISTEN",
			},
		},
		{
			Timestamp:    baseTime.Add(90 * time.Millisecond),
			NodeID:       peerID,
			Direction:    log.DirectionOut,
			Layer:        log.LayerMCPS,
			Category:     log.CategoryPrimitive,
			LocalRole:    log.RoleDevice,
			PanID:        0xC0C0,
			ShortAddress: 0x0001,
			Primitive: &log.PrimitiveEvent{
				Name:   "MCPS-DATA.request",
				Peer:   "0x0000",
				Handle: &handle,
				Size:   4,
				Data:   []byte("ping"),
			},
		},
		{
			Timestamp: baseTime.Add(95 * time.Millisecond),
			NodeID:    peerID,
			Direction: log.DirectionIn,
			Layer:     log.LayerMCPS,
			Category:  log.CategoryError,
			Error: &log.ErrorEventData{
				Layer:   log.LayerMCPS,
				Message: "no ack",
				Code:    &code,
				Context: "MCPS-DATA.confirm",
			},
		},
	}
}

func writeCapture(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.cbor")
	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return path
}

func TestFormatPrimitiveEvent(t *testing.T) {
	var buf bytes.Buffer
	formatEvent(&buf, sampleEvents()[3])
	output := buf.String()

	for _, want := range []string{
		"2026-03-02T09:30:00.340000Z",
		"[" + peerID + "]",
		"OUT",
		"MCPS",
		"MCPS-DATA.request",
		"Role: DEVICE  PAN: 0xC0C0  Short: 0x0001",
		"Peer: 0x0000",
		"Handle: 7",
		"Size: 4 bytes",
		"Data: 70696e67",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestFormatStateAndError(t *testing.T) {
	events := sampleEvents()

	var buf bytes.Buffer
	formatEvent(&buf, events[2])
	if !strings.Contains(buf.String(), "START_COORDINATOR_WAIT_CONFIRM -> LISTEN") {
		t.Errorf("expected transition, got:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "Entity: CONNECTION") {
		t.Errorf("expected entity, got:\n%s", buf.String())
	}

	buf.Reset()
	formatEvent(&buf, events[4])
	if !strings.Contains(buf.String(), "Code: 0xE9") {
		t.Errorf("expected error code, got:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "Message: no ack") {
		t.Errorf("expected error message, got:\n%s", buf.String())
	}
}

func TestFormatShortensAttempt(t *testing.T) {
	var buf bytes.Buffer
	formatEvent(&buf, sampleEvents()[0])
	if !strings.Contains(buf.String(), "Attempt: 5f0c2a1e\n") {
		t.Errorf("expected shortened attempt ID, got:\n%s", buf.String())
	}
}

func TestFilterOptionsBuild(t *testing.T) {
	filter, err := FilterOptions{Layer: "MCPS", Direction: "out", Category: "primitive", Node: peerID}.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	events := sampleEvents()
	if !filter.Matches(events[3]) {
		t.Error("expected data request to match")
	}
	if filter.Matches(events[0]) {
		t.Error("expected scan request not to match")
	}

	for _, opts := range []FilterOptions{
		{Layer: "phy"},
		{Direction: "sideways"},
		{Category: "frame"},
		{TimeStart: "yesterday"},
		{TimeEnd: "tomorrow"},
	} {
		if _, err := opts.Build(); err == nil {
			t.Errorf("expected error for %+v", opts)
		}
	}
}

func TestRunView(t *testing.T) {
	path := writeCapture(t, sampleEvents())

	filter, _ := FilterOptions{Layer: "mlme"}.Build()
	var buf bytes.Buffer
	if err := RunView(path, filter, &buf); err != nil {
		t.Fatalf("RunView: %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "MLME-SCAN.request") || !strings.Contains(output, "MLME-SCAN.confirm") {
		t.Errorf("expected scan primitives, got:\n%s", output)
	}
	if strings.Contains(output, "MCPS-DATA.request") {
		t.Errorf("expected MCPS events filtered out, got:\n%s", output)
	}
}

func TestRunViewMissingFile(t *testing.T) {
	err := RunView(filepath.Join(t.TempDir(), "missing.cbor"), log.Filter{}, &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestRunStats(t *testing.T) {
	path := writeCapture(t, sampleEvents())

	stats, err := CollectStats(path)
	if err != nil {
		t.Fatalf("CollectStats: %v", err)
	}
	if stats.TotalEvents != 5 {
		t.Errorf("TotalEvents = %d, want 5", stats.TotalEvents)
	}
	if len(stats.Nodes) != 2 {
		t.Errorf("Nodes = %d, want 2", len(stats.Nodes))
	}
	if len(stats.Attempts) != 1 {
		t.Errorf("Attempts = %d, want 1", len(stats.Attempts))
	}
	if got := stats.Nodes[coordID].Joins; got != 1 {
		t.Errorf("coordinator joins = %d, want 1", got)
	}
	if got := stats.Nodes[peerID].Errors; got != 1 {
		t.Errorf("peer errors = %d, want 1", got)
	}
	if stats.ByLayer[log.LayerMLME] != 2 || stats.ByLayer[log.LayerMCPS] != 2 || stats.ByLayer[log.LayerNWK] != 1 {
		t.Errorf("unexpected layer counts: %v", stats.ByLayer)
	}

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats: %v", err)
	}
	output := buf.String()
	for _, want := range []string{
		"=== MSN Protocol Log Statistics ===",
		"Total Events: 5",
		"Duration: 95ms",
		"NO_BEACON:",
		coordID + ": 3 events, 1 attempts, 1 joins, 0 errors (COORDINATOR 0x0000 on PAN 0xC0C0)",
		"Errors: 1",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestRunStatsEmpty(t *testing.T) {
	path := writeCapture(t, nil)
	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats: %v", err)
	}
	if !strings.Contains(buf.String(), "Total Events: 0") {
		t.Errorf("expected empty stats, got:\n%s", buf.String())
	}
}

func TestRunExportJSONL(t *testing.T) {
	path := writeCapture(t, sampleEvents())

	var buf bytes.Buffer
	if err := RunExport(path, "jsonl", "", log.Filter{}, &buf); err != nil {
		t.Fatalf("RunExport: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5", len(lines))
	}
	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("invalid JSON line: %v", err)
	}
	if first["NodeID"] != coordID {
		t.Errorf("NodeID = %v, want %s", first["NodeID"], coordID)
	}
}

func TestRunExportCSV(t *testing.T) {
	path := writeCapture(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "events.csv")

	filter, _ := FilterOptions{Node: peerID}.Build()
	if err := RunExport(path, "csv", out, filter, nil); err != nil {
		t.Fatalf("RunExport: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header plus 2", len(records))
	}
	if records[0][0] != "timestamp" {
		t.Errorf("unexpected header: %v", records[0])
	}
	if records[1][9] != "MCPS-DATA.request" {
		t.Errorf("type = %q, want MCPS-DATA.request", records[1][9])
	}
	if records[2][10] != "233" || records[2][11] != "no ack" {
		t.Errorf("unexpected error row: %v", records[2])
	}
}

func TestRunExportUnknownFormat(t *testing.T) {
	path := writeCapture(t, sampleEvents())
	if err := RunExport(path, "xml", "", log.Filter{}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestRunFilter(t *testing.T) {
	path := writeCapture(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "errors.cbor")

	filter, _ := FilterOptions{Category: "error"}.Build()
	n, err := RunFilter(path, out, filter)
	if err != nil {
		t.Fatalf("RunFilter: %v", err)
	}
	if n != 1 {
		t.Errorf("wrote %d events, want 1", n)
	}

	stats, err := CollectStats(out)
	if err != nil {
		t.Fatalf("CollectStats: %v", err)
	}
	if stats.TotalEvents != 1 || stats.Errors != 1 {
		t.Errorf("filtered capture has %d events, %d errors", stats.TotalEvents, stats.Errors)
	}
}
