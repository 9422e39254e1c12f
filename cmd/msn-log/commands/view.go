// Package commands implements the msn-log CLI commands.
package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/msn-network/msn-go/pkg/log"
)

const timestampLayout = "2006-01-02T15:04:05.000000Z"

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [node] DIRECTION LAYER Type
	ts := event.Timestamp.UTC().Format(timestampLayout)
	fmt.Fprintf(w, "%s [%s] %-3s %-4s %s\n", ts, event.NodeID, event.Direction.String(), event.Layer.String(), typeLabel(event))

	if event.AttemptID != "" {
		fmt.Fprintf(w, "  Attempt: %s\n", shortenID(event.AttemptID))
	}
	if event.LocalRole != log.RoleNone {
		fmt.Fprintf(w, "  Role: %s  PAN: %s  Short: %s\n", event.LocalRole, event.PanID, event.ShortAddress)
	}

	switch {
	case event.Primitive != nil:
		formatPrimitiveDetails(w, event.Primitive)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// typeLabel names the event for header lines and exports.
func typeLabel(event log.Event) string {
	switch {
	case event.Primitive != nil:
		return event.Primitive.Name
	case event.StateChange != nil:
		return "State"
	case event.Error != nil:
		return "Error"
	default:
		return "Unknown"
	}
}

// shortenID returns the first 8 characters of an attempt ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatPrimitiveDetails(w io.Writer, p *log.PrimitiveEvent) {
	if p.Status != "" {
		fmt.Fprintf(w, "  Status: %s\n", p.Status)
	}
	if p.Channel != 0 {
		fmt.Fprintf(w, "  Channel: %d\n", p.Channel)
	}
	if p.Peer != "" {
		fmt.Fprintf(w, "  Peer: %s\n", p.Peer)
	}
	if p.Handle != nil {
		fmt.Fprintf(w, "  Handle: %d\n", *p.Handle)
	}
	if p.Detail != "" {
		fmt.Fprintf(w, "  Detail: %s\n", p.Detail)
	}
	if p.Size > 0 {
		fmt.Fprintf(w, "  Size: %d bytes\n", p.Size)
	}
	if len(p.Data) > 0 {
		fmt.Fprintf(w, "  Data: %s", hex.EncodeToString(p.Data))
		if p.Truncated {
			fmt.Fprintf(w, " (truncated)")
		}
		fmt.Fprintln(w)
	}
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity.String())
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer.String())
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Code != nil {
		fmt.Fprintf(w, "  Code: 0x%02X\n", *err.Code)
	}
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// ParseLayer parses a layer name (case-insensitive).
func ParseLayer(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "mlme":
		return log.LayerMLME, nil
	case "mcps":
		return log.LayerMCPS, nil
	case "nwk":
		return log.LayerNWK, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be mlme, mcps, or nwk)", s)
	}
}

// ParseDirection parses a direction name (case-insensitive).
func ParseDirection(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// ParseCategory parses a category name (case-insensitive).
func ParseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "primitive":
		return log.CategoryPrimitive, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be primitive, state, or error)", s)
	}
}

// FilterOptions holds the textual filter flags shared by the commands.
type FilterOptions struct {
	Node      string
	Attempt   string
	Layer     string
	Direction string
	Category  string
	Primitive string
	Status    string
	Peer      string
	TimeStart string
	TimeEnd   string
}

// Build converts the options into a log.Filter.
func (o FilterOptions) Build() (log.Filter, error) {
	filter := log.Filter{
		NodeID:    o.Node,
		AttemptID: o.Attempt,
		Primitive: o.Primitive,
		Status:    o.Status,
		Peer:      o.Peer,
	}

	if o.Layer != "" {
		l, err := ParseLayer(o.Layer)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Layer = &l
	}
	if o.Direction != "" {
		d, err := ParseDirection(o.Direction)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Direction = &d
	}
	if o.Category != "" {
		c, err := ParseCategory(o.Category)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Category = &c
	}
	if o.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, o.TimeStart)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-start format: %w", err)
		}
		filter.TimeStart = &t
	}
	if o.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, o.TimeEnd)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-end format: %w", err)
		}
		filter.TimeEnd = &t
	}
	return filter, nil
}

// RunView prints matching events from the log file.
func RunView(path string, filter log.Filter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}
	return nil
}
