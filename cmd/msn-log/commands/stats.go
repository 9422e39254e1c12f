package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/msn-network/msn-go/pkg/log"
)

// Stats holds aggregate statistics for a capture file.
type Stats struct {
	TotalEvents int
	FirstEvent  time.Time
	LastEvent   time.Time

	ByLayer     map[log.Layer]int
	ByCategory  map[log.Category]int
	ByDirection map[log.Direction]int

	Primitives map[string]int
	Statuses   map[string]int
	Nodes      map[string]*NodeStats
	Attempts   map[string]struct{}

	StateChanges int
	Errors       int
}

// NodeStats holds statistics for one capturing node.
type NodeStats struct {
	Events       int
	Attempts     map[string]struct{}
	Role         log.Role
	PanID        string
	ShortAddress string
	Joins        int
	Errors       int
}

func newStats() *Stats {
	return &Stats{
		ByLayer:     make(map[log.Layer]int),
		ByCategory:  make(map[log.Category]int),
		ByDirection: make(map[log.Direction]int),
		Primitives:  make(map[string]int),
		Statuses:    make(map[string]int),
		Nodes:       make(map[string]*NodeStats),
		Attempts:    make(map[string]struct{}),
	}
}

// add folds one event into the statistics.
func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	if s.FirstEvent.IsZero() || event.Timestamp.Before(s.FirstEvent) {
		s.FirstEvent = event.Timestamp
	}
	if event.Timestamp.After(s.LastEvent) {
		s.LastEvent = event.Timestamp
	}

	s.ByLayer[event.Layer]++
	s.ByCategory[event.Category]++
	s.ByDirection[event.Direction]++

	ns, ok := s.Nodes[event.NodeID]
	if !ok {
		ns = &NodeStats{Attempts: make(map[string]struct{})}
		s.Nodes[event.NodeID] = ns
	}
	ns.Events++
	if event.AttemptID != "" {
		s.Attempts[event.AttemptID] = struct{}{}
		ns.Attempts[event.AttemptID] = struct{}{}
	}
	if event.LocalRole != log.RoleNone {
		ns.Role = event.LocalRole
		ns.PanID = event.PanID.String()
		ns.ShortAddress = event.ShortAddress.String()
	}

	switch {
	case event.Primitive != nil:
		s.Primitives[event.Primitive.Name]++
		if event.Primitive.Status != "" {
			s.Statuses[event.Primitive.Status]++
		}
	case event.StateChange != nil:
		s.StateChanges++
		if event.StateChange.Entity == log.StateEntityConnection && event.StateChange.NewState == "LISTEN" {
			ns.Joins++
		}
	case event.Error != nil:
		s.Errors++
		ns.Errors++
	}
}

// CollectStats reads the whole capture file and aggregates it.
func CollectStats(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := newStats()
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}
	return stats, nil
}

// RunStats prints statistics about the capture file.
func RunStats(path string, output io.Writer) error {
	stats, err := CollectStats(path)
	if err != nil {
		return err
	}
	printStats(output, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== MSN Protocol Log Statistics ===")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	if stats.TotalEvents == 0 {
		return
	}
	fmt.Fprintf(w, "Time Range: %s - %s\n",
		stats.FirstEvent.UTC().Format(time.RFC3339),
		stats.LastEvent.UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "Duration: %s\n", stats.LastEvent.Sub(stats.FirstEvent).Round(time.Millisecond))
	fmt.Fprintf(w, "Nodes: %d\n", len(stats.Nodes))
	fmt.Fprintf(w, "Join Attempts: %d\n", len(stats.Attempts))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, l := range []log.Layer{log.LayerMLME, log.LayerMCPS, log.LayerNWK} {
		if n := stats.ByLayer[l]; n > 0 {
			fmt.Fprintf(w, "  %-10s %d\n", l.String()+":", n)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, c := range []log.Category{log.CategoryPrimitive, log.CategoryState, log.CategoryError} {
		if n := stats.ByCategory[c]; n > 0 {
			fmt.Fprintf(w, "  %-10s %d\n", c.String()+":", n)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Direction:")
	fmt.Fprintf(w, "  %-10s %d\n", "IN:", stats.ByDirection[log.DirectionIn])
	fmt.Fprintf(w, "  %-10s %d\n", "OUT:", stats.ByDirection[log.DirectionOut])
	fmt.Fprintln(w)

	if len(stats.Primitives) > 0 {
		fmt.Fprintln(w, "Primitives:")
		for _, name := range sortedByCount(stats.Primitives) {
			fmt.Fprintf(w, "  %-28s %d\n", name+":", stats.Primitives[name])
		}
		fmt.Fprintln(w)
	}

	if len(stats.Statuses) > 0 {
		fmt.Fprintln(w, "Statuses:")
		for _, name := range sortedByCount(stats.Statuses) {
			fmt.Fprintf(w, "  %-28s %d\n", name+":", stats.Statuses[name])
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Nodes:")
	ids := make([]string, 0, len(stats.Nodes))
	for id := range stats.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		ns := stats.Nodes[id]
		fmt.Fprintf(w, "  %s: %d events, %d attempts, %d joins, %d errors", id, ns.Events, len(ns.Attempts), ns.Joins, ns.Errors)
		if ns.Role != log.RoleNone {
			fmt.Fprintf(w, " (%s %s on PAN %s)", ns.Role, ns.ShortAddress, ns.PanID)
		}
		fmt.Fprintln(w)
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}

// sortedByCount returns the keys ordered by descending count, then name.
func sortedByCount(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
