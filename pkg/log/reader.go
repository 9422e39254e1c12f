package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Filter selects capture events. Zero-valued fields match everything.
type Filter struct {
	NodeID    string
	AttemptID string

	Direction *Direction
	Layer     *Layer
	Category  *Category

	// Primitive and Status match the primitive name and reported status
	// exactly; Peer matches the remote address. Each excludes events that
	// carry no primitive.
	Primitive string
	Status    string
	Peer      string

	// TimeStart is inclusive, TimeEnd exclusive.
	TimeStart *time.Time
	TimeEnd   *time.Time
}

// Matches reports whether event satisfies every criterion of f.
func (f *Filter) Matches(event Event) bool {
	switch {
	case f.NodeID != "" && event.NodeID != f.NodeID,
		f.AttemptID != "" && event.AttemptID != f.AttemptID,
		f.Direction != nil && event.Direction != *f.Direction,
		f.Layer != nil && event.Layer != *f.Layer,
		f.Category != nil && event.Category != *f.Category,
		f.TimeStart != nil && event.Timestamp.Before(*f.TimeStart),
		f.TimeEnd != nil && !event.Timestamp.Before(*f.TimeEnd):
		return false
	}
	return f.matchesPrimitive(event.Primitive)
}

func (f *Filter) matchesPrimitive(p *PrimitiveEvent) bool {
	if f.Primitive == "" && f.Status == "" && f.Peer == "" {
		return true
	}
	if p == nil {
		return false
	}
	return (f.Primitive == "" || p.Name == f.Primitive) &&
		(f.Status == "" || p.Status == f.Status) &&
		(f.Peer == "" || p.Peer == f.Peer)
}

// Reader streams events from a capture file.
type Reader struct {
	file    *os.File
	decoder *cbor.Decoder
	filter  Filter

	read    int
	skipped int
}

// NewReader opens path and returns every event in it.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader opens path and returns only events matching filter.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{file: f, decoder: NewDecoder(f), filter: filter}, nil
}

// Next returns the next matching event, or io.EOF at the end of the file.
// A decode failure reports the index of the offending event.
func (r *Reader) Next() (Event, error) {
	for {
		var event Event
		err := r.decoder.Decode(&event)
		switch {
		case errors.Is(err, io.EOF):
			return Event{}, io.EOF
		case err != nil:
			return Event{}, fmt.Errorf("decode event %d: %w", r.read, err)
		}
		r.read++

		if r.filter.Matches(event) {
			return event, nil
		}
		r.skipped++
	}
}

// Skipped returns how many decoded events the filter rejected so far.
func (r *Reader) Skipped() int {
	return r.skipped
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}
