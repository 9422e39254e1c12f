package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes protocol events to an slog.Logger.
// Useful for development when you want to see protocol events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("node", event.NodeID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	if event.AttemptID != "" {
		attrs = append(attrs, slog.String("attempt", event.AttemptID))
	}
	if event.LocalRole != RoleNone {
		attrs = append(attrs, slog.String("role", event.LocalRole.String()))
	}

	switch {
	case event.Primitive != nil:
		p := event.Primitive
		attrs = append(attrs, slog.String("primitive", p.Name))
		if p.Status != "" {
			attrs = append(attrs, slog.String("status", p.Status))
		}
		if p.Channel != 0 {
			attrs = append(attrs, slog.Int("channel", int(p.Channel)))
		}
		if p.Peer != "" {
			attrs = append(attrs, slog.String("peer", p.Peer))
		}
		if p.Handle != nil {
			attrs = append(attrs, slog.Int("handle", int(*p.Handle)))
		}
		if p.Size > 0 {
			attrs = append(attrs, slog.Int("size", p.Size))
		}
		if p.Detail != "" {
			attrs = append(attrs, slog.String("detail", p.Detail))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
		if event.Error.Code != nil {
			attrs = append(attrs, slog.Int("error_code", *event.Error.Code))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "protocol", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
