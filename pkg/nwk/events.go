package nwk

import "github.com/msn-network/msn-go/pkg/mac"

// Event is delivered to a connection's Handler. It is one of
// ManagementEvent, DataEvent, ConnectFailedEvent or TransmitFailedEvent.
type Event interface {
	event()
}

// Handler receives node events on the dispatcher goroutine. It must not
// block and must not retain the carried message after returning; the
// message buffer is released once the handler returns. A handler may call
// Transmit and Close; Close then returns before the node is torn down.
type Handler func(Event)

// ManagementEvent carries a management confirm or indication. The first
// one a handler receives is the confirm that completed the connection.
type ManagementEvent struct {
	Message mac.ManagementMessage
}

// DataEvent carries a data confirm or indication. For a data indication
// Payload holds the opened payload; the raw MSDU stays in Message.
type DataEvent struct {
	Message mac.DataMessage
	Payload []byte
}

// ConnectFailedEvent reports that the pending connect was abandoned.
type ConnectFailedEvent struct {
	Err error
}

// TransmitFailedEvent reports that a submitted payload was never handed to
// the MAC. The transmission slot is free again.
type TransmitFailedEvent struct {
	Dest mac.ShortAddress
	Err  error
}

func (ManagementEvent) event()     {}
func (DataEvent) event()           {}
func (ConnectFailedEvent) event()  {}
func (TransmitFailedEvent) event() {}
