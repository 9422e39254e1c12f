// Package mac defines the contract between the network layer and an IEEE
// 802.15.4 MAC/PHY service provider.
//
// The MAC service performs channel access, frame transmission, acknowledgment
// and energy measurement. The network layer only issues abstract requests to
// it and receives confirmations and indications back through two asynchronous
// service access points:
//   - Management (MLME): scan, associate, start, comm-status, beacon notify
//   - Data (MCPS): data confirm, data indication, purge confirm
//
// # Requests
//
// Requests are issued through the Service interface. Asynchronous requests
// (Scan, Associate, RespondAssociate, Start, Data) return only whether the
// MAC accepted them; the outcome arrives later as a message. SetPIB is
// synchronous.
//
// # Messages
//
// Confirmations and indications are tagged variants: each message kind is its
// own struct implementing ManagementMessage or DataMessage. A MAC delivers
// them through a Sink handed to it at construction.
//
// Every message embeds a Buffer. Whoever dequeues a message must call Release
// once it is done with it, whether or not the message was expected.
package mac
