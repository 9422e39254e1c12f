// Package nwk implements the join/formation control plane of a star PAN
// node on top of an IEEE 802.15.4 MAC service.
//
// A Node is brought up once with Init and then asked to Connect to a PAN on
// a channel. It first runs an active scan looking for a non-beacon
// coordinator of that PAN that permits association and associates to it.
// When none is found, or association is refused, it waits a retry interval,
// measures channel energy and starts the PAN itself as coordinator. Once
// connected (state Listen) the node relays payloads with Transmit and, as
// coordinator, admits peers by allocating short addresses.
//
// # Concurrency
//
// All protocol work happens on one dispatcher goroutine started by Init.
// It blocks on a set of event flags raised by the MAC delivery paths, the
// public API and the retry timer. Each wake handles at most one management
// message and then at most one data message; queues that still hold
// messages re-raise their flag so the next wake follows immediately.
//
// The event handler passed to Connect runs on the dispatcher goroutine. It
// may call Transmit but must not block, and must not retain the MAC message
// it receives: the message buffer is released when the handler returns.
package nwk
