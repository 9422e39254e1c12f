// Package persistence stores the node's network state across restarts.
//
// A coordinator that restarts must not hand out short addresses still held
// by associated peers, so the committed peer table is saved together with
// the node's role, short address, PAN identifier and channel.
package persistence
