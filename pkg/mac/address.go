package mac

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// ShortAddress is a 16-bit address assigned to a device at association time.
type ShortAddress uint16

const (
	// UnassignedShortAddress marks a device without a short address.
	// It doubles as the broadcast address in data requests.
	UnassignedShortAddress ShortAddress = 0xFFFF

	// BroadcastShortAddress addresses every device in the PAN.
	BroadcastShortAddress ShortAddress = 0xFFFF

	// NoShortAddress is returned in an association response that grants
	// no short address.
	NoShortAddress ShortAddress = 0xFFFE
)

// String returns the address as 0xNNNN.
func (a ShortAddress) String() string {
	return fmt.Sprintf("0x%04X", uint16(a))
}

// Assigned reports whether the address is a usable unicast short address.
func (a ShortAddress) Assigned() bool {
	return a != UnassignedShortAddress && a != NoShortAddress
}

// PanID identifies a personal area network.
type PanID uint16

// UnassignedPanID marks a node that has not joined or formed a PAN.
const UnassignedPanID PanID = 0xFFFF

// String returns the PAN identifier as 0xNNNN.
func (p PanID) String() string {
	return fmt.Sprintf("0x%04X", uint16(p))
}

// ExtendedAddress is the 64-bit IEEE address of a radio.
type ExtendedAddress uint64

// String returns the address as colon-separated hex bytes, most significant first.
func (e ExtendedAddress) String() string {
	var b strings.Builder
	for i := 7; i >= 0; i-- {
		fmt.Fprintf(&b, "%02X", byte(e>>(uint(i)*8)))
		if i > 0 {
			b.WriteByte(':')
		}
	}
	return b.String()
}

// ParseExtendedAddress parses an address written as 16 hex digits, optionally
// separated by colons, or with a 0x prefix.
func ParseExtendedAddress(s string) (ExtendedAddress, error) {
	clean := strings.ReplaceAll(strings.TrimPrefix(strings.ToLower(s), "0x"), ":", "")
	if len(clean) == 0 || len(clean) > 16 {
		return 0, fmt.Errorf("invalid extended address %q", s)
	}
	v, err := strconv.ParseUint(clean, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid extended address %q: %w", s, err)
	}
	return ExtendedAddress(v), nil
}

// AddressMode selects how an address field is interpreted.
type AddressMode uint8

const (
	// AddrModeNone means the address field is absent.
	AddrModeNone AddressMode = 0
	// AddrModeShort selects 16-bit short addressing.
	AddrModeShort AddressMode = 2
	// AddrModeExtended selects 64-bit extended addressing.
	AddrModeExtended AddressMode = 3
)

// String returns the address mode name.
func (m AddressMode) String() string {
	switch m {
	case AddrModeNone:
		return "NONE"
	case AddrModeShort:
		return "SHORT"
	case AddrModeExtended:
		return "EXTENDED"
	default:
		return "UNKNOWN"
	}
}

// Channel is a 2.4 GHz O-QPSK logical channel.
type Channel uint8

// Channel range for the 2.4 GHz band.
const (
	MinChannel Channel = 11
	MaxChannel Channel = 26
)

// Valid reports whether the channel is within 11..26.
func (c Channel) Valid() bool {
	return c >= MinChannel && c <= MaxChannel
}

// ChannelMask is a bit set of logical channels: bit n selects channel n.
type ChannelMask uint32

// MaskOf returns a mask selecting the given channels.
func MaskOf(channels ...Channel) ChannelMask {
	var m ChannelMask
	for _, c := range channels {
		m |= 1 << c
	}
	return m
}

// AllChannels selects channels 11 through 26.
const AllChannels ChannelMask = 0x07FFF800

// Contains reports whether the mask selects c.
func (m ChannelMask) Contains(c Channel) bool {
	return c < 32 && m&(1<<c) != 0
}

// Channels returns the selected channels in ascending order.
func (m ChannelMask) Channels() []Channel {
	out := make([]Channel, 0, bits.OnesCount32(uint32(m)))
	for c := Channel(0); c < 32; c++ {
		if m.Contains(c) {
			out = append(out, c)
		}
	}
	return out
}

// Valid reports whether the mask is non-empty and selects only channels 11..26.
func (m ChannelMask) Valid() bool {
	return m != 0 && m&^AllChannels == 0
}
