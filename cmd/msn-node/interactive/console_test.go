package interactive

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msn-network/msn-go/pkg/addrmap"
	"github.com/msn-network/msn-go/pkg/mac"
	"github.com/msn-network/msn-go/pkg/nwk"
)

type sent struct {
	dest    mac.ShortAddress
	payload []byte
}

type fakeNode struct {
	connected bool
	role      nwk.Role
	channel   mac.Channel
	pan       mac.PanID
	peers     []addrmap.Peer
	sent      []sent
	err       error
}

func (f *fakeNode) Connect(channel mac.Channel, pan mac.PanID, _ nwk.Handler) error {
	if f.err != nil {
		return f.err
	}
	f.channel, f.pan = channel, pan
	return nil
}

func (f *fakeNode) Transmit(dest mac.ShortAddress, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sent{dest: dest, payload: payload})
	return nil
}

func (f *fakeNode) State() nwk.ConnectionState           { return nwk.StateListen }
func (f *fakeNode) Connected() bool                      { return f.connected }
func (f *fakeNode) Role() nwk.Role                       { return f.role }
func (f *fakeNode) ShortAddress() mac.ShortAddress       { return 0x0000 }
func (f *fakeNode) PanID() mac.PanID                     { return f.pan }
func (f *fakeNode) Channel() mac.Channel                 { return f.channel }
func (f *fakeNode) ExtendedAddress() mac.ExtendedAddress { return 1 }
func (f *fakeNode) Peers() []addrmap.Peer                { return f.peers }
func (f *fakeNode) MaxPayload() int                      { return 8 }

func newTestConsole(node *fakeNode) (*Console, *bytes.Buffer) {
	var out bytes.Buffer
	return newConsole(node, &out, 11, 0xC0C0, nil), &out
}

func TestConnect(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		node := &fakeNode{}
		c, out := newTestConsole(node)
		assert.True(t, c.Execute("connect"))
		assert.Equal(t, mac.Channel(11), node.channel)
		assert.Equal(t, mac.PanID(0xC0C0), node.pan)
		assert.Contains(t, out.String(), "Starting connection")
	})

	t.Run("explicit", func(t *testing.T) {
		node := &fakeNode{}
		c, _ := newTestConsole(node)
		c.Execute("connect 20 0x1234")
		assert.Equal(t, mac.Channel(20), node.channel)
		assert.Equal(t, mac.PanID(0x1234), node.pan)
	})

	t.Run("error", func(t *testing.T) {
		node := &fakeNode{err: nwk.ErrAlreadyConnected}
		c, out := newTestConsole(node)
		c.Execute("connect")
		assert.Contains(t, out.String(), "Error:")
	})

	t.Run("bad channel", func(t *testing.T) {
		c, out := newTestConsole(&fakeNode{})
		c.Execute("connect eleven")
		assert.Contains(t, out.String(), "Invalid channel")
	})
}

func TestDest(t *testing.T) {
	c, out := newTestConsole(&fakeNode{})
	assert.Equal(t, mac.BroadcastShortAddress, c.Destination())

	c.Execute("dest 0x0001")
	assert.Equal(t, mac.ShortAddress(0x0001), c.Destination())
	c.Execute("dest +")
	assert.Equal(t, mac.ShortAddress(0x0002), c.Destination())
	c.Execute("dest -")
	c.Execute("dest -")
	assert.Equal(t, mac.ShortAddress(0x0000), c.Destination())

	c.Execute("dest nowhere")
	assert.Contains(t, out.String(), "Invalid address")
	assert.Equal(t, mac.ShortAddress(0x0000), c.Destination())
}

func TestSend(t *testing.T) {
	node := &fakeNode{}
	c, out := newTestConsole(node)
	c.Execute("dest 2")
	c.Execute("send hi there")
	c.Execute("send this is too long")

	require.Len(t, node.sent, 2)
	assert.Equal(t, sent{dest: 2, payload: []byte("hi there")}, node.sent[0])
	assert.Equal(t, []byte("this is "), node.sent[1].payload)
	assert.Contains(t, out.String(), "truncated")

	out.Reset()
	c.Execute("send")
	assert.Contains(t, out.String(), "Usage: send")
}

func TestPeers(t *testing.T) {
	node := &fakeNode{}
	c, out := newTestConsole(node)
	c.Execute("peers")
	assert.Contains(t, out.String(), "Not a coordinator")

	node.role = nwk.RoleCoordinator
	node.peers = []addrmap.Peer{{Address: 1, Device: 0x00124B0000001001}}
	out.Reset()
	c.Execute("peers")
	assert.Contains(t, out.String(), "0x0001")
	assert.Contains(t, out.String(), "00:12:4B:00:00:00:10:01")
}

func TestQuitAndUnknown(t *testing.T) {
	c, out := newTestConsole(&fakeNode{})
	assert.True(t, c.Execute(""))
	assert.True(t, c.Execute("frobnicate"))
	assert.Contains(t, out.String(), "Unknown command: frobnicate")
	assert.False(t, c.Execute("quit"))
}

func TestHandleEvent(t *testing.T) {
	node := &fakeNode{connected: true, role: nwk.RoleCoordinator, channel: 11, pan: 0xC0C0}
	var forwarded []nwk.Event
	var out bytes.Buffer
	c := newConsole(node, &out, 11, 0xC0C0, func(ev nwk.Event) { forwarded = append(forwarded, ev) })

	c.HandleEvent(nwk.ManagementEvent{Message: &mac.StartConfirm{}})
	assert.Contains(t, out.String(), "Node connected as Coordinator")

	c.HandleEvent(nwk.DataEvent{Message: &mac.DataIndication{SrcAddr: 0x0001}, Payload: []byte("ping")})
	assert.Contains(t, out.String(), "Message from 0x0001 : ping")

	c.HandleEvent(nwk.TransmitFailedEvent{Dest: 3, Err: nwk.ErrAllocationFailed})
	assert.Contains(t, out.String(), "Transmission to 0x0003 failed")

	assert.Len(t, forwarded, 3)
}
