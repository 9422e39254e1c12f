// Package interactive provides the interactive command-line interface
// for the msn node.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"github.com/msn-network/msn-go/pkg/addrmap"
	"github.com/msn-network/msn-go/pkg/mac"
	"github.com/msn-network/msn-go/pkg/nwk"
)

// Node is the part of *nwk.Node the console drives.
type Node interface {
	Connect(channel mac.Channel, pan mac.PanID, handler nwk.Handler) error
	Transmit(dest mac.ShortAddress, payload []byte) error
	State() nwk.ConnectionState
	Connected() bool
	Role() nwk.Role
	ShortAddress() mac.ShortAddress
	PanID() mac.PanID
	Channel() mac.Channel
	ExtendedAddress() mac.ExtendedAddress
	Peers() []addrmap.Peer
	MaxPayload() int
}

// Console handles interactive mode for msn-node.
type Console struct {
	node    Node
	rl      *readline.Instance
	out     io.Writer
	channel mac.Channel
	pan     mac.PanID

	// onEvent also receives every node event the console prints.
	onEvent nwk.Handler

	mu   sync.Mutex
	dest mac.ShortAddress
}

// New creates a console. channel and pan are used by a bare "connect".
// onEvent may be nil.
func New(node Node, channel mac.Channel, pan mac.PanID, onEvent nwk.Handler) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "msn> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	c := newConsole(node, rl.Stdout(), channel, pan, onEvent)
	c.rl = rl
	return c, nil
}

func newConsole(node Node, out io.Writer, channel mac.Channel, pan mac.PanID, onEvent nwk.Handler) *Console {
	return &Console{
		node:    node,
		out:     out,
		channel: channel,
		pan:     pan,
		onEvent: onEvent,
		dest:    mac.BroadcastShortAddress,
	}
}

// Stdout returns a writer that coordinates with the readline prompt.
func (c *Console) Stdout() io.Writer {
	return c.out
}

// Stderr returns a writer for log output that coordinates with the prompt.
func (c *Console) Stderr() io.Writer {
	if c.rl != nil {
		return c.rl.Stderr()
	}
	return c.out
}

// Run reads commands until quit, EOF or ctx is done.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	go func() {
		<-ctx.Done()
		c.rl.Close()
	}()

	for {
		if ctx.Err() != nil {
			return
		}

		line, err := c.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}
		if !c.Execute(line) {
			cancel()
			return
		}
	}
}

// Execute runs one command line. It returns false when the console should
// exit.
func (c *Console) Execute(line string) bool {
	parts := strings.Fields(strings.TrimSpace(line))
	if len(parts) == 0 {
		return true
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		c.printHelp()
	case "connect", "c":
		c.cmdConnect(args)
	case "dest", "d":
		c.cmdDest(args)
	case "send", "s":
		c.cmdSend(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), parts[0])))
	case "status":
		c.cmdStatus()
	case "peers", "p":
		c.cmdPeers()
	case "quit", "exit", "q":
		fmt.Fprintln(c.out, "Exiting...")
		return false
	default:
		fmt.Fprintf(c.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `
MSN Node Commands:
  Network:
    connect [channel] [pan] - Join or form a PAN (defaults from config)
    status                  - Show node status
    peers                   - List associated devices (coordinator)

  Data:
    dest <addr>|+|-         - Set, increment or decrement the destination
    send <text>             - Send text to the destination

  General:
    help                    - Show this help
    quit                    - Exit`)
}

// HandleEvent prints node events. It is the handler passed to Connect.
func (c *Console) HandleEvent(ev nwk.Event) {
	switch e := ev.(type) {
	case nwk.ManagementEvent:
		switch msg := e.Message.(type) {
		case *mac.AssociateConfirm, *mac.StartConfirm:
			c.printConnected()
		case *mac.CommStatusIndication:
			if msg.Status == mac.StatusSuccess {
				fmt.Fprintf(c.out, "[EVENT] Device %s associated\n", msg.DestAddress)
			}
		case *mac.DisassociateIndication:
			fmt.Fprintf(c.out, "[EVENT] Device %s left\n", msg.DeviceAddress)
		default:
			fmt.Fprintf(c.out, "[EVENT] Network management event: %s\n", e.Message.Type())
		}
	case nwk.DataEvent:
		switch msg := e.Message.(type) {
		case *mac.DataIndication:
			fmt.Fprintf(c.out, "Message from %s : %s\n", msg.SrcAddr, e.Payload)
		case *mac.DataConfirm:
			if msg.Status != mac.StatusSuccess {
				fmt.Fprintf(c.out, "[EVENT] Transmission failed: %s\n", msg.Status)
			}
		default:
			fmt.Fprintf(c.out, "[EVENT] Network data event: %s\n", e.Message.Type())
		}
	case nwk.ConnectFailedEvent:
		fmt.Fprintf(c.out, "[EVENT] Connection failed: %v\n", e.Err)
	case nwk.TransmitFailedEvent:
		fmt.Fprintf(c.out, "[EVENT] Transmission to %s failed: %v\n", e.Dest, e.Err)
	}
	if c.onEvent != nil {
		c.onEvent(ev)
	}
}

func (c *Console) printConnected() {
	role := "End device"
	if c.node.Role() == nwk.RoleCoordinator {
		role = "Coordinator"
	}
	fmt.Fprintf(c.out, "Node connected as %s with short address: %s Pan Id: %s Channel: %d\n",
		role, c.node.ShortAddress(), c.node.PanID(), c.node.Channel())
}

func (c *Console) cmdConnect(args []string) {
	channel, pan := c.channel, c.pan
	if len(args) > 0 {
		v, err := strconv.ParseUint(args[0], 0, 8)
		if err != nil {
			fmt.Fprintf(c.out, "Invalid channel: %s\n", args[0])
			return
		}
		channel = mac.Channel(v)
	}
	if len(args) > 1 {
		v, err := strconv.ParseUint(args[1], 0, 16)
		if err != nil {
			fmt.Fprintf(c.out, "Invalid PAN id: %s\n", args[1])
			return
		}
		pan = mac.PanID(v)
	}

	if err := c.node.Connect(channel, pan, c.HandleEvent); err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, "Starting connection, this can take several seconds.")
}

func (c *Console) cmdDest(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: dest <addr>|+|-")
		fmt.Fprintln(c.out, "  Example: dest 0x0001")
		return
	}

	c.mu.Lock()
	switch args[0] {
	case "+":
		c.dest++
	case "-":
		c.dest--
	default:
		v, err := strconv.ParseUint(args[0], 0, 16)
		if err != nil {
			c.mu.Unlock()
			fmt.Fprintf(c.out, "Invalid address: %s\n", args[0])
			return
		}
		c.dest = mac.ShortAddress(v)
	}
	dest := c.dest
	c.mu.Unlock()

	fmt.Fprintf(c.out, "Destination address: %s\n", dest)
}

// Destination returns the current destination address.
func (c *Console) Destination() mac.ShortAddress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dest
}

func (c *Console) cmdSend(text string) {
	if text == "" {
		fmt.Fprintln(c.out, "Usage: send <text>")
		return
	}
	payload := []byte(text)
	if max := c.node.MaxPayload(); len(payload) > max {
		payload = payload[:max]
		fmt.Fprintf(c.out, "Message truncated to %d bytes\n", max)
	}
	dest := c.Destination()
	if err := c.node.Transmit(dest, payload); err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "Sent %d bytes to %s\n", len(payload), dest)
}

func (c *Console) cmdStatus() {
	fmt.Fprintln(c.out, "\nNode Status")
	fmt.Fprintln(c.out, "-------------------------------------------")
	fmt.Fprintf(c.out, "  Extended Address: %s\n", c.node.ExtendedAddress())
	fmt.Fprintf(c.out, "  State:            %s\n", c.node.State())
	if c.node.Connected() {
		fmt.Fprintf(c.out, "  Role:             %s\n", c.node.Role())
		fmt.Fprintf(c.out, "  Short Address:    %s\n", c.node.ShortAddress())
		fmt.Fprintf(c.out, "  PAN Id:           %s\n", c.node.PanID())
		fmt.Fprintf(c.out, "  Channel:          %d\n", c.node.Channel())
	}
	fmt.Fprintf(c.out, "  Destination:      %s\n", c.Destination())
	fmt.Fprintf(c.out, "  Max Payload:      %d bytes\n", c.node.MaxPayload())
}

func (c *Console) cmdPeers() {
	if c.node.Role() != nwk.RoleCoordinator {
		fmt.Fprintln(c.out, "Not a coordinator")
		return
	}
	peers := c.node.Peers()
	if len(peers) == 0 {
		fmt.Fprintln(c.out, "No associated devices")
		return
	}
	fmt.Fprintln(c.out, "\nAssociated Devices")
	fmt.Fprintln(c.out, "-------------------------------------------")
	for _, p := range peers {
		fmt.Fprintf(c.out, "  %s  %s\n", p.Address, p.Device)
	}
}
