package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/msn-network/msn-go/internal/config"
	"github.com/msn-network/msn-go/pkg/log"
	"github.com/msn-network/msn-go/pkg/mac"
	"github.com/msn-network/msn-go/pkg/mac/sim"
	"github.com/msn-network/msn-go/pkg/metrics"
	"github.com/msn-network/msn-go/pkg/nwk"
	"github.com/msn-network/msn-go/pkg/persistence"
)

// peerJoinTimeout bounds how long a background peer is waited for before
// the next one starts.
const peerJoinTimeout = 30 * time.Second

// simNode is a node attached to the simulated medium.
type simNode struct {
	*nwk.Node
	radio *sim.Radio
}

// nodeFactory builds nodes that share a medium and log sinks.
type nodeFactory struct {
	cfg     *config.Config
	medium  *sim.Medium
	logger  *slog.Logger
	plog    log.Logger
	metrics *metrics.Metrics
}

// start attaches and initializes a node. Only the node started with
// withMetrics records into the shared collectors.
func (f *nodeFactory) start(ctx context.Context, ext mac.ExtendedAddress, pan mac.PanID, withMetrics bool) (*simNode, error) {
	ncfg, err := f.cfg.Network()
	if err != nil {
		return nil, err
	}
	if ncfg.Framer, err = f.cfg.Framer(pan); err != nil {
		return nil, err
	}
	ncfg.Logger = f.logger.With("node", ext.String())
	ncfg.ProtocolLogger = f.plog
	if withMetrics {
		ncfg.Metrics = f.metrics
	}
	if path := f.cfg.StatePath(ext); path != "" {
		ncfg.StateStore = persistence.NewNodeStateStore(path)
	}

	in := nwk.NewInbox(ncfg)
	radio := f.medium.Attach(in)
	node, err := nwk.NewNode(radio, in, ncfg)
	if err != nil {
		f.medium.Detach(radio)
		return nil, err
	}
	if err := node.Init(ctx, nwk.Identity{ExtendedAddress: ext}); err != nil {
		f.medium.Detach(radio)
		return nil, fmt.Errorf("init node %s: %w", ext, err)
	}
	return &simNode{Node: node, radio: radio}, nil
}

// stop closes the node and removes its radio.
func (f *nodeFactory) stop(n *simNode) error {
	err := n.Close()
	f.medium.Detach(n.radio)
	return err
}

// peerAddress returns the extended address of background peer i.
func peerAddress(base mac.ExtendedAddress, i int) mac.ExtendedAddress {
	return base + 0x1000 + mac.ExtendedAddress(i)
}

// runPeers starts count echo peers once ready is closed and keeps them
// running until ctx is done. Peers join one after the other.
func runPeers(ctx context.Context, f *nodeFactory, count int, base mac.ExtendedAddress, channel mac.Channel, pan mac.PanID, ready <-chan struct{}) (err error) {
	if count == 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return nil
	case <-ready:
	}

	var peers []*simNode
	defer func() {
		for _, p := range peers {
			err = multierr.Append(err, f.stop(p))
		}
	}()

	for i := 1; i <= count; i++ {
		ext := peerAddress(base, i)
		p, err := f.start(ctx, ext, pan, false)
		if err != nil {
			return err
		}
		peers = append(peers, p)

		joined := make(chan struct{})
		if err := p.Connect(channel, pan, echoHandler(f.logger, p, joined)); err != nil {
			return fmt.Errorf("connect peer %s: %w", ext, err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-joined:
			f.logger.Info("sim peer joined", "extAddr", ext.String(), "shortAddr", p.ShortAddress().String())
		case <-time.After(peerJoinTimeout):
			f.logger.Warn("sim peer still joining", "extAddr", ext.String(), "state", p.State().String())
		}
	}

	<-ctx.Done()
	return nil
}

// echoHandler returns unicast payloads to their sender. joined is closed
// on the first event, which is the confirm that completed the connection.
func echoHandler(logger *slog.Logger, node *simNode, joined chan struct{}) nwk.Handler {
	var once sync.Once
	return func(ev nwk.Event) {
		once.Do(func() { close(joined) })

		de, ok := ev.(nwk.DataEvent)
		if !ok {
			if fe, ok := ev.(nwk.ConnectFailedEvent); ok {
				logger.Warn("sim peer gave up", "extAddr", node.ExtendedAddress().String(), "error", fe.Err)
			}
			return
		}
		ind, ok := de.Message.(*mac.DataIndication)
		if !ok || ind.DstAddr == mac.BroadcastShortAddress {
			return
		}

		err := node.Transmit(ind.SrcAddr, de.Payload)
		switch {
		case err == nil:
			logger.Debug("sim peer echo", "shortAddr", node.ShortAddress().String(), "dest", ind.SrcAddr.String(), "len", len(de.Payload))
		case errors.Is(err, nwk.ErrBusy):
			logger.Debug("sim peer echo dropped, slot busy", "shortAddr", node.ShortAddress().String())
		default:
			logger.Warn("sim peer echo failed", "shortAddr", node.ShortAddress().String(), "error", err)
		}
	}
}
