package nwk

import (
	"fmt"

	"github.com/msn-network/msn-go/pkg/addrmap"
	"github.com/msn-network/msn-go/pkg/persistence"
)

// restore reloads the peers of a coordinator saved under the same identity.
func (n *Node) restore() error {
	if n.store == nil {
		return nil
	}
	st, err := n.store.Load()
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if st == nil {
		return nil
	}
	if st.ExtendedAddress != n.ExtendedAddress() {
		n.logger.Warn("init: stored state belongs to another node", "stored", st.ExtendedAddress.String())
		return nil
	}
	if st.Role != persistence.RoleCoordinator || len(st.Peers) == 0 {
		return nil
	}

	peers := make([]addrmap.Peer, 0, len(st.Peers))
	for _, p := range st.Peers {
		peers = append(peers, addrmap.Peer{Address: p.ShortAddress, Device: p.ExtendedAddress})
	}
	if err := n.alloc.Restore(peers); err != nil {
		return fmt.Errorf("restore peers: %w", err)
	}
	for _, p := range st.Peers {
		n.joinedAt[p.ShortAddress] = p.JoinedAt
	}
	n.metrics.SetPeers(n.alloc.Count())
	n.logger.Info("init: restored peers", "count", len(peers))
	return nil
}

// saveState persists the node's membership and committed peers.
func (n *Node) saveState() error {
	if n.store == nil {
		return nil
	}

	n.mu.RLock()
	st := &persistence.NodeState{
		ExtendedAddress: n.identity.ExtendedAddress,
		ShortAddress:    n.shortAddr,
		PanID:           n.panID,
		Channel:         n.channel,
	}
	role := n.role
	n.mu.RUnlock()

	switch role {
	case RoleDevice:
		st.Role = persistence.RoleDevice
	case RoleCoordinator:
		st.Role = persistence.RoleCoordinator
		for _, p := range n.alloc.Peers() {
			st.Peers = append(st.Peers, persistence.PeerRecord{
				ShortAddress:    p.Address,
				ExtendedAddress: p.Device,
				JoinedAt:        n.joinedAt[p.Address],
			})
		}
	default:
		return nil
	}

	if err := n.store.Save(st); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}
