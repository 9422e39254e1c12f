package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/msn-network/msn-go/pkg/mac"
)

// StateVersion is the current version of the state file format.
const StateVersion = 1

// ErrUnsupportedVersion is returned by Load for files written by a newer format.
var ErrUnsupportedVersion = errors.New("unsupported state file version")

// Role names stored in NodeState.Role.
const (
	RoleDevice      = "device"
	RoleCoordinator = "coordinator"
)

// NodeState is the persisted network state of a node.
type NodeState struct {
	// Version is the state file format version.
	Version int `json:"version"`

	// SavedAt is when the state was last saved.
	SavedAt time.Time `json:"saved_at"`

	// ExtendedAddress is the node's 64-bit address, for sanity checking.
	ExtendedAddress mac.ExtendedAddress `json:"extended_address"`

	// Role is RoleDevice or RoleCoordinator.
	Role string `json:"role"`

	// ShortAddress is the node's own short address.
	ShortAddress mac.ShortAddress `json:"short_address"`

	// PanID is the PAN the node joined or formed.
	PanID mac.PanID `json:"pan_id"`

	// Channel is the logical channel the PAN operates on.
	Channel mac.Channel `json:"channel"`

	// Peers are the committed address bindings (coordinator only).
	Peers []PeerRecord `json:"peers,omitempty"`
}

// PeerRecord is a short address bound to an associated device.
type PeerRecord struct {
	ShortAddress    mac.ShortAddress    `json:"short_address"`
	ExtendedAddress mac.ExtendedAddress `json:"extended_address"`

	// JoinedAt is when the binding was committed.
	JoinedAt time.Time `json:"joined_at,omitempty"`
}

// NodeStateStore manages persistence of node state to a JSON file.
type NodeStateStore struct {
	mu   sync.Mutex
	path string
}

// NewNodeStateStore creates a store backed by the file at path.
func NewNodeStateStore(path string) *NodeStateStore {
	return &NodeStateStore{path: path}
}

// Path returns the backing file path.
func (s *NodeStateStore) Path() string {
	return s.path
}

// Save persists the node state to disk. The file is replaced atomically.
func (s *NodeStateStore) Save(state *NodeState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	state.Version = StateVersion
	state.SavedAt = time.Now()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Load reads the node state from disk.
// Returns nil, nil if the file doesn't exist (empty state).
func (s *NodeStateStore) Load() (*NodeState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := &NodeState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}
	if state.Version > StateVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, state.Version)
	}

	return state, nil
}

// Clear removes the state file.
func (s *NodeStateStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
