package transcript

import (
	"context"
	"errors"
	"sync"
)

// DefaultMaxNodes bounds a MemoryStorer created by the application.
const DefaultMaxNodes = 10000

// MemoryStorer is an in-memory Storer. It is safe for concurrent use.
type MemoryStorer struct {
	mu       sync.RWMutex
	nodes    map[string]*Node
	order    []string
	children map[string]int
	maxNodes int
	closed   bool
}

// MemoryOption configures a MemoryStorer.
type MemoryOption func(*MemoryStorer)

// WithMaxNodes caps the store. Once it holds more than n nodes, whole
// conversations are evicted oldest root first; the conversation being written
// to is never evicted, so a single uncleared conversation may exceed the cap.
// Zero or less means unbounded.
func WithMaxNodes(n int) MemoryOption {
	return func(s *MemoryStorer) {
		s.maxNodes = n
	}
}

// NewMemoryStorer creates an empty store.
func NewMemoryStorer(opts ...MemoryOption) *MemoryStorer {
	s := &MemoryStorer{
		nodes:    make(map[string]*Node),
		children: make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var errClosed = errors.New("transcript store is closed")

// Put stores node unless a node with the same hash exists.
func (s *MemoryStorer) Put(_ context.Context, node *Node) (bool, error) {
	if node == nil {
		return false, errors.New("cannot store nil node")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, errClosed
	}
	if _, ok := s.nodes[node.Hash]; ok {
		return false, nil
	}

	stored := *node
	s.nodes[node.Hash] = &stored
	s.order = append(s.order, node.Hash)
	if node.ParentHash != nil {
		s.children[*node.ParentHash]++
	}

	if s.maxNodes > 0 && len(s.nodes) > s.maxNodes {
		s.evict(s.rootOf(node.Hash))
	}
	return true, nil
}

// rootOf follows parents from hash to the first node of its conversation.
func (s *MemoryStorer) rootOf(hash string) string {
	for {
		node, ok := s.nodes[hash]
		if !ok || node.ParentHash == nil {
			return hash
		}
		hash = *node.ParentHash
	}
}

// evict drops the oldest conversations other than the one rooted at keep until
// the store fits its cap.
func (s *MemoryStorer) evict(keep string) {
	for len(s.nodes) > s.maxNodes {
		victim := ""
		for _, hash := range s.order {
			if s.nodes[hash].ParentHash == nil && hash != keep {
				victim = hash
				break
			}
		}
		if victim == "" {
			return
		}

		// Parents precede children in insertion order.
		doomed := map[string]bool{victim: true}
		kept := s.order[:0]
		for _, hash := range s.order {
			node := s.nodes[hash]
			if doomed[hash] || (node.ParentHash != nil && doomed[*node.ParentHash]) {
				doomed[hash] = true
				delete(s.nodes, hash)
				delete(s.children, hash)
				continue
			}
			kept = append(kept, hash)
		}
		s.order = kept
	}
}

// Get retrieves a copy of the node with the given hash.
func (s *MemoryStorer) Get(_ context.Context, hash string) (*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(hash)
}

func (s *MemoryStorer) get(hash string) (*Node, error) {
	node, ok := s.nodes[hash]
	if !ok {
		return nil, ErrNotFound{Hash: hash}
	}
	out := *node
	return &out, nil
}

func (s *MemoryStorer) Has(_ context.Context, hash string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.nodes[hash]
	return ok, nil
}

func (s *MemoryStorer) Children(_ context.Context, parentHash *string) ([]*Node, error) {
	return s.filter(func(n *Node) bool {
		if parentHash == nil {
			return n.ParentHash == nil
		}
		return n.ParentHash != nil && *n.ParentHash == *parentHash
	}), nil
}

func (s *MemoryStorer) List(_ context.Context) ([]*Node, error) {
	return s.filter(func(*Node) bool { return true }), nil
}

func (s *MemoryStorer) Roots(ctx context.Context) ([]*Node, error) {
	return s.Children(ctx, nil)
}

func (s *MemoryStorer) Leaves(_ context.Context) ([]*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var leaves []*Node
	for _, hash := range s.order {
		if s.children[hash] == 0 {
			node, _ := s.get(hash)
			leaves = append(leaves, node)
		}
	}
	return leaves, nil
}

func (s *MemoryStorer) Ancestry(_ context.Context, hash string) ([]*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var path []*Node
	current := hash
	for {
		node, err := s.get(current)
		if err != nil {
			return nil, err
		}
		path = append(path, node)
		if node.ParentHash == nil {
			return path, nil
		}
		current = *node.ParentHash
	}
}

func (s *MemoryStorer) Depth(ctx context.Context, hash string) (int, error) {
	path, err := s.Ancestry(ctx, hash)
	if err != nil {
		return 0, err
	}
	return len(path) - 1, nil
}

// Close drops every node; later puts fail.
func (s *MemoryStorer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.nodes = make(map[string]*Node)
	s.children = make(map[string]int)
	s.order = nil
	return nil
}

func (s *MemoryStorer) filter(keep func(*Node) bool) []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Node, 0, len(s.order))
	for _, hash := range s.order {
		node := s.nodes[hash]
		if keep(node) {
			copied := *node
			out = append(out, &copied)
		}
	}
	return out
}
