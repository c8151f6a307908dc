package transcript

import "context"

// Storer persists and traverses transcript nodes. Putting a node that already
// exists is a no-op, which gives deduplication through content addressing.
type Storer interface {
	// Put stores a node and reports whether it was new.
	Put(ctx context.Context, node *Node) (bool, error)

	// Get retrieves a node by hash. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, hash string) (*Node, error)

	Has(ctx context.Context, hash string) (bool, error)

	// Children returns the nodes whose parent is parentHash; nil selects roots.
	Children(ctx context.Context, parentHash *string) ([]*Node, error)

	// List returns every node in insertion order.
	List(ctx context.Context) ([]*Node, error)

	// Roots returns the first message of every conversation.
	Roots(ctx context.Context) ([]*Node, error)

	// Leaves returns nodes without children.
	Leaves(ctx context.Context) ([]*Node, error)

	// Ancestry returns the path from a node back to its root (node first, root last).
	Ancestry(ctx context.Context, hash string) ([]*Node, error)

	// Depth returns the number of ancestors of a node (0 for roots).
	Depth(ctx context.Context, hash string) (int, error)

	Close() error
}

// ErrNotFound is returned when a node doesn't exist in the store.
type ErrNotFound struct {
	Hash string
}

func (e ErrNotFound) Error() string {
	if e.Hash == "" {
		return "node not found"
	}

	return "node not found: " + e.Hash
}
