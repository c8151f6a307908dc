package transcript

import (
	"context"
	"fmt"
	"sync"

	"github.com/papercomputeco/voicechat/pkg/llm"
)

// Recorder appends turns to the current conversation chain of a Storer.
type Recorder struct {
	mu     sync.Mutex
	storer Storer
	head   *Node
}

// NewRecorder creates a recorder writing to storer.
func NewRecorder(storer Storer) *Recorder {
	return &Recorder{storer: storer}
}

// Record stores the user and assistant messages of turn under the current head
// and returns the new head hash.
func (r *Recorder) Record(ctx context.Context, turn llm.Turn) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userNode := NewNode(Entry{
		Role:    turn.User.Role,
		Content: turn.User.Content,
		Model:   turn.Model,
	}, r.head)
	if _, err := r.storer.Put(ctx, userNode); err != nil {
		return "", fmt.Errorf("storing user node: %w", err)
	}

	assistantNode := NewNode(Entry{
		Role:     turn.Assistant.Role,
		Content:  turn.Assistant.Content,
		Model:    turn.Model,
		Degraded: turn.Degraded,
	}, userNode)
	if _, err := r.storer.Put(ctx, assistantNode); err != nil {
		return "", fmt.Errorf("storing assistant node: %w", err)
	}

	r.head = assistantNode
	return assistantNode.Hash, nil
}

// Reset starts a new chain: the next recorded turn becomes a root.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.head = nil
}

// Head returns the hash of the latest recorded message, or "" when the current
// chain is empty.
func (r *Recorder) Head() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.head == nil {
		return ""
	}
	return r.head.Hash
}

// History returns the chain ending at hash, oldest first.
func (r *Recorder) History(ctx context.Context, hash string) ([]*Node, error) {
	ancestry, err := r.storer.Ancestry(ctx, hash)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(ancestry)-1; i < j; i, j = i+1, j-1 {
		ancestry[i], ancestry[j] = ancestry[j], ancestry[i]
	}
	return ancestry, nil
}

// Storer exposes the underlying store for inspection endpoints.
func (r *Recorder) Storer() Storer {
	return r.storer
}
