// Package history keeps the rolling, bounded conversation history shared by all
// input channels.
package history

import (
	"sync"

	"github.com/papercomputeco/voicechat/pkg/llm"
)

// DefaultMaxMessages keeps the last ten user/assistant exchanges.
const DefaultMaxMessages = 20

// Store is an ordered, oldest-first message log capped at a maximum length.
// Appends and their trim are applied as one unit, so a reader never observes a
// half-inserted turn. The zero value is not usable; use New.
type Store struct {
	mu       sync.RWMutex
	messages []llm.Message
	max      int
}

// New creates an empty store keeping at most max messages. A non-positive max
// selects DefaultMaxMessages.
func New(max int) *Store {
	if max <= 0 {
		max = DefaultMaxMessages
	}
	return &Store{max: max}
}

// Append adds msgs to the end and evicts the oldest messages beyond the maximum.
func (s *Store) Append(msgs ...llm.Message) {
	if len(msgs) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, msgs...)
	if over := len(s.messages) - s.max; over > 0 {
		// copy into a fresh slice so evicted messages are released
		kept := make([]llm.Message, s.max)
		copy(kept, s.messages[over:])
		s.messages = kept
	}
}

// Clear discards every message.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}

// Snapshot returns a copy of the messages, oldest first.
func (s *Store) Snapshot() []llm.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]llm.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of stored messages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Max returns the configured bound.
func (s *Store) Max() int {
	return s.max
}
