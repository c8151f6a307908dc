// Package transcript records completed conversation turns as a content-addressed
// chain of messages, kept in memory for the lifetime of the process.
//
// Every message is a Node whose hash covers its entry and its parent's hash, so
// identical conversations collapse onto the same nodes and a conversation that is
// cleared and restarted forms a new root.
package transcript

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/papercomputeco/voicechat/pkg/llm"
)

// Entry is the hashed content of a node.
type Entry struct {
	Role    llm.Role `json:"role"`
	Content string   `json:"content"`
	Model   string   `json:"model,omitempty"`
	// Degraded marks assistant entries holding fallback text.
	Degraded bool `json:"degraded,omitempty"`
}

// Node is a single content-addressed message in the transcript.
type Node struct {
	// Hash is the SHA-256 of the entry and parent hash, hex-encoded
	Hash string `json:"hash"`

	// ParentHash is nil for the first message of a conversation.
	ParentHash *string `json:"parent_hash"`

	Entry Entry `json:"entry"`
}

// NewNode creates a node for entry linked under parent (nil for a root).
func NewNode(entry Entry, parent *Node) *Node {
	n := &Node{Entry: entry}
	if parent != nil {
		parentHash := parent.Hash
		n.ParentHash = &parentHash
	}
	n.Hash = n.computeHash()
	return n
}

type hashInput struct {
	Entry  Entry  `json:"entry"`
	Parent string `json:"parent,omitempty"`
}

func (n *Node) computeHash() string {
	in := hashInput{Entry: n.Entry}
	if n.ParentHash != nil {
		in.Parent = *n.ParentHash
	}

	// Entry has only fixed-order scalar fields, so the encoding is canonical
	data, err := json.Marshal(in)
	if err != nil {
		panic("failed to marshal hash input: " + err.Error())
	}

	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
