package server

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/voicechat/pkg/transcript"
)

// handleTranscript returns the current conversation chain.
func (s *Server) handleTranscript(c *fiber.Ctx) error {
	recorder := s.conv.Transcript()
	if recorder == nil {
		return errorJSON(c, fiber.StatusNotFound, "transcript disabled")
	}

	head := recorder.Head()
	if head == "" {
		return c.JSON(TranscriptResponse{Messages: []TranscriptMessage{}})
	}

	resp, err := buildTranscript(c.UserContext(), recorder, head)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "failed to load transcript")
	}
	return c.JSON(resp)
}

// handleTranscriptAt returns the chain ending at any stored message, including
// chains from before the last clear.
func (s *Server) handleTranscriptAt(c *fiber.Ctx) error {
	recorder := s.conv.Transcript()
	if recorder == nil {
		return errorJSON(c, fiber.StatusNotFound, "transcript disabled")
	}

	hash := c.Params("hash")
	if hash == "" {
		return errorJSON(c, fiber.StatusBadRequest, "hash parameter required")
	}

	resp, err := buildTranscript(c.UserContext(), recorder, hash)
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "node not found")
	}
	return c.JSON(resp)
}

// handleTranscriptStats returns statistics about the transcript store.
func (s *Server) handleTranscriptStats(c *fiber.Ctx) error {
	recorder := s.conv.Transcript()
	if recorder == nil {
		return errorJSON(c, fiber.StatusNotFound, "transcript disabled")
	}
	ctx := c.UserContext()
	storer := recorder.Storer()

	nodes, err := storer.List(ctx)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "failed to list nodes")
	}

	roots, err := storer.Roots(ctx)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "failed to get roots")
	}

	leaves, err := storer.Leaves(ctx)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "failed to get leaves")
	}

	return c.JSON(TranscriptStats{
		TotalNodes: len(nodes),
		RootCount:  len(roots),
		LeafCount:  len(leaves),
		HeadHash:   recorder.Head(),
	})
}

// buildTranscript constructs a TranscriptResponse for the chain ending at hash.
func buildTranscript(ctx context.Context, recorder *transcript.Recorder, hash string) (*TranscriptResponse, error) {
	nodes, err := recorder.History(ctx, hash)
	if err != nil {
		return nil, err
	}

	messages := make([]TranscriptMessage, len(nodes))
	for i, node := range nodes {
		messages[i] = TranscriptMessage{
			Hash:       node.Hash,
			ParentHash: node.ParentHash,
			Role:       string(node.Entry.Role),
			Content:    node.Entry.Content,
			Model:      node.Entry.Model,
			Degraded:   node.Entry.Degraded,
		}
	}

	return &TranscriptResponse{
		Messages: messages,
		HeadHash: hash,
		Depth:    len(messages),
	}, nil
}
