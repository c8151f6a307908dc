package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/papercomputeco/voicechat/pkg/conversation"
	"github.com/papercomputeco/voicechat/pkg/logger"
	"github.com/papercomputeco/voicechat/pkg/speech"
)

const msgNoText = "No text provided"

func (s *Server) handleStartRecording(c *fiber.Ctx) error {
	if s.speech.Recorder.StartRecording() {
		return c.JSON(MessageResponse{Success: true, Message: "Recording started"})
	}
	if s.speech.Recorder.IsRecording() {
		return errorJSON(c, fiber.StatusConflict, "Already recording")
	}
	return errorJSON(c, fiber.StatusServiceUnavailable, "Recording unavailable")
}

// handleStopRecording stops the capture, transcribes it and runs a turn with
// the transcription. The reply is narrated without blocking the response.
func (s *Server) handleStopRecording(c *fiber.Ctx) error {
	rec, err := s.speech.Recorder.StopRecording()
	switch {
	case errors.Is(err, speech.ErrNotRecording):
		return errorJSON(c, fiber.StatusBadRequest, "Not recording")
	case errors.Is(err, speech.ErrUnavailable):
		return errorJSON(c, fiber.StatusServiceUnavailable, "Recording unavailable")
	case err != nil:
		s.logger.Warn("failed to stop recording", zap.Error(err))
		return errorJSON(c, fiber.StatusUnprocessableEntity, "No audio recorded")
	}
	defer func() {
		if err := rec.Remove(); err != nil {
			s.logger.Warn("failed to remove recording", zap.Error(err))
		}
	}()

	text, err := s.speech.Transcriber.Transcribe(c.UserContext(), rec)
	if err != nil {
		s.logger.Warn("transcription failed", zap.String("recording_id", rec.ID), zap.Error(err))
		return errorJSON(c, fiber.StatusUnprocessableEntity, "Could not transcribe audio")
	}

	reply, err := s.conv.Respond(c.UserContext(), text)
	if err != nil {
		if errors.Is(err, conversation.ErrEmptyUtterance) {
			return errorJSON(c, fiber.StatusUnprocessableEntity, "Could not transcribe audio")
		}
		return errorJSON(c, fiber.StatusInternalServerError, "internal error")
	}
	s.speak(reply.Text)

	return c.JSON(TurnResponse{
		Success:         true,
		TranscribedText: text,
		AIResponse:      reply.Text,
		Degraded:        !reply.OK(),
	})
}

// parseSendText decodes the request body and returns a client error message
// when it is unusable.
func (s *Server) parseSendText(c *fiber.Ctx) (*SendTextRequest, string) {
	var req SendTextRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		s.logger.Debug("failed to parse request", zap.Error(err))
		return nil, "invalid request body"
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, msgNoText
	}
	return &req, ""
}

func (s *Server) handleSendText(c *fiber.Ctx) error {
	req, msg := s.parseSendText(c)
	if req == nil {
		return errorJSON(c, fiber.StatusBadRequest, msg)
	}

	reply, err := s.conv.RespondWithModel(c.UserContext(), req.Text, req.Model)
	if err != nil {
		if errors.Is(err, conversation.ErrEmptyUtterance) {
			return errorJSON(c, fiber.StatusBadRequest, msgNoText)
		}
		return errorJSON(c, fiber.StatusInternalServerError, "internal error")
	}
	s.speak(reply.Text)

	return c.JSON(TurnResponse{
		Success:    true,
		AIResponse: reply.Text,
		Degraded:   !reply.OK(),
	})
}

// handleSendTextStream runs a streamed turn, relaying each fragment as a
// server-sent event and ending with a [DONE] event. History is updated once
// the stream is complete.
func (s *Server) handleSendTextStream(c *fiber.Ctx) error {
	req, msg := s.parseSendText(c)
	if req == nil {
		return errorJSON(c, fiber.StatusBadRequest, msg)
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")

	startTime := time.Now()
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		wrote := false
		// The request context is gone once the handler returns.
		reply, err := s.conv.RespondStreamWithModel(context.Background(), req.Text, req.Model, func(fragment string) {
			wrote = true
			s.writeEvent(w, fragment)
		})
		if err != nil {
			s.writeEvent(w, err.Error())
		} else if !wrote {
			s.writeEvent(w, reply.Text)
		}

		_, _ = w.WriteString("data: [DONE]\n\n")
		_ = w.Flush()

		s.logger.Debug("streaming complete",
			zap.String("content_preview", logger.Truncate(reply.Text, 200)),
			zap.Stringer("failure", reply.Failure),
			zap.Duration("duration", time.Since(startTime)),
		)
		s.speak(reply.Text)
	}))

	return nil
}

func (s *Server) writeEvent(w *bufio.Writer, content string) {
	data, err := json.Marshal(StreamEvent{Content: content})
	if err != nil {
		s.logger.Error("failed to encode event", zap.Error(err))
		return
	}
	_, _ = w.WriteString("data: ")
	_, _ = w.Write(data)
	_, _ = w.WriteString("\n\n")
	if err := w.Flush(); err != nil {
		s.logger.Debug("client went away", zap.Error(err))
	}
}

// speak narrates text without blocking the caller.
func (s *Server) speak(text string) {
	if text == "" {
		return
	}
	if err := s.speech.Synthesizer.Speak(text, false); err != nil {
		s.logger.Warn("failed to speak reply", zap.Error(err))
	}
}

func (s *Server) handleStopSpeaking(c *fiber.Ctx) error {
	if err := s.speech.Synthesizer.StopSpeaking(); err != nil {
		s.logger.Warn("failed to stop speaking", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(MessageResponse{Success: true, Message: "Speech stopped"})
}

func (s *Server) handleClearHistory(c *fiber.Ctx) error {
	s.conv.Clear()
	return c.JSON(MessageResponse{Success: true, Message: "History cleared"})
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(StatusResponse{
		Recording:             s.speech.Recorder.IsRecording(),
		Speaking:              s.speech.Synthesizer.IsBusy(),
		ConversationLength:    s.conv.HistoryLen(),
		ComponentsInitialized: s.models != nil && s.speech.Initialized(),
	})
}

func (s *Server) handleModels(c *fiber.Ctx) error {
	if s.models == nil {
		return errorJSON(c, fiber.StatusServiceUnavailable, "model listing unavailable")
	}
	list := s.models.AvailableModels(c.UserContext())
	if list == nil {
		return errorJSON(c, fiber.StatusBadGateway, "failed to fetch models")
	}
	return c.JSON(ModelsResponse{Success: true, Models: list.Data})
}

func (s *Server) handleModelInfo(c *fiber.Ctx) error {
	id := c.Query("id")
	if id == "" {
		return errorJSON(c, fiber.StatusBadRequest, "id parameter required")
	}
	if s.models == nil {
		return errorJSON(c, fiber.StatusServiceUnavailable, "model listing unavailable")
	}
	info := s.models.ModelInfo(c.UserContext(), id)
	if info == nil {
		return errorJSON(c, fiber.StatusNotFound, "model not found")
	}
	return c.JSON(info)
}
