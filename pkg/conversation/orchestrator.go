// Package conversation ties an utterance, the completion client and the shared
// history together into a single conversation turn.
package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/voicechat/pkg/history"
	"github.com/papercomputeco/voicechat/pkg/llm"
	"github.com/papercomputeco/voicechat/pkg/logger"
	"github.com/papercomputeco/voicechat/pkg/openrouter"
	"github.com/papercomputeco/voicechat/pkg/transcript"
)

// ErrEmptyUtterance is returned for utterances that are blank after trimming.
var ErrEmptyUtterance = errors.New("no text provided")

// Responder produces blocking completions. *openrouter.Client implements it.
type Responder interface {
	GenerateResponse(ctx context.Context, userInput, model string, history []llm.Message) openrouter.Reply
}

// StreamResponder produces streamed completions. *openrouter.Client implements it.
type StreamResponder interface {
	GenerateStreamingResponse(ctx context.Context, userInput, model string, history []llm.Message) *openrouter.Stream
}

// Orchestrator runs conversation turns against a shared history store. Turns from
// concurrent callers each see a consistent snapshot and append atomically; the
// store is never locked while a completion is in flight.
type Orchestrator struct {
	// mu orders history writes against transcript writes so a clear never
	// separates the two.
	mu sync.Mutex

	client     Responder
	history    *history.Store
	transcript *transcript.Recorder
	model      string
	logger     *zap.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithModel selects the model for every turn instead of the client default.
func WithModel(model string) Option {
	return func(o *Orchestrator) {
		o.model = model
	}
}

// WithTranscript records every completed turn.
func WithTranscript(r *transcript.Recorder) Option {
	return func(o *Orchestrator) {
		o.transcript = r
	}
}

// New creates an Orchestrator.
func New(client Responder, store *history.Store, logger *zap.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &Orchestrator{
		client:  client,
		history: store,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Respond runs one blocking turn: exactly one completion call, then the user
// message and the reply are appended to history together. Fallback replies are
// recorded like model replies.
func (o *Orchestrator) Respond(ctx context.Context, utterance string) (openrouter.Reply, error) {
	return o.RespondWithModel(ctx, utterance, "")
}

// RespondWithModel is Respond with a per-turn model override.
func (o *Orchestrator) RespondWithModel(ctx context.Context, utterance, model string) (openrouter.Reply, error) {
	text := strings.TrimSpace(utterance)
	if text == "" {
		return openrouter.Reply{}, ErrEmptyUtterance
	}

	startTime := time.Now()
	reply := o.client.GenerateResponse(ctx, text, o.pickModel(model), o.history.Snapshot())
	o.commit(ctx, text, reply)

	o.logger.Debug("turn complete",
		zap.String("utterance", logger.Truncate(text, 50)),
		zap.String("reply", logger.Truncate(reply.Text, 50)),
		zap.Stringer("failure", reply.Failure),
		zap.Duration("duration", time.Since(startTime)),
	)
	return reply, nil
}

// RespondStream runs one streamed turn, passing each fragment to onFragment as it
// arrives. History is updated with the accumulated text once the stream ends.
func (o *Orchestrator) RespondStream(ctx context.Context, utterance string, onFragment func(string)) (openrouter.Reply, error) {
	return o.RespondStreamWithModel(ctx, utterance, "", onFragment)
}

// RespondStreamWithModel is RespondStream with a per-turn model override.
func (o *Orchestrator) RespondStreamWithModel(ctx context.Context, utterance, model string, onFragment func(string)) (openrouter.Reply, error) {
	text := strings.TrimSpace(utterance)
	if text == "" {
		return openrouter.Reply{}, ErrEmptyUtterance
	}

	streamer, ok := o.client.(StreamResponder)
	if !ok {
		// Degrade to a single fragment from a blocking call.
		reply, err := o.RespondWithModel(ctx, text, model)
		if err == nil && onFragment != nil {
			onFragment(reply.Text)
		}
		return reply, err
	}

	model = o.pickModel(model)
	stream := streamer.GenerateStreamingResponse(ctx, text, model, o.history.Snapshot())
	defer stream.Close()

	for stream.Next() {
		if onFragment != nil {
			onFragment(stream.Fragment())
		}
	}

	reply := openrouter.Reply{
		Text:    stream.Text(),
		Model:   model,
		Failure: stream.Failure(),
		Err:     stream.Err(),
	}
	if reply.Text == "" {
		reply.Failure = openrouter.FailureEmpty
		reply.Text = openrouter.FallbackEmpty
	}

	o.commit(ctx, text, reply)
	return reply, nil
}

func (o *Orchestrator) commit(ctx context.Context, utterance string, reply openrouter.Reply) {
	turn := llm.Turn{
		User:      llm.UserMessage(utterance),
		Assistant: llm.AssistantMessage(reply.Text),
		Model:     reply.Model,
		Degraded:  !reply.OK(),
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	o.history.Append(turn.Messages()...)

	if o.transcript == nil {
		return
	}
	head, err := o.transcript.Record(ctx, turn)
	if err != nil {
		o.logger.Warn("failed to record turn", zap.Error(err))
		return
	}
	o.logger.Debug("turn recorded", zap.String("head_hash", logger.Truncate(head, 16)))
}

func (o *Orchestrator) pickModel(model string) string {
	if model != "" {
		return model
	}
	return o.model
}

// Clear empties the history and starts a new transcript chain.
func (o *Orchestrator) Clear() {
	o.mu.Lock()
	o.history.Clear()
	if o.transcript != nil {
		o.transcript.Reset()
	}
	o.mu.Unlock()
	o.logger.Info("conversation history cleared")
}

// HistoryLen returns the number of messages in history.
func (o *Orchestrator) HistoryLen() int {
	return o.history.Len()
}

// History returns a snapshot of the conversation, oldest first.
func (o *Orchestrator) History() []llm.Message {
	return o.history.Snapshot()
}

// Transcript returns the turn recorder, or nil when none is configured.
func (o *Orchestrator) Transcript() *transcript.Recorder {
	return o.transcript
}
