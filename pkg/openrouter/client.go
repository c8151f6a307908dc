// Package openrouter is a client for OpenRouter's OpenAI-compatible chat completion API.
//
// Completion failures never surface as errors: every call yields a Reply whose text
// can be narrated, with the failure classified alongside it. The only hard failure
// is constructing a client without a credential.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/voicechat/pkg/config"
	"github.com/papercomputeco/voicechat/pkg/llm"
	"github.com/papercomputeco/voicechat/pkg/logger"
)

// ErrMissingAPIKey is returned by New when no credential is configured.
var ErrMissingAPIKey = config.ErrMissingAPIKey

// Config configures a Client. Zero values fall back to the package defaults.
type Config struct {
	APIKey        string
	BaseURL       string
	DefaultModel  string
	Referer       string
	Title         string
	Timeout       time.Duration
	ModelsTimeout time.Duration
	Params        llm.GenerationParams
}

// ConfigFrom maps the application configuration onto a client Config.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		APIKey:        cfg.OpenRouter.APIKey,
		BaseURL:       cfg.OpenRouter.BaseURL,
		DefaultModel:  cfg.OpenRouter.DefaultModel,
		Referer:       cfg.OpenRouter.Referer,
		Title:         cfg.OpenRouter.Title,
		Timeout:       cfg.Timeout(),
		ModelsTimeout: cfg.ModelsTimeout(),
		Params:        cfg.Params(),
	}
}

// Client issues chat completion and model listing requests.
// It is safe for concurrent use.
type Client struct {
	config       Config
	logger       *zap.Logger
	httpClient   *http.Client
	streamClient *http.Client
}

// New creates a Client. It fails only when cfg.APIKey is empty.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = config.DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = config.DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultTimeoutSecs * time.Second
	}
	if cfg.ModelsTimeout <= 0 {
		cfg.ModelsTimeout = config.DefaultModelsTimeoutSec * time.Second
	}
	if cfg.Params == (llm.GenerationParams{}) {
		cfg.Params = llm.DefaultGenerationParams()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// The timeout bounds the wait for response headers here and each body read
	// through idleBody, never the stream as a whole.
	streamTransport := http.DefaultTransport.(*http.Transport).Clone()
	streamTransport.ResponseHeaderTimeout = cfg.Timeout

	return &Client{
		config:       cfg,
		logger:       logger,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		streamClient: &http.Client{Transport: streamTransport},
	}, nil
}

// DefaultModel returns the model used when a call does not name one.
func (c *Client) DefaultModel() string {
	return c.config.DefaultModel
}

// GenerateResponse requests a single, non-streaming completion for userInput on top
// of history. It makes exactly one attempt.
func (c *Client) GenerateResponse(ctx context.Context, userInput, model string, history []llm.Message) Reply {
	req := c.buildRequest(userInput, model, history, false)
	startTime := time.Now()

	httpReq, err := c.newChatRequest(ctx, req)
	if err != nil {
		c.logger.Error("failed to build completion request", zap.Error(err))
		return failed(req.Model, FailureUnexpected, err)
	}

	c.logger.Info("sending completion request",
		zap.String("model", req.Model),
		zap.Int("message_count", len(req.Messages)),
	)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("completion request failed", zap.Error(err))
		return failed(req.Model, FailureTransport, fmt.Errorf("do request: %w", err))
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		c.logger.Error("failed to read completion response", zap.Error(err))
		return failed(req.Model, FailureTransport, fmt.Errorf("read response: %w", err))
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		c.logger.Error("upstream returned error",
			zap.Int("status", httpResp.StatusCode),
			zap.String("body", logger.Truncate(string(body), 400)),
		)
		return failed(req.Model, FailureTransport, &StatusError{Status: httpResp.StatusCode, Body: string(body)})
	}

	var resp llm.ChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("failed to parse completion response",
			zap.Error(err),
			zap.String("body", logger.Truncate(string(body), 400)),
		)
		return failed(req.Model, FailureDecode, fmt.Errorf("unmarshal response: %w", err))
	}

	content, ok := resp.Content()
	if !ok {
		c.logger.Warn("no choices in completion response", zap.String("model", req.Model))
		return failed(req.Model, FailureEmpty, errors.New("response contained no choices"))
	}
	if strings.TrimSpace(content) == "" {
		c.logger.Warn("completion response has empty content", zap.String("model", req.Model))
		return failed(req.Model, FailureEmpty, errors.New("response contained no content"))
	}

	c.logger.Debug("received completion",
		zap.String("model", req.Model),
		zap.String("content_preview", logger.Truncate(content, 100)),
		zap.Duration("duration", time.Since(startTime)),
	)

	return Reply{Text: content, Model: req.Model}
}

// GenerateStreamingResponse requests a streamed completion. The returned Stream
// always yields at least one fragment when the request itself fails.
func (c *Client) GenerateStreamingResponse(ctx context.Context, userInput, model string, history []llm.Message) *Stream {
	req := c.buildRequest(userInput, model, history, true)

	ctx, cancel := context.WithCancel(ctx)
	httpReq, err := c.newChatRequest(ctx, req)
	if err != nil {
		cancel()
		c.logger.Error("failed to build streaming request", zap.Error(err))
		return failedStream(FailureUnexpected, err)
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	c.logger.Info("sending streaming completion request",
		zap.String("model", req.Model),
		zap.Int("message_count", len(req.Messages)),
	)

	httpResp, err := c.streamClient.Do(httpReq)
	if err != nil {
		cancel()
		c.logger.Error("streaming request failed", zap.Error(err))
		return failedStream(FailureTransport, fmt.Errorf("do request: %w", err))
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, 4096))
		httpResp.Body.Close()
		cancel()
		c.logger.Error("upstream returned error",
			zap.Int("status", httpResp.StatusCode),
			zap.String("body", logger.Truncate(string(body), 400)),
		)
		return failedStream(FailureTransport, &StatusError{Status: httpResp.StatusCode, Body: string(body)})
	}

	s := NewStream(newIdleBody(httpResp.Body, c.config.Timeout, cancel))
	s.logger = c.logger
	return s
}

func (c *Client) buildRequest(userInput, model string, history []llm.Message, stream bool) *llm.ChatRequest {
	if model == "" {
		model = c.config.DefaultModel
	}

	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, llm.UserMessage(userInput))

	return &llm.ChatRequest{
		Model:            model,
		Messages:         messages,
		GenerationParams: c.config.Params,
		Stream:           stream,
	}
}

func (c *Client) newChatRequest(ctx context.Context, req *llm.ChatRequest) (*http.Request, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(httpReq)
	httpReq.Header.Set("Content-Type", "application/json")

	return httpReq, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	if c.config.Referer != "" {
		req.Header.Set("HTTP-Referer", c.config.Referer)
	}
	if c.config.Title != "" {
		req.Header.Set("X-Title", c.config.Title)
	}
}

// StatusError is a non-2xx response from the API.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Status, logger.Truncate(e.Body, 200))
}
