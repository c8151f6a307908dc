package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/papercomputeco/voicechat/pkg/llm"
	"github.com/papercomputeco/voicechat/pkg/logger"
)

// AvailableModels fetches the model listing. It returns nil when the listing
// cannot be fetched or decoded; the cause is logged.
func (c *Client) AvailableModels(ctx context.Context) *llm.ModelList {
	ctx, cancel := context.WithTimeout(ctx, c.config.ModelsTimeout)
	defer cancel()

	list, err := c.fetchModels(ctx)
	if err != nil {
		c.logger.Error("error fetching models", zap.Error(err))
		return nil
	}
	return list
}

func (c *Client) fetchModels(ctx context.Context) (*llm.ModelList, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(httpReq)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, &StatusError{Status: httpResp.StatusCode, Body: logger.Truncate(string(body), 400)}
	}

	var list llm.ModelList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("unmarshal models: %w", err)
	}
	return &list, nil
}

// TestConnection reports whether the model listing is reachable.
func (c *Client) TestConnection(ctx context.Context) bool {
	list := c.AvailableModels(ctx)
	if list == nil {
		c.logger.Warn("failed to connect to OpenRouter API", zap.String("base_url", c.config.BaseURL))
		return false
	}

	c.logger.Info("connected to OpenRouter API",
		zap.String("base_url", c.config.BaseURL),
		zap.Int("models_found", len(list.Data)),
	)
	return true
}

// ModelInfo returns the listing entry whose id equals name, or nil when the
// listing is unavailable or has no such model.
func (c *Client) ModelInfo(ctx context.Context, name string) *llm.ModelInfo {
	return c.AvailableModels(ctx).Find(name)
}
