// Package assistant implements chat.Assistant against the external
// conversational collaborator's HTTP API, with a cooldown so a failing
// collaborator is skipped instead of hammered.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/croplens/field-inference/internal/cache"
	"github.com/croplens/field-inference/internal/chat"
)

// ErrCoolingDown is returned without a network round trip while the
// collaborator is inside its cooldown window.
var ErrCoolingDown = errors.New("assistant cooling down after recent failure")

const cooldownKey = "assistant"

// Client calls the assistant collaborator over HTTP.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	state      *cache.Store
	cooldown   time.Duration
	logger     *slog.Logger
}

// NewClient creates an assistant client. state tracks the failure cooldown
// and is shared with the rest of the process.
func NewClient(baseURL, token string, timeout, cooldown time.Duration, state *cache.Store, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		state:    state,
		cooldown: cooldown,
		logger:   logger,
	}
}

// Answer posts the context packet to the collaborator and returns its
// reply. Any failure arms the cooldown, so subsequent calls fail fast until
// it elapses.
func (c *Client) Answer(ctx context.Context, p chat.Packet) (chat.Reply, error) {
	if c.state.Cooling(cooldownKey) {
		return chat.Reply{}, ErrCoolingDown
	}

	body, err := json.Marshal(p)
	if err != nil {
		return chat.Reply{}, fmt.Errorf("encode packet: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/answer", bytes.NewReader(body))
	if err != nil {
		return chat.Reply{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.markFailure("request failed", err)
		return chat.Reply{}, fmt.Errorf("assistant request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("assistant API error: status %d: %s", resp.StatusCode, payload)
		c.markFailure("non-200 response", err)
		return chat.Reply{}, err
	}

	var reply chat.Reply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		c.markFailure("undecodable response", err)
		return chat.Reply{}, fmt.Errorf("decode reply: %w", err)
	}
	if reply.Answer == "" {
		err := errors.New("assistant returned an empty answer")
		c.markFailure("empty answer", err)
		return chat.Reply{}, err
	}

	reply.Mode = chat.ModeAssistant
	return reply, nil
}

func (c *Client) markFailure(reason string, err error) {
	c.state.MarkCooldown(cooldownKey, c.cooldown)
	c.logger.Warn("assistant failure, arming cooldown",
		"reason", reason,
		"cooldown", c.cooldown,
		"error", err,
	)
}
