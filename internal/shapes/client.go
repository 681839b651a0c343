// Package shapes speaks the Shapes chat-completion wire protocol:
// request construction, attachment encoding, and the single-attempt HTTP
// transport.
package shapes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"shapechat/internal/config"
)

// FallbackReply is substituted when a success response carries no usable
// choice content. It is a valid reply, not an error.
const FallbackReply = "The shape sent an empty reply."

// Client talks to the Shapes chat-completion endpoint. One attempt per
// send; callers decide what a failure means. The API key is a per-call
// argument and is never stored on the client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: config.RequestTimeout},
	}
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type ChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// StatusError is a non-success HTTP response from the endpoint. It is
// never retried.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("shapes api: %s", e.Status)
}

// Send posts one chat-completion request and extracts the reply text
// from the first choice.
func (c *Client) Send(ctx context.Context, apiKey string, chatReq ChatRequest) (string, error) {
	payload, err := json.Marshal(chatReq)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		io.Copy(io.Discard, resp.Body)
		return "", &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	slog.Debug("chat completion",
		"model", chatReq.Model,
		"prompt_tokens", chatResp.Usage.PromptTokens,
		"completion_tokens", chatResp.Usage.CompletionTokens,
	)

	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return FallbackReply, nil
	}
	return chatResp.Choices[0].Message.Content, nil
}
