// Package enricher fills the gaps in downloaded track metadata through a
// schema-constrained chat completion call and prepares per-album artwork.
package enricher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.openai.com/v1"

// ClientConfig carries the completion backend credentials loaded from the
// credentials file at process start.
type ClientConfig struct {
	BaseURL      string
	APIKey       string
	Organization string
	Project      string
	Model        string
}

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
}

// NewClient creates a completion client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type functionDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters"`
}

type functionCallRef struct {
	Name string `json:"name"`
}

type chatRequest struct {
	Model        string           `json:"model"`
	Messages     []chatMessage    `json:"messages"`
	Functions    []functionDef    `json:"functions,omitempty"`
	FunctionCall *functionCallRef `json:"function_call,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content      string `json:"content"`
			FunctionCall *struct {
				Name      string `json:"name"`
				Arguments string `json:"arguments"`
			} `json:"function_call"`
		} `json:"message"`
	} `json:"choices"`
}

// Seed is the minimal metadata handed to the completion backend per track.
type Seed struct {
	Title              string `json:"title"`
	ContributingArtist string `json:"contributing_artist"`
	Album              string `json:"album"`
	TrackNumber        int    `json:"track_number"`
}

// Complete asks the backend to fill the full metadata schema for one track.
func (c *Client) Complete(ctx context.Context, seed Seed) (*Completion, error) {
	seedJSON, err := json.Marshal(seed)
	if err != nil {
		return nil, fmt.Errorf("encode seed metadata: %w", err)
	}

	reqBody := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a music metadata assistant."},
			{Role: "user", Content: "Fill in any missing or incorrect fields for this song metadata:"},
			{Role: "user", Content: string(seedJSON)},
		},
		Functions:    []functionDef{metadataFunction()},
		FunctionCall: &functionCallRef{Name: metadataFunctionName},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if c.cfg.Organization != "" {
		req.Header.Set("OpenAI-Organization", c.cfg.Organization)
	}
	if c.cfg.Project != "" {
		req.Header.Set("OpenAI-Project", c.cfg.Project)
	}

	slog.Debug("requesting metadata completion", "title", seed.Title, "model", c.cfg.Model)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("completion API returned status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned")
	}

	call := chatResp.Choices[0].Message.FunctionCall
	if call == nil {
		return nil, fmt.Errorf("no function call in response")
	}

	var completion Completion
	if err := json.Unmarshal([]byte(call.Arguments), &completion); err != nil {
		return nil, fmt.Errorf("decode function arguments: %w", err)
	}
	return &completion, nil
}
