// Package genapi talks to the generative HTTP API and turns seeds into
// character-sheet drafts on disk.
package genapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"charsmith/internal/core/domain"
)

// Config holds settings for the generation API.
type Config struct {
	Endpoint  string        `yaml:"endpoint"`
	APIKey    string        `yaml:"api_key"`
	Model     string        `yaml:"model"`
	MaxTokens int           `yaml:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout"`
}

// DraftSaver stores an accepted draft in the library. Optional.
type DraftSaver interface {
	Save(ctx context.Context, draft *domain.Draft) error
}

// Client is an HTTP client for the generation API. It satisfies the
// orchestrator's Executor interface: Execute returns the path of the
// written draft as the opaque result location.
type Client struct {
	cfg        Config
	httpClient *http.Client
	draftsDir  string
	saver      DraftSaver
}

// NewClient creates a generation client writing drafts under draftsDir.
// saver may be nil when no library is configured.
func NewClient(cfg Config, draftsDir string, saver DraftSaver) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		draftsDir: draftsDir,
		saver:     saver,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type generateRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens,omitempty"`
	Messages  []chatMessage `json:"messages"`
}

type generateResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Execute generates one character sheet from a seed and writes it to the
// drafts directory. Errors carry the upstream status so the batch
// classifier can tell transient from permanent failures.
func (c *Client) Execute(ctx context.Context, seed string) (string, error) {
	prompt, err := BuildPrompt(seed)
	if err != nil {
		return "", err
	}

	reqBody := generateRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.Endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("rate limited (429), retry after: %s", resp.Header.Get("Retry-After"))
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generation API returned %d %s: %s",
			resp.StatusCode, http.StatusText(resp.StatusCode), apiErrorMessage(body))
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if genResp.Error != nil {
		return "", fmt.Errorf("generation API error: %s", genResp.Error.Message)
	}
	if len(genResp.Choices) == 0 || genResp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("generation returned no content")
	}
	content := genResp.Choices[0].Message.Content

	path, err := c.writeDraft(seed, content)
	if err != nil {
		return "", err
	}

	if c.saver != nil {
		draft := &domain.Draft{
			ID:        uuid.NewString(),
			Seed:      seed,
			Name:      ExtractName(content),
			Content:   content,
			Path:      path,
			CreatedAt: time.Now().UTC(),
		}
		if err := c.saver.Save(ctx, draft); err != nil {
			return "", fmt.Errorf("failed to save draft to library: %w", err)
		}
	}
	return path, nil
}

func (c *Client) writeDraft(seed, content string) (string, error) {
	if err := os.MkdirAll(c.draftsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create drafts directory: %w", err)
	}
	name := fmt.Sprintf("character_%s_%s.md",
		time.Now().UTC().Format("20060102T150405"), uuid.NewString()[:8])
	path := filepath.Join(c.draftsDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write draft: %w", err)
	}
	return path, nil
}

func apiErrorMessage(body []byte) string {
	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err == nil && genResp.Error != nil {
		return genResp.Error.Message
	}
	s := string(body)
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
