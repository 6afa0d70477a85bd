// Package vlm extracts tables from images with a vision-language model
// served behind an OpenAI-compatible chat completions endpoint.
package vlm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/randalmurphal/tablegraph/pkg/tablegraph"
)

// DefaultPrompt asks the model for the table as a single JSON object.
const DefaultPrompt = `Extract the table shown in this image.
Respond with only a JSON object of the form {"header": ["..."], "rows": [["..."]]}.
Use one string per cell, keep the column order of the image and use "" for empty cells.`

var (
	ErrStatus    = errors.New("unexpected response status")
	ErrNoChoices = errors.New("response has no choices")
)

// Config configures a Client.
type Config struct {
	// Endpoint is the full chat completions URL.
	Endpoint string
	Model    string
	APIKey   string
	// Prompt defaults to DefaultPrompt.
	Prompt    string
	MaxTokens int
	Timeout   time.Duration
	// RetryMax is the number of transport retries on 5xx and 429 responses.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Logger       *slog.Logger
}

// Client is a VLMAgent.
type Client struct {
	cfg  Config
	http *retryablehttp.Client
}

var _ tablegraph.VLMAgent = (*Client)(nil)

func New(cfg Config) *Client {
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	hc := retryablehttp.NewClient()
	hc.RetryMax = cfg.RetryMax
	if cfg.RetryWaitMin > 0 {
		hc.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		hc.RetryWaitMax = cfg.RetryWaitMax
	}
	if cfg.Timeout > 0 {
		hc.HTTPClient.Timeout = cfg.Timeout
	}
	hc.Logger = cfg.Logger

	return &Client{cfg: cfg, http: hc}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Run sends img to the model and parses the table from its answer.
//
// Transport failures and non-2xx responses are errors. An answer that does
// not contain a parseable table is not: it yields an Extraction with a nil
// Table, which the validator rejects and the pipeline retries.
func (c *Client) Run(ctx context.Context, img tablegraph.Image) (tablegraph.Extraction, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: c.cfg.Prompt},
				{Type: "image_url", ImageURL: &imageURL{URL: DataURI(img)}},
			},
		}},
		MaxTokens: c.cfg.MaxTokens,
	})
	if err != nil {
		return tablegraph.Extraction{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, body)
	if err != nil {
		return tablegraph.Extraction{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return tablegraph.Extraction{}, fmt.Errorf("vlm request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return tablegraph.Extraction{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return tablegraph.Extraction{}, fmt.Errorf("%w: %d: %s", ErrStatus, resp.StatusCode, bytes.TrimSpace(data))
	}

	var cr chatResponse
	if err := json.Unmarshal(data, &cr); err != nil {
		return tablegraph.Extraction{}, fmt.Errorf("decode response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return tablegraph.Extraction{}, ErrNoChoices
	}

	content := cr.Choices[0].Message.Content
	table, err := ParseTable(content)
	if err != nil {
		c.cfg.Logger.WarnContext(ctx, "model answer has no table",
			slog.String("model", c.cfg.Model),
			slog.String("error", err.Error()),
		)
		return tablegraph.Extraction{Raw: content}, nil
	}

	c.cfg.Logger.InfoContext(ctx, "vlm extraction complete",
		slog.String("model", c.cfg.Model),
		slog.Int("rows", table.NumRows()),
		slog.Duration("elapsed", time.Since(start)),
	)
	return tablegraph.Extraction{Table: table, Raw: content}, nil
}

// DataURI encodes img as a base64 data URI.
func DataURI(img tablegraph.Image) string {
	mime := "image/png"
	switch img.Format {
	case "jpeg", "jpg":
		mime = "image/jpeg"
	case "":
		if ct := http.DetectContentType(img.Data); ct == "image/jpeg" {
			mime = ct
		}
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
