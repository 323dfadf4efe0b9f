// Package inference asks a generative language model to describe telemetry
// fields it has never seen.
package inference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"telemetry-hub/internal/db"

	"google.golang.org/genai"
)

var ErrInference = errors.New("metadata inference failed")

const (
	DefaultModel = "gemini-1.5-flash"

	fallbackDescription = "Auto-detected field"
)

type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the Gemini API endpoint.
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

type Client struct {
	model  string
	models *genai.Models
}

// New builds a Gemini client. Without an API key no client is built and
// every inference returns the fallback entry.
func New(ctx context.Context, cfg Config) (*Client, error) {
	const fn = "Inference:New"

	c := &Client{model: cfg.Model}
	if c.model == "" {
		c.model = DefaultModel
	}
	if cfg.APIKey == "" {
		return c, nil
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", fn, err)
	}
	c.models = client.Models
	return c, nil
}

type inferred struct {
	Label       string `json:"label"`
	Unit        string `json:"unit"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// InferMetadata describes key from one sample value. Without an API key it
// returns a generic entry instead of calling out.
func (c *Client) InferMetadata(ctx context.Context, key string, sample any) (db.MetadataEntry, error) {
	const fn = "Inference:InferMetadata"

	if c.models == nil {
		return Fallback(key), nil
	}

	text, err := c.generate(ctx, prompt(key, sample))
	if err != nil {
		return db.MetadataEntry{}, fmt.Errorf("%s:%w:%w", fn, ErrInference, err)
	}

	var out inferred
	if err := json.Unmarshal([]byte(stripFences(text)), &out); err != nil {
		return db.MetadataEntry{}, fmt.Errorf("%s:%w:%w", fn, ErrInference, err)
	}
	if out.Label == "" {
		return db.MetadataEntry{}, fmt.Errorf("%s:%w: empty label", fn, ErrInference)
	}

	return db.MetadataEntry{
		OriginalKey: key,
		Label:       out.Label,
		Unit:        out.Unit,
		Description: out.Description,
		Category:    normalizeCategory(out.Category),
	}, nil
}

// Fallback is the entry used when no model is configured.
func Fallback(key string) db.MetadataEntry {
	return db.MetadataEntry{
		OriginalKey: key,
		Label:       capitalize(key),
		Description: fallbackDescription,
		Category:    db.CategoryOther,
	}
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("empty response")
	}
	return text, nil
}

func prompt(key string, sample any) string {
	encoded, err := json.Marshal(sample)
	if err != nil {
		encoded = []byte("null")
	}
	return fmt.Sprintf(`Act as an IoT data expert. I have a raw JSON data field from a sensor.
Key: %q
Sample value: %s

Infer the most likely human-readable name, unit and description.
Return ONLY valid JSON in this format:
{"label": "Human Readable Name", "unit": "Unit or empty string", "description": "Short explanation", "category": "sensor" | "status" | "technical" | "other"}`,
		key, encoded)
}

func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func normalizeCategory(c string) string {
	switch c = strings.ToLower(strings.TrimSpace(c)); c {
	case db.CategorySensor, db.CategoryStatus, db.CategoryTechnical:
		return c
	default:
		return db.CategoryOther
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
