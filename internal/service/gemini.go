package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	geminiBaseURL = "https://generativelanguage.googleapis.com"
	geminiModel   = "gemini-1.5-flash"
	maxKeywords   = 20
)

// ErrGeminiNotConfigured is returned when no API key was provided.
var ErrGeminiNotConfigured = errors.New("gemini api key not configured")

// GeminiClient calls the Gemini generateContent endpoint to produce SEO
// keyword suggestions for a topic.
type GeminiClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewGeminiClient builds a client. The key may be empty; Generate then
// fails fast without a network call.
func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		baseURL: geminiBaseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Generate asks the model for keyword suggestions and parses them out of
// the free-text answer.
func (c *GeminiClient) Generate(ctx context.Context, topic string) ([]string, error) {
	if c.apiKey == "" {
		return nil, ErrGeminiNotConfigured
	}

	prompt := fmt.Sprintf(
		"List up to %d SEO keywords for an article about %q. Respond with one keyword per line, no numbering, no extra text.",
		maxKeywords, topic)
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, geminiModel, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini: unexpected status %d", resp.StatusCode)
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("gemini: empty response")
	}
	keywords := parseKeywords(parsed.Candidates[0].Content.Parts[0].Text)
	if len(keywords) == 0 {
		return nil, errors.New("gemini: no keywords in response")
	}
	return keywords, nil
}

// parseKeywords tolerates the model answering with bullets, numbering or
// comma-separated lists.
func parseKeywords(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == ',' })
	out := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		kw := strings.TrimSpace(f)
		kw = strings.TrimLeft(kw, "-*0123456789. \t")
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
		if len(out) == maxKeywords {
			break
		}
	}
	return out
}
