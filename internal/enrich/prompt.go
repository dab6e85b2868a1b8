// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"
)

// steeredPromptTmpl grounds the generative request in a measured signal.
// Only the qualitative fields are requested; the quantitative fields come
// from the signal tier.
var steeredPromptTmpl = template.Must(template.New("steered").Parse(`You are a Pinterest trend analyst. A keyword has the following measured search signal:

- keyword: {{.Keyword}}
- momentum score (0-100): {{.MomentumScore}}
- estimated monthly search volume: {{.SearchVolume}}
- related search terms: {{.Related}}

Using this signal as ground truth, estimate how the keyword performs on Pinterest specifically.

Respond with a single JSON object with exactly these fields:
- category: a short content category for the keyword (e.g. "Home Decor", "Food & Drink", "Fashion")
- pinterest_volume: an integer estimate of monthly Pinterest searches for the keyword
- pinterest_related: an array of up to 5 related keyword phrases as Pinterest users would type them

Do not include any text outside the JSON object.

Example response:
{"category": "Home Decor", "pinterest_volume": 7000, "pinterest_related": ["decor ideas", "cozy living room"]}
`))

// unsteeredPromptTmpl requests a full record estimate when no measured
// signal is available.
var unsteeredPromptTmpl = template.Must(template.New("unsteered").Parse(`You are a Pinterest trend analyst. No measured search data is available for the keyword "{{.Keyword}}". Estimate its current trend profile.

Respond with a single JSON object with exactly these fields:
- category: a short content category for the keyword (e.g. "Home Decor", "Food & Drink", "Fashion")
- momentum_score: an integer from 0 to 100 for how strongly the keyword is trending right now
- search_volume: an integer estimate of monthly searches
- related: an array of up to 5 related keyword phrases
- history: an array of 7 objects {"date": "YYYY-MM-DD", "value": N} covering the last 7 days, values from 0 to 100

Do not include any text outside the JSON object.

Example response:
{"category": "Fashion", "momentum_score": 64, "search_volume": 8200, "related": ["fall outfits", "capsule wardrobe"], "history": [{"date": "2026-08-18", "value": 58}]}
`))

// renderPrompt selects the prompt variant by seed presence.
func renderPrompt(keyword string, seed *Seed) (string, error) {
	var buf bytes.Buffer
	if seed != nil {
		err := steeredPromptTmpl.Execute(&buf, struct {
			Keyword       string
			MomentumScore int
			SearchVolume  int
			Related       string
		}{
			Keyword:       keyword,
			MomentumScore: seed.MomentumScore,
			SearchVolume:  seed.SearchVolume,
			Related:       strings.Join(seed.Related, ", "),
		})
		return buf.String(), err
	}
	err := unsteeredPromptTmpl.Execute(&buf, struct{ Keyword string }{Keyword: keyword})
	return buf.String(), err
}

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// ClaudeBackend calls the Claude Messages API.
type ClaudeBackend struct {
	APIKey string
	Model  string
	Client *http.Client
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Complete sends the prompt and returns the first text block of the response.
func (c *ClaudeBackend) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := claudeRequest{
		Model:     c.Model,
		MaxTokens: 1024,
		Messages: []claudeMessage{
			{Role: "user", Content: prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w", err)
	}

	for _, block := range cResp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in Claude API response")
}
