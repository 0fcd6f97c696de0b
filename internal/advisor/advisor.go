// Package advisor asks an OpenAI-compatible chat endpoint to propose rubric
// dimension scores for an idea. Proposals are advisory: callers clamp and
// persist them through the same path as manual scoring.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"launchpad/api/internal/engine"
)

// IdeaContext is the material the advisor scores against.
type IdeaContext struct {
	Title            string
	Category         string
	ProblemStatement string
	ProposedSolution string
	ExpectedBenefit  string
}

// Client calls a chat-completions API and parses dimension scores from the
// model reply.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// New creates an advisor client. baseURL is the API root, e.g.
// https://api.openai.com/v1.
func New(baseURL, apiKey, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		http:    &http.Client{Timeout: timeout},
	}
}

const systemPrompt = `You score hospital innovation ideas on six dimensions, each an integer from 1 to 10:
emotionalNeeds (patient/staff emotional impact), revenueImpact, drasticChange (degree of operational change),
pilotComplexity, peopleBuild (staffing effort), technologyCapex (technology capital cost).
Respond with a single JSON object containing exactly those six keys and integer values. No prose.`

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// SuggestScores asks the model for a full set of dimension scores.
func (c *Client) SuggestScores(ctx context.Context, idea IdeaContext) (engine.DimensionScores, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: ideaPrompt(idea)},
		},
		Temperature:    0.2,
		ResponseFormat: &respFormat{Type: "json_object"},
	})
	if err != nil {
		return engine.DimensionScores{}, fmt.Errorf("marshal advisor request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return engine.DimensionScores{}, fmt.Errorf("build advisor request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return engine.DimensionScores{}, fmt.Errorf("call advisor: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return engine.DimensionScores{}, fmt.Errorf("advisor returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return engine.DimensionScores{}, fmt.Errorf("decode advisor response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return engine.DimensionScores{}, fmt.Errorf("advisor returned no choices")
	}

	return parseScores(parsed.Choices[0].Message.Content)
}

func ideaPrompt(idea IdeaContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", idea.Title)
	if idea.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", idea.Category)
	}
	fmt.Fprintf(&b, "Problem: %s\n", idea.ProblemStatement)
	fmt.Fprintf(&b, "Proposed solution: %s\n", idea.ProposedSolution)
	if idea.ExpectedBenefit != "" {
		fmt.Fprintf(&b, "Expected benefit: %s\n", idea.ExpectedBenefit)
	}
	return b.String()
}

// parseScores extracts the six dimensions from the model reply. Models
// occasionally wrap JSON in code fences; strip them before decoding.
func parseScores(content string) (engine.DimensionScores, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var scores engine.DimensionScores
	if err := json.Unmarshal([]byte(content), &scores); err != nil {
		return engine.DimensionScores{}, fmt.Errorf("parse advisor scores: %w", err)
	}
	return scores, nil
}
