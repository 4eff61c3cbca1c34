package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/obexhq/obex/internal/client/models"
	"github.com/obexhq/obex/internal/logging"
)

const (
	defaultTimeout = 30 * time.Second

	temperature = 0.7
	maxTokens   = 1024
	topP        = 0.9
)

// Client implements Analyzer against a chat-completions style endpoint:
// bearer credential, model id, role-tagged messages, sampling parameters,
// first candidate completion used.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	httpc   *http.Client
	log     logging.Logger
}

// NewClient builds the analysis client. An empty apiKey yields a disabled
// client whose calls fail fast with ErrMissingCredential.
func NewClient(baseURL, apiKey, model string, log logging.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		httpc:   &http.Client{Timeout: defaultTimeout},
		log:     log,
	}
}

func (c *Client) Enabled() bool { return c.apiKey != "" }

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	TopP        float64   `json:"top_p"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Analyze runs the path-specific prompt over the entry content. Unparsable
// completions degrade to the fixed fallback result; only credential and
// transport problems are reported as errors.
func (c *Client) Analyze(ctx context.Context, req Request) (*Result, error) {
	content, err := c.complete(ctx, buildMessages(req))
	if err != nil {
		return nil, err
	}

	result, ok := parseResult(content)
	if !ok {
		c.log.Warn(ctx, "analysis completion was not valid JSON, using fallback")
		return fallbackResult(), nil
	}

	result.Insights = models.NormalizeStrings(result.Insights)
	result.SuggestedTags = models.NormalizeStrings(result.SuggestedTags)
	if result.Mood != nil {
		clamped := models.ClampMood(*result.Mood)
		result.Mood = &clamped
	}
	return result, nil
}

// AnalyzeMood runs the numeric-only mood prompt. Anything that does not
// parse as an integer in range resolves to the neutral score.
func (c *Client) AnalyzeMood(ctx context.Context, content string) (int, error) {
	text, err := c.complete(ctx, buildMoodMessages(content))
	if err != nil {
		return 0, err
	}

	v, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || v < models.MoodMin || v > models.MoodMax {
		return NeutralMood, nil
	}
	return v, nil
}

// complete performs one round trip and returns the first candidate's text.
func (c *Client) complete(ctx context.Context, msgs []message) (string, error) {
	if !c.Enabled() {
		return "", ErrMissingCredential
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		TopP:        topP,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrAnalysisFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrAnalysisFailed, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrAnalysisFailed, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: no completions returned", ErrAnalysisFailed)
	}
	return parsed.Choices[0].Message.Content, nil
}

// parseResult decodes the completion body into a Result, tolerating the
// model wrapping its JSON in a markdown code fence.
func parseResult(content string) (*Result, bool) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var r Result
	if err := json.Unmarshal([]byte(content), &r); err != nil {
		return nil, false
	}
	if r.Summary == "" && r.Reflection == "" && len(r.Insights) == 0 {
		return nil, false
	}
	return &r, true
}
