package llmscores

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/cueleague/snooker-scores/internal/domain/snooker"
	"github.com/cueleague/snooker-scores/internal/platform/logging"
	"github.com/cueleague/snooker-scores/internal/platform/resilience"
	"github.com/cueleague/snooker-scores/internal/usecase"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
)

var bearerHeaderRegex = regexp.MustCompile(`Bearer\s+[^\s"']+`)
var errLLMTransient = crerr.New("llm transient failure")

// extractionInstructions is the system prompt. The roster goes into the user
// message so the model can only anchor names to players that actually exist.
const extractionInstructions = `The following passage contains the outcome of a snooker match.
The passage is about a match between two players containing frames won by each player and,
optionally, the highest break between the two players. Extract said information as JSON with
the keys: group, player1, player2, player1_score, player2_score, winner, highest_break, break_owner.

The passage should only ever contain information pertaining to existing players. The user
message lists the full names of existing players, one "group: name" pair per line. Only ever
return names that are included in that list, spelled exactly as they appear there. Players
belong to different groups and a match is only ever between players of the same group.

If no break is mentioned in the passage, return null for highest_break and break_owner.
Respond with the JSON object only.

Example. Existing players:
L1: Huhtala Katja
L1: Andersson Leila
Passage: Huhtala - Andersson 2-1. Breikki 45, Huhtala.
JSON: {"group":"L1","player1":"Huhtala Katja","player2":"Andersson Leila","player1_score":2,"player2_score":1,"winner":"Huhtala Katja","highest_break":45,"break_owner":"Huhtala Katja"}

Example. Existing players:
L2: Laaksonen Sinikka
L2: Tuomi Joonas
Passage: Sinikka - Joonas 2-0
JSON: {"group":"L2","player1":"Laaksonen Sinikka","player2":"Tuomi Joonas","player1_score":2,"player2_score":0,"winner":"Laaksonen Sinikka","highest_break":null,"break_owner":null}`

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Model          string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client extracts structured match candidates from free-text score reports
// through an OpenAI-compatible chat completions endpoint. Whatever comes back
// is a candidate, never a result: every field still passes domain validation
// before anything is recorded.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	model          string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 30 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		model:          model,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		circuitEnabled: cfg.CircuitBreaker.Enabled,
	}
}

// ExtractCandidate asks the model for the structured outcome in the passage.
func (c *Client) ExtractCandidate(ctx context.Context, passage string, roster []snooker.Player) (snooker.Candidate, error) {
	passage = strings.TrimSpace(passage)
	if passage == "" {
		return snooker.Candidate{}, crerr.New("passage is empty")
	}
	if c.apiKey == "" {
		return snooker.Candidate{}, fmt.Errorf("%w: llm api key is not configured", usecase.ErrDependencyUnavailable)
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "llm circuit breaker rejected request", "state", c.breaker.State())
			return snooker.Candidate{}, fmt.Errorf("%w: score extraction is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	content, err := c.complete(ctx, passage, roster)
	if c.circuitEnabled {
		if err != nil && isLLMCircuitFailure(err) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	if err != nil {
		return snooker.Candidate{}, err
	}

	extracted, err := decodeExtractedMatch(content)
	if err != nil {
		c.logger.WarnContext(ctx, "llm returned unusable output", "error", err, "content", truncateForLog(content, 512))
		return snooker.Candidate{}, err
	}

	c.logger.InfoContext(ctx, "score report extracted",
		"model", c.model,
		"player1", extracted.Player1,
		"player2", extracted.Player2,
		"score", fmt.Sprintf("%d-%d", extracted.Player1Score, extracted.Player2Score),
	)
	return extracted.candidate(), nil
}

func (c *Client) complete(ctx context.Context, passage string, roster []snooker.Player) (string, error) {
	body, err := sonic.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: extractionInstructions},
			{Role: "user", Content: userMessage(passage, roster)},
		},
		Temperature:    0,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", crerr.Wrap(err, "marshal chat request")
	}

	fullURL := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, strings.NewReader(string(body)))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: send request: %s", errLLMTransient, sanitizeSensitiveText(err.Error(), c.apiKey))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response body: %v", errLLMTransient, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if isRetryableStatus(resp.StatusCode) {
			return "", fmt.Errorf("%w: llm status=%d body=%s", errLLMTransient, resp.StatusCode, abbreviateBody(raw))
		}
		return "", fmt.Errorf("llm status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
	}

	var envelope chatResponse
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(envelope.Choices) == 0 {
		return "", crerr.New("chat response has no choices")
	}
	return envelope.Choices[0].Message.Content, nil
}

// userMessage mirrors the prompt's example layout: the roster as "group: name"
// lines, then the passage.
func userMessage(passage string, roster []snooker.Player) string {
	var sb strings.Builder
	sb.WriteString("Existing players:\n")
	for _, p := range roster {
		sb.WriteString(p.Group)
		sb.WriteString(": ")
		sb.WriteString(p.Name)
		sb.WriteString("\n")
	}
	sb.WriteString("\nPassage: ")
	sb.WriteString(passage)
	sb.WriteString("\n\nJSON:")
	return sb.String()
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// extractedMatch is the model's answer shape. highest_break and break_owner
// are pointers so "no break mentioned" and "break of 0" stay distinguishable.
type extractedMatch struct {
	Group        string  `json:"group"`
	Player1      string  `json:"player1"`
	Player2      string  `json:"player2"`
	Player1Score int     `json:"player1_score"`
	Player2Score int     `json:"player2_score"`
	Winner       string  `json:"winner"`
	HighestBreak *int    `json:"highest_break"`
	BreakOwner   *string `json:"break_owner"`
}

func (e extractedMatch) candidate() snooker.Candidate {
	c := snooker.Candidate{
		Group:        strings.TrimSpace(e.Group),
		Player1Name:  strings.TrimSpace(e.Player1),
		Player2Name:  strings.TrimSpace(e.Player2),
		Player1Score: e.Player1Score,
		Player2Score: e.Player2Score,
	}
	if e.HighestBreak != nil && e.BreakOwner != nil && strings.TrimSpace(*e.BreakOwner) != "" {
		c.Breaks = []snooker.CandidateBreak{{
			PlayerName: strings.TrimSpace(*e.BreakOwner),
			Points:     *e.HighestBreak,
		}}
	}
	return c
}

// decodeExtractedMatch parses the model output. Models still wrap JSON in
// markdown fences now and then, so those are stripped before decoding.
func decodeExtractedMatch(content string) (extractedMatch, error) {
	cleaned := strings.ReplaceAll(content, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return extractedMatch{}, crerr.New("extraction output is empty")
	}

	var extracted extractedMatch
	if err := sonic.Unmarshal([]byte(cleaned), &extracted); err != nil {
		return extractedMatch{}, fmt.Errorf("decode extraction output: %w", err)
	}
	if strings.TrimSpace(extracted.Player1) == "" || strings.TrimSpace(extracted.Player2) == "" {
		return extractedMatch{}, crerr.New("extraction output names no players")
	}
	return extracted, nil
}

func sanitizeSensitiveText(value, secret string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if secret != "" {
		value = strings.ReplaceAll(value, secret, "REDACTED")
	}
	return bearerHeaderRegex.ReplaceAllString(value, "Bearer REDACTED")
}

func isLLMCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errLLMTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func truncateForLog(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}
