package gsheets

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/cueleague/snooker-scores/internal/platform/logging"
	"github.com/cueleague/snooker-scores/internal/platform/resilience"
	"github.com/cueleague/snooker-scores/internal/usecase"
)

const defaultBaseURL = "https://sheets.googleapis.com/v4/spreadsheets"

var bearerHeaderRegex = regexp.MustCompile(`Bearer\s+[^\s"']+`)
var errSheetsTransient = crerr.New("sheets transient failure")

// TokenSource yields the OAuth bearer token for each request. Tokens are
// short-lived, so the source is consulted per call rather than at build time.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource returns the same token forever. Suitable for development
// against a long-lived token; production wires a refreshing source.
func StaticTokenSource(token string) TokenSource {
	return staticTokenSource(strings.TrimSpace(token))
}

type staticTokenSource string

func (s staticTokenSource) Token(context.Context) (string, error) {
	if s == "" {
		return "", crerr.New("sheets token is empty")
	}
	return string(s), nil
}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	SpreadsheetID  string
	Tokens         TokenSource
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the Google Sheets values API: ranged reads, row appends and
// ranged cell updates. Reads coalesce through a single flight and retry;
// writes never retry, a second append after an ambiguous failure could land
// the same row twice.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	spreadsheetID  string
	tokens         TokenSource
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
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
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		spreadsheetID:  strings.TrimSpace(cfg.SpreadsheetID),
		tokens:         cfg.Tokens,
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		circuitEnabled: cfg.CircuitBreaker.Enabled,
	}
}

// GetRange reads a range (A1 notation or a named range) and returns its rows
// as formatted cell strings, exactly as the sheet renders them.
func (c *Client) GetRange(ctx context.Context, rangeA1 string) ([][]string, error) {
	rangeA1 = strings.TrimSpace(rangeA1)
	if rangeA1 == "" {
		return nil, crerr.New("range is required")
	}

	fullURL := c.valuesURL(rangeA1, nil)
	out, err, _ := c.flight.Do("get:"+fullURL, func() (any, error) {
		raw, reqErr := c.execute(ctx, http.MethodGet, fullURL, nil, true)
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}

	var envelope valueRangeEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode values payload: %w", err)
	}
	return envelope.rows(), nil
}

// AppendRows appends rows after the last data row of the range's table.
func (c *Client) AppendRows(ctx context.Context, rangeA1 string, rows [][]any) error {
	rangeA1 = strings.TrimSpace(rangeA1)
	if rangeA1 == "" {
		return crerr.New("range is required")
	}
	if len(rows) == 0 {
		return nil
	}

	body, err := sonic.Marshal(map[string]any{"values": rows})
	if err != nil {
		return crerr.Wrap(err, "marshal append payload")
	}

	fullURL := c.valuesURL(rangeA1+":append", url.Values{
		"valueInputOption": []string{"RAW"},
		"insertDataOption": []string{"INSERT_ROWS"},
	})
	if _, err := c.execute(ctx, http.MethodPost, fullURL, body, false); err != nil {
		return fmt.Errorf("append rows range=%s: %w", rangeA1, err)
	}
	return nil
}

// UpdateRange overwrites the cells of a range with the given rows.
func (c *Client) UpdateRange(ctx context.Context, rangeA1 string, rows [][]any) error {
	rangeA1 = strings.TrimSpace(rangeA1)
	if rangeA1 == "" {
		return crerr.New("range is required")
	}
	if len(rows) == 0 {
		return nil
	}

	body, err := sonic.Marshal(map[string]any{"values": rows})
	if err != nil {
		return crerr.Wrap(err, "marshal update payload")
	}

	fullURL := c.valuesURL(rangeA1, url.Values{
		"valueInputOption": []string{"RAW"},
	})
	if _, err := c.execute(ctx, http.MethodPut, fullURL, body, false); err != nil {
		return fmt.Errorf("update range=%s: %w", rangeA1, err)
	}
	return nil
}

func (c *Client) valuesURL(rangeA1 string, query url.Values) string {
	fullURL := c.baseURL + "/" + url.PathEscape(c.spreadsheetID) + "/values/" + url.PathEscape(rangeA1)
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}
	return fullURL
}

// execute runs one API call. retryable governs the retry loop: reads pass
// true, writes pass false and surface the first failure as-is.
func (c *Client) execute(ctx context.Context, method, fullURL string, body []byte, retryable bool) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "sheets circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: score sheet is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	token, err := c.tokenForRequest(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := c.executeRequest(ctx, method, fullURL, body, token, retryable)
	if c.circuitEnabled {
		if err != nil && isSheetsCircuitFailure(err) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	return raw, err
}

func (c *Client) tokenForRequest(ctx context.Context) (string, error) {
	if c.tokens == nil {
		return "", crerr.New("sheets token source is not configured")
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve sheets token: %w", err)
	}
	return token, nil
}

func (c *Client) executeRequest(ctx context.Context, method, fullURL string, body []byte, token string, retryable bool) ([]byte, error) {
	attempts := 1
	if retryable {
		attempts = c.maxRetries + 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		var reader io.Reader
		if body != nil {
			reader = strings.NewReader(string(body))
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errSheetsTransient, sanitizeSensitiveText(err.Error(), token))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errSheetsTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: sheets status=%d body=%s", errSheetsTransient, resp.StatusCode, abbreviateBody(raw))
			} else {
				return nil, fmt.Errorf("sheets status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == attempts-1 {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("sheets request failed")
	}
	c.logger.WarnContext(ctx, "sheets request failed", "method", method, "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	value = bearerHeaderRegex.ReplaceAllString(value, "Bearer REDACTED")
	return value
}

func isSheetsCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errSheetsTransient)
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

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}

type valueRangeEnvelope struct {
	Range          string  `json:"range"`
	MajorDimension string  `json:"majorDimension"`
	Values         [][]any `json:"values"`
}

// rows flattens the API's loosely typed cells into strings. With formatted
// rendering the API already sends strings; numbers and bools still show up
// for untyped ranges and are stringified the way the sheet would show them.
func (e valueRangeEnvelope) rows() [][]string {
	out := make([][]string, 0, len(e.Values))
	for _, row := range e.Values {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, stringifyCell(cell))
		}
		out = append(out, cells)
	}
	return out
}

func stringifyCell(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
