package twilio

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/cueleague/snooker-scores/internal/platform/logging"
	"github.com/cueleague/snooker-scores/internal/platform/resilience"
	"github.com/cueleague/snooker-scores/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultBaseURL = "https://api.twilio.com"

var errTwilioTransient = crerr.New("twilio transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	AccountSID     string
	AuthToken      string
	FromNumber     string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client sends outbound SMS through the Twilio Messages API. One message per
// call, no retries: a reply that lands twice annoys the reporter more than a
// reply that gets lost, and the caller already treats lost replies as benign.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	accountSID     string
	authToken      string
	fromNumber     string
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
		httpClient.Timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		accountSID:     strings.TrimSpace(cfg.AccountSID),
		authToken:      strings.TrimSpace(cfg.AuthToken),
		fromNumber:     strings.TrimSpace(cfg.FromNumber),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		circuitEnabled: cfg.CircuitBreaker.Enabled,
	}
}

// SendMessage posts one SMS from the configured league number.
func (c *Client) SendMessage(ctx context.Context, to, body string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return crerr.New("recipient number is required")
	}
	if strings.TrimSpace(body) == "" {
		return crerr.New("message body is required")
	}
	if c.accountSID == "" || c.authToken == "" || c.fromNumber == "" {
		return fmt.Errorf("%w: twilio credentials are not configured", usecase.ErrDependencyUnavailable)
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "twilio circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: sms delivery is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	err := c.send(ctx, to, body)
	if c.circuitEnabled {
		if err != nil && isTwilioCircuitFailure(err) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	return err
}

func (c *Client) send(ctx context.Context, to, body string) error {
	form := url.Values{}
	form.Set("From", c.fromNumber)
	form.Set("To", to)
	form.Set("Body", body)

	messagesURL := c.baseURL + "/2010-04-01/Accounts/" + url.PathEscape(c.accountSID) + "/Messages.json"
	curlPreview := buildMessageCurlPreview(messagesURL, c.fromNumber, to)

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("twilio.messages_url", messagesURL),
			attribute.String("twilio.to", to),
			attribute.String("twilio.request_curl_preview", curlPreview),
		)
	}
	c.logger.InfoContext(ctx, "twilio send message", "to", to, "curl_preview", curlPreview)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, messagesURL, strings.NewReader(form.Encode()))
	if err != nil {
		return crerr.Wrap(err, "create twilio request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: send message to=%s: %s", errTwilioTransient, to, sanitizeSensitiveText(err.Error(), c.authToken))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		detail := strings.TrimSpace(string(raw))
		if isRetryableStatus(resp.StatusCode) {
			return fmt.Errorf("%w: twilio status=%d to=%s body=%s", errTwilioTransient, resp.StatusCode, to, detail)
		}
		return fmt.Errorf("twilio status=%d to=%s body=%s", resp.StatusCode, to, detail)
	}

	c.logger.InfoContext(ctx, "twilio message sent", "to", to)
	return nil
}

// buildMessageCurlPreview renders a reproducible request for the span and the
// log line. Credentials and the message text are masked; the preview exists to
// debug routing, not to archive league gossip.
func buildMessageCurlPreview(messagesURL, from, to string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	appendPart := func(part string) {
		if buf.Len() > 0 {
			_ = buf.WriteByte(' ')
		}
		_, _ = buf.WriteString(part)
	}

	appendPart("curl")
	appendPart("-X")
	appendPart("POST")
	appendPart(shellQuote(messagesURL))
	appendPart("-u")
	appendPart(shellQuote("***:***"))
	appendPart("--data-urlencode")
	appendPart(shellQuote("From=" + from))
	appendPart("--data-urlencode")
	appendPart(shellQuote("To=" + to))
	appendPart("--data-urlencode")
	appendPart(shellQuote("Body=***"))

	return buf.String()
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "'\"'\"'") + "'"
}

func sanitizeSensitiveText(value, secret string) string {
	value = strings.TrimSpace(value)
	if value == "" || secret == "" {
		return value
	}
	return strings.ReplaceAll(value, secret, "REDACTED")
}

func isTwilioCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errTwilioTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusRequestTimeout ||
		code == http.StatusTooManyRequests ||
		code >= http.StatusInternalServerError
}
