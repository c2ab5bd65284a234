package pushover

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/cueleague/snooker-scores/internal/platform/logging"
	"github.com/cueleague/snooker-scores/internal/usecase"
)

const defaultBaseURL = "https://api.pushover.net"

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Token      string
	UserKey    string
	Timeout    time.Duration
	Logger     *logging.Logger
}

// Client pushes operational notifications through the Pushover API. It is a
// best-effort channel: callers already treat a lost notification as benign,
// so there is no circuit breaker and no retry here.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	userKey    string
	logger     *logging.Logger
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
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      strings.TrimSpace(cfg.Token),
		userKey:    strings.TrimSpace(cfg.UserKey),
		logger:     logger,
	}
}

// Notify delivers one push message. Priority runs -2..2 with 0 as normal,
// matching the Pushover API.
func (c *Client) Notify(ctx context.Context, n usecase.Notification) error {
	if strings.TrimSpace(n.Message) == "" {
		return crerr.New("notification message is required")
	}
	if c.token == "" || c.userKey == "" {
		return crerr.New("pushover credentials are not configured")
	}

	form := url.Values{}
	form.Set("token", c.token)
	form.Set("user", c.userKey)
	form.Set("message", n.Message)
	form.Set("priority", strconv.Itoa(clampPriority(n.Priority)))
	if strings.TrimSpace(n.Title) != "" {
		form.Set("title", n.Title)
	}
	if strings.TrimSpace(n.URL) != "" {
		form.Set("url", n.URL)
		if strings.TrimSpace(n.URLTitle) != "" {
			form.Set("url_title", n.URLTitle)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/1/messages.json", strings.NewReader(form.Encode()))
	if err != nil {
		return crerr.Wrap(err, "create pushover request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return crerr.Wrap(err, "send pushover notification")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return crerr.Newf("pushover status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	c.logger.InfoContext(ctx, "pushover notification sent", "title", n.Title)
	return nil
}

func clampPriority(priority int) int {
	if priority < -2 {
		return -2
	}
	if priority > 2 {
		return 2
	}
	return priority
}
