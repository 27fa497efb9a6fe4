package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"year-progress-bot/internal/integrations/paramstore"
)

const (
	defaultBaseURL = "https://api.telegram.org"
	defaultTimeout = 10 * time.Second
	parseMode      = "Markdown"
)

// sendMessageRequest is the body of the Bot API sendMessage method.
type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// apiResponse is the envelope every Bot API method returns.
type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
}

// Credentials identify the bot and the chat it posts to.
type Credentials struct {
	Token  string `json:"token"`
	ChatID int64  `json:"chat_id"`
}

// CredentialsFunc resolves the bot credentials.
type CredentialsFunc func(ctx context.Context) (Credentials, error)

// StaticCredentials returns fixed credentials, e.g. read from the environment.
func StaticCredentials(token string, chatID int64) CredentialsFunc {
	return func(context.Context) (Credentials, error) {
		return validate(Credentials{Token: strings.TrimSpace(token), ChatID: chatID})
	}
}

// ParamStoreCredentials reads {"token","chat_id"} JSON from the parameter
// {prefix}/telegram.
func ParamStoreCredentials(g paramstore.Getter, prefix string) CredentialsFunc {
	name := strings.TrimRight(strings.TrimSpace(prefix), "/") + "/telegram"
	return func(ctx context.Context) (Credentials, error) {
		var c Credentials
		if err := paramstore.GetJSON(ctx, g, name, &c); err != nil {
			return Credentials{}, fmt.Errorf("telegram: fetch credentials: %w", err)
		}
		return validate(c)
	}
}

func validate(c Credentials) (Credentials, error) {
	if c.Token == "" {
		return Credentials{}, errors.New("telegram: bot token is empty")
	}
	if c.ChatID == 0 {
		return Credentials{}, errors.New("telegram: chat id is empty")
	}
	return c, nil
}

// HTTPStatusError captures a failed Bot API call. It never carries the
// request URL because the URL embeds the bot token.
type HTTPStatusError struct {
	StatusCode  int
	Description string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("telegram: unexpected status %d: %s", e.StatusCode, e.Description)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client posts messages through the Telegram Bot API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	resolve    CredentialsFunc

	credsMu  sync.Mutex
	creds    Credentials
	resolved bool
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Client. Credentials are resolved on the first successful
// send and reused for the lifetime of the process. A failed resolve is retried
// on the next send.
func NewClient(creds CredentialsFunc, opts ...Option) (*Client, error) {
	if creds == nil {
		return nil, errors.New("telegram: credentials source must not be nil")
	}
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		resolve:    creds,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) credentials(ctx context.Context) (Credentials, error) {
	c.credsMu.Lock()
	defer c.credsMu.Unlock()
	if c.resolved {
		return c.creds, nil
	}
	creds, err := c.resolve(ctx)
	if err != nil {
		return Credentials{}, err
	}
	c.creds, c.resolved = creds, true
	return creds, nil
}

func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: defaultTimeout}
}

func sendMessageURL(baseURL, token string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	return base + "/bot" + token + "/sendMessage"
}

// SendMessage posts text, formatted as Markdown, to the configured chat.
func (c *Client) SendMessage(ctx context.Context, text string) error {
	creds, err := c.credentials(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:    creds.ChatID,
		Text:      text,
		ParseMode: parseMode,
	})
	if err != nil {
		return fmt.Errorf("telegram: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sendMessageURL(c.baseURL, creds.Token), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: create request: %s", redact(err.Error(), creds.Token))
	}
	req.Header.Set("Content-Type", "application/json")

	if err := c.doJSONRequest(req, creds.Token); err != nil {
		return fmt.Errorf("telegram: send message: %w", err)
	}
	return nil
}

func (c *Client) doJSONRequest(req *http.Request, token string) error {
	res, doErr := c.resolvedHTTPClient().Do(req)
	if doErr != nil {
		var urlErr *url.Error
		if errors.As(doErr, &urlErr) {
			urlErr.URL = redact(urlErr.URL, token)
		}
		return doErr
	}
	defer func() { _ = res.Body.Close() }()

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<16))
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	var payload apiResponse
	decErr := json.Unmarshal(buf, &payload)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		desc := payload.Description
		if decErr != nil || desc == "" {
			desc = strings.TrimSpace(string(buf))
		}
		return &HTTPStatusError{StatusCode: res.StatusCode, Description: desc}
	}
	if decErr != nil {
		return fmt.Errorf("decode response: %w", decErr)
	}
	if !payload.OK {
		return &HTTPStatusError{StatusCode: res.StatusCode, Description: payload.Description}
	}
	return nil
}

func redact(s, token string) string {
	if token == "" {
		return s
	}
	return strings.ReplaceAll(s, token, "<redacted>")
}
