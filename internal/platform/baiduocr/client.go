// Package baiduocr implements the recognition.Recognizer interface
// against the Baidu accurate-basic OCR API. The client owns the
// short-lived access token: it is fetched lazily, cached across calls,
// and discarded when the upstream reports it invalid so the next
// attempt re-acquires one.
package baiduocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/redinklabs/redink-api/internal/recognition"
	"github.com/redinklabs/redink-api/internal/retry"
)

const (
	defaultTokenURL    = "https://aip.baidubce.com/oauth/2.0/token"
	defaultEndpointURL = "https://aip.baidubce.com/rest/2.0/ocr/v1/accurate_basic"
	defaultTimeout     = 30 * time.Second
)

// Upstream error codes that mean the cached access token is expired or
// invalid.
var credentialErrorCodes = map[int]bool{100: true, 110: true, 111: true}

// Config holds the OCR client settings.
type Config struct {
	APIKey      string
	SecretKey   string
	TokenURL    string
	EndpointURL string
	Timeout     time.Duration
	Retry       retry.Policy
}

// Client calls the OCR API with a per-call timeout and the shared
// retry policy.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger

	mu          sync.Mutex
	accessToken string
}

// NewClient creates an OCR client. If logger is nil the default logger
// is used.
func NewClient(config Config, logger *slog.Logger) (*Client, error) {
	if config.APIKey == "" || config.SecretKey == "" {
		return nil, errors.New("ocr api key and secret key cannot be empty")
	}
	if config.TokenURL == "" {
		config.TokenURL = defaultTokenURL
	}
	if config.EndpointURL == "" {
		config.EndpointURL = defaultEndpointURL
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	if config.Retry.MaxAttempts == 0 {
		config.Retry = retry.DefaultPolicy()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger.With(slog.String("component", "ocr_client")),
	}, nil
}

var _ recognition.Recognizer = (*Client)(nil)

// Recognize extracts the text in imageBytes, joining recognized lines
// with newlines. Transient upstream failures and invalid-credential
// responses are retried within the attempt budget; an invalid
// credential also drops the cached token so the retry re-acquires one.
func (c *Client) Recognize(ctx context.Context, imageBytes []byte) (string, error) {
	if len(imageBytes) == 0 {
		return "", recognition.ErrEmptyInput
	}

	var text string
	err := c.config.Retry.Do(ctx, c.shouldRetry, func(ctx context.Context) error {
		var attemptErr error
		text, attemptErr = c.recognizeOnce(ctx, imageBytes)
		return attemptErr
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

func (c *Client) shouldRetry(err error) bool {
	return errors.Is(err, recognition.ErrTransient) || errors.Is(err, recognition.ErrInvalidCredential)
}

// ocrResponse is the OCR endpoint's response body.
type ocrResponse struct {
	ErrorCode   int    `json:"error_code"`
	ErrorMsg    string `json:"error_msg"`
	WordsResult []struct {
		Words string `json:"words"`
	} `json:"words_result"`
}

func (c *Client) recognizeOnce(ctx context.Context, imageBytes []byte) (string, error) {
	token, err := c.token(ctx)
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("image", base64.StdEncoding.EncodeToString(imageBytes))

	endpoint := c.config.EndpointURL + "?access_token=" + url.QueryEscape(token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build ocr request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	c.logger.Debug("calling ocr api", "image_bytes", len(imageBytes))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", recognition.ErrTransient, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", recognition.ErrTransient, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: ocr api returned status %d", recognition.ErrTransient, resp.StatusCode)
	}

	var parsed ocrResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", recognition.ErrTransient, err)
	}

	if parsed.ErrorCode != 0 {
		if credentialErrorCodes[parsed.ErrorCode] {
			c.invalidateToken()
			return "", fmt.Errorf("%w: upstream code %d: %s",
				recognition.ErrInvalidCredential, parsed.ErrorCode, parsed.ErrorMsg)
		}
		return "", fmt.Errorf("%w: upstream code %d: %s",
			recognition.ErrTransient, parsed.ErrorCode, parsed.ErrorMsg)
	}

	lines := make([]string, 0, len(parsed.WordsResult))
	for _, item := range parsed.WordsResult {
		lines = append(lines, item.Words)
	}
	text := strings.Join(lines, "\n")
	c.logger.Debug("ocr call succeeded", "recognized_chars", len(text))
	return text, nil
}

// token returns the cached access token, fetching a fresh one when the
// cache is empty.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	cached := c.accessToken
	c.mu.Unlock()
	if cached != "" {
		return cached, nil
	}
	return c.fetchToken(ctx)
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.accessToken = ""
	c.mu.Unlock()
	c.logger.Info("cached access token invalidated by upstream")
}

// fetchToken acquires a new access token from the credential endpoint.
func (c *Client) fetchToken(ctx context.Context) (string, error) {
	params := url.Values{}
	params.Set("grant_type", "client_credentials")
	params.Set("client_id", c.config.APIKey)
	params.Set("client_secret", c.config.SecretKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.TokenURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}

	c.logger.Debug("fetching ocr access token")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: fetch token: %v", recognition.ErrTransient, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token endpoint returned status %d", recognition.ErrTransient, resp.StatusCode)
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: decode token response: %v", recognition.ErrTransient, err)
	}
	if parsed.AccessToken == "" {
		return "", fmt.Errorf("%w: token endpoint returned no access token", recognition.ErrTransient)
	}

	c.mu.Lock()
	c.accessToken = parsed.AccessToken
	c.mu.Unlock()
	c.logger.Debug("ocr access token acquired")
	return parsed.AccessToken, nil
}
