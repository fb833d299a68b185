// Package telegram is a minimal Telegram Bot API client for long polling and replies.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// ErrUnauthorized indicates that the bot token was rejected.
var ErrUnauthorized = errors.New("telegram: unauthorized")

// Client talks to the Bot API at apiURL with a single bot token.
type Client struct {
	apiURL     string
	token      string
	httpClient *http.Client
	maxRetries int
	retryUnit  time.Duration
}

// NewClient creates a Bot API client. apiURL is the API root, e.g. https://api.telegram.org.
func NewClient(apiURL, token string, maxRetries int) *Client {
	return &Client{
		apiURL:     apiURL,
		token:      token,
		httpClient: &http.Client{},
		maxRetries: maxRetries,
		retryUnit:  time.Second,
	}
}

// GetUpdates long-polls for message updates starting at offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout+10*time.Second)
	defer cancel()

	var updates []Update
	err := c.call(ctx, "getUpdates", getUpdatesRequest{
		Offset:         offset,
		Timeout:        int(timeout / time.Second),
		AllowedUpdates: []string{"message"},
	}, &updates)
	if err != nil {
		return nil, err
	}
	return updates, nil
}

// SendMessage sends Markdown text to chatID with link previews disabled.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	return c.call(ctx, "sendMessage", sendMessageRequest{
		ChatID:                chatID,
		Text:                  text,
		ParseMode:             "Markdown",
		DisableWebPagePreview: true,
	}, nil)
}

// call invokes method, retrying on 429 after the delay the API asks for.
func (c *Client) call(ctx context.Context, method string, payload, dest any) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.apiURL, c.token, method)

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", method, err)
	}

	var lastErr error
	for attempt := range c.maxRetries + 1 {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
		if err != nil {
			return fmt.Errorf("creating %s request: %w", method, err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// The URL carries the token; report the method only.
			return fmt.Errorf("executing %s: %w", method, unwrapURLError(err))
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("reading %s response: %w", method, err)
		}

		var envelope apiResponse[json.RawMessage]
		if err := json.Unmarshal(body, &envelope); err != nil {
			return fmt.Errorf("parsing %s response (HTTP %d): %w", method, resp.StatusCode, err)
		}

		if envelope.OK {
			if dest == nil {
				return nil
			}
			if err := json.Unmarshal(envelope.Result, dest); err != nil {
				return fmt.Errorf("parsing %s result: %w", method, err)
			}
			return nil
		}

		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return ErrUnauthorized
		case http.StatusTooManyRequests:
			lastErr = fmt.Errorf("%s: HTTP 429 (attempt %d/%d): %s", method, attempt+1, c.maxRetries+1, envelope.Description)
			if attempt < c.maxRetries {
				wait := 1
				if envelope.Parameters != nil && envelope.Parameters.RetryAfter > 0 {
					wait = envelope.Parameters.RetryAfter
				}
				slog.Warn("telegram rate limited", "method", method, "retry_after", wait)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(time.Duration(wait) * c.retryUnit):
				}
				continue
			}
			return lastErr
		}

		return fmt.Errorf("%s: HTTP %d: %s", method, resp.StatusCode, envelope.Description)
	}

	return lastErr
}

func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
