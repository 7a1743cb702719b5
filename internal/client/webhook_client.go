package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/LeventeLantos/webhook-chat/internal/model"
)

const maxBody = 1 << 20

type WebhookClient struct {
	client *http.Client
	sender string
	chatID string
}

// NewWebhookClient builds a client stamping every message with the given
// sender metadata. A zero timeout disables the client timeout.
func NewWebhookClient(timeout time.Duration, sender, chatID string) *WebhookClient {
	return &WebhookClient{
		client: &http.Client{
			Timeout: timeout,
		},
		sender: sender,
		chatID: chatID,
	}
}

type sendRequest struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Sender    string `json:"sender"`
	ChatID    string `json:"chat_id"`
}

type testRequest struct {
	Test      bool   `json:"test"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// ErrReplyUnreadable wraps a 2xx answer whose body could not be read in full.
// The request itself succeeded.
var ErrReplyUnreadable = errors.New("reply body unreadable")

// StatusError is returned for any non-2xx answer.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d body=%q", e.Code, e.Body)
}

// Send delivers one chat message to cfg's webhook and returns the raw reply
// body on a 2xx answer. GET carries the fields as query parameters, every
// other method as a JSON body.
func (c *WebhookClient) Send(ctx context.Context, cfg model.WebhookConfig, text string, at time.Time) ([]byte, error) {
	payload := sendRequest{
		Message:   text,
		Timestamp: at.UTC().Format(time.RFC3339Nano),
		Sender:    c.sender,
		ChatID:    c.chatID,
	}

	req, err := c.newRequest(ctx, cfg.Method(), cfg.WebhookURL, payload)
	if err != nil {
		return nil, err
	}

	return c.do(req)
}

// Test sends a connection probe and reports the status code. Only transport
// failures are returned as errors.
func (c *WebhookClient) Test(ctx context.Context, method model.HTTPMethod, rawURL string, at time.Time) (int, error) {
	var payload any
	if method.HasBody() {
		payload = testRequest{
			Test:      true,
			Message:   "Connection test",
			Timestamp: at.UTC().Format(time.RFC3339Nano),
		}
	}

	req, err := c.newRequest(ctx, method, rawURL, payload)
	if err != nil {
		return 0, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))

	return resp.StatusCode, nil
}

// FetchReply polls a response endpoint with a plain GET.
func (c *WebhookClient) FetchReply(ctx context.Context, rawURL string) (Reply, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Reply{}, err
	}

	body, err := c.do(req)
	if err != nil {
		return Reply{}, err
	}
	return ParseReply(body)
}

func (c *WebhookClient) newRequest(ctx context.Context, method model.HTTPMethod, rawURL string, payload any) (*http.Request, error) {
	if method == model.MethodGet {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, err
		}
		if p, ok := payload.(sendRequest); ok {
			q := u.Query()
			q.Set("message", p.Message)
			q.Set("timestamp", p.Timestamp)
			q.Set("sender", p.Sender)
			q.Set("chat_id", p.ChatID)
			u.RawQuery = q.Encode()
		}
		return http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, string(method), rawURL, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *WebhookClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(body) > maxBody {
			body = body[:maxBody]
		}
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	if readErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrReplyUnreadable, readErr)
	}
	if len(body) > maxBody {
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrReplyUnreadable, maxBody)
	}
	return body, nil
}
