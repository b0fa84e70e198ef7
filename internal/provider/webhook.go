package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Webhook talks to a plain HTTP SMS gateway: POST <url> to send,
// GET <url>/<messageId> for status.
type Webhook struct {
	url    string
	client *http.Client
}

func NewWebhook(url string) *Webhook {
	return &Webhook{
		url: strings.TrimRight(url, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type sendRequest struct {
	From        string `json:"from,omitempty"`
	PhoneNumber string `json:"phoneNumber"`
	Message     string `json:"message"`
}

type sendResponse struct {
	Message   string `json:"message"`
	MessageID string `json:"messageId"`
}

type statusResponse struct {
	MessageID string `json:"messageId"`
	Status    string `json:"status"`
}

func (c *Webhook) Name() string { return "webhook" }

func (c *Webhook) Send(ctx context.Context, msg Outbound) (Receipt, error) {
	reqBody, err := json.Marshal(sendRequest{
		From:        msg.From,
		PhoneNumber: msg.To,
		Message:     msg.Body,
	})
	if err != nil {
		return Receipt{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(reqBody))
	if err != nil {
		return Receipt{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	body, status, err := c.do(req)
	if err != nil {
		return Receipt{}, err
	}
	if status != http.StatusAccepted {
		return Receipt{}, &Error{
			Status:  status,
			Message: fmt.Sprintf("unexpected status code: %d body=%q", status, string(body)),
		}
	}

	var sr sendResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return Receipt{}, fmt.Errorf("failed to decode json: %w body=%q", err, string(body))
	}
	if sr.MessageID == "" {
		return Receipt{}, &Error{Status: status, Message: fmt.Sprintf("missing messageId in response body=%q", string(body))}
	}

	return Receipt{MessageID: sr.MessageID, Status: "accepted"}, nil
}

func (c *Webhook) Fetch(ctx context.Context, messageID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"/"+url.PathEscape(messageID), nil)
	if err != nil {
		return "", err
	}

	body, status, err := c.do(req)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", &Error{
			Status:  status,
			Message: fmt.Sprintf("unexpected status code: %d body=%q", status, string(body)),
		}
	}

	var sr statusResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return "", fmt.Errorf("failed to decode json: %w body=%q", err, string(body))
	}
	if sr.Status == "" {
		return "", &Error{Status: status, Message: fmt.Sprintf("missing status in response body=%q", string(body))}
	}
	return sr.Status, nil
}

func (c *Webhook) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &Error{Status: resp.StatusCode, Message: fmt.Sprintf("read response body: %v", err)}
	}
	return body, resp.StatusCode, nil
}
