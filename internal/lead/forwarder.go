package lead

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
	"time"

	"github.com/google/uuid"

	"github.com/codefarman/chatGPT-Widget/internal/types"
)

const forwardTimeout = 15 * time.Second

var (
	// ErrMissingFields marks a submission without the mandatory contact fields.
	ErrMissingFields = errors.New("name & phone required")
	// ErrNotConfigured marks a missing webhook target; nothing was sent.
	ErrNotConfigured = errors.New("lead webhook not configured")
)

// payload is what the intake webhook receives. The phone is already
// normalized to digits by the time it is built.
type payload struct {
	Name         string           `json:"name"`
	Phone        string           `json:"phone"`
	FirstMessage string           `json:"firstMessage"`
	Conversation []types.ChatTurn `json:"conversation"`
	Timestamp    string           `json:"timestamp"`
	DeliveryID   string           `json:"deliveryId"`
}

// Forwarder relays validated lead submissions to the configured webhook,
// at most once per call.
type Forwarder struct {
	webhookURL string
	token      string
	client     *http.Client
	now        func() time.Time
}

func NewForwarder(webhookURL, token string) *Forwarder {
	return &Forwarder{
		webhookURL: webhookURL,
		token:      token,
		client:     &http.Client{Timeout: forwardTimeout},
		now:        time.Now,
	}
}

// Forward validates, normalizes, and sends the submission. The returned
// value is the webhook's response body, decoded as JSON when possible, for
// caller-side diagnostics.
func (f *Forwarder) Forward(ctx context.Context, sub types.LeadRequest) (any, error) {
	name := strings.TrimSpace(sub.Name)
	phone := digitsOnly(sub.Phone)
	if name == "" || phone == "" {
		return nil, ErrMissingFields
	}
	if f.webhookURL == "" {
		return nil, ErrNotConfigured
	}
	target, err := f.targetURL()
	if err != nil {
		return nil, fmt.Errorf("parsing webhook url: %w", err)
	}

	timestamp := strings.TrimSpace(sub.Timestamp)
	if timestamp == "" {
		timestamp = f.now().UTC().Format(time.RFC3339)
	}
	conversation := sub.Conversation
	if conversation == nil {
		conversation = []types.ChatTurn{}
	}
	body, err := json.Marshal(payload{
		Name:         name,
		Phone:        phone,
		FirstMessage: sub.FirstMessage,
		Conversation: conversation,
		Timestamp:    timestamp,
		DeliveryID:   uuid.NewString(),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding lead payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, forwardTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forwarding lead: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return decodeUpstream(respBody), nil
}

// targetURL appends the shared-secret token as a query parameter, preserving
// any query string already present on the configured URL.
func (f *Forwarder) targetURL() (string, error) {
	if f.token == "" {
		return f.webhookURL, nil
	}
	u, err := url.Parse(f.webhookURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", f.token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func decodeUpstream(body []byte) any {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return trimmed
	}
	return v
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
