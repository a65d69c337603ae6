package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ameer851/axix-finance-sub003/internal/accrual"
)

// EmailNotifier renders investment emails and hands them to an HTTP mail
// relay as JSON.
type EmailNotifier struct {
	URL      string
	From     string
	Token    string
	HTTP     *http.Client
	Renderer Renderer
}

type relayPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	Tag     string `json:"tag"`
}

func (n *EmailNotifier) SendInvestmentIncrement(ctx context.Context, to accrual.Recipient, notice accrual.IncrementNotice) error {
	return n.send(ctx, "investment_increment", n.Renderer.Increment(to, notice))
}

func (n *EmailNotifier) SendInvestmentCompleted(ctx context.Context, to accrual.Recipient, notice accrual.CompletionNotice) error {
	return n.send(ctx, "investment_completed", n.Renderer.Completed(to, notice))
}

func (n *EmailNotifier) send(ctx context.Context, tag string, email Email) error {
	if n == nil || strings.TrimSpace(n.URL) == "" {
		return errors.New("email relay url is empty")
	}
	if strings.TrimSpace(email.To) == "" {
		return errors.New("email recipient is empty")
	}
	b, err := json.Marshal(relayPayload{From: n.From, To: email.To, Subject: email.Subject, Text: email.Text, Tag: tag})
	if err != nil {
		return err
	}
	client := n.HTTP
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(n.Token) != "" {
		req.Header.Set("Authorization", "Bearer "+n.Token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &httpError{StatusCode: resp.StatusCode}
	}
	return nil
}

type httpError struct {
	StatusCode int
}

func (e *httpError) Error() string {
	return "mail relay http status " + http.StatusText(e.StatusCode)
}

// Noop drops every email. It is used when no relay is configured.
type Noop struct{}

func (Noop) SendInvestmentIncrement(context.Context, accrual.Recipient, accrual.IncrementNotice) error {
	return nil
}

func (Noop) SendInvestmentCompleted(context.Context, accrual.Recipient, accrual.CompletionNotice) error {
	return nil
}

var (
	_ accrual.Notifier = (*EmailNotifier)(nil)
	_ accrual.Notifier = Noop{}
)
