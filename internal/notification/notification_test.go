package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ameer851/axix-finance-sub003/internal/accrual"
)

func TestRendererIncrementFormatsAmounts(t *testing.T) {
	r := NewRenderer("en-US")
	email := r.Increment(accrual.Recipient{Email: "a@example.com", Name: "Ada"}, accrual.IncrementNotice{
		PlanName:       "Gold",
		Day:            3,
		Duration:       7,
		DailyAmount:    decimal.RequireFromString("175"),
		TotalEarned:    decimal.RequireFromString("525"),
		Principal:      decimal.RequireFromString("5000"),
		NextAccrualUTC: time.Date(2025, 9, 14, 0, 0, 0, 0, time.UTC),
	})

	if email.Subject != "Your Gold investment earned $175.00 today" {
		t.Fatalf("subject=%q", email.Subject)
	}
	for _, want := range []string{"Hello Ada", "Day 3 of 7", "$5,000.00", "$525.00", "Sep 14, 2025"} {
		if !strings.Contains(email.Text, want) {
			t.Fatalf("body missing %q:\n%s", want, email.Text)
		}
	}
}

func TestRendererCompletedFallsBackOnName(t *testing.T) {
	r := NewRenderer("not a tag")
	email := r.Completed(accrual.Recipient{Email: "a@example.com"}, accrual.CompletionNotice{
		PlanName:    "Week",
		Duration:    7,
		TotalEarned: decimal.RequireFromString("1225"),
		Principal:   decimal.RequireFromString("5000"),
		EndDateUTC:  time.Date(2025, 9, 17, 1, 0, 0, 0, time.UTC),
	})
	if !strings.Contains(email.Text, "Hello investor") {
		t.Fatalf("body=%q", email.Text)
	}
	if !strings.Contains(email.Text, "$1,225.00") {
		t.Fatalf("body missing total:\n%s", email.Text)
	}
}

func TestEmailNotifierPostsToRelay(t *testing.T) {
	var got relayPayload
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n := &EmailNotifier{URL: srv.URL, From: "noreply@example.com", Token: "secret", Renderer: NewRenderer("en")}
	err := n.SendInvestmentCompleted(context.Background(), accrual.Recipient{Email: "a@example.com", Name: "Ada"}, accrual.CompletionNotice{
		PlanName:    "Week",
		Duration:    7,
		TotalEarned: decimal.RequireFromString("1225"),
		Principal:   decimal.RequireFromString("5000"),
		EndDateUTC:  time.Date(2025, 9, 17, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if got.To != "a@example.com" || got.From != "noreply@example.com" || got.Tag != "investment_completed" {
		t.Fatalf("payload=%+v", got)
	}
	if auth != "Bearer secret" {
		t.Fatalf("auth=%q", auth)
	}
}

func TestEmailNotifierRelayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := &EmailNotifier{URL: srv.URL}
	err := n.SendInvestmentIncrement(context.Background(), accrual.Recipient{Email: "a@example.com"}, accrual.IncrementNotice{PlanName: "Gold"})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestEmailNotifierRequiresRecipient(t *testing.T) {
	n := &EmailNotifier{URL: "http://127.0.0.1:1"}
	if err := n.SendInvestmentIncrement(context.Background(), accrual.Recipient{}, accrual.IncrementNotice{}); err == nil {
		t.Fatalf("expected error")
	}
}
