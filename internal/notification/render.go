package notification

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ameer851/axix-finance-sub003/internal/accrual"
)

const dateLayout = "Jan 2, 2006 15:04 MST"

type Email struct {
	To      string
	Subject string
	Text    string
}

// Renderer builds email copy. Amounts are grouped and shown with two decimals.
type Renderer struct {
	Printer *message.Printer
}

func NewRenderer(lang string) Renderer {
	tag, err := language.Parse(strings.TrimSpace(lang))
	if err != nil {
		tag = language.English
	}
	return Renderer{Printer: message.NewPrinter(tag)}
}

func (r Renderer) printer() *message.Printer {
	if r.Printer == nil {
		return message.NewPrinter(language.English)
	}
	return r.Printer
}

func (r Renderer) Increment(to accrual.Recipient, n accrual.IncrementNotice) Email {
	p := r.printer()
	return Email{
		To:      to.Email,
		Subject: p.Sprintf("email.increment.subject", n.PlanName, money(n.DailyAmount)),
		Text: p.Sprintf("email.increment.body",
			r.name(to), n.Day, n.Duration, n.PlanName,
			money(n.DailyAmount), money(n.TotalEarned), money(n.Principal),
			n.NextAccrualUTC.UTC().Format(dateLayout)),
	}
}

func (r Renderer) Completed(to accrual.Recipient, n accrual.CompletionNotice) Email {
	p := r.printer()
	return Email{
		To:      to.Email,
		Subject: p.Sprintf("email.completed.subject", n.PlanName),
		Text: p.Sprintf("email.completed.body",
			r.name(to), n.Duration, n.PlanName, n.EndDateUTC.UTC().Format(dateLayout),
			money(n.Principal), money(n.TotalEarned)),
	}
}

func (r Renderer) name(to accrual.Recipient) string {
	if name := strings.TrimSpace(to.Name); name != "" {
		return name
	}
	return r.printer().Sprintf("email.greeting.fallback")
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
