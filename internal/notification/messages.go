package notification

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, "email.increment.subject", "Your %s investment earned $%.2f today")
	message.SetString(lang, "email.increment.body",
		"Hello %s,\n\n"+
			"Day %d of %d of your %s plan has been credited.\n"+
			"Today's profit: $%.2f\n"+
			"Total earned so far: $%.2f\n"+
			"Principal: $%.2f\n"+
			"Next accrual: %s\n")
	message.SetString(lang, "email.completed.subject", "Your %s investment has completed")
	message.SetString(lang, "email.completed.body",
		"Hello %s,\n\n"+
			"Your %d-day %s plan completed on %s.\n"+
			"Principal returned: $%.2f\n"+
			"Total earned: $%.2f\n")
	message.SetString(lang, "email.greeting.fallback", "investor")
}
