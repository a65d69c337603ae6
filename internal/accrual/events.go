package accrual

// Event names. Each is logged as the message and as the "event" field.
const (
	EventStart                     = "start"
	EventFoundInvestments          = "found_investments"
	EventFetchFailed               = "fetch_failed"
	EventConsider                  = "consider"
	EventSkipAlreadyApplied        = "skip_already_applied"
	EventSkipNotDue                = "skip_not_due"
	EventExhaustedActive           = "exhausted_active"
	EventAccrualApplied            = "accrual_applied"
	EventCompletionCreditSuccess   = "completion_credit_success"
	EventCompletionCreditFailed    = "completion_credit_failed"
	EventCompletionCreditException = "completion_credit_exception"
	EventCompletionEmailError      = "completion_email_error"
	EventIncrementEmailError       = "increment_email_error"
	EventInvestmentException       = "investment_exception"
	EventCanceled                  = "canceled"
	EventJobRunInsertFailed        = "job_run_insert_failed"
	EventSummary                   = "summary"
	EventFinalizeException         = "finalize_exception"
	EventLockBusy                  = "lock_busy"
	EventLockError                 = "lock_error"
)
