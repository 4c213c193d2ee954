package models

import "github.com/shopspring/decimal"

// ValidationStatus tags a transaction after batch validation.
type ValidationStatus string

const (
	StatusDuplicateInBatch ValidationStatus = "duplicate_in_batch"
	StatusExistingInStore  ValidationStatus = "existing_in_store"
	StatusProcessable      ValidationStatus = "processable"
	StatusUnprocessable    ValidationStatus = "unprocessable"
)

// Validation messages shown to the user.
const (
	MessageDuplicateInBatch = "Duplicate entry found in uploaded file"
	MessageExistingInStore  = "Transaction already exists in database"
	MessageProcessable      = "Transaction is valid and can be processed"
)

// ValidationOutcome records how one transaction of a batch was classified.
type ValidationOutcome struct {
	Index       int               `json:"index"`
	Transaction ParsedTransaction `json:"transaction"`
	Status      ValidationStatus  `json:"status"`
	Message     string            `json:"validation_message"`
	// DuplicateOf is the batch index of the first occurrence, or -1.
	DuplicateOf int `json:"duplicate_of"`
	// ProjectedBalance is set for processable transactions only.
	ProjectedBalance decimal.Decimal `json:"projected_balance"`
}

// VerificationSummary counts outcomes per status.
type VerificationSummary struct {
	TotalEntries  int `json:"total_entries"`
	Repeated      int `json:"repeated_entries"`
	ExistingInDB  int `json:"existing_in_db"`
	Processable   int `json:"processable"`
	Unprocessable int `json:"unprocessable"`
}

// Summarize counts outcomes per status.
func Summarize(outcomes []ValidationOutcome) VerificationSummary {
	s := VerificationSummary{TotalEntries: len(outcomes)}
	for _, o := range outcomes {
		switch o.Status {
		case StatusDuplicateInBatch:
			s.Repeated++
		case StatusExistingInStore:
			s.ExistingInDB++
		case StatusProcessable:
			s.Processable++
		case StatusUnprocessable:
			s.Unprocessable++
		}
	}
	return s
}

// VerificationReport is the dry-run view of a batch against an account.
type VerificationReport struct {
	AccountName      string              `json:"account_name"`
	CurrentBalance   decimal.Decimal     `json:"current_balance"`
	ProjectedBalance decimal.Decimal     `json:"projected_balance"`
	TotalImpact      decimal.Decimal     `json:"total_impact"`
	Summary          VerificationSummary `json:"validation_summary"`
	Outcomes         []ValidationOutcome `json:"validation_details"`
}

// ByStatus returns the outcomes with the given status, in batch order.
func (r VerificationReport) ByStatus(status ValidationStatus) []ValidationOutcome {
	var out []ValidationOutcome
	for _, o := range r.Outcomes {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out
}
