package model

import "time"

// SubmissionStatus tracks a form submission through its lifecycle.
type SubmissionStatus string

const (
	SubmissionStatusSubmitted SubmissionStatus = "submitted"
	SubmissionStatusProcessed SubmissionStatus = "processed"
	SubmissionStatusFailed    SubmissionStatus = "failed"
)

// ValidSubmissionStatus reports whether s is a known lifecycle status.
func ValidSubmissionStatus(s SubmissionStatus) bool {
	switch s {
	case SubmissionStatusSubmitted, SubmissionStatusProcessed, SubmissionStatusFailed:
		return true
	}
	return false
}

// FormData is the marketing-intake form payload. Description is free text and
// may mix Sinhala, Tamil and English; it is the primary pipeline input. The
// structured fields are optional hints the SME filled in explicitly.
type FormData struct {
	BusinessName  string   `json:"business_name"`
	Description   string   `json:"description"`
	BusinessType  string   `json:"business_type,omitempty"`
	Location      string   `json:"location,omitempty"`
	MonthlyBudget string   `json:"monthly_budget,omitempty"`
	PrimaryGoal   string   `json:"primary_goal,omitempty"`
	Platforms     []string `json:"platforms,omitempty"`
	Challenges    []string `json:"challenges,omitempty"`
	FormLanguage  string   `json:"form_language,omitempty"`
	Source        string   `json:"source,omitempty"`
}

// FormSubmission is a stored intake form.
type FormSubmission struct {
	ID        string           `json:"id"`
	FormData  FormData         `json:"form_data"`
	Status    SubmissionStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// SubmissionStats summarizes submission counts by lifecycle status.
type SubmissionStats struct {
	Total     int `json:"total_submissions"`
	Submitted int `json:"submitted"`
	Processed int `json:"processed"`
	Pending   int `json:"pending"`
}
