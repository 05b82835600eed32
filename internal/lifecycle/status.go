// Package lifecycle defines the status state machine for job applications.
//
// Valid status graph:
//
//	applying ──► submitted ──► in_review ──► shortlisted ──► code_challenge ──► in_review ──► accepted
//	                 │              │             │                │                │
//	                 └──────────────┴─────────────┴────────────────┴────────────────┴──► rejected
//
// shortlisted advances straight to in_review when the job carries no
// assessments. accepted and rejected are terminal.
package lifecycle

import "fmt"

// Status is the canonical application status vocabulary. Stored values
// use exactly these strings.
type Status string

const (
	StatusApplying      Status = "applying"
	StatusSubmitted     Status = "submitted"
	StatusInReview      Status = "in_review"
	StatusShortlisted   Status = "shortlisted"
	StatusCodeChallenge Status = "code_challenge"
	StatusAccepted      Status = "accepted"
	StatusRejected      Status = "rejected"
)

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusApplying, StatusSubmitted, StatusInReview, StatusShortlisted,
		StatusCodeChallenge, StatusAccepted, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// IsTerminal returns true for states with no outgoing transitions.
func IsTerminal(s Status) bool {
	return s == StatusAccepted || s == StatusRejected
}

// IsDraft returns true while the application is still mutable by the
// applicant.
func IsDraft(s Status) bool { return s == StatusApplying }
