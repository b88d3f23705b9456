package model

import "time"

// Review represents a review submitted on a pull request.
type Review struct {
	ID            int64
	ReviewerLogin string
	State         ReviewState
	SubmittedAt   time.Time
}

// ReviewerState is the effective review state of a single reviewer after
// collapsing their review history.
type ReviewerState struct {
	Login string
	State ReviewState
}

// ReviewSummary aggregates the reviews of a pull request for display.
type ReviewSummary struct {
	Approvals        int
	ChangesRequested int
	Commented        int
	Pending          int
	Reviewers        []ReviewerState
	PendingReviewers []string
}
