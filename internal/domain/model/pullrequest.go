package model

import (
	"fmt"
	"time"
)

// PRKey identifies a pull request across both platforms. It is the natural key
// PTAL records are looked up by.
type PRKey struct {
	Owner      string
	Repository string
	Number     int
}

// FullName returns the "owner/repo" form of the key's repository.
func (k PRKey) FullName() string {
	return k.Owner + "/" + k.Repository
}

// String returns the "owner/repo#number" form used in logs.
func (k PRKey) String() string {
	return fmt.Sprintf("%s/%s#%d", k.Owner, k.Repository, k.Number)
}

// PullRequest is the subset of GitHub pull request state rendered into status messages.
type PullRequest struct {
	Owner      string
	Repository string
	Number     int
	Title      string
	URL        string
	Author     string
	Status     PRStatus
	IsDraft    bool
	UpdatedAt  time.Time

	RequestedReviewers []string
	RequestedTeamSlugs []string
}

// Key returns the pull request's natural key.
func (pr PullRequest) Key() PRKey {
	return PRKey{Owner: pr.Owner, Repository: pr.Repository, Number: pr.Number}
}
