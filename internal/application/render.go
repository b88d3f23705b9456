package application

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/ericfisherdev/ptalbot/internal/domain/model"
)

// Embed colors keyed by the overall pull request state.
const (
	colorOpen             = 0x3498DB
	colorDraft            = 0x95A5A6
	colorApproved         = 0x2ECC71
	colorChangesRequested = 0xE67E22
	colorMerged           = 0x9B59B6
	colorClosed           = 0xE74C3C
)

// maxTitleLen is the chat platform's limit on embed titles.
const maxTitleLen = 256

// SummarizeReviews collapses a pull request's review history into the
// effective state of each reviewer. A reviewer's latest approval or change
// request wins; comments never override either. A dismissal clears whatever
// the reviewer had before it. Pending reviews carry no state. The author's
// own reviews are ignored.
func SummarizeReviews(pr model.PullRequest, reviews []model.Review) model.ReviewSummary {
	latest := make(map[string]model.ReviewState)

	for _, r := range reviews {
		login := r.ReviewerLogin
		if login == "" || strings.EqualFold(login, pr.Author) {
			continue
		}

		switch r.State {
		case model.ReviewStateApproved, model.ReviewStateChangesRequested:
			latest[login] = r.State
		case model.ReviewStateCommented:
			if _, seen := latest[login]; !seen {
				latest[login] = r.State
			}
		case model.ReviewStateDismissed:
			delete(latest, login)
		}
	}

	summary := model.ReviewSummary{
		Reviewers:        make([]model.ReviewerState, 0, len(latest)),
		PendingReviewers: []string{},
	}

	for login, state := range latest {
		summary.Reviewers = append(summary.Reviewers, model.ReviewerState{Login: login, State: state})
		switch state {
		case model.ReviewStateApproved:
			summary.Approvals++
		case model.ReviewStateChangesRequested:
			summary.ChangesRequested++
		case model.ReviewStateCommented:
			summary.Commented++
		}
	}
	slices.SortFunc(summary.Reviewers, func(a, b model.ReviewerState) int {
		return strings.Compare(strings.ToLower(a.Login), strings.ToLower(b.Login))
	})

	summary.PendingReviewers = append(summary.PendingReviewers, pr.RequestedReviewers...)
	for _, slug := range pr.RequestedTeamSlugs {
		summary.PendingReviewers = append(summary.PendingReviewers, "@"+pr.Owner+"/"+slug)
	}
	slices.Sort(summary.PendingReviewers)
	summary.Pending = len(summary.PendingReviewers)

	return summary
}

// RenderStatusEmbed builds the chat message body for a pull request. The
// output depends only on its inputs, so re-rendering unchanged state yields
// an identical embed.
func RenderStatusEmbed(pr model.PullRequest, summary model.ReviewSummary, description string) model.StatusEmbed {
	title := fmt.Sprintf("#%d %s", pr.Number, pr.Title)
	if r := []rune(title); len(r) > maxTitleLen {
		title = string(r[:maxTitleLen-1]) + "…"
	}

	fields := []model.EmbedField{
		{Name: "Status", Value: statusLabel(pr), Inline: true},
		{Name: "Author", Value: orNone(pr.Author), Inline: true},
		{Name: "Approvals", Value: strconv.Itoa(summary.Approvals), Inline: true},
		{Name: "Changes requested", Value: strconv.Itoa(summary.ChangesRequested), Inline: true},
		{Name: "Awaiting review", Value: orNone(strings.Join(summary.PendingReviewers, ", "))},
	}

	if len(summary.Reviewers) > 0 {
		lines := make([]string, 0, len(summary.Reviewers))
		for _, r := range summary.Reviewers {
			lines = append(lines, reviewIcon(r.State)+" "+r.Login)
		}
		fields = append(fields, model.EmbedField{Name: "Reviews", Value: strings.Join(lines, "\n")})
	}

	return model.StatusEmbed{
		Title:       title,
		URL:         pr.URL,
		Description: description,
		Color:       statusColor(pr, summary),
		Fields:      fields,
		Footer:      pr.Owner + "/" + pr.Repository,
	}
}

func statusLabel(pr model.PullRequest) string {
	switch {
	case pr.Status == model.PRStatusMerged:
		return "Merged"
	case pr.Status == model.PRStatusClosed:
		return "Closed"
	case pr.IsDraft:
		return "Draft"
	default:
		return "Open"
	}
}

func statusColor(pr model.PullRequest, summary model.ReviewSummary) int {
	switch {
	case pr.Status == model.PRStatusMerged:
		return colorMerged
	case pr.Status == model.PRStatusClosed:
		return colorClosed
	case pr.IsDraft:
		return colorDraft
	case summary.ChangesRequested > 0:
		return colorChangesRequested
	case summary.Approvals > 0:
		return colorApproved
	default:
		return colorOpen
	}
}

func reviewIcon(state model.ReviewState) string {
	switch state {
	case model.ReviewStateApproved:
		return "✅"
	case model.ReviewStateChangesRequested:
		return "❌"
	default:
		return "💬"
	}
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
