package application_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/ptalbot/internal/application"
	"github.com/ericfisherdev/ptalbot/internal/domain/model"
)

func review(login string, state model.ReviewState) model.Review {
	return model.Review{ReviewerLogin: login, State: state}
}

func TestSummarizeReviews(t *testing.T) {
	tests := []struct {
		name    string
		pr      model.PullRequest
		reviews []model.Review
		want    model.ReviewSummary
	}{
		{
			name: "no reviews",
			pr:   widgetsPR(),
			want: model.ReviewSummary{Reviewers: []model.ReviewerState{}, PendingReviewers: []string{}},
		},
		{
			name: "latest decisive review wins",
			pr:   widgetsPR(),
			reviews: []model.Review{
				review("bob", model.ReviewStateChangesRequested),
				review("bob", model.ReviewStateApproved),
			},
			want: model.ReviewSummary{
				Approvals:        1,
				Reviewers:        []model.ReviewerState{{Login: "bob", State: model.ReviewStateApproved}},
				PendingReviewers: []string{},
			},
		},
		{
			name: "comment does not override approval",
			pr:   widgetsPR(),
			reviews: []model.Review{
				review("bob", model.ReviewStateApproved),
				review("bob", model.ReviewStateCommented),
				review("carol", model.ReviewStateCommented),
			},
			want: model.ReviewSummary{
				Approvals: 1,
				Commented: 1,
				Reviewers: []model.ReviewerState{
					{Login: "bob", State: model.ReviewStateApproved},
					{Login: "carol", State: model.ReviewStateCommented},
				},
				PendingReviewers: []string{},
			},
		},
		{
			name: "dismissed pending and author reviews carry no state",
			pr:   widgetsPR(),
			reviews: []model.Review{
				review("bob", model.ReviewStateDismissed),
				review("dave", model.ReviewStatePending),
				review("alice", model.ReviewStateApproved),
			},
			want: model.ReviewSummary{Reviewers: []model.ReviewerState{}, PendingReviewers: []string{}},
		},
		{
			name: "dismissal clears an earlier approval",
			pr:   widgetsPR(),
			reviews: []model.Review{
				review("bob", model.ReviewStateApproved),
				review("carol", model.ReviewStateChangesRequested),
				review("bob", model.ReviewStateDismissed),
			},
			want: model.ReviewSummary{
				ChangesRequested: 1,
				Reviewers:        []model.ReviewerState{{Login: "carol", State: model.ReviewStateChangesRequested}},
				PendingReviewers: []string{},
			},
		},
		{
			name: "review after dismissal counts again",
			pr:   widgetsPR(),
			reviews: []model.Review{
				review("bob", model.ReviewStateApproved),
				review("bob", model.ReviewStateDismissed),
				review("bob", model.ReviewStateCommented),
			},
			want: model.ReviewSummary{
				Commented:        1,
				Reviewers:        []model.ReviewerState{{Login: "bob", State: model.ReviewStateCommented}},
				PendingReviewers: []string{},
			},
		},
		{
			name: "requested users and teams are pending",
			pr: func() model.PullRequest {
				pr := widgetsPR()
				pr.RequestedReviewers = []string{"zed", "erin"}
				pr.RequestedTeamSlugs = []string{"core"}
				return pr
			}(),
			reviews: []model.Review{review("Bob", model.ReviewStateChangesRequested)},
			want: model.ReviewSummary{
				ChangesRequested: 1,
				Pending:          3,
				Reviewers:        []model.ReviewerState{{Login: "Bob", State: model.ReviewStateChangesRequested}},
				PendingReviewers: []string{"@acme/core", "erin", "zed"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := application.SummarizeReviews(tt.pr, tt.reviews)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SummarizeReviews mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderStatusEmbed(t *testing.T) {
	pr := widgetsPR()
	pr.RequestedReviewers = []string{"carol"}
	summary := application.SummarizeReviews(pr, []model.Review{
		review("bob", model.ReviewStateApproved),
		review("dave", model.ReviewStateChangesRequested),
	})

	got := application.RenderStatusEmbed(pr, summary, "please review")

	want := model.StatusEmbed{
		Title:       "#42 Add sprockets",
		URL:         "https://github.com/acme/widgets/pull/42",
		Description: "please review",
		Color:       0xE67E22,
		Fields: []model.EmbedField{
			{Name: "Status", Value: "Open", Inline: true},
			{Name: "Author", Value: "alice", Inline: true},
			{Name: "Approvals", Value: "1", Inline: true},
			{Name: "Changes requested", Value: "1", Inline: true},
			{Name: "Awaiting review", Value: "carol"},
			{Name: "Reviews", Value: "✅ bob\n❌ dave"},
		},
		Footer: "acme/widgets",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RenderStatusEmbed mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderStatusEmbed_Deterministic(t *testing.T) {
	pr := widgetsPR()
	pr.RequestedReviewers = []string{"b", "a", "c"}
	reviews := []model.Review{
		review("x", model.ReviewStateApproved),
		review("y", model.ReviewStateApproved),
		review("z", model.ReviewStateCommented),
	}

	first := application.RenderStatusEmbed(pr, application.SummarizeReviews(pr, reviews), "d")
	for range 20 {
		again := application.RenderStatusEmbed(pr, application.SummarizeReviews(pr, reviews), "d")
		assert.Equal(t, first, again)
	}
}

func TestRenderStatusEmbed_Colors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.PullRequest)
		review []model.Review
		label  string
		color  int
	}{
		{name: "merged", mutate: func(pr *model.PullRequest) { pr.Status = model.PRStatusMerged }, label: "Merged", color: 0x9B59B6},
		{name: "closed", mutate: func(pr *model.PullRequest) { pr.Status = model.PRStatusClosed }, label: "Closed", color: 0xE74C3C},
		{name: "draft", mutate: func(pr *model.PullRequest) { pr.IsDraft = true }, label: "Draft", color: 0x95A5A6},
		{name: "approved", review: []model.Review{review("bob", model.ReviewStateApproved)}, label: "Open", color: 0x2ECC71},
		{name: "open", label: "Open", color: 0x3498DB},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pr := widgetsPR()
			if tt.mutate != nil {
				tt.mutate(&pr)
			}
			got := application.RenderStatusEmbed(pr, application.SummarizeReviews(pr, tt.review), "")
			assert.Equal(t, tt.color, got.Color)
			assert.Equal(t, tt.label, got.Fields[0].Value)
		})
	}
}

func TestRenderStatusEmbed_LongTitle(t *testing.T) {
	pr := widgetsPR()
	pr.Title = strings.Repeat("x", 400)

	got := application.RenderStatusEmbed(pr, application.SummarizeReviews(pr, nil), "")

	assert.Equal(t, 256, len([]rune(got.Title)))
	assert.True(t, strings.HasSuffix(got.Title, "…"))
}
