package model

// EventKind tags the closed set of webhook events the service understands.
type EventKind string

const (
	EventPush               EventKind = "push"
	EventPullRequestChanged EventKind = "pull_request_changed"
	EventReviewChanged      EventKind = "review_changed"
	EventRepositoryDispatch EventKind = "repository_dispatch"
	EventUnhandled          EventKind = "unhandled"
)

// Event is a decoded webhook delivery.
type Event interface {
	Kind() EventKind
}

// PushEvent reports commits pushed to a ref.
type PushEvent struct {
	Ref        string
	Owner      string
	Repository string
}

// PullRequestChangedEvent reports any action on a pull request.
type PullRequestChangedEvent struct {
	Action string
	PR     PRKey
	Sender string
}

// ReviewChangedEvent reports review, review comment or review thread activity.
type ReviewChangedEvent struct {
	Action string
	PR     PRKey
	Sender string
}

// RepositoryDispatchEvent carries a custom action and free-form client payload.
type RepositoryDispatchEvent struct {
	Action        string
	Owner         string
	Repository    string
	ClientPayload map[string]any
}

// UnhandledEvent is any delivery whose event name is not understood.
type UnhandledEvent struct {
	Name string
}

func (PushEvent) Kind() EventKind               { return EventPush }
func (PullRequestChangedEvent) Kind() EventKind { return EventPullRequestChanged }
func (ReviewChangedEvent) Kind() EventKind      { return EventReviewChanged }
func (RepositoryDispatchEvent) Kind() EventKind { return EventRepositoryDispatch }
func (UnhandledEvent) Kind() EventKind          { return EventUnhandled }
