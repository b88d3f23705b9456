package webhook

import (
	"encoding/json"
	"errors"
	"fmt"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/ptalbot/internal/domain/model"
)

// ErrDecode indicates a known event whose payload could not be parsed.
var ErrDecode = errors.New("webhook decode failed")

// Event names the decoder understands. Everything else becomes an UnhandledEvent.
const (
	eventPush                     = "push"
	eventPullRequest              = "pull_request"
	eventPullRequestReview        = "pull_request_review"
	eventPullRequestReviewComment = "pull_request_review_comment"
	eventPullRequestReviewThread  = "pull_request_review_thread"
	eventRepositoryDispatch       = "repository_dispatch"
)

// Decode turns a verified delivery into a typed domain event.
func Decode(eventName string, body []byte) (model.Event, error) {
	switch eventName {
	case eventPush, eventPullRequest, eventPullRequestReview, eventPullRequestReviewComment,
		eventPullRequestReviewThread, eventRepositoryDispatch:
	default:
		return model.UnhandledEvent{Name: eventName}, nil
	}

	parsed, err := gh.ParseWebHook(eventName, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, eventName, err)
	}

	switch ev := parsed.(type) {
	case *gh.PushEvent:
		owner := ev.GetRepo().GetOwner().GetLogin()
		if owner == "" {
			owner = ev.GetRepo().GetOwner().GetName()
		}
		return model.PushEvent{Ref: ev.GetRef(), Owner: owner, Repository: ev.GetRepo().GetName()}, nil

	case *gh.PullRequestEvent:
		key, err := prKey(ev.GetRepo(), ev.GetNumber(), ev.GetPullRequest().GetNumber())
		if err != nil {
			return nil, err
		}
		return model.PullRequestChangedEvent{Action: ev.GetAction(), PR: key, Sender: ev.GetSender().GetLogin()}, nil

	case *gh.PullRequestReviewEvent:
		key, err := prKey(ev.GetRepo(), 0, ev.GetPullRequest().GetNumber())
		if err != nil {
			return nil, err
		}
		return model.ReviewChangedEvent{Action: ev.GetAction(), PR: key, Sender: ev.GetSender().GetLogin()}, nil

	case *gh.PullRequestReviewCommentEvent:
		key, err := prKey(ev.GetRepo(), 0, ev.GetPullRequest().GetNumber())
		if err != nil {
			return nil, err
		}
		return model.ReviewChangedEvent{Action: ev.GetAction(), PR: key, Sender: ev.GetSender().GetLogin()}, nil

	case *gh.PullRequestReviewThreadEvent:
		key, err := prKey(ev.GetRepo(), 0, ev.GetPullRequest().GetNumber())
		if err != nil {
			return nil, err
		}
		return model.ReviewChangedEvent{Action: ev.GetAction(), PR: key, Sender: ev.GetSender().GetLogin()}, nil

	case *gh.RepositoryDispatchEvent:
		payload := map[string]any{}
		if len(ev.ClientPayload) > 0 && string(ev.ClientPayload) != "null" {
			if err := json.Unmarshal(ev.ClientPayload, &payload); err != nil {
				return nil, fmt.Errorf("%w: client_payload: %v", ErrDecode, err)
			}
		}
		return model.RepositoryDispatchEvent{
			Action:        ev.GetAction(),
			Owner:         ev.GetRepo().GetOwner().GetLogin(),
			Repository:    ev.GetRepo().GetName(),
			ClientPayload: payload,
		}, nil
	}

	return model.UnhandledEvent{Name: eventName}, nil
}

// prKey prefers the event-level number and falls back to the embedded pull request.
func prKey(repo *gh.Repository, eventNumber, prNumber int) (model.PRKey, error) {
	number := eventNumber
	if number == 0 {
		number = prNumber
	}

	key := model.PRKey{Owner: repo.GetOwner().GetLogin(), Repository: repo.GetName(), Number: number}
	if key.Owner == "" || key.Repository == "" || key.Number == 0 {
		return model.PRKey{}, fmt.Errorf("%w: payload lacks repository or pull request number", ErrDecode)
	}

	return key, nil
}
