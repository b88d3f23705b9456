package application

import (
	"context"
	"log/slog"

	"github.com/ericfisherdev/ptalbot/internal/domain/model"
)

// PullRequestReconciler reconciles every message tracking a pull request.
type PullRequestReconciler interface {
	Reconcile(ctx context.Context, key model.PRKey) (ReconcileResult, error)
}

// WebhookService routes decoded webhook events to their handlers. Pull
// request and review changes go straight to the reconciler; dispatch events
// go through the event bus.
type WebhookService struct {
	reconciler PullRequestReconciler
	bus        *EventBus

	inFlight Background
}

// NewWebhookService creates a WebhookService.
func NewWebhookService(reconciler PullRequestReconciler, bus *EventBus) *WebhookService {
	return &WebhookService{reconciler: reconciler, bus: bus}
}

// Enqueue handles ev in the background so the webhook sender is answered
// without waiting. The work is detached from ctx's cancellation but keeps its values.
func (s *WebhookService) Enqueue(ctx context.Context, ev model.Event, deliveryID string) {
	ctx = context.WithoutCancel(ctx)

	s.inFlight.Go(func() {
		defer func() {
			if v := recover(); v != nil {
				slog.Error("webhook dispatch panicked", "delivery", deliveryID, "kind", ev.Kind(), "panic", v)
			}
		}()

		if err := s.Dispatch(ctx, ev); err != nil {
			slog.Error("webhook dispatch failed", "delivery", deliveryID, "kind", ev.Kind(), "error", err)
		}
	})
}

// Dispatch handles ev synchronously.
func (s *WebhookService) Dispatch(ctx context.Context, ev model.Event) error {
	switch e := ev.(type) {
	case model.PullRequestChangedEvent:
		_, err := s.reconciler.Reconcile(ctx, e.PR)
		return err
	case model.ReviewChangedEvent:
		_, err := s.reconciler.Reconcile(ctx, e.PR)
		return err
	case model.RepositoryDispatchEvent:
		s.bus.Publish(ctx, e)
	case model.PushEvent:
		slog.Debug("push received", "repo", e.Owner+"/"+e.Repository, "ref", e.Ref)
	case model.UnhandledEvent:
		slog.Info("unhandled webhook event dropped", "event", e.Name)
	default:
		slog.Warn("unknown event type dropped", "kind", ev.Kind())
	}
	return nil
}

// Wait blocks until every enqueued event has been handled or ctx expires.
func (s *WebhookService) Wait(ctx context.Context) error {
	return s.inFlight.Wait(ctx)
}
