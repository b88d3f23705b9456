package application_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/ptalbot/internal/application"
	"github.com/ericfisherdev/ptalbot/internal/domain/model"
)

type fakeReconciler struct {
	mu   sync.Mutex
	keys []model.PRKey
	err  error
}

func (f *fakeReconciler) Reconcile(_ context.Context, key model.PRKey) (application.ReconcileResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	return application.ReconcileResult{}, f.err
}

func (f *fakeReconciler) reconciled() []model.PRKey {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.PRKey{}, f.keys...)
}

func TestWebhookService_Dispatch(t *testing.T) {
	rec := &fakeReconciler{}
	bus := application.NewEventBus()

	var published []model.Event
	bus.Subscribe(model.EventRepositoryDispatch, "capture", func(_ context.Context, ev model.Event) error {
		published = append(published, ev)
		return nil
	})

	svc := application.NewWebhookService(rec, bus)
	ctx := context.Background()

	require.NoError(t, svc.Dispatch(ctx, model.PullRequestChangedEvent{Action: "closed", PR: widgets42}))
	require.NoError(t, svc.Dispatch(ctx, model.ReviewChangedEvent{Action: "submitted", PR: widgets42}))
	require.NoError(t, svc.Dispatch(ctx, model.RepositoryDispatchEvent{Action: "crowdin-ptal"}))
	require.NoError(t, svc.Dispatch(ctx, model.PushEvent{Ref: "refs/heads/main"}))
	require.NoError(t, svc.Dispatch(ctx, model.UnhandledEvent{Name: "star"}))

	assert.Equal(t, []model.PRKey{widgets42, widgets42}, rec.reconciled())
	require.Len(t, published, 1)
	assert.Equal(t, model.EventRepositoryDispatch, published[0].Kind())
}

func TestWebhookService_DispatchError(t *testing.T) {
	rec := &fakeReconciler{err: errUpstream}
	svc := application.NewWebhookService(rec, application.NewEventBus())

	err := svc.Dispatch(context.Background(), model.ReviewChangedEvent{PR: widgets42})
	assert.ErrorIs(t, err, errUpstream)
}

func TestWebhookService_EnqueueOutlivesRequestContext(t *testing.T) {
	rec := &fakeReconciler{}
	svc := application.NewWebhookService(rec, application.NewEventBus())

	reqCtx, cancel := context.WithCancel(context.Background())
	svc.Enqueue(reqCtx, model.ReviewChangedEvent{PR: widgets42}, "delivery-1")
	cancel()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
	defer waitCancel()
	require.NoError(t, svc.Wait(waitCtx))

	assert.Equal(t, []model.PRKey{widgets42}, rec.reconciled())
}
