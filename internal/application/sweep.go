package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ericfisherdev/ptalbot/internal/domain/model"
	"github.com/ericfisherdev/ptalbot/internal/domain/port/driven"
)

// RecordReconciler re-renders a single tracked message, calling pace right
// before the message is edited.
type RecordReconciler interface {
	ReconcileRecordPaced(ctx context.Context, rec model.PTALRecord, pace Pacer) error
}

// SweepResult summarizes one catch-up sweep.
type SweepResult struct {
	Records  int
	Edited   int
	Skipped  int
	Failed   int
	Duration time.Duration
}

// SweepService re-renders every tracked message after downtime, when webhook
// deliveries may have been missed. Edits are strictly sequential and spaced
// by a fixed delay to stay under the chat platform's rate limits. The delay
// is measured between edit calls, not between record fetches.
type SweepService struct {
	ptals      driven.PTALStore
	reconciler RecordReconciler
	limiter    *rate.Limiter

	// mu keeps sweeps from overlapping.
	mu sync.Mutex
}

// NewSweepService creates a SweepService spacing edits at least delay apart.
// A non-positive delay disables pacing.
func NewSweepService(ptals driven.PTALStore, reconciler RecordReconciler, delay time.Duration) *SweepService {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}

	return &SweepService{
		ptals:      ptals,
		reconciler: reconciler,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// Sweep reconciles every stored record once. Per-record failures are logged
// and counted. Cancelling ctx stops the sweep; the partial result is
// returned with the context error.
func (s *SweepService) Sweep(ctx context.Context) (SweepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()

	records, err := s.ptals.ListAll(ctx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("list ptal records: %w", err)
	}

	result := SweepResult{Records: len(records)}

	// paceErr is set when the limiter refuses to wait, which ends the sweep.
	var paceErr error
	pace := func(ctx context.Context) error {
		if err := s.limiter.Wait(ctx); err != nil {
			paceErr = err
			return err
		}
		return nil
	}

	for _, rec := range records {
		if paceErr == nil {
			paceErr = ctx.Err()
		}
		if paceErr != nil {
			break
		}

		err := s.reconciler.ReconcileRecordPaced(ctx, rec, pace)
		switch {
		case err == nil:
			result.Edited++
		case paceErr != nil:
			// Edit not sent; the sweep ends after this record.
		case errors.Is(err, ErrNotInGuild):
			result.Skipped++
		default:
			result.Failed++
			slog.Error("sweep reconcile failed",
				"pr", rec.Key().String(), "channel", rec.ChannelID, "message", rec.MessageID, "error", err)
		}
	}

	result.Duration = time.Since(start)

	if paceErr != nil {
		slog.Warn("sweep interrupted", "done", result.Edited+result.Skipped+result.Failed, "records", result.Records, "error", paceErr)
		return result, fmt.Errorf("sweep interrupted: %w", paceErr)
	}

	slog.Info("sweep complete",
		"records", result.Records,
		"edited", result.Edited,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"duration", result.Duration.Round(time.Millisecond),
	)

	return result, nil
}
