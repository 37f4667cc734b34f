package usecase

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/sendwell/sendwell/internal/campaign/entity"
)

// timeLayout is the timestamp format written to the run ledger.
const timeLayout = time.DateTime

// runPass iterates recipients in order and drives each one to a terminal
// outcome. A transmission failure queues the recipient in the retry store and
// moves on; only bookkeeping failures (ledger or retry store writes) abort
// the pass, because losing accounting is worse than losing a send.
//
// failedSoFar carries the running failure count across passes so FAILED
// RECIPIENTS in the ledger reflects the whole run, not just this pass.
func (s *Usecase) runPass(
	ctx context.Context,
	camp entity.Campaign,
	template string,
	recipients []entity.Recipient,
	kind entity.PassKind,
	failedSoFar int,
) (entity.PassResult, error) {
	ctx, span := s.startSpan(ctx, "runPass")
	defer span.End()

	if !kind.IsRetry() {
		if err := s.ledger.Record(ctx, entity.LedgerTotalRecipients, strconv.Itoa(len(recipients))); err != nil {
			return entity.PassResult{}, err
		}
		if err := s.ledger.Record(ctx, entity.LedgerStartTime, s.clock.Now().Format(timeLayout)); err != nil {
			return entity.PassResult{}, err
		}
	}

	var result entity.PassResult
	for _, recipient := range recipients {
		msg := composeMessage(camp, recipient, template)

		if err := s.repoMail.Send(ctx, msg); err != nil {
			result.Failed++

			slog.ErrorContext(ctx, "message transmission failed, recipient queued for retry",
				"recipient", recipient.Address(),
				"pass", kind.String(),
				"status", entity.DeliveryStatusQueuedForRetry.String(),
				"error", err,
			)

			if err := s.roster.Append(ctx, s.retryStorePath, recipient); err != nil {
				return result, err
			}
			if err := s.ledger.Record(ctx, entity.LedgerFailedCount,
				strconv.Itoa(failedSoFar+result.Failed)); err != nil {
				return result, err
			}

			continue
		}

		result.Succeeded++

		slog.InfoContext(ctx, "message delivered",
			"recipient", recipient.Address(),
			"pass", kind.String(),
			"status", entity.DeliveryStatusSent.String(),
		)

		if err := s.ledger.Record(ctx, entity.LedgerLastRecipient, recipient.Address()); err != nil {
			return result, err
		}

		if err := s.pause(ctx, s.sendDelay); err != nil {
			return result, err
		}
	}

	return result, nil
}

// pause sleeps for d or returns early when ctx is cancelled. The fixed pause
// after each delivery keeps the send rate below relay throttling thresholds.
func (s *Usecase) pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
