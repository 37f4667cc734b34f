package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sendwell/sendwell/internal/campaign/entity"
	"github.com/sendwell/sendwell/internal/pkg/goerror"
	"github.com/sendwell/sendwell/internal/pkg/instrument"
	"github.com/sethvargo/go-retry"
)

// errFailuresRemain signals that a retry pass still left recipients queued.
// It is not fatal; the queued recipients survive in the retry store for a
// later run.
var errFailuresRemain = errors.New("failed recipients remain queued")

// DispatchInput describes one campaign run.
type DispatchInput struct {
	TemplatePath string `validate:"required"`
	SourcePath   string `validate:"required"`
	Subject      string `validate:"required"`
	SenderName   string
	SenderEmail  string `validate:"required,mailaddr"`
}

func (in DispatchInput) campaign(id string) entity.Campaign {
	return entity.Campaign{
		ID:           id,
		TemplatePath: in.TemplatePath,
		SourcePath:   in.SourcePath,
		Subject:      in.Subject,
		Sender:       entity.Sender{Name: in.SenderName, Email: in.SenderEmail},
	}
}

// Dispatch runs a full campaign: a primary pass over the recipient source,
// then a bounded number of retry passes that drain the retry store with a
// constant wait between passes. Template problems surface before any send is
// attempted. The returned result aggregates every pass.
func (s *Usecase) Dispatch(ctx context.Context, in DispatchInput) (entity.PassResult, error) {
	ctx, span := s.startSpan(ctx, "Dispatch")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return entity.PassResult{}, goerror.NewInvalidInput(err)
	}

	runID := s.uid.Generate()
	ctx = instrument.WithRunID(ctx, runID)
	camp := in.campaign(runID)

	template, err := s.loadTemplate(camp.TemplatePath)
	if err != nil {
		return entity.PassResult{}, err
	}

	if err := s.ledger.Record(ctx, entity.LedgerRunID, runID); err != nil {
		return entity.PassResult{}, err
	}

	recipients, err := s.roster.Parse(ctx, camp.SourcePath, false)
	if err != nil {
		return entity.PassResult{}, err
	}

	slog.InfoContext(ctx, "campaign started",
		"source", camp.SourcePath, "recipients", len(recipients))

	total, err := s.runPass(ctx, camp, template, recipients, entity.PassKindPrimary, 0)
	if err != nil {
		return total, err
	}

	if err := s.runRetryPasses(ctx, camp, template, &total); err != nil {
		return total, err
	}

	if err := s.ledger.Record(ctx, entity.LedgerSourceUsed, camp.SourcePath); err != nil {
		return total, err
	}
	if err := s.ledger.Record(ctx, entity.LedgerEndTime, s.clock.Now().Format(timeLayout)); err != nil {
		return total, err
	}

	slog.InfoContext(ctx, "campaign finished",
		"succeeded", total.Succeeded, "failed", total.Failed)

	return total, nil
}

// DispatchTest runs a single pass against an explicit recipient list instead
// of the campaign's source file. Failures still land in the retry store.
func (s *Usecase) DispatchTest(ctx context.Context, in DispatchInput, recipients []entity.Recipient) (entity.PassResult, error) {
	ctx, span := s.startSpan(ctx, "DispatchTest")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return entity.PassResult{}, goerror.NewInvalidInput(err)
	}

	runID := s.uid.Generate()
	ctx = instrument.WithRunID(ctx, runID)
	camp := in.campaign(runID)

	template, err := s.loadTemplate(camp.TemplatePath)
	if err != nil {
		return entity.PassResult{}, err
	}

	if err := s.ledger.Record(ctx, entity.LedgerRunID, runID); err != nil {
		return entity.PassResult{}, err
	}

	total, err := s.runPass(ctx, camp, template, recipients, entity.PassKindPrimary, 0)
	if err != nil {
		return total, err
	}

	if err := s.ledger.Record(ctx, entity.LedgerEndTime, s.clock.Now().Format(timeLayout)); err != nil {
		return total, err
	}

	return total, nil
}

// runRetryPasses drains the retry store up to s.retryPasses times, waiting
// s.passBackoff between passes. A pass that still leaves failures behind
// triggers the next one; exhausting the budget is not an error because the
// remaining recipients stay queued on disk.
func (s *Usecase) runRetryPasses(ctx context.Context, camp entity.Campaign, template string, total *entity.PassResult) error {
	if s.retryPasses <= 0 {
		return nil
	}

	backoff := retry.WithMaxRetries(uint64(s.retryPasses-1), retry.NewConstant(s.passBackoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		queued, err := s.roster.Parse(ctx, s.retryStorePath, true)
		if err != nil {
			return err
		}
		if len(queued) == 0 {
			return nil
		}

		slog.InfoContext(ctx, "retry pass started", "recipients", len(queued))

		result, err := s.runPass(ctx, camp, template, queued, entity.PassKindRetry, total.Failed)
		total.Add(result)
		if err != nil {
			return err
		}

		if result.Failed > 0 {
			return retry.RetryableError(errFailuresRemain)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, errFailuresRemain) {
			slog.WarnContext(ctx, "retry budget exhausted, recipients remain queued",
				"path", s.retryStorePath)
			return nil
		}
		return err
	}

	return nil
}
