package usecase

import (
	"context"
	"os"
	"time"

	"github.com/sendwell/sendwell/internal/campaign/entity"
	"github.com/sendwell/sendwell/internal/pkg/clock"
	"github.com/sendwell/sendwell/internal/pkg/goerror"
	"github.com/sendwell/sendwell/internal/pkg/instrument"
	"github.com/sendwell/sendwell/internal/pkg/mail"
	"github.com/sendwell/sendwell/internal/pkg/uid"
	"github.com/sendwell/sendwell/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type repoRoster interface {
	Parse(ctx context.Context, path string, consume bool) ([]entity.Recipient, error)
	Count(ctx context.Context, path string) (int, error)
	Append(ctx context.Context, path string, recipient entity.Recipient) error
}

type repoLedger interface {
	Record(ctx context.Context, label entity.LedgerLabel, value string) error
}

type repoMail interface {
	Send(ctx context.Context, msg mail.Message) error
}

// Usecase drives campaigns: it parses recipients, renders and composes each
// message, transmits it, and keeps the retry store and run ledger current.
// Execution is strictly sequential; one recipient reaches a terminal outcome
// before the next is attempted.
type Usecase struct {
	roster    repoRoster
	ledger    repoLedger
	repoMail  repoMail
	clock     clock.Clocker
	uid       uid.StringID
	validator validator.Validator
	ins       instrument.Instrumentation

	retryStorePath string
	sendDelay      time.Duration
	retryPasses    int
	passBackoff    time.Duration
}

// Dependency carries the collaborators and the configuration values the
// usecase needs. Paths and timings are plain values here so nothing reads
// shared mutable configuration behind the caller's back.
type Dependency struct {
	Roster     repoRoster
	Ledger     repoLedger
	RepoMail   repoMail
	Clock      clock.Clocker
	UID        uid.StringID
	Validator  validator.Validator
	Instrument instrument.Instrumentation

	// RetryStorePath is where failed recipients are queued between passes.
	RetryStorePath string
	// SendDelay is the fixed pause after each successful transmission.
	SendDelay time.Duration
	// RetryPasses bounds how many extra passes consume the retry store.
	RetryPasses int
	// PassBackoff is the constant wait between retry passes.
	PassBackoff time.Duration
}

// NewCampaign constructs the campaign usecase. PassBackoff must be positive;
// a zero value falls back to one second.
func NewCampaign(dep Dependency) *Usecase {
	if dep.PassBackoff <= 0 {
		dep.PassBackoff = time.Second
	}

	return &Usecase{
		roster:         dep.Roster,
		ledger:         dep.Ledger,
		repoMail:       dep.RepoMail,
		clock:          dep.Clock,
		uid:            dep.UID,
		validator:      dep.Validator,
		ins:            dep.Instrument,
		retryStorePath: dep.RetryStorePath,
		sendDelay:      dep.SendDelay,
		retryPasses:    dep.RetryPasses,
		passBackoff:    dep.PassBackoff,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("campaign.usecase").Start(ctx, name)
}

// loadTemplate reads the template document once per campaign. An unreadable
// path or an empty document aborts the run before any send is attempted.
func (s *Usecase) loadTemplate(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", goerror.NewNotFound(err, "The template file path is invalid: "+path)
	}
	if len(raw) == 0 {
		return "", goerror.NewEmptyTemplate(path)
	}

	return string(raw), nil
}

// CountRecipients reports how many well-formed recipients the source at path
// holds. The confirmation prompt uses this before a run starts.
func (s *Usecase) CountRecipients(ctx context.Context, path string) (int, error) {
	ctx, span := s.startSpan(ctx, "CountRecipients")
	defer span.End()

	return s.roster.Count(ctx, path)
}
