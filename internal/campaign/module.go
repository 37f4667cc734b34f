package campaign

import (
	"os"

	"github.com/sendwell/sendwell/internal/campaign/inbound"
	"github.com/sendwell/sendwell/internal/campaign/outbound/email"
	"github.com/sendwell/sendwell/internal/campaign/outbound/ledger"
	"github.com/sendwell/sendwell/internal/campaign/outbound/roster"
	"github.com/sendwell/sendwell/internal/campaign/usecase"
	"github.com/sendwell/sendwell/internal/pkg/clock"
	"github.com/sendwell/sendwell/internal/pkg/config"
	"github.com/sendwell/sendwell/internal/pkg/goerror"
	"github.com/sendwell/sendwell/internal/pkg/instrument"
	"github.com/sendwell/sendwell/internal/pkg/mail"
	"github.com/sendwell/sendwell/internal/pkg/uid"
	"github.com/sendwell/sendwell/internal/pkg/validator"
)

type Dependency struct {
	Config     config.Config
	Instrument instrument.Instrumentation
	UUID       uid.StringID
	Clock      clock.Clocker
	Validator  validator.Validator
	Mail       mail.Mail
}

// New wires the campaign module and returns its command-line inbound. The
// retry store and run ledger files are created empty when missing so a first
// run starts from a clean, readable state.
func New(dep Dependency) (*inbound.CLI, error) {
	retryPath := dep.Config.GetString("campaign.retry_store_path")
	ledgerPath := dep.Config.GetString("campaign.ledger_path")

	for _, path := range []string{retryPath, ledgerPath} {
		if err := ensureFile(path); err != nil {
			return nil, err
		}
	}

	repoRoster := roster.New(dep.Validator, dep.Instrument)
	repoLedger := ledger.New(ledgerPath, dep.Instrument)
	repoMail := email.New(dep.Mail, dep.Instrument)

	uc := usecase.NewCampaign(usecase.Dependency{
		Roster:         repoRoster,
		Ledger:         repoLedger,
		RepoMail:       repoMail,
		Clock:          dep.Clock,
		UID:            dep.UUID,
		Validator:      dep.Validator,
		Instrument:     dep.Instrument,
		RetryStorePath: retryPath,
		SendDelay:      dep.Config.GetMillisecond("campaign.send_delay_ms"),
		RetryPasses:    dep.Config.GetInt("campaign.retry_passes"),
		PassBackoff:    dep.Config.GetSecond("campaign.pass_backoff_seconds"),
	})

	return inbound.NewCLI(uc, dep.Config, os.Stdin, os.Stdout), nil
}

func ensureFile(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return goerror.NewNotFound(err, "The file path is invalid: "+path)
	}

	return f.Close()
}
