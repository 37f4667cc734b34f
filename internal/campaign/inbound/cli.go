// Package inbound exposes the campaign module to the operator. The only
// transport is the command line: one flag picks a live send against a
// recipient source or a rehearsal against the configured test recipients.
package inbound

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	netmail "net/mail"
	"strings"

	"github.com/samber/lo"
	"github.com/sendwell/sendwell/internal/campaign/entity"
	"github.com/sendwell/sendwell/internal/campaign/usecase"
	"github.com/sendwell/sendwell/internal/pkg/config"
	"github.com/sendwell/sendwell/internal/pkg/goerror"
)

const usageText = `usage:
  sendwell -s <recipients.csv>  send the campaign to every recipient in the file
  sendwell -t                   send the campaign to the configured test recipients`

type campaignUsecase interface {
	Dispatch(ctx context.Context, in usecase.DispatchInput) (entity.PassResult, error)
	DispatchTest(ctx context.Context, in usecase.DispatchInput, recipients []entity.Recipient) (entity.PassResult, error)
	CountRecipients(ctx context.Context, path string) (int, error)
}

// CLI parses invocation arguments, asks for confirmation before a live send,
// and maps run outcomes to process exit codes.
type CLI struct {
	uc  campaignUsecase
	cfg config.Config
	in  io.Reader
	out io.Writer
}

func NewCLI(uc campaignUsecase, cfg config.Config, in io.Reader, out io.Writer) *CLI {
	return &CLI{uc: uc, cfg: cfg, in: in, out: out}
}

// Run executes one invocation. args excludes the program name. The returned
// value is the process exit code: 0 on success, otherwise the code carried by
// the structured error.
func (c *CLI) Run(ctx context.Context, args []string) int {
	result, err := c.run(ctx, args)
	if err != nil {
		return c.fail(ctx, err)
	}

	fmt.Fprintf(c.out, "Campaign finished: %d delivered, %d failed.\n", result.Succeeded, result.Failed)

	return 0
}

func (c *CLI) run(ctx context.Context, args []string) (entity.PassResult, error) {
	if len(args) == 0 {
		return entity.PassResult{}, goerror.NewInvalidFormat(usageText)
	}

	in := usecase.DispatchInput{
		TemplatePath: c.cfg.GetString("campaign.template_path"),
		Subject:      c.cfg.GetString("campaign.subject"),
		SenderName:   c.cfg.GetString("campaign.sender.name"),
		SenderEmail:  c.cfg.GetString("campaign.sender.email"),
	}
	if !strings.HasSuffix(in.TemplatePath, ".html") {
		return entity.PassResult{}, goerror.NewInvalidFormat(
			"The template file path must end in .html: " + in.TemplatePath)
	}

	switch args[0] {
	case "-s":
		if len(args) < 2 {
			return entity.PassResult{}, goerror.NewInvalidFormat(usageText)
		}
		if !strings.HasSuffix(args[1], ".csv") {
			return entity.PassResult{}, goerror.NewInvalidFormat(
				"The recipient source path must end in .csv: " + args[1])
		}
		in.SourcePath = args[1]

		if err := c.confirm(ctx, in.SourcePath); err != nil {
			return entity.PassResult{}, err
		}

		return c.uc.Dispatch(ctx, in)

	case "-t":
		recipients, err := c.testRecipients()
		if err != nil {
			return entity.PassResult{}, err
		}
		// The roster is bypassed, but the input still has to validate.
		in.SourcePath = "-"

		return c.uc.DispatchTest(ctx, in, recipients)

	default:
		return entity.PassResult{}, goerror.NewInvalidFormat(usageText)
	}
}

// confirm counts the well-formed recipients at path and asks the operator to
// type yes before anything is sent. Any other answer aborts the run.
func (c *CLI) confirm(ctx context.Context, path string) error {
	count, err := c.uc.CountRecipients(ctx, path)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "You are about to send the campaign to %d recipients. Type yes to continue: ", count)

	answer, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return goerror.NewServer(err)
	}

	if strings.TrimSpace(answer) != "yes" {
		return goerror.NewBusiness("Campaign aborted by operator", goerror.CodeAborted)
	}

	return nil
}

// testRecipients parses the configured rehearsal addresses. Entries are
// header-form values such as "Ann Example <ann@example.com>" or bare
// addresses.
func (c *CLI) testRecipients() ([]entity.Recipient, error) {
	entries := lo.Filter(c.cfg.GetArray("campaign.test_recipients"), func(entry string, _ int) bool {
		return strings.TrimSpace(entry) != ""
	})
	if len(entries) == 0 {
		return nil, goerror.NewInvalidFormat("No test recipients configured")
	}

	recipients := make([]entity.Recipient, 0, len(entries))
	for _, entry := range entries {
		addr, err := netmail.ParseAddress(entry)
		if err != nil {
			return nil, goerror.NewInvalidFormat("Invalid test recipient: " + entry)
		}
		recipients = append(recipients, entity.Recipient{Name: addr.Name, Email: addr.Address})
	}

	return recipients, nil
}

func (c *CLI) fail(ctx context.Context, err error) int {
	var appErr *goerror.Error
	if errors.As(err, &appErr) {
		slog.ErrorContext(ctx, "campaign run failed", "error", appErr.String())
		fmt.Fprintln(c.out, appErr.Msg())

		return appErr.ExitCode()
	}

	slog.ErrorContext(ctx, "campaign run failed", "error", err)
	fmt.Fprintln(c.out, err.Error())

	return 1
}
