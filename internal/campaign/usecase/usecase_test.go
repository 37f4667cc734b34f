package usecase_test

import (
	"context"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sendwell/sendwell/internal/campaign/entity"
	"github.com/sendwell/sendwell/internal/campaign/usecase"
	"github.com/sendwell/sendwell/internal/pkg/goerror"
	"github.com/sendwell/sendwell/internal/pkg/instrument"
	"github.com/sendwell/sendwell/internal/pkg/mail"
	"github.com/sendwell/sendwell/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const retryStorePath = "retry.csv"

type fakeClock struct{ now time.Time }

func (c fakeClock) Now() time.Time { return c.now }

type fakeUID struct{ id string }

func (u fakeUID) Generate() string { return u.id }

// fakeRoster keeps recipient sources in memory. The retry store behaves like
// the real one: a consuming read drains it, appends re-fill it.
type fakeRoster struct {
	sources    map[string][]entity.Recipient
	retry      []entity.Recipient
	appended   []entity.Recipient
	parseCalls []string
}

func (r *fakeRoster) Parse(_ context.Context, path string, consume bool) ([]entity.Recipient, error) {
	r.parseCalls = append(r.parseCalls, path)

	if path == retryStorePath {
		out := r.retry
		if consume {
			r.retry = nil
		}
		return out, nil
	}

	recipients, ok := r.sources[path]
	if !ok {
		return nil, goerror.NewNotFound(os.ErrNotExist, "The recipient source path is invalid: "+path)
	}
	return recipients, nil
}

func (r *fakeRoster) Count(ctx context.Context, path string) (int, error) {
	recipients, err := r.Parse(ctx, path, false)
	return len(recipients), err
}

func (r *fakeRoster) Append(_ context.Context, _ string, recipient entity.Recipient) error {
	r.appended = append(r.appended, recipient)
	r.retry = append(r.retry, recipient)
	return nil
}

type fakeLedger struct {
	values map[entity.LedgerLabel]string
	order  []entity.LedgerLabel
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{values: make(map[entity.LedgerLabel]string)}
}

func (l *fakeLedger) Record(_ context.Context, label entity.LedgerLabel, value string) error {
	if _, ok := l.values[label]; !ok {
		l.order = append(l.order, label)
	}
	l.values[label] = value
	return nil
}

// fakeMail fails a recipient as many times as failures says, then delivers.
type fakeMail struct {
	failures map[string]int
	attempts []string
	sent     []mail.Message
}

func (m *fakeMail) Send(_ context.Context, msg mail.Message) error {
	m.attempts = append(m.attempts, msg.To)

	if m.failures[msg.To] > 0 {
		m.failures[msg.To]--
		return &mail.SendError{
			Reason: mail.ReasonRejected,
			Err:    &textproto.Error{Code: 550, Msg: "mailbox unavailable"},
		}
	}

	m.sent = append(m.sent, msg)
	return nil
}

type fixture struct {
	uc     *usecase.Usecase
	roster *fakeRoster
	ledger *fakeLedger
	mail   *fakeMail
	now    time.Time
}

func newFixture(t *testing.T, recipients []entity.Recipient, retryPasses int) (*fixture, usecase.DispatchInput) {
	t.Helper()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	tplPath := filepath.Join(t.TempDir(), "campaign.html")
	require.NoError(t, os.WriteFile(tplPath, []byte("<p>Hi <!--name-->, this is for <!--email-->.</p>"), 0o644))

	f := &fixture{
		roster: &fakeRoster{sources: map[string][]entity.Recipient{"recipients.csv": recipients}},
		ledger: newFakeLedger(),
		mail:   &fakeMail{failures: map[string]int{}},
		now:    time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}

	f.uc = usecase.NewCampaign(usecase.Dependency{
		Roster:         f.roster,
		Ledger:         f.ledger,
		RepoMail:       f.mail,
		Clock:          fakeClock{now: f.now},
		UID:            fakeUID{id: "run-1"},
		Validator:      v,
		Instrument:     instrument.NewNoop(),
		RetryStorePath: retryStorePath,
		SendDelay:      0,
		RetryPasses:    retryPasses,
		PassBackoff:    time.Millisecond,
	})

	in := usecase.DispatchInput{
		TemplatePath: tplPath,
		SourcePath:   "recipients.csv",
		Subject:      "Hello",
		SenderName:   "The Team",
		SenderEmail:  "team@example.com",
	}

	return f, in
}

func TestDispatchAllDelivered(t *testing.T) {
	f, in := newFixture(t, []entity.Recipient{
		{Name: "Ann Example", Email: "ann@example.com"},
		{Email: "bob@example.com"},
	}, 2)

	result, err := f.uc.Dispatch(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, entity.PassResult{Succeeded: 2, Failed: 0}, result)
	require.Len(t, f.mail.sent, 2)

	first := f.mail.sent[0]
	assert.Equal(t, "The Team <team@example.com>", first.From)
	assert.Equal(t, "Ann Example <ann@example.com>", first.To)
	assert.Equal(t, "Hello", first.Subject)
	assert.Equal(t, "<p>Hi Ann Example, this is for ann@example.com.</p>", first.HTMLBody)
	assert.Equal(t, "bob@example.com", f.mail.sent[1].To)

	ts := f.now.Format(time.DateTime)
	assert.Equal(t, "run-1", f.ledger.values[entity.LedgerRunID])
	assert.Equal(t, "2", f.ledger.values[entity.LedgerTotalRecipients])
	assert.Equal(t, ts, f.ledger.values[entity.LedgerStartTime])
	assert.Equal(t, "bob@example.com", f.ledger.values[entity.LedgerLastRecipient])
	assert.Equal(t, "recipients.csv", f.ledger.values[entity.LedgerSourceUsed])
	assert.Equal(t, ts, f.ledger.values[entity.LedgerEndTime])
	assert.NotContains(t, f.ledger.values, entity.LedgerFailedCount)

	assert.Empty(t, f.roster.retry)
}

func TestDispatchFailureNeverAbortsThePass(t *testing.T) {
	f, in := newFixture(t, []entity.Recipient{
		{Name: "Ann", Email: "ann@example.com"},
		{Name: "Bad", Email: "bad@example.com"},
		{Name: "Bob", Email: "bob@example.com"},
	}, 0)
	f.mail.failures["Bad <bad@example.com>"] = 1

	result, err := f.uc.Dispatch(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, entity.PassResult{Succeeded: 2, Failed: 1}, result)
	assert.Equal(t, []string{
		"Ann <ann@example.com>",
		"Bad <bad@example.com>",
		"Bob <bob@example.com>",
	}, f.mail.attempts)

	assert.Equal(t, []entity.Recipient{{Name: "Bad", Email: "bad@example.com"}}, f.roster.appended)
	assert.Equal(t, "1", f.ledger.values[entity.LedgerFailedCount])
	assert.Equal(t, "Bob <bob@example.com>", f.ledger.values[entity.LedgerLastRecipient])
}

func TestDispatchRetryPassRecovers(t *testing.T) {
	f, in := newFixture(t, []entity.Recipient{
		{Name: "Ann", Email: "ann@example.com"},
		{Name: "Bad", Email: "bad@example.com"},
		{Name: "Bob", Email: "bob@example.com"},
	}, 2)
	f.mail.failures["Bad <bad@example.com>"] = 1

	result, err := f.uc.Dispatch(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, entity.PassResult{Succeeded: 3, Failed: 1}, result)

	// The retry pass delivered the queued recipient, so the store is empty
	// and the recovered address is the last one written.
	assert.Empty(t, f.roster.retry)
	assert.Equal(t, "Bad <bad@example.com>", f.ledger.values[entity.LedgerLastRecipient])
	assert.Equal(t, "1", f.ledger.values[entity.LedgerFailedCount])
}

func TestDispatchRetryBudgetExhausted(t *testing.T) {
	f, in := newFixture(t, []entity.Recipient{
		{Name: "Bad", Email: "bad@example.com"},
	}, 2)
	f.mail.failures["Bad <bad@example.com>"] = 3

	result, err := f.uc.Dispatch(context.Background(), in)
	require.NoError(t, err)

	// One primary attempt plus two retry passes; the recipient stays queued.
	assert.Equal(t, entity.PassResult{Succeeded: 0, Failed: 3}, result)
	assert.Len(t, f.mail.attempts, 3)
	assert.Equal(t, []entity.Recipient{{Name: "Bad", Email: "bad@example.com"}}, f.roster.retry)
	assert.Equal(t, "3", f.ledger.values[entity.LedgerFailedCount])
}

func TestDispatchTemplateMissing(t *testing.T) {
	f, in := newFixture(t, nil, 0)
	in.TemplatePath = filepath.Join(t.TempDir(), "missing.html")

	_, err := f.uc.Dispatch(context.Background(), in)

	assert.ErrorIs(t, err, goerror.ErrNotFound)
	assert.Empty(t, f.mail.attempts)
	assert.Empty(t, f.ledger.order)
}

func TestDispatchEmptyTemplate(t *testing.T) {
	f, in := newFixture(t, nil, 0)
	empty := filepath.Join(t.TempDir(), "empty.html")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	in.TemplatePath = empty

	_, err := f.uc.Dispatch(context.Background(), in)

	var appErr *goerror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, goerror.CodeEmptyTemplate, appErr.Code())
	assert.Empty(t, f.mail.attempts)
}

func TestDispatchInvalidInput(t *testing.T) {
	f, in := newFixture(t, nil, 0)
	in.Subject = ""

	_, err := f.uc.Dispatch(context.Background(), in)

	var appErr *goerror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, goerror.CodeInvalidInput, appErr.Code())
	assert.Empty(t, f.mail.attempts)
}

func TestDispatchInvalidSenderEmail(t *testing.T) {
	f, in := newFixture(t, nil, 0)
	in.SenderEmail = "not-an-address"

	_, err := f.uc.Dispatch(context.Background(), in)

	var appErr *goerror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, goerror.CodeInvalidInput, appErr.Code())
}

func TestDispatchTestUsesGivenRecipients(t *testing.T) {
	f, in := newFixture(t, nil, 0)
	in.SourcePath = "-"

	result, err := f.uc.DispatchTest(context.Background(), in, []entity.Recipient{
		{Name: "Tester", Email: "tester@example.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.PassResult{Succeeded: 1, Failed: 0}, result)
	assert.Equal(t, []string{"Tester <tester@example.com>"}, f.mail.attempts)

	// The rehearsal never touches the recipient source.
	assert.NotContains(t, f.roster.parseCalls, "-")
	assert.Equal(t, "run-1", f.ledger.values[entity.LedgerRunID])
	assert.NotContains(t, f.ledger.values, entity.LedgerSourceUsed)
}

func TestDispatchCancelledContext(t *testing.T) {
	f, in := newFixture(t, []entity.Recipient{
		{Name: "Ann", Email: "ann@example.com"},
		{Name: "Bob", Email: "bob@example.com"},
	}, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The pause between sends observes cancellation, so the run stops after
	// the first recipient instead of finishing the list.
	f.uc = withDelay(t, f, in, 10*time.Millisecond)
	_, err := f.uc.Dispatch(ctx, in)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, f.mail.attempts, 1)
}

func withDelay(t *testing.T, f *fixture, in usecase.DispatchInput, delay time.Duration) *usecase.Usecase {
	t.Helper()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	return usecase.NewCampaign(usecase.Dependency{
		Roster:         f.roster,
		Ledger:         f.ledger,
		RepoMail:       f.mail,
		Clock:          fakeClock{now: f.now},
		UID:            fakeUID{id: "run-1"},
		Validator:      v,
		Instrument:     instrument.NewNoop(),
		RetryStorePath: retryStorePath,
		SendDelay:      delay,
		RetryPasses:    0,
		PassBackoff:    time.Millisecond,
	})
}
