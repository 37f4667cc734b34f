package ledger_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sendwell/sendwell/internal/campaign/entity"
	"github.com/sendwell/sendwell/internal/campaign/outbound/ledger"
	"github.com/sendwell/sendwell/internal/pkg/goerror"
	"github.com/sendwell/sendwell/internal/pkg/instrument"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedger(t *testing.T) (*ledger.Ledger, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ledger.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	return ledger.New(path, instrument.NewNoop()), path
}

func TestRecordAppendsNewLabels(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()

	require.NoError(t, l.Record(ctx, entity.LedgerTotalRecipients, "2"))
	require.NoError(t, l.Record(ctx, entity.LedgerStartTime, "2026-01-02 15:04:05"))

	entries, err := l.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ledger.Entry{
		{Label: entity.LedgerTotalRecipients, Value: "2"},
		{Label: entity.LedgerStartTime, Value: "2026-01-02 15:04:05"},
	}, entries)
}

func TestRecordOverwritesExistingLabelInPlace(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()

	require.NoError(t, l.Record(ctx, entity.LedgerLastRecipient, "ann@example.com"))
	require.NoError(t, l.Record(ctx, entity.LedgerFailedCount, "1"))
	require.NoError(t, l.Record(ctx, entity.LedgerLastRecipient, "bob@example.com"))

	entries, err := l.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ledger.Entry{
		{Label: entity.LedgerLastRecipient, Value: "bob@example.com"},
		{Label: entity.LedgerFailedCount, Value: "1"},
	}, entries)
}

func TestRecordDistinguishesFullLabels(t *testing.T) {
	// START TIME and END TIME share a suffix; TOTAL RECIPIENTS and FAILED
	// RECIPIENTS share one too. Each must keep its own line.
	l, _ := newLedger(t)
	ctx := context.Background()

	require.NoError(t, l.Record(ctx, entity.LedgerStartTime, "start"))
	require.NoError(t, l.Record(ctx, entity.LedgerEndTime, "end"))
	require.NoError(t, l.Record(ctx, entity.LedgerTotalRecipients, "5"))
	require.NoError(t, l.Record(ctx, entity.LedgerFailedCount, "2"))

	entries, err := l.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, "start", entries[0].Value)
	assert.Equal(t, "end", entries[1].Value)
}

func TestRecordPersistsFileFormat(t *testing.T) {
	l, path := newLedger(t)
	ctx := context.Background()

	require.NoError(t, l.Record(ctx, entity.LedgerRunID, "run-1"))
	require.NoError(t, l.Record(ctx, entity.LedgerSourceUsed, "recipients.csv"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "RUN ID: run-1\nCSV USED: recipients.csv\n", string(raw))
}

func TestRecordMissingFile(t *testing.T) {
	l := ledger.New(filepath.Join(t.TempDir(), "nope", "ledger.txt"), instrument.NewNoop())

	err := l.Record(context.Background(), entity.LedgerRunID, "run-1")

	assert.ErrorIs(t, err, goerror.ErrNotFound)
}
