package roster_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sendwell/sendwell/internal/campaign/entity"
	"github.com/sendwell/sendwell/internal/campaign/outbound/roster"
	"github.com/sendwell/sendwell/internal/pkg/goerror"
	"github.com/sendwell/sendwell/internal/pkg/instrument"
	"github.com/sendwell/sendwell/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *roster.Store {
	t.Helper()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	return roster.New(v, instrument.NewNoop())
}

func writeSource(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "recipients.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestParseKeepsSourceOrderAndDropsMalformed(t *testing.T) {
	source := writeSource(t,
		"Ann Example,ann@example.com\n"+
			"Broken Row,not-an-address\n"+
			"Bob,bob@example.com\n"+
			"No Address,\n"+
			"\"Example, Carol\",carol@example.com\n")

	recipients, err := newStore(t).Parse(context.Background(), source, false)
	require.NoError(t, err)

	assert.Equal(t, []entity.Recipient{
		{Name: "Ann Example", Email: "ann@example.com"},
		{Name: "Bob", Email: "bob@example.com"},
		{Name: "Example, Carol", Email: "carol@example.com"},
	}, recipients)
}

func TestParseTrimsWhitespace(t *testing.T) {
	source := writeSource(t, " Ann Example , ann@example.com \n")

	recipients, err := newStore(t).Parse(context.Background(), source, false)
	require.NoError(t, err)

	require.Len(t, recipients, 1)
	assert.Equal(t, entity.Recipient{Name: "Ann Example", Email: "ann@example.com"}, recipients[0])
}

func TestParseEmptySource(t *testing.T) {
	source := writeSource(t, "")

	recipients, err := newStore(t).Parse(context.Background(), source, false)
	require.NoError(t, err)
	assert.Empty(t, recipients)
}

func TestParseMissingPath(t *testing.T) {
	_, err := newStore(t).Parse(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), false)

	assert.ErrorIs(t, err, goerror.ErrNotFound)
}

func TestParseConsumeTruncates(t *testing.T) {
	source := writeSource(t, "Ann,ann@example.com\nBob,bob@example.com\n")
	store := newStore(t)

	recipients, err := store.Parse(context.Background(), source, true)
	require.NoError(t, err)
	require.Len(t, recipients, 2)

	// The store is drained: a second consuming read yields nothing.
	recipients, err = store.Parse(context.Background(), source, true)
	require.NoError(t, err)
	assert.Empty(t, recipients)
}

func TestAppendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "retry.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, path, entity.Recipient{Name: "Ann", Email: "ann@example.com"}))
	require.NoError(t, store.Append(ctx, path, entity.Recipient{Name: "Example, Bob", Email: "bob@example.com"}))

	recipients, err := store.Parse(ctx, path, false)
	require.NoError(t, err)
	assert.Equal(t, []entity.Recipient{
		{Name: "Ann", Email: "ann@example.com"},
		{Name: "Example, Bob", Email: "bob@example.com"},
	}, recipients)
}

func TestCount(t *testing.T) {
	source := writeSource(t, "Ann,ann@example.com\nBad,nope\nBob,bob@example.com\n")

	count, err := newStore(t).Count(context.Background(), source)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
