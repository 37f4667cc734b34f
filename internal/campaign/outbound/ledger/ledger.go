// Package ledger maintains the run-level accounting file.
//
// The file is newline-separated "LABEL: value" lines. Recording an entry
// whose label already exists overwrites that line in place; otherwise the
// entry is appended. The whole file is rewritten on every call, which is safe
// under the dispatcher's single-process, single-threaded execution model. An
// interrupted run leaves the ledger readable, with LAST RECIPIENT pointing at
// the most recently delivered address.
package ledger

import (
	"context"
	"os"
	"strings"

	"github.com/sendwell/sendwell/internal/campaign/entity"
	"github.com/sendwell/sendwell/internal/pkg/goerror"
	"github.com/sendwell/sendwell/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
)

const separator = ": "

// Entry is one labelled line of the ledger file.
type Entry struct {
	Label entity.LedgerLabel
	Value string
}

// Ledger records run statistics at a fixed file path.
type Ledger struct {
	path string
	ins  instrument.Instrumentation
}

// New constructs a Ledger backed by the file at path. The file must already
// exist; the application creates it empty on startup.
func New(path string, ins instrument.Instrumentation) *Ledger {
	return &Ledger{path: path, ins: ins}
}

// Record writes or overwrites the entry for label. Entries are matched by
// their full label, so distinct labels can never collide. Any file access
// problem is fatal: losing run accounting defeats the purpose of the ledger.
func (l *Ledger) Record(ctx context.Context, label entity.LedgerLabel, value string) error {
	_, span := l.ins.Tracer("campaign.outbound.ledger").Start(ctx, "Record")
	defer span.End()

	entries, err := l.read()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	replaced := false
	for i, entry := range entries {
		if entry.Label == label {
			entries[i].Value = value
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, Entry{Label: label, Value: value})
	}

	if err := l.write(entries); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

// Entries returns the current ledger contents in file order.
func (l *Ledger) Entries(ctx context.Context) ([]Entry, error) {
	_, span := l.ins.Tracer("campaign.outbound.ledger").Start(ctx, "Entries")
	defer span.End()

	return l.read()
}

func (l *Ledger) read() ([]Entry, error) {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		return nil, goerror.NewNotFound(err, "The ledger file path is invalid: "+l.path)
	}

	var entries []Entry
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimRight(line, "\n")
		if line == "" {
			continue
		}

		label, value, found := strings.Cut(line, separator)
		if !found {
			// Tolerate a hand-edited line without a value.
			label, value = line, ""
		}
		entries = append(entries, Entry{Label: entity.LedgerLabel(label), Value: value})
	}

	return entries, nil
}

func (l *Ledger) write(entries []Entry) error {
	var b strings.Builder
	for _, entry := range entries {
		b.WriteString(entry.Label.String())
		b.WriteString(separator)
		b.WriteString(entry.Value)
		b.WriteString("\n")
	}

	if err := os.WriteFile(l.path, []byte(b.String()), 0o644); err != nil {
		return goerror.NewNotFound(err, "The ledger file path is invalid: "+l.path)
	}

	return nil
}
