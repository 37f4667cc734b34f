// Package roster reads and writes the delimited recipient files a campaign
// runs against: the primary recipient source and the retry store.
//
// Both share the same two-field shape (display name, email address), no
// header row. The retry store is consumed exactly once per pass: reading it
// as a retry source truncates it, so a pass either re-queues fresh failures
// or leaves the file empty.
package roster

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/samber/lo"
	"github.com/sendwell/sendwell/internal/campaign/entity"
	"github.com/sendwell/sendwell/internal/pkg/goerror"
	"github.com/sendwell/sendwell/internal/pkg/instrument"
	"github.com/sendwell/sendwell/internal/pkg/validator"
	"go.opentelemetry.io/otel/codes"
)

// row is the on-disk record shape. Fields map positionally because the
// sources carry no header row.
type row struct {
	Name  string `csv:"name"`
	Email string `csv:"email" validate:"required,mailaddr"`
}

// Store parses recipient sources and maintains the retry store.
type Store struct {
	validator validator.Validator
	ins       instrument.Instrumentation
}

// New constructs a Store.
func New(v validator.Validator, ins instrument.Instrumentation) *Store {
	return &Store{validator: v, ins: ins}
}

// Parse reads every record from the file at path, in source order, dropping
// records whose email address is missing or malformed. A dropped record is
// logged with its line index and never fails the parse. When consume is true
// the file is truncated after reading, which is how a retry pass drains the
// retry store.
//
// An unreadable path is fatal and reported as a not-found error.
func (s *Store) Parse(ctx context.Context, path string, consume bool) ([]entity.Recipient, error) {
	ctx, span := s.ins.Tracer("campaign.outbound.roster").Start(ctx, "Parse")
	defer span.End()

	f, err := os.Open(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, goerror.NewNotFound(err, "The recipient source path is invalid: "+path)
	}

	rows, err := readRows(f)
	closeErr := f.Close()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, goerror.NewServer(err)
	}
	if closeErr != nil {
		return nil, goerror.NewServer(closeErr)
	}

	valid := make([]row, 0, len(rows))
	for i, rec := range rows {
		rec.Name = strings.TrimSpace(rec.Name)
		rec.Email = strings.TrimSpace(rec.Email)

		if err := s.validator.Validate(rec); err != nil {
			slog.ErrorContext(ctx, "recipient email missing or invalid, record dropped",
				"line", i, "email", rec.Email, "error", err)
			continue
		}

		valid = append(valid, rec)
	}

	if consume {
		if err := os.Truncate(path, 0); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, goerror.NewNotFound(err, "The retry store path is invalid: "+path)
		}
	}

	return lo.Map(valid, func(r row, _ int) entity.Recipient {
		return entity.Recipient{Name: r.Name, Email: r.Email}
	}), nil
}

// Count returns the number of well-formed recipients at path without
// consuming anything.
func (s *Store) Count(ctx context.Context, path string) (int, error) {
	recipients, err := s.Parse(ctx, path, false)
	if err != nil {
		return 0, err
	}
	return len(recipients), nil
}

// Append durably queues a recipient in the retry store at path. A failed
// send that cannot be recorded must not be dropped silently, so any write
// problem is returned as a fatal not-found error.
func (s *Store) Append(ctx context.Context, path string, recipient entity.Recipient) error {
	_, span := s.ins.Tracer("campaign.outbound.roster").Start(ctx, "Append")
	defer span.End()

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return goerror.NewNotFound(err, "The retry store path is invalid: "+path)
	}

	records := []row{{Name: recipient.Name, Email: recipient.Email}}
	err = gocsv.MarshalWithoutHeaders(&records, f)
	closeErr := f.Close()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return goerror.NewNotFound(err, "The retry store path is invalid: "+path)
	}
	if closeErr != nil {
		return goerror.NewNotFound(closeErr, "The retry store path is invalid: "+path)
	}

	return nil
}

// readRows decodes headerless two-field records. Records with fewer fields
// than the row shape simply leave the email empty and fall to validation.
func readRows(r io.Reader) ([]row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var rows []row
	if err := gocsv.UnmarshalCSVWithoutHeaders(reader, &rows); err != nil {
		// A drained retry store is a legitimate empty source.
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil
		}
		return nil, err
	}
	return rows, nil
}
