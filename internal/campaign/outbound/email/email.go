// Package email wraps the SMTP transport with tracing and delivery counters.
package email

import (
	"context"
	"errors"

	"github.com/sendwell/sendwell/internal/pkg/instrument"
	"github.com/sendwell/sendwell/internal/pkg/mail"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

type Mail struct {
	client mail.Mail
	ins    instrument.Instrumentation
	sent   metric.Int64Counter
	failed metric.Int64Counter
}

func New(client mail.Mail, ins instrument.Instrumentation) *Mail {
	meter := ins.Meter("campaign.outbound.email")

	// Counter creation only fails on malformed names; fall back to nil and
	// guard at increment time.
	sent, _ := meter.Int64Counter("campaign_messages_sent_total")
	failed, _ := meter.Int64Counter("campaign_messages_failed_total")

	return &Mail{client: client, ins: ins, sent: sent, failed: failed}
}

func (m *Mail) Send(ctx context.Context, msg mail.Message) error {
	ctx, span := m.ins.Tracer("campaign.outbound.email").Start(ctx, "Send")
	defer span.End()

	if err := m.client.Send(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if m.failed != nil {
			m.failed.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", failureReason(err))))
		}
		return err
	}

	if m.sent != nil {
		m.sent.Add(ctx, 1)
	}

	return nil
}

func failureReason(err error) string {
	var sendErr *mail.SendError
	if errors.As(err, &sendErr) {
		return sendErr.Reason.String()
	}
	return mail.ReasonUnknown.String()
}
