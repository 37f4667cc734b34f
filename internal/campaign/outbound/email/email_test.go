package email_test

import (
	"context"
	"net/textproto"
	"testing"

	"github.com/sendwell/sendwell/internal/campaign/outbound/email"
	"github.com/sendwell/sendwell/internal/pkg/instrument"
	"github.com/sendwell/sendwell/internal/pkg/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	sent []mail.Message
	err  error
}

func (s *stubClient) Send(_ context.Context, msg mail.Message) error {
	s.sent = append(s.sent, msg)
	return s.err
}

func (s *stubClient) Close() error { return nil }

func TestSendPassesThrough(t *testing.T) {
	client := &stubClient{}
	m := email.New(client, instrument.NewNoop())

	msg := mail.Message{From: "a@example.com", To: "b@example.com", Subject: "Hi", HTMLBody: "<p>x</p>"}
	require.NoError(t, m.Send(context.Background(), msg))

	require.Len(t, client.sent, 1)
	assert.Equal(t, msg, client.sent[0])
}

func TestSendPropagatesFailures(t *testing.T) {
	sendErr := &mail.SendError{
		Reason: mail.ReasonRejected,
		Err:    &textproto.Error{Code: 550, Msg: "mailbox unavailable"},
	}
	m := email.New(&stubClient{err: sendErr}, instrument.NewNoop())

	err := m.Send(context.Background(), mail.Message{To: "b@example.com"})

	assert.ErrorIs(t, err, sendErr)
}
