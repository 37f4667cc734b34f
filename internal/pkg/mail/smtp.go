package mail

import (
	"context"
	"errors"
	"fmt"
	"net"
	netmail "net/mail"
	"net/smtp"
	"net/textproto"
	"strings"
)

var (
	// ErrSMTPHostPortRequired is returned when Host/Port are missing.
	ErrSMTPHostPortRequired = errors.New("smtp host and port are required")
	// ErrSMTPNoRecipient is returned when Message.To is empty.
	ErrSMTPNoRecipient = errors.New("no recipient provided")
	// ErrSMTPNoSender is returned when both Message.From and the configured default From are empty.
	ErrSMTPNoSender = errors.New("no sender provided")
)

// FailureReason classifies a transmission failure for observability. The
// dispatch loop treats every reason the same way (queue for retry); only the
// log line differs.
type FailureReason int

const (
	ReasonUnknown FailureReason = iota
	ReasonConnection
	ReasonRejected
	ReasonTimeout
)

func (r FailureReason) String() string {
	switch r {
	case ReasonConnection:
		return "connection"
	case ReasonRejected:
		return "rejected"
	case ReasonTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// SendError wraps a transport failure with its classified reason.
type SendError struct {
	Reason FailureReason
	Err    error
}

// Error implements the error interface.
func (e *SendError) Error() string {
	return fmt.Sprintf("send failed (%s): %v", e.Reason, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *SendError) Unwrap() error {
	return e.Err
}

// Classify maps a raw transport error onto a FailureReason.
func Classify(err error) FailureReason {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}

	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		return ReasonRejected
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ReasonConnection
	}

	return ReasonUnknown
}

// SMTP is a Mail implementation backed by net/smtp.
type SMTP struct {
	addr        string
	host        string
	defaultFrom string
	auth        smtp.Auth
}

// SMTPConfig configures the SMTP implementation.
type SMTPConfig struct {
	// Host is the SMTP server hostname.
	Host string
	// Port is the SMTP server port.
	Port int
	// Username is the SMTP authentication username.
	Username string
	// Password is the SMTP authentication password.
	Password string
	// From is the default sender when Message.From is empty.
	From string
}

// NewSMTP constructs an SMTP mail sender.
func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, ErrSMTPHostPortRequired
	}

	var auth smtp.Auth
	if cfg.Username != "" && cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	return &SMTP{
		addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		host:        cfg.Host,
		defaultFrom: cfg.From,
		auth:        auth,
	}, nil
}

// Send delivers a message over SMTP. Failures are returned as *SendError so
// the caller can log the classified reason.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if msg.To == "" {
		return ErrSMTPNoRecipient
	}

	from := msg.From
	if from == "" {
		from = s.defaultFrom
	}
	if from == "" {
		return ErrSMTPNoSender
	}

	raw := BuildWire(from, msg.To, msg.Subject, msg.HTMLBody)

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := smtp.SendMail(s.addr, s.auth, envelopeAddr(from), []string{envelopeAddr(msg.To)}, []byte(raw)); err != nil {
		return &SendError{Reason: Classify(err), Err: err}
	}

	return nil
}

// Close implements io.Closer for interface compatibility.
func (s *SMTP) Close() error {
	return nil
}

// BuildWire serializes the header block and body into the RFC-2822-style text
// submitted to the server. Header values are sanitized against embedded line
// breaks before joining.
func BuildWire(from, to, subject, htmlBody string) string {
	headers := []string{
		fmt.Sprintf("From: %s", SanitizeHeader(from)),
		fmt.Sprintf("To: %s", SanitizeHeader(to)),
		fmt.Sprintf("Subject: %s", SanitizeHeader(subject)),
		"MIME-Version: 1.0",
		"Content-Type: text/html",
	}

	return strings.Join(headers, "\r\n") + "\r\n\r\n" + htmlBody
}

// envelopeAddr extracts the bare address from a header-form value for the
// SMTP envelope. A value that does not parse is used as given.
func envelopeAddr(headerForm string) string {
	addr, err := netmail.ParseAddress(headerForm)
	if err != nil {
		return headerForm
	}
	return addr.Address
}
