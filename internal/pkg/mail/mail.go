package mail

import (
	"context"
	"io"
	"strings"
)

// Message represents one outbound campaign email.
//
// From and To are header-form addresses ("Name <addr>" or a bare address);
// the body is always HTML, matching the fixed Content-Type the dispatcher
// sends with.
type Message struct {
	// From is the sender; falls back to the configured default when empty.
	From string
	// To is the single recipient of this message.
	To string
	// Subject is the email subject line.
	Subject string
	// HTMLBody is the rendered template body.
	HTMLBody string
}

// Mail abstracts the SMTP transport so the dispatch loop can be tested
// without a mail server.
type Mail interface {
	io.Closer
	// Send transmits the given message.
	Send(ctx context.Context, msg Message) error
}

// SanitizeHeader strips CR and LF from a header value. Display names and
// subjects come from operator-supplied files, and an embedded line break
// would otherwise split the header block (header injection).
func SanitizeHeader(value string) string {
	if !strings.ContainsAny(value, "\r\n") {
		return value
	}

	value = strings.ReplaceAll(value, "\r", "")
	return strings.ReplaceAll(value, "\n", "")
}
