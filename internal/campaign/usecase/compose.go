package usecase

import (
	"github.com/sendwell/sendwell/internal/campaign/entity"
	"github.com/sendwell/sendwell/internal/pkg/mail"
	"github.com/sendwell/sendwell/internal/pkg/placeholder"
)

// composeMessage produces the transmittable message for one recipient: the
// template document with the recipient's fields substituted, addressed from
// the campaign sender. Tokens with no matching field pass through verbatim.
func composeMessage(camp entity.Campaign, recipient entity.Recipient, template string) mail.Message {
	return mail.Message{
		From:     camp.Sender.Address(),
		To:       recipient.Address(),
		Subject:  camp.Subject,
		HTMLBody: placeholder.Render(template, recipient.Fields()),
	}
}
