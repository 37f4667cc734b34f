package entity

import "fmt"

// Recipient is a single deliverable address parsed from a recipient source.
//
// Identity is the email address; Name may be empty. A Recipient is immutable
// once yielded by the roster.
type Recipient struct {
	Name  string
	Email string
}

// Address formats the recipient for SMTP headers: "Name <email>" when a
// display name is present, otherwise the bare address.
func (r Recipient) Address() string {
	if r.Name == "" {
		return r.Email
	}
	return fmt.Sprintf("%s <%s>", r.Name, r.Email)
}

// Fields returns the placeholder substitution map for this recipient.
// Keys match the token names usable inside a template document.
func (r Recipient) Fields() map[string]string {
	return map[string]string{
		"name":  r.Name,
		"email": r.Email,
	}
}

// Sender is the identity outbound mail is sent as.
type Sender struct {
	Name  string
	Email string
}

// Address formats the sender the same way Recipient.Address does.
func (s Sender) Address() string {
	if s.Name == "" {
		return s.Email
	}
	return fmt.Sprintf("%s <%s>", s.Name, s.Email)
}
