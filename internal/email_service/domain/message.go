package domain

import (
	"context"
	"net/url"
	"strings"
)

// Handler is the user-supplied callback invoked for each inbound email.
// The returned string is sent back to the original sender as a threaded
// reply; an empty string suppresses the reply.
type Handler func(ctx context.Context, msg *InboundEmail) (string, error)

// replyPrefix is matched byte-for-byte; "RE:" or "re:" subjects still get
// the prefix prepended, mirroring the provider's own threading behavior.
const replyPrefix = "Re: "

// InboundEmail is the typed view of an inbound email webhook's multipart
// form data. Only the threading-relevant fields are lifted out; everything
// else rides along in Fields.
type InboundEmail struct {
	From       string
	Subject    string
	MessageID  string
	References []string

	// Fields holds every form field as received, including the typed ones.
	Fields url.Values
}

// ParseInbound builds an InboundEmail from already-received multipart form
// values. This layer does not terminate HTTP requests and performs no
// authenticity verification; both are the caller's responsibility.
func ParseInbound(form url.Values) *InboundEmail {
	return &InboundEmail{
		From:       formValue(form, "from", "From"),
		Subject:    formValue(form, "subject", "Subject"),
		MessageID:  formValue(form, "Message-Id", "message-id"),
		References: strings.Fields(formValue(form, "References", "references")),
		Fields:     form,
	}
}

// ThreadRootMessageID returns the id anchoring this message's thread: the
// first References entry when present, else the message's own id. Trusts
// the provider's References ordering.
func (m *InboundEmail) ThreadRootMessageID() string {
	if len(m.References) > 0 {
		return m.References[0]
	}
	return m.MessageID
}

// ReplySubject prefixes a subject with "Re: " exactly once. Already
// prefixed subjects pass through unchanged, so the transform is idempotent.
func ReplySubject(subject string) string {
	if strings.HasPrefix(subject, replyPrefix) {
		return subject
	}
	return replyPrefix + subject
}

func formValue(form url.Values, keys ...string) string {
	for _, key := range keys {
		if v := form.Get(key); v != "" {
			return v
		}
	}
	return ""
}
