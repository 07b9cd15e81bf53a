package domain

import "context"

// Incoming is what a user-supplied handler receives for each verified
// inbound SMS. It is built per webhook call and discarded after the
// handler returns; nothing is persisted.
type Incoming struct {
	Message   string // text body of the SMS
	From      string // sender number, E.164
	MessageID string // provider-assigned message SID
}

// Handler is the user-supplied callback invoked once an inbound webhook
// has passed both the signature and schema checks. The returned string
// becomes the reply text delivered out-of-band by the provider; an empty
// string produces an empty reply message.
type Handler func(ctx context.Context, msg Incoming) (string, error)
