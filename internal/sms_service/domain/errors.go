package domain

import "errors"

var (
	// ErrMissingSignature indicates the webhook request carried no signature header.
	ErrMissingSignature = errors.New("signature header is required")
	// ErrInvalidSignature indicates the signature did not verify against the shared secret.
	ErrInvalidSignature = errors.New("invalid signature")
)
