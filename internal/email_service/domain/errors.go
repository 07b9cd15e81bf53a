package domain

import "errors"

var (
	// ErrSenderNotConfigured indicates the reply-time sender address is missing.
	ErrSenderNotConfigured = errors.New("sender address not configured")
	// ErrReplyToNotConfigured indicates the reply-time reply-to address is missing.
	ErrReplyToNotConfigured = errors.New("reply-to address not configured")
)
