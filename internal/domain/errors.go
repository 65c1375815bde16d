package domain

import "errors"

// Shared sentinel errors. A soft-deleted message is reported the same as a
// missing one so callers cannot probe third-party conversations.
var (
	ErrMessageNotFound   = errors.New("message not found")
	ErrNotSender         = errors.New("only the message sender can perform this action")
	ErrRecipientNotFound = errors.New("recipient not found")
)
