package channel

import "errors"

var (
	ErrChannelClosed   = errors.New("channel: closed")
	ErrMessageTooLarge = errors.New("channel: header frame exceeds maximum frame length")
	ErrPayloadTooLarge = errors.New("channel: payload frame exceeds maximum frame length")
)
