// Package netstring implements the length-prefixed frame format carried on
// the wire: an ASCII decimal length, ':', the body bytes, ','.
//
// Decode works against a growing buffer fed in arbitrary chunks and
// distinguishes "not enough bytes yet" (wait) from "syntactically malformed"
// (discard) so the caller can choose its recovery.
package netstring

import (
	"errors"
	"strconv"
)

const (
	// MaxBodyLen bounds the body of a single frame.
	MaxBodyLen = 4_194_304
	// MaxFrameLen is MaxBodyLen plus the worst-case framing overhead:
	// seven length digits and the two delimiter bytes.
	MaxFrameLen = MaxBodyLen + 9

	// maxLengthDigits is the longest length prefix a valid frame can carry.
	maxLengthDigits = 7
)

var (
	ErrBadLengthPrefix   = errors.New("netstring: malformed length prefix")
	ErrMissingTerminator = errors.New("netstring: missing frame terminator")
	ErrFrameTooLarge     = errors.New("netstring: declared length exceeds maximum body length")
)

// Encode wraps body into a single frame. No length bound is enforced here;
// callers that care must check len of the result against MaxFrameLen.
func Encode(body []byte) []byte {
	out := make([]byte, 0, len(body)+maxLengthDigits+2)
	out = strconv.AppendInt(out, int64(len(body)), 10)
	out = append(out, ':')
	out = append(out, body...)
	out = append(out, ',')
	return out
}

// Decode extracts the first complete frame from buf.
//
// It returns (nil, 0, nil) when buf does not yet hold a full frame, a
// non-nil error when buf is syntactically malformed, and otherwise the
// frame body plus the total number of bytes the frame occupied. The body
// aliases buf; callers must copy it if they retain it past the next
// mutation of buf. Decode never reads past len(buf).
func Decode(buf []byte) (body []byte, consumed int, err error) {
	if len(buf) == 0 {
		return nil, 0, nil
	}

	length := 0
	i := 0
	for ; i < len(buf); i++ {
		c := buf[i]
		if c == ':' {
			break
		}
		if c < '0' || c > '9' {
			return nil, 0, ErrBadLengthPrefix
		}
		if i >= maxLengthDigits {
			return nil, 0, ErrFrameTooLarge
		}
		length = length*10 + int(c-'0')
		// An oversized declared length is malformed as soon as the digits
		// say so; the body never needs to arrive.
		if length > MaxBodyLen {
			return nil, 0, ErrFrameTooLarge
		}
	}
	if i == len(buf) {
		// Separator not seen yet; the prefix can still become valid.
		return nil, 0, nil
	}
	if i == 0 {
		return nil, 0, ErrBadLengthPrefix
	}

	total := i + 1 + length + 1
	if len(buf) < total {
		return nil, 0, nil
	}
	if buf[total-1] != ',' {
		return nil, 0, ErrMissingTerminator
	}
	return buf[i+1 : total-1], total, nil
}
