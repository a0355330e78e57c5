package channel

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/coalfork/wirebridge/internal/logging"
	"github.com/coalfork/wirebridge/internal/observability"
	"github.com/coalfork/wirebridge/internal/protocol/netstring"
	"github.com/coalfork/wirebridge/internal/transport"
)

// DefaultTeardownDelay is how long Close leaves the transports alive so
// frames already in flight on the inbound stream can still be read and
// dispatched.
const DefaultTeardownDelay = 200 * time.Millisecond

// outboundHeader is the wire shape of a header frame sent to the peer.
type outboundHeader struct {
	Event    string `json:"event"`
	Internal any    `json:"internal"`
	Data     any    `json:"data,omitempty"`
}

// Options tune one channel instance.
type Options struct {
	// Name labels log lines and metrics for this channel.
	Name string
	// TeardownDelay overrides DefaultTeardownDelay when > 0.
	TeardownDelay time.Duration
}

// Channel is one side of the notification link: it owns exactly one
// outbound and one inbound transport endpoint, the receive buffer, and the
// header/payload pairing state. Inbound chunks are delivered serially by
// the endpoint, so the buffer and pairing state need no locking; only the
// open/closed state is shared with Notify and Close.
type Channel struct {
	name          string
	out           transport.Endpoint
	in            transport.Endpoint
	log           zerolog.Logger
	teardownDelay time.Duration

	mu     sync.Mutex
	closed bool

	// Inbound-path state, touched only from handleChunk.
	buf recvBuffer
	dsp dispatcher
}

// New wires a channel over its two endpoints and attaches the inbound
// observers. The caller starts the endpoints (if they need starting) after
// New returns.
func New(out, in transport.Endpoint, sink Sink, opts Options) *Channel {
	name := opts.Name
	if name == "" {
		name = "channel"
	}
	delay := opts.TeardownDelay
	if delay <= 0 {
		delay = DefaultTeardownDelay
	}
	log := logging.Logger().With().Str("component", "channel").Str("channel", name).Logger()

	c := &Channel{
		name:          name,
		out:           out,
		in:            in,
		log:           log,
		teardownDelay: delay,
	}
	c.dsp = dispatcher{name: name, sink: sink, log: log}

	in.OnData(c.handleChunk)
	in.OnError(c.handleTransportError)
	out.OnError(c.handleTransportError)
	return c
}

// Notify sends one notification: a serialized header frame followed by the
// raw payload frame, in that order, to the outbound transport. It is safe
// to call from any goroutine, including from within a Sink callback.
//
// Size violations and a closed channel surface as errors before anything is
// written; transport write failures are logged and swallowed because the
// remote side disappearing is an expected terminal condition.
func (c *Channel) Notify(event string, internal, data any, payload []byte) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrChannelClosed
	}

	body, err := json.Marshal(outboundHeader{Event: event, Internal: internal, Data: data})
	if err != nil {
		return fmt.Errorf("channel: marshal header: %w", err)
	}

	headerFrame := netstring.Encode(body)
	payloadFrame := netstring.Encode(payload)
	if len(headerFrame) > netstring.MaxFrameLen {
		return ErrMessageTooLarge
	}
	if len(payloadFrame) > netstring.MaxFrameLen {
		return ErrPayloadTooLarge
	}

	// The payload frame must never be written without its header frame
	// preceding it.
	if err := c.out.Write(headerFrame); err != nil {
		c.log.Warn().Err(err).Str("event", event).Msg("header write failed, dropping notification")
		observability.RecordDroppedWrite(c.name, "header")
		return nil
	}
	if err := c.out.Write(payloadFrame); err != nil {
		c.log.Warn().Err(err).Str("event", event).Msg("payload write failed")
		observability.RecordDroppedWrite(c.name, "payload")
		return nil
	}
	return nil
}

// Close transitions the channel to closed once. Inbound observation stops
// immediately, transport errors after this point are ignored, and the
// endpoints themselves are destroyed only after the drain delay so frames
// already in flight can finish processing. Teardown failures are ignored.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.in.OnData(nil)
	c.in.OnError(func(error) {})
	c.out.OnError(func(error) {})

	// The timer closure holds only the endpoint handles, not the channel,
	// so teardown is safe even if the channel is dropped meanwhile.
	in, out := c.in, c.out
	time.AfterFunc(c.teardownDelay, func() {
		_ = in.Destroy()
		_ = out.Destroy()
	})
	c.log.Debug().Dur("teardown_delay", c.teardownDelay).Msg("channel closed")
}

// handleChunk is the receive reassembler: it appends the chunk, enforces
// the buffered-size ceiling, and cuts as many complete frames as the buffer
// holds. Each iteration strictly shrinks the buffer, so the loop terminates.
func (c *Channel) handleChunk(chunk []byte) {
	c.buf.Append(chunk)

	if c.buf.Len() > netstring.MaxBodyLen {
		c.log.Error().
			Int("buffered_bytes", c.buf.Len()).
			Int("ceiling", netstring.MaxBodyLen).
			Msg("receive buffer overflow, discarding all buffered data")
		observability.RecordBufferOverflow(c.name)
		c.buf.Discard()
		return
	}

	for c.buf.Len() > 0 {
		body, consumed, err := netstring.Decode(c.buf.Bytes())
		if err != nil {
			c.log.Warn().Err(err).Msg("malformed frame, discarding receive buffer")
			observability.RecordProtocolError(c.name, "bad_frame")
			c.buf.Discard()
			return
		}
		if consumed == 0 {
			return
		}
		observability.RecordFrameDecoded(c.name)
		c.dsp.HandleFrame(body)
		c.buf.Consume(consumed)
	}
}

func (c *Channel) handleTransportError(err error) {
	if errors.Is(err, io.EOF) {
		c.log.Debug().Msg("transport end of stream")
		return
	}
	c.log.Warn().Err(err).Msg("transport error")
}
