package channel

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/coalfork/wirebridge/internal/observability"
)

// inboundHeader is the wire shape of a header frame arriving from the peer.
type inboundHeader struct {
	TargetID string          `json:"targetId"`
	Event    string          `json:"event"`
	Data     json.RawMessage `json:"data,omitempty"`
}

func (h inboundHeader) Validate() error {
	if strings.TrimSpace(h.TargetID) == "" {
		return fmt.Errorf("header missing targetId")
	}
	if strings.TrimSpace(h.Event) == "" {
		return fmt.Errorf("header missing event")
	}
	return nil
}

// dispatcher alternates between expecting a header frame and the payload
// frame that must immediately follow it. Headers and payloads strictly
// alternate on the wire; there is no identifier matching between them.
type dispatcher struct {
	name    string
	sink    Sink
	log     zerolog.Logger
	pending *inboundHeader
}

// HandleFrame consumes one decoded frame body. The slice aliases the
// receive buffer and is only valid for the duration of the call.
func (d *dispatcher) HandleFrame(body []byte) {
	if d.pending == nil {
		d.handleHeader(body)
		return
	}
	d.handlePayload(body)
}

func (d *dispatcher) handleHeader(body []byte) {
	var h inboundHeader
	if err := json.Unmarshal(body, &h); err != nil {
		d.log.Warn().Err(err).Msg("discarding unparseable header frame")
		observability.RecordProtocolError(d.name, "bad_header")
		return
	}
	if err := h.Validate(); err != nil {
		d.log.Warn().Err(err).Msg("discarding invalid header frame")
		observability.RecordProtocolError(d.name, "bad_header")
		return
	}
	d.pending = &h
}

func (d *dispatcher) handlePayload(body []byte) {
	h := d.pending
	d.pending = nil

	payload := make([]byte, len(body))
	copy(payload, body)

	d.log.Debug().
		Str("target_id", h.TargetID).
		Str("event", h.Event).
		Int("payload_bytes", len(payload)).
		Msg("delivering notification")
	observability.RecordDelivery(d.name, len(payload))
	d.sink.Deliver(h.TargetID, h.Event, h.Data, payload)
}
