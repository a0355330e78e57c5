package channel

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/coalfork/wirebridge/internal/logging"
	"github.com/coalfork/wirebridge/internal/observability"
)

// Sink consumes completed inbound notifications. Deliver is invoked
// synchronously from the inbound processing path, once per header/payload
// pair; the payload is the sink's to keep.
type Sink interface {
	Deliver(targetID, event string, data json.RawMessage, payload []byte)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(targetID, event string, data json.RawMessage, payload []byte)

func (f SinkFunc) Deliver(targetID, event string, data json.RawMessage, payload []byte) {
	f(targetID, event, data, payload)
}

// SinkRegistry routes deliveries to the sink registered for their targetId.
// Notifications for unknown targets are logged and dropped; the peer is
// trusted, not validated.
type SinkRegistry struct {
	mu      sync.RWMutex
	targets map[string]Sink
	log     zerolog.Logger
}

func NewSinkRegistry() *SinkRegistry {
	return &SinkRegistry{
		targets: make(map[string]Sink),
		log:     logging.Logger().With().Str("component", "sink-registry").Logger(),
	}
}

func (r *SinkRegistry) Register(targetID string, s Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets[targetID] = s
}

func (r *SinkRegistry) Unregister(targetID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.targets, targetID)
}

func (r *SinkRegistry) Deliver(targetID, event string, data json.RawMessage, payload []byte) {
	r.mu.RLock()
	s := r.targets[targetID]
	r.mu.RUnlock()
	if s == nil {
		r.log.Warn().
			Str("target_id", targetID).
			Str("event", event).
			Msg("no sink registered for target, dropping notification")
		observability.RecordUnroutedDelivery(targetID)
		return
	}
	s.Deliver(targetID, event, data, payload)
}
