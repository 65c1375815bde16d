package ws

import (
	"encoding/json"
	"log"

	"github.com/google/uuid"

	"github.com/velmart/chat/internal/domain"
	"github.com/velmart/chat/internal/metrics"
)

// Fanout implements service.Notifier over the connection registry. Delivery
// is best-effort and at-most-once per live connection; a party without a
// usable connection is a recorded miss, never an error.
type Fanout struct {
	registry *Registry
}

func NewFanout(registry *Registry) *Fanout {
	return &Fanout{registry: registry}
}

func (f *Fanout) NotifyMessage(msg *domain.ChatMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("ws fanout: marshal error: %v", err)
		return
	}

	f.push(msg.SenderID, data)
	if msg.RecipientID != msg.SenderID {
		f.push(msg.RecipientID, data)
	}
}

func (f *Fanout) push(userID uuid.UUID, data []byte) {
	p, ok := f.registry.Lookup(userID)
	if !ok || !p.Push(data) {
		metrics.DeliveryMissesTotal.Inc()
		return
	}
	metrics.DeliveriesTotal.Inc()
}
