package amqp

import (
	"time"

	json "github.com/goccy/go-json"
)

// Recompute reasons carried on messages so the worker can log why a
// statement was rebuilt.
const (
	ReasonPeriodAdded  = "period_added"
	ReasonPaymentAdded = "payment_added"
	ReasonScheduled    = "scheduled"
)

// RecomputeMessage asks the worker to rebuild the statement for a window.
// Dates travel as YYYY-MM-DD strings; the worker parses and validates them.
type RecomputeMessage struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecomputeMessage creates a recompute request for the given window.
func NewRecomputeMessage(from, to, reason string) *RecomputeMessage {
	return &RecomputeMessage{
		From:      from,
		To:        to,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *RecomputeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecomputeMessageFromJSON creates a message from JSON bytes.
func RecomputeMessageFromJSON(data []byte) (*RecomputeMessage, error) {
	var msg RecomputeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
