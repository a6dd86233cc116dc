package amqp

import (
	"time"

	"github.com/goccy/go-json"
)

// ChangeMessage announces a committed ledger mutation. It only names the
// records involved; consumers read current state from the store.
type ChangeMessage struct {
	Entity    string    `json:"entity"`
	Operation string    `json:"operation"`
	IDs       []int64   `json:"ids,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewChangeMessage(entity, operation string, ids []int64) *ChangeMessage {
	return &ChangeMessage{
		Entity:    entity,
		Operation: operation,
		IDs:       ids,
		Timestamp: time.Now().UTC(),
	}
}

func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
