package core

import "time"

// Entities named in change events and errors.
const (
	EntityCategory      = "category"
	EntityPaymentMethod = "payment_method"
	EntityTransaction   = "transaction"
	EntityUserConfig    = "user_config"
	EntityLedger        = "ledger"
)

// ChangeEvent describes a committed mutation.
type ChangeEvent struct {
	Entity    string    `json:"entity"`
	Operation string    `json:"operation"`
	IDs       []int64   `json:"ids,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewChangeEvent(entity, operation string, ids ...int64) ChangeEvent {
	return ChangeEvent{Entity: entity, Operation: operation, IDs: ids, Timestamp: time.Now().UTC()}
}
