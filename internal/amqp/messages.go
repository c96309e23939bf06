package amqp

import (
	"encoding/json"
	"time"

	"ledger/internal/core"
	"ledger/internal/services"
)

// Message kinds carried on the notifications queue. Consumers switch on the
// "kind" field before decoding the payload.
const (
	KindTransaction = "transaction"
	KindUpcoming    = "upcoming_payments"
)

// Envelope is the outer frame of every published message.
type Envelope struct {
	Kind      string          `json:"kind"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// TransactionPayload mirrors a posted or deleted ledger entry.
type TransactionPayload struct {
	ID                string  `json:"id"`
	UserID            string  `json:"user_id"`
	Title             string  `json:"title"`
	Category          string  `json:"category"`
	AmountCents       int64   `json:"amount_cents"`
	Amount            float64 `json:"amount"`
	Type              string  `json:"type"`
	InternalOperation bool    `json:"internal_operation"`
	CreatedAt         int64   `json:"created_at"`
	Note              string  `json:"note,omitempty"`
}

// UpcomingPayload lists obligations falling due within the notify window.
type UpcomingPayload struct {
	UserID string         `json:"user_id"`
	Items  []UpcomingItem `json:"items"`
}

type UpcomingItem struct {
	Kind        string  `json:"kind"`
	Title       string  `json:"title"`
	AmountCents int64   `json:"amount_cents"`
	Amount      float64 `json:"amount"`
	DueInDays   int     `json:"due_in_days"`
	Deadline    int64   `json:"deadline,omitempty"`
}

func newEnvelope(kind string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{
		Kind:      kind,
		Timestamp: time.Now().UTC(),
		Payload:   raw,
	})
}

func transactionPayload(tx core.Transaction) TransactionPayload {
	return TransactionPayload{
		ID:                tx.ID,
		UserID:            tx.UserID,
		Title:             tx.Title,
		Category:          tx.Category,
		AmountCents:       tx.Amount.Cents,
		Amount:            tx.Amount.Float(),
		Type:              string(tx.Type),
		InternalOperation: tx.InternalOperation,
		CreatedAt:         tx.CreatedAt,
		Note:              tx.Note,
	}
}

func upcomingPayload(userID string, items []services.UpcomingItem) UpcomingPayload {
	p := UpcomingPayload{UserID: userID, Items: make([]UpcomingItem, 0, len(items))}
	for _, item := range items {
		p.Items = append(p.Items, UpcomingItem{
			Kind:        item.Kind,
			Title:       item.Title,
			AmountCents: item.Amount.Cents,
			Amount:      item.Amount.Float(),
			DueInDays:   item.DueInDays,
			Deadline:    item.DeadlineMs,
		})
	}
	return p
}
