package reservation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StateChangedEvent は状態遷移のコミット後に通知されるイベント
type StateChangedEvent struct {
	EventID       string    `json:"event_id"`
	ReservationID string    `json:"reservation_id"`
	Number        string    `json:"reservation_number"`
	ClientID      string    `json:"client_id"`
	From          *Status   `json:"from,omitempty"`
	To            Status    `json:"to"`
	Trigger       Trigger   `json:"trigger"`
	Comment       string    `json:"comment"`
	Actor         string    `json:"actor,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewStateChangedEvent は遷移からイベントを組み立てる
func NewStateChangedEvent(r *Reservation, t Transition, actor string) StateChangedEvent {
	return StateChangedEvent{
		EventID:       uuid.NewString(),
		ReservationID: r.ID,
		Number:        r.Number,
		ClientID:      r.ClientID,
		From:          t.From,
		To:            t.To,
		Trigger:       t.Trigger,
		Comment:       t.Comment,
		Actor:         actor,
		OccurredAt:    time.Now(),
	}
}

// PaymentReminderEvent は残高のある予約への入金催促イベント
type PaymentReminderEvent struct {
	EventID       string          `json:"event_id"`
	ReservationID string          `json:"reservation_id"`
	Number        string          `json:"reservation_number"`
	ClientID      string          `json:"client_id"`
	Status        Status          `json:"status"`
	Total         decimal.Decimal `json:"total"`
	Paid          decimal.Decimal `json:"paid"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// NewPaymentReminderEvent は残高から催促イベントを組み立てる
func NewPaymentReminderEvent(r *Reservation, b Balance) PaymentReminderEvent {
	return PaymentReminderEvent{
		EventID:       uuid.NewString(),
		ReservationID: r.ID,
		Number:        r.Number,
		ClientID:      r.ClientID,
		Status:        r.Status,
		Total:         b.Total,
		Paid:          b.Paid,
		Outstanding:   b.Outstanding(),
		OccurredAt:    time.Now(),
	}
}
