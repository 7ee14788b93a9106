package application

import (
	"context"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/reservation"
)

// EventPublisher は予約イベントを外部（通知サービス等）へ送る
type EventPublisher interface {
	PublishStateChanged(ctx context.Context, ev reservation.StateChangedEvent) error
	PublishPaymentReminder(ctx context.Context, ev reservation.PaymentReminderEvent) error
}
