package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/pkg/logger"
)

// ReminderSender は入金催促を送るインターフェース
type ReminderSender interface {
	SendPaymentReminders(ctx context.Context) (int, error)
}

// PaymentReminder は残高のある予約に定期的に催促を送るワーカー
type PaymentReminder struct {
	reservationService ReminderSender
	interval           time.Duration
	stopCh             chan struct{}
	doneCh             chan struct{}
}

func NewPaymentReminder(rs ReminderSender, interval time.Duration) *PaymentReminder {
	return &PaymentReminder{
		reservationService: rs,
		interval:           interval,
		stopCh:             make(chan struct{}),
		doneCh:             make(chan struct{}),
	}
}

// Start は催促ワーカーを開始
func (r *PaymentReminder) Start(ctx context.Context) {
	logger.Info("入金催促ワーカー開始", zap.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("入金催促ワーカー停止（コンテキストキャンセル）")
			return
		case <-r.stopCh:
			logger.Info("入金催促ワーカー停止（シグナル受信）")
			return
		case <-ticker.C:
			r.remind(ctx)
		}
	}
}

// Stop は催促ワーカーを停止
func (r *PaymentReminder) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

func (r *PaymentReminder) remind(ctx context.Context) {
	count, err := r.reservationService.SendPaymentReminders(ctx)
	if err != nil {
		logger.Error("入金催促の送信失敗", zap.Error(err))
		return
	}
	logger.Info("入金催促を送信", zap.Int("count", count))
}
