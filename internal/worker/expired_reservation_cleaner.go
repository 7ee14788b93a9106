package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/reservation"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/pkg/logger"
)

// ReservationExpirer は期限切れ予約をキャンセルするインターフェース
type ReservationExpirer interface {
	CancelExpiredReservations(ctx context.Context, status reservation.Status, expireAfter time.Duration) (int, error)
}

// ExpiryRule は状態ごとの有効期限
type ExpiryRule struct {
	Status      reservation.Status
	ExpireAfter time.Duration
}

// DefaultExpiryRules は pending_payment と draft の有効期限から規則を組み立てる
func DefaultExpiryRules(pendingPaymentTTL, draftTTL time.Duration) []ExpiryRule {
	return []ExpiryRule{
		{Status: reservation.StatusPendingPayment, ExpireAfter: pendingPaymentTTL},
		{Status: reservation.StatusDraft, ExpireAfter: draftTTL},
	}
}

// ExpiredReservationCleaner は期限切れ予約をクリーンアップするワーカー
type ExpiredReservationCleaner struct {
	reservationService ReservationExpirer
	interval           time.Duration
	rules              []ExpiryRule
	stopCh             chan struct{}
	doneCh             chan struct{}
}

// NewExpiredReservationCleaner は新しいクリーナーを作成
func NewExpiredReservationCleaner(
	rs ReservationExpirer,
	interval time.Duration,
	rules []ExpiryRule,
) *ExpiredReservationCleaner {
	return &ExpiredReservationCleaner{
		reservationService: rs,
		interval:           interval,
		rules:              rules,
		stopCh:             make(chan struct{}),
		doneCh:             make(chan struct{}),
	}
}

// Start はクリーナーを開始
func (c *ExpiredReservationCleaner) Start(ctx context.Context) {
	logger.Info("期限切れ予約クリーナー開始",
		zap.Duration("interval", c.interval),
		zap.Int("rules", len(c.rules)),
	)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer close(c.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("期限切れ予約クリーナー停止（コンテキストキャンセル）")
			return
		case <-c.stopCh:
			logger.Info("期限切れ予約クリーナー停止（シグナル受信）")
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

// Stop はクリーナーを停止
func (c *ExpiredReservationCleaner) Stop() {
	close(c.stopCh)
	<-c.doneCh
}

// cleanup は規則ごとに期限切れ予約をキャンセルする。1つの規則が失敗しても残りは実行する
func (c *ExpiredReservationCleaner) cleanup(ctx context.Context) {
	log := logger.Get()
	log.Debug("期限切れ予約のクリーンアップ開始")

	for _, rule := range c.rules {
		if rule.ExpireAfter <= 0 {
			continue
		}
		count, err := c.reservationService.CancelExpiredReservations(ctx, rule.Status, rule.ExpireAfter)
		if err != nil {
			log.Error("期限切れ予約のクリーンアップ失敗",
				zap.String("status", string(rule.Status)),
				zap.Error(err),
			)
			continue
		}

		if count > 0 {
			log.Info("期限切れ予約をキャンセル",
				zap.String("status", string(rule.Status)),
				zap.Int("count", count),
			)
		} else {
			log.Debug("期限切れ予約なし", zap.String("status", string(rule.Status)))
		}
	}
}
