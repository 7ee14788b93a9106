package application

import (
	"context"
	"fmt"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/history"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/reservation"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/transaction"
)

// HistoryRecorder は状態遷移を監査履歴として追記する。遷移の妥当性は検証しない
type HistoryRecorder struct {
	repo history.Repository
}

func NewHistoryRecorder(repo history.Repository) *HistoryRecorder {
	return &HistoryRecorder{repo: repo}
}

// Record は遷移1件を履歴に追記する
func (h *HistoryRecorder) Record(ctx context.Context, tx transaction.Tx, res *reservation.Reservation, t reservation.Transition, actor string) (*history.Entry, error) {
	e := history.NewEntry(res.ID, t, actor)
	if err := h.repo.Create(ctx, tx, e); err != nil {
		return nil, fmt.Errorf("履歴の記録に失敗: %w", err)
	}
	return e, nil
}

// List は予約の履歴を時系列順に返す
func (h *HistoryRecorder) List(ctx context.Context, reservationID string) ([]*history.Entry, error) {
	return h.repo.ListByReservation(ctx, reservationID)
}
