package history

import (
	"context"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/transaction"
)

// Repository は履歴リポジトリのインターフェース
type Repository interface {
	// Create は履歴を追記する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, e *Entry) error

	// ListByReservation は予約の履歴を時系列順に取得する
	ListByReservation(ctx context.Context, reservationID string) ([]*Entry, error)
}
