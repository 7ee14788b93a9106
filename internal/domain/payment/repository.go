package payment

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/transaction"
)

// Repository は支払いリポジトリのインターフェース
type Repository interface {
	// Create は支払いを追加する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, p *Payment) error

	// ListByReservation は予約の支払いを登録順に取得する
	ListByReservation(ctx context.Context, reservationID string) ([]*Payment, error)

	// SumCompleted は予約の completed 支払い合計を返す
	SumCompleted(ctx context.Context, tx transaction.Tx, reservationID string) (decimal.Decimal, error)

	// SumCompletedByReservations は複数予約の completed 支払い合計を予約IDごとに返す
	SumCompletedByReservations(ctx context.Context, tx transaction.Tx, reservationIDs []string) (map[string]decimal.Decimal, error)
}
