package reservation

import (
	"context"
	"fmt"
	"time"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/transaction"
)

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は新しい予約を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, r *Reservation) error

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id string) (*Reservation, error)

	// GetByIDForUpdate は行ロックを取得して予約を取得する（トランザクション必須）
	GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*Reservation, error)

	// ListByClient は顧客の予約一覧を新しい順に取得する
	ListByClient(ctx context.Context, clientID string, limit, offset int) ([]*Reservation, error)

	// ListActiveByClient は顧客のキャンセル以外の予約を取得する
	ListActiveByClient(ctx context.Context, tx transaction.Tx, clientID string) ([]*Reservation, error)

	// ListActiveByPackage はパッケージのキャンセル以外の予約を取得する
	ListActiveByPackage(ctx context.Context, tx transaction.Tx, packageID string) ([]*Reservation, error)

	// UpdateStatus は予約の状態を更新する（トランザクション必須）
	UpdateStatus(ctx context.Context, tx transaction.Tx, r *Reservation) error

	// ListStale は指定状態で作成から expireAfter 以上経過した予約を取得する
	ListStale(ctx context.Context, status Status, expireAfter time.Duration) ([]*Reservation, error)

	// ListByStatuses は指定状態のいずれかにある予約を取得する
	ListByStatuses(ctx context.Context, statuses []Status) ([]*Reservation, error)
}

// NumberGenerator は人が読める一意の予約番号を発行する
type NumberGenerator interface {
	Next(ctx context.Context, tx transaction.Tx) (string, error)
}

// FormatNumber は RES-YYYY-NNNNNN 形式の予約番号を返す
func FormatNumber(year int, seq int64) string {
	return fmt.Sprintf("RES-%d-%06d", year, seq)
}
