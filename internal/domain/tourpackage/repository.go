package tourpackage

import (
	"context"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/transaction"
)

// Repository はパッケージリポジトリのインターフェース
type Repository interface {
	// Create は新しいパッケージを作成する
	Create(ctx context.Context, p *Package) error

	// GetByID はIDからパッケージを取得する
	GetByID(ctx context.Context, id string) (*Package, error)

	// GetByIDForUpdate は行ロックを取得してパッケージを取得する（トランザクション必須）
	GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*Package, error)

	// List はパッケージ一覧を取得する
	List(ctx context.Context, activeOnly bool, limit, offset int) ([]*Package, error)

	// Update はパッケージを更新する。tx が nil の場合はトランザクション外で実行する
	Update(ctx context.Context, tx transaction.Tx, p *Package) error

	// HasReservations はパッケージに予約が1件でも存在するかを返す
	HasReservations(ctx context.Context, tx transaction.Tx, id string) (bool, error)
}
