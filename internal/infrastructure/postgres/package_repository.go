package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/tourpackage"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/transaction"
)

const packageColumns = `id, name, destination, duration_days, type, active, price_per_person, quota, min_quota,
	group_price, recommended_max, extra_person_price, created_at, updated_at`

type packageRow struct {
	ID               string              `db:"id"`
	Name             string              `db:"name"`
	Destination      string              `db:"destination"`
	DurationDays     int                 `db:"duration_days"`
	Type             string              `db:"type"`
	Active           bool                `db:"active"`
	PricePerPerson   decimal.NullDecimal `db:"price_per_person"`
	Quota            sql.NullInt64       `db:"quota"`
	MinQuota         sql.NullInt64       `db:"min_quota"`
	GroupPrice       decimal.NullDecimal `db:"group_price"`
	RecommendedMax   sql.NullInt64       `db:"recommended_max"`
	ExtraPersonPrice decimal.NullDecimal `db:"extra_person_price"`
	CreatedAt        time.Time           `db:"created_at"`
	UpdatedAt        time.Time           `db:"updated_at"`
}

func (r *packageRow) toEntity() *tourpackage.Package {
	return &tourpackage.Package{
		ID: r.ID, Name: r.Name, Destination: r.Destination,
		DurationDays: r.DurationDays, Type: tourpackage.Type(r.Type), Active: r.Active,
		PricePerPerson: r.PricePerPerson, Quota: intFromNull(r.Quota), MinQuota: intFromNull(r.MinQuota),
		GroupPrice: r.GroupPrice, RecommendedMax: intFromNull(r.RecommendedMax), ExtraPersonPrice: r.ExtraPersonPrice,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type PackageRepository struct{ db *sqlx.DB }

func NewPackageRepository(db *sqlx.DB) *PackageRepository { return &PackageRepository{db: db} }

func (r *PackageRepository) Create(ctx context.Context, p *tourpackage.Package) error {
	query := `INSERT INTO packages (name, destination, duration_days, type, active, price_per_person, quota, min_quota,
		group_price, recommended_max, extra_person_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query,
		p.Name, p.Destination, p.DurationDays, string(p.Type), p.Active,
		p.PricePerPerson, nullInt(p.Quota), nullInt(p.MinQuota),
		p.GroupPrice, nullInt(p.RecommendedMax), p.ExtraPersonPrice,
		p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID); err != nil {
		return fmt.Errorf("パッケージ作成に失敗: %w", err)
	}
	return nil
}

func (r *PackageRepository) GetByID(ctx context.Context, id string) (*tourpackage.Package, error) {
	return r.get(ctx, r.db, `SELECT `+packageColumns+` FROM packages WHERE id = $1`, id)
}

// GetByIDForUpdate は同一パッケージへの予約作成を直列化するため行ロックを取る
func (r *PackageRepository) GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*tourpackage.Package, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return nil, errors.New("GetByIDForUpdate にはトランザクションが必要です")
	}
	return r.get(ctx, sqlxTx, `SELECT `+packageColumns+` FROM packages WHERE id = $1 FOR UPDATE`, id)
}

func (r *PackageRepository) get(ctx context.Context, db querier, query, id string) (*tourpackage.Package, error) {
	var row packageRow
	if err := db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, tourpackage.ErrPackageNotFound
		}
		return nil, fmt.Errorf("パッケージ取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *PackageRepository) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*tourpackage.Package, error) {
	var rows []packageRow
	query := `SELECT ` + packageColumns + ` FROM packages WHERE ($1 = FALSE OR active = TRUE) ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, query, activeOnly, limit, offset); err != nil {
		return nil, fmt.Errorf("パッケージ一覧取得に失敗: %w", err)
	}
	result := make([]*tourpackage.Package, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

func (r *PackageRepository) Update(ctx context.Context, tx transaction.Tx, p *tourpackage.Package) error {
	query := `UPDATE packages SET name = $1, destination = $2, duration_days = $3, type = $4, active = $5,
		price_per_person = $6, quota = $7, min_quota = $8, group_price = $9, recommended_max = $10,
		extra_person_price = $11, updated_at = $12 WHERE id = $13`
	result, err := q(r.db, tx).ExecContext(ctx, query,
		p.Name, p.Destination, p.DurationDays, string(p.Type), p.Active,
		p.PricePerPerson, nullInt(p.Quota), nullInt(p.MinQuota),
		p.GroupPrice, nullInt(p.RecommendedMax), p.ExtraPersonPrice,
		p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("パッケージ更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return tourpackage.ErrPackageNotFound
	}
	return nil
}

func (r *PackageRepository) HasReservations(ctx context.Context, tx transaction.Tx, id string) (bool, error) {
	var exists bool
	if err := q(r.db, tx).GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM reservations WHERE package_id = $1)`, id); err != nil {
		return false, fmt.Errorf("予約有無の確認に失敗: %w", err)
	}
	return exists, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intFromNull(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

var _ tourpackage.Repository = (*PackageRepository)(nil)
