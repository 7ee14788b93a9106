package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/reservation"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/transaction"
)

const reservationColumns = `id, reservation_number, client_id, package_id, employee_id, headcount, total_price,
	status, comment, created_at, updated_at`

// uniqueViolation は PostgreSQL の一意制約違反コード
const uniqueViolation = "23505"

type reservationRow struct {
	ID         string          `db:"id"`
	Number     string          `db:"reservation_number"`
	ClientID   string          `db:"client_id"`
	PackageID  string          `db:"package_id"`
	EmployeeID sql.NullString  `db:"employee_id"`
	Headcount  int             `db:"headcount"`
	TotalPrice decimal.Decimal `db:"total_price"`
	Status     string          `db:"status"`
	Comment    string          `db:"comment"`
	CreatedAt  time.Time       `db:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at"`
}

func (r *reservationRow) toEntity() *reservation.Reservation {
	var employeeID *string
	if r.EmployeeID.Valid {
		employeeID = &r.EmployeeID.String
	}
	return &reservation.Reservation{
		ID: r.ID, Number: r.Number, ClientID: r.ClientID, PackageID: r.PackageID,
		EmployeeID: employeeID, Headcount: r.Headcount, TotalPrice: r.TotalPrice,
		Status: reservation.Status(r.Status), Comment: r.Comment,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type ReservationRepository struct{ db *sqlx.DB }

func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Create(ctx context.Context, tx transaction.Tx, res *reservation.Reservation) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return errors.New("予約作成にはトランザクションが必要です")
	}
	query := `INSERT INTO reservations (reservation_number, client_id, package_id, employee_id, headcount, total_price,
		status, comment, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	var employeeID sql.NullString
	if res.EmployeeID != nil {
		employeeID = sql.NullString{String: *res.EmployeeID, Valid: true}
	}
	if err := sqlxTx.QueryRowContext(ctx, query,
		res.Number, res.ClientID, res.PackageID, employeeID, res.Headcount, res.TotalPrice,
		string(res.Status), res.Comment, res.CreatedAt, res.UpdatedAt,
	).Scan(&res.ID); err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return reservation.ErrNumberAlreadyExists
		}
		return fmt.Errorf("予約作成に失敗: %w", err)
	}
	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*reservation.Reservation, error) {
	return r.get(ctx, r.db, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
}

func (r *ReservationRepository) GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*reservation.Reservation, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return nil, errors.New("GetByIDForUpdate にはトランザクションが必要です")
	}
	return r.get(ctx, sqlxTx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1 FOR UPDATE`, id)
}

func (r *ReservationRepository) get(ctx context.Context, db querier, query, id string) (*reservation.Reservation, error) {
	var row reservationRow
	if err := db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *ReservationRepository) ListByClient(ctx context.Context, clientID string, limit, offset int) ([]*reservation.Reservation, error) {
	return r.list(ctx, r.db,
		`SELECT `+reservationColumns+` FROM reservations WHERE client_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		clientID, limit, offset)
}

func (r *ReservationRepository) ListActiveByClient(ctx context.Context, tx transaction.Tx, clientID string) ([]*reservation.Reservation, error) {
	return r.list(ctx, q(r.db, tx),
		`SELECT `+reservationColumns+` FROM reservations WHERE client_id = $1 AND status <> 'cancelled' ORDER BY created_at`,
		clientID)
}

func (r *ReservationRepository) ListActiveByPackage(ctx context.Context, tx transaction.Tx, packageID string) ([]*reservation.Reservation, error) {
	return r.list(ctx, q(r.db, tx),
		`SELECT `+reservationColumns+` FROM reservations WHERE package_id = $1 AND status <> 'cancelled' ORDER BY created_at`,
		packageID)
}

func (r *ReservationRepository) UpdateStatus(ctx context.Context, tx transaction.Tx, res *reservation.Reservation) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return errors.New("状態更新にはトランザクションが必要です")
	}
	result, err := sqlxTx.ExecContext(ctx, `UPDATE reservations SET status = $1, updated_at = $2 WHERE id = $3`,
		string(res.Status), res.UpdatedAt, res.ID)
	if err != nil {
		return fmt.Errorf("予約更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return reservation.ErrReservationNotFound
	}
	return nil
}

func (r *ReservationRepository) ListStale(ctx context.Context, status reservation.Status, expireAfter time.Duration) ([]*reservation.Reservation, error) {
	cutoff := time.Now().Add(-expireAfter)
	return r.list(ctx, r.db,
		`SELECT `+reservationColumns+` FROM reservations WHERE status = $1 AND created_at <= $2 ORDER BY created_at`,
		string(status), cutoff)
}

func (r *ReservationRepository) ListByStatuses(ctx context.Context, statuses []reservation.Status) ([]*reservation.Reservation, error) {
	if len(statuses) == 0 {
		return []*reservation.Reservation{}, nil
	}
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}
	return r.list(ctx, r.db,
		`SELECT `+reservationColumns+` FROM reservations WHERE status = ANY($1) ORDER BY created_at`,
		pq.Array(values))
}

func (r *ReservationRepository) list(ctx context.Context, db querier, query string, args ...interface{}) ([]*reservation.Reservation, error) {
	var rows []reservationRow
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	result := make([]*reservation.Reservation, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

// NumberGenerator は reservation_number_seq から予約番号を発行する
type NumberGenerator struct {
	now func() time.Time
}

func NewNumberGenerator() *NumberGenerator {
	return &NumberGenerator{now: time.Now}
}

func (g *NumberGenerator) Next(ctx context.Context, tx transaction.Tx) (string, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return "", errors.New("予約番号の発行にはトランザクションが必要です")
	}
	var seq int64
	if err := sqlxTx.GetContext(ctx, &seq, `SELECT nextval('reservation_number_seq')`); err != nil {
		return "", fmt.Errorf("予約番号の採番に失敗: %w", err)
	}
	return reservation.FormatNumber(g.now().Year(), seq), nil
}

var (
	_ reservation.Repository      = (*ReservationRepository)(nil)
	_ reservation.NumberGenerator = (*NumberGenerator)(nil)
)
