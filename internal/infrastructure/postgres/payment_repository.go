package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/payment"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/transaction"
)

type paymentRow struct {
	ID            string          `db:"id"`
	ReservationID string          `db:"reservation_id"`
	Amount        decimal.Decimal `db:"amount"`
	Method        string          `db:"method"`
	Notes         string          `db:"notes"`
	Status        string          `db:"status"`
	CreatedAt     time.Time       `db:"created_at"`
}

func (r *paymentRow) toEntity() *payment.Payment {
	return &payment.Payment{
		ID: r.ID, ReservationID: r.ReservationID, Amount: r.Amount,
		Method: payment.Method(r.Method), Notes: r.Notes,
		Status: payment.Status(r.Status), CreatedAt: r.CreatedAt,
	}
}

// PaymentRepository は追記のみの支払い台帳。UPDATE/DELETE は提供しない
type PaymentRepository struct{ db *sqlx.DB }

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository { return &PaymentRepository{db: db} }

func (r *PaymentRepository) Create(ctx context.Context, tx transaction.Tx, p *payment.Payment) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return errors.New("支払い登録にはトランザクションが必要です")
	}
	query := `INSERT INTO payments (reservation_id, amount, method, notes, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := sqlxTx.QueryRowContext(ctx, query,
		p.ReservationID, p.Amount, string(p.Method), p.Notes, string(p.Status), p.CreatedAt,
	).Scan(&p.ID); err != nil {
		return fmt.Errorf("支払い登録に失敗: %w", err)
	}
	return nil
}

func (r *PaymentRepository) ListByReservation(ctx context.Context, reservationID string) ([]*payment.Payment, error) {
	var rows []paymentRow
	query := `SELECT id, reservation_id, amount, method, notes, status, created_at
		FROM payments WHERE reservation_id = $1 ORDER BY created_at, id`
	if err := r.db.SelectContext(ctx, &rows, query, reservationID); err != nil {
		return nil, fmt.Errorf("支払い一覧取得に失敗: %w", err)
	}
	result := make([]*payment.Payment, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

func (r *PaymentRepository) SumCompleted(ctx context.Context, tx transaction.Tx, reservationID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	query := `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE reservation_id = $1 AND status = 'completed'`
	if err := q(r.db, tx).GetContext(ctx, &sum, query, reservationID); err != nil {
		return decimal.Zero, fmt.Errorf("入金合計の取得に失敗: %w", err)
	}
	return sum, nil
}

func (r *PaymentRepository) SumCompletedByReservations(ctx context.Context, tx transaction.Tx, reservationIDs []string) (map[string]decimal.Decimal, error) {
	sums := make(map[string]decimal.Decimal, len(reservationIDs))
	if len(reservationIDs) == 0 {
		return sums, nil
	}
	var rows []struct {
		ReservationID string          `db:"reservation_id"`
		Sum           decimal.Decimal `db:"sum"`
	}
	query := `SELECT reservation_id, SUM(amount) AS sum FROM payments
		WHERE reservation_id = ANY($1) AND status = 'completed' GROUP BY reservation_id`
	if err := q(r.db, tx).SelectContext(ctx, &rows, query, pq.Array(reservationIDs)); err != nil {
		return nil, fmt.Errorf("入金合計の取得に失敗: %w", err)
	}
	for _, row := range rows {
		sums[row.ReservationID] = row.Sum
	}
	return sums, nil
}

var _ payment.Repository = (*PaymentRepository)(nil)
