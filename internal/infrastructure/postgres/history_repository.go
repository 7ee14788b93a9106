package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/history"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/reservation"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/transaction"
)

type historyRow struct {
	ID            string         `db:"id"`
	ReservationID string         `db:"reservation_id"`
	FromStatus    sql.NullString `db:"from_status"`
	ToStatus      string         `db:"to_status"`
	Comment       string         `db:"comment"`
	Actor         string         `db:"actor"`
	CreatedAt     time.Time      `db:"created_at"`
}

func (r *historyRow) toEntity() *history.Entry {
	e := &history.Entry{
		ID: r.ID, ReservationID: r.ReservationID, ToStatus: reservation.Status(r.ToStatus),
		Comment: r.Comment, Actor: r.Actor, CreatedAt: r.CreatedAt,
	}
	if r.FromStatus.Valid {
		from := reservation.Status(r.FromStatus.String)
		e.FromStatus = &from
	}
	return e
}

type HistoryRepository struct{ db *sqlx.DB }

func NewHistoryRepository(db *sqlx.DB) *HistoryRepository { return &HistoryRepository{db: db} }

func (r *HistoryRepository) Create(ctx context.Context, tx transaction.Tx, e *history.Entry) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return errors.New("履歴の記録にはトランザクションが必要です")
	}
	var from sql.NullString
	if e.FromStatus != nil {
		from = sql.NullString{String: string(*e.FromStatus), Valid: true}
	}
	query := `INSERT INTO reservation_history (reservation_id, from_status, to_status, comment, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := sqlxTx.QueryRowContext(ctx, query,
		e.ReservationID, from, string(e.ToStatus), e.Comment, e.Actor, e.CreatedAt,
	).Scan(&e.ID); err != nil {
		return fmt.Errorf("履歴の記録に失敗: %w", err)
	}
	return nil
}

func (r *HistoryRepository) ListByReservation(ctx context.Context, reservationID string) ([]*history.Entry, error) {
	var rows []historyRow
	query := `SELECT id, reservation_id, from_status, to_status, comment, actor, created_at
		FROM reservation_history WHERE reservation_id = $1 ORDER BY created_at, id`
	if err := r.db.SelectContext(ctx, &rows, query, reservationID); err != nil {
		return nil, fmt.Errorf("履歴取得に失敗: %w", err)
	}
	result := make([]*history.Entry, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

var _ history.Repository = (*HistoryRepository)(nil)
