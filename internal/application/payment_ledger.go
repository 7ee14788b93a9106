package application

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/payment"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/reservation"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/transaction"
)

// PaymentInput は支払い1件分の入力
type PaymentInput struct {
	Amount decimal.Decimal
	Method payment.Method
	Notes  string
}

// PaymentLedger は支払いの追記と入金合計の集計を担う。
// 入金合計は常にここを経由して求める。
type PaymentLedger struct {
	repo payment.Repository
}

func NewPaymentLedger(repo payment.Repository) *PaymentLedger {
	return &PaymentLedger{repo: repo}
}

// Balance は予約の現在の残高を返す
func (l *PaymentLedger) Balance(ctx context.Context, tx transaction.Tx, res *reservation.Reservation) (reservation.Balance, error) {
	paid, err := l.repo.SumCompleted(ctx, tx, res.ID)
	if err != nil {
		return reservation.Balance{}, fmt.Errorf("入金合計の取得に失敗: %w", err)
	}
	return res.Balance(paid), nil
}

// Balances は複数予約の残高を予約IDごとに返す
func (l *PaymentLedger) Balances(ctx context.Context, tx transaction.Tx, rs []*reservation.Reservation) (map[string]reservation.Balance, error) {
	balances := make(map[string]reservation.Balance, len(rs))
	if len(rs) == 0 {
		return balances, nil
	}
	ids := make([]string, 0, len(rs))
	for _, r := range rs {
		ids = append(ids, r.ID)
	}
	sums, err := l.repo.SumCompletedByReservations(ctx, tx, ids)
	if err != nil {
		return nil, fmt.Errorf("入金合計の取得に失敗: %w", err)
	}
	for _, r := range rs {
		balances[r.ID] = r.Balance(sums[r.ID])
	}
	return balances, nil
}

// Register は支払いを検証して追記し、追記後の残高を再集計して返す。
// 残高を超える支払いは拒否する。
func (l *PaymentLedger) Register(ctx context.Context, tx transaction.Tx, res *reservation.Reservation, in PaymentInput) (*payment.Payment, reservation.Balance, error) {
	p, err := payment.NewPayment(res.ID, in.Amount, in.Method, in.Notes)
	if err != nil {
		return nil, reservation.Balance{}, err
	}
	before, err := l.Balance(ctx, tx, res)
	if err != nil {
		return nil, reservation.Balance{}, err
	}
	if before.WouldOverpay(p.Amount) {
		return nil, reservation.Balance{}, fmt.Errorf("残高 %s に対して %s: %w",
			before.Outstanding().StringFixed(2), p.Amount.StringFixed(2), payment.ErrOverpaymentNotAllowed)
	}
	if err := l.repo.Create(ctx, tx, p); err != nil {
		return nil, reservation.Balance{}, fmt.Errorf("支払いの登録に失敗: %w", err)
	}
	after, err := l.Balance(ctx, tx, res)
	if err != nil {
		return nil, reservation.Balance{}, err
	}
	return p, after, nil
}

// Statement は予約の支払い一覧と残高を返す
func (l *PaymentLedger) Statement(ctx context.Context, res *reservation.Reservation) ([]*payment.Payment, reservation.Balance, error) {
	payments, err := l.repo.ListByReservation(ctx, res.ID)
	if err != nil {
		return nil, reservation.Balance{}, fmt.Errorf("支払い一覧の取得に失敗: %w", err)
	}
	return payments, res.Balance(payment.Sum(payments)), nil
}
