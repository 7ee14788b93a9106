package application

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/reservation"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/transaction"
)

// DebtChecker は顧客の未払い債務を判定する。予約作成時のゲートとして使う
type DebtChecker struct {
	reservationRepo reservation.Repository
	ledger          *PaymentLedger
}

func NewDebtChecker(rr reservation.Repository, ledger *PaymentLedger) *DebtChecker {
	return &DebtChecker{reservationRepo: rr, ledger: ledger}
}

// DebtItem は債務の内訳1件
type DebtItem struct {
	Reservation *reservation.Reservation
	Balance     reservation.Balance
}

// DebtStatus は顧客の債務状況
type DebtStatus struct {
	ClientID    string
	HasDebt     bool
	Outstanding decimal.Decimal
	Items       []DebtItem
}

// HasDebt は顧客が債務を持つかを返す
func (c *DebtChecker) HasDebt(ctx context.Context, tx transaction.Tx, clientID string) (bool, error) {
	status, err := c.status(ctx, tx, clientID)
	if err != nil {
		return false, err
	}
	return status.HasDebt, nil
}

// Status は顧客の債務状況を返す（表示用）
func (c *DebtChecker) Status(ctx context.Context, clientID string) (*DebtStatus, error) {
	return c.status(ctx, nil, clientID)
}

func (c *DebtChecker) status(ctx context.Context, tx transaction.Tx, clientID string) (*DebtStatus, error) {
	rs, err := c.reservationRepo.ListActiveByClient(ctx, tx, clientID)
	if err != nil {
		return nil, fmt.Errorf("顧客の予約取得に失敗: %w", err)
	}
	balances, err := c.ledger.Balances(ctx, tx, rs)
	if err != nil {
		return nil, err
	}

	status := &DebtStatus{ClientID: clientID, Outstanding: decimal.Zero}
	accounts := make([]reservation.Account, 0, len(rs))
	for _, r := range rs {
		b := balances[r.ID]
		accounts = append(accounts, reservation.Account{Status: r.Status, Balance: b})
		if r.Status == reservation.StatusPendingPayment || !b.IsFullyPaid() {
			status.Items = append(status.Items, DebtItem{Reservation: r, Balance: b})
			status.Outstanding = status.Outstanding.Add(b.Outstanding())
		}
	}
	status.HasDebt = reservation.HasDebt(accounts)
	return status, nil
}
