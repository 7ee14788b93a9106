package payment

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Method は支払い方法を表す
type Method string

const (
	MethodCash     Method = "cash"
	MethodTransfer Method = "transfer"
	MethodCard     Method = "card"
	MethodYape     Method = "yape"
	MethodOther    Method = "other"
)

// IsKnown は定義済みの支払い方法かを返す
func (m Method) IsKnown() bool {
	switch m {
	case MethodCash, MethodTransfer, MethodCard, MethodYape, MethodOther:
		return true
	}
	return false
}

// Status は支払いの状態を表す。この台帳が生成するのは completed のみ
type Status string

const StatusCompleted Status = "completed"

// Payment は予約に対する1回の入金を表す。登録後は変更・削除しない
type Payment struct {
	ID            string
	ReservationID string
	Amount        decimal.Decimal
	Method        Method
	Notes         string
	Status        Status
	CreatedAt     time.Time
}

// NewPayment は完了済みの支払いを作成する
func NewPayment(reservationID string, amount decimal.Decimal, method Method, notes string) (*Payment, error) {
	p := &Payment{
		ReservationID: reservationID,
		Amount:        amount,
		Method:        Method(strings.ToLower(strings.TrimSpace(string(method)))),
		Notes:         notes,
		Status:        StatusCompleted,
		CreatedAt:     time.Now(),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate は支払いの検証を行う
func (p *Payment) Validate() error {
	if p.ReservationID == "" {
		return ErrReservationIDRequired
	}
	if err := ValidateAmount(p.Amount); err != nil {
		return err
	}
	if p.Method == "" {
		return ErrMethodRequired
	}
	return nil
}

// AmountScale は金額の小数点以下の桁数。payments.amount の NUMERIC(12, 2) に合わせる
const AmountScale = 2

// ValidateAmount は支払い金額が正で、小数点以下 AmountScale 桁以内であることを検証する
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || !amount.Equal(amount.Round(AmountScale)) {
		return ErrInvalidAmount
	}
	return nil
}

// Sum は completed の支払い合計を返す
func Sum(payments []*Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		if p.Status == StatusCompleted {
			total = total.Add(p.Amount)
		}
	}
	return total
}
