package reservation

import "github.com/shopspring/decimal"

// InitialPolicy は作成時の初期状態の選択方針
type InitialPolicy string

const (
	// PolicyStandard は入金なしなら pending_payment、入金が30%以上なら confirmed とする
	PolicyStandard InitialPolicy = "standard"
	// PolicyDraft は入力途中の予約として draft で作成する
	PolicyDraft InitialPolicy = "draft"
)

// InitialStatus は作成時の状態を決定する
func InitialStatus(policy InitialPolicy, total, initialPaid decimal.Decimal) (Status, error) {
	if initialPaid.IsNegative() {
		return "", ErrInvalidInitialPolicy
	}
	switch policy {
	case PolicyDraft:
		if initialPaid.IsPositive() {
			return "", ErrInvalidInitialPolicy
		}
		return StatusDraft, nil
	case PolicyStandard, "":
		b := Balance{Total: total, Paid: initialPaid}
		// 合計0の予約は支払い不要のため確定扱い
		if (initialPaid.IsPositive() || total.IsZero()) && b.MeetsConfirmationThreshold() {
			return StatusConfirmed, nil
		}
		return StatusPendingPayment, nil
	default:
		return "", ErrInvalidInitialPolicy
	}
}
