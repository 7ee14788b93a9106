package reservation

import "github.com/shopspring/decimal"

// ConfirmationRatio は確定に必要な入金割合
var ConfirmationRatio = decimal.RequireFromString("0.30")

// Balance は予約の合計金額と入金済み金額を表す
type Balance struct {
	Total decimal.Decimal
	Paid  decimal.Decimal
}

// Outstanding は未払い残高を返す（過払い時は0）
func (b Balance) Outstanding() decimal.Decimal {
	o := b.Total.Sub(b.Paid)
	if o.IsNegative() {
		return decimal.Zero
	}
	return o
}

// IsFullyPaid は全額入金済みかを返す
func (b Balance) IsFullyPaid() bool {
	return b.Paid.GreaterThanOrEqual(b.Total)
}

// MeetsConfirmationThreshold は入金額が合計の30%以上かを返す
func (b Balance) MeetsConfirmationThreshold() bool {
	return b.Paid.GreaterThanOrEqual(b.Total.Mul(ConfirmationRatio))
}

// WouldOverpay は amount を追加すると合計を超えるかを返す
func (b Balance) WouldOverpay(amount decimal.Decimal) bool {
	return b.Paid.Add(amount).GreaterThan(b.Total)
}

// With は amount を加算した残高を返す
func (b Balance) With(amount decimal.Decimal) Balance {
	return Balance{Total: b.Total, Paid: b.Paid.Add(amount)}
}
