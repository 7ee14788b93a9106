package reservation

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Reservation ドメインのエラー定義
var (
	ErrReservationNotFound      = errors.New("予約が見つかりません")
	ErrClientIDRequired         = errors.New("顧客IDは必須です")
	ErrPackageIDRequired        = errors.New("パッケージIDは必須です")
	ErrInvalidHeadcount         = errors.New("人数は1以上である必要があります")
	ErrInvalidTotal             = errors.New("合計金額が範囲外です")
	ErrInvalidStatus            = errors.New("予約状態が不正です")
	ErrInvalidTransition        = errors.New("許可されていない状態遷移です")
	ErrIncompletePayment        = errors.New("全額の入金が完了していません")
	ErrClientHasOutstandingDebt = errors.New("顧客に未払いの予約があります")
	ErrInvalidInitialPolicy     = errors.New("初期状態の指定が不正です")
	ErrNotExpirable             = errors.New("予約は期限切れの条件を満たしていません")
	ErrNumberAlreadyExists      = errors.New("予約番号が重複しています")
)

// IncompletePaymentError は in_service への遷移が不足額により拒否されたことを表す
type IncompletePaymentError struct {
	Total     decimal.Decimal
	Paid      decimal.Decimal
	Shortfall decimal.Decimal
}

func newIncompletePaymentError(b Balance) *IncompletePaymentError {
	return &IncompletePaymentError{
		Total:     b.Total,
		Paid:      b.Paid,
		Shortfall: b.Outstanding(),
	}
}

func (e *IncompletePaymentError) Error() string {
	return fmt.Sprintf("%s（不足額: %s）", ErrIncompletePayment.Error(), e.Shortfall.StringFixed(2))
}

func (e *IncompletePaymentError) Unwrap() error {
	return ErrIncompletePayment
}
