package payment

import "errors"

// Payment ドメインのエラー定義
var (
	ErrInvalidAmount         = errors.New("支払い金額は0より大きく小数点以下2桁以内である必要があります")
	ErrReservationIDRequired = errors.New("予約IDは必須です")
	ErrMethodRequired        = errors.New("支払い方法は必須です")
	ErrOverpaymentNotAllowed = errors.New("支払い金額が残高を超えています")
	ErrPaymentNotAllowed     = errors.New("この状態の予約には支払いを登録できません")
)
