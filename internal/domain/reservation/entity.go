package reservation

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Reservation は予約エンティティを表す
type Reservation struct {
	ID         string
	Number     string
	ClientID   string
	PackageID  string
	EmployeeID *string
	Headcount  int
	TotalPrice decimal.Decimal
	Status     Status
	Comment    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewReservation は新しい予約を作成する。初期状態は InitialStatus で決定したものを渡す
func NewReservation(clientID, packageID string, employeeID *string, headcount int, total decimal.Decimal, status Status, comment string) *Reservation {
	now := time.Now()
	return &Reservation{
		ClientID:   clientID,
		PackageID:  packageID,
		EmployeeID: employeeID,
		Headcount:  headcount,
		TotalPrice: total,
		Status:     status,
		Comment:    comment,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// MaxTotal は reservations.total_price (NUMERIC(12, 2)) に格納できる最大値
var MaxTotal = decimal.RequireFromString("9999999999.99")

// Validate は予約の検証を行う
func (r *Reservation) Validate() error {
	if r.ClientID == "" {
		return ErrClientIDRequired
	}
	if r.PackageID == "" {
		return ErrPackageIDRequired
	}
	if r.Headcount < 1 {
		return ErrInvalidHeadcount
	}
	if r.TotalPrice.IsNegative() || r.TotalPrice.GreaterThan(MaxTotal) {
		return ErrInvalidTotal
	}
	if !r.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// IsActive はキャンセルされていないかを返す
func (r *Reservation) IsActive() bool {
	return r.Status != StatusCancelled
}

// Balance は入金済み金額から残高を組み立てる
func (r *Reservation) Balance(paid decimal.Decimal) Balance {
	return Balance{Total: r.TotalPrice, Paid: paid}
}

// Created は作成時の遷移（前状態なし）を返す
func (r *Reservation) Created() Transition {
	return Transition{
		To:      r.Status,
		Trigger: TriggerCreation,
		Comment: fmt.Sprintf("予約作成（%s）", r.Status),
	}
}

// ChangeStatus は明示的な状態変更を行う。失敗時は状態を変更しない
func (r *Reservation) ChangeStatus(target Status, b Balance, comment string) (Transition, error) {
	if !target.IsValid() {
		return Transition{}, ErrInvalidStatus
	}
	if !Allowed(r.Status, target, TriggerExplicit) {
		return Transition{}, fmt.Errorf("%s から %s: %w", r.Status, target, ErrInvalidTransition)
	}
	if target == StatusInService && !b.IsFullyPaid() {
		return Transition{}, newIncompletePaymentError(b)
	}
	if comment == "" {
		comment = fmt.Sprintf("状態を %s から %s に変更", r.Status, target)
	}
	return r.apply(target, TriggerExplicit, comment), nil
}

// ApplyPayment は支払い登録後の残高を評価し、30%に達していれば confirmed に遷移する
func (r *Reservation) ApplyPayment(b Balance) (Transition, bool) {
	if !Allowed(r.Status, StatusConfirmed, TriggerPayment) || !b.MeetsConfirmationThreshold() {
		return Transition{}, false
	}
	comment := fmt.Sprintf("入金額 %s / %s により確定", b.Paid.StringFixed(2), b.Total.StringFixed(2))
	return r.apply(StatusConfirmed, TriggerPayment, comment), true
}

// Expire は作成から expireAfter 以上経過した予約を自動キャンセルする。
// pending_payment は入金が1件もない場合のみ対象となる。
func (r *Reservation) Expire(expireAfter time.Duration, b Balance, now time.Time) (Transition, error) {
	if !Allowed(r.Status, StatusCancelled, TriggerSweep) {
		return Transition{}, fmt.Errorf("状態 %s: %w", r.Status, ErrNotExpirable)
	}
	if now.Sub(r.CreatedAt) < expireAfter {
		return Transition{}, fmt.Errorf("作成から %s 未満: %w", expireAfter, ErrNotExpirable)
	}
	if r.Status == StatusPendingPayment && b.Paid.IsPositive() {
		return Transition{}, fmt.Errorf("入金あり: %w", ErrNotExpirable)
	}
	comment := fmt.Sprintf("作成から %s 経過したため自動キャンセル", expireAfter)
	return r.apply(StatusCancelled, TriggerSweep, comment), nil
}

func (r *Reservation) apply(to Status, trigger Trigger, comment string) Transition {
	t := Transition{
		From:    r.Status.ptr(),
		To:      to,
		Trigger: trigger,
		Comment: comment,
	}
	r.Status = to
	r.UpdatedAt = time.Now()
	return t
}
