package reservation

// Status は予約の状態を表す
type Status string

const (
	StatusDraft          Status = "draft"
	StatusPendingPayment Status = "pending_payment"
	StatusConfirmed      Status = "confirmed"
	StatusInService      Status = "in_service"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
)

// AllStatuses は定義済みの全状態
var AllStatuses = []Status{
	StatusDraft,
	StatusPendingPayment,
	StatusConfirmed,
	StatusInService,
	StatusCompleted,
	StatusCancelled,
}

// IsValid は既知の状態かを返す
func (s Status) IsValid() bool {
	for _, st := range AllStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// IsTerminal は遷移先を持たない状態かを返す
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// AcceptsPayments は支払いを受け付ける状態かを返す
func (s Status) AcceptsPayments() bool {
	return s == StatusPendingPayment || s == StatusConfirmed || s == StatusInService
}

func (s Status) ptr() *Status {
	return &s
}
