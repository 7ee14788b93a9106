package reservation

// Trigger は遷移の契機を表す
type Trigger string

const (
	TriggerCreation Trigger = "creation" // 予約作成
	TriggerExplicit Trigger = "explicit" // 利用者からの状態変更リクエスト
	TriggerPayment  Trigger = "payment"  // 支払い登録による自動遷移
	TriggerSweep    Trigger = "sweep"    // 定期ジョブによる期限切れキャンセル
)

type edge struct {
	from    Status
	to      Status
	trigger Trigger
}

// 作成時の遷移は InitialStatus が決定するため表には含めない
var transitionTable = map[edge]struct{}{
	{StatusDraft, StatusCancelled, TriggerExplicit}:          {},
	{StatusPendingPayment, StatusCancelled, TriggerExplicit}: {},
	{StatusConfirmed, StatusInService, TriggerExplicit}:      {},
	{StatusConfirmed, StatusCancelled, TriggerExplicit}:      {},
	{StatusInService, StatusCompleted, TriggerExplicit}:      {},
	{StatusInService, StatusCancelled, TriggerExplicit}:      {},

	{StatusPendingPayment, StatusConfirmed, TriggerPayment}: {},

	{StatusPendingPayment, StatusCancelled, TriggerSweep}: {},
	{StatusDraft, StatusCancelled, TriggerSweep}:          {},
}

// Allowed は from から to への遷移が trigger によって許可されているかを返す
func Allowed(from, to Status, trigger Trigger) bool {
	_, ok := transitionTable[edge{from, to, trigger}]
	return ok
}

// ExplicitTargets は from から明示的に遷移できる状態を返す
func ExplicitTargets(from Status) []Status {
	var targets []Status
	for _, to := range AllStatuses {
		if Allowed(from, to, TriggerExplicit) {
			targets = append(targets, to)
		}
	}
	return targets
}

// Transition は成立した状態遷移を表す。履歴記録に使用する
type Transition struct {
	From    *Status
	To      Status
	Trigger Trigger
	Comment string
}
