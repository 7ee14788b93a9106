package reservation

// Account は債務判定に必要な予約1件分の情報
type Account struct {
	Status  Status
	Balance Balance
}

// HasDebt は顧客が未払いの債務を持つかを返す。
// pending_payment の予約が1件でもあるか、キャンセル以外で未完済の予約があれば true。
func HasDebt(accounts []Account) bool {
	for _, a := range accounts {
		if a.Status == StatusPendingPayment {
			return true
		}
		if a.Status != StatusCancelled && !a.Balance.IsFullyPaid() {
			return true
		}
	}
	return false
}

// ConsumedHeadcount はキャンセルされていない予約の人数合計を返す
func ConsumedHeadcount(reservations []*Reservation) int {
	total := 0
	for _, r := range reservations {
		if r.IsActive() {
			total += r.Headcount
		}
	}
	return total
}
