package history

import (
	"time"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/reservation"
)

// Entry は予約の状態遷移1件分の監査記録。追記のみ
type Entry struct {
	ID            string
	ReservationID string
	FromStatus    *reservation.Status
	ToStatus      reservation.Status
	Comment       string
	Actor         string
	CreatedAt     time.Time
}

// NewEntry は遷移から履歴エントリを作成する
func NewEntry(reservationID string, t reservation.Transition, actor string) *Entry {
	return &Entry{
		ReservationID: reservationID,
		FromStatus:    t.From,
		ToStatus:      t.To,
		Comment:       t.Comment,
		Actor:         actor,
		CreatedAt:     time.Now(),
	}
}
