package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/application"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/history"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/payment"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/reservation"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/tourpackage"
)

// 金額は小数点以下2桁の文字列で返す
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func nullMoney(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := money(d.Decimal)
	return &s
}

type PackageResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Destination      string    `json:"destination"`
	DurationDays     int       `json:"duration_days"`
	Type             string    `json:"type" example:"regular"`
	Active           bool      `json:"active"`
	PricePerPerson   *string   `json:"price_per_person,omitempty" example:"200.00"`
	Quota            *int      `json:"quota,omitempty"`
	MinQuota         *int      `json:"min_quota,omitempty"`
	GroupPrice       *string   `json:"group_price,omitempty"`
	RecommendedMax   *int      `json:"recommended_max,omitempty"`
	ExtraPersonPrice *string   `json:"extra_person_price,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func toPackageResponse(p *tourpackage.Package) PackageResponse {
	return PackageResponse{
		ID: p.ID, Name: p.Name, Destination: p.Destination,
		DurationDays: p.DurationDays, Type: string(p.Type), Active: p.Active,
		PricePerPerson: nullMoney(p.PricePerPerson), Quota: p.Quota, MinQuota: p.MinQuota,
		GroupPrice: nullMoney(p.GroupPrice), RecommendedMax: p.RecommendedMax,
		ExtraPersonPrice: nullMoney(p.ExtraPersonPrice),
		CreatedAt:        p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
}

type AvailabilityResponse struct {
	PackageID string `json:"package_id"`
	Limited   bool   `json:"limited"`
	Quota     int    `json:"quota,omitempty"`
	Available int    `json:"available,omitempty"`
}

func toAvailabilityResponse(a *application.Availability) *AvailabilityResponse {
	if a == nil {
		return nil
	}
	return &AvailabilityResponse{PackageID: a.PackageID, Limited: a.Limited, Quota: a.Quota, Available: a.Available}
}

type QuoteResponse struct {
	PackageID    string                `json:"package_id"`
	Headcount    int                   `json:"headcount"`
	Total        string                `json:"total" example:"600.00"`
	Fits         bool                  `json:"fits"`
	Availability *AvailabilityResponse `json:"availability,omitempty"`
}

type ReservationResponse struct {
	ID         string    `json:"id"`
	Number     string    `json:"reservation_number" example:"RES-2025-000001"`
	ClientID   string    `json:"client_id"`
	PackageID  string    `json:"package_id"`
	EmployeeID *string   `json:"employee_id,omitempty"`
	Headcount  int       `json:"headcount"`
	TotalPrice string    `json:"total_price" example:"600.00"`
	Status     string    `json:"status" example:"pending_payment"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toReservationResponse(r *reservation.Reservation) ReservationResponse {
	return ReservationResponse{
		ID: r.ID, Number: r.Number, ClientID: r.ClientID, PackageID: r.PackageID,
		EmployeeID: r.EmployeeID, Headcount: r.Headcount, TotalPrice: money(r.TotalPrice),
		Status: string(r.Status), Comment: r.Comment,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type BalanceResponse struct {
	Total       string `json:"total"`
	Paid        string `json:"paid"`
	Outstanding string `json:"outstanding"`
	FullyPaid   bool   `json:"fully_paid"`
}

func toBalanceResponse(b reservation.Balance) BalanceResponse {
	return BalanceResponse{
		Total: money(b.Total), Paid: money(b.Paid),
		Outstanding: money(b.Outstanding()), FullyPaid: b.IsFullyPaid(),
	}
}

type PaymentResponse struct {
	ID            string    `json:"id"`
	ReservationID string    `json:"reservation_id"`
	Amount        string    `json:"amount" example:"60.00"`
	Method        string    `json:"method" example:"cash"`
	Notes         string    `json:"notes,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func toPaymentResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID: p.ID, ReservationID: p.ReservationID, Amount: money(p.Amount),
		Method: string(p.Method), Notes: p.Notes, Status: string(p.Status), CreatedAt: p.CreatedAt,
	}
}

type HistoryResponse struct {
	From      *string   `json:"from,omitempty"`
	To        string    `json:"to"`
	Comment   string    `json:"comment,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toHistoryResponse(e *history.Entry) HistoryResponse {
	var from *string
	if e.FromStatus != nil {
		s := string(*e.FromStatus)
		from = &s
	}
	return HistoryResponse{From: from, To: string(e.ToStatus), Comment: e.Comment, Actor: e.Actor, CreatedAt: e.CreatedAt}
}

type CreateReservationResponse struct {
	Reservation ReservationResponse `json:"reservation"`
	Payment     *PaymentResponse    `json:"payment,omitempty"`
	Balance     BalanceResponse     `json:"balance"`
}

type RegisterPaymentResponse struct {
	Payment      PaymentResponse     `json:"payment"`
	Reservation  ReservationResponse `json:"reservation"`
	Balance      BalanceResponse     `json:"balance"`
	Transitioned bool                `json:"transitioned"`
}

type ReservationDetailResponse struct {
	Reservation        ReservationResponse `json:"reservation"`
	Package            *PackageResponse    `json:"package,omitempty"`
	Payments           []PaymentResponse   `json:"payments"`
	History            []HistoryResponse   `json:"history"`
	Balance            BalanceResponse     `json:"balance"`
	AllowedTransitions []string            `json:"allowed_transitions"`
}

func toReservationDetailResponse(d *application.ReservationDetail) ReservationDetailResponse {
	resp := ReservationDetailResponse{
		Reservation:        toReservationResponse(d.Reservation),
		Payments:           make([]PaymentResponse, len(d.Payments)),
		History:            make([]HistoryResponse, len(d.History)),
		Balance:            toBalanceResponse(d.Balance),
		AllowedTransitions: make([]string, len(d.AllowedTransitions)),
	}
	if d.Package != nil {
		p := toPackageResponse(d.Package)
		resp.Package = &p
	}
	for i, p := range d.Payments {
		resp.Payments[i] = toPaymentResponse(p)
	}
	for i, e := range d.History {
		resp.History[i] = toHistoryResponse(e)
	}
	for i, s := range d.AllowedTransitions {
		resp.AllowedTransitions[i] = string(s)
	}
	return resp
}

type DebtItemResponse struct {
	Reservation ReservationResponse `json:"reservation"`
	Balance     BalanceResponse     `json:"balance"`
}

type DebtResponse struct {
	ClientID    string             `json:"client_id"`
	HasDebt     bool               `json:"has_debt"`
	Outstanding string             `json:"outstanding"`
	Items       []DebtItemResponse `json:"items"`
}

func toDebtResponse(d *application.DebtStatus) DebtResponse {
	resp := DebtResponse{
		ClientID: d.ClientID, HasDebt: d.HasDebt, Outstanding: money(d.Outstanding),
		Items: make([]DebtItemResponse, len(d.Items)),
	}
	for i, item := range d.Items {
		resp.Items[i] = DebtItemResponse{Reservation: toReservationResponse(item.Reservation), Balance: toBalanceResponse(item.Balance)}
	}
	return resp
}
