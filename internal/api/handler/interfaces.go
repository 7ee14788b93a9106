package handler

import (
	"context"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/application"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/reservation"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/tourpackage"
)

// PackageServiceInterface はパッケージサービスのインターフェース
type PackageServiceInterface interface {
	CreatePackage(ctx context.Context, input application.PackageInput) (*tourpackage.Package, error)
	GetPackage(ctx context.Context, id string) (*tourpackage.Package, error)
	ListPackages(ctx context.Context, activeOnly bool, limit, offset int) ([]*tourpackage.Package, error)
	UpdatePackage(ctx context.Context, id string, input application.PackageInput) (*tourpackage.Package, error)
	DeactivatePackage(ctx context.Context, id string) (*tourpackage.Package, error)
	Quote(ctx context.Context, id string, headcount int) (*application.Quote, error)
	Availability(ctx context.Context, id string) (*application.Availability, error)
}

// ReservationServiceInterface は予約サービスのインターフェース
type ReservationServiceInterface interface {
	CreateReservation(ctx context.Context, input application.CreateReservationInput) (*application.CreateReservationResult, error)
	GetReservationDetail(ctx context.Context, id string) (*application.ReservationDetail, error)
	RegisterPayment(ctx context.Context, input application.RegisterPaymentInput) (*application.RegisterPaymentResult, error)
	ChangeReservationState(ctx context.Context, input application.ChangeStateInput) (*reservation.Reservation, error)
	CancelReservation(ctx context.Context, id, comment, actor string) (*reservation.Reservation, error)
	GetClientReservations(ctx context.Context, clientID string, limit, offset int) ([]*reservation.Reservation, error)
	GetClientDebt(ctx context.Context, clientID string) (*application.DebtStatus, error)
}

var (
	_ PackageServiceInterface     = (*application.PackageService)(nil)
	_ ReservationServiceInterface = (*application.ReservationService)(nil)
)
