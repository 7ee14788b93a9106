package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/application"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/reservation"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/tourpackage"
)

// MockReservationService はReservationServiceInterfaceのモック
type MockReservationService struct {
	mock.Mock
}

func (m *MockReservationService) CreateReservation(ctx context.Context, input application.CreateReservationInput) (*application.CreateReservationResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.CreateReservationResult), args.Error(1)
}

func (m *MockReservationService) GetReservationDetail(ctx context.Context, id string) (*application.ReservationDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.ReservationDetail), args.Error(1)
}

func (m *MockReservationService) RegisterPayment(ctx context.Context, input application.RegisterPaymentInput) (*application.RegisterPaymentResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.RegisterPaymentResult), args.Error(1)
}

func (m *MockReservationService) ChangeReservationState(ctx context.Context, input application.ChangeStateInput) (*reservation.Reservation, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationService) CancelReservation(ctx context.Context, id, comment, actor string) (*reservation.Reservation, error) {
	args := m.Called(ctx, id, comment, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationService) GetClientReservations(ctx context.Context, clientID string, limit, offset int) ([]*reservation.Reservation, error) {
	args := m.Called(ctx, clientID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reservation.Reservation), args.Error(1)
}

func (m *MockReservationService) GetClientDebt(ctx context.Context, clientID string) (*application.DebtStatus, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.DebtStatus), args.Error(1)
}

// MockPackageService はPackageServiceInterfaceのモック
type MockPackageService struct {
	mock.Mock
}

func (m *MockPackageService) CreatePackage(ctx context.Context, input application.PackageInput) (*tourpackage.Package, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tourpackage.Package), args.Error(1)
}

func (m *MockPackageService) GetPackage(ctx context.Context, id string) (*tourpackage.Package, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tourpackage.Package), args.Error(1)
}

func (m *MockPackageService) ListPackages(ctx context.Context, activeOnly bool, limit, offset int) ([]*tourpackage.Package, error) {
	args := m.Called(ctx, activeOnly, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tourpackage.Package), args.Error(1)
}

func (m *MockPackageService) UpdatePackage(ctx context.Context, id string, input application.PackageInput) (*tourpackage.Package, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tourpackage.Package), args.Error(1)
}

func (m *MockPackageService) DeactivatePackage(ctx context.Context, id string) (*tourpackage.Package, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tourpackage.Package), args.Error(1)
}

func (m *MockPackageService) Quote(ctx context.Context, id string, headcount int) (*application.Quote, error) {
	args := m.Called(ctx, id, headcount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.Quote), args.Error(1)
}

func (m *MockPackageService) Availability(ctx context.Context, id string) (*application.Availability, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.Availability), args.Error(1)
}
