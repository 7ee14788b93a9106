package application

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/history"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/payment"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/reservation"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/tourpackage"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/transaction"
	redisinfra "github.com/HaroldHuanca/muhutravel-sub000/internal/infrastructure/redis"
)

// MockTxManager implements transaction.Manager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(transaction.Tx), args.Error(1)
}

// MockTx implements transaction.Tx
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockReservationRepository implements reservation.Repository
type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) Create(ctx context.Context, tx transaction.Tx, r *reservation.Reservation) error {
	args := m.Called(ctx, tx, r)
	return args.Error(0)
}

func (m *MockReservationRepository) GetByID(ctx context.Context, id string) (*reservation.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*reservation.Reservation, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) ListByClient(ctx context.Context, clientID string, limit, offset int) ([]*reservation.Reservation, error) {
	args := m.Called(ctx, clientID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) ListActiveByClient(ctx context.Context, tx transaction.Tx, clientID string) ([]*reservation.Reservation, error) {
	args := m.Called(ctx, tx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) ListActiveByPackage(ctx context.Context, tx transaction.Tx, packageID string) ([]*reservation.Reservation, error) {
	args := m.Called(ctx, tx, packageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) UpdateStatus(ctx context.Context, tx transaction.Tx, r *reservation.Reservation) error {
	args := m.Called(ctx, tx, r)
	return args.Error(0)
}

func (m *MockReservationRepository) ListStale(ctx context.Context, status reservation.Status, expireAfter time.Duration) ([]*reservation.Reservation, error) {
	args := m.Called(ctx, status, expireAfter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) ListByStatuses(ctx context.Context, statuses []reservation.Status) ([]*reservation.Reservation, error) {
	args := m.Called(ctx, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reservation.Reservation), args.Error(1)
}

// MockNumberGenerator implements reservation.NumberGenerator
type MockNumberGenerator struct {
	mock.Mock
}

func (m *MockNumberGenerator) Next(ctx context.Context, tx transaction.Tx) (string, error) {
	args := m.Called(ctx, tx)
	return args.String(0), args.Error(1)
}

// MockPackageRepository implements tourpackage.Repository
type MockPackageRepository struct {
	mock.Mock
}

func (m *MockPackageRepository) Create(ctx context.Context, p *tourpackage.Package) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPackageRepository) GetByID(ctx context.Context, id string) (*tourpackage.Package, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tourpackage.Package), args.Error(1)
}

func (m *MockPackageRepository) GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*tourpackage.Package, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tourpackage.Package), args.Error(1)
}

func (m *MockPackageRepository) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*tourpackage.Package, error) {
	args := m.Called(ctx, activeOnly, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tourpackage.Package), args.Error(1)
}

func (m *MockPackageRepository) Update(ctx context.Context, tx transaction.Tx, p *tourpackage.Package) error {
	args := m.Called(ctx, tx, p)
	return args.Error(0)
}

func (m *MockPackageRepository) HasReservations(ctx context.Context, tx transaction.Tx, id string) (bool, error) {
	args := m.Called(ctx, tx, id)
	return args.Bool(0), args.Error(1)
}

// MockPaymentRepository implements payment.Repository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, tx transaction.Tx, p *payment.Payment) error {
	args := m.Called(ctx, tx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) ListByReservation(ctx context.Context, reservationID string) ([]*payment.Payment, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) SumCompleted(ctx context.Context, tx transaction.Tx, reservationID string) (decimal.Decimal, error) {
	args := m.Called(ctx, tx, reservationID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) SumCompletedByReservations(ctx context.Context, tx transaction.Tx, reservationIDs []string) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, tx, reservationIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

// MockHistoryRepository implements history.Repository
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Create(ctx context.Context, tx transaction.Tx, e *history.Entry) error {
	args := m.Called(ctx, tx, e)
	return args.Error(0)
}

func (m *MockHistoryRepository) ListByReservation(ctx context.Context, reservationID string) ([]*history.Entry, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*history.Entry), args.Error(1)
}

// MockLockManager implements redisinfra.LockManagerInterface
type MockLockManager struct {
	mock.Mock
}

func (m *MockLockManager) AcquireLock(ctx context.Context, key string, ttl time.Duration) (redisinfra.Lock, error) {
	args := m.Called(ctx, key, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(redisinfra.Lock), args.Error(1)
}

func (m *MockLockManager) AcquireLockWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (redisinfra.Lock, error) {
	args := m.Called(ctx, key, ttl, maxRetries, retryDelay)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(redisinfra.Lock), args.Error(1)
}

// MockLock implements redisinfra.Lock
type MockLock struct {
	mock.Mock
}

func (m *MockLock) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockLock) Extend(ctx context.Context, ttl time.Duration) error {
	args := m.Called(ctx, ttl)
	return args.Error(0)
}

// MockCapacityCache implements redisinfra.CapacityCacheInterface
type MockCapacityCache struct {
	mock.Mock
}

func (m *MockCapacityCache) GetAvailableSlots(ctx context.Context, packageID string) (int, error) {
	args := m.Called(ctx, packageID)
	return args.Int(0), args.Error(1)
}

func (m *MockCapacityCache) SetAvailableSlots(ctx context.Context, packageID string, slots int, ttl time.Duration) error {
	args := m.Called(ctx, packageID, slots, ttl)
	return args.Error(0)
}

func (m *MockCapacityCache) Invalidate(ctx context.Context, packageID string) error {
	args := m.Called(ctx, packageID)
	return args.Error(0)
}

// MockPublisher implements EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishStateChanged(ctx context.Context, ev reservation.StateChangedEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *MockPublisher) PublishPaymentReminder(ctx context.Context, ev reservation.PaymentReminderEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

// === Test helper ===

type testDeps struct {
	txManager   *MockTxManager
	tx          *MockTx
	resRepo     *MockReservationRepository
	numbers     *MockNumberGenerator
	pkgRepo     *MockPackageRepository
	paymentRepo *MockPaymentRepository
	historyRepo *MockHistoryRepository
	lockManager *MockLockManager
	lock        *MockLock
	cache       *MockCapacityCache
	publisher   *MockPublisher
	service     *ReservationService
	packages    *PackageService
}

func newTestDeps() *testDeps {
	d := &testDeps{
		txManager:   new(MockTxManager),
		tx:          new(MockTx),
		resRepo:     new(MockReservationRepository),
		numbers:     new(MockNumberGenerator),
		pkgRepo:     new(MockPackageRepository),
		paymentRepo: new(MockPaymentRepository),
		historyRepo: new(MockHistoryRepository),
		lockManager: new(MockLockManager),
		lock:        new(MockLock),
		cache:       new(MockCapacityCache),
		publisher:   new(MockPublisher),
	}

	ledger := NewPaymentLedger(d.paymentRepo)
	recorder := NewHistoryRecorder(d.historyRepo)
	debt := NewDebtChecker(d.resRepo, ledger)
	capacity := NewCapacityTracker(d.resRepo, d.cache, time.Minute)

	d.service = NewReservationService(d.txManager, d.resRepo, d.pkgRepo, d.numbers, ledger, recorder, debt, capacity, d.lockManager).
		WithPublisher(d.publisher)
	d.packages = NewPackageService(d.txManager, d.pkgRepo, capacity)
	return d
}

// expectTx はトランザクションの開始とコミット（またはロールバック）を期待値として設定する
func (d *testDeps) expectTx(ctx context.Context, commit bool) {
	d.txManager.On("Begin", ctx).Return(d.tx, nil)
	d.tx.On("Rollback").Return(nil)
	if commit {
		d.tx.On("Commit").Return(nil)
	}
}

func (d *testDeps) expectPackageLock(ctx context.Context, packageID string) {
	d.lockManager.On("AcquireLockWithRetry", ctx, redisinfra.PackageLockKey(packageID), packageLockTTL, packageLockRetries, packageLockRetryDelay).
		Return(d.lock, nil)
	d.lock.On("Release", ctx).Return(nil)
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func intPtr(v int) *int { return &v }

func regularPackage(id string, price int64, quota int) *tourpackage.Package {
	p := tourpackage.NewRegular("Cusco Clásico", "Cusco", 4, dec(price), quota, 0)
	p.ID = id
	return p
}

func privatePackage(id string, group int64, recommendedMax int, extra int64) *tourpackage.Package {
	p := tourpackage.NewPrivate("Valle Sagrado VIP", "Urubamba", 2, dec(group), recommendedMax, decimal.NewNullDecimal(dec(extra)))
	p.ID = id
	return p
}

func existingReservation(id string, status reservation.Status, total int64) *reservation.Reservation {
	r := reservation.NewReservation("client-1", "pkg-1", nil, 2, dec(total), status, "")
	r.ID = id
	r.Number = "RES-2026-000001"
	return r
}
