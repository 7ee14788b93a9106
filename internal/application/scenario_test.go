package application

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/history"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/payment"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/reservation"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/tourpackage"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/transaction"
)

// memStore はシナリオテスト用のインメモリ実装。全リポジトリを1つのミューテックスで保護する
type memStore struct {
	mu           sync.Mutex
	packages     map[string]*tourpackage.Package
	reservations map[string]*reservation.Reservation
	payments     []*payment.Payment
	history      []*history.Entry
	seq          int64
}

func newMemStore() *memStore {
	return &memStore{
		packages:     make(map[string]*tourpackage.Package),
		reservations: make(map[string]*reservation.Reservation),
	}
}

type memTx struct{}

func (memTx) Commit() error   { return nil }
func (memTx) Rollback() error { return nil }

type memTxManager struct{}

func (memTxManager) Begin(ctx context.Context) (transaction.Tx, error) { return memTx{}, nil }

type memPackageRepo struct{ s *memStore }

func (r memPackageRepo) Create(ctx context.Context, p *tourpackage.Package) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = uuid.NewString()
	cp := *p
	r.s.packages[p.ID] = &cp
	return nil
}

func (r memPackageRepo) GetByID(ctx context.Context, id string) (*tourpackage.Package, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.packages[id]
	if !ok {
		return nil, tourpackage.ErrPackageNotFound
	}
	cp := *p
	return &cp, nil
}

func (r memPackageRepo) GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*tourpackage.Package, error) {
	return r.GetByID(ctx, id)
}

func (r memPackageRepo) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*tourpackage.Package, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*tourpackage.Package
	for _, p := range r.s.packages {
		if activeOnly && !p.Active {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r memPackageRepo) Update(ctx context.Context, tx transaction.Tx, p *tourpackage.Package) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *p
	r.s.packages[p.ID] = &cp
	return nil
}

func (r memPackageRepo) HasReservations(ctx context.Context, tx transaction.Tx, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, res := range r.s.reservations {
		if res.PackageID == id {
			return true, nil
		}
	}
	return false, nil
}

type memReservationRepo struct{ s *memStore }

func (r memReservationRepo) filter(keep func(*reservation.Reservation) bool) []*reservation.Reservation {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*reservation.Reservation
	for _, res := range r.s.reservations {
		if keep(res) {
			cp := *res
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func (r memReservationRepo) Create(ctx context.Context, tx transaction.Tx, res *reservation.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res.ID = uuid.NewString()
	cp := *res
	r.s.reservations[res.ID] = &cp
	return nil
}

func (r memReservationRepo) GetByID(ctx context.Context, id string) (*reservation.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.reservations[id]
	if !ok {
		return nil, reservation.ErrReservationNotFound
	}
	cp := *res
	return &cp, nil
}

func (r memReservationRepo) GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*reservation.Reservation, error) {
	return r.GetByID(ctx, id)
}

func (r memReservationRepo) ListByClient(ctx context.Context, clientID string, limit, offset int) ([]*reservation.Reservation, error) {
	return r.filter(func(res *reservation.Reservation) bool { return res.ClientID == clientID }), nil
}

func (r memReservationRepo) ListActiveByClient(ctx context.Context, tx transaction.Tx, clientID string) ([]*reservation.Reservation, error) {
	return r.filter(func(res *reservation.Reservation) bool { return res.ClientID == clientID && res.IsActive() }), nil
}

func (r memReservationRepo) ListActiveByPackage(ctx context.Context, tx transaction.Tx, packageID string) ([]*reservation.Reservation, error) {
	return r.filter(func(res *reservation.Reservation) bool { return res.PackageID == packageID && res.IsActive() }), nil
}

func (r memReservationRepo) UpdateStatus(ctx context.Context, tx transaction.Tx, res *reservation.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.reservations[res.ID]
	if !ok {
		return reservation.ErrReservationNotFound
	}
	stored.Status = res.Status
	stored.UpdatedAt = res.UpdatedAt
	return nil
}

func (r memReservationRepo) ListStale(ctx context.Context, status reservation.Status, expireAfter time.Duration) ([]*reservation.Reservation, error) {
	cutoff := time.Now().Add(-expireAfter)
	return r.filter(func(res *reservation.Reservation) bool {
		return res.Status == status && !res.CreatedAt.After(cutoff)
	}), nil
}

func (r memReservationRepo) ListByStatuses(ctx context.Context, statuses []reservation.Status) ([]*reservation.Reservation, error) {
	return r.filter(func(res *reservation.Reservation) bool {
		for _, st := range statuses {
			if res.Status == st {
				return true
			}
		}
		return false
	}), nil
}

func (r memReservationRepo) Next(ctx context.Context, tx transaction.Tx) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.seq++
	return reservation.FormatNumber(time.Now().Year(), r.s.seq), nil
}

type memPaymentRepo struct{ s *memStore }

func (r memPaymentRepo) Create(ctx context.Context, tx transaction.Tx, p *payment.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = uuid.NewString()
	cp := *p
	r.s.payments = append(r.s.payments, &cp)
	return nil
}

func (r memPaymentRepo) ListByReservation(ctx context.Context, reservationID string) ([]*payment.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*payment.Payment
	for _, p := range r.s.payments {
		if p.ReservationID == reservationID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memPaymentRepo) SumCompleted(ctx context.Context, tx transaction.Tx, reservationID string) (decimal.Decimal, error) {
	ps, _ := r.ListByReservation(ctx, reservationID)
	return payment.Sum(ps), nil
}

func (r memPaymentRepo) SumCompletedByReservations(ctx context.Context, tx transaction.Tx, ids []string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(ids))
	for _, id := range ids {
		sum, _ := r.SumCompleted(ctx, tx, id)
		out[id] = sum
	}
	return out, nil
}

type memHistoryRepo struct{ s *memStore }

func (r memHistoryRepo) Create(ctx context.Context, tx transaction.Tx, e *history.Entry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e.ID = uuid.NewString()
	cp := *e
	r.s.history = append(r.s.history, &cp)
	return nil
}

func (r memHistoryRepo) ListByReservation(ctx context.Context, reservationID string) ([]*history.Entry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*history.Entry
	for _, e := range r.s.history {
		if e.ReservationID == reservationID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

type scenario struct {
	store        *memStore
	reservations *ReservationService
	packages     *PackageService
}

func newScenario() *scenario {
	s := newMemStore()
	rr := memReservationRepo{s}
	pr := memPackageRepo{s}
	ledger := NewPaymentLedger(memPaymentRepo{s})
	capacity := NewCapacityTracker(rr, nil, 0)
	return &scenario{
		store:        s,
		reservations: NewReservationService(memTxManager{}, rr, pr, rr, ledger, NewHistoryRecorder(memHistoryRepo{s}), NewDebtChecker(rr, ledger), capacity, nil),
		packages:     NewPackageService(memTxManager{}, pr, capacity),
	}
}

func (sc *scenario) regular(t *testing.T, price int64, quota int) *tourpackage.Package {
	t.Helper()
	p, err := sc.packages.CreatePackage(context.Background(), PackageInput{
		Name: "Cusco Clásico", Destination: "Cusco", DurationDays: 4,
		Type: tourpackage.TypeRegular, PricePerPerson: decPtr(price), Quota: intPtr(quota),
	})
	require.NoError(t, err)
	return p
}

func (sc *scenario) pay(t *testing.T, id string, amount int64) *RegisterPaymentResult {
	t.Helper()
	res, err := sc.reservations.RegisterPayment(context.Background(), RegisterPaymentInput{
		ReservationID: id,
		Amount:        PaymentInput{Amount: dec(amount), Method: payment.MethodCash},
		Actor:         "emp-1",
	})
	require.NoError(t, err)
	return res
}

func TestScenario_RegularLifecycle(t *testing.T) {
	sc := newScenario()
	ctx := context.Background()
	pkg := sc.regular(t, 100, 10)

	created, err := sc.reservations.CreateReservation(ctx, CreateReservationInput{
		ClientID: "client-1", PackageID: pkg.ID, Headcount: 2, Actor: "emp-1",
	})
	require.NoError(t, err)
	res := created.Reservation
	assert.True(t, dec(200).Equal(res.TotalPrice))
	assert.Equal(t, reservation.StatusPendingPayment, res.Status)

	r1 := sc.pay(t, res.ID, 60)
	assert.Equal(t, reservation.StatusConfirmed, r1.Reservation.Status)

	_, err = sc.reservations.ChangeReservationState(ctx, ChangeStateInput{ReservationID: res.ID, Target: reservation.StatusInService})
	assert.ErrorIs(t, err, reservation.ErrIncompletePayment)

	r2 := sc.pay(t, res.ID, 140)
	assert.True(t, dec(200).Equal(r2.Balance.Paid))
	assert.Equal(t, reservation.StatusConfirmed, r2.Reservation.Status)

	got, err := sc.reservations.ChangeReservationState(ctx, ChangeStateInput{ReservationID: res.ID, Target: reservation.StatusInService})
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusInService, got.Status)

	got, err = sc.reservations.ChangeReservationState(ctx, ChangeStateInput{ReservationID: res.ID, Target: reservation.StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusCompleted, got.Status)

	t.Run("履歴は遷移ごとに1件ずつ時系列で残る", func(t *testing.T) {
		detail, err := sc.reservations.GetReservationDetail(ctx, res.ID)
		require.NoError(t, err)

		want := []struct {
			from *reservation.Status
			to   reservation.Status
		}{
			{nil, reservation.StatusPendingPayment},
			{statusPtr(reservation.StatusPendingPayment), reservation.StatusConfirmed},
			{statusPtr(reservation.StatusConfirmed), reservation.StatusInService},
			{statusPtr(reservation.StatusInService), reservation.StatusCompleted},
		}
		require.Len(t, detail.History, len(want))
		for i, w := range want {
			assert.Equal(t, w.from, detail.History[i].FromStatus, "entry %d", i)
			assert.Equal(t, w.to, detail.History[i].ToStatus, "entry %d", i)
		}
		assert.Len(t, detail.Payments, 2)
		assert.Empty(t, detail.AllowedTransitions)
	})

	t.Run("完了後は支払いを受け付けない", func(t *testing.T) {
		_, err := sc.reservations.RegisterPayment(ctx, RegisterPaymentInput{
			ReservationID: res.ID,
			Amount:        PaymentInput{Amount: dec(1), Method: payment.MethodCash},
		})
		assert.ErrorIs(t, err, payment.ErrPaymentNotAllowed)
	})
}

func TestScenario_CapacityMonotonicity(t *testing.T) {
	tests := []struct {
		quota, prior, k int
	}{
		{10, 0, 2},
		{10, 3, 4},
		{5, 4, 1},
		{1, 0, 1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("Q=%d_C=%d_K=%d", tt.quota, tt.prior, tt.k), func(t *testing.T) {
			sc := newScenario()
			ctx := context.Background()
			pkg := sc.regular(t, 100, tt.quota)

			if tt.prior > 0 {
				_, err := sc.reservations.CreateReservation(ctx, CreateReservationInput{
					ClientID: "prior", PackageID: pkg.ID, Headcount: tt.prior, Policy: reservation.PolicyDraft,
				})
				require.NoError(t, err)
			}
			before, err := sc.packages.Availability(ctx, pkg.ID)
			require.NoError(t, err)

			_, err = sc.reservations.CreateReservation(ctx, CreateReservationInput{
				ClientID: "client-k", PackageID: pkg.ID, Headcount: tt.k, Policy: reservation.PolicyDraft,
			})
			require.NoError(t, err)

			after, err := sc.packages.Availability(ctx, pkg.ID)
			require.NoError(t, err)
			assert.Equal(t, before.Available-tt.k, after.Available)

			_, err = sc.reservations.CreateReservation(ctx, CreateReservationInput{
				ClientID: "client-next", PackageID: pkg.ID, Headcount: tt.quota - tt.prior - tt.k + 1,
			})
			assert.ErrorIs(t, err, tourpackage.ErrCapacityExceeded)
		})
	}
}

func TestScenario_CancellationFreesCapacity(t *testing.T) {
	sc := newScenario()
	ctx := context.Background()
	pkg := sc.regular(t, 100, 1)

	first, err := sc.reservations.CreateReservation(ctx, CreateReservationInput{ClientID: "a", PackageID: pkg.ID, Headcount: 1})
	require.NoError(t, err)
	_, err = sc.reservations.CreateReservation(ctx, CreateReservationInput{ClientID: "b", PackageID: pkg.ID, Headcount: 1})
	require.ErrorIs(t, err, tourpackage.ErrCapacityExceeded)

	_, err = sc.reservations.CancelReservation(ctx, first.Reservation.ID, "", "emp-1")
	require.NoError(t, err)

	_, err = sc.reservations.CreateReservation(ctx, CreateReservationInput{ClientID: "b", PackageID: pkg.ID, Headcount: 1})
	assert.NoError(t, err)
}

func TestScenario_DebtGate(t *testing.T) {
	sc := newScenario()
	ctx := context.Background()
	pkg := sc.regular(t, 100, 10)

	first, err := sc.reservations.CreateReservation(ctx, CreateReservationInput{ClientID: "client-1", PackageID: pkg.ID, Headcount: 1})
	require.NoError(t, err)
	require.Equal(t, reservation.StatusPendingPayment, first.Reservation.Status)

	_, err = sc.reservations.CreateReservation(ctx, CreateReservationInput{ClientID: "client-1", PackageID: pkg.ID, Headcount: 1})
	assert.ErrorIs(t, err, reservation.ErrClientHasOutstandingDebt)

	t.Run("別の顧客には影響しない", func(t *testing.T) {
		_, err := sc.reservations.CreateReservation(ctx, CreateReservationInput{ClientID: "client-2", PackageID: pkg.ID, Headcount: 1})
		assert.NoError(t, err)
	})

	t.Run("一部入金で確定しても残高があれば拒否", func(t *testing.T) {
		sc.pay(t, first.Reservation.ID, 30)
		_, err := sc.reservations.CreateReservation(ctx, CreateReservationInput{ClientID: "client-1", PackageID: pkg.ID, Headcount: 1})
		assert.ErrorIs(t, err, reservation.ErrClientHasOutstandingDebt)
	})

	t.Run("完済後は作成できる", func(t *testing.T) {
		sc.pay(t, first.Reservation.ID, 70)
		_, err := sc.reservations.CreateReservation(ctx, CreateReservationInput{ClientID: "client-1", PackageID: pkg.ID, Headcount: 1})
		assert.NoError(t, err)
	})
}

func TestScenario_PrivatePackageIgnoresCapacity(t *testing.T) {
	sc := newScenario()
	ctx := context.Background()
	pkg, err := sc.packages.CreatePackage(ctx, PackageInput{
		Name: "Valle Sagrado VIP", Destination: "Urubamba", DurationDays: 2,
		Type: tourpackage.TypePrivate, GroupPrice: decPtr(500), RecommendedMax: intPtr(4), ExtraPersonPrice: decPtr(50),
	})
	require.NoError(t, err)

	for i, headcount := range []int{6, 12, 40} {
		res, err := sc.reservations.CreateReservation(ctx, CreateReservationInput{
			ClientID: fmt.Sprintf("client-%d", i), PackageID: pkg.ID, Headcount: headcount,
		})
		require.NoError(t, err)
		want := dec(500).Add(dec(50).Mul(decimal.NewFromInt(int64(headcount - 4))))
		assert.True(t, want.Equal(res.Reservation.TotalPrice))
	}
}

func TestScenario_TotalAboveStorableRangeRejected(t *testing.T) {
	sc := newScenario()
	ctx := context.Background()
	pkg, err := sc.packages.CreatePackage(ctx, PackageInput{
		Name: "Charter", Destination: "Lima", DurationDays: 1,
		Type: tourpackage.TypePrivate, GroupPrice: decPtr(500), RecommendedMax: intPtr(1), ExtraPersonPrice: decPtr(9_000_000_000),
	})
	require.NoError(t, err)

	_, err = sc.reservations.CreateReservation(ctx, CreateReservationInput{
		ClientID: "client-1", PackageID: pkg.ID, Headcount: 3,
	})

	assert.ErrorIs(t, err, reservation.ErrInvalidTotal)
	assert.Empty(t, sc.store.reservations)
}

func TestScenario_ExpirySweep(t *testing.T) {
	sc := newScenario()
	ctx := context.Background()
	pkg := sc.regular(t, 100, 10)

	unpaid, err := sc.reservations.CreateReservation(ctx, CreateReservationInput{ClientID: "a", PackageID: pkg.ID, Headcount: 1})
	require.NoError(t, err)
	partly, err := sc.reservations.CreateReservation(ctx, CreateReservationInput{ClientID: "b", PackageID: pkg.ID, Headcount: 1})
	require.NoError(t, err)
	sc.pay(t, partly.Reservation.ID, 10)

	// 作成日時を過去にずらす
	sc.store.mu.Lock()
	for _, r := range sc.store.reservations {
		r.CreatedAt = time.Now().Add(-48 * time.Hour)
	}
	sc.store.mu.Unlock()

	count, err := sc.reservations.CancelExpiredReservations(ctx, reservation.StatusPendingPayment, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := sc.reservations.GetReservationDetail(ctx, unpaid.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusCancelled, got.Reservation.Status)
	require.Len(t, got.History, 2)
	assert.Equal(t, SystemActor, got.History[1].Actor)

	kept, err := sc.reservations.GetReservationDetail(ctx, partly.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusPendingPayment, kept.Reservation.Status)
}
