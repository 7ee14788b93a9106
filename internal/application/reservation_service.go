package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/history"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/payment"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/reservation"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/tourpackage"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/transaction"
	redisinfra "github.com/HaroldHuanca/muhutravel-sub000/internal/infrastructure/redis"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/pkg/logger"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/pkg/metrics"
)

const (
	packageLockTTL        = 10 * time.Second
	packageLockRetries    = 3
	packageLockRetryDelay = 100 * time.Millisecond

	// SystemActor は定期ジョブによる遷移の実行者
	SystemActor = "system"
)

type ReservationService struct {
	txManager       transaction.Manager
	reservationRepo reservation.Repository
	packageRepo     tourpackage.Repository
	numbers         reservation.NumberGenerator
	ledger          *PaymentLedger
	recorder        *HistoryRecorder
	debt            *DebtChecker
	capacity        *CapacityTracker
	lockManager     redisinfra.LockManagerInterface
	lockTTL         time.Duration
	publisher       EventPublisher
	metrics         *metrics.Metrics
}

func NewReservationService(
	txm transaction.Manager,
	rr reservation.Repository,
	pr tourpackage.Repository,
	numbers reservation.NumberGenerator,
	ledger *PaymentLedger,
	recorder *HistoryRecorder,
	debt *DebtChecker,
	capacity *CapacityTracker,
	lm redisinfra.LockManagerInterface,
) *ReservationService {
	return &ReservationService{
		txManager:       txm,
		reservationRepo: rr,
		packageRepo:     pr,
		numbers:         numbers,
		ledger:          ledger,
		recorder:        recorder,
		debt:            debt,
		capacity:        capacity,
		lockManager:     lm,
		lockTTL:         packageLockTTL,
	}
}

// WithPublisher はコミット後のイベント送信先を設定する
func (s *ReservationService) WithPublisher(p EventPublisher) *ReservationService {
	s.publisher = p
	return s
}

// WithLockTTL はパッケージロックの有効期限を変更する
func (s *ReservationService) WithLockTTL(ttl time.Duration) *ReservationService {
	if ttl > 0 {
		s.lockTTL = ttl
	}
	return s
}

// WithMetrics はメトリクスを設定する
func (s *ReservationService) WithMetrics(m *metrics.Metrics) *ReservationService {
	s.metrics = m
	return s
}

type CreateReservationInput struct {
	ClientID       string
	PackageID      string
	EmployeeID     *string
	Headcount      int
	Policy         reservation.InitialPolicy
	InitialPayment *PaymentInput
	Comment        string
	Actor          string
}

type CreateReservationResult struct {
	Reservation *reservation.Reservation
	Payment     *payment.Payment
	Balance     reservation.Balance
}

// CreateReservation は債務チェック、料金計算、定員チェックを経て予約を作成する
func (s *ReservationService) CreateReservation(ctx context.Context, input CreateReservationInput) (*CreateReservationResult, error) {
	result, err := s.createReservation(ctx, input)
	s.metrics.ObserveReservation(creationOutcome(err))
	if err != nil {
		return nil, err
	}

	res := result.Reservation
	logger.Info("予約を作成しました",
		logger.ReservationID(res.ID),
		zap.String("number", res.Number),
		logger.ClientID(res.ClientID),
		zap.String("status", string(res.Status)),
		zap.String("total", res.TotalPrice.StringFixed(2)),
	)
	s.capacity.Invalidate(ctx, res.PackageID)
	s.afterTransition(ctx, res, res.Created(), input.Actor)
	return result, nil
}

func (s *ReservationService) createReservation(ctx context.Context, input CreateReservationInput) (*CreateReservationResult, error) {
	if input.ClientID == "" {
		return nil, reservation.ErrClientIDRequired
	}
	if input.PackageID == "" {
		return nil, reservation.ErrPackageIDRequired
	}
	if input.Headcount < 1 {
		return nil, reservation.ErrInvalidHeadcount
	}
	if input.InitialPayment != nil {
		if err := payment.ValidateAmount(input.InitialPayment.Amount); err != nil {
			return nil, err
		}
	}

	// 同一パッケージへの作成を直列化する（DBの行ロックと併用）
	if s.lockManager != nil {
		start := time.Now()
		lock, err := s.lockManager.AcquireLockWithRetry(ctx, redisinfra.PackageLockKey(input.PackageID),
			s.lockTTL, packageLockRetries, packageLockRetryDelay)
		s.metrics.ObserveLock("acquire", start, err)
		if err != nil {
			if errors.Is(err, redisinfra.ErrLockNotAcquired) {
				return nil, ErrPackageBusy
			}
			return nil, fmt.Errorf("ロック取得に失敗: %w", err)
		}
		defer func() {
			start := time.Now()
			err := lock.Release(ctx)
			s.metrics.ObserveLock("release", start, err)
			if err != nil {
				logger.Warn("ロック解放に失敗", logger.PackageID(input.PackageID), zap.Error(err))
			}
		}()
	}

	result := &CreateReservationResult{}
	err := transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		hasDebt, err := s.debt.HasDebt(ctx, tx, input.ClientID)
		if err != nil {
			return err
		}
		if hasDebt {
			return reservation.ErrClientHasOutstandingDebt
		}

		pkg, err := s.packageRepo.GetByIDForUpdate(ctx, tx, input.PackageID)
		if err != nil {
			return err
		}
		if !pkg.Active {
			return tourpackage.ErrPackageInactive
		}
		total, err := pkg.ComputeTotal(input.Headcount)
		if err != nil {
			return err
		}
		if err := s.capacity.Check(ctx, tx, pkg, input.Headcount); err != nil {
			return err
		}

		initialPaid := decimal.Zero
		if input.InitialPayment != nil {
			initialPaid = input.InitialPayment.Amount
		}
		status, err := reservation.InitialStatus(input.Policy, total, initialPaid)
		if err != nil {
			return err
		}

		res := reservation.NewReservation(input.ClientID, pkg.ID, input.EmployeeID, input.Headcount, total, status, input.Comment)
		if err := res.Validate(); err != nil {
			return err
		}
		number, err := s.numbers.Next(ctx, tx)
		if err != nil {
			return fmt.Errorf("予約番号の発行に失敗: %w", err)
		}
		res.Number = number
		if err := s.reservationRepo.Create(ctx, tx, res); err != nil {
			return err
		}

		result.Balance = res.Balance(initialPaid)
		if input.InitialPayment != nil {
			p, b, err := s.ledger.Register(ctx, tx, res, *input.InitialPayment)
			if err != nil {
				return err
			}
			result.Payment = p
			result.Balance = b
		}

		if _, err := s.recorder.Record(ctx, tx, res, res.Created(), input.Actor); err != nil {
			return err
		}
		result.Reservation = res
		return nil
	})
	if err != nil {
		logCreationFailure(input, err)
		return nil, err
	}
	return result, nil
}

type RegisterPaymentInput struct {
	ReservationID string
	Amount        PaymentInput
	Actor         string
}

type RegisterPaymentResult struct {
	Payment      *payment.Payment
	Reservation  *reservation.Reservation
	Balance      reservation.Balance
	Transitioned bool
}

// RegisterPayment は支払いを追記し、入金割合に応じて自動遷移させる
func (s *ReservationService) RegisterPayment(ctx context.Context, input RegisterPaymentInput) (*RegisterPaymentResult, error) {
	if err := payment.ValidateAmount(input.Amount.Amount); err != nil {
		s.metrics.ObservePayment("invalid")
		return nil, err
	}

	result := &RegisterPaymentResult{}
	var tr reservation.Transition
	err := transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		res, err := s.reservationRepo.GetByIDForUpdate(ctx, tx, input.ReservationID)
		if err != nil {
			return err
		}
		if !res.Status.AcceptsPayments() {
			return fmt.Errorf("状態 %s: %w", res.Status, payment.ErrPaymentNotAllowed)
		}

		p, b, err := s.ledger.Register(ctx, tx, res, input.Amount)
		if err != nil {
			return err
		}

		t, changed := res.ApplyPayment(b)
		if changed {
			if err := s.reservationRepo.UpdateStatus(ctx, tx, res); err != nil {
				return err
			}
			if _, err := s.recorder.Record(ctx, tx, res, t, input.Actor); err != nil {
				return err
			}
			tr = t
		}

		result.Payment = p
		result.Reservation = res
		result.Balance = b
		result.Transitioned = changed
		return nil
	})
	s.metrics.ObservePayment(paymentOutcome(err))
	if err != nil {
		logger.Warn("支払い登録に失敗", logger.ReservationID(input.ReservationID), zap.Error(err))
		return nil, err
	}

	logger.Info("支払いを登録しました",
		logger.ReservationID(input.ReservationID),
		zap.String("amount", result.Payment.Amount.StringFixed(2)),
		zap.String("paid", result.Balance.Paid.StringFixed(2)),
		zap.Bool("transitioned", result.Transitioned),
	)
	if result.Transitioned {
		s.afterTransition(ctx, result.Reservation, tr, input.Actor)
	}
	return result, nil
}

type ChangeStateInput struct {
	ReservationID string
	Target        reservation.Status
	Comment       string
	Actor         string
}

// ChangeReservationState は明示的な状態変更を行う
func (s *ReservationService) ChangeReservationState(ctx context.Context, input ChangeStateInput) (*reservation.Reservation, error) {
	var res *reservation.Reservation
	var tr reservation.Transition
	err := transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		r, err := s.reservationRepo.GetByIDForUpdate(ctx, tx, input.ReservationID)
		if err != nil {
			return err
		}
		b, err := s.ledger.Balance(ctx, tx, r)
		if err != nil {
			return err
		}
		t, err := r.ChangeStatus(input.Target, b, input.Comment)
		if err != nil {
			return err
		}
		if err := s.reservationRepo.UpdateStatus(ctx, tx, r); err != nil {
			return err
		}
		if _, err := s.recorder.Record(ctx, tx, r, t, input.Actor); err != nil {
			return err
		}
		res, tr = r, t
		return nil
	})
	if err != nil {
		logger.Info("状態変更を拒否しました",
			logger.ReservationID(input.ReservationID),
			zap.String("target", string(input.Target)),
			zap.Error(err),
		)
		return nil, err
	}

	if res.Status == reservation.StatusCancelled {
		s.capacity.Invalidate(ctx, res.PackageID)
	}
	s.afterTransition(ctx, res, tr, input.Actor)
	return res, nil
}

// CancelReservation は予約をキャンセルする
func (s *ReservationService) CancelReservation(ctx context.Context, id, comment, actor string) (*reservation.Reservation, error) {
	return s.ChangeReservationState(ctx, ChangeStateInput{
		ReservationID: id,
		Target:        reservation.StatusCancelled,
		Comment:       comment,
		Actor:         actor,
	})
}

// ReservationDetail は予約と関連データの読み取り専用ビュー
type ReservationDetail struct {
	Reservation        *reservation.Reservation
	Package            *tourpackage.Package
	Payments           []*payment.Payment
	History            []*history.Entry
	Balance            reservation.Balance
	AllowedTransitions []reservation.Status
}

// GetReservationDetail は予約・支払い・履歴をまとめて返す
func (s *ReservationService) GetReservationDetail(ctx context.Context, id string) (*ReservationDetail, error) {
	res, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	pkg, err := s.packageRepo.GetByID(ctx, res.PackageID)
	if err != nil {
		return nil, fmt.Errorf("パッケージ取得に失敗: %w", err)
	}
	payments, b, err := s.ledger.Statement(ctx, res)
	if err != nil {
		return nil, err
	}
	entries, err := s.recorder.List(ctx, res.ID)
	if err != nil {
		return nil, fmt.Errorf("履歴取得に失敗: %w", err)
	}
	return &ReservationDetail{
		Reservation:        res,
		Package:            pkg,
		Payments:           payments,
		History:            entries,
		Balance:            b,
		AllowedTransitions: reservation.ExplicitTargets(res.Status),
	}, nil
}

func (s *ReservationService) GetClientReservations(ctx context.Context, clientID string, limit, offset int) ([]*reservation.Reservation, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.reservationRepo.ListByClient(ctx, clientID, limit, offset)
}

// GetClientDebt は顧客の債務状況を返す
func (s *ReservationService) GetClientDebt(ctx context.Context, clientID string) (*DebtStatus, error) {
	return s.debt.Status(ctx, clientID)
}

// CancelExpiredReservations は status のまま expireAfter 以上経過した予約を自動キャンセルする。
// 1件の失敗で全体を止めず、キャンセルできた件数を返す。
func (s *ReservationService) CancelExpiredReservations(ctx context.Context, status reservation.Status, expireAfter time.Duration) (int, error) {
	stale, err := s.reservationRepo.ListStale(ctx, status, expireAfter)
	if err != nil {
		return 0, fmt.Errorf("期限切れ予約の取得に失敗: %w", err)
	}

	count := 0
	for _, r := range stale {
		ok, err := s.expireOne(ctx, r.ID, expireAfter)
		if err != nil {
			logger.Error("期限切れ予約のキャンセルに失敗", logger.ReservationID(r.ID), zap.Error(err))
			continue
		}
		if ok {
			count++
		}
	}
	s.metrics.ObserveExpired(string(status), count)
	return count, nil
}

func (s *ReservationService) expireOne(ctx context.Context, id string, expireAfter time.Duration) (bool, error) {
	var res *reservation.Reservation
	var tr reservation.Transition
	err := transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		r, err := s.reservationRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		b, err := s.ledger.Balance(ctx, tx, r)
		if err != nil {
			return err
		}
		t, err := r.Expire(expireAfter, b, time.Now())
		if err != nil {
			return err
		}
		if err := s.reservationRepo.UpdateStatus(ctx, tx, r); err != nil {
			return err
		}
		if _, err := s.recorder.Record(ctx, tx, r, t, SystemActor); err != nil {
			return err
		}
		res, tr = r, t
		return nil
	})
	if errors.Is(err, reservation.ErrNotExpirable) {
		// 取得後に入金や状態変更があった
		logger.Debug("期限切れ対象外", logger.ReservationID(id), zap.Error(err))
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.capacity.Invalidate(ctx, res.PackageID)
	s.afterTransition(ctx, res, tr, SystemActor)
	return true, nil
}

// SendPaymentReminders は残高のある予約に入金催促イベントを送り、対象件数を返す
func (s *ReservationService) SendPaymentReminders(ctx context.Context) (int, error) {
	rs, err := s.reservationRepo.ListByStatuses(ctx, []reservation.Status{
		reservation.StatusPendingPayment,
		reservation.StatusConfirmed,
		reservation.StatusInService,
	})
	if err != nil {
		return 0, fmt.Errorf("催促対象の取得に失敗: %w", err)
	}
	balances, err := s.ledger.Balances(ctx, nil, rs)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, r := range rs {
		b := balances[r.ID]
		if b.IsFullyPaid() {
			continue
		}
		count++
		ev := reservation.NewPaymentReminderEvent(r, b)
		if s.publisher == nil {
			logger.Info("入金催促対象", logger.ReservationID(r.ID), zap.String("outstanding", ev.Outstanding.StringFixed(2)))
			continue
		}
		if err := s.publisher.PublishPaymentReminder(ctx, ev); err != nil {
			logger.Warn("入金催促の送信に失敗", logger.ReservationID(r.ID), zap.Error(err))
			continue
		}
		s.metrics.ObserveReminder()
	}
	return count, nil
}

// afterTransition はコミット済みの遷移をメトリクスとイベントに反映する
func (s *ReservationService) afterTransition(ctx context.Context, res *reservation.Reservation, t reservation.Transition, actor string) {
	from := ""
	if t.From != nil {
		from = string(*t.From)
	}
	s.metrics.ObserveTransition(from, string(t.To), string(t.Trigger))

	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishStateChanged(ctx, reservation.NewStateChangedEvent(res, t, actor)); err != nil {
		logger.Warn("状態変更イベントの送信に失敗", logger.ReservationID(res.ID), zap.Error(err))
	}
}

func logCreationFailure(input CreateReservationInput, err error) {
	fields := []zap.Field{logger.ClientID(input.ClientID), logger.PackageID(input.PackageID), zap.Error(err)}
	switch creationOutcome(err) {
	case "error":
		logger.Error("予約作成に失敗", fields...)
	default:
		logger.Info("予約作成を拒否しました", fields...)
	}
}

func creationOutcome(err error) string {
	switch {
	case err == nil:
		return "created"
	case errors.Is(err, reservation.ErrClientHasOutstandingDebt):
		return "debt"
	case errors.Is(err, tourpackage.ErrCapacityExceeded):
		return "capacity"
	case errors.Is(err, ErrPackageBusy):
		return "lock_failed"
	case errors.Is(err, tourpackage.ErrPackageNotFound),
		errors.Is(err, tourpackage.ErrPackageInactive),
		errors.Is(err, reservation.ErrInvalidInitialPolicy),
		errors.Is(err, reservation.ErrInvalidHeadcount),
		errors.Is(err, reservation.ErrClientIDRequired),
		errors.Is(err, reservation.ErrPackageIDRequired),
		errors.Is(err, payment.ErrInvalidAmount),
		errors.Is(err, payment.ErrOverpaymentNotAllowed):
		return "rejected"
	default:
		return "error"
	}
}

func paymentOutcome(err error) string {
	switch {
	case err == nil:
		return "registered"
	case errors.Is(err, payment.ErrOverpaymentNotAllowed):
		return "overpayment"
	case errors.Is(err, payment.ErrPaymentNotAllowed):
		return "not_allowed"
	case errors.Is(err, reservation.ErrReservationNotFound):
		return "not_found"
	default:
		return "error"
	}
}
