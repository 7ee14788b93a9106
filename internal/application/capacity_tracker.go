package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/reservation"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/tourpackage"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/transaction"
	redisinfra "github.com/HaroldHuanca/muhutravel-sub000/internal/infrastructure/redis"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/pkg/logger"
)

const defaultCapacityCacheTTL = 30 * time.Second

// Availability はパッケージの空き枠。Limited=false は定員の概念がないことを表す
type Availability struct {
	PackageID string
	Limited   bool
	Quota     int
	Available int
}

// CapacityTracker は定員制パッケージの消費人数と空き枠を求める
type CapacityTracker struct {
	reservationRepo reservation.Repository
	cache           redisinfra.CapacityCacheInterface
	cacheTTL        time.Duration
}

// NewCapacityTracker は CapacityTracker を作成する。cache は nil でもよい
func NewCapacityTracker(rr reservation.Repository, cache redisinfra.CapacityCacheInterface, cacheTTL time.Duration) *CapacityTracker {
	if cacheTTL <= 0 {
		cacheTTL = defaultCapacityCacheTTL
	}
	return &CapacityTracker{reservationRepo: rr, cache: cache, cacheTTL: cacheTTL}
}

// Consumed はキャンセル以外の予約の人数合計を返す
func (c *CapacityTracker) Consumed(ctx context.Context, tx transaction.Tx, packageID string) (int, error) {
	rs, err := c.reservationRepo.ListActiveByPackage(ctx, tx, packageID)
	if err != nil {
		return 0, fmt.Errorf("パッケージの予約取得に失敗: %w", err)
	}
	return reservation.ConsumedHeadcount(rs), nil
}

// Check は headcount 人を受け入れられるかを検証する。作成トランザクション内で呼ぶ
func (c *CapacityTracker) Check(ctx context.Context, tx transaction.Tx, pkg *tourpackage.Package, headcount int) error {
	if !pkg.IsRegular() {
		return nil
	}
	consumed, err := c.Consumed(ctx, tx, pkg.ID)
	if err != nil {
		return err
	}
	ok, err := pkg.CanAccommodate(consumed, headcount)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("定員 %d, 予約済み %d, 要求 %d: %w", *pkg.Quota, consumed, headcount, tourpackage.ErrCapacityExceeded)
	}
	return nil
}

// AvailableSlots は表示用の空き枠を返す。キャッシュがあれば優先する
func (c *CapacityTracker) AvailableSlots(ctx context.Context, pkg *tourpackage.Package) (*Availability, error) {
	if !pkg.IsRegular() {
		return &Availability{PackageID: pkg.ID, Limited: false}, nil
	}
	if pkg.Quota == nil {
		return nil, fmt.Errorf("定員が未設定: %w", tourpackage.ErrInvalidConfiguration)
	}
	av := &Availability{PackageID: pkg.ID, Limited: true, Quota: *pkg.Quota}

	if c.cache != nil {
		slots, err := c.cache.GetAvailableSlots(ctx, pkg.ID)
		if err == nil {
			logger.Debug("キャッシュヒット", logger.PackageID(pkg.ID), zap.Int("available", slots))
			av.Available = slots
			return av, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("キャッシュ取得エラー", zap.Error(err))
		}
	}

	consumed, err := c.Consumed(ctx, nil, pkg.ID)
	if err != nil {
		return nil, err
	}
	slots, _, err := pkg.AvailableSlots(consumed)
	if err != nil {
		return nil, err
	}
	av.Available = slots

	if c.cache != nil {
		if err := c.cache.SetAvailableSlots(ctx, pkg.ID, slots, c.cacheTTL); err != nil {
			logger.Warn("キャッシュ保存エラー", zap.Error(err))
		}
	}
	return av, nil
}

// Invalidate はパッケージの空き枠キャッシュを破棄する
func (c *CapacityTracker) Invalidate(ctx context.Context, packageID string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Invalidate(ctx, packageID); err != nil {
		logger.Warn("キャッシュ無効化エラー", logger.PackageID(packageID), zap.Error(err))
	}
}
