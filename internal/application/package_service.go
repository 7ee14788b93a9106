package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/tourpackage"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/domain/transaction"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/pkg/logger"
)

type PackageService struct {
	txManager   transaction.Manager
	packageRepo tourpackage.Repository
	capacity    *CapacityTracker
}

func NewPackageService(tm transaction.Manager, pr tourpackage.Repository, capacity *CapacityTracker) *PackageService {
	return &PackageService{txManager: tm, packageRepo: pr, capacity: capacity}
}

// PackageInput はパッケージの作成・更新内容。種別に応じた料金項目のみ設定する
type PackageInput struct {
	Name             string
	Destination      string
	DurationDays     int
	Type             tourpackage.Type
	PricePerPerson   *decimal.Decimal
	Quota            *int
	MinQuota         *int
	GroupPrice       *decimal.Decimal
	RecommendedMax   *int
	ExtraPersonPrice *decimal.Decimal
}

func (in PackageInput) apply(p *tourpackage.Package) {
	p.Name = in.Name
	p.Destination = in.Destination
	p.DurationDays = in.DurationDays
	p.Type = in.Type
	p.PricePerPerson = nullDecimal(in.PricePerPerson)
	p.Quota = in.Quota
	p.MinQuota = in.MinQuota
	p.GroupPrice = nullDecimal(in.GroupPrice)
	p.RecommendedMax = in.RecommendedMax
	p.ExtraPersonPrice = nullDecimal(in.ExtraPersonPrice)
}

func (s *PackageService) CreatePackage(ctx context.Context, input PackageInput) (*tourpackage.Package, error) {
	now := time.Now()
	p := &tourpackage.Package{Active: true, CreatedAt: now, UpdatedAt: now}
	input.apply(p)
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("バリデーションエラー: %w", err)
	}
	if err := s.packageRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("パッケージ作成に失敗しました: %w", err)
	}
	logger.Info("パッケージを作成しました", logger.PackageID(p.ID), zap.String("type", string(p.Type)))
	return p, nil
}

func (s *PackageService) GetPackage(ctx context.Context, id string) (*tourpackage.Package, error) {
	return s.packageRepo.GetByID(ctx, id)
}

func (s *PackageService) ListPackages(ctx context.Context, activeOnly bool, limit, offset int) ([]*tourpackage.Package, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.packageRepo.List(ctx, activeOnly, limit, offset)
}

// UpdatePackage はパッケージを更新する。予約が存在する場合は種別を変更できない。
// 予約作成と同じパッケージ行ロックの下で種別ロックを判定する
func (s *PackageService) UpdatePackage(ctx context.Context, id string, input PackageInput) (*tourpackage.Package, error) {
	var updated *tourpackage.Package
	err := transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		p, err := s.packageRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if input.Type != p.Type {
			has, err := s.packageRepo.HasReservations(ctx, tx, id)
			if err != nil {
				return fmt.Errorf("予約有無の確認に失敗: %w", err)
			}
			if has {
				return tourpackage.ErrTypeLocked
			}
		}
		input.apply(p)
		p.UpdatedAt = time.Now()
		if err := p.Validate(); err != nil {
			return fmt.Errorf("バリデーションエラー: %w", err)
		}
		if err := s.packageRepo.Update(ctx, tx, p); err != nil {
			return fmt.Errorf("パッケージ更新に失敗しました: %w", err)
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.capacity.Invalidate(ctx, updated.ID)
	return updated, nil
}

// DeactivatePackage は新規販売を停止する。既存の予約はそのまま
func (s *PackageService) DeactivatePackage(ctx context.Context, id string) (*tourpackage.Package, error) {
	var deactivated *tourpackage.Package
	err := transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		p, err := s.packageRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		deactivated = p
		if !p.Active {
			return nil
		}
		p.Deactivate()
		if err := s.packageRepo.Update(ctx, tx, p); err != nil {
			return fmt.Errorf("パッケージ更新に失敗しました: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deactivated, nil
}

// Quote は見積もり結果
type Quote struct {
	PackageID    string
	Headcount    int
	Total        decimal.Decimal
	Availability *Availability
	Fits         bool
}

// Quote は人数に対する合計金額を計算する（表示用の試算）
func (s *PackageService) Quote(ctx context.Context, id string, headcount int) (*Quote, error) {
	p, err := s.packageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	total, err := p.ComputeTotal(headcount)
	if err != nil {
		return nil, err
	}
	av, err := s.capacity.AvailableSlots(ctx, p)
	if err != nil {
		return nil, err
	}
	return &Quote{
		PackageID:    p.ID,
		Headcount:    headcount,
		Total:        total,
		Availability: av,
		Fits:         !av.Limited || headcount <= av.Available,
	}, nil
}

// Availability はパッケージの空き枠を返す
func (s *PackageService) Availability(ctx context.Context, id string) (*Availability, error) {
	p, err := s.packageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	av, err := s.capacity.AvailableSlots(ctx, p)
	if err != nil {
		if errors.Is(err, tourpackage.ErrInvalidConfiguration) {
			logger.Error("パッケージの設定不備", logger.PackageID(id), zap.Error(err))
		}
		return nil, err
	}
	return av, nil
}

func nullDecimal(v *decimal.Decimal) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*v)
}
