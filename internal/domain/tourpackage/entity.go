package tourpackage

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type はパッケージの料金モデルを表す
type Type string

const (
	TypeRegular Type = "regular" // 1人あたり料金 + 定員
	TypePrivate Type = "private" // グループ料金 + 超過人数料金
)

// IsValid は既知の料金モデルかを返す
func (t Type) IsValid() bool {
	return t == TypeRegular || t == TypePrivate
}

// Package は販売可能なツアーを表す
type Package struct {
	ID           string
	Name         string
	Destination  string
	DurationDays int
	Type         Type
	Active       bool

	// Regular のみ
	PricePerPerson decimal.NullDecimal
	Quota          *int
	MinQuota       *int

	// Private のみ
	GroupPrice       decimal.NullDecimal
	RecommendedMax   *int
	ExtraPersonPrice decimal.NullDecimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRegular は定員制パッケージを作成する
func NewRegular(name, destination string, durationDays int, pricePerPerson decimal.Decimal, quota, minQuota int) *Package {
	now := time.Now()
	return &Package{
		Name:           name,
		Destination:    destination,
		DurationDays:   durationDays,
		Type:           TypeRegular,
		Active:         true,
		PricePerPerson: decimal.NewNullDecimal(pricePerPerson),
		Quota:          &quota,
		MinQuota:       &minQuota,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// NewPrivate は貸切パッケージを作成する
func NewPrivate(name, destination string, durationDays int, groupPrice decimal.Decimal, recommendedMax int, extraPersonPrice decimal.NullDecimal) *Package {
	now := time.Now()
	return &Package{
		Name:             name,
		Destination:      destination,
		DurationDays:     durationDays,
		Type:             TypePrivate,
		Active:           true,
		GroupPrice:       decimal.NewNullDecimal(groupPrice),
		RecommendedMax:   &recommendedMax,
		ExtraPersonPrice: extraPersonPrice,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// IsRegular は定員制パッケージかを返す
func (p *Package) IsRegular() bool {
	return p.Type == TypeRegular
}

// Deactivate は新規販売を停止する。既存の予約には影響しない
func (p *Package) Deactivate() {
	p.Active = false
	p.UpdatedAt = time.Now()
}

// Validate はパッケージの検証を行う
func (p *Package) Validate() error {
	if p.Name == "" {
		return ErrNameRequired
	}
	if p.DurationDays < 1 {
		return ErrInvalidDuration
	}
	switch p.Type {
	case TypeRegular:
		if p.GroupPrice.Valid || p.RecommendedMax != nil || p.ExtraPersonPrice.Valid {
			return ErrMixedPricing
		}
		if !p.PricePerPerson.Valid || p.PricePerPerson.Decimal.IsNegative() {
			return ErrInvalidConfiguration
		}
		if p.Quota == nil || *p.Quota < 1 {
			return ErrInvalidQuota
		}
		if p.MinQuota != nil && (*p.MinQuota < 0 || *p.MinQuota > *p.Quota) {
			return ErrInvalidQuota
		}
	case TypePrivate:
		if p.PricePerPerson.Valid || p.Quota != nil || p.MinQuota != nil {
			return ErrMixedPricing
		}
		if !p.GroupPrice.Valid || p.GroupPrice.Decimal.IsNegative() {
			return ErrInvalidConfiguration
		}
		if p.RecommendedMax != nil && *p.RecommendedMax < 1 {
			return ErrInvalidRecommendedMax
		}
		if p.ExtraPersonPrice.Valid && p.ExtraPersonPrice.Decimal.IsNegative() {
			return ErrInvalidConfiguration
		}
	default:
		return ErrInvalidType
	}
	return nil
}
