package tourpackage

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ComputeTotal は人数から予約の合計金額を計算する。
// 副作用はなく、予約作成時にサーバー側で評価した値のみが正となる。
func (p *Package) ComputeTotal(headcount int) (decimal.Decimal, error) {
	if headcount < 1 {
		return decimal.Zero, ErrInvalidHeadcount
	}
	switch p.Type {
	case TypeRegular:
		if !p.PricePerPerson.Valid {
			return decimal.Zero, fmt.Errorf("1人あたり料金が未設定: %w", ErrInvalidConfiguration)
		}
		return p.PricePerPerson.Decimal.Mul(decimal.NewFromInt(int64(headcount))), nil
	case TypePrivate:
		if !p.GroupPrice.Valid {
			return decimal.Zero, fmt.Errorf("グループ料金が未設定: %w", ErrInvalidConfiguration)
		}
		total := p.GroupPrice.Decimal
		if extra := p.extraHeadcount(headcount); extra > 0 && p.ExtraPersonPrice.Valid {
			total = total.Add(p.ExtraPersonPrice.Decimal.Mul(decimal.NewFromInt(int64(extra))))
		}
		return total, nil
	default:
		return decimal.Zero, fmt.Errorf("種別 %q: %w", p.Type, ErrInvalidConfiguration)
	}
}

// extraHeadcount は推奨最大人数を超えた人数を返す（未設定なら0）
func (p *Package) extraHeadcount(headcount int) int {
	if p.RecommendedMax == nil {
		return 0
	}
	return max(0, headcount-*p.RecommendedMax)
}
