package tourpackage

import "errors"

// Package ドメインのエラー定義
var (
	ErrPackageNotFound       = errors.New("パッケージが見つかりません")
	ErrNameRequired          = errors.New("パッケージ名は必須です")
	ErrInvalidDuration       = errors.New("日数は1以上である必要があります")
	ErrInvalidType           = errors.New("パッケージ種別が不正です")
	ErrInvalidConfiguration  = errors.New("パッケージの料金設定が不正です")
	ErrMixedPricing          = errors.New("種別に対応しない料金項目が設定されています")
	ErrInvalidQuota          = errors.New("定員の設定が不正です")
	ErrInvalidRecommendedMax = errors.New("推奨最大人数は1以上である必要があります")
	ErrInvalidHeadcount      = errors.New("人数は1以上である必要があります")
	ErrCapacityExceeded      = errors.New("パッケージの空き枠が不足しています")
	ErrPackageInactive       = errors.New("パッケージは販売停止中です")
	ErrTypeLocked            = errors.New("予約が存在するためパッケージ種別は変更できません")
)
