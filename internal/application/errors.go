package application

import "errors"

var (
	// ErrPackageBusy は同じパッケージへの予約作成が並行して処理中であることを表す
	ErrPackageBusy = errors.New("パッケージは他のリクエストで処理中です")
)
