package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"go.uber.org/zap"

	"github.com/HaroldHuanca/muhutravel-sub000/internal/config"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/infrastructure/postgres"
	"github.com/HaroldHuanca/muhutravel-sub000/internal/pkg/logger"
)

const usage = `usage: migrate [-steps N] <up|down|version|force V>`

func main() {
	steps := flag.Int("steps", 0, "適用・巻き戻しする件数（0 は全件）")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.App.Env)
	defer func() { _ = logger.Sync() }()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	m, err := postgres.NewMigrator(&cfg.Database)
	if err != nil {
		logger.Fatal("マイグレーター作成エラー", zap.Error(err))
	}
	defer m.Close()

	switch flag.Arg(0) {
	case "up":
		if *steps > 0 {
			err = m.Steps(*steps)
		} else {
			err = m.Up()
		}
	case "down":
		if *steps > 0 {
			err = m.Steps(-*steps)
		} else {
			err = m.Down()
		}
	case "version":
		v, dirty, verr := m.Version()
		if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
			logger.Fatal("バージョン取得エラー", zap.Error(verr))
		}
		logger.Info("現在のバージョン", zap.Uint("version", v), zap.Bool("dirty", dirty))
		return
	case "force":
		var v int
		if _, serr := fmt.Sscanf(flag.Arg(1), "%d", &v); serr != nil {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		err = m.Force(v)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Fatal("マイグレーション実行エラー", zap.Error(err))
	}
	logger.Info("マイグレーション完了", zap.String("command", flag.Arg(0)))
}
