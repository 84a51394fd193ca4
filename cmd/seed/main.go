package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/mingya-dental/clinic-manager/backend/internal/config"
	"github.com/mingya-dental/clinic-manager/backend/internal/repository"
	"github.com/mingya-dental/clinic-manager/backend/internal/seed"
	"github.com/mingya-dental/clinic-manager/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机牙医, 2: 插入整套演示数据)")
	flag.IntVar(&n, "n", 5, "要插入的牙医数量")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的牙医数量")
			return
		}

		cnt := n
		for i := 0; i < n; i++ {
			dentist, err := utils.GenerateRandomDentist(cfg.Seed.User.Password, cfg.Email.UserDomain)
			if err != nil {
				slog.Error("无法生成随机牙医", slog.String("error", err.Error()))
				continue
			}

			if err := repo.CreateUser(dentist); err != nil {
				slog.Error("无法插入牙医", slog.String("error", err.Error()))
				continue
			}

			cnt--
		}

		slog.Info("插入牙医成功", slog.Int("count", n-cnt))
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的牙医数量")
			return
		}

		seed.SeedDemoData(cfg, repo, n)
	default:
		slog.Error("指定的操作非法")
	}
}
