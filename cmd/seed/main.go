package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/handler"
	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/repository"
	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/scheduler"
	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/seed"
	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var periodStartParam string
	var file string
	var strategyName string
	var staffID int64
	var tokenTTL time.Duration

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机员工, 2: 插入随机班次, 3: 从 CSV 导入班次, 4: 自动排班, 5: 签发令牌)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.StringVar(&periodStartParam, "period-start", "", "排班周期的开始日期，格式为 YYYY-MM-DD")
	flag.StringVar(&file, "file", "./internal/seed/data/shifts.csv", "要导入的班次文件")
	flag.StringVar(&strategyName, "strategy", "", "排班策略，为空时使用配置中的默认策略")
	flag.Int64Var(&staffID, "staff-id", 0, "签发令牌的员工 ID")
	flag.DurationVar(&tokenTTL, "ttl", 24*time.Hour, "令牌有效期")
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
			slog.Error("请输入合法的员工数量")
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			staff, err := utils.GenerateRandomStaff(cfg.Seed.Staff.Password, cfg.Email.UserDomain)
			if err != nil {
				slog.Error("无法生成随机员工", slog.String("error", err.Error()))
				continue
			}

			if err := repo.CreateStaff(staff); err != nil {
				slog.Error("无法插入员工", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入员工成功", slog.Int("count", cnt))
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的班次数量")
			return
		}

		periodStart, err := utils.ParsePeriodStart(periodStartParam)
		if err != nil {
			slog.Error("无法解析排班周期", slog.String("error", err.Error()))
			return
		}

		cnt := 0
		for _, shift := range utils.GenerateRandomShifts(periodStart, n, cfg.Scheduler.DefaultShiftHours) {
			if err := repo.CreateShift(shift); err != nil {
				slog.Error("无法插入班次", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入班次成功", slog.Int("count", cnt))
	case 3:
		seed.SeedShiftsFromCSV(repo, file)
	case 4:
		if strategyName == "" {
			strategyName = cfg.Scheduler.DefaultStrategy
		}

		strategy, err := scheduler.Resolve(strategyName)
		if err != nil {
			slog.Error("无法使用排班策略", slog.String("error", err.Error()), slog.Any("available", scheduler.StrategyNames()))
			return
		}

		periodStart, err := utils.ParsePeriodStart(periodStartParam)
		if err != nil {
			slog.Error("无法解析排班周期", slog.String("error", err.Error()))
			return
		}

		staff, err := repo.GetAllStaff()
		if err != nil {
			slog.Error("无法获取所有的在职员工", slog.String("error", err.Error()))
			return
		}

		schedule, err := scheduler.GenerateSchedule(context.Background(), repo, strategy, staff, periodStart)
		if err != nil {
			switch {
			case errors.Is(err, scheduler.ErrEmptyStaff), errors.Is(err, scheduler.ErrNoShifts):
				slog.Warn("没有生成排班表", slog.String("reason", err.Error()))
			default:
				slog.Error("自动排班失败", slog.String("error", err.Error()))
			}
			return
		}

		slog.Info("排班表已生成", slog.Int64("scheduleID", schedule.ID), slog.Int("shifts", len(schedule.Shifts)))
	case 5:
		staff, err := repo.GetStaffByID(staffID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				slog.Error("指定的员工不存在", slog.Int64("staffID", staffID))
			default:
				slog.Error("无法获取员工", slog.String("error", err.Error()))
			}
			return
		}

		token, err := handler.SignToken(cfg.JWT.Secret, staff, tokenTTL)
		if err != nil {
			slog.Error("无法签发令牌", slog.String("error", err.Error()))
			return
		}

		fmt.Println(token)
	default:
		slog.Error("指定的操作非法")
	}
}
