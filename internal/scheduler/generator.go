package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/domain"
)

// Tx 生成排班表时在同一个事务中使用的存储操作
type Tx interface {
	// GetUnassignedShifts 获取所有还没有分配人员的班次，并锁住这些班次直到事务结束
	GetUnassignedShifts(ctx context.Context) ([]*domain.Shift, error)

	// CreateSchedule 创建排班表，返回时 schedule.ID 必须已经被赋值
	CreateSchedule(ctx context.Context, schedule *domain.Schedule) error

	// AssignShift 将班次的 StaffID 和 ScheduleID 写回存储
	AssignShift(ctx context.Context, shift *domain.Shift) error
}

// Store 事务性存储，fn 返回错误时回滚，否则提交
type Store interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Generator 负责把排班策略的结果落库成一张排班表
// 除了显式设置的策略和人员列表之外不保存任何状态
type Generator struct {
	strategy Strategy
	staff    []*domain.Staff
}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) SetStrategy(strategy Strategy) {
	g.strategy = strategy
}

func (g *Generator) SetStaff(staff []*domain.Staff) {
	g.staff = staff
}

// Generate 读取未分配的班次，使用当前策略分配后创建排班表
//
// 读取班次、创建排班表和回写班次都在同一个事务中完成，任何一步失败都不会留下部分结果。
func (g *Generator) Generate(ctx context.Context, store Store, periodStart time.Time) (*domain.Schedule, error) {
	if g.strategy == nil {
		return nil, ErrNoStrategy
	}
	if len(g.staff) == 0 {
		return nil, ErrEmptyStaff
	}

	var (
		schedule   *domain.Schedule
		assignment Assignment
		fnErr      error
	)

	err := store.WithTx(ctx, func(tx Tx) error {
		schedule, assignment, fnErr = g.generate(ctx, tx, periodStart)
		return fnErr
	})
	if fnErr != nil {
		return nil, fnErr
	}
	if err != nil {
		// 说明是开启或提交事务时出错
		return nil, &PersistenceError{Op: "提交排班表", Err: err}
	}

	summary := Summarize(g.staff, assignment)
	slog.Info("自动排班成功",
		slog.String("strategy", g.strategy.Name()),
		slog.String("periodStart", periodStart.Format(time.DateOnly)),
		slog.Int64("scheduleID", schedule.ID),
		slog.Int("shifts", len(schedule.Shifts)),
		slog.Int("idleStaff", summary.IdleStaff),
		slog.Float64("hoursVariance", summary.HoursVariance),
	)

	return schedule, nil
}

func (g *Generator) generate(ctx context.Context, tx Tx, periodStart time.Time) (*domain.Schedule, Assignment, error) {
	shifts, err := tx.GetUnassignedShifts(ctx)
	if err != nil {
		return nil, nil, &PersistenceError{Op: "获取未分配班次", Err: err}
	}
	if len(shifts) == 0 {
		return nil, nil, ErrNoShifts
	}

	assignment := g.strategy.Distribute(g.staff, shifts, periodStart)

	// 按理来说内置的策略都不会产生非法的方案，这里只是以防万一
	if err := ValidateAssignment(g.staff, shifts, assignment); err != nil {
		return nil, nil, err
	}

	// 先创建排班表拿到 ID，后面的班次才能引用它
	schedule := &domain.Schedule{
		PeriodStart: periodStart,
		Shifts:      make([]*domain.Shift, 0, len(shifts)),
	}
	if err := tx.CreateSchedule(ctx, schedule); err != nil {
		return nil, nil, &PersistenceError{Op: "创建排班表", Err: err}
	}

	// 按人员列表的顺序回写，使写入顺序是确定的
	visited := make(map[int64]bool, len(g.staff))
	for _, s := range g.staff {
		if visited[s.ID] {
			continue
		}
		visited[s.ID] = true

		for _, shift := range assignment[s.ID] {
			staffID := s.ID
			shift.StaffID = &staffID
			schedule.AddShift(shift)

			if err := tx.AssignShift(ctx, shift); err != nil {
				return nil, nil, &PersistenceError{Op: "分配班次", Err: err}
			}
		}
	}

	return schedule, assignment, nil
}

// GenerateSchedule 使用给定的策略和人员列表生成一张排班表
func GenerateSchedule(ctx context.Context, store Store, strategy Strategy, staff []*domain.Staff, periodStart time.Time) (*domain.Schedule, error) {
	g := NewGenerator()
	g.SetStrategy(strategy)
	g.SetStaff(staff)
	return g.Generate(ctx, store, periodStart)
}
