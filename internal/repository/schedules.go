package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/domain"
)

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insertSchedule(ctx context.Context, q queryRower, schedule *domain.Schedule) error {
	query := `
		INSERT INTO schedules (period_start)
		VALUES ($1)
		RETURNING id, created_at, version
	`

	dst := []any{&schedule.ID, &schedule.CreatedAt, &schedule.Version}
	return q.QueryRowContext(ctx, query, schedule.PeriodStart).Scan(dst...)
}

func (t *txRepository) CreateSchedule(ctx context.Context, schedule *domain.Schedule) error {
	return insertSchedule(ctx, t.tx, schedule)
}

// CreateSchedule 创建一张空的排班表，之后可以手动往里面添加班次
func (r *Repository) CreateSchedule(schedule *domain.Schedule) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if schedule.Shifts == nil {
		schedule.Shifts = make([]*domain.Shift, 0)
	}

	return insertSchedule(ctx, r.dbpool, schedule)
}

// GetAllSchedules 只返回排班表的元数据，不包含班次
func (r *Repository) GetAllSchedules() ([]*domain.Schedule, error) {
	query := `
		SELECT id, period_start, created_at, version
		FROM schedules
		ORDER BY id DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := make([]*domain.Schedule, 0)
	for rows.Next() {
		schedule := &domain.Schedule{
			Shifts: make([]*domain.Shift, 0),
		}
		if err := rows.Scan(&schedule.ID, &schedule.PeriodStart, &schedule.CreatedAt, &schedule.Version); err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return schedules, nil
}

func (r *Repository) GetScheduleByID(id int64) (*domain.Schedule, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			sc.id,
			sc.period_start,
			sc.created_at,
			sc.version,
			sh.id,
			sh.start_time,
			sh.end_time,
			sh.staff_id,
			sh.created_at,
			sh.version
		FROM schedules sc
		LEFT JOIN shifts sh ON sc.id = sh.schedule_id
		WHERE sc.id = $1
		ORDER BY sh.staff_id, sh.start_time, sh.id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedule *domain.Schedule

	for rows.Next() {
		var row struct {
			scheduleID  int64
			periodStart time.Time
			createdAt   time.Time
			version     int32

			shiftID        sql.NullInt64
			startTime      sql.NullTime
			endTime        sql.NullTime
			staffID        sql.NullInt64
			shiftCreatedAt sql.NullTime
			shiftVersion   sql.NullInt32
		}

		dst := []any{
			&row.scheduleID,
			&row.periodStart,
			&row.createdAt,
			&row.version,
			&row.shiftID,
			&row.startTime,
			&row.endTime,
			&row.staffID,
			&row.shiftCreatedAt,
			&row.shiftVersion,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if schedule == nil {
			schedule = &domain.Schedule{
				ID:          row.scheduleID,
				PeriodStart: row.periodStart,
				Shifts:      make([]*domain.Shift, 0),
				CreatedAt:   row.createdAt,
				Version:     row.version,
			}
		}

		if !row.shiftID.Valid {
			// 说明这个排班表下没有任何班次
			continue
		}

		schedule.AddShift(&domain.Shift{
			ID:        row.shiftID.Int64,
			StartTime: row.startTime.Time,
			EndTime:   row.endTime.Time,
			StaffID:   nullableID(row.staffID),
			CreatedAt: row.shiftCreatedAt.Time,
			Version:   row.shiftVersion.Int32,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if schedule == nil {
		return nil, sql.ErrNoRows
	}

	return schedule, nil
}
