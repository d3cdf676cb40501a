package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/domain"
)

const shiftColumns = `id, start_time, end_time, staff_id, schedule_id, created_at, version`

type shiftScanner interface {
	Scan(dest ...any) error
}

func scanShift(row shiftScanner) (*domain.Shift, error) {
	shift := &domain.Shift{}
	var staffID, scheduleID sql.NullInt64

	dst := []any{&shift.ID, &shift.StartTime, &shift.EndTime, &staffID, &scheduleID, &shift.CreatedAt, &shift.Version}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	shift.StaffID = nullableID(staffID)
	shift.ScheduleID = nullableID(scheduleID)
	return shift, nil
}

func scanShifts(rows *sql.Rows) ([]*domain.Shift, error) {
	defer rows.Close()

	shifts := make([]*domain.Shift, 0)
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}

func (r *Repository) CreateShift(shift *domain.Shift) error {
	query := `
		INSERT INTO shifts (start_time, end_time)
		VALUES ($1, $2)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	dst := []any{&shift.ID, &shift.CreatedAt, &shift.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, shift.StartTime, shift.EndTime).Scan(dst...); err != nil {
		return err
	}

	return nil
}

// CreateAssignedShift 直接创建一个已经分配给某人并属于某张排班表的班次
func (r *Repository) CreateAssignedShift(shift *domain.Shift) error {
	query := `
		INSERT INTO shifts (start_time, end_time, staff_id, schedule_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{shift.StartTime, shift.EndTime, shift.StaffID, shift.ScheduleID}
	dst := []any{&shift.ID, &shift.CreatedAt, &shift.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetShiftByID(id int64) (*domain.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	return scanShift(r.dbpool.QueryRowContext(ctx, query, id))
}

// GetAllShifts 获取所有班次，onlyUnassigned 为 true 时只返回还没有分配人员的班次
func (r *Repository) GetAllShifts(onlyUnassigned bool) ([]*domain.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts`
	if onlyUnassigned {
		query += ` WHERE staff_id IS NULL`
	}
	query += ` ORDER BY id`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return scanShifts(rows)
}

// GetUnassignedShifts 按创建顺序获取未分配的班次，并对这些行加锁
//
// 并发的排班事务会在这里阻塞，等前一个事务提交后重新检查 staff_id IS NULL，
// 因此同一个班次不会被两次排班同时拿到。
func (t *txRepository) GetUnassignedShifts(ctx context.Context) ([]*domain.Shift, error) {
	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE staff_id IS NULL
		ORDER BY id
		FOR UPDATE
	`

	rows, err := t.tx.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return scanShifts(rows)
}

func (t *txRepository) AssignShift(ctx context.Context, shift *domain.Shift) error {
	query := `
		UPDATE shifts
		SET
			staff_id = $1,
			schedule_id = $2,
			version = version + 1
		WHERE id = $3 AND staff_id IS NULL
		RETURNING version
	`

	// 没有返回行说明这个班次已经被分配了，sql.ErrNoRows 会让整个事务回滚
	if err := t.tx.QueryRowContext(ctx, query, shift.StaffID, shift.ScheduleID, shift.ID).Scan(&shift.Version); err != nil {
		return err
	}

	return nil
}
