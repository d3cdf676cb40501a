package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/domain"
)

// GetAllStaff 获取所有在职的普通员工，按 ID 排序
// 自动排班时各个策略都按这个顺序打破平局，因此这里的顺序必须是稳定的
func (r *Repository) GetAllStaff() ([]*domain.Staff, error) {
	query := `
		SELECT id, username, password_hash, full_name, email, role, is_active, created_at, version
		FROM staff
		WHERE role = $1 AND is_active = TRUE
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, domain.RoleStaff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	staff := make([]*domain.Staff, 0)
	for rows.Next() {
		s := &domain.Staff{}
		dst := []any{&s.ID, &s.Username, &s.PasswordHash, &s.FullName, &s.Email, &s.Role, &s.IsActive, &s.CreatedAt, &s.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		staff = append(staff, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return staff, nil
}

func (r *Repository) GetStaffByID(id int64) (*domain.Staff, error) {
	query := `
		SELECT username, password_hash, full_name, email, role, is_active, created_at, version
		FROM staff WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	s := &domain.Staff{
		ID: id,
	}

	dst := []any{&s.Username, &s.PasswordHash, &s.FullName, &s.Email, &s.Role, &s.IsActive, &s.CreatedAt, &s.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return s, nil
}

func (r *Repository) CreateStaff(s *domain.Staff) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO staff (username, password_hash, full_name, email, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_active, created_at, version
	`

	args := []any{s.Username, s.PasswordHash, s.FullName, s.Email, s.Role}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&s.ID, &s.IsActive, &s.CreatedAt, &s.Version); err != nil {
		return err
	}

	return nil
}

// GetStaffByIDs 批量获取员工，不区分是否在职，导出历史排班表时使用
func (r *Repository) GetStaffByIDs(ids []int64) (map[int64]*domain.Staff, error) {
	query := `
		SELECT id, username, full_name, email, role, is_active, created_at, version
		FROM staff
		WHERE id = ANY($1)
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	staff := make(map[int64]*domain.Staff, len(ids))
	for rows.Next() {
		s := &domain.Staff{}
		dst := []any{&s.ID, &s.Username, &s.FullName, &s.Email, &s.Role, &s.IsActive, &s.CreatedAt, &s.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		staff[s.ID] = s
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return staff, nil
}
