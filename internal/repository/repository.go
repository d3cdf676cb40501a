package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/scheduler"
)

var _ scheduler.Store = (*Repository)(nil)

type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
}

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
	}
}

// WithTx 在一个数据库事务中执行 fn，fn 返回错误时回滚，否则提交
func (r *Repository) WithTx(ctx context.Context, fn func(tx scheduler.Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(&txRepository{tx: tx}); err != nil {
		return err
	}

	return tx.Commit()
}

// txRepository 事务内的操作，实现 scheduler.Tx
type txRepository struct {
	tx *sql.Tx
}

func nullableID(id sql.NullInt64) *int64 {
	if !id.Valid {
		return nil
	}
	v := id.Int64
	return &v
}
