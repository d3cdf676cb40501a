package scheduler

import (
	"time"

	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/domain"
)

// Assignment 排班方案: staffID -> 按分配顺序排列的班次
type Assignment map[int64][]*domain.Shift

// Count 方案中一共分配了多少个班次
func (a Assignment) Count() int {
	n := 0
	for _, shifts := range a {
		n += len(shifts)
	}
	return n
}

// Strategy 排班策略接口
//
// Distribute 只读取人员和班次，返回一个排班方案，不做任何持久化。
// 人员列表为空时返回空的方案。
type Strategy interface {
	// Name 返回策略名称，与 Resolve 接受的名称一致
	Name() string

	// Distribute 按照 shifts 的顺序逐个分配班次
	Distribute(staff []*domain.Staff, shifts []*domain.Shift, periodStart time.Time) Assignment
}
