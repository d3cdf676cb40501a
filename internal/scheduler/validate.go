package scheduler

import (
	"fmt"

	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/domain"
)

// ValidateAssignment 检查排班方案是否合法:
// 方案中的人员都在人员列表中，并且每个班次恰好被分配一次
func ValidateAssignment(staff []*domain.Staff, shifts []*domain.Shift, assignment Assignment) error {
	known := make(map[int64]bool, len(staff))
	for _, s := range staff {
		known[s.ID] = true
	}

	seen := make(map[int64]bool, len(shifts))
	for staffID, assigned := range assignment {
		if !known[staffID] {
			return fmt.Errorf("排班方案中 id 为 %d 的人员不在人员列表中", staffID)
		}
		for _, shift := range assigned {
			if seen[shift.ID] {
				return fmt.Errorf("班次 %d 被重复分配", shift.ID)
			}
			seen[shift.ID] = true
		}
	}

	for _, shift := range shifts {
		if !seen[shift.ID] {
			return fmt.Errorf("班次 %d 没有被分配", shift.ID)
		}
	}

	if len(seen) != len(shifts) {
		return fmt.Errorf("排班方案中存在 %d 个不属于本次排班的班次", len(seen)-len(shifts))
	}

	return nil
}
