package scheduler

import (
	"time"

	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/domain"
)

// MinimizeDays 尽量减少每个人需要上班的天数
//
// 对每个班次：
//  1. 如果已经有人在这一天上班，则分配给人员列表中第一个这样的人，让同一个人在同一天上多个班次
//  2. 否则分配给 (已上班天数, 已分配班次总数) 最小的人，平局时取列表中靠前的人
//
// 无法确定日期的班次不会记录到上班天数中，因此它们总是走第 2 条规则。
type MinimizeDays struct{}

func (MinimizeDays) Name() string {
	return StrategyMinimizeDays
}

func (MinimizeDays) Distribute(staff []*domain.Staff, shifts []*domain.Shift, _ time.Time) Assignment {
	if len(staff) == 0 {
		return Assignment{}
	}

	ids := staffIDs(staff)
	assignment := newAssignment(ids)

	days := make(map[int64]map[CalendarDay]struct{}, len(ids))
	for _, id := range ids {
		days[id] = make(map[CalendarDay]struct{})
	}

	for _, shift := range shifts {
		day, ok := ShiftCalendarDay(shift)

		var chosen int64
		found := false

		if ok {
			for _, id := range ids {
				if _, works := days[id][day]; works {
					chosen = id
					found = true
					break
				}
			}
		}

		if !found {
			chosen = ids[0]
			for _, id := range ids[1:] {
				if len(days[id]) < len(days[chosen]) ||
					(len(days[id]) == len(days[chosen]) && len(assignment[id]) < len(assignment[chosen])) {
					chosen = id
				}
			}
		}

		assignment[chosen] = append(assignment[chosen], shift)
		if ok {
			days[chosen][day] = struct{}{}
		}
	}

	return assignment
}
