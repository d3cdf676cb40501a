package scheduler

import (
	"time"

	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/domain"
)

// BalanceDayNight 贪心地平衡每个人的白班和夜班数量
//
// 对每个班次，选出 (该类型班次已分配数, 已分配班次总数) 最小的人，
// 二者都相同时取人员列表中靠前的人。
// 例如 s1 已经有 2 个白班而 s2 只有 1 个，那么下一个白班会分给 s2。
type BalanceDayNight struct{}

func (BalanceDayNight) Name() string {
	return StrategyBalanceDayNight
}

func (BalanceDayNight) Distribute(staff []*domain.Staff, shifts []*domain.Shift, _ time.Time) Assignment {
	if len(staff) == 0 {
		return Assignment{}
	}

	ids := staffIDs(staff)
	assignment := newAssignment(ids)

	counts := make(map[int64]map[Category]int, len(ids))
	for _, id := range ids {
		counts[id] = map[Category]int{CategoryDay: 0, CategoryNight: 0}
	}

	for _, shift := range shifts {
		category := ShiftCategory(shift)

		chosen := ids[0]
		for _, id := range ids[1:] {
			// 严格小于才替换，保证平局时列表靠前的人胜出
			if counts[id][category] < counts[chosen][category] ||
				(counts[id][category] == counts[chosen][category] && len(assignment[id]) < len(assignment[chosen])) {
				chosen = id
			}
		}

		assignment[chosen] = append(assignment[chosen], shift)
		counts[chosen][category]++
	}

	return assignment
}
