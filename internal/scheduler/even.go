package scheduler

import (
	"time"

	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/domain"
)

// EvenDistribution 轮流分配：第 k 个班次分配给第 k mod N 个人
type EvenDistribution struct{}

func (EvenDistribution) Name() string {
	return StrategyEven
}

func (EvenDistribution) Distribute(staff []*domain.Staff, shifts []*domain.Shift, _ time.Time) Assignment {
	if len(staff) == 0 {
		return Assignment{}
	}

	ids := staffIDs(staff)
	assignment := newAssignment(ids)

	for i, shift := range shifts {
		id := ids[i%len(ids)]
		assignment[id] = append(assignment[id], shift)
	}

	return assignment
}
