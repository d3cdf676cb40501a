package scheduler

import (
	"math"

	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/domain"
)

type StaffSummary struct {
	StaffID     int64   `json:"staffID"`
	Shifts      int     `json:"shifts"`
	DayShifts   int     `json:"dayShifts"`
	NightShifts int     `json:"nightShifts"`
	WorkDays    int     `json:"workDays"`
	WorkHours   float64 `json:"workHours"`
}

// Summary 排班方案的统计信息
type Summary struct {
	Staff         []StaffSummary `json:"staff"`
	IdleStaff     int            `json:"idleStaff"`     // 没有分到任何班次的人数
	HoursVariance float64        `json:"hoursVariance"` // 工作时长的方差，越小越均衡
}

// Summarize 按照人员列表的顺序统计每个人的工作量
func Summarize(staff []*domain.Staff, assignment Assignment) *Summary {
	summary := &Summary{
		Staff: make([]StaffSummary, 0, len(staff)),
	}

	visited := make(map[int64]bool, len(staff))
	for _, s := range staff {
		if visited[s.ID] {
			continue
		}
		visited[s.ID] = true

		item := StaffSummary{StaffID: s.ID}
		days := make(map[CalendarDay]struct{})

		for _, shift := range assignment[s.ID] {
			item.Shifts++
			switch ShiftCategory(shift) {
			case CategoryNight:
				item.NightShifts++
			default:
				item.DayShifts++
			}
			if day, ok := ShiftCalendarDay(shift); ok {
				days[day] = struct{}{}
			}
			item.WorkHours += shift.Duration().Hours()
		}
		item.WorkDays = len(days)

		if item.Shifts == 0 {
			summary.IdleStaff++
		}
		summary.Staff = append(summary.Staff, item)
	}

	if len(summary.Staff) == 0 {
		return summary
	}

	avg := 0.0
	for _, item := range summary.Staff {
		avg += item.WorkHours
	}
	avg /= float64(len(summary.Staff))

	variance := 0.0
	for _, item := range summary.Staff {
		variance += math.Pow(item.WorkHours-avg, 2)
	}
	summary.HoursVariance = variance / float64(len(summary.Staff))

	return summary
}

// ScheduleAssignment 将已经落库的排班表重新按人员分组
func ScheduleAssignment(schedule *domain.Schedule) Assignment {
	assignment := make(Assignment)
	for _, shift := range schedule.Shifts {
		if shift.StaffID == nil {
			continue
		}
		assignment[*shift.StaffID] = append(assignment[*shift.StaffID], shift)
	}
	return assignment
}
