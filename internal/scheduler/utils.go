package scheduler

import (
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/domain"
)

type Category string

const (
	CategoryDay   Category = "day"
	CategoryNight Category = "night"
)

// ShiftCategory 根据班次的开始时间判断班次类型
// 开始时间在 [18, 24) 或 [0, 6) 点的为夜班，其余为白班；班次为空或没有开始时间时视为白班
func ShiftCategory(shift *domain.Shift) Category {
	if shift == nil || shift.StartTime.IsZero() {
		return CategoryDay
	}

	hour := shift.StartTime.Hour()
	if hour >= 18 || hour < 6 {
		return CategoryNight
	}
	return CategoryDay
}

// CalendarDay 班次开始时间所在的日历日，可以直接作为 map 的键
type CalendarDay struct {
	Year  int
	Month time.Month
	Day   int
}

func (d CalendarDay) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// ShiftCalendarDay 返回班次开始时间所在的日期，无法确定时第二个返回值为 false
func ShiftCalendarDay(shift *domain.Shift) (CalendarDay, bool) {
	if shift == nil || shift.StartTime.IsZero() {
		return CalendarDay{}, false
	}

	year, month, day := shift.StartTime.Date()
	return CalendarDay{Year: year, Month: month, Day: day}, true
}

// staffIDs 按输入顺序取出人员 ID，这个顺序同时也是各个策略打破平局的顺序
func staffIDs(staff []*domain.Staff) []int64 {
	ids := make([]int64, 0, len(staff))
	for _, s := range staff {
		ids = append(ids, s.ID)
	}
	return ids
}

func newAssignment(ids []int64) Assignment {
	assignment := make(Assignment, len(ids))
	for _, id := range ids {
		assignment[id] = make([]*domain.Shift, 0)
	}
	return assignment
}
