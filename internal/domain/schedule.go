package domain

import "time"

type Schedule struct {
	ID          int64     `json:"id"`
	PeriodStart time.Time `json:"periodStart"`
	Shifts      []*Shift  `json:"shifts"`
	CreatedAt   time.Time `json:"createdAt"`
	Version     int32     `json:"-"`
}

// Validate 当且仅当排班表至少有一个班次，并且每个班次都已经分配了人员时返回 true
func (s *Schedule) Validate() bool {
	if len(s.Shifts) == 0 {
		return false
	}
	for _, shift := range s.Shifts {
		if shift.StaffID == nil {
			return false
		}
	}
	return true
}

func (s *Schedule) ShiftsByStaff(staffID int64) []*Shift {
	shifts := make([]*Shift, 0)
	for _, shift := range s.Shifts {
		if shift.StaffID != nil && *shift.StaffID == staffID {
			shifts = append(shifts, shift)
		}
	}
	return shifts
}

// AddShift 将班次挂到排班表下，班次通过 ScheduleID 反向引用排班表
func (s *Schedule) AddShift(shift *Shift) {
	id := s.ID
	shift.ScheduleID = &id
	s.Shifts = append(s.Shifts, shift)
}
