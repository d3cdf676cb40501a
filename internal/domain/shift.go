package domain

import "time"

type Shift struct {
	ID         int64     `json:"id"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	StaffID    *int64    `json:"staffID"`    // 为 nil 时表示该班次还没有分配给任何人
	ScheduleID *int64    `json:"scheduleID"` // 为 nil 时表示该班次还不属于任何排班表
	CreatedAt  time.Time `json:"createdAt"`
	Version    int32     `json:"-"`
}

func (s *Shift) IsAssigned() bool {
	return s.StaffID != nil
}

func (s *Shift) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}
