package domain

import "time"

const MailTypeScheduleAssigned = "schedule_assigned"

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type ScheduleAssignedMailShift struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

type ScheduleAssignedMailData struct {
	FullName    string                      `json:"fullName"`
	ScheduleID  int64                       `json:"scheduleID"`
	PeriodStart string                      `json:"periodStart"`
	Shifts      []ScheduleAssignedMailShift `json:"shifts"`
}
