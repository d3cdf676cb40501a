package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/lock"
	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/scheduler"
)

const generateBody = `{"periodStart":"2025-10-20"}`

func (env *testEnv) addUnassignedShifts(t *testing.T, n int) {
	t.Helper()

	start := time.Date(2025, 10, 20, 8, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		begin := start.Add(time.Duration(i) * 12 * time.Hour)
		require.NoError(t, env.store.CreateShift(&domain.Shift{StartTime: begin, EndTime: begin.Add(8 * time.Hour)}))
	}
}

func TestGenerateSchedule_Success(t *testing.T) {
	env := newTestEnv(t)
	env.addUnassignedShifts(t, 4)

	rec, resp := env.do(t, http.MethodPost, "/schedules/generate/even", adminToken(t), generateBody)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, "自动排班成功", resp.Message)

	data := resp.Data.(map[string]any)
	schedule := data["schedule"].(map[string]any)
	summary := data["summary"].(map[string]any)
	assert.Len(t, schedule["shifts"], 4)
	assert.Len(t, summary["staff"], 2)
	assert.EqualValues(t, 0, summary["idleStaff"])

	// 所有班次都已经落库
	unassigned, err := env.store.GetAllShifts(true)
	require.NoError(t, err)
	assert.Empty(t, unassigned)

	stored, err := env.store.GetScheduleByID(int64(schedule["id"].(float64)))
	require.NoError(t, err)
	assert.True(t, stored.Validate())
	assert.Len(t, stored.ShiftsByStaff(staffID), 2)
	assert.Len(t, stored.ShiftsByStaff(staffTwoID), 2)

	assert.Equal(t, 1, env.locker.acquired)
	assert.Equal(t, 1, env.locker.released)
}

func TestGenerateSchedule_PublishesOneMailPerAssignedStaff(t *testing.T) {
	env := newTestEnv(t)
	env.addUnassignedShifts(t, 3)

	_, resp := env.do(t, http.MethodPost, "/schedules/generate", adminToken(t), `{"strategy":"even","periodStart":"2025-10-20"}`)
	require.True(t, resp.Success, resp.Message)

	require.Len(t, env.mail.messages, 2)

	recipients := make([]string, 0, 2)
	total := 0
	for i, msg := range env.mail.messages {
		assert.Equal(t, "email_queue", env.mail.keys[i])
		assert.Equal(t, "application/json", msg.ContentType)

		var mail struct {
			Type string                          `json:"type"`
			To   string                          `json:"to"`
			Data domain.ScheduleAssignedMailData `json:"data"`
		}
		require.NoError(t, json.Unmarshal(msg.Body, &mail))
		assert.Equal(t, domain.MailTypeScheduleAssigned, mail.Type)
		assert.Equal(t, "2025-10-20", mail.Data.PeriodStart)
		assert.NotEmpty(t, mail.Data.Shifts)

		recipients = append(recipients, mail.To)
		total += len(mail.Data.Shifts)
	}

	// 顺序与员工列表一致
	assert.Equal(t, []string{"ww@example.com", "lq@example.com"}, recipients)
	assert.Equal(t, 3, total)
}

func TestGenerateSchedule_BusinessErrors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(env *testEnv)
		message string
	}{
		{
			name: "no active staff",
			setup: func(env *testEnv) {
				env.addUnassignedShifts(t, 2)
				env.store.staff[staffID].IsActive = false
				env.store.staff[staffTwoID].IsActive = false
			},
			message: scheduler.ErrEmptyStaff.Error(),
		},
		{
			name:    "no unassigned shifts",
			setup:   func(env *testEnv) {},
			message: scheduler.ErrNoShifts.Error(),
		},
		{
			name: "generation already running",
			setup: func(env *testEnv) {
				env.addUnassignedShifts(t, 2)
				env.locker.err = lock.ErrLocked
			},
			message: lock.ErrLocked.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			tt.setup(env)

			rec, resp := env.do(t, http.MethodPost, "/schedules/generate/balance_day_night", adminToken(t), generateBody)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.message, resp.Message)
			assert.Empty(t, env.mail.messages)
			assert.Equal(t, env.locker.acquired, env.locker.released)

			schedules, err := env.store.GetAllSchedules()
			require.NoError(t, err)
			assert.Empty(t, schedules)
		})
	}
}

func TestGenerateSchedule_PersistenceFailureIsInternalError(t *testing.T) {
	env := newTestEnv(t)
	env.addUnassignedShifts(t, 4)
	env.store.commitErr = errors.New("connection reset")

	rec, resp := env.do(t, http.MethodPost, "/schedules/generate/even", adminToken(t), generateBody)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "服务器内部错误", resp.Message)

	unassigned, err := env.store.GetAllShifts(true)
	require.NoError(t, err)
	assert.Len(t, unassigned, 4)
	assert.Empty(t, env.mail.messages)
	assert.Equal(t, 1, env.locker.released)
}

func TestCreateSchedule(t *testing.T) {
	env := newTestEnv(t)

	_, resp := env.do(t, http.MethodPost, "/schedules", adminToken(t), `{"periodStart":"2025-10-27"}`)
	require.True(t, resp.Success, resp.Message)

	data := resp.Data.(map[string]any)
	assert.Empty(t, data["shifts"])

	stored, err := env.store.GetScheduleByID(int64(data["id"].(float64)))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 10, 27, 0, 0, 0, 0, time.UTC), stored.PeriodStart)
	assert.Empty(t, stored.Shifts)

	_, resp = env.do(t, http.MethodPost, "/schedules", adminToken(t), `{"periodStart":"next monday"}`)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "YYYY-MM-DD")
}

func TestCreateAssignedShift(t *testing.T) {
	env := newTestEnv(t)

	schedule := &domain.Schedule{PeriodStart: time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, env.store.CreateSchedule(schedule))
	path := fmt.Sprintf("/schedules/%d/shifts", schedule.ID)

	_, resp := env.do(t, http.MethodPost, path, adminToken(t),
		`{"staffID":2,"startTime":"2025-10-20 20:00:00","endTime":"2025-10-21T04:00:00+08:00"}`)
	require.True(t, resp.Success, resp.Message)

	shift := resp.Data.(map[string]any)
	assert.EqualValues(t, staffID, shift["staffID"])
	assert.EqualValues(t, schedule.ID, shift["scheduleID"])

	stored, err := env.store.GetScheduleByID(schedule.ID)
	require.NoError(t, err)
	require.Len(t, stored.Shifts, 1)
	assert.Equal(t, time.Date(2025, 10, 21, 4, 0, 0, 0, time.UTC), stored.Shifts[0].EndTime)
	assert.Len(t, stored.ShiftsByStaff(staffID), 1)

	// 手动安排的班次不会进入未分配的班次池
	unassigned, err := env.store.GetAllShifts(true)
	require.NoError(t, err)
	assert.Empty(t, unassigned)
}

func TestCreateAssignedShift_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		token   func(t *testing.T) string
		body    string
		message string
	}{
		{"unknown staff", "/schedules/1/shifts", adminToken,
			`{"staffID":99,"startTime":"2025-10-20 08:00:00","endTime":"2025-10-20 16:00:00"}`, "员工不存在"},
		{"inactive staff", "/schedules/1/shifts", adminToken,
			`{"staffID":3,"startTime":"2025-10-20 08:00:00","endTime":"2025-10-20 16:00:00"}`, "该员工已离职"},
		{"end before start", "/schedules/1/shifts", adminToken,
			`{"staffID":2,"startTime":"2025-10-20 16:00:00","endTime":"2025-10-20 08:00:00"}`, "结束时间必须晚于开始时间"},
		{"bad time", "/schedules/1/shifts", adminToken,
			`{"staffID":2,"startTime":"tomorrow","endTime":"2025-10-20 08:00:00"}`, "无法解析时间"},
		{"missing staff", "/schedules/1/shifts", adminToken,
			`{"startTime":"2025-10-20 08:00:00","endTime":"2025-10-20 16:00:00"}`, "StaffID"},
		{"unknown schedule", "/schedules/99/shifts", adminToken,
			`{"staffID":2,"startTime":"2025-10-20 08:00:00","endTime":"2025-10-20 16:00:00"}`, "排班表不存在"},
		{"not admin", "/schedules/1/shifts", staffToken,
			`{"staffID":2,"startTime":"2025-10-20 08:00:00","endTime":"2025-10-20 16:00:00"}`, "权限不足"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			require.NoError(t, env.store.CreateSchedule(&domain.Schedule{PeriodStart: time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)}))

			_, resp := env.do(t, http.MethodPost, tt.path, tt.token(t), tt.body)
			assert.False(t, resp.Success)
			assert.Contains(t, resp.Message, tt.message)

			stored, err := env.store.GetScheduleByID(1)
			require.NoError(t, err)
			assert.Empty(t, stored.Shifts)
		})
	}
}
