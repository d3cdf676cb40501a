package handler

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/lock"
	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/scheduler"
	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/utils"
)

func (h *Handler) GetStrategies(w http.ResponseWriter, r *http.Request) {
	h.successResponse(w, r, "获取排班策略成功", scheduler.StrategyNames())
}

func (h *Handler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Strategy    string `json:"strategy"`
		PeriodStart string `json:"periodStart" validate:"required"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 路径中的策略优先于请求体中的策略
	name := chi.URLParam(r, "strategy")
	if name == "" {
		name = req.Strategy
	}

	strategy, err := scheduler.Resolve(name)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	periodStart, err := utils.ParsePeriodStart(req.PeriodStart)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	staff, err := h.repository.GetAllStaff()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 获取排班锁
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	release, err := h.genLock.Acquire(ctx)
	if err != nil {
		switch {
		case errors.Is(err, lock.ErrLocked):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationTimeout)*time.Second)
		defer cancel()
		if err := release(ctx); err != nil {
			// 锁会自动过期，这里只记录日志
			slog.Error("无法释放排班锁", "error", err)
		}
	}()

	schedule, err := scheduler.GenerateSchedule(r.Context(), h.repository, strategy, staff, periodStart)
	if err != nil {
		switch {
		case errors.Is(err, scheduler.ErrEmptyStaff), errors.Is(err, scheduler.ErrNoShifts):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.notifyAssignedStaff(staff, schedule)

	h.successResponse(w, r, "自动排班成功", map[string]any{
		"schedule": schedule,
		"summary":  scheduler.Summarize(staff, scheduler.ScheduleAssignment(schedule)),
	})
}

// CreateSchedule 手动创建一张空的排班表
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PeriodStart string `json:"periodStart" validate:"required"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	periodStart, err := utils.ParsePeriodStart(req.PeriodStart)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	schedule := &domain.Schedule{
		PeriodStart: periodStart,
		Shifts:      make([]*domain.Shift, 0),
	}
	if err := h.repository.CreateSchedule(schedule); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建排班表成功", schedule)
}

// CreateAssignedShift 在排班表中直接安排某个员工上一个班次，不经过自动排班
func (h *Handler) CreateAssignedShift(w http.ResponseWriter, r *http.Request) {
	schedule := r.Context().Value(ScheduleCtx).(*domain.Schedule)

	var req struct {
		StaffID   int64  `json:"staffID" validate:"required,min=1"`
		StartTime string `json:"startTime" validate:"required"`
		EndTime   string `json:"endTime" validate:"required"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	startTime, err := utils.ParseShiftTime(req.StartTime)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	endTime, err := utils.ParseShiftTime(req.EndTime)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	staff, ok := h.loadStaff(w, r, req.StaffID)
	if !ok {
		return
	}
	if !staff.IsActive {
		h.errorResponse(w, r, "该员工已离职")
		return
	}

	staffID := staff.ID
	shift := &domain.Shift{
		StartTime: startTime,
		EndTime:   endTime,
		StaffID:   &staffID,
	}
	if err := utils.ValidateShiftTime(shift); err != nil {
		h.badRequest(w, r, err)
		return
	}

	schedule.AddShift(shift)

	if err := h.repository.CreateAssignedShift(shift); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "shifts_time_check":
			h.badRequest(w, r, errors.New("班次的结束时间必须晚于开始时间"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "添加班次成功", shift)
}

func (h *Handler) GetAllSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.repository.GetAllSchedules()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取排班表列表成功", schedules)
}

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	schedule := r.Context().Value(ScheduleCtx).(*domain.Schedule)
	h.successResponse(w, r, "获取排班表成功", schedule)
}

func (h *Handler) ExportSchedule(w http.ResponseWriter, r *http.Request) {
	schedule := r.Context().Value(ScheduleCtx).(*domain.Schedule)

	ids := make([]int64, 0)
	for staffID := range scheduler.ScheduleAssignment(schedule) {
		ids = append(ids, staffID)
	}

	staff, err := h.repository.GetStaffByIDs(ids)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="schedule_%d.csv"`, schedule.ID))
	w.WriteHeader(http.StatusOK)

	if err := writeScheduleCSV(w, schedule, staff); err != nil {
		// 响应头已经写出，只能记录日志
		h.logInternalServerError(r, err)
	}
}

const csvTimeLayout = "2006-01-02 15:04:05"

var scheduleCSVHeader = []string{"shift_id", "staff_id", "staff_name", "start_time", "end_time", "category"}

// writeScheduleCSV 按排班表中班次的顺序输出 CSV，找不到的员工姓名留空
func writeScheduleCSV(out io.Writer, schedule *domain.Schedule, staff map[int64]*domain.Staff) error {
	cw := csv.NewWriter(out)

	if err := cw.Write(scheduleCSVHeader); err != nil {
		return err
	}

	for _, shift := range schedule.Shifts {
		staffID, staffName := "", ""
		if shift.StaffID != nil {
			staffID = strconv.FormatInt(*shift.StaffID, 10)
			if s, ok := staff[*shift.StaffID]; ok {
				staffName = s.FullName
			}
		}

		record := []string{
			strconv.FormatInt(shift.ID, 10),
			staffID,
			staffName,
			shift.StartTime.Format(csvTimeLayout),
			shift.EndTime.Format(csvTimeLayout),
			string(scheduler.ShiftCategory(shift)),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
