package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/utils"
)

func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req struct {
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

	shift := &domain.Shift{
		StartTime: startTime,
		EndTime:   endTime,
	}
	if err := utils.ValidateShiftTime(shift); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateShift(shift); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "shifts_time_check":
			h.badRequest(w, r, errors.New("班次的结束时间必须晚于开始时间"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建班次成功", shift)
}

// GetAllShifts 支持通过 ?unassigned=true 只查看未分配的班次
func (h *Handler) GetAllShifts(w http.ResponseWriter, r *http.Request) {
	onlyUnassigned := false
	if v := r.URL.Query().Get("unassigned"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			h.errorResponse(w, r, "unassigned 参数无效")
			return
		}
		onlyUnassigned = b
	}

	shifts, err := h.repository.GetAllShifts(onlyUnassigned)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取班次列表成功", shifts)
}

func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)
	h.successResponse(w, r, "获取班次成功", shift)
}
