package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mingya-dental/clinic-manager/backend/internal/domain"
	"github.com/mingya-dental/clinic-manager/backend/internal/scheduling"
)

// RegisterSchedules 处理牙医批量提交排班申请
func (h *Handler) RegisterSchedules(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req []struct {
		Date  string `json:"date" validate:"required,datetime=2006-01-02"`
		Shift string `json:"shift" validate:"required,oneof=早班 午班 晚班"`
		Note  string `json:"note"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Var(req, "required,min=1,dive"); err != nil {
		h.badRequest(w, r, err)
		return
	}

	slots := make([]scheduling.SlotRequest, 0, len(req))
	for _, item := range req {
		date, err := time.Parse("2006-01-02", item.Date)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		slots = append(slots, scheduling.SlotRequest{
			Date:  date,
			Shift: domain.ShiftKind(item.Shift),
			Note:  item.Note,
		})
	}

	schedules, err := h.scheduler.RegisterSlots(r.Context(), myInfo.ID, slots)
	if err != nil {
		var validationErr *scheduling.ValidationError
		var conflictErr *scheduling.ConflictError
		switch {
		case errors.As(err, &validationErr), errors.As(err, &conflictErr):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "排班申请提交成功", schedules)
}

// ListSchedules 返回排班申请列表，牙医只能看到自己的申请
func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var (
		schedules []*domain.Schedule
		err       error
	)
	if myInfo.Role == domain.RoleDentist {
		schedules, err = h.repository.ListSchedulesByDentist(r.Context(), myInfo.ID)
	} else {
		schedules, err = h.repository.ListAllSchedules(r.Context())
	}
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取排班列表成功", schedules)
}

// GetCalendar 返回一周的日历网格
// 牙医查看自己的日历，其余角色需要通过 dentistID 指定查看哪位牙医
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	weekOffset := 0
	if raw := r.URL.Query().Get("weekOffset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			h.badRequest(w, r, errors.New("weekOffset 必须是整数"))
			return
		}
		weekOffset = offset
	}

	dentistID := myInfo.ID
	if myInfo.Role != domain.RoleDentist {
		raw := r.URL.Query().Get("dentistID")
		if raw == "" {
			h.badRequest(w, r, errors.New("请指定要查看的牙医"))
			return
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.badRequest(w, r, errors.New("dentistID 必须是整数"))
			return
		}
		dentistID = id
	}

	schedules, err := h.repository.ListSchedulesByDentist(r.Context(), dentistID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	window := scheduling.Window(time.Now(), weekOffset)
	grid := scheduling.Project(schedules, window, scheduling.Viewer{
		Role:      myInfo.Role,
		DentistID: dentistID,
	})

	h.successResponse(w, r, "获取日历成功", grid)
}

// CancelSchedule 处理牙医撤回自己的待审批申请
func (h *Handler) CancelSchedule(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.badRequest(w, r, errors.New("无效的排班申请 id"))
		return
	}

	if err := h.scheduler.CancelSlot(r.Context(), myInfo.ID, id); err != nil {
		var forbiddenErr *scheduling.ForbiddenError
		var invalidStateErr *scheduling.InvalidStateError
		switch {
		case errors.Is(err, scheduling.ErrScheduleNotFound):
			h.errorResponse(w, r, "排班申请不存在")
		case errors.As(err, &forbiddenErr), errors.As(err, &invalidStateErr):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "撤回排班申请成功", nil)
}

// DecideSchedules 处理院长批量审批，整批申请要么全部生效要么全部保持不变
func (h *Handler) DecideSchedules(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScheduleIDs []int64 `json:"scheduleIDs" validate:"required,min=1"`
		Action      string  `json:"action" validate:"required,oneof=通过 驳回"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	schedules, err := h.scheduler.Decide(r.Context(), req.ScheduleIDs, scheduling.Action(req.Action))
	if err != nil {
		var validationErr *scheduling.ValidationError
		var invalidStateErr *scheduling.InvalidStateError
		switch {
		case errors.Is(err, scheduling.ErrScheduleNotFound):
			h.errorResponse(w, r, "部分排班申请不存在")
		case errors.As(err, &validationErr), errors.As(err, &invalidStateErr):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.notifyDecidedDentists(schedules, req.Action)

	h.successResponse(w, r, "审批成功", schedules)
}

// notifyDecidedDentists 按牙医归类审批结果并逐人发送通知邮件
// 邮件投递失败不影响审批结果，只记录日志
func (h *Handler) notifyDecidedDentists(schedules []*domain.Schedule, decision string) {
	byDentist := make(map[int64][]*domain.Schedule)
	for _, schedule := range schedules {
		byDentist[schedule.DentistID] = append(byDentist[schedule.DentistID], schedule)
	}

	for dentistID, decided := range byDentist {
		dentist, err := h.repository.GetUserByID(dentistID)
		if err != nil {
			slog.Error("查询牙医信息失败，无法发送审批通知", "dentistID", dentistID, "error", err)
			continue
		}

		slots := make([]string, 0, len(decided))
		for _, schedule := range decided {
			slots = append(slots, fmt.Sprintf("%s %s", schedule.Date.Format("2006-01-02"), schedule.Shift))
		}

		mailMessage := domain.MailMessage{
			Type: "schedule_decision",
			To:   dentist.Email,
			Data: domain.ScheduleDecisionMailData{
				FullName: dentist.FullName,
				Decision: decision,
				Slots:    slots,
			},
		}

		if err := h.publishMailMessage(mailMessage); err != nil {
			slog.Error("审批通知邮件投递失败", "dentistID", dentistID, "error", err)
		}
	}
}
