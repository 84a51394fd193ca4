package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/mingya-dental/clinic-manager/backend/internal/domain"
)

// SlotRequest 是牙医提交的单个排班申请
type SlotRequest struct {
	Date  time.Time
	Shift domain.ShiftKind
	Note  string
}

type Action string

const (
	ActionApprove Action = "通过"
	ActionReject  Action = "驳回"
)

// Service 实现排班申请的提交、撤回和审批
// 除了通过 Store 读写之外不持有任何状态，每个公开方法在一次调用内完成
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

// RegisterSlots 为牙医提交一批排班申请，整批要么全部成功要么全部失败
// 校验内容：班次必须是枚举之一、日期不能是过去、批次内不能有重复的格子，
// 与已有记录的冲突检查交给存储层的唯一约束
func (s *Service) RegisterSlots(ctx context.Context, dentistID int64, reqs []SlotRequest) ([]*domain.Schedule, error) {
	if len(reqs) == 0 {
		return nil, &ValidationError{Index: -1, Reason: "申请列表不能为空"}
	}

	window := Window(s.now(), 0)
	seen := make(map[Slot]struct{}, len(reqs))
	schedules := make([]*domain.Schedule, len(reqs))

	for i, req := range reqs {
		if !req.Shift.Valid() {
			return nil, &ValidationError{Index: i, Reason: fmt.Sprintf("未知的班次「%s」", req.Shift)}
		}

		date := TruncateToDay(req.Date)
		if window.IsPast(date) {
			return nil, &ValidationError{Index: i, Reason: fmt.Sprintf("%s 已经过去", date.Format("2006-01-02"))}
		}

		slot := Slot{Date: date, Shift: req.Shift}
		if _, exists := seen[slot]; exists {
			return nil, &ValidationError{Index: i, Reason: fmt.Sprintf("%s 的%s在本次提交中重复", date.Format("2006-01-02"), req.Shift)}
		}
		seen[slot] = struct{}{}

		schedules[i] = &domain.Schedule{
			DentistID: dentistID,
			Date:      date,
			Shift:     req.Shift,
			Status:    domain.StatusPending,
			Note:      req.Note,
		}
	}

	if len(schedules) == 1 {
		if err := s.store.CreateSchedule(ctx, schedules[0]); err != nil {
			return nil, err
		}
		return schedules, nil
	}

	if err := s.store.CreateSchedules(ctx, schedules); err != nil {
		return nil, err
	}

	return schedules, nil
}

// CancelSlot 允许牙医撤回自己的待审批申请
// 已通过的申请对牙医只读，只能由审批侧处理
func (s *Service) CancelSlot(ctx context.Context, dentistID int64, scheduleID int64) error {
	schedule, err := s.store.GetScheduleByID(ctx, scheduleID)
	if err != nil {
		return err
	}

	if schedule.DentistID != dentistID {
		return &ForbiddenError{ScheduleID: scheduleID}
	}
	if schedule.Status != domain.StatusPending {
		return &InvalidStateError{ScheduleID: scheduleID, Status: schedule.Status}
	}

	if _, err := s.store.DeactivateSchedule(ctx, scheduleID); err != nil {
		return err
	}

	return nil
}

// Decide 批量通过或驳回待审批的申请
// 整批原子生效：只要有一条记录不是待审批状态，所有记录都保持不变，
// 错误中会带上第一条状态不符的记录
func (s *Service) Decide(ctx context.Context, scheduleIDs []int64, action Action) ([]*domain.Schedule, error) {
	if len(scheduleIDs) == 0 {
		return nil, &ValidationError{Index: -1, Reason: "审批列表不能为空"}
	}

	var target domain.ScheduleStatus
	switch action {
	case ActionApprove:
		target = domain.StatusApproved
	case ActionReject:
		target = domain.StatusRejected
	default:
		return nil, &ValidationError{Index: -1, Reason: fmt.Sprintf("未知的审批动作「%s」", action)}
	}

	if len(scheduleIDs) == 1 {
		schedule, err := s.store.TransitionScheduleStatus(ctx, scheduleIDs[0], domain.StatusPending, target)
		if err != nil {
			return nil, err
		}
		return []*domain.Schedule{schedule}, nil
	}

	return s.store.TransitionScheduleStatuses(ctx, scheduleIDs, domain.StatusPending, target)
}
