package scheduling

import (
	"time"

	"github.com/mingya-dental/clinic-manager/backend/internal/domain"
)

// CellState 表示日历网格中一个格子的展示状态
type CellState string

const (
	CellEmpty    CellState = "空闲"
	CellPending  CellState = "待审批"
	CellApproved CellState = "已通过"
	CellRejected CellState = "已驳回"
)

// Viewer 表示查看日历的人：牙医查看自己的日历，院长查看某个牙医的日历
type Viewer struct {
	Role      domain.Role
	DentistID int64
}

type Cell struct {
	Slot       Slot             `json:"slot"`
	Schedule   *domain.Schedule `json:"schedule"`
	State      CellState        `json:"state"`
	Actionable bool             `json:"actionable"`
}

type GridDay struct {
	Date  time.Time `json:"date"`
	Cells []Cell    `json:"cells"`
}

type Grid struct {
	WeekStart time.Time `json:"weekStart"`
	Days      []GridDay `json:"days"`
}

// Project 将一批排班记录投影到 7x3 的日历网格上
// 牙医的自助日历和院长的审批日历复用同一个投影，只有 actionable 的判定
// 随查看者角色变化，避免两边各自维护一份格子状态逻辑
func Project(schedules []*domain.Schedule, window WeekWindow, viewer Viewer) Grid {
	// 先按格子归类，占用中的记录优先于遗留的已驳回记录
	occupants := make(map[Slot]*domain.Schedule)
	for _, schedule := range schedules {
		if !schedule.IsActive {
			continue
		}

		slot := Slot{Date: TruncateToDay(schedule.Date), Shift: schedule.Shift}
		current, exists := occupants[slot]
		switch {
		case !exists:
			occupants[slot] = schedule
		case schedule.Occupying():
			occupants[slot] = schedule
		case !current.Occupying() && schedule.CreatedAt.After(current.CreatedAt):
			// 同一个格子有多条已驳回记录时展示最近的一条
			occupants[slot] = schedule
		}
	}

	grid := Grid{
		WeekStart: window.Start,
		Days:      make([]GridDay, 0, 7),
	}

	for _, date := range window.Days() {
		day := GridDay{
			Date:  date,
			Cells: make([]Cell, 0, len(domain.ShiftKinds)),
		}

		for _, shift := range domain.ShiftKinds {
			cell := Cell{
				Slot:  Slot{Date: date, Shift: shift},
				State: CellEmpty,
			}
			if schedule, exists := occupants[cell.Slot]; exists {
				cell.Schedule = schedule
				cell.State = CellState(schedule.Status)
			}
			cell.Actionable = actionable(cell, window, viewer)
			day.Cells = append(day.Cells, cell)
		}

		grid.Days = append(grid.Days, day)
	}

	return grid
}

func actionable(cell Cell, window WeekWindow, viewer Viewer) bool {
	switch viewer.Role {
	case domain.RoleDirector:
		// 审批人只能对待审批的格子操作
		return cell.State == CellPending
	case domain.RoleDentist:
		// 牙医不能操作已经过去的日期
		if window.IsPast(cell.Slot.Date) {
			return false
		}

		switch cell.State {
		case CellEmpty:
			return true
		case CellPending, CellRejected:
			// 待审批的可以撤回，已驳回的可以重新提交
			return cell.Schedule != nil && cell.Schedule.DentistID == viewer.DentistID
		default:
			return false
		}
	default:
		// 前台只读
		return false
	}
}
