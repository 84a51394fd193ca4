package domain

import "time"

type ShiftKind string

const (
	ShiftMorning   ShiftKind = "早班"
	ShiftAfternoon ShiftKind = "午班"
	ShiftEvening   ShiftKind = "晚班"
)

// ShiftKinds 是固定的班次枚举，日历网格的列顺序以此为准
var ShiftKinds = []ShiftKind{ShiftMorning, ShiftAfternoon, ShiftEvening}

func (s ShiftKind) Valid() bool {
	for _, kind := range ShiftKinds {
		if s == kind {
			return true
		}
	}
	return false
}

type ScheduleStatus string

const (
	StatusPending  ScheduleStatus = "待审批"
	StatusApproved ScheduleStatus = "已通过"
	StatusRejected ScheduleStatus = "已驳回"
)

// Schedule 表示某个牙医对某一天某个班次的申请记录
type Schedule struct {
	ID        int64          `json:"id"`
	DentistID int64          `json:"dentistID"`
	Date      time.Time      `json:"date"`
	Shift     ShiftKind      `json:"shift"`
	Status    ScheduleStatus `json:"status"`
	Note      string         `json:"note"`
	IsActive  bool           `json:"isActive"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Version   int32          `json:"-"`
}

// Occupying 表示该记录是否占用 (牙医, 日期, 班次) 这个三元组
// 已驳回的记录不占用三元组，牙医可以对同一个格子重新提交申请
func (s *Schedule) Occupying() bool {
	return s.IsActive && (s.Status == StatusPending || s.Status == StatusApproved)
}
