package scheduling

import (
	"errors"
	"fmt"
	"time"

	"github.com/mingya-dental/clinic-manager/backend/internal/domain"
)

var ErrScheduleNotFound = errors.New("排班申请不存在")

// ValidationError 表示输入本身不合法，调用方修正输入后才能重试
// Index 是批量提交中出错项的下标，整批层面的错误用 -1 表示
type ValidationError struct {
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return e.Reason
	}
	return fmt.Sprintf("第 %d 项不合法：%s", e.Index+1, e.Reason)
}

// ConflictError 表示目标格子已经有占用中的排班申请
type ConflictError struct {
	DentistID int64
	Date      time.Time
	Shift     domain.ShiftKind
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s 的%s已有排班申请", e.Date.Format("2006-01-02"), e.Shift)
}

// ForbiddenError 表示请求者无权操作目标记录
type ForbiddenError struct {
	ScheduleID int64
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("无权操作 id 为 %d 的排班申请", e.ScheduleID)
}

// InvalidStateError 表示目标记录的当前状态不允许该操作
type InvalidStateError struct {
	ScheduleID int64
	Status     domain.ScheduleStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("id 为 %d 的排班申请当前状态为「%s」，不允许该操作", e.ScheduleID, e.Status)
}
