package scheduling

import (
	"context"

	"github.com/mingya-dental/clinic-manager/backend/internal/domain"
)

// Store 是排班记录的持久化边界
//
// 唯一性保证：对于同一个 (牙医, 日期, 班次) 三元组，最多存在一条占用中的
// 记录（见 domain.Schedule.Occupying），并发创建时也必须成立。
// 该保证由存储层的唯一约束实现，而不是应用层加锁，因此在多个服务进程
// 同时运行时仍然正确。
type Store interface {
	// CreateSchedule 创建一条待审批的申请
	// 目标格子已被占用时返回 *ConflictError
	CreateSchedule(ctx context.Context, schedule *domain.Schedule) error

	// CreateSchedules 批量创建，任何一条冲突则整批都不提交
	CreateSchedules(ctx context.Context, schedules []*domain.Schedule) error

	GetScheduleByID(ctx context.Context, id int64) (*domain.Schedule, error)
	ListSchedulesByDentist(ctx context.Context, dentistID int64) ([]*domain.Schedule, error)
	ListAllSchedules(ctx context.Context) ([]*domain.Schedule, error)

	// TransitionScheduleStatus 比较并交换：记录当前状态不等于 from 时
	// 返回 *InvalidStateError，不做任何修改
	TransitionScheduleStatus(ctx context.Context, id int64, from, to domain.ScheduleStatus) (*domain.Schedule, error)

	// TransitionScheduleStatuses 批量版本，在同一个事务中执行，
	// 任何一条记录状态不符则整批回滚
	TransitionScheduleStatuses(ctx context.Context, ids []int64, from, to domain.ScheduleStatus) ([]*domain.Schedule, error)

	// DeactivateSchedule 将记录标记为失效，已通过的申请不允许失效
	DeactivateSchedule(ctx context.Context, id int64) (*domain.Schedule, error)
}
