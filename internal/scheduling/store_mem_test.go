package scheduling

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mingya-dental/clinic-manager/backend/internal/domain"
)

// memStore 是测试用的内存存储实现
// 冲突判定和数据库中的部分唯一索引使用同一个谓词（见 Schedule.Occupying），
// 互斥锁模拟存储层对并发创建的串行化
type memStore struct {
	mu        sync.Mutex
	nextID    int64
	schedules map[int64]*domain.Schedule
}

func newMemStore() *memStore {
	return &memStore{
		nextID:    1,
		schedules: make(map[int64]*domain.Schedule),
	}
}

func (m *memStore) conflictLocked(schedule *domain.Schedule) *ConflictError {
	for _, existing := range m.schedules {
		if existing.Occupying() &&
			existing.DentistID == schedule.DentistID &&
			SameDay(existing.Date, schedule.Date) &&
			existing.Shift == schedule.Shift {
			return &ConflictError{
				DentistID: schedule.DentistID,
				Date:      schedule.Date,
				Shift:     schedule.Shift,
			}
		}
	}
	return nil
}

func (m *memStore) insertLocked(schedule *domain.Schedule) {
	now := time.Now()
	stored := *schedule
	stored.ID = m.nextID
	stored.IsActive = true
	stored.CreatedAt = now
	stored.UpdatedAt = now
	stored.Version = 1
	m.nextID++
	m.schedules[stored.ID] = &stored
	*schedule = stored
}

func (m *memStore) CreateSchedule(ctx context.Context, schedule *domain.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if conflict := m.conflictLocked(schedule); conflict != nil {
		return conflict
	}
	m.insertLocked(schedule)
	return nil
}

func (m *memStore) CreateSchedules(ctx context.Context, schedules []*domain.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// 先整批检查再整批插入，保证全有或全无
	for _, schedule := range schedules {
		if conflict := m.conflictLocked(schedule); conflict != nil {
			return conflict
		}
	}
	for _, schedule := range schedules {
		m.insertLocked(schedule)
	}
	return nil
}

func (m *memStore) GetScheduleByID(ctx context.Context, id int64) (*domain.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	schedule, exists := m.schedules[id]
	if !exists {
		return nil, ErrScheduleNotFound
	}
	copied := *schedule
	return &copied, nil
}

func (m *memStore) ListSchedulesByDentist(ctx context.Context, dentistID int64) ([]*domain.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	schedules := make([]*domain.Schedule, 0)
	for _, schedule := range m.schedules {
		if schedule.DentistID == dentistID && schedule.IsActive {
			copied := *schedule
			schedules = append(schedules, &copied)
		}
	}
	sort.Slice(schedules, func(i, j int) bool { return schedules[i].ID < schedules[j].ID })
	return schedules, nil
}

func (m *memStore) ListAllSchedules(ctx context.Context) ([]*domain.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	schedules := make([]*domain.Schedule, 0)
	for _, schedule := range m.schedules {
		if schedule.IsActive {
			copied := *schedule
			schedules = append(schedules, &copied)
		}
	}
	sort.Slice(schedules, func(i, j int) bool { return schedules[i].ID < schedules[j].ID })
	return schedules, nil
}

func (m *memStore) transitionLocked(id int64, from, to domain.ScheduleStatus) (*domain.Schedule, error) {
	schedule, exists := m.schedules[id]
	if !exists {
		return nil, ErrScheduleNotFound
	}
	if !schedule.IsActive || schedule.Status != from {
		return nil, &InvalidStateError{ScheduleID: id, Status: schedule.Status}
	}

	schedule.Status = to
	schedule.UpdatedAt = time.Now()
	schedule.Version++
	copied := *schedule
	return &copied, nil
}

func (m *memStore) TransitionScheduleStatus(ctx context.Context, id int64, from, to domain.ScheduleStatus) (*domain.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.transitionLocked(id, from, to)
}

func (m *memStore) TransitionScheduleStatuses(ctx context.Context, ids []int64, from, to domain.ScheduleStatus) ([]*domain.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// 先整批检查再整批修改，保证整批原子生效
	for _, id := range ids {
		schedule, exists := m.schedules[id]
		if !exists {
			return nil, ErrScheduleNotFound
		}
		if !schedule.IsActive || schedule.Status != from {
			return nil, &InvalidStateError{ScheduleID: id, Status: schedule.Status}
		}
	}

	schedules := make([]*domain.Schedule, 0, len(ids))
	for _, id := range ids {
		schedule, err := m.transitionLocked(id, from, to)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	return schedules, nil
}

func (m *memStore) DeactivateSchedule(ctx context.Context, id int64) (*domain.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	schedule, exists := m.schedules[id]
	if !exists {
		return nil, ErrScheduleNotFound
	}
	if schedule.Status == domain.StatusApproved {
		return nil, &InvalidStateError{ScheduleID: id, Status: schedule.Status}
	}

	schedule.IsActive = false
	schedule.UpdatedAt = time.Now()
	schedule.Version++
	copied := *schedule
	return &copied, nil
}

var _ Store = (*memStore)(nil)
