package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mingya-dental/clinic-manager/backend/internal/domain"
)

func cellAt(t *testing.T, grid Grid, day time.Time, shift domain.ShiftKind) Cell {
	t.Helper()
	for _, gridDay := range grid.Days {
		if !SameDay(gridDay.Date, day) {
			continue
		}
		for _, cell := range gridDay.Cells {
			if cell.Slot.Shift == shift {
				return cell
			}
		}
	}
	t.Fatalf("网格中找不到 %s 的%s", day.Format("2006-01-02"), shift)
	return Cell{}
}

func TestProjectEmptyWeek(t *testing.T) {
	window := Window(testAnchor, 0)
	grid := Project(nil, window, Viewer{Role: domain.RoleDentist, DentistID: 1})

	require.Len(t, grid.Days, 7)
	for _, day := range grid.Days {
		require.Len(t, day.Cells, 3)
		for _, cell := range day.Cells {
			assert.Equal(t, CellEmpty, cell.State)
			assert.Nil(t, cell.Schedule)
			// 过去的日期不可操作，其余空格子可以申请
			assert.Equal(t, !window.IsPast(day.Date), cell.Actionable)
		}
	}
}

func TestProjectIsIdempotent(t *testing.T) {
	svc, store := newTestService()
	_, err := svc.RegisterSlots(context.Background(), 1, []SlotRequest{
		{Date: date(2025, time.March, 13), Shift: domain.ShiftMorning},
		{Date: date(2025, time.March, 14), Shift: domain.ShiftEvening},
	})
	require.NoError(t, err)

	schedules, err := store.ListSchedulesByDentist(context.Background(), 1)
	require.NoError(t, err)

	window := Window(testAnchor, 0)
	viewer := Viewer{Role: domain.RoleDentist, DentistID: 1}

	first := Project(schedules, window, viewer)
	second := Project(schedules, window, viewer)
	assert.Equal(t, first, second, "相同输入的两次投影应该完全一致")
}

func TestProjectApprovedCellScenario(t *testing.T) {
	svc, store := newTestService()

	// 牙医申请 -> 院长通过 -> 两种视角下该格子都不可操作
	schedules, err := svc.RegisterSlots(context.Background(), 1, []SlotRequest{
		{Date: date(2025, time.March, 14), Shift: domain.ShiftMorning},
	})
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), []int64{schedules[0].ID}, ActionApprove)
	require.NoError(t, err)

	stored, err := store.ListSchedulesByDentist(context.Background(), 1)
	require.NoError(t, err)
	window := Window(testAnchor, 0)

	dentistGrid := Project(stored, window, Viewer{Role: domain.RoleDentist, DentistID: 1})
	cell := cellAt(t, dentistGrid, date(2025, time.March, 14), domain.ShiftMorning)
	assert.Equal(t, CellApproved, cell.State)
	assert.False(t, cell.Actionable)

	directorGrid := Project(stored, window, Viewer{Role: domain.RoleDirector, DentistID: 1})
	cell = cellAt(t, directorGrid, date(2025, time.March, 14), domain.ShiftMorning)
	assert.Equal(t, CellApproved, cell.State)
	assert.False(t, cell.Actionable, "已通过的格子对审批人也不再可操作")
}

func TestProjectPendingCellActionability(t *testing.T) {
	svc, store := newTestService()

	schedules, err := svc.RegisterSlots(context.Background(), 1, []SlotRequest{
		{Date: date(2025, time.March, 14), Shift: domain.ShiftAfternoon},
	})
	require.NoError(t, err)
	_ = schedules

	stored, err := store.ListSchedulesByDentist(context.Background(), 1)
	require.NoError(t, err)
	window := Window(testAnchor, 0)

	// 本人可以撤回
	ownGrid := Project(stored, window, Viewer{Role: domain.RoleDentist, DentistID: 1})
	cell := cellAt(t, ownGrid, date(2025, time.March, 14), domain.ShiftAfternoon)
	assert.Equal(t, CellPending, cell.State)
	assert.True(t, cell.Actionable)

	// 审批人可以审批
	reviewGrid := Project(stored, window, Viewer{Role: domain.RoleDirector, DentistID: 1})
	cell = cellAt(t, reviewGrid, date(2025, time.March, 14), domain.ShiftAfternoon)
	assert.True(t, cell.Actionable)

	// 别的牙医视角下不可操作
	otherGrid := Project(stored, window, Viewer{Role: domain.RoleDentist, DentistID: 2})
	cell = cellAt(t, otherGrid, date(2025, time.March, 14), domain.ShiftAfternoon)
	assert.False(t, cell.Actionable)
}

func TestProjectCancelledCellBecomesEmpty(t *testing.T) {
	svc, store := newTestService()

	schedules, err := svc.RegisterSlots(context.Background(), 1, []SlotRequest{
		{Date: date(2025, time.March, 14), Shift: domain.ShiftEvening},
	})
	require.NoError(t, err)

	require.NoError(t, svc.CancelSlot(context.Background(), 1, schedules[0].ID))

	stored, err := store.ListSchedulesByDentist(context.Background(), 1)
	require.NoError(t, err)
	window := Window(testAnchor, 0)

	grid := Project(stored, window, Viewer{Role: domain.RoleDentist, DentistID: 1})
	cell := cellAt(t, grid, date(2025, time.March, 14), domain.ShiftEvening)
	assert.Equal(t, CellEmpty, cell.State)
	assert.Nil(t, cell.Schedule)
	assert.True(t, cell.Actionable, "撤回后格子重新可以申请")
}

func TestProjectRejectedCell(t *testing.T) {
	svc, store := newTestService()

	schedules, err := svc.RegisterSlots(context.Background(), 1, []SlotRequest{
		{Date: date(2025, time.March, 14), Shift: domain.ShiftMorning},
	})
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), []int64{schedules[0].ID}, ActionReject)
	require.NoError(t, err)

	stored, err := store.ListSchedulesByDentist(context.Background(), 1)
	require.NoError(t, err)
	window := Window(testAnchor, 0)

	// 已驳回的格子本人可以重新申请，审批人不能再操作
	ownGrid := Project(stored, window, Viewer{Role: domain.RoleDentist, DentistID: 1})
	cell := cellAt(t, ownGrid, date(2025, time.March, 14), domain.ShiftMorning)
	assert.Equal(t, CellRejected, cell.State)
	assert.True(t, cell.Actionable)

	reviewGrid := Project(stored, window, Viewer{Role: domain.RoleDirector, DentistID: 1})
	cell = cellAt(t, reviewGrid, date(2025, time.March, 14), domain.ShiftMorning)
	assert.False(t, cell.Actionable)
}

func TestProjectPendingWinsOverLingeringRejected(t *testing.T) {
	svc, store := newTestService()

	schedules, err := svc.RegisterSlots(context.Background(), 1, []SlotRequest{
		{Date: date(2025, time.March, 14), Shift: domain.ShiftMorning},
	})
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), []int64{schedules[0].ID}, ActionReject)
	require.NoError(t, err)

	// 驳回后重新申请，同一个格子同时存在已驳回和待审批两条记录
	reopened, err := svc.RegisterSlots(context.Background(), 1, []SlotRequest{
		{Date: date(2025, time.March, 14), Shift: domain.ShiftMorning},
	})
	require.NoError(t, err)

	stored, err := store.ListSchedulesByDentist(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, stored, 2)

	window := Window(testAnchor, 0)
	grid := Project(stored, window, Viewer{Role: domain.RoleDentist, DentistID: 1})
	cell := cellAt(t, grid, date(2025, time.March, 14), domain.ShiftMorning)
	assert.Equal(t, CellPending, cell.State)
	require.NotNil(t, cell.Schedule)
	assert.Equal(t, reopened[0].ID, cell.Schedule.ID)
}

func TestProjectFrontDeskIsReadOnly(t *testing.T) {
	svc, store := newTestService()

	_, err := svc.RegisterSlots(context.Background(), 1, []SlotRequest{
		{Date: date(2025, time.March, 14), Shift: domain.ShiftMorning},
	})
	require.NoError(t, err)

	stored, err := store.ListSchedulesByDentist(context.Background(), 1)
	require.NoError(t, err)
	window := Window(testAnchor, 0)

	grid := Project(stored, window, Viewer{Role: domain.RoleFrontDesk, DentistID: 1})
	for _, day := range grid.Days {
		for _, cell := range day.Cells {
			assert.False(t, cell.Actionable, "前台视角下任何格子都不可操作")
		}
	}
}

func TestProjectPastPendingCellNotActionableForDentist(t *testing.T) {
	// 上周的待审批记录：牙医不能再操作，审批人仍然可以处理
	lastWeek := Window(testAnchor, -1)
	schedule := &domain.Schedule{
		ID:        1,
		DentistID: 1,
		Date:      lastWeek.Start,
		Shift:     domain.ShiftMorning,
		Status:    domain.StatusPending,
		IsActive:  true,
	}

	grid := Project([]*domain.Schedule{schedule}, lastWeek, Viewer{Role: domain.RoleDentist, DentistID: 1})
	cell := cellAt(t, grid, lastWeek.Start, domain.ShiftMorning)
	assert.Equal(t, CellPending, cell.State)
	assert.False(t, cell.Actionable)

	reviewGrid := Project([]*domain.Schedule{schedule}, lastWeek, Viewer{Role: domain.RoleDirector, DentistID: 1})
	cell = cellAt(t, reviewGrid, lastWeek.Start, domain.ShiftMorning)
	assert.True(t, cell.Actionable)
}
