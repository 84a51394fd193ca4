package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mingya-dental/clinic-manager/backend/internal/domain"
	"github.com/mingya-dental/clinic-manager/backend/internal/scheduling"
)

// 排班的唯一性由数据库中的部分唯一索引保证，索引只覆盖占用中的记录
// （is_active 且状态为待审批或已通过），因此已驳回和已撤回的记录不会
// 挡住同一个格子的重新申请，多个服务进程并发创建时依然正确
const scheduleConflictConstraint = "schedules_dentist_date_shift_active_key"

// 编译期确保 Repository 满足排班核心的存储契约
var _ scheduling.Store = (*Repository)(nil)

func mapScheduleCreateError(err error, schedule *domain.Schedule) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.ConstraintName == scheduleConflictConstraint {
		return &scheduling.ConflictError{
			DentistID: schedule.DentistID,
			Date:      schedule.Date,
			Shift:     schedule.Shift,
		}
	}
	return err
}

func (r *Repository) CreateSchedule(ctx context.Context, schedule *domain.Schedule) error {
	query := `
		INSERT INTO schedules (dentist_id, work_date, shift, status, note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_active, created_at, updated_at, version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{schedule.DentistID, schedule.Date, schedule.Shift, schedule.Status, schedule.Note}
	dst := []any{&schedule.ID, &schedule.IsActive, &schedule.CreatedAt, &schedule.UpdatedAt, &schedule.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return mapScheduleCreateError(err, schedule)
	}

	return nil
}

func (r *Repository) CreateSchedules(ctx context.Context, schedules []*domain.Schedule) error {
	ctx, cancel := r.txContext(ctx)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO schedules (dentist_id, work_date, shift, status, note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_active, created_at, updated_at, version
	`

	// 任何一条插入失败都会让整个事务回滚，不会留下部分提交的批次
	for _, schedule := range schedules {
		args := []any{schedule.DentistID, schedule.Date, schedule.Shift, schedule.Status, schedule.Note}
		dst := []any{&schedule.ID, &schedule.IsActive, &schedule.CreatedAt, &schedule.UpdatedAt, &schedule.Version}
		if err := tx.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
			return mapScheduleCreateError(err, schedule)
		}
	}

	return tx.Commit()
}

func (r *Repository) GetScheduleByID(ctx context.Context, id int64) (*domain.Schedule, error) {
	query := `
		SELECT dentist_id, work_date, shift, status, note, is_active, created_at, updated_at, version
		FROM schedules WHERE id = $1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	schedule := &domain.Schedule{
		ID: id,
	}

	dst := []any{&schedule.DentistID, &schedule.Date, &schedule.Shift, &schedule.Status, &schedule.Note, &schedule.IsActive, &schedule.CreatedAt, &schedule.UpdatedAt, &schedule.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, scheduling.ErrScheduleNotFound
		}
		return nil, err
	}

	return schedule, nil
}

func (r *Repository) scanSchedules(ctx context.Context, query string, args ...any) ([]*domain.Schedule, error) {
	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := make([]*domain.Schedule, 0)
	for rows.Next() {
		schedule := &domain.Schedule{}
		dst := []any{&schedule.ID, &schedule.DentistID, &schedule.Date, &schedule.Shift, &schedule.Status, &schedule.Note, &schedule.IsActive, &schedule.CreatedAt, &schedule.UpdatedAt, &schedule.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return schedules, nil
}

func (r *Repository) ListSchedulesByDentist(ctx context.Context, dentistID int64) ([]*domain.Schedule, error) {
	query := `
		SELECT id, dentist_id, work_date, shift, status, note, is_active, created_at, updated_at, version
		FROM schedules
		WHERE dentist_id = $1 AND is_active
		ORDER BY work_date, shift, id
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return r.scanSchedules(ctx, query, dentistID)
}

func (r *Repository) ListAllSchedules(ctx context.Context) ([]*domain.Schedule, error) {
	query := `
		SELECT id, dentist_id, work_date, shift, status, note, is_active, created_at, updated_at, version
		FROM schedules
		WHERE is_active
		ORDER BY work_date, shift, id
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return r.scanSchedules(ctx, query)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// transitionSchedule 用一条带状态条件的 UPDATE 实现比较并交换，
// db 既可以是连接池也可以是事务
func transitionSchedule(ctx context.Context, db queryRower, id int64, from, to domain.ScheduleStatus) (*domain.Schedule, error) {
	query := `
		UPDATE schedules
		SET status = $1, updated_at = now(), version = version + 1
		WHERE id = $2 AND status = $3 AND is_active
		RETURNING dentist_id, work_date, shift, note, is_active, created_at, updated_at, version
	`

	schedule := &domain.Schedule{
		ID:     id,
		Status: to,
	}

	dst := []any{&schedule.DentistID, &schedule.Date, &schedule.Shift, &schedule.Note, &schedule.IsActive, &schedule.CreatedAt, &schedule.UpdatedAt, &schedule.Version}
	err := db.QueryRowContext(ctx, query, to, id, from).Scan(dst...)
	if err == nil {
		return schedule, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// 没有命中说明记录不存在或者状态已经变化，查一次当前状态来区分
	var current domain.ScheduleStatus
	query = `SELECT status FROM schedules WHERE id = $1`
	if err := db.QueryRowContext(ctx, query, id).Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, scheduling.ErrScheduleNotFound
		}
		return nil, err
	}

	return nil, &scheduling.InvalidStateError{ScheduleID: id, Status: current}
}

func (r *Repository) TransitionScheduleStatus(ctx context.Context, id int64, from, to domain.ScheduleStatus) (*domain.Schedule, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return transitionSchedule(ctx, r.dbpool, id, from, to)
}

func (r *Repository) TransitionScheduleStatuses(ctx context.Context, ids []int64, from, to domain.ScheduleStatus) ([]*domain.Schedule, error) {
	ctx, cancel := r.txContext(ctx)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 第一条状态不符的记录会让整个事务回滚，批次要么全部生效要么全部不变
	schedules := make([]*domain.Schedule, 0, len(ids))
	for _, id := range ids {
		schedule, err := transitionSchedule(ctx, tx, id, from, to)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return schedules, nil
}

func (r *Repository) DeactivateSchedule(ctx context.Context, id int64) (*domain.Schedule, error) {
	query := `
		UPDATE schedules
		SET is_active = false, updated_at = now(), version = version + 1
		WHERE id = $1 AND is_active AND status <> $2
		RETURNING dentist_id, work_date, shift, status, note, created_at, updated_at, version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	schedule := &domain.Schedule{
		ID:       id,
		IsActive: false,
	}

	dst := []any{&schedule.DentistID, &schedule.Date, &schedule.Shift, &schedule.Status, &schedule.Note, &schedule.CreatedAt, &schedule.UpdatedAt, &schedule.Version}
	err := r.dbpool.QueryRowContext(ctx, query, id, domain.StatusApproved).Scan(dst...)
	if err == nil {
		return schedule, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	var current domain.ScheduleStatus
	query = `SELECT status FROM schedules WHERE id = $1`
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, scheduling.ErrScheduleNotFound
		}
		return nil, err
	}

	return nil, &scheduling.InvalidStateError{ScheduleID: id, Status: current}
}
