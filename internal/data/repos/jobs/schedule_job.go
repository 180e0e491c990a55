package jobs

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/WinterJet2021/MayWin-Core-Backend/internal/domain"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/domain/scheduling"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/dbctx"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/logger"
)

type ScheduleJobRepo interface {
	Create(dbc dbctx.Context, job *types.ScheduleJob) (*types.ScheduleJob, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ScheduleJob, error)
	FindByIdempotencyKey(dbc dbctx.Context, organizationID, unitID int64, key string, scheduleID int64) (*types.ScheduleJob, error)
	ListByStatus(dbc dbctx.Context, status types.JobStatus) ([]*types.ScheduleJob, error)
	TransitionStatus(dbc dbctx.Context, id uuid.UUID, from, to types.JobStatus) (bool, error)
	MarkFailed(dbc dbctx.Context, id uuid.UUID, code, message string) (bool, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	UpdateAttributes(dbc dbctx.Context, id uuid.UUID, mutate func(*types.JobAttributes)) error
}

type scheduleJobRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScheduleJobRepo(db *gorm.DB, baseLog *logger.Logger) ScheduleJobRepo {
	return &scheduleJobRepo{
		db:  db,
		log: baseLog.With("repo", "ScheduleJobRepo"),
	}
}

func (r *scheduleJobRepo) Create(dbc dbctx.Context, job *types.ScheduleJob) (*types.ScheduleJob, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if job == nil {
		return nil, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(job).Error; err != nil {
		return nil, err
	}
	return job, nil
}

func (r *scheduleJobRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ScheduleJob, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var job types.ScheduleJob
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&job).Error
	if err != nil {
		return nil, err
	}
	if job.ID == uuid.Nil {
		return nil, nil
	}
	return &job, nil
}

func (r *scheduleJobRepo) FindByIdempotencyKey(dbc dbctx.Context, organizationID, unitID int64, key string, scheduleID int64) (*types.ScheduleJob, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if key == "" {
		return nil, nil
	}
	var job types.ScheduleJob
	err := transaction.WithContext(dbc.Ctx).
		Where("organization_id = ? AND unit_id = ? AND idempotency_key = ? AND schedule_id = ?",
			organizationID, unitID, key, scheduleID).
		Order("created_at DESC").
		Limit(1).
		Find(&job).Error
	if err != nil {
		return nil, err
	}
	if job.ID == uuid.Nil {
		return nil, nil
	}
	return &job, nil
}

func (r *scheduleJobRepo) ListByStatus(dbc dbctx.Context, status types.JobStatus) ([]*types.ScheduleJob, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ScheduleJob
	if err := transaction.WithContext(dbc.Ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// TransitionStatus moves a job from -> to only if it is still in from.
// A false return with nil error means another writer got there first.
func (r *scheduleJobRepo) TransitionStatus(dbc dbctx.Context, id uuid.UUID, from, to types.JobStatus) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return false, nil
	}
	if !scheduling.CanTransition(from, to) {
		return false, nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.ScheduleJob{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkFailed fails a job that has not yet reached a terminal state.
func (r *scheduleJobRepo) MarkFailed(dbc dbctx.Context, id uuid.UUID, code, message string) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return false, nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.ScheduleJob{}).
		Where("id = ? AND status NOT IN ?", id, []types.JobStatus{scheduling.JobCompleted, scheduling.JobFailed}).
		Updates(map[string]interface{}{
			"status":        scheduling.JobFailed,
			"error_code":    code,
			"error_message": message,
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *scheduleJobRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.ScheduleJob{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// UpdateAttributes applies mutate to the stored attribute bag inside one transaction.
func (r *scheduleJobRepo) UpdateAttributes(dbc dbctx.Context, id uuid.UUID, mutate func(*types.JobAttributes)) error {
	if id == uuid.Nil || mutate == nil {
		return nil
	}
	apply := func(txx *gorm.DB) error {
		var job types.ScheduleJob
		if err := txx.Where("id = ?", id).Limit(1).Find(&job).Error; err != nil {
			return err
		}
		if job.ID == uuid.Nil {
			return gorm.ErrRecordNotFound
		}
		attrs := job.Attributes.Data()
		mutate(&attrs)
		return txx.Model(&types.ScheduleJob{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"attributes": datatypes.NewJSONType(attrs),
				"updated_at": time.Now(),
			}).Error
	}
	if dbc.Tx != nil {
		return apply(dbc.Tx.WithContext(dbc.Ctx))
	}
	err := r.db.WithContext(dbc.Ctx).Transaction(apply)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.log.Warn("UpdateAttributes on missing job", "job_id", id)
	}
	return err
}
