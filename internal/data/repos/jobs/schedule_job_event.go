package jobs

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/WinterJet2021/MayWin-Core-Backend/internal/domain"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/dbctx"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/logger"
)

type ScheduleJobEventRepo interface {
	Create(dbc dbctx.Context, ev *types.ScheduleJobEvent) (*types.ScheduleJobEvent, error)
	ListByJob(dbc dbctx.Context, jobID uuid.UUID) ([]*types.ScheduleJobEvent, error)
}

type scheduleJobEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScheduleJobEventRepo(db *gorm.DB, baseLog *logger.Logger) ScheduleJobEventRepo {
	return &scheduleJobEventRepo{
		db:  db,
		log: baseLog.With("repo", "ScheduleJobEventRepo"),
	}
}

func (r *scheduleJobEventRepo) Create(dbc dbctx.Context, ev *types.ScheduleJobEvent) (*types.ScheduleJobEvent, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if ev == nil {
		return nil, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(ev).Error; err != nil {
		return nil, err
	}
	return ev, nil
}

func (r *scheduleJobEventRepo) ListByJob(dbc dbctx.Context, jobID uuid.UUID) ([]*types.ScheduleJobEvent, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ScheduleJobEvent
	if jobID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("job_id = ?", jobID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
