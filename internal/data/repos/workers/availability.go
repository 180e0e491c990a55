package workers

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/WinterJet2021/MayWin-Core-Backend/internal/domain"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/dbctx"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/logger"
)

type WorkerAvailabilityRepo interface {
	ListInRange(dbc dbctx.Context, unitID int64, workerIDs []int64, start, end datatypes.Date) ([]*types.WorkerAvailability, error)
}

type workerAvailabilityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWorkerAvailabilityRepo(db *gorm.DB, baseLog *logger.Logger) WorkerAvailabilityRepo {
	return &workerAvailabilityRepo{db: db, log: baseLog.With("repo", "WorkerAvailabilityRepo")}
}

func (r *workerAvailabilityRepo) ListInRange(dbc dbctx.Context, unitID int64, workerIDs []int64, start, end datatypes.Date) ([]*types.WorkerAvailability, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.WorkerAvailability
	if len(workerIDs) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("unit_id = ? AND worker_id IN ?", unitID, workerIDs).
		Where("date >= ? AND date <= ?", start, end).
		Order("date ASC, worker_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
