package workers

import (
	"gorm.io/gorm"

	types "github.com/WinterJet2021/MayWin-Core-Backend/internal/domain"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/dbctx"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/logger"
)

type WorkerPreferenceRepo interface {
	ListByWorkerIDs(dbc dbctx.Context, workerIDs []int64) ([]*types.WorkerPreference, error)
}

type workerPreferenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWorkerPreferenceRepo(db *gorm.DB, baseLog *logger.Logger) WorkerPreferenceRepo {
	return &workerPreferenceRepo{db: db, log: baseLog.With("repo", "WorkerPreferenceRepo")}
}

func (r *workerPreferenceRepo) ListByWorkerIDs(dbc dbctx.Context, workerIDs []int64) ([]*types.WorkerPreference, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.WorkerPreference
	if len(workerIDs) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("worker_id IN ?", workerIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
