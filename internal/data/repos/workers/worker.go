package workers

import (
	"gorm.io/gorm"

	types "github.com/WinterJet2021/MayWin-Core-Backend/internal/domain"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/dbctx"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/logger"
)

type WorkerRepo interface {
	// ListActiveByUnit returns active workers of the organization that hold a
	// membership in unitID, ordered by id.
	ListActiveByUnit(dbc dbctx.Context, organizationID, unitID int64) ([]*types.Worker, error)
}

type workerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWorkerRepo(db *gorm.DB, baseLog *logger.Logger) WorkerRepo {
	return &workerRepo{db: db, log: baseLog.With("repo", "WorkerRepo")}
}

func (r *workerRepo) ListActiveByUnit(dbc dbctx.Context, organizationID, unitID int64) ([]*types.Worker, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Worker
	members := transaction.Model(&types.WorkerUnitMembership{}).
		Select("worker_id").
		Where("unit_id = ?", unitID)
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN (?)", members).
		Where("organization_id = ? AND is_active = ?", organizationID, true).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
