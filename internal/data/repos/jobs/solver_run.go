package jobs

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/WinterJet2021/MayWin-Core-Backend/internal/domain"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/dbctx"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/logger"
)

type SolverRunRepo interface {
	Create(dbc dbctx.Context, run *types.SolverRun) (*types.SolverRun, error)
	ListByJob(dbc dbctx.Context, jobID uuid.UUID) ([]*types.SolverRun, error)
}

type solverRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSolverRunRepo(db *gorm.DB, baseLog *logger.Logger) SolverRunRepo {
	return &solverRunRepo{
		db:  db,
		log: baseLog.With("repo", "SolverRunRepo"),
	}
}

func (r *solverRunRepo) Create(dbc dbctx.Context, run *types.SolverRun) (*types.SolverRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if run == nil {
		return nil, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

func (r *solverRunRepo) ListByJob(dbc dbctx.Context, jobID uuid.UUID) ([]*types.SolverRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.SolverRun
	if jobID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("job_id = ?", jobID).
		Order("attempt ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
