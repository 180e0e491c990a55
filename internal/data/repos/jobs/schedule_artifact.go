package jobs

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/WinterJet2021/MayWin-Core-Backend/internal/domain"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/dbctx"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/logger"
)

type ScheduleArtifactRepo interface {
	// CreateIfAbsent inserts a unless a row for (job, type) exists. It returns
	// the stored row and whether this call created it.
	CreateIfAbsent(dbc dbctx.Context, a *types.ScheduleArtifact) (*types.ScheduleArtifact, bool, error)
	GetByJobAndType(dbc dbctx.Context, jobID uuid.UUID, artifactType types.ArtifactType) (*types.ScheduleArtifact, error)
	ListByJob(dbc dbctx.Context, jobID uuid.UUID) ([]*types.ScheduleArtifact, error)
}

type scheduleArtifactRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScheduleArtifactRepo(db *gorm.DB, baseLog *logger.Logger) ScheduleArtifactRepo {
	return &scheduleArtifactRepo{
		db:  db,
		log: baseLog.With("repo", "ScheduleArtifactRepo"),
	}
}

func (r *scheduleArtifactRepo) CreateIfAbsent(dbc dbctx.Context, a *types.ScheduleArtifact) (*types.ScheduleArtifact, bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if a == nil {
		return nil, false, nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "job_id"}, {Name: "type"}},
			DoNothing: true,
		}).
		Create(a)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 {
		return a, true, nil
	}
	existing, err := r.GetByJobAndType(dbc, a.JobID, a.Type)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *scheduleArtifactRepo) GetByJobAndType(dbc dbctx.Context, jobID uuid.UUID, artifactType types.ArtifactType) (*types.ScheduleArtifact, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if jobID == uuid.Nil || artifactType == "" {
		return nil, nil
	}
	var a types.ScheduleArtifact
	err := transaction.WithContext(dbc.Ctx).
		Where("job_id = ? AND type = ?", jobID, artifactType).
		Limit(1).
		Find(&a).Error
	if err != nil {
		return nil, err
	}
	if a.ID == uuid.Nil {
		return nil, nil
	}
	return &a, nil
}

func (r *scheduleArtifactRepo) ListByJob(dbc dbctx.Context, jobID uuid.UUID) ([]*types.ScheduleArtifact, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ScheduleArtifact
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
