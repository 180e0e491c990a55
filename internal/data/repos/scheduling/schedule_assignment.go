package scheduling

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/WinterJet2021/MayWin-Core-Backend/internal/domain"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/dbctx"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/logger"
)

type ScheduleAssignmentRepo interface {
	ListBySchedule(dbc dbctx.Context, scheduleID int64) ([]*types.ScheduleAssignment, error)
	// Upsert writes a row keyed by (schedule_id, worker_id, date), replacing
	// shift, source and attributes of any existing row.
	Upsert(dbc dbctx.Context, row *types.ScheduleAssignment) error
}

type scheduleAssignmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScheduleAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) ScheduleAssignmentRepo {
	return &scheduleAssignmentRepo{db: db, log: baseLog.With("repo", "ScheduleAssignmentRepo")}
}

func (r *scheduleAssignmentRepo) ListBySchedule(dbc dbctx.Context, scheduleID int64) ([]*types.ScheduleAssignment, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ScheduleAssignment
	if scheduleID <= 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("schedule_id = ?", scheduleID).
		Order("date ASC, worker_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *scheduleAssignmentRepo) Upsert(dbc dbctx.Context, row *types.ScheduleAssignment) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	row.UpdatedAt = time.Now()
	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "schedule_id"}, {Name: "worker_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"shift_code", "source", "attributes", "updated_at"}),
		}).
		Create(row).Error
}
