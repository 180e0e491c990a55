package scheduling

import (
	"gorm.io/gorm"

	types "github.com/WinterJet2021/MayWin-Core-Backend/internal/domain"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/dbctx"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/logger"
)

type ScheduleRepo interface {
	Create(dbc dbctx.Context, s *types.Schedule) (*types.Schedule, error)
	GetByID(dbc dbctx.Context, id int64) (*types.Schedule, error)
	UpdateFields(dbc dbctx.Context, id int64, updates map[string]interface{}) error
}

type scheduleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScheduleRepo(db *gorm.DB, baseLog *logger.Logger) ScheduleRepo {
	return &scheduleRepo{db: db, log: baseLog.With("repo", "ScheduleRepo")}
}

func (r *scheduleRepo) Create(dbc dbctx.Context, s *types.Schedule) (*types.Schedule, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if s == nil {
		return nil, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

func (r *scheduleRepo) GetByID(dbc dbctx.Context, id int64) (*types.Schedule, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id <= 0 {
		return nil, nil
	}
	var s types.Schedule
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&s).Error; err != nil {
		return nil, err
	}
	if s.ID == 0 {
		return nil, nil
	}
	return &s, nil
}

func (r *scheduleRepo) UpdateFields(dbc dbctx.Context, id int64, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id <= 0 || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Schedule{}).
		Where("id = ?", id).
		Updates(updates).Error
}
