package scheduling

import (
	"gorm.io/gorm"

	types "github.com/WinterJet2021/MayWin-Core-Backend/internal/domain"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/dbctx"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/logger"
)

type ShiftTemplateRepo interface {
	// ListActiveForUnit returns unit templates plus organization-wide ones, by code.
	ListActiveForUnit(dbc dbctx.Context, organizationID, unitID int64) ([]*types.ShiftTemplate, error)
}

type shiftTemplateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewShiftTemplateRepo(db *gorm.DB, baseLog *logger.Logger) ShiftTemplateRepo {
	return &shiftTemplateRepo{db: db, log: baseLog.With("repo", "ShiftTemplateRepo")}
}

func (r *shiftTemplateRepo) ListActiveForUnit(dbc dbctx.Context, organizationID, unitID int64) ([]*types.ShiftTemplate, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ShiftTemplate
	if err := transaction.WithContext(dbc.Ctx).
		Where("organization_id = ? AND is_active = ?", organizationID, true).
		Where("unit_id = ? OR unit_id IS NULL", unitID).
		Order("code ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type CoverageRuleRepo interface {
	ListByUnit(dbc dbctx.Context, unitID int64) ([]*types.CoverageRule, error)
}

type coverageRuleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCoverageRuleRepo(db *gorm.DB, baseLog *logger.Logger) CoverageRuleRepo {
	return &coverageRuleRepo{db: db, log: baseLog.With("repo", "CoverageRuleRepo")}
}

func (r *coverageRuleRepo) ListByUnit(dbc dbctx.Context, unitID int64) ([]*types.CoverageRule, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.CoverageRule
	if err := transaction.WithContext(dbc.Ctx).
		Where("unit_id = ?", unitID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type ConstraintProfileRepo interface {
	GetForUnit(dbc dbctx.Context, id, unitID int64) (*types.ConstraintProfile, error)
	GetLatestActiveForUnit(dbc dbctx.Context, unitID int64) (*types.ConstraintProfile, error)
}

type constraintProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConstraintProfileRepo(db *gorm.DB, baseLog *logger.Logger) ConstraintProfileRepo {
	return &constraintProfileRepo{db: db, log: baseLog.With("repo", "ConstraintProfileRepo")}
}

func (r *constraintProfileRepo) GetForUnit(dbc dbctx.Context, id, unitID int64) (*types.ConstraintProfile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id <= 0 {
		return nil, nil
	}
	var cp types.ConstraintProfile
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND unit_id = ?", id, unitID).
		Limit(1).
		Find(&cp).Error; err != nil {
		return nil, err
	}
	if cp.ID == 0 {
		return nil, nil
	}
	return &cp, nil
}

func (r *constraintProfileRepo) GetLatestActiveForUnit(dbc dbctx.Context, unitID int64) (*types.ConstraintProfile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var cp types.ConstraintProfile
	if err := transaction.WithContext(dbc.Ctx).
		Where("unit_id = ? AND is_active = ?", unitID, true).
		Order("created_at DESC, id DESC").
		Limit(1).
		Find(&cp).Error; err != nil {
		return nil, err
	}
	if cp.ID == 0 {
		return nil, nil
	}
	return &cp, nil
}
