package scheduling

import (
	"time"

	"gorm.io/datatypes"
)

// ShiftTemplate with a nil UnitID is visible to every unit in the organization.
type ShiftTemplate struct {
	ID             int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	OrganizationID int64             `gorm:"column:organization_id;not null;uniqueIndex:idx_shift_templates_code,priority:1" json:"organizationId"`
	UnitID         *int64            `gorm:"column:unit_id;uniqueIndex:idx_shift_templates_code,priority:2" json:"unitId,omitempty"`
	Code           string            `gorm:"column:code;not null;uniqueIndex:idx_shift_templates_code,priority:3" json:"code"`
	Name           string            `gorm:"column:name;not null" json:"name"`
	StartTime      string            `gorm:"column:start_time;not null" json:"startTime"`
	EndTime        string            `gorm:"column:end_time;not null" json:"endTime"`
	Attributes     datatypes.JSONMap `gorm:"column:attributes" json:"attributes"`
	IsActive       bool              `gorm:"column:is_active;not null" json:"isActive"`
	CreatedAt      time.Time         `gorm:"not null;autoCreateTime" json:"createdAt"`
}

func (ShiftTemplate) TableName() string { return "shift_templates" }

const (
	DayTypeWeekday = "WEEKDAY"
	DayTypeWeekend = "WEEKEND"
)

type CoverageRule struct {
	ID          int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	UnitID      int64             `gorm:"column:unit_id;not null;index" json:"unitId"`
	ShiftCode   string            `gorm:"column:shift_code;not null" json:"shiftCode"`
	DayType     string            `gorm:"column:day_type;not null" json:"dayType"`
	MinWorkers  *int              `gorm:"column:min_workers" json:"minWorkers"`
	MaxWorkers  *int              `gorm:"column:max_workers" json:"maxWorkers"`
	RequiredTag *string           `gorm:"column:required_tag" json:"requiredTag"`
	Attributes  datatypes.JSONMap `gorm:"column:attributes" json:"attributes"`
	CreatedAt   time.Time         `gorm:"not null;autoCreateTime" json:"createdAt"`
}

func (CoverageRule) TableName() string { return "coverage_rules" }

type ConstraintProfile struct {
	ID                        int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	UnitID                    int64             `gorm:"column:unit_id;not null;index" json:"unitId"`
	Name                      string            `gorm:"column:name;not null" json:"name"`
	MaxConsecutiveWorkDays    *int              `gorm:"column:max_consecutive_work_days" json:"maxConsecutiveWorkDays"`
	MaxConsecutiveNightShifts *int              `gorm:"column:max_consecutive_night_shifts" json:"maxConsecutiveNightShifts"`
	MinRestHoursBetweenShifts *int              `gorm:"column:min_rest_hours_between_shifts" json:"minRestHoursBetweenShifts"`
	FairnessWeightJSON        datatypes.JSONMap `gorm:"column:fairness_weight_json" json:"fairnessWeightJson"`
	PenaltyWeightJSON         datatypes.JSONMap `gorm:"column:penalty_weight_json" json:"penaltyWeightJson"`
	Attributes                datatypes.JSONMap `gorm:"column:attributes" json:"attributes"`
	IsActive                  bool              `gorm:"column:is_active;not null" json:"isActive"`
	CreatedAt                 time.Time         `gorm:"not null;autoCreateTime;index" json:"createdAt"`
}

func (ConstraintProfile) TableName() string { return "constraint_profiles" }
