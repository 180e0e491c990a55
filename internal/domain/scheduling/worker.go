package scheduling

import (
	"time"

	"gorm.io/datatypes"
)

type Worker struct {
	ID             int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	OrganizationID int64             `gorm:"column:organization_id;not null;index" json:"organizationId"`
	PrimaryUnitID  *int64            `gorm:"column:primary_unit_id" json:"primaryUnitId,omitempty"`
	FullName       string            `gorm:"column:full_name;not null" json:"fullName"`
	WorkerCode     *string           `gorm:"column:worker_code" json:"workerCode,omitempty"`
	EmploymentType *string           `gorm:"column:employment_type" json:"employmentType,omitempty"`
	WeeklyHours    *int              `gorm:"column:weekly_hours" json:"weeklyHours,omitempty"`
	Attributes     datatypes.JSONMap `gorm:"column:attributes" json:"attributes"`
	IsActive       bool              `gorm:"column:is_active;not null" json:"isActive"`
	LinkedUserID   *int64            `gorm:"column:linked_user_id" json:"linkedUserId,omitempty"`
	CreatedAt      time.Time         `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time         `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

func (Worker) TableName() string { return "workers" }

type WorkerUnitMembership struct {
	WorkerID int64   `gorm:"column:worker_id;primaryKey;autoIncrement:false" json:"workerId"`
	UnitID   int64   `gorm:"column:unit_id;primaryKey;autoIncrement:false;index" json:"unitId"`
	RoleCode *string `gorm:"column:role_code" json:"roleCode,omitempty"`
}

func (WorkerUnitMembership) TableName() string { return "worker_unit_memberships" }

const (
	AvailabilityAvailable   = "AVAILABLE"
	AvailabilityUnavailable = "UNAVAILABLE"
	AvailabilityPreferred   = "PREFERRED"
	AvailabilityAvoid       = "AVOID"
	// AvailabilityBlocked is written by imports; treated like UNAVAILABLE.
	AvailabilityBlocked = "BLOCKED"
)

type WorkerAvailability struct {
	ID         int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	WorkerID   int64             `gorm:"column:worker_id;not null;uniqueIndex:idx_worker_availability_cell,priority:1" json:"workerId"`
	UnitID     int64             `gorm:"column:unit_id;not null;index;uniqueIndex:idx_worker_availability_cell,priority:2" json:"unitId"`
	Date       datatypes.Date    `gorm:"column:date;not null;uniqueIndex:idx_worker_availability_cell,priority:3" json:"date"`
	ShiftCode  string            `gorm:"column:shift_code;not null;uniqueIndex:idx_worker_availability_cell,priority:4" json:"shiftCode"`
	Type       string            `gorm:"column:type;not null" json:"type"`
	Source     string            `gorm:"column:source;not null" json:"source"`
	Reason     *string           `gorm:"column:reason" json:"reason,omitempty"`
	Attributes datatypes.JSONMap `gorm:"column:attributes" json:"attributes"`
	CreatedAt  time.Time         `gorm:"not null;autoCreateTime" json:"createdAt"`
}

func (WorkerAvailability) TableName() string { return "worker_availability" }

type WorkerPreference struct {
	ID                        int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	WorkerID                  int64             `gorm:"column:worker_id;not null;uniqueIndex" json:"workerId"`
	PrefersDayShifts          *bool             `gorm:"column:prefers_day_shifts" json:"prefersDayShifts,omitempty"`
	PrefersNightShifts        *bool             `gorm:"column:prefers_night_shifts" json:"prefersNightShifts,omitempty"`
	MaxConsecutiveWorkDays    *int              `gorm:"column:max_consecutive_work_days" json:"maxConsecutiveWorkDays,omitempty"`
	MaxConsecutiveNightShifts *int              `gorm:"column:max_consecutive_night_shifts" json:"maxConsecutiveNightShifts,omitempty"`
	PreferencePatternJSON     datatypes.JSONMap `gorm:"column:preference_pattern_json" json:"preferencePatternJson,omitempty"`
	Attributes                datatypes.JSONMap `gorm:"column:attributes" json:"attributes"`
	UpdatedAt                 time.Time         `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

func (WorkerPreference) TableName() string { return "worker_preferences" }
