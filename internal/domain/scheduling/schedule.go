package scheduling

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ScheduleStatus string

const (
	ScheduleDraft          ScheduleStatus = "DRAFT"
	SchedulePublished      ScheduleStatus = "PUBLISHED"
	ScheduleArchived       ScheduleStatus = "ARCHIVED"
	ScheduleReadyForReview ScheduleStatus = "READY_FOR_REVIEW"
)

const (
	AssignmentSourceSolver = "SOLVER"
	AssignmentSourceManual = "MANUAL"
)

type Schedule struct {
	ID                  int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	OrganizationID      int64             `gorm:"column:organization_id;not null;index" json:"organizationId"`
	UnitID              int64             `gorm:"column:unit_id;not null;index" json:"unitId"`
	JobID               *uuid.UUID        `gorm:"type:uuid;column:job_id" json:"jobId,omitempty"`
	Name                string            `gorm:"column:name;not null" json:"name"`
	StartDate           datatypes.Date    `gorm:"column:start_date;not null" json:"startDate"`
	EndDate             datatypes.Date    `gorm:"column:end_date;not null" json:"endDate"`
	Status              ScheduleStatus    `gorm:"column:status;type:text;not null" json:"status"`
	ConstraintProfileID *int64            `gorm:"column:constraint_profile_id" json:"constraintProfileId,omitempty"`
	LastSolverRunID     *int64            `gorm:"column:last_solver_run_id" json:"lastSolverRunId,omitempty"`
	CreatedBy           int64             `gorm:"column:created_by;not null" json:"createdBy"`
	CreatedAt           time.Time         `gorm:"not null;autoCreateTime" json:"createdAt"`
	PublishedAt         *time.Time        `gorm:"column:published_at" json:"publishedAt,omitempty"`
	PublishedBy         *int64            `gorm:"column:published_by" json:"publishedBy,omitempty"`
	Attributes          datatypes.JSONMap `gorm:"column:attributes" json:"attributes"`
}

func (Schedule) TableName() string { return "schedules" }

type ScheduleAssignment struct {
	ID         int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	ScheduleID int64             `gorm:"column:schedule_id;not null;uniqueIndex:idx_schedule_assignments_cell,priority:1" json:"scheduleId"`
	WorkerID   int64             `gorm:"column:worker_id;not null;uniqueIndex:idx_schedule_assignments_cell,priority:2" json:"workerId"`
	Date       datatypes.Date    `gorm:"column:date;not null;uniqueIndex:idx_schedule_assignments_cell,priority:3" json:"date"`
	ShiftCode  string            `gorm:"column:shift_code;not null" json:"shiftCode"`
	Source     string            `gorm:"column:source;not null" json:"source"`
	Attributes datatypes.JSONMap `gorm:"column:attributes" json:"attributes"`
	CreatedAt  time.Time         `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time         `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

func (ScheduleAssignment) TableName() string { return "schedule_assignments" }
