package scheduling

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SolverRunStatus string

const (
	SolverRunQueued    SolverRunStatus = "QUEUED"
	SolverRunRunning   SolverRunStatus = "RUNNING"
	SolverRunSucceeded SolverRunStatus = "SUCCEEDED"
	SolverRunFailed    SolverRunStatus = "FAILED"
)

// SolverRun records one fallback attempt.
type SolverRun struct {
	ID             int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	JobID          *uuid.UUID        `gorm:"type:uuid;column:job_id;index" json:"jobId,omitempty"`
	ScheduleID     *int64            `gorm:"column:schedule_id" json:"scheduleId,omitempty"`
	Plan           SolverPlan        `gorm:"column:plan;type:text;not null" json:"plan"`
	Status         SolverRunStatus   `gorm:"column:status;type:text;not null" json:"status"`
	RequestedBy    int64             `gorm:"column:requested_by;not null" json:"requestedBy"`
	Attempt        int               `gorm:"column:attempt;not null" json:"attempt"`
	StartedAt      *time.Time        `gorm:"column:started_at" json:"startedAt,omitempty"`
	FinishedAt     *time.Time        `gorm:"column:finished_at" json:"finishedAt,omitempty"`
	FailureReason  *string           `gorm:"column:failure_reason;type:text" json:"failureReason,omitempty"`
	KPIs           datatypes.JSONMap `gorm:"column:kpis_json" json:"kpis,omitempty"`
	ObjectiveValue *float64          `gorm:"column:objective_value" json:"objectiveValue,omitempty"`
	CreatedAt      time.Time         `gorm:"not null;autoCreateTime" json:"createdAt"`
}

func (SolverRun) TableName() string { return "solver_runs" }
