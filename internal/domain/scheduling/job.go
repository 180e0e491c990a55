package scheduling

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type JobStatus string

const (
	JobRequested       JobStatus = "REQUESTED"
	JobValidated       JobStatus = "VALIDATED"
	JobNormalizing     JobStatus = "NORMALIZING"
	JobSolvingAStrict  JobStatus = "SOLVING_A_STRICT"
	JobSolvingARelaxed JobStatus = "SOLVING_A_RELAXED"
	JobSolvingBMilp    JobStatus = "SOLVING_B_MILP"
	JobEvaluating      JobStatus = "EVALUATING"
	JobPersisting      JobStatus = "PERSISTING"
	JobCompleted       JobStatus = "COMPLETED"
	JobFailed          JobStatus = "FAILED"
)

// jobStatusOrder is the pipeline order. FAILED sits outside it.
var jobStatusOrder = map[JobStatus]int{
	JobRequested:       0,
	JobValidated:       1,
	JobNormalizing:     2,
	JobSolvingAStrict:  3,
	JobSolvingARelaxed: 4,
	JobSolvingBMilp:    5,
	JobEvaluating:      6,
	JobPersisting:      7,
	JobCompleted:       8,
}

// AllJobStatuses lists every status in pipeline order, FAILED last.
func AllJobStatuses() []JobStatus {
	return []JobStatus{
		JobRequested, JobValidated, JobNormalizing,
		JobSolvingAStrict, JobSolvingARelaxed, JobSolvingBMilp,
		JobEvaluating, JobPersisting, JobCompleted, JobFailed,
	}
}

func (s JobStatus) IsTerminal() bool {
	return s == JobCompleted || s == JobFailed
}

func (s JobStatus) Valid() bool {
	if s == JobFailed {
		return true
	}
	_, ok := jobStatusOrder[s]
	return ok
}

// CanTransition reports whether from -> to moves forward along the pipeline
// or jumps from a live state to FAILED.
func CanTransition(from, to JobStatus) bool {
	if from.IsTerminal() || !from.Valid() || !to.Valid() {
		return false
	}
	if to == JobFailed {
		return true
	}
	return jobStatusOrder[to] > jobStatusOrder[from]
}

// Phase is the client-facing name of a status.
func (s JobStatus) Phase() string {
	switch s {
	case JobRequested:
		return "REQUESTED"
	case JobValidated:
		return "VALIDATING"
	case JobNormalizing:
		return "NORMALIZING"
	case JobSolvingAStrict:
		return "STRICT_PASS"
	case JobSolvingARelaxed:
		return "RELAXED_PASS"
	case JobSolvingBMilp:
		return "MILP_FALLBACK"
	case JobEvaluating:
		return "EVALUATING"
	case JobPersisting:
		return "PERSISTING"
	case JobCompleted:
		return "COMPLETED"
	case JobFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

type SolverPlan string

const (
	PlanAStrict  SolverPlan = "A_STRICT"
	PlanARelaxed SolverPlan = "A_RELAXED"
	PlanBMilp    SolverPlan = "B_MILP"
)

// SolvingStatus is the job status held while the plan runs.
func (p SolverPlan) SolvingStatus() JobStatus {
	switch p {
	case PlanAStrict:
		return JobSolvingAStrict
	case PlanARelaxed:
		return JobSolvingARelaxed
	case PlanBMilp:
		return JobSolvingBMilp
	default:
		return ""
	}
}

type ScheduleJob struct {
	ID              uuid.UUID                         `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID  int64                             `gorm:"column:organization_id;not null;uniqueIndex:idx_schedule_jobs_idem,priority:1" json:"organizationId"`
	UnitID          int64                             `gorm:"column:unit_id;not null;index;uniqueIndex:idx_schedule_jobs_idem,priority:2" json:"unitId"`
	RequestedBy     int64                             `gorm:"column:requested_by;not null" json:"requestedBy"`
	IdempotencyKey  *string                           `gorm:"column:idempotency_key;uniqueIndex:idx_schedule_jobs_idem,priority:3" json:"idempotencyKey,omitempty"`
	ScheduleID      *int64                            `gorm:"column:schedule_id;index;uniqueIndex:idx_schedule_jobs_idem,priority:4" json:"scheduleId,omitempty"`
	Status          JobStatus                         `gorm:"column:status;type:text;not null;index" json:"status"`
	StartDate       datatypes.Date                    `gorm:"column:start_date;not null" json:"startDate"`
	EndDate         datatypes.Date                    `gorm:"column:end_date;not null" json:"endDate"`
	ChosenPlan      *SolverPlan                       `gorm:"column:chosen_plan;type:text" json:"chosenPlan,omitempty"`
	FinalScheduleID *int64                            `gorm:"column:final_schedule_id" json:"finalScheduleId,omitempty"`
	ErrorCode       *string                           `gorm:"column:error_code" json:"errorCode,omitempty"`
	ErrorMessage    *string                           `gorm:"column:error_message;type:text" json:"errorMessage,omitempty"`
	Attributes      datatypes.JSONType[JobAttributes] `gorm:"column:attributes" json:"attributes"`
	CreatedAt       time.Time                         `gorm:"not null;autoCreateTime;index" json:"createdAt"`
	UpdatedAt       time.Time                         `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

func (ScheduleJob) TableName() string { return "schedule_jobs" }

func (j *ScheduleJob) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	if j.Status == "" {
		j.Status = JobRequested
	}
	return nil
}
