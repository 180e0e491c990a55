package scheduling

import "encoding/json"

// JobAttributes is the typed attribute bag stored on a job. Extra carries
// unstructured extension data only.
type JobAttributes struct {
	ScheduleID          *int64          `json:"scheduleId,omitempty"`
	ConstraintProfileID *int64          `json:"constraintProfileId,omitempty"`
	Request             *JobRequest     `json:"request,omitempty"`
	NormalizerMeta      *NormalizerMeta `json:"normalizerMeta,omitempty"`
	Preview             *Preview        `json:"preview,omitempty"`
	SolverDebug         *SolverDebug    `json:"solverFailDebug,omitempty"`
	Extra               map[string]any  `json:"extra,omitempty"`
}

// JobRequest holds the caller inputs given at creation time.
type JobRequest struct {
	Strategy     map[string]any `json:"strategy,omitempty"`
	SolverConfig map[string]any `json:"solverConfig,omitempty"`
	Options      map[string]any `json:"options,omitempty"`
	Notes        string         `json:"notes,omitempty"`
}

type NormalizerMeta struct {
	Mappings CodeMappings     `json:"mappings"`
	Counts   NormalizerCounts `json:"counts"`
}

// CodeMappings is the bijection between worker ids and short codes for one job.
type CodeMappings struct {
	NurseCodeByWorkerID map[int64]string `json:"nurseCodeByWorkerId"`
	WorkerIDByNurseCode map[string]int64 `json:"workerIdByNurseCode"`
}

type NormalizerCounts struct {
	Nurses           int `json:"nurses"`
	Shifts           int `json:"shifts"`
	CoverageRules    int `json:"coverageRules"`
	AvailabilityRows int `json:"availabilityRows"`
	Days             int `json:"days"`
	PreferenceNurses int `json:"preferenceNurses"`
}

type Preview struct {
	ScheduleID  *int64              `json:"scheduleId"`
	Summary     PreviewSummary      `json:"summary"`
	Assignments []PreviewAssignment `json:"assignments"`
}

type PreviewSummary struct {
	Note            string  `json:"note"`
	AssignmentCount int     `json:"assignmentCount"`
	Feasible        bool    `json:"feasible"`
	Status          *string `json:"status"`
}

type PreviewAssignment struct {
	WorkerID   int64          `json:"workerId"`
	Date       string         `json:"date"`
	ShiftCode  string         `json:"shiftCode"`
	Source     string         `json:"source"`
	Attributes map[string]any `json:"attributes"`
}

// SolverDebug keeps the raw result of every plan after total exhaustion.
type SolverDebug struct {
	Strict  json.RawMessage `json:"strict"`
	Relaxed json.RawMessage `json:"relaxed"`
	Milp    json.RawMessage `json:"milp"`
}
