package normalizer

import (
	"github.com/google/uuid"

	"github.com/WinterJet2021/MayWin-Core-Backend/internal/domain/scheduling"
)

const (
	PayloadVersion = "v1"
	ArtifactSchema = "NormalizedInput.v1"
)

// Payload is the versioned problem description handed to the solver port.
type Payload struct {
	Version       string                    `json:"version"`
	Job           JobSummary                `json:"job"`
	Horizon       Horizon                   `json:"horizon"`
	Shifts        []Shift                   `json:"shifts"`
	Nurses        []Nurse                   `json:"nurses"`
	CoverageRules []CoverageRule            `json:"coverageRules"`
	Constraints   Constraints               `json:"constraints"`
	Availability  []AvailabilityRow         `json:"availability"`
	Preferences   Preferences               `json:"preferences"`
	Meta          scheduling.NormalizerMeta `json:"meta"`
}

type JobSummary struct {
	JobID          uuid.UUID            `json:"jobId"`
	OrganizationID int64                `json:"organizationId"`
	UnitID         int64                `json:"unitId"`
	Status         scheduling.JobStatus `json:"status"`
}

type Horizon struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Days      []Day  `json:"days"`
}

type Day struct {
	Date    string `json:"date"`
	DayType string `json:"dayType"`
}

type Shift struct {
	Code       string         `json:"code"`
	Name       string         `json:"name"`
	StartTime  string         `json:"startTime"`
	EndTime    string         `json:"endTime"`
	Attributes map[string]any `json:"attributes"`
}

type Nurse struct {
	Code           string         `json:"code"`
	FullName       string         `json:"fullName"`
	EmploymentType *string        `json:"employmentType"`
	WeeklyHours    *int           `json:"weeklyHours"`
	PrimaryUnitID  *int64         `json:"primaryUnitId"`
	Tags           []string       `json:"tags"`
	Attributes     map[string]any `json:"attributes"`
}

type CoverageRule struct {
	ShiftCode   string         `json:"shiftCode"`
	DayType     string         `json:"dayType"`
	MinWorkers  *int           `json:"minWorkers"`
	MaxWorkers  *int           `json:"maxWorkers"`
	RequiredTag *string        `json:"requiredTag"`
	Attributes  map[string]any `json:"attributes"`
}

type Constraints struct {
	ConstraintProfileID       *int64         `json:"constraintProfileId"`
	Name                      string         `json:"name"`
	MaxConsecutiveWorkDays    *int           `json:"maxConsecutiveWorkDays"`
	MaxConsecutiveNightShifts *int           `json:"maxConsecutiveNightShifts"`
	MinRestHoursBetweenShifts *int           `json:"minRestHoursBetweenShifts"`
	FairnessWeightJSON        map[string]any `json:"fairnessWeightJson"`
	PenaltyWeightJSON         map[string]any `json:"penaltyWeightJson"`
	Attributes                map[string]any `json:"attributes"`
}

type AvailabilityRow struct {
	NurseCode  string         `json:"nurseCode"`
	WorkerID   int64          `json:"workerId"`
	Date       string         `json:"date"`
	ShiftCode  string         `json:"shiftCode"`
	Type       string         `json:"type"`
	Source     string         `json:"source"`
	Reason     *string        `json:"reason"`
	Attributes map[string]any `json:"attributes"`
}

// Preferences maps nurse code -> date -> shift code -> penalty.
type Preferences map[string]map[string]map[string]int

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
