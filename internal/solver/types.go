package solver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/WinterJet2021/MayWin-Core-Backend/internal/domain/scheduling"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/normalizer"
)

// Solver runs one plan against the external engine. It never retries.
type Solver interface {
	Solve(ctx context.Context, in Input, opts Options) (*Result, error)
}

type Options struct {
	Plan             scheduling.SolverPlan
	TimeLimitSeconds int
	JobID            uuid.UUID
}

// Input is either a normalized payload or an engine request built elsewhere.
type Input struct {
	Payload *normalizer.Payload
	Raw     *Request
}

// Request is the engine's flat request document.
type Request struct {
	Nurses       []string                              `json:"nurses"`
	Shifts       []string                              `json:"shifts"`
	Days         []string                              `json:"days"`
	Demand       map[string]map[string]int             `json:"demand"`
	Availability map[string]map[string]map[string]bool `json:"availability"`
	Preferences  map[string]map[string]map[string]int  `json:"preferences,omitempty"`
}

const (
	StatusOptimal         = "OPTIMAL"
	StatusFeasible        = "FEASIBLE"
	StatusRelaxedOptimal  = "RELAXED_OPTIMAL"
	StatusRelaxedFeasible = "RELAXED_FEASIBLE"
	StatusHeuristic       = "HEURISTIC"
	StatusTimeout         = "TIMEOUT"
	StatusError           = "ERROR"
)

// Result is the engine-agnostic outcome of one attempt.
type Result struct {
	Feasible    *bool          `json:"feasible,omitempty"`
	Status      string         `json:"status,omitempty"`
	Objective   *float64       `json:"objective,omitempty"`
	Assignments []Assignment   `json:"assignments"`
	Details     any            `json:"details,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
}

// Assignment is one (worker, date, shift) cell. Worker is either a numeric
// id or a short code depending on the producer.
type Assignment struct {
	WorkerID  *int64 `json:"workerId,omitempty"`
	NurseCode string `json:"nurse,omitempty"`
	Date      string `json:"date,omitempty"`
	ShiftCode string `json:"shiftCode,omitempty"`
}

// UnmarshalJSON accepts the spellings engines use in the wild:
// nurse|nurseCode|nurse_code, workerId|worker_id, date|day, shift|shiftCode|shift_code.
func (a *Assignment) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*a = Assignment{}
	a.NurseCode = firstString(raw, "nurse", "nurseCode", "nurse_code")
	a.Date = firstString(raw, "date", "day")
	a.ShiftCode = firstString(raw, "shiftCode", "shift_code", "shift")
	for _, k := range []string{"workerId", "worker_id"} {
		v, ok := raw[k]
		if !ok {
			continue
		}
		var id int64
		if err := json.Unmarshal(v, &id); err == nil && id != 0 {
			a.WorkerID = &id
			break
		}
	}
	return nil
}

func firstString(raw map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			if s != "" {
				return s
			}
			continue
		}
		var n json.Number
		if err := json.Unmarshal(v, &n); err == nil {
			return n.String()
		}
	}
	return ""
}

func (r *Result) String() string {
	if r == nil {
		return "<nil>"
	}
	feasible := "?"
	if r.Feasible != nil {
		feasible = fmt.Sprint(*r.Feasible)
	}
	return fmt.Sprintf("status=%s feasible=%s assignments=%d", r.Status, feasible, len(r.Assignments))
}

func boolPtr(v bool) *bool { return &v }
