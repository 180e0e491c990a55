package jobs

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/WinterJet2021/MayWin-Core-Backend/internal/solver"
)

// IsSolveGood judges one attempt. Precedence: explicit feasible flag, then the
// status string, then whether any assignment came back.
func IsSolveGood(r *solver.Result) bool {
	if r == nil {
		return false
	}
	if r.Feasible != nil {
		return *r.Feasible
	}
	status := strings.ToUpper(resultStatus(r))
	if status == "" {
		return len(r.Assignments) > 0
	}
	for _, bad := range []string{"INFEAS", "TIME", "UNKNOWN", "FAIL"} {
		if strings.Contains(status, bad) {
			return false
		}
	}
	return true
}

// FailureReason is the most specific text an attempt offers, or "".
func FailureReason(r *solver.Result) string {
	if r == nil {
		return ""
	}
	detail := r.Details
	if detail == nil && r.Meta != nil {
		detail = r.Meta["note"]
	}
	switch d := detail.(type) {
	case nil:
	case string:
		return d
	default:
		if raw, err := json.Marshal(d); err == nil {
			return string(raw)
		}
		return fmt.Sprint(d)
	}
	return resultStatus(r)
}

func resultStatus(r *solver.Result) string {
	if r.Status != "" {
		return r.Status
	}
	if s, ok := r.Meta["status"].(string); ok {
		return s
	}
	return ""
}

func feasibleOf(r *solver.Result) bool {
	if r != nil && r.Feasible != nil {
		return *r.Feasible
	}
	return IsSolveGood(r)
}
