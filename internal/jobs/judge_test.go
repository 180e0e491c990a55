package jobs

import (
	"testing"

	"github.com/WinterJet2021/MayWin-Core-Backend/internal/domain/scheduling"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/normalizer"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/solver"
)

func ptrBool(v bool) *bool { return &v }

func TestIsSolveGood(t *testing.T) {
	one := []solver.Assignment{{NurseCode: "A", Date: "2025-01-01", ShiftCode: "D"}}
	cases := []struct {
		name string
		in   *solver.Result
		want bool
	}{
		{"nil", nil, false},
		{"explicit true beats infeasible status", &solver.Result{Feasible: ptrBool(true), Status: "INFEASIBLE"}, true},
		{"explicit false beats optimal status", &solver.Result{Feasible: ptrBool(false), Status: "OPTIMAL", Assignments: one}, false},
		{"infeasible", &solver.Result{Status: "infeasible"}, false},
		{"timeout", &solver.Result{Status: "TIMEOUT", Assignments: one}, false},
		{"time limit", &solver.Result{Status: "TIME_LIMIT"}, false},
		{"unknown", &solver.Result{Status: "Unknown"}, false},
		{"failed", &solver.Result{Status: "FAILED"}, false},
		{"other status", &solver.Result{Status: "MODEL_SOLVED"}, true},
		{"meta status", &solver.Result{Meta: map[string]any{"status": "INFEASIBLE"}, Assignments: one}, false},
		{"no status with rows", &solver.Result{Assignments: one}, true},
		{"no status no rows", &solver.Result{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsSolveGood(tc.in); got != tc.want {
				t.Fatalf("want %v got %v", tc.want, got)
			}
		})
	}
}

func TestFailureReason(t *testing.T) {
	cases := []struct {
		in   *solver.Result
		want string
	}{
		{&solver.Result{Status: "TIMEOUT", Details: "Solver timed out after 30s"}, "Solver timed out after 30s"},
		{&solver.Result{Status: "INFEASIBLE", Details: map[string]any{"reason": "coverage"}}, `{"reason":"coverage"}`},
		{&solver.Result{Status: "INFEASIBLE", Meta: map[string]any{"note": "no staff"}}, "no staff"},
		{&solver.Result{Status: "INFEASIBLE"}, "INFEASIBLE"},
		{&solver.Result{}, ""},
	}
	for _, tc := range cases {
		if got := FailureReason(tc.in); got != tc.want {
			t.Fatalf("FailureReason(%s): want %q got %q", tc.in, tc.want, got)
		}
	}
}

func TestBuildPreviewDropsIncompleteRows(t *testing.T) {
	worker := int64(77)
	out := &solver.Result{
		Status: "OPTIMAL",
		Assignments: []solver.Assignment{
			{NurseCode: "A", Date: "2025-01-01", ShiftCode: "D"},
			{WorkerID: &worker, Date: "2025-01-01", ShiftCode: "N"},
			{NurseCode: "UNKNOWN", Date: "2025-01-01", ShiftCode: "D"},
			{NurseCode: "A", ShiftCode: "D"},
			{NurseCode: "A", Date: "2025-01-02"},
		},
	}
	mappings := scheduling.CodeMappings{WorkerIDByNurseCode: map[string]int64{"A": 5}}
	scheduleID := int64(9)

	p := BuildPreview(&scheduleID, out, mappings)
	if len(p.Assignments) != 2 || p.Summary.AssignmentCount != 2 {
		t.Fatalf("expected two rows, got %+v", p.Assignments)
	}
	if p.Assignments[0].WorkerID != 5 || p.Assignments[1].WorkerID != 77 {
		t.Fatalf("unexpected worker ids: %+v", p.Assignments)
	}
	if p.Assignments[0].Source != scheduling.AssignmentSourceSolver || p.Assignments[0].Attributes == nil {
		t.Fatalf("unexpected provenance: %+v", p.Assignments[0])
	}
	if !p.Summary.Feasible || p.Summary.Status == nil || *p.Summary.Status != "OPTIMAL" {
		t.Fatalf("unexpected summary: %+v", p.Summary)
	}
	if p.ScheduleID == nil || *p.ScheduleID != 9 {
		t.Fatalf("schedule id not carried")
	}
}

func TestBuildKPISummary(t *testing.T) {
	objective := 3.0
	out := &solver.Result{
		Status:      "OPTIMAL",
		Objective:   &objective,
		Assignments: []solver.Assignment{{NurseCode: "A", Date: "2025-01-01", ShiftCode: "D"}},
		Meta: map[string]any{"solverDetails": map[string]any{
			"average_satisfaction": 0.8,
			"wall_time_sec":        1.5,
			"post_fill":            map[string]any{"note": "filled 2 gaps"},
		}},
	}
	p := &normalizer.Payload{
		Nurses:  []normalizer.Nurse{{Code: "A"}, {Code: "B"}},
		Shifts:  []normalizer.Shift{{Code: "D"}},
		Horizon: normalizer.Horizon{Days: []normalizer.Day{{Date: "2025-01-01"}}},
	}
	k := BuildKPISummary(p, out, scheduling.PlanAStrict)
	if k.Schema != "KpiSummary.v1" || k.GeneratedFrom != "SolverOutput.v1" {
		t.Fatalf("unexpected header: %+v", k)
	}
	if !k.Metrics.Feasible || k.Metrics.AssignmentCount != 1 || k.Metrics.Nurses != 2 || k.Metrics.Days != 1 {
		t.Fatalf("unexpected metrics: %+v", k.Metrics)
	}
	if k.Metrics.AverageSatisfaction != 0.8 || k.Metrics.WallTimeSec != 1.5 || k.Metrics.Branches != nil {
		t.Fatalf("details not read from meta: %+v", k.Metrics)
	}
	if k.Notes != "filled 2 gaps" {
		t.Fatalf("unexpected notes: %v", k.Notes)
	}

	e := BuildEvaluationReport(p, out, scheduling.PlanAStrict)
	if e.Schema != "EvaluationReport.v1" || e.Metrics.ChosenPlan != scheduling.PlanAStrict || *e.Metrics.SolverStatus != "OPTIMAL" {
		t.Fatalf("unexpected evaluation: %+v", e)
	}
}

func TestTruncateKeepsRunes(t *testing.T) {
	if got := truncate("héllo", 2); got != "h" {
		t.Fatalf("expected cut before multibyte rune, got %q", got)
	}
	if got := truncate("abc", 10); got != "abc" {
		t.Fatalf("short strings untouched, got %q", got)
	}
}
