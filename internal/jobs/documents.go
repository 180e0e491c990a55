package jobs

import (
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/domain/scheduling"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/normalizer"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/solver"
)

const (
	SchemaSolverOutput     = "SolverOutput.v1"
	SchemaKPISummary       = "KpiSummary.v1"
	SchemaEvaluationReport = "EvaluationReport.v1"
)

type NormalizedInputDoc struct {
	Schema  string                     `json:"schema"`
	Payload *normalizer.Payload        `json:"payload"`
	Meta    *scheduling.NormalizerMeta `json:"meta"`
}

type SolverOutputDoc struct {
	Schema     string                `json:"schema"`
	ChosenPlan scheduling.SolverPlan `json:"chosenPlan"`
	Output     *solver.Result        `json:"output"`
}

type KPISummary struct {
	Schema        string                `json:"schema"`
	GeneratedFrom string                `json:"generatedFrom"`
	ChosenPlan    scheduling.SolverPlan `json:"chosenPlan"`
	Metrics       KPIMetrics            `json:"metrics"`
	Notes         any                   `json:"notes"`
}

type KPIMetrics struct {
	Feasible            bool     `json:"feasible"`
	SolverStatus        *string  `json:"solverStatus"`
	Objective           *float64 `json:"objective"`
	AssignmentCount     int      `json:"assignmentCount"`
	AverageSatisfaction any      `json:"averageSatisfaction"`
	WallTimeSec         any      `json:"wallTimeSec"`
	Branches            any      `json:"branches"`
	Conflicts           any      `json:"conflicts"`
	Nurses              int      `json:"nurses"`
	Days                int      `json:"days"`
	Shifts              int      `json:"shifts"`
}

type EvaluationReport struct {
	Schema  string            `json:"schema"`
	Note    string            `json:"note"`
	Metrics EvaluationMetrics `json:"metrics"`
}

type EvaluationMetrics struct {
	Feasible        bool                  `json:"feasible"`
	ChosenPlan      scheduling.SolverPlan `json:"chosenPlan"`
	SolverStatus    *string               `json:"solverStatus"`
	AssignmentCount int                   `json:"assignmentCount"`
	Nurses          int                   `json:"nurses"`
	Days            int                   `json:"days"`
	Shifts          int                   `json:"shifts"`
}

func BuildKPISummary(p *normalizer.Payload, out *solver.Result, plan scheduling.SolverPlan) KPISummary {
	details := solverDetails(out)
	var notes any
	if postFill, ok := details["post_fill"].(map[string]any); ok {
		notes = postFill["note"]
	}
	return KPISummary{
		Schema:        SchemaKPISummary,
		GeneratedFrom: SchemaSolverOutput,
		ChosenPlan:    plan,
		Metrics: KPIMetrics{
			Feasible:            feasibleOf(out),
			SolverStatus:        statusPtr(out),
			Objective:           out.Objective,
			AssignmentCount:     len(out.Assignments),
			AverageSatisfaction: details["average_satisfaction"],
			WallTimeSec:         details["wall_time_sec"],
			Branches:            details["branches"],
			Conflicts:           details["conflicts"],
			Nurses:              len(p.Nurses),
			Days:                len(p.Horizon.Days),
			Shifts:              len(p.Shifts),
		},
		Notes: notes,
	}
}

func BuildEvaluationReport(p *normalizer.Payload, out *solver.Result, plan scheduling.SolverPlan) EvaluationReport {
	return EvaluationReport{
		Schema: SchemaEvaluationReport,
		Note:   "Basic evaluation of the chosen solver output",
		Metrics: EvaluationMetrics{
			Feasible:        feasibleOf(out),
			ChosenPlan:      plan,
			SolverStatus:    statusPtr(out),
			AssignmentCount: len(out.Assignments),
			Nurses:          len(p.Nurses),
			Days:            len(p.Horizon.Days),
			Shifts:          len(p.Shifts),
		},
	}
}

// solverDetails looks in details, then meta.solverDetails, then meta.details.
func solverDetails(out *solver.Result) map[string]any {
	if d, ok := out.Details.(map[string]any); ok {
		return d
	}
	for _, k := range []string{"solverDetails", "details"} {
		if d, ok := out.Meta[k].(map[string]any); ok {
			return d
		}
	}
	return map[string]any{}
}

func statusPtr(out *solver.Result) *string {
	if out.Status == "" {
		return nil
	}
	s := out.Status
	return &s
}
