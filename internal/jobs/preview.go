package jobs

import (
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/domain/scheduling"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/solver"
)

const previewNote = "Preview generated from solver output"

// BuildPreview projects solver cells back onto worker ids. Rows missing a
// worker, date or shift are dropped.
func BuildPreview(scheduleID *int64, out *solver.Result, mappings scheduling.CodeMappings) scheduling.Preview {
	rows := make([]scheduling.PreviewAssignment, 0, len(out.Assignments))
	for _, a := range out.Assignments {
		var workerID int64
		switch {
		case a.WorkerID != nil:
			workerID = *a.WorkerID
		case a.NurseCode != "":
			workerID = mappings.WorkerIDByNurseCode[a.NurseCode]
		}
		if workerID == 0 || a.Date == "" || a.ShiftCode == "" {
			continue
		}
		rows = append(rows, scheduling.PreviewAssignment{
			WorkerID:   workerID,
			Date:       a.Date,
			ShiftCode:  a.ShiftCode,
			Source:     scheduling.AssignmentSourceSolver,
			Attributes: map[string]any{},
		})
	}
	return scheduling.Preview{
		ScheduleID: scheduleID,
		Summary: scheduling.PreviewSummary{
			Note:            previewNote,
			AssignmentCount: len(rows),
			Feasible:        feasibleOf(out),
			Status:          statusPtr(out),
		},
		Assignments: rows,
	}
}
