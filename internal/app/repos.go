package app

import (
	"gorm.io/gorm"

	"github.com/WinterJet2021/MayWin-Core-Backend/internal/data/repos"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/logger"
)

type Repos struct {
	ScheduleJob        repos.ScheduleJobRepo
	ScheduleJobEvent   repos.ScheduleJobEventRepo
	ScheduleArtifact   repos.ScheduleArtifactRepo
	SolverRun          repos.SolverRunRepo
	Schedule           repos.ScheduleRepo
	ScheduleAssignment repos.ScheduleAssignmentRepo
	ShiftTemplate      repos.ShiftTemplateRepo
	CoverageRule       repos.CoverageRuleRepo
	ConstraintProfile  repos.ConstraintProfileRepo
	Worker             repos.WorkerRepo
	WorkerAvailability repos.WorkerAvailabilityRepo
	WorkerPreference   repos.WorkerPreferenceRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		ScheduleJob:        repos.NewScheduleJobRepo(db, log),
		ScheduleJobEvent:   repos.NewScheduleJobEventRepo(db, log),
		ScheduleArtifact:   repos.NewScheduleArtifactRepo(db, log),
		SolverRun:          repos.NewSolverRunRepo(db, log),
		Schedule:           repos.NewScheduleRepo(db, log),
		ScheduleAssignment: repos.NewScheduleAssignmentRepo(db, log),
		ShiftTemplate:      repos.NewShiftTemplateRepo(db, log),
		CoverageRule:       repos.NewCoverageRuleRepo(db, log),
		ConstraintProfile:  repos.NewConstraintProfileRepo(db, log),
		Worker:             repos.NewWorkerRepo(db, log),
		WorkerAvailability: repos.NewWorkerAvailabilityRepo(db, log),
		WorkerPreference:   repos.NewWorkerPreferenceRepo(db, log),
	}
}
