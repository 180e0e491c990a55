package repos

import (
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/data/repos/jobs"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/data/repos/scheduling"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/data/repos/workers"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/logger"
	"gorm.io/gorm"
)

type ScheduleJobRepo = jobs.ScheduleJobRepo
type ScheduleJobEventRepo = jobs.ScheduleJobEventRepo
type ScheduleArtifactRepo = jobs.ScheduleArtifactRepo
type SolverRunRepo = jobs.SolverRunRepo

type ScheduleRepo = scheduling.ScheduleRepo
type ScheduleAssignmentRepo = scheduling.ScheduleAssignmentRepo
type ShiftTemplateRepo = scheduling.ShiftTemplateRepo
type CoverageRuleRepo = scheduling.CoverageRuleRepo
type ConstraintProfileRepo = scheduling.ConstraintProfileRepo

type WorkerRepo = workers.WorkerRepo
type WorkerAvailabilityRepo = workers.WorkerAvailabilityRepo
type WorkerPreferenceRepo = workers.WorkerPreferenceRepo

func NewScheduleJobRepo(db *gorm.DB, baseLog *logger.Logger) ScheduleJobRepo {
	return jobs.NewScheduleJobRepo(db, baseLog)
}
func NewScheduleJobEventRepo(db *gorm.DB, baseLog *logger.Logger) ScheduleJobEventRepo {
	return jobs.NewScheduleJobEventRepo(db, baseLog)
}
func NewScheduleArtifactRepo(db *gorm.DB, baseLog *logger.Logger) ScheduleArtifactRepo {
	return jobs.NewScheduleArtifactRepo(db, baseLog)
}
func NewSolverRunRepo(db *gorm.DB, baseLog *logger.Logger) SolverRunRepo {
	return jobs.NewSolverRunRepo(db, baseLog)
}

func NewScheduleRepo(db *gorm.DB, baseLog *logger.Logger) ScheduleRepo {
	return scheduling.NewScheduleRepo(db, baseLog)
}
func NewScheduleAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) ScheduleAssignmentRepo {
	return scheduling.NewScheduleAssignmentRepo(db, baseLog)
}
func NewShiftTemplateRepo(db *gorm.DB, baseLog *logger.Logger) ShiftTemplateRepo {
	return scheduling.NewShiftTemplateRepo(db, baseLog)
}
func NewCoverageRuleRepo(db *gorm.DB, baseLog *logger.Logger) CoverageRuleRepo {
	return scheduling.NewCoverageRuleRepo(db, baseLog)
}
func NewConstraintProfileRepo(db *gorm.DB, baseLog *logger.Logger) ConstraintProfileRepo {
	return scheduling.NewConstraintProfileRepo(db, baseLog)
}

func NewWorkerRepo(db *gorm.DB, baseLog *logger.Logger) WorkerRepo {
	return workers.NewWorkerRepo(db, baseLog)
}
func NewWorkerAvailabilityRepo(db *gorm.DB, baseLog *logger.Logger) WorkerAvailabilityRepo {
	return workers.NewWorkerAvailabilityRepo(db, baseLog)
}
func NewWorkerPreferenceRepo(db *gorm.DB, baseLog *logger.Logger) WorkerPreferenceRepo {
	return workers.NewWorkerPreferenceRepo(db, baseLog)
}
