package db

import (
	types "github.com/WinterJet2021/MayWin-Core-Backend/internal/domain"
	"gorm.io/gorm"
)

// Models lists every table the service owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		// =========================
		// Unit configuration (read-only to the pipeline)
		// =========================
		&types.ShiftTemplate{},
		&types.CoverageRule{},
		&types.ConstraintProfile{},

		// =========================
		// Workforce
		// =========================
		&types.Worker{},
		&types.WorkerUnitMembership{},
		&types.WorkerAvailability{},
		&types.WorkerPreference{},

		// =========================
		// Schedules
		// =========================
		&types.Schedule{},
		&types.ScheduleAssignment{},

		// =========================
		// Orchestration
		// =========================
		&types.ScheduleJob{},
		&types.ScheduleJobEvent{},
		&types.ScheduleArtifact{},
		&types.SolverRun{},
	}
}

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
