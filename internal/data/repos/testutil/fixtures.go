package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/WinterJet2021/MayWin-Core-Backend/internal/domain"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/domain/scheduling"
)

func SeedShiftTemplate(tb testing.TB, ctx context.Context, tx *gorm.DB, orgID int64, unitID *int64, code, name, start, end string) *types.ShiftTemplate {
	tb.Helper()
	st := &types.ShiftTemplate{
		OrganizationID: orgID,
		UnitID:         unitID,
		Code:           code,
		Name:           name,
		StartTime:      start,
		EndTime:        end,
		Attributes:     datatypes.JSONMap{},
		IsActive:       true,
	}
	if err := tx.WithContext(ctx).Create(st).Error; err != nil {
		tb.Fatalf("seed shift template: %v", err)
	}
	return st
}

func SeedCoverageRule(tb testing.TB, ctx context.Context, tx *gorm.DB, unitID int64, shiftCode, dayType string, minWorkers int) *types.CoverageRule {
	tb.Helper()
	cr := &types.CoverageRule{
		UnitID:     unitID,
		ShiftCode:  shiftCode,
		DayType:    dayType,
		MinWorkers: &minWorkers,
		Attributes: datatypes.JSONMap{},
	}
	if err := tx.WithContext(ctx).Create(cr).Error; err != nil {
		tb.Fatalf("seed coverage rule: %v", err)
	}
	return cr
}

func SeedConstraintProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, unitID int64, name string, active bool) *types.ConstraintProfile {
	tb.Helper()
	maxDays := 5
	cp := &types.ConstraintProfile{
		UnitID:                 unitID,
		Name:                   name,
		MaxConsecutiveWorkDays: &maxDays,
		Attributes:             datatypes.JSONMap{},
		IsActive:               active,
	}
	if err := tx.WithContext(ctx).Create(cp).Error; err != nil {
		tb.Fatalf("seed constraint profile: %v", err)
	}
	return cp
}

// SeedWorker creates an active worker and its membership in unitID.
func SeedWorker(tb testing.TB, ctx context.Context, tx *gorm.DB, orgID, unitID int64, code string, attrs map[string]interface{}) *types.Worker {
	tb.Helper()
	if attrs == nil {
		attrs = map[string]interface{}{}
	}
	w := &types.Worker{
		OrganizationID: orgID,
		PrimaryUnitID:  &unitID,
		FullName:       "Worker " + code,
		Attributes:     datatypes.JSONMap(attrs),
		IsActive:       true,
	}
	if code != "" {
		c := code
		w.WorkerCode = &c
	}
	if err := tx.WithContext(ctx).Create(w).Error; err != nil {
		tb.Fatalf("seed worker: %v", err)
	}
	m := &types.WorkerUnitMembership{WorkerID: w.ID, UnitID: unitID}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed membership: %v", err)
	}
	return w
}

func SeedAvailability(tb testing.TB, ctx context.Context, tx *gorm.DB, workerID, unitID int64, date, shiftCode, kind string) *types.WorkerAvailability {
	tb.Helper()
	wa := &types.WorkerAvailability{
		WorkerID:   workerID,
		UnitID:     unitID,
		Date:       scheduling.MustDate(date),
		ShiftCode:  shiftCode,
		Type:       kind,
		Source:     "test",
		Attributes: datatypes.JSONMap{},
	}
	if err := tx.WithContext(ctx).Create(wa).Error; err != nil {
		tb.Fatalf("seed availability: %v", err)
	}
	return wa
}

func SeedPreference(tb testing.TB, ctx context.Context, tx *gorm.DB, workerID int64, prefersDay, prefersNight *bool, pattern map[string]interface{}) *types.WorkerPreference {
	tb.Helper()
	wp := &types.WorkerPreference{
		WorkerID:           workerID,
		PrefersDayShifts:   prefersDay,
		PrefersNightShifts: prefersNight,
		Attributes:         datatypes.JSONMap{},
	}
	if pattern != nil {
		wp.PreferencePatternJSON = datatypes.JSONMap(pattern)
	}
	if err := tx.WithContext(ctx).Create(wp).Error; err != nil {
		tb.Fatalf("seed preference: %v", err)
	}
	return wp
}

func SeedSchedule(tb testing.TB, ctx context.Context, tx *gorm.DB, orgID, unitID int64, start, end string) *types.Schedule {
	tb.Helper()
	s := &types.Schedule{
		OrganizationID: orgID,
		UnitID:         unitID,
		Name:           "Generated Schedule",
		StartDate:      scheduling.MustDate(start),
		EndDate:        scheduling.MustDate(end),
		Status:         scheduling.ScheduleDraft,
		CreatedBy:      1,
		Attributes:     datatypes.JSONMap{},
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed schedule: %v", err)
	}
	return s
}

func SeedJob(tb testing.TB, ctx context.Context, tx *gorm.DB, s *types.Schedule, status types.JobStatus) *types.ScheduleJob {
	tb.Helper()
	scheduleID := s.ID
	job := &types.ScheduleJob{
		ID:             uuid.New(),
		OrganizationID: s.OrganizationID,
		UnitID:         s.UnitID,
		RequestedBy:    s.CreatedBy,
		ScheduleID:     &scheduleID,
		Status:         status,
		StartDate:      s.StartDate,
		EndDate:        s.EndDate,
		Attributes:     datatypes.NewJSONType(types.JobAttributes{ScheduleID: &scheduleID}),
	}
	if err := tx.WithContext(ctx).Create(job).Error; err != nil {
		tb.Fatalf("seed job: %v", err)
	}
	return job
}

func SeedAssignment(tb testing.TB, ctx context.Context, tx *gorm.DB, scheduleID, workerID int64, date, shiftCode, source string) *types.ScheduleAssignment {
	tb.Helper()
	a := &types.ScheduleAssignment{
		ScheduleID: scheduleID,
		WorkerID:   workerID,
		Date:       scheduling.MustDate(date),
		ShiftCode:  shiftCode,
		Source:     source,
		Attributes: datatypes.JSONMap{},
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed assignment: %v", err)
	}
	return a
}

func PtrInt64(v int64) *int64 { return &v }
func PtrBool(v bool) *bool    { return &v }
