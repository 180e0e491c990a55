package normalizer

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/WinterJet2021/MayWin-Core-Backend/internal/data/repos"
	types "github.com/WinterJet2021/MayWin-Core-Backend/internal/domain"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/domain/scheduling"
	pkgerrors "github.com/WinterJet2021/MayWin-Core-Backend/internal/pkg/errors"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/dbctx"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/logger"
)

const defaultProfileName = "DEFAULT"

// Normalizer turns a job plus the unit configuration into a solver Payload.
type Normalizer struct {
	log          *logger.Logger
	jobs         repos.ScheduleJobRepo
	shifts       repos.ShiftTemplateRepo
	coverage     repos.CoverageRuleRepo
	profiles     repos.ConstraintProfileRepo
	workers      repos.WorkerRepo
	availability repos.WorkerAvailabilityRepo
	preferences  repos.WorkerPreferenceRepo
}

func New(
	baseLog *logger.Logger,
	jobs repos.ScheduleJobRepo,
	shifts repos.ShiftTemplateRepo,
	coverage repos.CoverageRuleRepo,
	profiles repos.ConstraintProfileRepo,
	workers repos.WorkerRepo,
	availability repos.WorkerAvailabilityRepo,
	preferences repos.WorkerPreferenceRepo,
) *Normalizer {
	return &Normalizer{
		log:          baseLog.With("component", "Normalizer"),
		jobs:         jobs,
		shifts:       shifts,
		coverage:     coverage,
		profiles:     profiles,
		workers:      workers,
		availability: availability,
		preferences:  preferences,
	}
}

// Build reads everything the solver needs for jobID. It never mutates the job;
// the caller persists the returned meta.
func (n *Normalizer) Build(dbc dbctx.Context, jobID uuid.UUID) (*Payload, *scheduling.NormalizerMeta, error) {
	job, err := n.jobs.GetByID(dbc, jobID)
	if err != nil {
		return nil, nil, err
	}
	if job == nil {
		return nil, nil, fmt.Errorf("job %s: %w", jobID, pkgerrors.ErrNotFound)
	}

	start := scheduling.FormatDate(job.StartDate)
	end := scheduling.FormatDate(job.EndDate)
	days, err := EnumerateHorizon(start, end)
	if err != nil {
		return nil, nil, err
	}

	shiftRows, err := n.shifts.ListActiveForUnit(dbc, job.OrganizationID, job.UnitID)
	if err != nil {
		return nil, nil, fmt.Errorf("load shift templates: %w", err)
	}
	shifts := make([]Shift, 0, len(shiftRows))
	var nightCodes, dayCodes []string
	for _, s := range shiftRows {
		shifts = append(shifts, Shift{
			Code:       s.Code,
			Name:       s.Name,
			StartTime:  s.StartTime,
			EndTime:    s.EndTime,
			Attributes: orEmpty(s.Attributes),
		})
		if IsNightShift(s.Code, s.Name) {
			nightCodes = append(nightCodes, s.Code)
		} else {
			dayCodes = append(dayCodes, s.Code)
		}
	}

	ruleRows, err := n.coverage.ListByUnit(dbc, job.UnitID)
	if err != nil {
		return nil, nil, fmt.Errorf("load coverage rules: %w", err)
	}
	rules := make([]CoverageRule, 0, len(ruleRows))
	for _, r := range ruleRows {
		rules = append(rules, CoverageRule{
			ShiftCode:   r.ShiftCode,
			DayType:     r.DayType,
			MinWorkers:  r.MinWorkers,
			MaxWorkers:  r.MaxWorkers,
			RequiredTag: r.RequiredTag,
			Attributes:  orEmpty(r.Attributes),
		})
	}

	constraints, err := n.resolveConstraints(dbc, job)
	if err != nil {
		return nil, nil, err
	}

	workerRows, err := n.workers.ListActiveByUnit(dbc, job.OrganizationID, job.UnitID)
	if err != nil {
		return nil, nil, fmt.Errorf("load workers: %w", err)
	}
	mappings := AssignShortCodes(workerRows)
	workerIDs := make([]int64, 0, len(workerRows))
	nurses := make([]Nurse, 0, len(workerRows))
	for _, w := range workerRows {
		workerIDs = append(workerIDs, w.ID)
		attrs := orEmpty(w.Attributes)
		nurses = append(nurses, Nurse{
			Code:           mappings.NurseCodeByWorkerID[w.ID],
			FullName:       w.FullName,
			EmploymentType: w.EmploymentType,
			WeeklyHours:    w.WeeklyHours,
			PrimaryUnitID:  w.PrimaryUnitID,
			Tags:           workerTags(attrs),
			Attributes:     attrs,
		})
	}

	availability := []AvailabilityRow{}
	if len(workerIDs) > 0 {
		rows, err := n.availability.ListInRange(dbc, job.UnitID, workerIDs, job.StartDate, job.EndDate)
		if err != nil {
			return nil, nil, fmt.Errorf("load availability: %w", err)
		}
		for _, a := range rows {
			availability = append(availability, AvailabilityRow{
				NurseCode:  mappings.NurseCodeByWorkerID[a.WorkerID],
				WorkerID:   a.WorkerID,
				Date:       scheduling.FormatDate(a.Date),
				ShiftCode:  a.ShiftCode,
				Type:       a.Type,
				Source:     a.Source,
				Reason:     a.Reason,
				Attributes: orEmpty(a.Attributes),
			})
		}
	}

	prefs, err := n.buildPreferences(dbc, job, workerRows, workerIDs, mappings, days, nightCodes, dayCodes)
	if err != nil {
		return nil, nil, err
	}

	meta := &scheduling.NormalizerMeta{
		Mappings: mappings,
		Counts: scheduling.NormalizerCounts{
			Nurses:           len(nurses),
			Shifts:           len(shifts),
			CoverageRules:    len(rules),
			AvailabilityRows: len(availability),
			Days:             len(days),
			PreferenceNurses: len(prefs),
		},
	}

	payload := &Payload{
		Version: PayloadVersion,
		Job: JobSummary{
			JobID:          job.ID,
			OrganizationID: job.OrganizationID,
			UnitID:         job.UnitID,
			Status:         job.Status,
		},
		Horizon:       Horizon{StartDate: start, EndDate: end, Days: days},
		Shifts:        shifts,
		Nurses:        nurses,
		CoverageRules: rules,
		Constraints:   constraints,
		Availability:  availability,
		Preferences:   prefs,
		Meta:          *meta,
	}

	n.log.Debug("normalized job",
		"job_id", job.ID,
		"nurses", meta.Counts.Nurses,
		"shifts", meta.Counts.Shifts,
		"days", meta.Counts.Days,
		"preference_nurses", meta.Counts.PreferenceNurses,
	)
	return payload, meta, nil
}

func (n *Normalizer) resolveConstraints(dbc dbctx.Context, job *types.ScheduleJob) (Constraints, error) {
	attrs := job.Attributes.Data()
	var profile *types.ConstraintProfile
	if attrs.ConstraintProfileID != nil {
		p, err := n.profiles.GetForUnit(dbc, *attrs.ConstraintProfileID, job.UnitID)
		if err != nil {
			return Constraints{}, fmt.Errorf("load constraint profile: %w", err)
		}
		if p == nil {
			n.log.Warn("constraint profile not found for unit, using latest active",
				"job_id", job.ID,
				"constraint_profile_id", *attrs.ConstraintProfileID,
				"unit_id", job.UnitID,
			)
		}
		profile = p
	}
	if profile == nil {
		p, err := n.profiles.GetLatestActiveForUnit(dbc, job.UnitID)
		if err != nil {
			return Constraints{}, fmt.Errorf("load constraint profile: %w", err)
		}
		profile = p
	}
	if profile == nil {
		return Constraints{
			Name:               defaultProfileName,
			FairnessWeightJSON: map[string]any{},
			PenaltyWeightJSON:  map[string]any{},
			Attributes:         map[string]any{},
		}, nil
	}
	id := profile.ID
	return Constraints{
		ConstraintProfileID:       &id,
		Name:                      profile.Name,
		MaxConsecutiveWorkDays:    profile.MaxConsecutiveWorkDays,
		MaxConsecutiveNightShifts: profile.MaxConsecutiveNightShifts,
		MinRestHoursBetweenShifts: profile.MinRestHoursBetweenShifts,
		FairnessWeightJSON:        orEmpty(profile.FairnessWeightJSON),
		PenaltyWeightJSON:         orEmpty(profile.PenaltyWeightJSON),
		Attributes:                orEmpty(profile.Attributes),
	}, nil
}

func (n *Normalizer) buildPreferences(
	dbc dbctx.Context,
	job *types.ScheduleJob,
	workers []*types.Worker,
	workerIDs []int64,
	mappings scheduling.CodeMappings,
	days []Day,
	nightCodes, dayCodes []string,
) (Preferences, error) {
	out := Preferences{}
	if len(workers) == 0 {
		return out, nil
	}
	rows, err := n.preferences.ListByWorkerIDs(dbc, workerIDs)
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	byWorker := make(map[int64]*types.WorkerPreference, len(rows))
	for _, r := range rows {
		byWorker[r.WorkerID] = r
	}
	dates := make([]string, 0, len(days))
	for _, d := range days {
		dates = append(dates, d.Date)
	}
	unitKey := strconv.FormatInt(job.UnitID, 10)
	for _, w := range workers {
		p := resolveWorkerPrefs(byWorker[w.ID], w, unitKey)
		if penalties := derivePenalties(p, dates, nightCodes, dayCodes); penalties != nil {
			out[mappings.NurseCodeByWorkerID[w.ID]] = penalties
		}
	}
	return out, nil
}
