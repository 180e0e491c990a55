package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/WinterJet2021/MayWin-Core-Backend/internal/artifacts"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/data/repos"
	types "github.com/WinterJet2021/MayWin-Core-Backend/internal/domain"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/domain/scheduling"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/jobs"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/apierr"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/ctxutil"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/dbctx"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/logger"
)

const cancelMessage = "Cancelled by user"

// Enqueuer hands a job id to the pipeline consumer.
type Enqueuer interface {
	Enqueue(jobID uuid.UUID) error
}

type CreateJobRequest struct {
	StartDate           string         `json:"startDate"`
	EndDate             string         `json:"endDate"`
	Strategy            map[string]any `json:"strategy,omitempty"`
	SolverConfig        map[string]any `json:"solverConfig,omitempty"`
	Options             map[string]any `json:"options,omitempty"`
	Notes               string         `json:"notes,omitempty"`
	ConstraintProfileID *int64         `json:"constraintProfileId,omitempty"`
}

type JobCreated struct {
	ID         uuid.UUID            `json:"id"`
	ScheduleID int64                `json:"scheduleId"`
	State      scheduling.JobStatus `json:"state"`
	CreatedAt  time.Time            `json:"createdAt"`
}

type JobView struct {
	ID           uuid.UUID              `json:"id"`
	ScheduleID   *int64                 `json:"scheduleId"`
	State        scheduling.JobStatus   `json:"state"`
	Phase        string                 `json:"phase"`
	ChosenPlan   *scheduling.SolverPlan `json:"chosenPlan"`
	CreatedAt    time.Time              `json:"createdAt"`
	UpdatedAt    time.Time              `json:"updatedAt"`
	ErrorCode    *string                `json:"errorCode"`
	ErrorMessage *string                `json:"errorMessage"`
}

type ArtifactStorage struct {
	Provider    string  `json:"provider"`
	Bucket      *string `json:"bucket"`
	ObjectKey   *string `json:"objectKey"`
	ContentType *string `json:"contentType"`
	SHA256      *string `json:"sha256"`
	Bytes       *int64  `json:"bytes"`
}

type ArtifactView struct {
	ID        uuid.UUID               `json:"id"`
	Type      scheduling.ArtifactType `json:"type"`
	Storage   ArtifactStorage         `json:"storage"`
	Metadata  any                     `json:"metadata"`
	CreatedAt time.Time               `json:"createdAt"`
}

type EventView struct {
	ID        uuid.UUID      `json:"id"`
	EventType string         `json:"eventType"`
	Message   *string        `json:"message"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"createdAt"`
}

type AppliedSchedule struct {
	ID     int64                     `json:"id"`
	Status scheduling.ScheduleStatus `json:"status"`
	JobID  uuid.UUID                 `json:"jobId"`
}

type ApplyResult struct {
	Schedule                      AppliedSchedule `json:"schedule"`
	UpdatedAssignmentsCount       int             `json:"updatedAssignmentsCount"`
	SkippedManualAssignmentsCount int             `json:"skippedManualAssignmentsCount"`
}

type CancelResult struct {
	JobID     uuid.UUID            `json:"jobId"`
	State     scheduling.JobStatus `json:"state"`
	ErrorCode *string              `json:"errorCode"`
}

type JobsService interface {
	CreateJob(ctx context.Context, scheduleID int64, req CreateJobRequest, idempotencyKey string) (*JobCreated, error)
	GetJob(ctx context.Context, jobID uuid.UUID) (*JobView, error)
	ListArtifacts(ctx context.Context, jobID uuid.UUID) ([]ArtifactView, error)
	GetArtifactContent(ctx context.Context, jobID uuid.UUID, t scheduling.ArtifactType) (json.RawMessage, error)
	ListEvents(ctx context.Context, jobID uuid.UUID) ([]EventView, error)
	Preview(ctx context.Context, jobID uuid.UUID) (*scheduling.Preview, error)
	Apply(ctx context.Context, jobID uuid.UUID, overwriteManualChanges bool) (*ApplyResult, error)
	Cancel(ctx context.Context, jobID uuid.UUID) (*CancelResult, error)
}

type jobsService struct {
	db          *gorm.DB
	log         *logger.Logger
	jobs        repos.ScheduleJobRepo
	events      repos.ScheduleJobEventRepo
	schedules   repos.ScheduleRepo
	assignments repos.ScheduleAssignmentRepo
	artifacts   *artifacts.Store
	queue       Enqueuer
	notify      jobs.JobNotifier
}

func NewJobsService(
	db *gorm.DB,
	baseLog *logger.Logger,
	jobRepo repos.ScheduleJobRepo,
	events repos.ScheduleJobEventRepo,
	schedules repos.ScheduleRepo,
	assignments repos.ScheduleAssignmentRepo,
	store *artifacts.Store,
	queue Enqueuer,
	notify jobs.JobNotifier,
) JobsService {
	return &jobsService{
		db:          db,
		log:         baseLog.With("service", "JobsService"),
		jobs:        jobRepo,
		events:      events,
		schedules:   schedules,
		assignments: assignments,
		artifacts:   store,
		queue:       queue,
		notify:      notify,
	}
}

func (s *jobsService) CreateJob(ctx context.Context, scheduleID int64, req CreateJobRequest, idempotencyKey string) (*JobCreated, error) {
	start, err := scheduling.ParseDate(req.StartDate)
	if err != nil {
		return nil, apierr.BadRequest("invalid_start_date", err)
	}
	end, err := scheduling.ParseDate(req.EndDate)
	if err != nil {
		return nil, apierr.BadRequest("invalid_end_date", err)
	}
	if time.Time(end).Before(time.Time(start)) {
		return nil, apierr.BadRequest("invalid_dates", fmt.Errorf("endDate %s is before startDate %s", req.EndDate, req.StartDate))
	}

	dbc := dbctx.Context{Ctx: ctx}
	schedule, err := s.schedules.GetByID(dbc, scheduleID)
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		return nil, apierr.NotFound("schedule_not_found", "Schedule not found")
	}

	key := strings.TrimSpace(idempotencyKey)
	if key != "" {
		existing, err := s.jobs.FindByIdempotencyKey(dbc, schedule.OrganizationID, schedule.UnitID, key, schedule.ID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			s.log.Debug("idempotent job create", "job_id", existing.ID, "schedule_id", schedule.ID)
			return &JobCreated{ID: existing.ID, ScheduleID: schedule.ID, State: existing.Status, CreatedAt: existing.CreatedAt}, nil
		}
	}

	sid := schedule.ID
	job := &types.ScheduleJob{
		OrganizationID: schedule.OrganizationID,
		UnitID:         schedule.UnitID,
		RequestedBy:    schedule.CreatedBy,
		ScheduleID:     &sid,
		Status:         scheduling.JobRequested,
		StartDate:      start,
		EndDate:        end,
		Attributes: datatypes.NewJSONType(types.JobAttributes{
			ScheduleID:          &sid,
			ConstraintProfileID: req.ConstraintProfileID,
			Request: &scheduling.JobRequest{
				Strategy:     req.Strategy,
				SolverConfig: req.SolverConfig,
				Options:      req.Options,
				Notes:        req.Notes,
			},
		}),
	}
	if key != "" {
		job.IdempotencyKey = &key
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := s.jobs.Create(inner, job); err != nil {
			return fmt.Errorf("create job: %w", err)
		}
		return s.schedules.UpdateFields(inner, schedule.ID, map[string]interface{}{"job_id": job.ID})
	})
	if err != nil && key != "" && errors.Is(err, gorm.ErrDuplicatedKey) {
		// A concurrent request with the same key won the insert.
		existing, findErr := s.jobs.FindByIdempotencyKey(dbc, schedule.OrganizationID, schedule.UnitID, key, schedule.ID)
		if findErr != nil {
			return nil, findErr
		}
		if existing != nil {
			s.log.Debug("idempotent job create after conflict", "job_id", existing.ID, "schedule_id", schedule.ID)
			return &JobCreated{ID: existing.ID, ScheduleID: schedule.ID, State: existing.Status, CreatedAt: existing.CreatedAt}, nil
		}
	}
	if err != nil {
		return nil, err
	}

	if err := s.queue.Enqueue(job.ID); err != nil {
		// Left in REQUESTED; boot recovery picks it up.
		s.log.Warn("enqueue job failed", "job_id", job.ID, "error", err)
	}
	fields := []interface{}{"job_id", job.ID, "schedule_id", schedule.ID, "unit_id", schedule.UnitID}
	s.log.Info("job created", append(fields, ctxutil.LogFields(ctx)...)...)
	return &JobCreated{ID: job.ID, ScheduleID: schedule.ID, State: job.Status, CreatedAt: job.CreatedAt}, nil
}

func (s *jobsService) GetJob(ctx context.Context, jobID uuid.UUID) (*JobView, error) {
	job, err := s.mustJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	scheduleID := job.ScheduleID
	if scheduleID == nil {
		scheduleID = job.Attributes.Data().ScheduleID
	}
	return &JobView{
		ID:           job.ID,
		ScheduleID:   scheduleID,
		State:        job.Status,
		Phase:        job.Status.Phase(),
		ChosenPlan:   job.ChosenPlan,
		CreatedAt:    job.CreatedAt,
		UpdatedAt:    job.UpdatedAt,
		ErrorCode:    job.ErrorCode,
		ErrorMessage: job.ErrorMessage,
	}, nil
}

func (s *jobsService) ListArtifacts(ctx context.Context, jobID uuid.UUID) ([]ArtifactView, error) {
	if _, err := s.mustJob(ctx, jobID); err != nil {
		return nil, err
	}
	rows, err := s.artifacts.List(dbctx.Context{Ctx: ctx}, jobID)
	if err != nil {
		return nil, err
	}
	out := make([]ArtifactView, 0, len(rows))
	for _, a := range rows {
		out = append(out, ArtifactView{
			ID:   a.ID,
			Type: a.Type,
			Storage: ArtifactStorage{
				Provider:    a.StorageProvider,
				Bucket:      a.Bucket,
				ObjectKey:   a.ObjectKey,
				ContentType: a.ContentType,
				SHA256:      a.ContentSHA256,
				Bytes:       a.ContentBytes,
			},
			Metadata:  a.Metadata,
			CreatedAt: a.CreatedAt,
		})
	}
	return out, nil
}

func (s *jobsService) GetArtifactContent(ctx context.Context, jobID uuid.UUID, t scheduling.ArtifactType) (json.RawMessage, error) {
	t = scheduling.ArtifactType(strings.ToUpper(strings.TrimSpace(string(t))))
	if !t.Valid() {
		return nil, apierr.BadRequest("invalid_artifact_type", fmt.Errorf("unknown artifact type %q", t))
	}
	if _, err := s.mustJob(ctx, jobID); err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	a, err := s.artifacts.Get(dbc, jobID, t)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apierr.NotFound("artifact_not_found", fmt.Sprintf("Artifact %s not found", t))
	}
	return s.artifacts.Content(dbc, a)
}

func (s *jobsService) ListEvents(ctx context.Context, jobID uuid.UUID) ([]EventView, error) {
	if _, err := s.mustJob(ctx, jobID); err != nil {
		return nil, err
	}
	rows, err := s.events.ListByJob(dbctx.Context{Ctx: ctx}, jobID)
	if err != nil {
		return nil, err
	}
	out := make([]EventView, 0, len(rows))
	for _, ev := range rows {
		out = append(out, EventView{
			ID:        ev.ID,
			EventType: ev.EventType,
			Message:   ev.Message,
			Payload:   ev.Payload,
			CreatedAt: ev.CreatedAt,
		})
	}
	return out, nil
}

func (s *jobsService) Preview(ctx context.Context, jobID uuid.UUID) (*scheduling.Preview, error) {
	job, err := s.mustJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if p := job.Attributes.Data().Preview; p != nil {
		if p.Assignments == nil {
			p.Assignments = []scheduling.PreviewAssignment{}
		}
		return p, nil
	}
	return &scheduling.Preview{Assignments: []scheduling.PreviewAssignment{}}, nil
}

// Apply commits the preview onto the schedule in one transaction. MANUAL rows
// at the same (worker, date) survive unless overwrite is set.
func (s *jobsService) Apply(ctx context.Context, jobID uuid.UUID, overwriteManualChanges bool) (*ApplyResult, error) {
	job, err := s.mustJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != scheduling.JobCompleted {
		return nil, apierr.Conflict("job_not_completed", "Job is not completed yet")
	}
	scheduleID := job.ScheduleID
	if scheduleID == nil {
		scheduleID = job.Attributes.Data().ScheduleID
	}
	if scheduleID == nil {
		return nil, apierr.Conflict("job_missing_schedule", "Job missing schedule linkage")
	}

	var preview []scheduling.PreviewAssignment
	if p := job.Attributes.Data().Preview; p != nil {
		preview = p.Assignments
	}

	res := &ApplyResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		schedule, err := s.schedules.GetByID(inner, *scheduleID)
		if err != nil {
			return err
		}
		if schedule == nil {
			return apierr.NotFound("schedule_not_found", "Schedule not found")
		}

		current, err := s.assignments.ListBySchedule(inner, schedule.ID)
		if err != nil {
			return err
		}
		existing := make(map[string]*types.ScheduleAssignment, len(current))
		for _, a := range current {
			existing[cellKey(a.WorkerID, scheduling.FormatDate(a.Date))] = a
		}

		for _, pa := range preview {
			date, err := scheduling.ParseDate(pa.Date)
			if err != nil {
				s.log.Warn("skip preview row with bad date", "job_id", jobID, "date", pa.Date)
				continue
			}
			key := cellKey(pa.WorkerID, pa.Date)
			row := existing[key]
			if row != nil && row.Source == scheduling.AssignmentSourceManual && !overwriteManualChanges {
				res.SkippedManualAssignmentsCount++
				continue
			}
			attrs := datatypes.JSONMap{}
			if row != nil && row.Attributes != nil {
				attrs = row.Attributes
			}
			next := &types.ScheduleAssignment{
				ScheduleID: schedule.ID,
				WorkerID:   pa.WorkerID,
				Date:       date,
				ShiftCode:  pa.ShiftCode,
				Source:     scheduling.AssignmentSourceSolver,
				Attributes: attrs,
			}
			if err := s.assignments.Upsert(inner, next); err != nil {
				return fmt.Errorf("upsert assignment: %w", err)
			}
			existing[key] = next
			res.UpdatedAssignmentsCount++
		}

		if err := s.schedules.UpdateFields(inner, schedule.ID, map[string]interface{}{"job_id": job.ID}); err != nil {
			return err
		}
		if err := s.jobs.UpdateFields(inner, job.ID, map[string]interface{}{"final_schedule_id": schedule.ID}); err != nil {
			return err
		}
		res.Schedule = AppliedSchedule{ID: schedule.ID, Status: scheduling.ScheduleReadyForReview, JobID: job.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("job applied",
		"job_id", jobID,
		"schedule_id", res.Schedule.ID,
		"updated", res.UpdatedAssignmentsCount,
		"skipped_manual", res.SkippedManualAssignmentsCount,
	)
	return res, nil
}

// Cancel marks a live job FAILED/CANCELLED. A solver attempt already running
// is not interrupted; the runner stops at its next transition.
func (s *jobsService) Cancel(ctx context.Context, jobID uuid.UUID) (*CancelResult, error) {
	job, err := s.mustJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	ok, err := s.jobs.MarkFailed(dbctx.Context{Ctx: ctx}, jobID, jobs.CodeCancelled, cancelMessage)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apierr.Conflict("job_already_finished", fmt.Sprintf("Job is already %s", job.Status))
	}
	if s.notify != nil {
		s.notify.Failed(ctx, jobID, jobs.CodeCancelled, cancelMessage)
	}
	code := jobs.CodeCancelled
	return &CancelResult{JobID: jobID, State: scheduling.JobFailed, ErrorCode: &code}, nil
}

func (s *jobsService) mustJob(ctx context.Context, jobID uuid.UUID) (*types.ScheduleJob, error) {
	job, err := s.jobs.GetByID(dbctx.Context{Ctx: ctx}, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, apierr.NotFound("job_not_found", "Job not found")
	}
	return job, nil
}

func cellKey(workerID int64, date string) string {
	return fmt.Sprintf("%d|%s", workerID, date)
}
