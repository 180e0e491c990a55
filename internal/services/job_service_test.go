package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/WinterJet2021/MayWin-Core-Backend/internal/artifacts"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/data/repos"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/data/repos/testutil"
	types "github.com/WinterJet2021/MayWin-Core-Backend/internal/domain"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/domain/scheduling"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/jobs"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/apierr"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/dbctx"
)

type recordingQueue struct {
	mu  sync.Mutex
	ids []uuid.UUID
	err error
}

func (q *recordingQueue) Enqueue(id uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids = append(q.ids, id)
	return q.err
}

type serviceFixture struct {
	db    *gorm.DB
	svc   JobsService
	jobs  repos.ScheduleJobRepo
	store *artifacts.Store
	queue *recordingQueue
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	db := testutil.Fresh(t)
	log := testutil.Logger(t)
	jobRepo := repos.NewScheduleJobRepo(db, log)
	events := repos.NewScheduleJobEventRepo(db, log)
	store := artifacts.NewStore(log, repos.NewScheduleArtifactRepo(db, log), nil)
	queue := &recordingQueue{}
	svc := NewJobsService(db, log,
		jobRepo,
		events,
		repos.NewScheduleRepo(db, log),
		repos.NewScheduleAssignmentRepo(db, log),
		store,
		queue,
		jobs.NewJobNotifier(log, events, nil),
	)
	return &serviceFixture{db: db, svc: svc, jobs: jobRepo, store: store, queue: queue}
}

func wantStatus(t *testing.T, err error, status int) {
	t.Helper()
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) || apiErr.Status != status {
		t.Fatalf("expected api error %d, got %v", status, err)
	}
}

func TestCreateJobIdempotency(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	s1 := testutil.SeedSchedule(t, ctx, f.db, 1, 3, "2025-01-06", "2025-01-12")
	s2 := testutil.SeedSchedule(t, ctx, f.db, 1, 3, "2025-01-13", "2025-01-19")
	req := CreateJobRequest{StartDate: "2025-01-06", EndDate: "2025-01-12", Notes: "first draft"}

	first, err := f.svc.CreateJob(ctx, s1.ID, req, "key-1")
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if first.State != scheduling.JobRequested || first.ScheduleID != s1.ID {
		t.Fatalf("unexpected created job: %+v", first)
	}
	again, err := f.svc.CreateJob(ctx, s1.ID, req, "key-1")
	if err != nil {
		t.Fatalf("CreateJob again: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("same key and schedule should return the same job")
	}
	other, err := f.svc.CreateJob(ctx, s2.ID, req, "key-1")
	if err != nil {
		t.Fatalf("CreateJob other schedule: %v", err)
	}
	if other.ID == first.ID {
		t.Fatalf("different schedule should create a new job")
	}
	if len(f.queue.ids) != 2 {
		t.Fatalf("expected two enqueues, got %d", len(f.queue.ids))
	}

	var linked types.Schedule
	if err := f.db.First(&linked, s1.ID).Error; err != nil {
		t.Fatalf("load schedule: %v", err)
	}
	if linked.JobID == nil || *linked.JobID != first.ID {
		t.Fatalf("schedule not linked to job: %v", linked.JobID)
	}

	job, err := f.jobs.GetByID(dbctx.Context{Ctx: ctx}, first.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	attrs := job.Attributes.Data()
	if attrs.Request == nil || attrs.Request.Notes != "first draft" || attrs.ScheduleID == nil || *attrs.ScheduleID != s1.ID {
		t.Fatalf("request not stored in attributes: %+v", attrs)
	}
}

// staleKeyLookup misses the first idempotency lookup, as a request racing
// another insert with the same key would.
type staleKeyLookup struct {
	repos.ScheduleJobRepo
	misses int
}

func (r *staleKeyLookup) FindByIdempotencyKey(dbc dbctx.Context, organizationID, unitID int64, key string, scheduleID int64) (*types.ScheduleJob, error) {
	if r.misses > 0 {
		r.misses--
		return nil, nil
	}
	return r.ScheduleJobRepo.FindByIdempotencyKey(dbc, organizationID, unitID, key, scheduleID)
}

func TestCreateJobIdempotencyKeyConflict(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	s := testutil.SeedSchedule(t, ctx, f.db, 1, 3, "2025-01-06", "2025-01-12")
	req := CreateJobRequest{StartDate: "2025-01-06", EndDate: "2025-01-12"}

	first, err := f.svc.CreateJob(ctx, s.ID, req, "key-race")
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	log := testutil.Logger(t)
	events := repos.NewScheduleJobEventRepo(f.db, log)
	racing := NewJobsService(f.db, log,
		&staleKeyLookup{ScheduleJobRepo: f.jobs, misses: 1},
		events,
		repos.NewScheduleRepo(f.db, log),
		repos.NewScheduleAssignmentRepo(f.db, log),
		f.store,
		f.queue,
		jobs.NewJobNotifier(log, events, nil),
	)
	again, err := racing.CreateJob(ctx, s.ID, req, "key-race")
	if err != nil {
		t.Fatalf("CreateJob after conflict: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("expected existing job %s, got %s", first.ID, again.ID)
	}
	if len(f.queue.ids) != 1 {
		t.Fatalf("conflicting create should not enqueue, got %d enqueues", len(f.queue.ids))
	}

	var count int64
	if err := f.db.Model(&types.ScheduleJob{}).Where("schedule_id = ?", s.ID).Count(&count).Error; err != nil {
		t.Fatalf("count jobs: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one job row, got %d", count)
	}
}

func TestCreateJobValidation(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	s := testutil.SeedSchedule(t, ctx, f.db, 1, 3, "2025-01-06", "2025-01-12")

	_, err := f.svc.CreateJob(ctx, s.ID+100, CreateJobRequest{StartDate: "2025-01-06", EndDate: "2025-01-07"}, "")
	wantStatus(t, err, http.StatusNotFound)

	_, err = f.svc.CreateJob(ctx, s.ID, CreateJobRequest{StartDate: "06/01/2025", EndDate: "2025-01-07"}, "")
	wantStatus(t, err, http.StatusBadRequest)

	_, err = f.svc.CreateJob(ctx, s.ID, CreateJobRequest{StartDate: "2025-01-07", EndDate: "2025-01-06"}, "")
	wantStatus(t, err, http.StatusBadRequest)

	if len(f.queue.ids) != 0 {
		t.Fatalf("rejected requests must not enqueue")
	}
}

func TestCreateJobSurvivesFullQueue(t *testing.T) {
	f := newServiceFixture(t)
	f.queue.err = jobs.ErrQueueFull
	ctx := context.Background()
	s := testutil.SeedSchedule(t, ctx, f.db, 1, 3, "2025-01-06", "2025-01-12")

	created, err := f.svc.CreateJob(ctx, s.ID, CreateJobRequest{StartDate: "2025-01-06", EndDate: "2025-01-12"}, "")
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if created.State != scheduling.JobRequested {
		t.Fatalf("expected REQUESTED, got %s", created.State)
	}
}

func TestGetJobAndPreviewDefaults(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	s := testutil.SeedSchedule(t, ctx, f.db, 1, 3, "2025-01-06", "2025-01-12")
	job := testutil.SeedJob(t, ctx, f.db, s, scheduling.JobSolvingARelaxed)

	view, err := f.svc.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if view.Phase != "RELAXED_PASS" || view.ScheduleID == nil || *view.ScheduleID != s.ID {
		t.Fatalf("unexpected view: %+v", view)
	}

	p, err := f.svc.Preview(ctx, job.ID)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if p.Assignments == nil || len(p.Assignments) != 0 {
		t.Fatalf("expected empty preview, got %+v", p)
	}
	raw, _ := json.Marshal(p)
	if string(raw) == "null" {
		t.Fatalf("preview should serialise as an object")
	}

	_, err = f.svc.GetJob(ctx, uuid.New())
	wantStatus(t, err, http.StatusNotFound)
}

func TestArtifactsAndEvents(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	s := testutil.SeedSchedule(t, ctx, f.db, 1, 3, "2025-01-06", "2025-01-12")
	job := testutil.SeedJob(t, ctx, f.db, s, scheduling.JobCompleted)

	_, err := f.svc.GetArtifactContent(ctx, job.ID, scheduling.ArtifactKPISummary)
	wantStatus(t, err, http.StatusNotFound)
	_, err = f.svc.GetArtifactContent(ctx, job.ID, "BOGUS")
	wantStatus(t, err, http.StatusBadRequest)

	if _, _, err := f.store.WriteOnce(dbctx.Context{Ctx: ctx}, job.ID, scheduling.ArtifactKPISummary, map[string]any{"schema": "KpiSummary.v1"}); err != nil {
		t.Fatalf("WriteOnce: %v", err)
	}
	raw, err := f.svc.GetArtifactContent(ctx, job.ID, "kpi_summary")
	if err != nil {
		t.Fatalf("GetArtifactContent: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil || doc["schema"] != "KpiSummary.v1" {
		t.Fatalf("unexpected content %s (%v)", raw, err)
	}

	list, err := f.svc.ListArtifacts(ctx, job.ID)
	if err != nil {
		t.Fatalf("ListArtifacts: %v", err)
	}
	if len(list) != 1 || list[0].Storage.Provider != scheduling.StorageProviderDB || list[0].Storage.SHA256 == nil {
		t.Fatalf("unexpected artifact list: %+v", list)
	}

	if _, err := f.svc.Cancel(ctx, job.ID); err == nil {
		t.Fatalf("expected conflict cancelling a completed job")
	}
	events, err := f.svc.ListEvents(ctx, job.ID)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
}

func seedPreview(t *testing.T, f *serviceFixture, job *types.ScheduleJob, rows []scheduling.PreviewAssignment) {
	t.Helper()
	err := f.jobs.UpdateAttributes(dbctx.Context{Ctx: context.Background()}, job.ID, func(a *types.JobAttributes) {
		a.Preview = &scheduling.Preview{ScheduleID: job.ScheduleID, Assignments: rows}
	})
	if err != nil {
		t.Fatalf("UpdateAttributes: %v", err)
	}
}

func TestApplySkipsManualRows(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	s := testutil.SeedSchedule(t, ctx, f.db, 1, 3, "2025-01-06", "2025-01-12")
	job := testutil.SeedJob(t, ctx, f.db, s, scheduling.JobCompleted)
	manual := testutil.SeedAssignment(t, ctx, f.db, s.ID, 1, "2025-01-06", "N", scheduling.AssignmentSourceManual)
	testutil.SeedAssignment(t, ctx, f.db, s.ID, 2, "2025-01-06", "N", scheduling.AssignmentSourceSolver)
	seedPreview(t, f, job, []scheduling.PreviewAssignment{
		{WorkerID: 1, Date: "2025-01-06", ShiftCode: "D", Source: scheduling.AssignmentSourceSolver},
		{WorkerID: 2, Date: "2025-01-06", ShiftCode: "D", Source: scheduling.AssignmentSourceSolver},
		{WorkerID: 3, Date: "2025-01-07", ShiftCode: "E", Source: scheduling.AssignmentSourceSolver},
	})

	res, err := f.svc.Apply(ctx, job.ID, false)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.UpdatedAssignmentsCount != 2 || res.SkippedManualAssignmentsCount != 1 {
		t.Fatalf("unexpected counts: %+v", res)
	}
	if res.Schedule.Status != scheduling.ScheduleReadyForReview || res.Schedule.JobID != job.ID {
		t.Fatalf("unexpected schedule summary: %+v", res.Schedule)
	}

	var rows []types.ScheduleAssignment
	if err := f.db.Where("schedule_id = ?", s.ID).Order("worker_id").Find(&rows).Error; err != nil {
		t.Fatalf("load assignments: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 assignments, got %d", len(rows))
	}
	if rows[0].ID != manual.ID || rows[0].ShiftCode != "N" || rows[0].Source != scheduling.AssignmentSourceManual {
		t.Fatalf("manual row changed: %+v", rows[0])
	}
	if rows[1].ShiftCode != "D" || rows[1].Source != scheduling.AssignmentSourceSolver {
		t.Fatalf("solver row not updated: %+v", rows[1])
	}

	got, err := f.jobs.GetByID(dbctx.Context{Ctx: ctx}, job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.FinalScheduleID == nil || *got.FinalScheduleID != s.ID {
		t.Fatalf("final schedule not set: %v", got.FinalScheduleID)
	}

	res, err = f.svc.Apply(ctx, job.ID, true)
	if err != nil {
		t.Fatalf("Apply overwrite: %v", err)
	}
	if res.UpdatedAssignmentsCount != 3 || res.SkippedManualAssignmentsCount != 0 {
		t.Fatalf("unexpected overwrite counts: %+v", res)
	}
	var overwritten types.ScheduleAssignment
	if err := f.db.First(&overwritten, manual.ID).Error; err != nil {
		t.Fatalf("load manual row: %v", err)
	}
	if overwritten.ShiftCode != "D" || overwritten.Source != scheduling.AssignmentSourceSolver {
		t.Fatalf("manual row should be overwritten: %+v", overwritten)
	}
}

func TestApplyConflicts(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	s := testutil.SeedSchedule(t, ctx, f.db, 1, 3, "2025-01-06", "2025-01-12")

	running := testutil.SeedJob(t, ctx, f.db, s, scheduling.JobEvaluating)
	_, err := f.svc.Apply(ctx, running.ID, false)
	wantStatus(t, err, http.StatusConflict)

	unlinked := testutil.SeedJob(t, ctx, f.db, s, scheduling.JobCompleted)
	if err := f.db.Model(&types.ScheduleJob{}).Where("id = ?", unlinked.ID).
		Updates(map[string]interface{}{"schedule_id": nil, "attributes": []byte(`{}`)}).Error; err != nil {
		t.Fatalf("unlink: %v", err)
	}
	_, err = f.svc.Apply(ctx, unlinked.ID, false)
	wantStatus(t, err, http.StatusConflict)

	_, err = f.svc.Apply(ctx, uuid.New(), false)
	wantStatus(t, err, http.StatusNotFound)
}

func TestCancel(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	s := testutil.SeedSchedule(t, ctx, f.db, 1, 3, "2025-01-06", "2025-01-12")
	job := testutil.SeedJob(t, ctx, f.db, s, scheduling.JobSolvingAStrict)

	res, err := f.svc.Cancel(ctx, job.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if res.State != scheduling.JobFailed || res.ErrorCode == nil || *res.ErrorCode != jobs.CodeCancelled {
		t.Fatalf("unexpected cancel result: %+v", res)
	}
	view, err := f.svc.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if view.ErrorMessage == nil || *view.ErrorMessage != "Cancelled by user" {
		t.Fatalf("unexpected error message: %v", view.ErrorMessage)
	}
	events, err := f.svc.ListEvents(ctx, job.ID)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 || events[0].EventType != scheduling.JobEventFailed {
		t.Fatalf("expected one FAILED event, got %+v", events)
	}

	_, err = f.svc.Cancel(ctx, job.ID)
	wantStatus(t, err, http.StatusConflict)
}
