package jobs

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/WinterJet2021/MayWin-Core-Backend/internal/artifacts"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/data/repos"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/data/repos/testutil"
	types "github.com/WinterJet2021/MayWin-Core-Backend/internal/domain"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/domain/scheduling"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/normalizer"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/dbctx"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/solver"
)

type runnerFixture struct {
	db     *gorm.DB
	jobs   repos.ScheduleJobRepo
	events repos.ScheduleJobEventRepo
	runs   repos.SolverRunRepo
	store  *artifacts.Store
	fake   *solver.Fake
	runner *Runner
	worker *types.Worker
}

func newRunnerFixture(t *testing.T) *runnerFixture {
	t.Helper()
	db := testutil.Fresh(t)
	log := testutil.Logger(t)

	f := &runnerFixture{
		db:     db,
		jobs:   repos.NewScheduleJobRepo(db, log),
		events: repos.NewScheduleJobEventRepo(db, log),
		runs:   repos.NewSolverRunRepo(db, log),
		store:  artifacts.NewStore(log, repos.NewScheduleArtifactRepo(db, log), nil),
		fake:   solver.NewFake(),
	}
	norm := normalizer.New(log,
		f.jobs,
		repos.NewShiftTemplateRepo(db, log),
		repos.NewCoverageRuleRepo(db, log),
		repos.NewConstraintProfileRepo(db, log),
		repos.NewWorkerRepo(db, log),
		repos.NewWorkerAvailabilityRepo(db, log),
		repos.NewWorkerPreferenceRepo(db, log),
	)
	notify := NewJobNotifier(log, f.events, nil)
	f.runner = NewRunner(log, f.jobs, f.runs, norm, f.store, f.fake, notify, nil, RunnerConfig{})

	ctx := context.Background()
	unit := int64(3)
	testutil.SeedShiftTemplate(t, ctx, db, 1, &unit, "D", "Day", "07:00", "15:00")
	testutil.SeedCoverageRule(t, ctx, db, unit, "D", scheduling.DayTypeWeekday, 1)
	f.worker = testutil.SeedWorker(t, ctx, db, 1, unit, "A", nil)
	return f
}

func (f *runnerFixture) seedJob(t *testing.T, status types.JobStatus) *types.ScheduleJob {
	t.Helper()
	s := testutil.SeedSchedule(t, context.Background(), f.db, 1, 3, "2025-01-06", "2025-01-07")
	return testutil.SeedJob(t, context.Background(), f.db, s, status)
}

func (f *runnerFixture) load(t *testing.T, id uuid.UUID) *types.ScheduleJob {
	t.Helper()
	job, err := f.jobs.GetByID(dbctx.Context{Ctx: context.Background()}, id)
	if err != nil || job == nil {
		t.Fatalf("GetByID: job=%v err=%v", job, err)
	}
	return job
}

func (f *runnerFixture) statusTrail(t *testing.T, id uuid.UUID) []string {
	t.Helper()
	evs, err := f.events.ListByJob(dbctx.Context{Ctx: context.Background()}, id)
	if err != nil {
		t.Fatalf("ListByJob: %v", err)
	}
	var trail []string
	for _, ev := range evs {
		if ev.EventType == scheduling.JobEventStatusChanged && ev.Message != nil {
			trail = append(trail, *ev.Message)
		}
	}
	return trail
}

func feasible(rows ...solver.Assignment) *solver.Result {
	ok := true
	return &solver.Result{Feasible: &ok, Status: "FEASIBLE", Assignments: rows}
}

func TestRunnerFallsBackToRelaxed(t *testing.T) {
	f := newRunnerFixture(t)
	f.fake.On(scheduling.PlanARelaxed, feasible(
		solver.Assignment{NurseCode: "A", Date: "2025-01-06", ShiftCode: "D"},
		solver.Assignment{NurseCode: "GHOST", Date: "2025-01-07", ShiftCode: "D"},
	))
	job := f.seedJob(t, scheduling.JobRequested)

	if err := f.runner.Run(context.Background(), job.ID); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := f.load(t, job.ID)
	if got.Status != scheduling.JobCompleted {
		t.Fatalf("expected COMPLETED, got %s (%v)", got.Status, got.ErrorMessage)
	}
	if got.ChosenPlan == nil || *got.ChosenPlan != scheduling.PlanARelaxed {
		t.Fatalf("expected chosen plan A_RELAXED, got %v", got.ChosenPlan)
	}
	if plans := f.fake.Plans(); len(plans) != 2 || plans[0] != scheduling.PlanAStrict {
		t.Fatalf("unexpected solve order: %v", plans)
	}

	want := []string{
		"REQUESTED -> VALIDATED",
		"VALIDATED -> NORMALIZING",
		"NORMALIZING -> SOLVING_A_STRICT",
		"SOLVING_A_STRICT -> SOLVING_A_RELAXED",
		"SOLVING_A_RELAXED -> EVALUATING",
		"EVALUATING -> PERSISTING",
		"PERSISTING -> COMPLETED",
	}
	trail := f.statusTrail(t, job.ID)
	if strings.Join(trail, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected status trail:\n%v", trail)
	}

	attrs := got.Attributes.Data()
	if attrs.NormalizerMeta == nil || attrs.NormalizerMeta.Mappings.WorkerIDByNurseCode["A"] != f.worker.ID {
		t.Fatalf("normalizer meta not stored: %+v", attrs.NormalizerMeta)
	}
	if attrs.Preview == nil || len(attrs.Preview.Assignments) != 1 {
		t.Fatalf("expected one preview row, got %+v", attrs.Preview)
	}
	if row := attrs.Preview.Assignments[0]; row.WorkerID != f.worker.ID || row.Date != "2025-01-06" {
		t.Fatalf("unexpected preview row: %+v", row)
	}

	arts, err := f.store.List(dbctx.Context{Ctx: context.Background()}, job.ID)
	if err != nil {
		t.Fatalf("List artifacts: %v", err)
	}
	if len(arts) != 4 {
		t.Fatalf("expected 4 artifacts, got %d", len(arts))
	}

	runs, err := f.runs.ListByJob(dbctx.Context{Ctx: context.Background()}, job.ID)
	if err != nil {
		t.Fatalf("ListByJob runs: %v", err)
	}
	if len(runs) != 2 || runs[0].Status != scheduling.SolverRunFailed || runs[1].Status != scheduling.SolverRunSucceeded {
		t.Fatalf("unexpected solver runs: %+v", runs)
	}
	if runs[1].Attempt != 2 || runs[1].Plan != scheduling.PlanARelaxed {
		t.Fatalf("unexpected second run: %+v", runs[1])
	}
}

func TestRunnerAllPlansFail(t *testing.T) {
	f := newRunnerFixture(t)
	bad := false
	f.fake.On(scheduling.PlanBMilp, &solver.Result{Feasible: &bad, Status: "INFEASIBLE", Details: "coverage cannot be met"})
	job := f.seedJob(t, scheduling.JobRequested)

	if err := f.runner.Run(context.Background(), job.ID); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := f.load(t, job.ID)
	if got.Status != scheduling.JobFailed {
		t.Fatalf("expected FAILED, got %s", got.Status)
	}
	if got.ErrorCode == nil || *got.ErrorCode != CodeSolverInfeasible {
		t.Fatalf("unexpected error code: %v", got.ErrorCode)
	}
	if got.ErrorMessage == nil || *got.ErrorMessage != "All solver plans failed: coverage cannot be met" {
		t.Fatalf("unexpected error message: %v", got.ErrorMessage)
	}
	debug := got.Attributes.Data().SolverDebug
	if debug == nil || len(debug.Strict) == 0 || len(debug.Relaxed) == 0 || len(debug.Milp) == 0 {
		t.Fatalf("expected debug for every plan, got %+v", debug)
	}
	if len(f.fake.Plans()) != 3 {
		t.Fatalf("expected three attempts, got %v", f.fake.Plans())
	}
	out, err := f.store.Get(dbctx.Context{Ctx: context.Background()}, job.ID, scheduling.ArtifactSolverOutput)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if out != nil {
		t.Fatalf("no solver output should be written for a failed job")
	}
}

func TestRunnerSolverErrorFallsThrough(t *testing.T) {
	f := newRunnerFixture(t)
	f.fake.Fail(scheduling.PlanAStrict, errors.New("engine crashed"))
	f.fake.On(scheduling.PlanARelaxed, feasible(solver.Assignment{NurseCode: "A", Date: "2025-01-06", ShiftCode: "D"}))
	job := f.seedJob(t, scheduling.JobRequested)

	if err := f.runner.Run(context.Background(), job.ID); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := f.load(t, job.ID); got.Status != scheduling.JobCompleted {
		t.Fatalf("expected COMPLETED, got %s", got.Status)
	}
	runs, err := f.runs.ListByJob(dbctx.Context{Ctx: context.Background()}, job.ID)
	if err != nil {
		t.Fatalf("ListByJob runs: %v", err)
	}
	if runs[0].FailureReason == nil || *runs[0].FailureReason != "engine crashed" {
		t.Fatalf("unexpected failure reason: %v", runs[0].FailureReason)
	}
}

func TestRunnerIgnoresJobsNotRequested(t *testing.T) {
	f := newRunnerFixture(t)
	job := f.seedJob(t, scheduling.JobCompleted)

	if err := f.runner.Run(context.Background(), job.ID); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(f.fake.Calls()) != 0 {
		t.Fatalf("solver should not be called")
	}
	if err := f.runner.Run(context.Background(), uuid.New()); err != nil {
		t.Fatalf("Run missing job: %v", err)
	}
}

func TestRunnerConcurrentRunsExecuteOnce(t *testing.T) {
	f := newRunnerFixture(t)
	f.fake.On(scheduling.PlanAStrict, feasible(solver.Assignment{NurseCode: "A", Date: "2025-01-06", ShiftCode: "D"}))
	job := f.seedJob(t, scheduling.JobRequested)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- f.runner.Run(context.Background(), job.ID)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	}
	if plans := f.fake.Plans(); len(plans) != 1 {
		t.Fatalf("expected a single solve, got %v", plans)
	}
	if got := f.load(t, job.ID); got.Status != scheduling.JobCompleted {
		t.Fatalf("expected COMPLETED, got %s", got.Status)
	}
}

func TestRunnerFailLeavesTerminalJobs(t *testing.T) {
	f := newRunnerFixture(t)
	done := f.seedJob(t, scheduling.JobCompleted)
	live := f.seedJob(t, scheduling.JobNormalizing)

	if err := f.runner.Fail(context.Background(), done.ID, errors.New("late")); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if got := f.load(t, done.ID); got.Status != scheduling.JobCompleted {
		t.Fatalf("terminal job changed to %s", got.Status)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	long := strings.Repeat("x", 2000)
	if err := f.runner.Fail(ctx, live.ID, errors.New(long)); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	got := f.load(t, live.ID)
	if got.Status != scheduling.JobFailed || got.ErrorCode == nil || *got.ErrorCode != CodeJobFailed {
		t.Fatalf("unexpected failure state: %s %v", got.Status, got.ErrorCode)
	}
	if got.ErrorMessage == nil || len(*got.ErrorMessage) != defaultErrorMessageLimit {
		t.Fatalf("message not truncated to %d", defaultErrorMessageLimit)
	}
}
