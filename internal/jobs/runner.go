package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"

	"github.com/WinterJet2021/MayWin-Core-Backend/internal/artifacts"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/data/repos"
	types "github.com/WinterJet2021/MayWin-Core-Backend/internal/domain"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/domain/scheduling"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/normalizer"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/observability"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/dbctx"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/logger"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/solver"
)

const defaultErrorMessageLimit = 900

// InputBuilder produces the solver payload for a job.
type InputBuilder interface {
	Build(dbc dbctx.Context, jobID uuid.UUID) (*normalizer.Payload, *scheduling.NormalizerMeta, error)
}

type RunnerConfig struct {
	Plans             []PlanStep
	ErrorMessageLimit int
}

// Runner drives one job through the pipeline. It is safe to call Run for the
// same job concurrently: only the caller that wins REQUESTED -> VALIDATED proceeds.
type Runner struct {
	log       *logger.Logger
	jobs      repos.ScheduleJobRepo
	runs      repos.SolverRunRepo
	builder   InputBuilder
	artifacts *artifacts.Store
	solver    solver.Solver
	notify    JobNotifier
	metrics   *observability.Metrics
	plans     []PlanStep
	msgLimit  int
}

func NewRunner(
	baseLog *logger.Logger,
	jobs repos.ScheduleJobRepo,
	runs repos.SolverRunRepo,
	builder InputBuilder,
	store *artifacts.Store,
	slv solver.Solver,
	notify JobNotifier,
	metrics *observability.Metrics,
	cfg RunnerConfig,
) *Runner {
	plans := cfg.Plans
	if len(plans) == 0 {
		plans = DefaultPlans()
	}
	limit := cfg.ErrorMessageLimit
	if limit <= 0 {
		limit = defaultErrorMessageLimit
	}
	return &Runner{
		log:       baseLog.With("component", "JobRunner"),
		jobs:      jobs,
		runs:      runs,
		builder:   builder,
		artifacts: store,
		solver:    slv,
		notify:    notify,
		metrics:   metrics,
		plans:     plans,
		msgLimit:  limit,
	}
}

// Run executes the pipeline for jobID. Jobs not in REQUESTED are ignored.
// Pipeline failures are recorded on the job; the returned error covers only
// failures to record that outcome.
func (r *Runner) Run(ctx context.Context, jobID uuid.UUID) error {
	dbc := dbctx.Context{Ctx: ctx}
	job, err := r.jobs.GetByID(dbc, jobID)
	if err != nil {
		return fmt.Errorf("load job %s: %w", jobID, err)
	}
	if job == nil {
		r.log.Warn("job vanished before run", "job_id", jobID)
		return nil
	}
	if job.Status != scheduling.JobRequested {
		r.log.Debug("skip run, job not requested", "job_id", jobID, "status", job.Status)
		return nil
	}

	ctx, span := observability.StartSpan(ctx, "jobs.run",
		attribute.String("job.id", jobID.String()),
		attribute.Int64("unit.id", job.UnitID),
	)
	started := time.Now()
	log := r.log.With("job_id", jobID)
	log.Info("job run started")

	runErr := r.execute(ctx, job)
	switch {
	case runErr == nil:
		r.metrics.ObserveJob(scheduling.JobCompleted, "", time.Since(started))
		log.Info("job completed", "elapsed_ms", time.Since(started).Milliseconds())
		observability.EndSpan(span, nil)
		return nil
	case errors.Is(runErr, errTransitionSkipped):
		log.Info("job run stopped, status moved by another writer")
		observability.EndSpan(span, nil)
		return nil
	default:
		log.Error("job failed", "error", runErr)
		observability.EndSpan(span, runErr)
		r.metrics.ObserveJob(scheduling.JobFailed, codeOf(runErr), time.Since(started))
		return r.Fail(ctx, jobID, runErr)
	}
}

func (r *Runner) execute(ctx context.Context, job *types.ScheduleJob) error {
	dbc := dbctx.Context{Ctx: ctx}

	if err := r.advance(ctx, job.ID, scheduling.JobRequested, scheduling.JobValidated); err != nil {
		return err
	}
	if err := r.advance(ctx, job.ID, scheduling.JobValidated, scheduling.JobNormalizing); err != nil {
		return err
	}

	payload, meta, err := r.builder.Build(dbc, job.ID)
	if err != nil {
		return fmt.Errorf("normalize: %w", err)
	}
	if err := r.writeArtifact(ctx, job.ID, scheduling.ArtifactNormalizedInput, NormalizedInputDoc{
		Schema:  normalizer.ArtifactSchema,
		Payload: payload,
		Meta:    meta,
	}); err != nil {
		return err
	}
	if err := r.jobs.UpdateAttributes(dbc, job.ID, func(a *types.JobAttributes) {
		a.NormalizerMeta = meta
	}); err != nil {
		return fmt.Errorf("store normalizer meta: %w", err)
	}

	out, plan, finalStatus, err := r.solveWithFallback(ctx, job, payload)
	if err != nil {
		return err
	}
	if err := r.jobs.UpdateFields(dbc, job.ID, map[string]interface{}{"chosen_plan": plan}); err != nil {
		return fmt.Errorf("store chosen plan: %w", err)
	}
	if err := r.writeArtifact(ctx, job.ID, scheduling.ArtifactSolverOutput, SolverOutputDoc{
		Schema:     SchemaSolverOutput,
		ChosenPlan: plan,
		Output:     out,
	}); err != nil {
		return err
	}
	if err := r.writeArtifact(ctx, job.ID, scheduling.ArtifactKPISummary, BuildKPISummary(payload, out, plan)); err != nil {
		return err
	}

	scheduleID := job.ScheduleID
	if scheduleID == nil {
		scheduleID = job.Attributes.Data().ScheduleID
	}
	preview := BuildPreview(scheduleID, out, meta.Mappings)
	if err := r.jobs.UpdateAttributes(dbc, job.ID, func(a *types.JobAttributes) {
		a.Preview = &preview
	}); err != nil {
		return fmt.Errorf("store preview: %w", err)
	}

	if err := r.advance(ctx, job.ID, finalStatus, scheduling.JobEvaluating); err != nil {
		return err
	}
	if err := r.writeArtifact(ctx, job.ID, scheduling.ArtifactEvaluationReport, BuildEvaluationReport(payload, out, plan)); err != nil {
		return err
	}
	// Assignments are committed later by an explicit apply.
	if err := r.advance(ctx, job.ID, scheduling.JobEvaluating, scheduling.JobPersisting); err != nil {
		return err
	}
	return r.advance(ctx, job.ID, scheduling.JobPersisting, scheduling.JobCompleted)
}

// solveWithFallback runs the plan table in order and returns the first
// feasible result with its plan and the SOLVING_* status it ended in.
func (r *Runner) solveWithFallback(ctx context.Context, job *types.ScheduleJob, payload *normalizer.Payload) (*solver.Result, scheduling.SolverPlan, types.JobStatus, error) {
	prev := scheduling.JobNormalizing
	attempts := make(map[scheduling.SolverPlan]*solver.Result, len(r.plans))
	var order []*solver.Result

	for i, step := range r.plans {
		status := step.Plan.SolvingStatus()
		if err := r.advance(ctx, job.ID, prev, status); err != nil {
			return nil, "", "", err
		}
		prev = status

		started := time.Now()
		out := r.safeSolve(ctx, job, payload, step)
		good := IsSolveGood(out)
		r.metrics.ObserveSolverAttempt(step.Plan, good, time.Since(started))
		r.recordRun(ctx, job, step.Plan, i+1, started, out, good)

		attempts[step.Plan] = out
		order = append(order, out)
		if good {
			return out, step.Plan, status, nil
		}
		r.log.Info("solver plan not feasible, falling back",
			"job_id", job.ID,
			"plan", step.Plan,
			"status", out.Status,
		)
	}

	reason := ""
	for i := len(order) - 1; i >= 0 && reason == ""; i-- {
		reason = FailureReason(order[i])
	}
	if reason == "" {
		reason = "No feasible solution"
	}

	debug := scheduling.SolverDebug{
		Strict:  rawResult(attempts[scheduling.PlanAStrict]),
		Relaxed: rawResult(attempts[scheduling.PlanARelaxed]),
		Milp:    rawResult(attempts[scheduling.PlanBMilp]),
	}
	if err := r.jobs.UpdateAttributes(dbctx.Context{Ctx: ctx}, job.ID, func(a *types.JobAttributes) {
		a.SolverDebug = &debug
	}); err != nil {
		r.log.Warn("store solver debug failed", "job_id", job.ID, "error", err)
	}
	return nil, "", "", &CodedError{
		Code: CodeSolverInfeasible,
		Err:  fmt.Errorf("All solver plans failed: %s", reason),
	}
}

// safeSolve turns a solver error into an infeasible ERROR result so the
// fallback continues.
func (r *Runner) safeSolve(ctx context.Context, job *types.ScheduleJob, payload *normalizer.Payload, step PlanStep) (out *solver.Result) {
	ctx, span := observability.StartSpan(ctx, "jobs.solve",
		attribute.String("job.id", job.ID.String()),
		attribute.String("solver.plan", string(step.Plan)),
		attribute.Int("solver.time_limit_s", step.TimeLimitSeconds),
	)
	defer func() {
		if out != nil {
			span.SetAttributes(attribute.String("solver.status", out.Status))
		}
		span.End()
	}()

	res, err := r.solver.Solve(ctx, solver.Input{Payload: payload}, solver.Options{
		Plan:             step.Plan,
		TimeLimitSeconds: step.TimeLimitSeconds,
		JobID:            job.ID,
	})
	if err == nil && res != nil {
		return res
	}
	msg := "solver returned no result"
	if err != nil {
		msg = err.Error()
		span.RecordError(err)
	}
	r.log.Warn("solver attempt errored", "job_id", job.ID, "plan", step.Plan, "error", msg)
	feasible := false
	return &solver.Result{
		Feasible:    &feasible,
		Status:      solver.StatusError,
		Details:     msg,
		Assignments: []solver.Assignment{},
		Meta: map[string]any{
			"error": true,
			"plan":  string(step.Plan),
			"jobId": job.ID.String(),
		},
	}
}

func (r *Runner) recordRun(ctx context.Context, job *types.ScheduleJob, plan scheduling.SolverPlan, attempt int, started time.Time, out *solver.Result, good bool) {
	finished := time.Now()
	jobID := job.ID
	run := &types.SolverRun{
		JobID:          &jobID,
		ScheduleID:     job.ScheduleID,
		Plan:           plan,
		Status:         scheduling.SolverRunSucceeded,
		RequestedBy:    job.RequestedBy,
		Attempt:        attempt,
		StartedAt:      &started,
		FinishedAt:     &finished,
		ObjectiveValue: out.Objective,
		KPIs: datatypes.JSONMap{
			"status":          out.Status,
			"assignmentCount": len(out.Assignments),
			"elapsedMs":       finished.Sub(started).Milliseconds(),
		},
	}
	if !good {
		run.Status = scheduling.SolverRunFailed
		if reason := FailureReason(out); reason != "" {
			run.FailureReason = &reason
		}
	}
	if _, err := r.runs.Create(dbctx.Context{Ctx: ctx}, run); err != nil {
		r.log.Warn("record solver run failed", "job_id", job.ID, "plan", plan, "error", err)
	}
}

// advance performs one guarded status move and emits its event.
func (r *Runner) advance(ctx context.Context, jobID uuid.UUID, from, to types.JobStatus) error {
	ok, err := r.jobs.TransitionStatus(dbctx.Context{Ctx: ctx}, jobID, from, to)
	if err != nil {
		return fmt.Errorf("transition %s -> %s: %w", from, to, err)
	}
	if !ok {
		r.log.Debug("skip transition", "job_id", jobID, "from", from, "to", to)
		return errTransitionSkipped
	}
	r.notify.StatusChanged(ctx, jobID, from, to)
	return nil
}

func (r *Runner) writeArtifact(ctx context.Context, jobID uuid.UUID, t types.ArtifactType, content any) error {
	a, created, err := r.artifacts.WriteOnce(dbctx.Context{Ctx: ctx}, jobID, t, content)
	if err != nil {
		return fmt.Errorf("write %s artifact: %w", t, err)
	}
	if created {
		r.notify.ArtifactWritten(ctx, jobID, a)
	}
	return nil
}

// Fail marks a live job FAILED with the error's code and a bounded message.
// Terminal jobs are left as they are.
func (r *Runner) Fail(ctx context.Context, jobID uuid.UUID, cause error) error {
	code := codeOf(cause)
	message := "Unknown error"
	if cause != nil {
		message = truncate(cause.Error(), r.msgLimit)
	}
	// Record the failure even after ctx is cancelled.
	ctx = context.WithoutCancel(ctx)
	ok, err := r.jobs.MarkFailed(dbctx.Context{Ctx: ctx}, jobID, code, message)
	if err != nil {
		r.log.Error("mark job failed", "job_id", jobID, "error", err)
		return err
	}
	if ok {
		r.notify.Failed(ctx, jobID, code, message)
	}
	return nil
}

func rawResult(out *solver.Result) json.RawMessage {
	if out == nil {
		return nil
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return nil
	}
	return raw
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
