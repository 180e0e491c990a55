package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/WinterJet2021/MayWin-Core-Backend/internal/artifacts"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/jobs"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/normalizer"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/observability"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/logger"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/objectstore"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/realtime/bus"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/services"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/solver"
)

type Services struct {
	Blobs     objectstore.Store
	Bus       bus.Bus
	Artifacts *artifacts.Store
	Solver    solver.Solver
	Notifier  jobs.JobNotifier
	Runner    *jobs.Runner
	Queue     *jobs.Queue
	Jobs      services.JobsService
}

func wireServices(ctx context.Context, db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	blobs, err := resolveArtifactBlobs(ctx, log, cfg)
	if err != nil {
		return Services{}, err
	}

	var eventBus bus.Bus = bus.Nop{}
	if cfg.Redis.Addr != "" {
		eventBus, err = bus.NewRedisBus(log, cfg.Redis)
		if err != nil {
			return Services{}, fmt.Errorf("init redis bus: %w", err)
		}
	} else {
		log.Info("REDIS_ADDR not set; job events are not published")
	}

	plans, err := jobs.LoadPlans(cfg.SolverPlansYAML)
	if err != nil {
		return Services{}, err
	}

	builder := normalizer.New(
		log,
		reposet.ScheduleJob,
		reposet.ShiftTemplate,
		reposet.CoverageRule,
		reposet.ConstraintProfile,
		reposet.Worker,
		reposet.WorkerAvailability,
		reposet.WorkerPreference,
	)
	store := artifacts.NewStore(log, reposet.ScheduleArtifact, blobs)
	engine := solver.NewCLI(log, cfg.Solver)
	notifier := jobs.NewJobNotifier(log, reposet.ScheduleJobEvent, eventBus)

	runner := jobs.NewRunner(
		log,
		reposet.ScheduleJob,
		reposet.SolverRun,
		builder,
		store,
		engine,
		notifier,
		metrics,
		jobs.RunnerConfig{Plans: plans, ErrorMessageLimit: cfg.ErrorMessageLimit},
	)
	queue := jobs.NewQueue(log, runner, reposet.ScheduleJob, metrics, cfg.QueueSize)

	jobsService := services.NewJobsService(
		db,
		log,
		reposet.ScheduleJob,
		reposet.ScheduleJobEvent,
		reposet.Schedule,
		reposet.ScheduleAssignment,
		store,
		queue,
		notifier,
	)

	return Services{
		Blobs:     blobs,
		Bus:       eventBus,
		Artifacts: store,
		Solver:    engine,
		Notifier:  notifier,
		Runner:    runner,
		Queue:     queue,
		Jobs:      jobsService,
	}, nil
}
