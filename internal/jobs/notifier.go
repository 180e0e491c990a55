package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/WinterJet2021/MayWin-Core-Backend/internal/data/repos"
	types "github.com/WinterJet2021/MayWin-Core-Backend/internal/domain"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/domain/scheduling"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/dbctx"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/logger"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/realtime"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/realtime/bus"
)

// JobNotifier records job lifecycle events. Implementations must not fail the
// caller; errors are logged.
type JobNotifier interface {
	StatusChanged(ctx context.Context, jobID uuid.UUID, from, to types.JobStatus)
	Failed(ctx context.Context, jobID uuid.UUID, code, message string)
	ArtifactWritten(ctx context.Context, jobID uuid.UUID, a *types.ScheduleArtifact)
}

type jobNotifier struct {
	log    *logger.Logger
	events repos.ScheduleJobEventRepo
	bus    bus.Bus
}

// NewJobNotifier appends to the event table and publishes on b. A nil b
// disables publishing.
func NewJobNotifier(baseLog *logger.Logger, events repos.ScheduleJobEventRepo, b bus.Bus) JobNotifier {
	if b == nil {
		b = bus.Nop{}
	}
	return &jobNotifier{
		log:    baseLog.With("component", "JobNotifier"),
		events: events,
		bus:    b,
	}
}

func (n *jobNotifier) StatusChanged(ctx context.Context, jobID uuid.UUID, from, to types.JobStatus) {
	n.emit(ctx, jobID, scheduling.JobEventStatusChanged, string(to),
		fmt.Sprintf("%s -> %s", from, to),
		map[string]any{"from": string(from), "to": string(to)},
	)
}

func (n *jobNotifier) Failed(ctx context.Context, jobID uuid.UUID, code, message string) {
	n.emit(ctx, jobID, scheduling.JobEventFailed, string(scheduling.JobFailed),
		message,
		map[string]any{"code": code},
	)
}

func (n *jobNotifier) ArtifactWritten(ctx context.Context, jobID uuid.UUID, a *types.ScheduleArtifact) {
	if a == nil {
		return
	}
	n.emit(ctx, jobID, scheduling.JobEventArtifactWritten, "",
		string(a.Type),
		map[string]any{
			"artifactId": a.ID.String(),
			"type":       string(a.Type),
			"provider":   a.StorageProvider,
		},
	)
}

func (n *jobNotifier) emit(ctx context.Context, jobID uuid.UUID, eventType, status, message string, payload map[string]any) {
	msg := message
	if _, err := n.events.Create(dbctx.Context{Ctx: ctx}, &types.ScheduleJobEvent{
		JobID:     jobID,
		EventType: eventType,
		Message:   &msg,
		Payload:   datatypes.JSONMap(payload),
	}); err != nil {
		n.log.Warn("job event insert failed", "job_id", jobID, "event", eventType, "error", err)
	}
	if err := n.bus.Publish(ctx, realtime.Message{
		Event:  eventType,
		JobID:  jobID,
		Status: status,
		Data:   payload,
		At:     time.Now().UTC(),
	}); err != nil {
		n.log.Warn("job event publish failed", "job_id", jobID, "event", eventType, "error", err)
	}
}
