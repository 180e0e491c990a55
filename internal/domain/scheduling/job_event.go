package scheduling

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	JobEventStatusChanged   = "STATUS_CHANGED"
	JobEventFailed          = "FAILED"
	JobEventArtifactWritten = "ARTIFACT_WRITTEN"
)

// ScheduleJobEvent is an append-only audit trail for one job.
type ScheduleJobEvent struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	JobID     uuid.UUID         `gorm:"type:uuid;column:job_id;not null;index" json:"jobId"`
	EventType string            `gorm:"column:event_type;not null;index" json:"eventType"`
	Message   *string           `gorm:"column:message;type:text" json:"message,omitempty"`
	Payload   datatypes.JSONMap `gorm:"column:payload" json:"payload"`
	CreatedAt time.Time         `gorm:"not null;autoCreateTime;index" json:"createdAt"`
}

func (ScheduleJobEvent) TableName() string { return "schedule_job_events" }

func (e *ScheduleJobEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
