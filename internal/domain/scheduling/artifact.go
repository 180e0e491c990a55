package scheduling

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ArtifactType string

const (
	ArtifactNormalizedInput     ArtifactType = "NORMALIZED_INPUT"
	ArtifactSolverOutput        ArtifactType = "SOLVER_OUTPUT"
	ArtifactKPISummary          ArtifactType = "KPI_SUMMARY"
	ArtifactEvaluationReport    ArtifactType = "EVALUATION_REPORT"
	ArtifactFinalScheduleExport ArtifactType = "FINAL_SCHEDULE_EXPORT"
)

func (t ArtifactType) Valid() bool {
	switch t {
	case ArtifactNormalizedInput, ArtifactSolverOutput, ArtifactKPISummary,
		ArtifactEvaluationReport, ArtifactFinalScheduleExport:
		return true
	default:
		return false
	}
}

const StorageProviderDB = "db"

// ScheduleArtifact is immutable once written. At most one exists per (job, type).
type ScheduleArtifact struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	JobID           uuid.UUID      `gorm:"type:uuid;column:job_id;not null;uniqueIndex:idx_schedule_artifacts_job_type,priority:1" json:"jobId"`
	Type            ArtifactType   `gorm:"column:type;type:text;not null;uniqueIndex:idx_schedule_artifacts_job_type,priority:2" json:"type"`
	StorageProvider string         `gorm:"column:storage_provider;not null" json:"storageProvider"`
	Bucket          *string        `gorm:"column:bucket" json:"bucket,omitempty"`
	ObjectKey       *string        `gorm:"column:object_key" json:"objectKey,omitempty"`
	ContentType     *string        `gorm:"column:content_type" json:"contentType,omitempty"`
	ContentSHA256   *string        `gorm:"column:content_sha256" json:"contentSha256,omitempty"`
	ContentBytes    *int64         `gorm:"column:content_bytes" json:"contentBytes,omitempty"`
	Metadata        datatypes.JSON `gorm:"column:metadata" json:"metadata"`
	CreatedAt       time.Time      `gorm:"not null;autoCreateTime;index" json:"createdAt"`
}

func (ScheduleArtifact) TableName() string { return "schedule_artifacts" }

func (a *ScheduleArtifact) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
