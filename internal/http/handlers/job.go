package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/WinterJet2021/MayWin-Core-Backend/internal/domain/scheduling"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/http/response"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/services"
)

const headerIdempotencyKey = "Idempotency-Key"

type JobHandler struct {
	jobs services.JobsService
}

func NewJobHandler(jobs services.JobsService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

type applyRequest struct {
	OverwriteManualChanges bool `json:"overwriteManualChanges"`
}

// POST /api/schedules/:scheduleId/jobs
func (h *JobHandler) CreateJob(c *gin.Context) {
	scheduleID, err := strconv.ParseInt(c.Param("scheduleId"), 10, 64)
	if err != nil || scheduleID <= 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_schedule_id", errors.New("scheduleId must be a positive integer"))
		return
	}
	var req services.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	key := strings.TrimSpace(c.GetHeader(headerIdempotencyKey))
	job, err := h.jobs.CreateJob(c.Request.Context(), scheduleID, req, key)
	if err != nil {
		response.RespondServiceError(c, "create_job_failed", err)
		return
	}
	response.RespondCreated(c, gin.H{"job": job})
}

// GET /api/jobs/:jobId
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, ok := parseJobID(c)
	if !ok {
		return
	}
	job, err := h.jobs.GetJob(c.Request.Context(), jobID)
	if err != nil {
		response.RespondServiceError(c, "get_job_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"job": job})
}

// GET /api/jobs/:jobId/artifacts
func (h *JobHandler) ListArtifacts(c *gin.Context) {
	jobID, ok := parseJobID(c)
	if !ok {
		return
	}
	artifacts, err := h.jobs.ListArtifacts(c.Request.Context(), jobID)
	if err != nil {
		response.RespondServiceError(c, "list_artifacts_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"artifacts": artifacts})
}

// GET /api/jobs/:jobId/artifacts/:type
func (h *JobHandler) GetArtifact(c *gin.Context) {
	jobID, ok := parseJobID(c)
	if !ok {
		return
	}
	raw, err := h.jobs.GetArtifactContent(c.Request.Context(), jobID, scheduling.ArtifactType(c.Param("type")))
	if err != nil {
		response.RespondServiceError(c, "get_artifact_failed", err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// GET /api/jobs/:jobId/events
func (h *JobHandler) ListEvents(c *gin.Context) {
	jobID, ok := parseJobID(c)
	if !ok {
		return
	}
	events, err := h.jobs.ListEvents(c.Request.Context(), jobID)
	if err != nil {
		response.RespondServiceError(c, "list_events_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"events": events})
}

// GET /api/jobs/:jobId/preview
func (h *JobHandler) Preview(c *gin.Context) {
	jobID, ok := parseJobID(c)
	if !ok {
		return
	}
	preview, err := h.jobs.Preview(c.Request.Context(), jobID)
	if err != nil {
		response.RespondServiceError(c, "preview_failed", err)
		return
	}
	response.RespondOK(c, preview)
}

// POST /api/jobs/:jobId/apply
func (h *JobHandler) Apply(c *gin.Context) {
	jobID, ok := parseJobID(c)
	if !ok {
		return
	}
	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.jobs.Apply(c.Request.Context(), jobID, req.OverwriteManualChanges)
	if err != nil {
		response.RespondServiceError(c, "apply_failed", err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/jobs/:jobId/cancel
func (h *JobHandler) CancelJob(c *gin.Context) {
	jobID, ok := parseJobID(c)
	if !ok {
		return
	}
	res, err := h.jobs.Cancel(c.Request.Context(), jobID)
	if err != nil {
		response.RespondServiceError(c, "cancel_job_failed", err)
		return
	}
	response.RespondOK(c, res)
}

func parseJobID(c *gin.Context) (uuid.UUID, bool) {
	jobID, err := uuid.Parse(c.Param("jobId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_job_id", err)
		return uuid.Nil, false
	}
	return jobID, true
}
