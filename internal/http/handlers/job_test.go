package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/WinterJet2021/MayWin-Core-Backend/internal/domain/scheduling"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/apierr"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/services"
)

type stubJobs struct {
	services.JobsService

	createdKey   string
	createdReq   services.CreateJobRequest
	overwrite    bool
	artifactType scheduling.ArtifactType
	err          error
}

func (s *stubJobs) CreateJob(_ context.Context, scheduleID int64, req services.CreateJobRequest, key string) (*services.JobCreated, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.createdKey, s.createdReq = key, req
	return &services.JobCreated{ID: uuid.New(), ScheduleID: scheduleID, State: scheduling.JobRequested}, nil
}

func (s *stubJobs) GetJob(_ context.Context, jobID uuid.UUID) (*services.JobView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &services.JobView{ID: jobID, State: scheduling.JobNormalizing, Phase: scheduling.JobNormalizing.Phase()}, nil
}

func (s *stubJobs) GetArtifactContent(_ context.Context, _ uuid.UUID, t scheduling.ArtifactType) (json.RawMessage, error) {
	s.artifactType = t
	if s.err != nil {
		return nil, s.err
	}
	return json.RawMessage(`{"schema":"KpiSummary.v1"}`), nil
}

func (s *stubJobs) Apply(_ context.Context, jobID uuid.UUID, overwrite bool) (*services.ApplyResult, error) {
	s.overwrite = overwrite
	if s.err != nil {
		return nil, s.err
	}
	return &services.ApplyResult{Schedule: services.AppliedSchedule{ID: 4, Status: scheduling.ScheduleReadyForReview, JobID: jobID}, UpdatedAssignmentsCount: 2}, nil
}

func newTestEngine(stub *stubJobs) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewJobHandler(stub)
	r := gin.New()
	r.POST("/api/schedules/:scheduleId/jobs", h.CreateJob)
	r.GET("/api/jobs/:jobId", h.GetJob)
	r.GET("/api/jobs/:jobId/artifacts/:type", h.GetArtifact)
	r.POST("/api/jobs/:jobId/apply", h.Apply)
	return r
}

func do(r *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var env struct {
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error envelope: %v (%s)", err, rec.Body.String())
	}
	return env.Error.Code, env.Error.Message
}

func TestCreateJobPassesIdempotencyKey(t *testing.T) {
	stub := &stubJobs{}
	r := newTestEngine(stub)

	rec := do(r, http.MethodPost, "/api/schedules/7/jobs",
		`{"startDate":"2025-01-06","endDate":"2025-01-12","options":{"seed":1}}`,
		map[string]string{"Idempotency-Key": " abc "})
	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if stub.createdKey != "abc" || stub.createdReq.StartDate != "2025-01-06" || stub.createdReq.Options["seed"] != float64(1) {
		t.Fatalf("request not forwarded: key=%q req=%+v", stub.createdKey, stub.createdReq)
	}
	var body struct {
		Job services.JobCreated `json:"job"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Job.ScheduleID != 7 || body.Job.State != scheduling.JobRequested {
		t.Fatalf("unexpected body: %+v", body.Job)
	}
}

func TestCreateJobRejectsBadInput(t *testing.T) {
	r := newTestEngine(&stubJobs{})

	rec := do(r, http.MethodPost, "/api/schedules/abc/jobs", `{}`, nil)
	if code, _ := decodeError(t, rec); rec.Code != http.StatusBadRequest || code != "invalid_schedule_id" {
		t.Fatalf("unexpected response %d %s", rec.Code, code)
	}
	rec = do(r, http.MethodPost, "/api/schedules/1/jobs", `{"startDate":`, nil)
	if code, _ := decodeError(t, rec); rec.Code != http.StatusBadRequest || code != "invalid_request" {
		t.Fatalf("unexpected response %d %s", rec.Code, code)
	}
}

func TestServiceErrorsMapToStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", apierr.NotFound("job_not_found", "Job not found"), http.StatusNotFound, "job_not_found"},
		{"conflict", apierr.Conflict("job_not_completed", "Job is not completed yet"), http.StatusConflict, "job_not_completed"},
		{"internal", context.DeadlineExceeded, http.StatusInternalServerError, "get_job_failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestEngine(&stubJobs{err: tc.err})
			rec := do(r, http.MethodGet, "/api/jobs/"+uuid.NewString(), "", nil)
			code, msg := decodeError(t, rec)
			if rec.Code != tc.status || code != tc.code {
				t.Fatalf("want (%d,%s) got (%d,%s)", tc.status, tc.code, rec.Code, code)
			}
			if tc.status == http.StatusInternalServerError && strings.Contains(msg, "deadline") {
				t.Fatalf("internal error details leaked: %q", msg)
			}
		})
	}

	r := newTestEngine(&stubJobs{})
	rec := do(r, http.MethodGet, "/api/jobs/not-a-uuid", "", nil)
	if code, _ := decodeError(t, rec); rec.Code != http.StatusBadRequest || code != "invalid_job_id" {
		t.Fatalf("unexpected response %d %s", rec.Code, code)
	}
}

func TestGetArtifactReturnsRawDocument(t *testing.T) {
	stub := &stubJobs{}
	r := newTestEngine(stub)
	rec := do(r, http.MethodGet, "/api/jobs/"+uuid.NewString()+"/artifacts/KPI_SUMMARY", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if rec.Body.String() != `{"schema":"KpiSummary.v1"}` {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
	if stub.artifactType != scheduling.ArtifactKPISummary {
		t.Fatalf("unexpected type forwarded: %s", stub.artifactType)
	}
}

func TestApplyBody(t *testing.T) {
	stub := &stubJobs{}
	r := newTestEngine(stub)
	id := uuid.NewString()

	rec := do(r, http.MethodPost, "/api/jobs/"+id+"/apply", `{"overwriteManualChanges":true}`, nil)
	if rec.Code != http.StatusOK || !stub.overwrite {
		t.Fatalf("overwrite flag not forwarded: %d %v", rec.Code, stub.overwrite)
	}

	rec = do(r, http.MethodPost, "/api/jobs/"+id+"/apply", "", nil)
	if rec.Code != http.StatusOK || stub.overwrite {
		t.Fatalf("empty body should default to false: %d %v", rec.Code, stub.overwrite)
	}
	var res services.ApplyResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Schedule.Status != scheduling.ScheduleReadyForReview || res.UpdatedAssignmentsCount != 2 {
		t.Fatalf("unexpected apply result: %+v", res)
	}
}
