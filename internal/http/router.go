package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/WinterJet2021/MayWin-Core-Backend/internal/http/handlers"
	httpMW "github.com/WinterJet2021/MayWin-Core-Backend/internal/http/middleware"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/observability"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	JobHandler    *httpH.JobHandler
	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.RequestIDs())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Jobs
		if cfg.JobHandler != nil {
			api.POST("/schedules/:scheduleId/jobs", cfg.JobHandler.CreateJob)
			api.GET("/jobs/:jobId", cfg.JobHandler.GetJob)
			api.GET("/jobs/:jobId/artifacts", cfg.JobHandler.ListArtifacts)
			api.GET("/jobs/:jobId/artifacts/:type", cfg.JobHandler.GetArtifact)
			api.GET("/jobs/:jobId/events", cfg.JobHandler.ListEvents)
			api.GET("/jobs/:jobId/preview", cfg.JobHandler.Preview)
			api.POST("/jobs/:jobId/apply", cfg.JobHandler.Apply)
			api.POST("/jobs/:jobId/cancel", cfg.JobHandler.CancelJob)
		}
	}

	return r
}
