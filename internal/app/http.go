package app

import (
	httpapi "github.com/WinterJet2021/MayWin-Core-Backend/internal/http"
	httpH "github.com/WinterJet2021/MayWin-Core-Backend/internal/http/handlers"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/observability"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/logger"
)

type Handlers struct {
	Health *httpH.HealthHandler
	Job    *httpH.JobHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(),
		Job:    httpH.NewJobHandler(serviceset.Jobs),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *httpapi.Server {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return httpapi.NewServer(httpapi.RouterConfig{
		Log:           log,
		Metrics:       metrics,
		ServiceName:   serviceName,
		CORSOrigins:   cfg.CORSOrigins,
		JobHandler:    handlers.Job,
		HealthHandler: handlers.Health,
	})
}
