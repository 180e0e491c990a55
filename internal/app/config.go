package app

import (
	"strings"
	"time"

	"github.com/WinterJet2021/MayWin-Core-Backend/internal/data/db"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/jobs"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/observability"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/envutil"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/logger"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/realtime/bus"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/solver"
)

const (
	ArtifactStorageDB          = "db"
	ArtifactStorageGCS         = "gcs"
	ArtifactStorageGCSEmulator = "gcs_emulator"
	ArtifactStorageS3          = "s3"
)

type Config struct {
	Port        string
	LogMode     string
	AutoMigrate bool
	CORSOrigins []string

	Postgres db.PostgresConfig

	Solver          solver.CLIConfig
	SolverPlansYAML string

	QueueSize         int
	ErrorMessageLimit int

	ArtifactStorageMode string
	ArtifactBucket      string
	ArtifactPrefix      string
	AWSRegion           string
	AWSS3Endpoint       string
	StorageEmulatorHost string

	Redis   bus.RedisConfig
	Otel    observability.OtelConfig
	Metrics observability.MetricsConfig
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:        envutil.String("PORT", "8080"),
		LogMode:     envutil.String("LOG_MODE", "development"),
		AutoMigrate: envutil.Bool("DB_AUTOMIGRATE", true),
		CORSOrigins: splitList(envutil.String("CORS_ALLOWED_ORIGINS", "")),
		Postgres: db.PostgresConfig{
			Host:     envutil.String("POSTGRES_HOST", "localhost"),
			Port:     envutil.String("POSTGRES_PORT", "5432"),
			User:     envutil.String("POSTGRES_USER", "postgres"),
			Password: envutil.String("POSTGRES_PASSWORD", ""),
			Name:     envutil.String("POSTGRES_NAME", "maywin"),
			SSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
		},
		Solver: solver.CLIConfig{
			Python:    envutil.String("SOLVER_PYTHON", "python3"),
			CLIPath:   envutil.String("SOLVER_CLI_PATH", "solver/solver_cli.py"),
			Grace:     envutil.Millis("SOLVER_GRACE_MS", 500*time.Millisecond),
			DiagLimit: envutil.Int("SOLVER_DIAG_LIMIT", 4000),
		},
		SolverPlansYAML:     envutil.String("SOLVER_PLANS_YAML", ""),
		QueueSize:           envutil.Int("JOB_QUEUE_SIZE", jobs.DefaultQueueSize),
		ErrorMessageLimit:   envutil.Int("JOB_ERROR_MESSAGE_LIMIT", 900),
		ArtifactStorageMode: strings.ToLower(envutil.String("ARTIFACT_STORAGE_MODE", ArtifactStorageDB)),
		ArtifactBucket:      envutil.String("MAYWIN_ARTIFACTS_BUCKET", ""),
		ArtifactPrefix:      strings.Trim(envutil.String("MAYWIN_ARTIFACTS_PREFIX", ""), "/"),
		AWSRegion:           envutil.String("AWS_REGION", ""),
		AWSS3Endpoint:       envutil.String("AWS_S3_ENDPOINT", ""),
		StorageEmulatorHost: envutil.String("STORAGE_EMULATOR_HOST", ""),
		Redis: bus.RedisConfig{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
			Channel:  envutil.String("REDIS_JOB_EVENTS_CHANNEL", bus.DefaultChannel),
		},
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "maywin-core"),
			Environment: envutil.String("APP_ENV", "development"),
			Version:     envutil.String("APP_VERSION", ""),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 1),
		},
		Metrics: observability.MetricsConfig{
			Enabled:        envutil.Bool("METRICS_ENABLED", false),
			ScrapeInterval: time.Duration(envutil.Int("METRICS_SCRAPE_INTERVAL_SECONDS", 15)) * time.Second,
		},
	}
	log.Info("Config loaded",
		"port", cfg.Port,
		"postgres_host", cfg.Postgres.Host,
		"postgres_name", cfg.Postgres.Name,
		"artifact_storage_mode", cfg.ArtifactStorageMode,
		"queue_size", cfg.QueueSize,
		"solver_cli_path", cfg.Solver.CLIPath,
		"redis_enabled", cfg.Redis.Addr != "",
		"otel_enabled", cfg.Otel.Enabled,
		"metrics_enabled", cfg.Metrics.Enabled,
	)
	return cfg
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
