package observability

import (
	"go.uber.org/fx"

	"github.com/kwachapos/fiscalgate/internal/observability/logger"
	"github.com/kwachapos/fiscalgate/internal/observability/metrics"
)

var Module = fx.Module("observability",
	fx.Provide(
		LoadConfig,
		provideLoggerConfig,
		logger.New,
		provideMetricsConfig,
	),
	fx.Invoke(ensureGatewayMetrics),
)

func provideLoggerConfig(cfg Config) logger.Config {
	return logger.Config{
		ServiceName:         cfg.ServiceName,
		Environment:         cfg.Environment,
		Version:             cfg.Version,
		Level:               cfg.LogLevel,
		Format:              cfg.LogFormat,
		IncludeCaller:       true,
		IncludeStackOnError: cfg.Environment != "production",
	}
}

func provideMetricsConfig(cfg Config) metrics.Config {
	return metrics.Config{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
	}
}

func ensureGatewayMetrics(cfg metrics.Config) {
	metrics.GatewayWithConfig(cfg)
}
