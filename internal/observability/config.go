package observability

import (
	"os"
	"strings"

	"github.com/kwachapos/fiscalgate/internal/config"
)

// Config holds observability settings derived from environment variables.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string
}

func LoadConfig(cfg config.Config) Config {
	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = "fiscalgate"
	}

	return Config{
		ServiceName: serviceName,
		Environment: getenv("DEPLOYMENT_ENV", cfg.Environment),
		Version:     getenv("SERVICE_VERSION", cfg.AppVersion),
		LogLevel:    strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogFormat:   strings.ToLower(getenv("LOG_FORMAT", "json")),
	}
}

func getenv(key, def string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return def
}
