package app

import (
	"io"
	"log/slog"

	"github.com/felixgeelhaar/nudge/pkg/config"
	"github.com/felixgeelhaar/nudge/pkg/observability"
)

// NewLogger builds the structured logger for a nudge process from config.
// Development environments log at debug level when no level is set.
func NewLogger(cfg *config.Config, service, version string, out io.Writer) *slog.Logger {
	logCfg := observability.DefaultLogConfig()
	if cfg.IsProduction() {
		logCfg = observability.ProductionLogConfig()
	}
	logCfg.Output = out
	logCfg.Service = service
	logCfg.Version = version

	switch {
	case cfg.LogLevel != "":
		logCfg.Level = observability.LogLevel(cfg.LogLevel)
	case cfg.IsDevelopment():
		logCfg.Level = observability.LogLevelDebug
	}
	if cfg.LogFormat != "" {
		logCfg.Format = observability.LogFormat(cfg.LogFormat)
	}
	return observability.NewLogger(logCfg)
}
