package observability

import (
	"log/slog"

	"github.com/grafana/pyroscope-go"

	"github.com/pickemhq/pickem-backend/internal/config"
)

// InitPyroscope starts continuous profiling when enabled. The returned
// stop func is a no-op when profiling is off.
func InitPyroscope(cfg config.Config, logger *slog.Logger) (func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.PyroscopeEnabled {
		logger.Info("continuous profiling off")
		return func() error { return nil }, nil
	}

	pcfg := pyroscope.Config{
		ApplicationName:   cfg.PyroscopeAppName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		Tags: map[string]string{
			"env":     cfg.AppEnv,
			"service": cfg.ServiceName,
		},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	}
	profiler, err := pyroscope.Start(pcfg)
	if err != nil {
		return nil, err
	}

	logger.Info("continuous profiling on",
		"server_address", cfg.PyroscopeServerAddress,
		"application", cfg.PyroscopeAppName,
	)
	return profiler.Stop, nil
}
