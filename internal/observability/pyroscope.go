package observability

import (
	"log/slog"

	"github.com/cueleague/snooker-scores/internal/config"
	"github.com/grafana/pyroscope-go"
)

// InitPyroscope starts continuous profiling against a Pyroscope server when
// enabled. The returned func stops the profiler and flushes pending uploads.
func InitPyroscope(cfg config.Config, logger *slog.Logger) (func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.PyroscopeEnabled {
		logger.Info("continuous profiling disabled")
		return func() error { return nil }, nil
	}

	// Mutex and block profiles stay off; nothing arms the runtime fractions
	// for them.
	profileTypes := []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileAllocObjects,
		pyroscope.ProfileAllocSpace,
		pyroscope.ProfileInuseObjects,
		pyroscope.ProfileInuseSpace,
		pyroscope.ProfileGoroutines,
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.PyroscopeAppName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		Tags:              map[string]string{"env": cfg.AppEnv, "service": cfg.ServiceName},
		ProfileTypes:      profileTypes,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("continuous profiling enabled",
		"server", cfg.PyroscopeServerAddress,
		"app", cfg.PyroscopeAppName,
	)
	return profiler.Stop, nil
}
