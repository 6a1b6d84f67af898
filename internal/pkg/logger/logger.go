package logger

import "go.uber.org/zap"

// New builds the process logger. Production config in deployed environments,
// human-readable console output otherwise.
func New(appEnv string) (*zap.Logger, error) {
	if appEnv == "prod" || appEnv == "production" {
		return zap.NewProduction()
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}
