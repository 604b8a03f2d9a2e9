package application

import "log/slog"

const ModuleName = "campaign-fulfillment/fulfillment-service"

func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
