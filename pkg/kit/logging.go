package kit

import "go.uber.org/zap"

// NewLogger builds the JSON production logger shared by every service.
// An empty or unknown level falls back to info.
func NewLogger(service, level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.InitialFields = map[string]any{"service": service}

	if lvl, err := zap.ParseAtomicLevel(level); err == nil && level != "" {
		cfg.Level = lvl
	}

	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}
