package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RegisterDBTracing attaches the otelgorm plugin so every GORM query made
// by the repositories shows up as a child span of the HTTP request span.
// Query variables are stripped from recorded statements; posting amounts
// and account codes stay out of the trace backend.
func RegisterDBTracing(db *gorm.DB, enabled bool, log *zap.Logger) error {
	if !enabled {
		log.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	plugin := otelgorm.NewPlugin(
		otelgorm.WithDBName("postgresql"),
		otelgorm.WithoutQueryVariables(),
	)
	if err := db.Use(plugin); err != nil {
		return err
	}

	log.Info("Database tracing enabled")
	return nil
}
