package httpapi

import (
	"go.uber.org/zap"

	"applyflow-engine/internal/dedup"
	"applyflow-engine/internal/events"
	"applyflow-engine/internal/pipeline"
)

type Deps struct {
	Pipeline *pipeline.Pipeline
	Engine   *dedup.Engine
	Hub      *events.Hub
	Log      *zap.SugaredLogger
}
