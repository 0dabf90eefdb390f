package handlers

import (
	"encoding/json"
	"net/http"

	"worker/internal/infra"
	"worker/internal/worker"
)

// App bundles the dependencies of the management endpoints.
type App struct {
	Engine   *worker.Engine
	Triggers *worker.Triggers
	Logger   infra.Logger
}

// NewApp creates the handler container.
func NewApp(engine *worker.Engine, triggers *worker.Triggers, logger infra.Logger) *App {
	return &App{Engine: engine, Triggers: triggers, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
