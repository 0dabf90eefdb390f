package handlers

import "net/http"

// Trigger runs one sweep-and-process cycle on demand. Useful for testing and
// debugging without waiting for the poll interval.
func (a *App) Trigger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	enqueued := a.Triggers.SweepSubscriptions(ctx)
	processed := a.Engine.ProcessBatch(ctx)

	a.Logger.Info().Int("enqueued", enqueued).Int("processed", processed).Msg("manual trigger")
	a.json(w, http.StatusOK, map[string]any{
		"success":   true,
		"enqueued":  enqueued,
		"processed": processed,
	})
}
