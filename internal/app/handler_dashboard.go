package app

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// handleDashboard renders the main dashboard page.
func (a *App) handleDashboard(w http.ResponseWriter, r *http.Request) {
	log.Debug().Str("from", r.RemoteAddr).Msg("[app] GET / (dashboard)")
	data := map[string]any{
		"Title": "LiftLink",
		"View":  a.View(),
	}
	if err := a.Tmpl.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
