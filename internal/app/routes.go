package app

// registerRoutes sets up all HTTP handlers for the application.
func (a *App) registerRoutes() {
	a.Mux.HandleFunc("GET /{$}", a.handleDashboard)

	a.Mux.HandleFunc("GET /api/state", a.handleState)
	a.Mux.HandleFunc("POST /api/command", a.handleCommand)
	a.Mux.HandleFunc("POST /api/detection", a.handleDetection)

	a.Mux.HandleFunc("GET /ws", a.handleWS)
}
