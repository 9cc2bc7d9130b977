// Package app implements the web dashboard and JSON API for LiftLink.
package app

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"LiftLink/internal/model"
	"LiftLink/internal/state"
	"LiftLink/internal/trigger"
)

//go:embed templates/*.html
var templateFS embed.FS

// App serves the dashboard, the JSON API and the websocket stream of
// status views. Commands go to Sender and detection samples to Detector.
type App struct {
	Live     *state.Live
	Log      *state.Log
	Hub      *state.Hub
	Sender   trigger.Sender
	Detector trigger.Detector

	Tmpl   *template.Template
	Mux    *http.ServeMux
	Server *http.Server

	mu   sync.Mutex
	done chan struct{}
}

// NewApp initializes the web app with templates and routes.
func NewApp(live *state.Live, lg *state.Log, hub *state.Hub, sender trigger.Sender, det trigger.Detector) *App {
	tmpl := template.Must(template.New("").Funcs(template.FuncMap{
		"year": func() int { return time.Now().Year() },
	}).ParseFS(templateFS, "templates/*.html"))

	a := &App{
		Live:     live,
		Log:      lg,
		Hub:      hub,
		Sender:   sender,
		Detector: det,
		Tmpl:     tmpl,
		Mux:      http.NewServeMux(),
		done:     make(chan struct{}),
	}
	a.registerRoutes()
	return a
}

// View builds the document served to every display client.
func (a *App) View() model.StatusView {
	var remaining time.Duration
	if a.Detector != nil {
		remaining = a.Detector.Remaining()
	}
	return model.NewStatusView(a.Live.Snapshot(), a.Log.Lines(), remaining)
}

// Start launches the web server and blocks until stopped.
func (a *App) Start(addr string) error {
	if addr == "" {
		log.Info().Msg("[app] web server not started (empty address)")
		return nil
	}

	addr = strings.TrimPrefix(addr, "http://")
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	a.mu.Lock()
	select {
	case <-a.done:
		a.mu.Unlock()
		return nil
	default:
	}
	a.Server = srv
	a.mu.Unlock()

	log.Info().Msgf("[app] web server listening at http://%s", addr)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("[app] HTTP server error: %w", err)
	}
	return nil
}

// Stop gracefully stops the web server and ends every websocket stream.
func (a *App) Stop() {
	a.mu.Lock()
	select {
	case <-a.done:
	default:
		close(a.done)
	}
	srv := a.Server
	a.mu.Unlock()

	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("[app] HTTP server shutdown error")
		return
	}
	log.Info().Msg("[app] web server stopped cleanly")
}
