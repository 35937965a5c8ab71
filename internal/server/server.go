/*
Package server implements the application's network transport layer.
It initializes the HTTP server, configures timeouts, and wires the
assistant core and database service into the route handlers.
*/
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/sessions"

	"nutrisense/internal/assistant"
	"nutrisense/internal/config"
	"nutrisense/internal/database"
)

// Server holds the dependencies the route handlers need. Everything is
// injected; there are no package-level singletons.
type Server struct {
	port int

	cfg       config.Config
	db        *database.Service
	assistant *assistant.Assistant
	sessions  *sessions.CookieStore
	startTime time.Time
}

// New wires the dependencies into a configured *http.Server with
// production network timeouts. The write timeout leaves room for the
// slowest external call chain (search fan-out plus one synthesis call).
func New(cfg config.Config, db *database.Service, a *assistant.Assistant) *http.Server {
	app := &Server{
		port:      cfg.Port,
		cfg:       cfg,
		db:        db,
		assistant: a,
		sessions:  sessions.NewCookieStore([]byte(cfg.SessionSecret)),
		startTime: time.Now(),
	}

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", app.port),
		Handler:      app.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}
}
