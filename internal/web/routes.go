package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/smart-attendance/internal/camera"
	"github.com/kozaktomas/smart-attendance/internal/web/handlers"
	"github.com/kozaktomas/smart-attendance/internal/web/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) setupRoutes() {
	cam := s.deps.Camera
	if cam == nil {
		cam = camera.None{}
	}

	// Create handlers
	attendanceHandler := handlers.NewAttendanceHandler(s.deps.Service, s.deps.Board, s.guard, s.deps.Logger)
	usersHandler := handlers.NewUsersHandler(s.deps.Service, s.deps.Logger)
	statusHandler := handlers.NewStatusHandler(s.deps.Board, s.guard)
	configHandler := handlers.NewConfigHandler(s.config, cam.Name())
	statsHandler := handlers.NewStatsHandler(s.deps.Service, s.deps.Oracle, s.deps.Logger)
	cameraHandler := handlers.NewCameraHandler(cam, s.guard, s.deps.Logger)

	// Health check and metrics (no auth required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", statusHandler.Get)
		r.Get("/events", statusHandler.Events)
		r.Get("/config", configHandler.Get)
		r.Get("/stats", statsHandler.Get)

		r.Get("/users", usersHandler.List)
		r.Get("/attendance", attendanceHandler.List)

		// Intents, reference photos and the camera require a token when WEB_JWT_SECRET is set
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireToken(s.config.Web.JWTSecret))

			r.Get("/users/{id}/photo", usersHandler.Photo)

			r.Post("/users", attendanceHandler.Register)
			r.Post("/attendance/check-in", attendanceHandler.CheckIn)
			r.Post("/attendance/check-out", attendanceHandler.CheckOut)
			r.Get("/camera/preview", cameraHandler.Preview)
		})
	})

	s.router.Get("/", s.serveIndex)
}

// serveIndex serves a landing page pointing at the API.
func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>Smart Attendance</title>
    <style>
        body { font-family: system-ui, sans-serif; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0; background: #1a1a2e; color: #eee; }
        .container { text-align: center; }
        h1 { color: #00d9ff; }
        p { color: #aaa; }
        a { color: #00d9ff; }
        code { background: #2a2a3e; padding: 2px 8px; border-radius: 4px; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Smart Attendance</h1>
        <p>Check in with <code>POST /api/v1/attendance/check-in</code>, follow the countdown on <code>/api/v1/events</code>.</p>
        <p>API is available at <a href="/api/v1/health">/api/v1/health</a></p>
    </div>
</body>
</html>`))
}
