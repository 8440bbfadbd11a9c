package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/juniperhall/taskpoints/internal/calendar"
	"github.com/juniperhall/taskpoints/internal/handler"
	"github.com/juniperhall/taskpoints/internal/middleware"
	"github.com/juniperhall/taskpoints/internal/report"
	"github.com/juniperhall/taskpoints/internal/store"
	ws "github.com/juniperhall/taskpoints/internal/websocket"
)

// Config carries the runtime settings the server needs beyond the database.
type Config struct {
	AdminPassword string
	Calendar      calendar.Config
}

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	authH       *handler.AuthHandler
	tenantH     *handler.TenantHandler
	personH     *handler.PersonHandler
	taskH       *handler.TaskHandler
	reportH     *handler.ReportHandler
	statsH      *handler.StatsHandler
	calendarH   *handler.CalendarHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	tenantStore := store.NewTenantStore(db)
	personStore := store.NewPersonStore(db)
	taskStore := store.NewTaskStore(db)
	completionStore := store.NewCompletionStore(db)
	calendarStore := store.NewCalendarSettingsStore(db)

	reportSvc := report.NewService(personStore, taskStore, completionStore)
	calendarSvc := calendar.NewService(cfg.Calendar, calendarStore, logger.With("component", "calendar"))

	return &Server{
		db:          db,
		hub:         hub,
		authH:       handler.NewAuthHandler(tenantStore, cfg.AdminPassword, logger.With("component", "auth")),
		tenantH:     handler.NewTenantHandler(tenantStore, logger.With("component", "tenant")),
		personH:     handler.NewPersonHandler(personStore, hub, logger.With("component", "person")),
		taskH:       handler.NewTaskHandler(taskStore, personStore, completionStore, hub, logger.With("component", "task")),
		reportH:     handler.NewReportHandler(reportSvc, logger.With("component", "report")),
		statsH:      handler.NewStatsHandler(tenantStore, logger.With("component", "stats")),
		calendarH:   handler.NewCalendarHandler(calendarSvc, logger.With("component", "calendar_http")),
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))

	mux.HandleFunc("GET /api/tenants", s.tenantH.List)
	mux.HandleFunc("POST /api/tenants", s.tenantH.Create)
	mux.HandleFunc("PATCH /api/tenants/{id}/password", s.tenantH.ChangePassword)

	mux.HandleFunc("GET /api/people", s.personH.List)
	mux.HandleFunc("POST /api/people", s.personH.Create)
	mux.HandleFunc("PUT /api/people/{id}", s.personH.Update)
	mux.HandleFunc("DELETE /api/people/{id}", s.personH.Delete)
	mux.HandleFunc("PATCH /api/people/{id}/goal", s.personH.UpdateGoal)

	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("POST /api/tasks", s.taskH.Create)
	mux.HandleFunc("PATCH /api/tasks/reorder", s.taskH.Reorder)
	mux.HandleFunc("GET /api/tasks/{id}", s.taskH.Get)
	mux.HandleFunc("PATCH /api/tasks/{id}", s.taskH.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)
	mux.HandleFunc("POST /api/tasks/{id}/complete", s.taskH.Complete)
	mux.HandleFunc("GET /api/tasks/{id}/completions", s.taskH.Completions)

	mux.HandleFunc("GET /api/reports/{personId}", s.reportH.Monthly)
	mux.HandleFunc("GET /api/admin/stats", s.statsH.Monthly)

	mux.HandleFunc("GET /api/calendar/status", s.calendarH.Status)
	mux.HandleFunc("GET /api/calendar/auth", s.calendarH.Auth)
	mux.HandleFunc("GET /api/calendar/callback", s.calendarH.Callback)
	mux.HandleFunc("GET /api/calendar/calendars", s.calendarH.ListCalendars)
	mux.HandleFunc("PUT /api/calendar/calendars", s.calendarH.SelectCalendars)
	mux.HandleFunc("GET /api/calendar/events", s.calendarH.Events)
	mux.HandleFunc("DELETE /api/calendar/disconnect", s.calendarH.Disconnect)

	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
