// Package httpapi is the panel's HTTP surface: JSON API, session cookie
// handling, the live notification stream and the static front-end.
package httpapi

import (
	"net/http"
	"path/filepath"
	"time"

	"isp_billing_panel/internal/app"
	"isp_billing_panel/internal/infra/broadcast"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

const (
	SessionCookie = "panel_session"

	defaultKeepAlive = 25 * time.Second
)

// Metrics is the optional Prometheus side of the router.
type Metrics interface {
	Middleware(next http.Handler) http.Handler
	Handler() http.Handler
}

type Options struct {
	PublicDir    string
	CookieSecure bool
	KeepAlive    time.Duration
	Metrics      Metrics
}

type Server struct {
	clients       *app.ClientService
	notifications *app.NotificationService
	sweep         *app.SweepService
	auth          *app.AuthService
	hub           *broadcast.Hub
	opts          Options
	logger        *logrus.Entry
}

func NewServer(
	clients *app.ClientService,
	notifications *app.NotificationService,
	sweep *app.SweepService,
	auth *app.AuthService,
	hub *broadcast.Hub,
	opts Options,
	logger *logrus.Entry,
) *Server {
	if opts.KeepAlive <= 0 {
		opts.KeepAlive = defaultKeepAlive
	}
	return &Server{
		clients:       clients,
		notifications: notifications,
		sweep:         sweep,
		auth:          auth,
		hub:           hub,
		opts:          opts,
		logger:        logger,
	}
}

// Router builds the route tree. API routes are mounted both at the root and
// under /api, which is where the bundled front-end calls them.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	if s.opts.Metrics != nil {
		r.Use(s.opts.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics.Handler())
	}

	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleRoot)
	r.With(s.requirePage).Get("/dashboard", s.handleDashboard)

	r.Post("/login", s.handleLogin)
	r.With(s.requireSession).Post("/logout", s.handleLogout)

	r.Group(s.apiRoutes)
	r.Route("/api", s.apiRoutes)

	r.Handle("/*", http.FileServer(http.Dir(s.opts.PublicDir)))
	return r
}

func (s *Server) apiRoutes(r chi.Router) {
	r.Use(s.requireSession)

	r.Get("/clients", s.handleListClients)
	r.Post("/clients", s.handleCreateClient)
	r.Get("/clients/export", s.handleExportClients)
	r.Get("/clients/{id}", s.handleGetClient)
	r.Post("/clients/{id}/pay", s.handleRecordPayment)
	r.Delete("/clients/{id}", s.handleDeleteClient)
	r.Get("/summary", s.handleSummary)

	r.Get("/notifications", s.handleListNotifications)
	r.Delete("/notifications", s.handleClearNotifications)
	r.Delete("/notifications/clear", s.handleClearNotifications)
	r.Get("/notifications/stream", s.handleStream)
	r.Post("/test-notification", s.handleTestNotification)
	r.Post("/test-email", s.handleTestNotification)

	r.Post("/run-check", s.handleRunCheck)
	r.Post("/run-check-now", s.handleRunCheck)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.sessionFromRequest(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/login.html", http.StatusFound)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(s.opts.PublicDir, "index.html"))
}
