package web

import (
	"context"
	"crypto/sha256"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"phone-sales-dashboard/config"
	"phone-sales-dashboard/models"
	"phone-sales-dashboard/storage"
	"phone-sales-dashboard/utils"
)

// ReportService computes dashboard payloads. services.Dashboard implements it.
type ReportService interface {
	Report(ctx context.Context, filter models.Filter) (*models.Report, error)
	Insights(ctx context.Context) ([]models.Insight, error)
}

// UploadImporter stores an uploaded dataset. services.Importer implements it.
type UploadImporter interface {
	Import(ctx context.Context, raw []*models.RawSaleRow) (models.IngestResult, error)
}

// PDFRenderer turns export rows into a PDF document.
type PDFRenderer interface {
	Render(ctx context.Context, header []string, rows []models.ExportRow) ([]byte, error)
}

// Deps bundles the collaborators of a Server.
type Deps struct {
	Config   *config.Config
	Reports  ReportService
	Importer UploadImporter
	Exports  storage.ExportSource
	Users    storage.UserStore
	PDF      PDFRenderer
	Logger   *utils.Logger
}

// Server is the dashboard's HTTP front end.
type Server struct {
	Deps
	sessions *sessions.CookieStore
}

// NewServer creates a Server. Session cookies are signed with a key derived
// from the configured secret.
func NewServer(d Deps) *Server {
	key := sha256.Sum256([]byte(d.Config.SecretKey))
	store := sessions.NewCookieStore(key[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 3600,
		HttpOnly: true,
		Secure:   d.Config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
	return &Server{Deps: d, sessions: store}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(instrument)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.Config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/signup", s.handleSignup)
	r.Post("/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.requireLogin)

		r.Post("/logout", s.handleLogout)
		r.Get("/", s.handleIndex)
		r.Get("/api/data", s.handleData)
		r.Get("/insights/api", s.handleInsights)

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAdmin)
			r.Post("/upload", s.handleUpload)
			r.Get("/export/{format}", s.handleExport)
		})
	})

	return r
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
