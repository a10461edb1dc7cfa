package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"

	"github.com/ValentinRndn/profconnect/internal/auth"
	"github.com/ValentinRndn/profconnect/internal/handlers"
	"github.com/ValentinRndn/profconnect/internal/httpx"
	"github.com/ValentinRndn/profconnect/internal/models"
	"github.com/ValentinRndn/profconnect/internal/notify"
	"github.com/ValentinRndn/profconnect/internal/policy"
	"github.com/ValentinRndn/profconnect/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB) http.Handler {
	// Ensure RequireAuth rejects sessions whose user no longer exists.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	resolver := policy.NewResolver(db)
	g := policy.NewGate(db)
	notifier := notify.NewDBNotifier(db)

	factureSvc := services.NewFactureService(db, g)
	missionSvc := services.NewMissionService(db, g, notifier)
	candidatureSvc := services.NewCandidatureService(db, g, notifier)
	collaborationSvc := services.NewCollaborationService(db, g, notifier, factureSvc)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(auth.Middleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		// lightweight DB check
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	handlers.NewAuthHandler(db).Routes(r)

	r.Route("/api", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler { return auth.RequireAuth(next) })
		r.Use(handlers.ActorCtx(resolver))
		r.Use(middleware.AllowContentType("application/json"))

		r.Route("/missions", handlers.NewMissionHandler(missionSvc, candidatureSvc).Routes)
		r.Route("/candidatures", handlers.NewCandidatureHandler(candidatureSvc).Routes)
		r.Route("/collaborations", handlers.NewCollaborationHandler(collaborationSvc).Routes)
		r.Route("/factures", handlers.NewFactureHandler(factureSvc).Routes)
	})

	return r
}
