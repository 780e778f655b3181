package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"

	"github.com/addictsagenda/agenda/internal/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the vault
// API. It applies request logging and bearer-token authentication, and
// mounts the registration, login, and vault document endpoints under /api.
//
// Routes:
//
//	POST   /api/register     → authHandler.Register
//	POST   /api/login        → authHandler.Login
//	GET    /api/vault        → vaultHandler.GetDocument   (protected)
//	DELETE /api/vault        → vaultHandler.DeleteDocument (protected)
//	GET    /api/vault/{key}  → vaultHandler.GetValue      (protected)
//	PUT    /api/vault/{key}  → vaultHandler.PutValue      (protected)
func NewRouter(
	authHandler *AuthHandler,
	vaultHandler *VaultHandler,
	tokenSecret []byte,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		// Protected group: requires a valid session token
		r.Group(func(r chi.Router) {
			r.Use(middleware.TokenAuth(tokenSecret))
			r.Get("/vault", vaultHandler.GetDocument)
			r.Delete("/vault", vaultHandler.DeleteDocument)
			r.Get("/vault/{key}", vaultHandler.GetValue)
			r.Put("/vault/{key}", vaultHandler.PutValue)
		})
	})

	return r
}
