package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	apiv1 "gym-membership-service/internal/infra/api/apiv1"
)

// Server hosts the staff-facing admin surface: session login plus the
// protected admin routes.
type Server struct {
	adminKey string
	auth     *SessionManager
	log      *zerolog.Logger
}

func NewServer(adminKey string, auth *SessionManager, logger *zerolog.Logger) *Server {
	srvLog := logger.With().Str("component", "web").Logger()
	return &Server{adminKey: adminKey, auth: auth, log: &srvLog}
}

// RegisterRoutes mounts the auth endpoints and the protected admin API.
func (s *Server) RegisterRoutes(r chi.Router, api *apiv1.Server) {
	r.Post("/api/v1/admin/auth/login", s.handleLogin)
	r.Post("/api/v1/admin/auth/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		apiv1.RegisterAdmin(r, api)
	})
}

type loginRequest struct {
	Key string `json:"key"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.adminKey == "" || s.auth == nil {
		s.log.Error().Msg("admin auth is not configured")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if req.Key != s.adminKey {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if _, err := s.auth.Issue(w); err != nil {
		s.log.Error().Err(err).Msg("failed to issue staff session")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if s.auth != nil {
		s.auth.Revoke(w)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.auth == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if _, err := s.auth.FromRequest(r); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
