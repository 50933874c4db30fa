package httpserver

import (
	"net/http"
	"strings"
	"time"

	userhttp "kanvas/contexts/identity-access/user-service/transport/http"
	"kanvas/internal/platform/auth"

	"github.com/go-chi/chi/v5"
)

func (s *Server) mountUserRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/authenticate", s.handleAuthenticate)
		r.Post("/logout", s.handleLogout)
	})
	r.Route("/users", func(r chi.Router) {
		r.Get("/me", s.handleMe)
		r.Patch("/me", s.handleUpdateProfile)
		r.Get("/search", s.handleSearchUsers)
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req userhttp.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.services.User.Handler.RegisterHandler(r.Context(), req)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// handleAuthenticate returns the token in the body and also sets it as the
// access cookie the gateway reads first.
func (s *Server) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req userhttp.AuthenticateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.services.User.Handler.AuthenticateHandler(r.Context(), req)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    resp.AccessToken,
		Path:     "/",
		Expires:  resp.ExpiresAt,
		MaxAge:   int(time.Until(resp.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   s.options.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.options.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	resp, err := s.services.User.Handler.MeHandler(r.Context(), userID)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	var req userhttp.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.services.User.Handler.UpdateProfileHandler(r.Context(), userID, req)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	resp, err := s.services.User.Handler.SearchUsersHandler(r.Context(), userID, query)
	if err != nil {
		writeDomainError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
