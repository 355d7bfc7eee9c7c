package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"tesoro/internal/domain/treasurer"
	"tesoro/internal/shared/auth"
)

type AuthHandler struct {
	treasurerRepo treasurer.Repository
	jwt           *auth.JWT
}

func NewAuthHandler(treasurerRepo treasurer.Repository, jwt *auth.JWT) *AuthHandler {
	return &AuthHandler{treasurerRepo: treasurerRepo, jwt: jwt}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token     string               `json:"token"`
	Treasurer *treasurer.Treasurer `json:"treasurer"`
}

// HandleLogin authenticates a treasurer with email and password
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	ctx := r.Context()

	t, err := h.treasurerRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, treasurer.ErrTreasurerNotFound) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		log.Printf("Error loading treasurer %s: %v", req.Email, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if !t.Active {
		writeError(w, http.StatusUnauthorized, "Account is deactivated")
		return
	}

	if err := auth.VerifyPassword(t.PasswordHash, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := h.jwt.Generate(t.Identity())
	if err != nil {
		log.Printf("Error generating JWT for treasurer %d: %v", t.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	setAuthCookie(w, r, token)
	writeJSON(w, http.StatusOK, AuthResponse{Token: token, Treasurer: t})
}

// HandleLogout clears the auth cookie
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	// Only set Secure flag when actually using HTTPS
	secure := r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"

	// Clear the cookie by setting MaxAge to -1
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the authenticated treasurer
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	identity, ok := identityFrom(w, r)
	if !ok {
		return
	}

	t, err := h.treasurerRepo.GetByID(r.Context(), identity.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, t)
}

// setAuthCookie sets the JWT as an HttpOnly cookie
func setAuthCookie(w http.ResponseWriter, r *http.Request, token string) {
	// Only set Secure flag when actually using HTTPS
	secure := r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400, // 24 hours (matches JWT expiration)
	})
}
