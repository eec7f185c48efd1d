package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/example/b2b-marketplace/internal/api/middleware"
	"github.com/example/b2b-marketplace/internal/auth"
	"github.com/example/b2b-marketplace/internal/domain/user"
	"github.com/example/b2b-marketplace/internal/infrastructure/store"
)

// AuthHandlers handles registration, login, and session endpoints
type AuthHandlers struct {
	userService *user.Service
	jwtService  *auth.JWTService
	readStore   store.ReadStoreInterface
}

func NewAuthHandlers(userService *user.Service, jwtService *auth.JWTService, readStore store.ReadStoreInterface) *AuthHandlers {
	return &AuthHandlers{
		userService: userService,
		jwtService:  jwtService,
		readStore:   readStore,
	}
}

func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Role     string `json:"role"`
		Industry string `json:"industry"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Role == "" {
		req.Role = string(user.RoleBuyer)
	}

	// Email uniqueness is checked against the read model
	if _, exists, err := h.readStore.GetUserByEmail(req.Email); err != nil {
		respondDomainError(w, err)
		return
	} else if exists {
		respondJSONError(w, "email is already registered", http.StatusConflict)
		return
	}

	u, err := h.userService.Register(r.Context(), req.Email, req.Password, req.Name, user.Role(req.Role), req.Industry)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	token, expiresAt, err := h.jwtService.GenerateAccessToken(u.ID, u.Email, string(u.Role), u.Industry)
	if err != nil {
		respondJSONError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}
	h.setAuthCookie(w, token, expiresAt, r)

	respondJSON(w, http.StatusCreated, map[string]any{
		"user":         u,
		"access_token": token,
		"expires_at":   expiresAt,
	})
}

func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	u, exists, err := h.readStore.GetUserByEmail(req.Email)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if !exists || !auth.VerifyPassword(u.PasswordHash, req.Password) {
		respondJSONError(w, user.ErrInvalidCredentials.Error(), http.StatusUnauthorized)
		return
	}
	if !u.IsActive {
		respondJSONError(w, user.ErrUserDeactivated.Error(), http.StatusForbidden)
		return
	}

	token, expiresAt, err := h.jwtService.GenerateAccessToken(u.ID, u.Email, u.Role, u.Industry)
	if err != nil {
		respondJSONError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}
	h.setAuthCookie(w, token, expiresAt, r)

	respondJSON(w, http.StatusOK, map[string]any{
		"user":         u,
		"access_token": token,
		"expires_at":   expiresAt,
	})
}

func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	data, exists, err := h.readStore.Get(store.CollectionUsers, claims.UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if !exists {
		respondJSONError(w, user.ErrUserNotFound.Error(), http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, data)
}

func (h *AuthHandlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	u, exists, err := h.readStore.GetUserByEmail(claims.Email)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if !exists || !auth.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
		respondJSONError(w, user.ErrInvalidCredentials.Error(), http.StatusUnauthorized)
		return
	}

	if err := h.userService.ChangePassword(r.Context(), claims.UserID, req.NewPassword); err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}

func (h *AuthHandlers) setAuthCookie(w http.ResponseWriter, token string, expiresAt time.Time, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}
