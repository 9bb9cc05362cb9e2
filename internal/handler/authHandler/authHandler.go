package authHandler

import (
	"net/http"

	"filevault/internal/model/user"
	"filevault/internal/service/authService"
	"filevault/pkg/httpx"
	"filevault/pkg/middleware"
)

const bearerPrefix = "Bearer "

type credentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updateNameRequest struct {
	Username    string `json:"username" validate:"required"`
	NewUsername string `json:"newUsername" validate:"required"`
}

type changePasswordRequest struct {
	Username    string `json:"username" validate:"required"`
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type response struct {
	Status  int            `json:"status"`
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Token   string         `json:"token,omitempty"`
	User    *user.Identity `json:"user,omitempty"`
}

type AuthHandler struct {
	authService *authService.AuthService
}

func New(service *authService.AuthService) *AuthHandler {
	return &AuthHandler{authService: service}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	if err := h.authService.Register(r.Context(), req.Username, req.Password); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	ok(w, http.StatusOK, response{Message: "Registration successful"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	session, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	ok(w, http.StatusOK, response{
		Message: "Login successful",
		Token:   bearerPrefix + session.Token,
		User:    &session.Identity,
	})
}

func (h *AuthHandler) UpdateName(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.IdentityFromContext(r.Context())

	var req updateNameRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	session, err := h.authService.ChangeUsername(r.Context(), caller, req.Username, req.NewUsername)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	ok(w, http.StatusOK, response{
		Message: "Username updated successfully",
		Token:   bearerPrefix + session.Token,
		User:    &session.Identity,
	})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.IdentityFromContext(r.Context())

	var req changePasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	if err := h.authService.ChangePassword(r.Context(), caller, req.Username, req.OldPassword, req.NewPassword); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	ok(w, http.StatusOK, response{Message: "Password updated successfully"})
}

func ok(w http.ResponseWriter, status int, resp response) {
	resp.Status = status
	resp.Success = true
	httpx.WriteJSON(w, status, resp)
}
