package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"mediavault/app"
	"mediavault/pkg/jsonapi"
	"mediavault/ports"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      userResponse `json:"user"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u ports.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonapi.WriteError(w, jsonapi.ErrBadRequest("Invalid JSON body"))
		return
	}

	u, err := h.users.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidEmail):
			jsonapi.WriteError(w, jsonapi.ErrValidation("email", err.Error()))
		case errors.Is(err, app.ErrWeakPassword):
			jsonapi.WriteError(w, jsonapi.ErrValidation("password", err.Error()))
		case errors.Is(err, app.ErrEmailTaken):
			jsonapi.WriteError(w, jsonapi.ErrConflict(err.Error()))
		default:
			h.internalError(w, err, "register")
		}
		return
	}

	h.writeAuthResponse(w, http.StatusCreated, u)
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonapi.WriteError(w, jsonapi.ErrBadRequest("Invalid JSON body"))
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, app.ErrInvalidCredentials) {
			h.authFailure("bad_credentials")
			jsonapi.WriteError(w, jsonapi.ErrUnauthorized("Invalid email or password"))
			return
		}
		h.internalError(w, err, "login")
		return
	}

	h.writeAuthResponse(w, http.StatusOK, u)
}

// Me handles GET /api/users/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Get(r.Context(), userID(r))
	if err != nil {
		if errors.Is(err, app.ErrUserNotFound) {
			jsonapi.WriteError(w, jsonapi.ErrNotFound("user"))
			return
		}
		h.internalError(w, err, "get user")
		return
	}
	jsonapi.WriteData(w, http.StatusOK, toUserResponse(u))
}

func (h *Handler) writeAuthResponse(w http.ResponseWriter, status int, u ports.User) {
	token, expiresAt, err := h.tokens.GenerateToken(u.ID, u.Email)
	if err != nil {
		h.internalError(w, err, "generate token")
		return
	}
	jsonapi.WriteData(w, status, authResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      toUserResponse(u),
	})
}

func (h *Handler) internalError(w http.ResponseWriter, err error, op string) {
	h.logger.Error().Err(err).Str("op", op).Msg("request failed")
	jsonapi.WriteError(w, jsonapi.ErrInternal(""))
}
