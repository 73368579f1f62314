package authhandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"folha/internal/domain/auth"
	"folha/internal/requestctx"
	"folha/internal/transport/http/api"
	"folha/internal/transport/http/shared"
)

type Handler struct {
	Service *auth.Service
	Logger  *zap.Logger
}

func NewHandler(service *auth.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Service: service, Logger: logger}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresIn int64     `json:"expiresIn"`
	User      auth.User `json:"user"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("username", payload.Username, "is required")
	v.Required("password", payload.Password, "is required")
	if v.Reject(w, requestID) {
		return
	}

	token, user, err := h.Service.Login(r.Context(), payload.Username, payload.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		h.Logger.Info("login rejected", zap.String("username", payload.Username), zap.String("requestId", requestID))
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
		return
	}
	if err != nil {
		h.Logger.Error("login failed", zap.Error(err), zap.String("requestId", requestID))
		api.Fail(w, http.StatusInternalServerError, "login_failed", "failed to log in", requestID)
		return
	}

	api.Success(w, loginResponse{
		Token:     token,
		ExpiresIn: int64(h.Service.TokenTTL.Seconds()),
		User:      user,
	}, requestID)
}
