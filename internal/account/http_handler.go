package account

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"bookcatalog/internal/httpx"
	"bookcatalog/internal/validation"
)

const (
	MsgInvalidEmail       = "Invalid or missing email - please refer to documentation."
	MsgInvalidOldPassword = "Invalid or missing old password - please refer to documentation."
	MsgInvalidNewPassword = "Invalid or missing new password - please refer to documentation."
	MsgEmailNotFound      = "Email does not exist."
	MsgPasswordMismatch   = "Provided password does not match existing password."
	MsgNotOwner           = "You may only change the password of your own account."
	MsgPasswordUpdated    = "Password Updated Successfully"
	MsgEmailExists        = "Email already exists"
	MsgInvalidLogin       = "Invalid email or password"
	MsgInvalidBody        = "Invalid request body"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

func (h *HTTPHandler) RegisterOpen(r chi.Router) {
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
}

// RegisterClosed mounts routes that need a verified token.
func (h *HTTPHandler) RegisterClosed(r chi.Router) {
	r.Post("/credentials/changePassword", h.ChangePassword)
	r.Get("/jwt_test", h.TokenTest)
}

type registerReq struct {
	Email     string `json:"email" validate:"required,email_addr"`
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Password  string `json:"password" validate:"required,password_strength"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Phone     string `json:"phone" validate:"omitempty,phone"`
}

// Register handles POST /auth/register
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body registerReq true "Registration request"
// @Success 201 {object} Account
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /auth/register [post]
func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.BadRequest(w, r, MsgInvalidBody)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)

	if details := httpx.ValidateStruct(req); details != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	a, err := h.service.Register(r.Context(), Registration{
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			httpx.JSONError(w, r, http.StatusConflict, "ALREADY_EXISTS", MsgEmailExists, nil)
			return
		}
		httpx.ServerError(w, r, "account.register", err)
		return
	}
	httpx.JSONCreated(w, a)
}

type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /auth/login
// @Summary Sign in and obtain an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body loginReq true "Credentials"
// @Success 200 {object} Token
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /auth/login [post]
func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.BadRequest(w, r, MsgInvalidBody)
		return
	}
	if details := httpx.ValidateStruct(req); details != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", MsgInvalidLogin, nil)
			return
		}
		httpx.ServerError(w, r, "account.login", err)
		return
	}
	httpx.JSONOK(w, token)
}

type changePasswordReq struct {
	Email       string `json:"email"`
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePassword handles POST /credentials/changePassword
// @Summary Change the caller's password
// @Tags credentials
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body changePasswordReq true "Old and new password"
// @Success 200 {object} httpx.MessageResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Router /credentials/changePassword [post]
func (h *HTTPHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.BadRequest(w, r, MsgInvalidBody)
		return
	}
	switch {
	case !validation.IsValidEmail(req.Email):
		httpx.BadRequest(w, r, MsgInvalidEmail)
		return
	case !validation.IsValidPassword(req.OldPassword):
		httpx.BadRequest(w, r, MsgInvalidOldPassword)
		return
	case !validation.IsValidPassword(req.NewPassword):
		httpx.BadRequest(w, r, MsgInvalidNewPassword)
		return
	}

	err := h.service.ChangePassword(r.Context(), httpx.UserIDFrom(r), req.Email, req.OldPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			httpx.BadRequest(w, r, MsgEmailNotFound)
		case errors.Is(err, ErrPasswordMismatch):
			httpx.BadRequest(w, r, MsgPasswordMismatch)
		case errors.Is(err, ErrForbidden):
			httpx.JSONError(w, r, http.StatusForbidden, "FORBIDDEN", MsgNotOwner, nil)
		default:
			httpx.ServerError(w, r, "account.change_password", err)
		}
		return
	}
	httpx.JSONMessage(w, http.StatusOK, MsgPasswordUpdated)
}

// TokenTest handles GET /jwt_test
func (h *HTTPHandler) TokenTest(w http.ResponseWriter, r *http.Request) {
	role, err := h.service.TokenRole(r.Context(), httpx.UserIDFrom(r))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusForbidden, "FORBIDDEN", httpx.MsgInvalidToken, nil)
			return
		}
		httpx.ServerError(w, r, "account.token_test", err)
		return
	}
	httpx.JSONMessage(w, http.StatusOK, TokenMessage(role))
}
