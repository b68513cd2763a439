package http

import (
	"net/http"

	"github.com/upstart/api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	userService ports.UserService
}

func NewAuthHandler(authService ports.AuthService, userService ports.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

type registerRequest struct {
	Email     string  `json:"email" validate:"required,email,max=256"`
	Password  string  `json:"password" validate:"required,min=8,max=72"`
	FirstName *string `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,max=100"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type googleLoginRequest struct {
	Credential string `json:"credential" validate:"required"`
}

// Register godoc
// @Summary      Registers a user
// @Description  Creates the user, issues a bearer token and moves polls created under the session cookie to the new user.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      201  {object}  ports.AuthResult
// @Failure      400
// @Router       /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeValid(w, r, &req) {
		return
	}

	result, err := h.authService.Register(r.Context(), ports.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}, callerFrom(r.Context()))
	if err != nil {
		respondErr(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// Login godoc
// @Summary      Logs a user in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  ports.AuthResult
// @Failure      401
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeValid(w, r, &req) {
		return
	}

	result, err := h.authService.Login(r.Context(), ports.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, callerFrom(r.Context()))
	if err != nil {
		respondErr(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GoogleLogin godoc
// @Summary      Signs in with a Google ID token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  ports.AuthResult
// @Failure      400
// @Failure      401
// @Router       /auth/google [post]
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req googleLoginRequest
	if !decodeValid(w, r, &req) {
		return
	}

	result, err := h.authService.LoginWithGoogle(r.Context(), req.Credential, callerFrom(r.Context()))
	if err != nil {
		respondErr(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Me godoc
// @Summary      Returns the authenticated user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  domain.User
// @Failure      401
// @Router       /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetByID(r.Context(), callerFrom(r.Context()).UserID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

