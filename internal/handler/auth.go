package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"workfolio/internal/httputil"
	"workfolio/internal/model"
	"workfolio/internal/service"
)

// AuthHandler groups login, logout and signup.
type AuthHandler struct {
	base
	userService *service.UserService
	media       *MediaHandler
}

// newAuthHandler wires dependencies for authentication endpoints.
func newAuthHandler(b base, userService *service.UserService, media *MediaHandler) *AuthHandler {
	return &AuthHandler{base: b, userService: userService, media: media}
}

// LoginForm handles GET /login
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "login", nil)
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	user, err := h.userService.Login(r.Context(), &model.LoginRequest{
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	})
	if errors.Is(err, model.ErrInvalidCredentials) {
		h.sessions.Flash(w, r, model.FlashError, "Invalid username or password.")
		httputil.Redirect(w, r, "/login")
		return
	}
	if err != nil {
		h.fail(w, r, err, "/login")
		return
	}

	if err := h.sessions.Login(w, r, user); err != nil {
		h.fail(w, r, err, "/login")
		return
	}
	h.done(w, r, "/", "You have been successfully signed in.")
}

// Logout handles GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(w, r)
	httputil.Redirect(w, r, "/login")
}

// SignupForm handles GET /signup
func (h *AuthHandler) SignupForm(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "signup", nil)
}

// Signup handles POST /signup. purpose, experience and profileImage are
// optional and seed a profile when present.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	image, err := h.media.profileImage(r, "profileImage")
	if err != nil {
		h.fail(w, r, err, "/signup")
		return
	}

	user, err := h.userService.Register(r.Context(), &model.RegisterRequest{
		Username:     r.FormValue("username"),
		Password:     r.FormValue("password"),
		PhoneNumber:  r.FormValue("phoneNumber"),
		Purpose:      r.FormValue("purpose"),
		Experience:   r.FormValue("experience"),
		ProfileImage: image,
	})
	if err != nil {
		h.fail(w, r, err, "/signup")
		return
	}

	if err := h.sessions.Login(w, r, user); err != nil {
		// The account exists; the user can still log in by hand.
		h.log.Warn("signup auto-login failed", zap.Int64("user_id", user.ID), zap.Error(err))
		h.done(w, r, "/login", "You have successfully created an account.")
		return
	}
	h.done(w, r, "/", "You have successfully created an account.")
}
