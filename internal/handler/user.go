package handler

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"workfolio/internal/httputil"
	"workfolio/internal/model"
	"workfolio/internal/service"
	"workfolio/internal/transport/http/middleware"
)

// UserHandler serves account pages. Mutating routes sit behind the
// ownership gate, so the principal is the account being edited.
type UserHandler struct {
	base
	userService *service.UserService
}

func newUserHandler(b base, userService *service.UserService) *UserHandler {
	return &UserHandler{base: b, userService: userService}
}

func userPath(username string) string {
	return "/users/" + url.PathEscape(username)
}

// Show handles GET /users/{username}
func (h *UserHandler) Show(w http.ResponseWriter, r *http.Request) {
	view, err := h.userService.View(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		h.fail(w, r, err, "/")
		return
	}
	h.page(w, r, "user", view)
}

// Edit handles GET /users/{username}/edit
func (h *UserHandler) Edit(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromContext(r.Context())
	user, err := h.userService.GetByID(r.Context(), p.ID)
	if err != nil {
		h.fail(w, r, err, "/")
		return
	}
	h.page(w, r, "edit_user", user)
}

// Update handles PATCH /users/{username}. Omitted fields are left unchanged.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromContext(r.Context())
	form := userPath(p.Username) + "/edit"
	if err := parseForm(w, r); err != nil {
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	req := &model.UpdateAccountRequest{}
	if v, ok := formValue(r, "username"); ok {
		req.Username = &v
	}
	if v, ok := formValue(r, "phoneNumber"); ok {
		req.PhoneNumber = &v
	}

	user, err := h.userService.UpdateAccount(r.Context(), p.ID, req)
	if err != nil {
		h.fail(w, r, err, form)
		return
	}
	h.done(w, r, userPath(user.Username), "Your account has been updated.")
}

// EditPassword handles GET /password/{username}/edit_password
func (h *UserHandler) EditPassword(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "edit_password", nil)
}

// UpdatePassword handles PATCH /password/{username}/edit_password
func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromContext(r.Context())
	if err := parseForm(w, r); err != nil {
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	if err := h.userService.ChangePassword(r.Context(), p.ID, r.FormValue("password")); err != nil {
		h.fail(w, r, err, "/password/"+url.PathEscape(p.Username)+"/edit_password")
		return
	}
	h.done(w, r, userPath(p.Username), "Password has been updated.")
}

// Delete handles DELETE /delete/{username}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromContext(r.Context())
	if err := h.userService.Delete(r.Context(), p.ID); err != nil {
		h.fail(w, r, err, userPath(p.Username))
		return
	}
	h.sessions.Logout(w, r)
	h.done(w, r, "/login", "Your account and all related items have been deleted.")
}

// AddFriend handles POST /users/{username}/add: {username} is appended to
// the caller's own friends list.
func (h *UserHandler) AddFriend(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromContext(r.Context())
	if err := h.userService.AddFriend(r.Context(), p.ID, chi.URLParam(r, "username")); err != nil {
		h.fail(w, r, err, userPath(p.Username))
		return
	}
	h.done(w, r, userPath(p.Username), "Friend added.")
}
