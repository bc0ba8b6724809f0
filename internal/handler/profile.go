package handler

import (
	"net/http"
	"net/url"

	"workfolio/internal/model"
	"workfolio/internal/service"
	"workfolio/internal/transport/http/middleware"
)

type ProfileHandler struct {
	base
	userService *service.UserService
	media       *MediaHandler
}

func newProfileHandler(b base, userService *service.UserService, media *MediaHandler) *ProfileHandler {
	return &ProfileHandler{base: b, userService: userService, media: media}
}

// AddForm handles GET /profiles/add_profile/{username}
func (h *ProfileHandler) AddForm(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "add_profile", nil)
}

// Add handles POST /profiles/add_profile/{username}
func (h *ProfileHandler) Add(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromContext(r.Context())
	req, err := h.profileRequest(w, r)
	if err != nil {
		h.fail(w, r, err, "/profiles/add_profile/"+url.PathEscape(p.Username))
		return
	}

	if _, err := h.userService.CreateProfile(r.Context(), p.ID, req); err != nil {
		// An existing profile sends the user back to their page.
		h.fail(w, r, err, userPath(p.Username))
		return
	}
	h.done(w, r, userPath(p.Username), "Profile created for your account.")
}

// EditForm handles GET /profiles/edit_profile/{username}
func (h *ProfileHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromContext(r.Context())
	user, err := h.userService.GetByID(r.Context(), p.ID)
	if err != nil {
		h.fail(w, r, err, "/")
		return
	}
	if !user.HasProfile() {
		h.fail(w, r, model.ErrProfileNotFound, "/")
		return
	}
	h.page(w, r, "edit_profile", user.Profile)
}

// Update handles PATCH /profiles/edit_profile/{username}
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromContext(r.Context())
	req, err := h.profileRequest(w, r)
	if err != nil {
		h.fail(w, r, err, "/profiles/edit_profile/"+url.PathEscape(p.Username))
		return
	}

	if _, err := h.userService.UpdateProfile(r.Context(), p.ID, req); err != nil {
		h.fail(w, r, err, "/profiles/edit_profile/"+url.PathEscape(p.Username))
		return
	}
	h.done(w, r, userPath(p.Username), "Profile has been successfully updated.")
}

func (h *ProfileHandler) profileRequest(w http.ResponseWriter, r *http.Request) (*model.ProfileRequest, error) {
	if err := parseForm(w, r); err != nil {
		return nil, errBadForm
	}
	image, err := h.media.profileImage(r, "profileImage")
	if err != nil {
		return nil, err
	}
	return &model.ProfileRequest{
		Bio:          r.FormValue("bio"),
		Purpose:      r.FormValue("purpose"),
		Skills:       r.FormValue("skills"),
		ProfileImage: image,
	}, nil
}
