package handler

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"workfolio/internal/httputil"
	"workfolio/internal/model"
	"workfolio/internal/service"
)

type uploadFunc func(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error)

// MediaHandler uploads images to R2 and resolves image form fields, which
// may carry either a file or a URL.
type MediaHandler struct {
	base
	mediaService *service.MediaService
}

func newMediaHandler(b base, mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{base: b, mediaService: mediaService}
}

// UploadProfileImage handles POST /media/profile_image
func (h *MediaHandler) UploadProfileImage(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, h.mediaService.UploadProfileImage)
}

// UploadPortfolioImage handles POST /media/portfolio_image
func (h *MediaHandler) UploadPortfolioImage(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, h.mediaService.UploadPortfolioImage)
}

func (h *MediaHandler) upload(w http.ResponseWriter, r *http.Request, fn uploadFunc) {
	if err := parseForm(w, r); err != nil {
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		httputil.WriteBadRequest(w, "An image file is required")
		return
	}
	defer file.Close()

	res, err := fn(r.Context(), file, header)
	if err != nil {
		h.fail(w, r, err, r.URL.Path)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

// imageField returns the reference for an image field: the uploaded file's
// URL when a file was sent, the submitted text otherwise.
func (h *MediaHandler) imageField(r *http.Request, field string, fn uploadFunc) (string, error) {
	file, header, err := r.FormFile(field)
	switch {
	case err == nil:
		defer file.Close()
		res, err := fn(r.Context(), file, header)
		if err != nil {
			return "", err
		}
		return res.URL, nil
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return strings.TrimSpace(r.FormValue(field)), nil
	default:
		return "", err
	}
}

func (h *MediaHandler) profileImage(r *http.Request, field string) (string, error) {
	return h.imageField(r, field, h.mediaService.UploadProfileImage)
}

func (h *MediaHandler) portfolioImage(r *http.Request, field string) (string, error) {
	return h.imageField(r, field, h.mediaService.UploadPortfolioImage)
}
