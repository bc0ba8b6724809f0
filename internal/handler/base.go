package handler

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"workfolio/internal/httputil"
	"workfolio/internal/model"
	"workfolio/internal/transport/http/middleware"
)

// maxFormSize bounds every form body, including up to three image files.
const maxFormSize = 3*model.MaxImageSizeBytes + 1<<20

// errBadForm reports a body that could not be parsed.
var errBadForm = errors.New("invalid form data")

// base carries what every page handler needs: flashes and error mapping.
type base struct {
	sessions *middleware.Sessions
	log      *zap.Logger
}

// page renders view with the flashes pending for this session.
func (b *base) page(w http.ResponseWriter, r *http.Request, view string, data interface{}) {
	httputil.WritePage(w, http.StatusOK, view, b.sessions.Flashes(r), data)
}

// done flashes info and redirects to location.
func (b *base) done(w http.ResponseWriter, r *http.Request, location, info string) {
	if info != "" {
		b.sessions.Flash(w, r, model.FlashInfo, info)
	}
	httputil.Redirect(w, r, location)
}

// conflictMessages are the user-facing texts for unique-constraint outcomes.
var conflictMessages = map[error]string{
	model.ErrUsernameExists:      "This user already exists. Please choose a different name.",
	model.ErrPortfolioTitleTaken: "A portfolio with that title already exists.",
	model.ErrPortfolioExists:     "Portfolio already exists.",
	model.ErrProfileExists:       "Profile already exists.",
	model.ErrJobTitleTaken:       "A job with that title already exists.",
}

var notFoundErrors = []error{
	model.ErrUserNotFound,
	model.ErrProfileNotFound,
	model.ErrPortfolioNotFound,
	model.ErrCommentNotFound,
	model.ErrJobNotFound,
}

var validationErrors = []error{
	model.ErrUsernameRequired,
	model.ErrPasswordRequired,
	model.ErrPhoneRequired,
	model.ErrFriendRequired,
	model.ErrTitleRequired,
	model.ErrTitleTooLong,
	model.ErrDescriptionRequired,
	model.ErrContentRequired,
	model.ErrContentTooLong,
	model.ErrJobTitleRequired,
	model.ErrCompanyRequired,
	model.ErrJobDescriptionRequired,
	model.ErrCompanyRatingInvalid,
}

// fail maps a service error onto the response. form is where a conflict
// sends the client back to.
func (b *base) fail(w http.ResponseWriter, r *http.Request, err error, form string) {
	switch {
	case errors.Is(err, errBadForm):
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	case errors.Is(err, model.ErrUnauthenticated):
		b.sessions.RedirectToLogin(w, r)
		return
	case errors.Is(err, model.ErrForbidden):
		b.sessions.Flash(w, r, model.FlashError, "You do not have permission to do that.")
		httputil.WriteForbidden(w, "/", "You do not have permission to do that.")
		return
	case errors.Is(err, model.ErrStoreUnavailable):
		b.log.Warn("store unavailable", zap.String("path", r.URL.Path), zap.Error(err))
		httputil.WriteUnavailable(w)
		return
	case errors.Is(err, model.ErrFileTooLarge):
		httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Image exceeds 5MB limit")
		return
	case errors.Is(err, model.ErrInvalidImageType):
		httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Unsupported image type. Allowed: jpeg, png, gif, webp")
		return
	case errors.Is(err, model.ErrMediaDisabled):
		httputil.WriteBadRequestWithCode(w, model.CodeMediaDisabled, "Image uploads are not available")
		return
	}

	for sentinel, msg := range conflictMessages {
		if errors.Is(err, sentinel) {
			b.sessions.Flash(w, r, model.FlashError, msg)
			httputil.WriteConflict(w, form, msg)
			return
		}
	}
	for _, sentinel := range notFoundErrors {
		if errors.Is(err, sentinel) {
			httputil.WriteNotFound(w, capitalize(sentinel.Error()))
			return
		}
	}
	for _, sentinel := range validationErrors {
		if errors.Is(err, sentinel) {
			httputil.WriteBadRequest(w, capitalize(sentinel.Error()))
			return
		}
	}

	b.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	httputil.WriteInternalError(w, "Internal server error")
}

// parseForm accepts multipart and urlencoded bodies.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	err := r.ParseMultipartForm(maxFormSize)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

// formValue returns the trimmed value and whether the field was sent at all.
func formValue(r *http.Request, key string) (string, bool) {
	if !r.Form.Has(key) {
		return "", false
	}
	return strings.TrimSpace(r.Form.Get(key)), true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
