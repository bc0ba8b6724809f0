package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"workfolio/internal/httputil"
	"workfolio/internal/model"
	"workfolio/internal/service"
)

const msgForbidden = "You do not have permission to do that."

// Ownership guards mutating routes with the authorization engine. It must
// run after Sessions.Load.
type Ownership struct {
	authz    *service.Authorizer
	sessions *Sessions
	log      *zap.Logger
}

func NewOwnership(authz *service.Authorizer, sessions *Sessions, log *zap.Logger) *Ownership {
	return &Ownership{authz: authz, sessions: sessions, log: log}
}

type check func(r *http.Request, p *model.Principal) error

// Account allows only the account named by {username}.
func (o *Ownership) Account(next http.Handler) http.Handler {
	return o.gate(next, func(r *http.Request, p *model.Principal) error {
		return o.authz.AuthorizeAccount(r.Context(), p, chi.URLParam(r, "username"))
	})
}

// Profile allows only the author of the profile on {username}.
func (o *Ownership) Profile(next http.Handler) http.Handler {
	return o.gate(next, func(r *http.Request, p *model.Principal) error {
		return o.authz.AuthorizeProfile(r.Context(), p, chi.URLParam(r, "username"))
	})
}

// Portfolio allows only the author of {portfolio}.
func (o *Ownership) Portfolio(next http.Handler) http.Handler {
	return o.gate(next, func(r *http.Request, p *model.Principal) error {
		return o.authz.AuthorizePortfolio(r.Context(), p, chi.URLParam(r, "portfolio"))
	})
}

// Comment allows only the author of {comment}. A malformed id is a denial.
func (o *Ownership) Comment(next http.Handler) http.Handler {
	return o.gate(next, func(r *http.Request, p *model.Principal) error {
		id, err := strconv.ParseInt(chi.URLParam(r, "comment"), 10, 64)
		if err != nil {
			return model.Deny(model.ResourceComment, "malformed id")
		}
		return o.authz.AuthorizeComment(r.Context(), p, id)
	})
}

// Job allows only the poster of {job}.
func (o *Ownership) Job(next http.Handler) http.Handler {
	return o.gate(next, func(r *http.Request, p *model.Principal) error {
		return o.authz.AuthorizeJob(r.Context(), p, chi.URLParam(r, "job"))
	})
}

func (o *Ownership) gate(next http.Handler, allowed check) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := PrincipalFromContext(r.Context())
		if p == nil {
			o.sessions.RedirectToLogin(w, r)
			return
		}

		err := allowed(r, p)
		switch {
		case err == nil:
			next.ServeHTTP(w, r)
		case errors.Is(err, model.ErrUnauthenticated):
			o.sessions.RedirectToLogin(w, r)
		case errors.Is(err, model.ErrForbidden):
			o.sessions.Flash(w, r, model.FlashError, msgForbidden)
			httputil.WriteForbidden(w, "/", msgForbidden)
		case errors.Is(err, model.ErrStoreUnavailable):
			httputil.WriteUnavailable(w)
		default:
			o.log.Error("ownership check failed", zap.String("path", r.URL.Path), zap.Error(err))
			httputil.WriteInternalError(w, "Internal server error")
		}
	})
}
