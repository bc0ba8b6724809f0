package middleware

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"workfolio/internal/httputil"
	"workfolio/internal/model"
	"workfolio/internal/service"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// requestSessionKey holds the *requestSession for the current request
	requestSessionKey contextKey = "request_session"

	// CookieName is the session cookie
	CookieName = "workfolio_session"

	// LoginPath is where unauthenticated requests are sent.
	LoginPath = "/login"

	msgLoginRequired = "You must be logged in to see this page."
)

// requestSession is mutable so Login/Logout can rebind the session mid-request.
type requestSession struct {
	session   *model.Session
	principal *model.Principal
}

// Sessions is the session gate: it resolves the cookie into a principal,
// guards authenticated routes and carries flash messages.
type Sessions struct {
	svc    *service.SessionService
	secure bool
	log    *zap.Logger
}

func NewSessions(svc *service.SessionService, secureCookie bool, log *zap.Logger) *Sessions {
	return &Sessions{svc: svc, secure: secureCookie, log: log}
}

// Load resolves the session cookie for every request. A bad or missing
// cookie just means no principal.
func (s *Sessions) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := &requestSession{}

		if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
			sess, principal, err := s.svc.Resolve(r.Context(), cookie.Value)
			if err != nil {
				s.log.Error("session lookup failed", zap.Error(err))
				httputil.WriteUnavailable(w)
				return
			}
			state.session = sess
			state.principal = principal
		}

		ctx := context.WithValue(r.Context(), requestSessionKey, state)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth sends unauthenticated requests to the login page with an info flash.
func (s *Sessions) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if PrincipalFromContext(r.Context()) == nil {
			s.RedirectToLogin(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RedirectToLogin flashes the login notice and answers 303 /login.
func (s *Sessions) RedirectToLogin(w http.ResponseWriter, r *http.Request) {
	s.Flash(w, r, model.FlashInfo, msgLoginRequired)
	httputil.Redirect(w, r, LoginPath)
}

// Flash queues a message for the next page. Anonymous visitors get a
// flash-only session so the message survives the redirect.
func (s *Sessions) Flash(w http.ResponseWriter, r *http.Request, kind, message string) {
	state := stateFromContext(r.Context())
	if state == nil {
		return
	}
	if state.session == nil {
		token, sess, err := s.svc.Issue(r.Context(), 0)
		if err != nil {
			s.log.Warn("failed to start flash session", zap.Error(err))
			return
		}
		s.setCookie(w, token)
		state.session = sess
	}
	if err := s.svc.AddFlash(r.Context(), state.session.ID, kind, message); err != nil {
		s.log.Warn("failed to store flash", zap.String("kind", kind), zap.Error(err))
	}
}

// Flashes drains the pending messages for this render.
func (s *Sessions) Flashes(r *http.Request) model.Flashes {
	state := stateFromContext(r.Context())
	if state == nil || state.session == nil {
		return model.Flashes{Infos: []string{}, Errors: []string{}}
	}
	flashes, err := s.svc.PopFlashes(r.Context(), state.session.ID)
	if err != nil {
		s.log.Warn("failed to read flashes", zap.Error(err))
		return model.Flashes{Infos: []string{}, Errors: []string{}}
	}
	return flashes
}

// Login replaces any current session with one bound to user.
func (s *Sessions) Login(w http.ResponseWriter, r *http.Request, user *model.User) error {
	state := stateFromContext(r.Context())
	if state != nil && state.session != nil {
		if err := s.svc.Destroy(r.Context(), state.session.ID); err != nil {
			s.log.Warn("failed to drop previous session", zap.Error(err))
		}
	}

	token, sess, err := s.svc.Issue(r.Context(), user.ID)
	if err != nil {
		return err
	}
	s.setCookie(w, token)
	if state != nil {
		state.session = sess
		state.principal = &model.Principal{ID: user.ID, Username: user.Username, SessionID: sess.ID}
	}
	return nil
}

// Logout destroys the session and clears the cookie.
func (s *Sessions) Logout(w http.ResponseWriter, r *http.Request) {
	state := stateFromContext(r.Context())
	if state != nil && state.session != nil {
		if err := s.svc.Destroy(r.Context(), state.session.ID); err != nil {
			s.log.Warn("failed to destroy session", zap.Error(err))
		}
		state.session = nil
		state.principal = nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Sessions) setCookie(w http.ResponseWriter, token string) {
	ttl := s.svc.TTL()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func stateFromContext(ctx context.Context) *requestSession {
	state, _ := ctx.Value(requestSessionKey).(*requestSession)
	return state
}

// PrincipalFromContext returns the authenticated actor, or nil.
func PrincipalFromContext(ctx context.Context) *model.Principal {
	if state := stateFromContext(ctx); state != nil {
		return state.principal
	}
	return nil
}

// SessionFromContext returns the current session, or nil.
func SessionFromContext(ctx context.Context) *model.Session {
	if state := stateFromContext(ctx); state != nil {
		return state.session
	}
	return nil
}
