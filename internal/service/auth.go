package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"workfolio/internal/cache"
	"workfolio/internal/config"
	"workfolio/internal/model"
	"workfolio/internal/repository"
)

// SessionService issues and resolves cookie-backed sessions. The cookie holds
// an HS256 token whose "sid" claim names the Redis session record.
type SessionService struct {
	store  cache.SessionStore
	users  repository.UserRepository
	secret []byte
	ttl    time.Duration
	log    *zap.Logger
}

func NewSessionService(store cache.SessionStore, users repository.UserRepository, cfg *config.Config, log *zap.Logger) *SessionService {
	return &SessionService{
		store:  store,
		users:  users,
		secret: []byte(cfg.SessionSecret),
		ttl:    time.Duration(cfg.SessionMaxAge) * time.Second,
		log:    log,
	}
}

// TTL is the lifetime of a new or refreshed session.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Issue starts a session for userID (0 for an anonymous flash-only session)
// and returns the signed cookie value.
func (s *SessionService) Issue(ctx context.Context, userID int64) (string, *model.Session, error) {
	sess, err := s.store.Create(ctx, userID, s.ttl)
	if err != nil {
		return "", nil, err
	}
	token, err := s.sign(sess)
	if err != nil {
		return "", nil, err
	}
	return token, sess, nil
}

// Resolve maps a cookie value to its session and, when the session is bound
// to an account that still exists, the principal. Every failure that just
// means "not logged in" yields a nil principal and no error.
func (s *SessionService) Resolve(ctx context.Context, token string) (*model.Session, *model.Principal, error) {
	if token == "" {
		return nil, nil, nil
	}

	sid, err := s.parse(token)
	if err != nil {
		s.log.Debug("rejected session token", zap.Error(err))
		return nil, nil, nil
	}

	sess, err := s.store.Get(ctx, sid)
	if errors.Is(err, model.ErrSessionNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	if !sess.IsAuthenticated() {
		return sess, nil, nil
	}

	user, err := s.users.GetByID(ctx, sess.UserID)
	if errors.Is(err, model.ErrUserNotFound) {
		// Account deleted under a live session: drop the binding, keep flashes.
		sess.UserID = 0
		return sess, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	return sess, &model.Principal{ID: user.ID, Username: user.Username, SessionID: sess.ID}, nil
}

func (s *SessionService) Destroy(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}

func (s *SessionService) AddFlash(ctx context.Context, sessionID, kind, message string) error {
	return s.store.AddFlash(ctx, sessionID, kind, message)
}

func (s *SessionService) PopFlashes(ctx context.Context, sessionID string) (model.Flashes, error) {
	return s.store.PopFlashes(ctx, sessionID)
}

func (s *SessionService) sign(sess *model.Session) (string, error) {
	claims := jwt.MapClaims{
		"sid": sess.ID,
		"iat": sess.CreatedAt.Unix(),
		"exp": sess.ExpiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (s *SessionService) parse(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", model.ErrSessionExpired
		}
		return "", fmt.Errorf("%w: %v", model.ErrSessionInvalid, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", model.ErrSessionInvalid
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", model.ErrSessionInvalid
	}
	return sid, nil
}
