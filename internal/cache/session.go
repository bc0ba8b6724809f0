package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"workfolio/internal/model"
)

const (
	// SessionPrefix is the key prefix for session records
	SessionPrefix = "session:"

	// FlashPrefix is the key prefix for per-session flash lists
	FlashPrefix = "flash:"

	// MaxFlashes bounds each flash list so an unread backlog cannot grow forever
	MaxFlashes = 20
)

// SessionStore keeps server-side sessions and their one-shot flash messages.
type SessionStore interface {
	// Create stores a new session for userID (0 for anonymous) that expires after ttl.
	Create(ctx context.Context, userID int64, ttl time.Duration) (*model.Session, error)

	// Get returns the session, or model.ErrSessionNotFound once it is gone or expired.
	Get(ctx context.Context, id string) (*model.Session, error)

	// Delete removes the session and any pending flashes.
	Delete(ctx context.Context, id string) error

	// AddFlash appends a message to the kind list (model.FlashInfo or model.FlashError).
	AddFlash(ctx context.Context, id, kind, message string) error

	// PopFlashes drains both flash lists in one round trip.
	PopFlashes(ctx context.Context, id string) (model.Flashes, error)
}

// RedisSessionStore implements SessionStore with one string key per session
// and two lists per session for flashes.
type RedisSessionStore struct {
	client *redis.Client
	log    *zap.Logger
}

func NewSessionStore(client *redis.Client, log *zap.Logger) SessionStore {
	return &RedisSessionStore{client: client, log: log}
}

func sessionKey(id string) string {
	return SessionPrefix + id
}

func flashKey(id, kind string) string {
	return fmt.Sprintf("%s%s:%s", FlashPrefix, id, kind)
}

func (s *RedisSessionStore) Create(ctx context.Context, userID int64, ttl time.Duration) (*model.Session, error) {
	now := time.Now().UTC()
	sess := &model.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sess.ID), data, ttl).Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.log.Debug("session created", zap.String("session", sess.ID), zap.Int64("user_id", userID))
	return sess, nil
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, model.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var sess model.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if sess.IsExpired() {
		return nil, model.ErrSessionNotFound
	}
	return &sess, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	err := s.client.Del(ctx,
		sessionKey(id),
		flashKey(id, model.FlashInfo),
		flashKey(id, model.FlashError),
	).Err()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// AddFlash uses a pipeline: RPUSH + LTRIM (keep newest MaxFlashes) + EXPIRE.
// Flash lists share the session's remaining lifetime.
func (s *RedisSessionStore) AddFlash(ctx context.Context, id, kind, message string) error {
	if kind != model.FlashInfo && kind != model.FlashError {
		return fmt.Errorf("unknown flash kind %q", kind)
	}

	ttl, err := s.client.TTL(ctx, sessionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("read session ttl: %w", err)
	}
	if ttl <= 0 {
		return model.ErrSessionNotFound
	}

	key := flashKey(id, kind)
	pipe := s.client.Pipeline()
	pipe.RPush(ctx, key, message)
	pipe.LTrim(ctx, key, -MaxFlashes, -1)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn("add flash failed", zap.String("session", id), zap.Error(err))
		return fmt.Errorf("add flash: %w", err)
	}
	return nil
}

// PopFlashes reads and clears both lists inside a MULTI so a concurrent
// AddFlash lands either in this render or the next one.
func (s *RedisSessionStore) PopFlashes(ctx context.Context, id string) (model.Flashes, error) {
	infoKey := flashKey(id, model.FlashInfo)
	errKey := flashKey(id, model.FlashError)

	var infos, errs *redis.StringSliceCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		infos = pipe.LRange(ctx, infoKey, 0, -1)
		errs = pipe.LRange(ctx, errKey, 0, -1)
		pipe.Del(ctx, infoKey, errKey)
		return nil
	})
	if err != nil {
		return model.Flashes{}, fmt.Errorf("pop flashes: %w", err)
	}

	return model.Flashes{
		Infos:  orEmpty(infos.Val()),
		Errors: orEmpty(errs.Val()),
	}, nil
}

func orEmpty(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
