package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"workfolio/internal/model"
)

func newTestStore(t *testing.T) (SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewSessionStore(rdb, zap.NewNop()), mr
}

func TestSessionStore_CreateAndGet(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, 42, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.True(t, mr.Exists(SessionPrefix+sess.ID))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.UserID)
	assert.True(t, got.IsAuthenticated())
}

func TestSessionStore_GetMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
}

func TestSessionStore_ExpiresWithTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, 1, time.Minute)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
}

func TestSessionStore_DeleteClearsFlashes(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, 1, time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.AddFlash(ctx, sess.ID, model.FlashInfo, "hello"))

	require.NoError(t, store.Delete(ctx, sess.ID))

	assert.False(t, mr.Exists(SessionPrefix+sess.ID))
	assert.False(t, mr.Exists(flashKey(sess.ID, model.FlashInfo)))
}

func TestSessionStore_FlashesDrainOnce(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, 0, time.Hour)
	require.NoError(t, err)

	require.NoError(t, store.AddFlash(ctx, sess.ID, model.FlashInfo, "Account created"))
	require.NoError(t, store.AddFlash(ctx, sess.ID, model.FlashError, "Title already taken"))
	require.NoError(t, store.AddFlash(ctx, sess.ID, model.FlashInfo, "Welcome"))

	flashes, err := store.PopFlashes(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Account created", "Welcome"}, flashes.Infos)
	assert.Equal(t, []string{"Title already taken"}, flashes.Errors)

	flashes, err = store.PopFlashes(ctx, sess.ID)
	require.NoError(t, err)
	assert.Empty(t, flashes.Infos)
	assert.Empty(t, flashes.Errors)
}

func TestSessionStore_FlashListIsCapped(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, 0, time.Hour)
	require.NoError(t, err)
	for i := 0; i < MaxFlashes+5; i++ {
		require.NoError(t, store.AddFlash(ctx, sess.ID, model.FlashInfo, "msg"))
	}

	flashes, err := store.PopFlashes(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, flashes.Infos, MaxFlashes)
}

func TestSessionStore_AddFlashRejectsUnknownKindAndMissingSession(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, 0, time.Hour)
	require.NoError(t, err)

	assert.Error(t, store.AddFlash(ctx, sess.ID, "warning", "x"))
	assert.ErrorIs(t, store.AddFlash(ctx, "missing", model.FlashInfo, "x"), model.ErrSessionNotFound)
}
