package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/prize_address/internal/models"
	"github.com/GTDGit/prize_address/internal/utils"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func newTestStore() (*MemorySessionStore, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewMemorySessionStore()
	store.now = clock.now
	return store, clock
}

func TestMemorySessionStore_SaveGetCopies(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	session := &models.FormSession{ID: "s1", SiteName: "thaideal", State: models.FormState{Province: 10}}
	require.NoError(t, store.Save(ctx, session, time.Hour))

	session.State.Province = 20
	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 10, got.State.Province)

	got.State.Province = 30
	again, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 10, again.State.Province)
}

func TestMemorySessionStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store, clock := newTestStore()

	require.NoError(t, store.Save(ctx, &models.FormSession{ID: "s1"}, time.Minute))
	require.NoError(t, store.Save(ctx, &models.FormSession{ID: "s2"}, time.Hour))

	clock.t = clock.t.Add(2 * time.Minute)
	_, err := store.Get(ctx, "s1")
	assert.ErrorIs(t, err, utils.ErrSessionNotFound)

	clock.t = clock.t.Add(2 * time.Hour)
	assert.Equal(t, 1, store.Sweep())
	_, err = store.Get(ctx, "s2")
	assert.ErrorIs(t, err, utils.ErrSessionNotFound)
}

func TestMemorySessionStore_SubmitLock(t *testing.T) {
	ctx := context.Background()
	store, clock := newTestStore()

	ok, err := store.AcquireSubmitLock(ctx, "s1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.AcquireSubmitLock(ctx, "s1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire while held")

	require.NoError(t, store.ReleaseSubmitLock(ctx, "s1"))
	ok, _ = store.AcquireSubmitLock(ctx, "s1", time.Minute)
	assert.True(t, ok)

	clock.t = clock.t.Add(2 * time.Minute)
	ok, _ = store.AcquireSubmitLock(ctx, "s1", time.Minute)
	assert.True(t, ok, "expired lock is free")
}

func TestMemorySessionStore_Delete(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	require.NoError(t, store.Save(ctx, &models.FormSession{ID: "s1"}, time.Hour))
	_, _ = store.AcquireSubmitLock(ctx, "s1", time.Hour)
	require.NoError(t, store.Delete(ctx, "s1"))

	_, err := store.Get(ctx, "s1")
	assert.ErrorIs(t, err, utils.ErrSessionNotFound)
	ok, _ := store.AcquireSubmitLock(ctx, "s1", time.Hour)
	assert.True(t, ok)
}

func TestRedisSessionStore_Keys(t *testing.T) {
	s := NewRedisSessionStore(nil)
	assert.Equal(t, "form:session:abc", s.keySession("abc"))
	assert.Equal(t, "form:submit:abc", s.keySubmitLock("abc"))
}
