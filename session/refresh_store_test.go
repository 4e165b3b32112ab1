package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RefreshStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRefreshStore(rdb, time.Hour), mr
}

func TestRefreshStoreCreateGetDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.NoError(t, s.Create(ctx, "tok-1", "2021-00001"))
	rs, err := s.Get(ctx, "tok-1")
	require.NoError(t, err)
	require.Equal(t, "2021-00001", rs.Username)
	require.Greater(t, rs.ExpiresAt, rs.IssuedAt)

	require.NoError(t, s.Delete(ctx, "tok-1"))
	_, err = s.Get(ctx, "tok-1")
	require.ErrorIs(t, err, ErrUnknownToken)
}

func TestRefreshStoreExpires(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	require.NoError(t, s.Create(ctx, "tok-1", "admin"))
	mr.FastForward(2 * time.Hour)
	_, err := s.Get(ctx, "tok-1")
	require.ErrorIs(t, err, ErrUnknownToken)
}

func TestRefreshStoreRevokeAllForUser(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.NoError(t, s.Create(ctx, "a", "prof"))
	require.NoError(t, s.Create(ctx, "b", "prof"))
	require.NoError(t, s.Create(ctx, "c", "other"))

	require.NoError(t, s.RevokeAllForUser(ctx, "prof"))
	for _, id := range []string{"a", "b"} {
		_, err := s.Get(ctx, id)
		require.ErrorIs(t, err, ErrUnknownToken)
	}
	rs, err := s.Get(ctx, "c")
	require.NoError(t, err)
	require.Equal(t, "other", rs.Username)
}
