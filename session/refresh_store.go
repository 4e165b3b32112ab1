package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnknownToken is returned for refresh tokens that expired or were revoked.
var ErrUnknownToken = errors.New("unknown refresh token")

// RefreshStore keeps opaque refresh tokens in redis, indexed per username so
// every token of an account can be revoked at once.
type RefreshStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRefreshStore(rdb *redis.Client, ttl time.Duration) *RefreshStore {
	return &RefreshStore{rdb: rdb, ttl: ttl}
}

type RefreshSession struct {
	Username  string `json:"sub"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

func key(id string) string              { return fmt.Sprintf("auth:refresh:%s", id) }
func userSetKey(username string) string { return fmt.Sprintf("auth:user_refresh:%s", username) }

func (s *RefreshStore) TTL() time.Duration { return s.ttl }

func (s *RefreshStore) Create(ctx context.Context, id, username string) error {
	now := time.Now()
	b, err := json.Marshal(RefreshSession{
		Username:  username,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	})
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key(id), b, s.ttl)
	pipe.SAdd(ctx, userSetKey(username), id)
	pipe.Expire(ctx, userSetKey(username), s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RefreshStore) Get(ctx context.Context, id string) (*RefreshSession, error) {
	b, err := s.rdb.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrUnknownToken
	}
	if err != nil {
		return nil, err
	}
	var rs RefreshSession
	if err := json.Unmarshal(b, &rs); err != nil {
		return nil, err
	}
	return &rs, nil
}

func (s *RefreshStore) Delete(ctx context.Context, id string) error {
	rs, _ := s.Get(ctx, id)
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key(id))
	if rs != nil {
		pipe.SRem(ctx, userSetKey(rs.Username), id)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// RevokeAllForUser drops every refresh token issued to username.
func (s *RefreshStore) RevokeAllForUser(ctx context.Context, username string) error {
	ids, err := s.rdb.SMembers(ctx, userSetKey(username)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	pipe := s.rdb.TxPipeline()
	for _, id := range ids {
		pipe.Del(ctx, key(id))
	}
	pipe.Del(ctx, userSetKey(username))
	_, err = pipe.Exec(ctx)
	return err
}
