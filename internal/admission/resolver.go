package admission

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/opptakhq/opptak/pkg/apperr"
	"github.com/opptakhq/opptak/pkg/models"
)

// MembershipSource is the slice of the user store the resolver needs.
type MembershipSource interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	ListMemberships(ctx context.Context, userID int64) ([]int64, error)
}

// Resolver maps a membership number to the caller's committee id set, with an
// optional Redis cache in front of the user store. Cache failures are logged
// and fall through to the store; a nil client disables caching.
type Resolver struct {
	users  MembershipSource
	cache  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewResolver(users MembershipSource, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *Resolver {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{users: users, cache: cache, ttl: ttl, logger: logger}
}

func membershipKey(userID int64) string {
	return fmt.Sprintf("memberships:%d", userID)
}

// Resolve returns the committee ids the user belongs to. A missing user is a
// not-found error; store failures surface as internal errors. An empty set is
// a valid result and means the user sits on no committee.
func (r *Resolver) Resolve(ctx context.Context, userID int64) ([]int64, error) {
	if r.cache != nil {
		raw, err := r.cache.Get(ctx, membershipKey(userID)).Result()
		switch {
		case err == nil:
			ids := []int64{}
			if jerr := json.Unmarshal([]byte(raw), &ids); jerr == nil {
				return ids, nil
			}
		case err != redis.Nil:
			r.logger.Warn("membership cache read failed", "err", err)
		}
	}

	u, err := r.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "membership lookup failed", err)
	}
	if u == nil {
		return nil, apperr.Newf(apperr.KindNotFound, "no user with membership number %d", userID)
	}

	ids, err := r.users.ListMemberships(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "membership lookup failed", err)
	}
	if ids == nil {
		ids = []int64{}
	}

	if r.cache != nil {
		raw, _ := json.Marshal(ids)
		if err := r.cache.Set(ctx, membershipKey(userID), raw, r.ttl).Err(); err != nil {
			r.logger.Warn("membership cache write failed", "err", err)
		}
	}
	return ids, nil
}

// Invalidate drops every cached membership set. Used after bulk user
// mutations such as the admin wipe.
func (r *Resolver) Invalidate(ctx context.Context) {
	if r.cache == nil {
		return
	}
	iter := r.cache.Scan(ctx, 0, "memberships:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.cache.Del(ctx, iter.Val()).Err(); err != nil {
			r.logger.Warn("membership cache invalidate failed", "key", iter.Val(), "err", err)
		}
	}
	if err := iter.Err(); err != nil {
		r.logger.Warn("membership cache scan failed", "err", err)
	}
}
