// Package redis keeps MFA challenges in Redis so several service instances
// can share them. Accounts stay in the SQL store.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/domain"
	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/store"
	goredis "github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "auth:mfa:"
	maxRetries = 8
)

// ChallengeStore implements store.MFAChallenges. Each account owns one hash
// that expires together with its challenge.
type ChallengeStore struct {
	rdb *goredis.Client
}

func NewChallengeStore(rdb *goredis.Client) *ChallengeStore {
	return &ChallengeStore{rdb: rdb}
}

// Options builds client options from the service configuration.
func Options(addr, password string, db int) *goredis.Options {
	return &goredis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	}
}

func (s *ChallengeStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *ChallengeStore) Close() error { return s.rdb.Close() }

func key(accountID string) string { return keyPrefix + accountID }

func (s *ChallengeStore) Upsert(ctx context.Context, c domain.MFAChallenge) error {
	k := key(c.AccountID)
	_, err := s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, k)
		pipe.HSet(ctx, k,
			"id", c.ID,
			"code_hash", c.CodeHash,
			"attempts", c.AttemptsRemaining,
			"created_at", c.CreatedAt.UnixMilli(),
			"expires_at", c.ExpiresAt.UnixMilli(),
		)
		pipe.PExpireAt(ctx, k, c.ExpiresAt)
		return nil
	})
	return err
}

func (s *ChallengeStore) Get(ctx context.Context, accountID string) (domain.MFAChallenge, error) {
	fields, err := s.rdb.HGetAll(ctx, key(accountID)).Result()
	if err != nil {
		return domain.MFAChallenge{}, err
	}
	if len(fields) == 0 {
		return domain.MFAChallenge{}, store.ErrNotFound
	}
	return decode(accountID, fields)
}

func (s *ChallengeStore) DecrementAttempts(ctx context.Context, accountID, challengeID string) (int, error) {
	k := key(accountID)

	for range maxRetries {
		var remaining int
		err := s.rdb.Watch(ctx, func(tx *goredis.Tx) error {
			vals, err := tx.HMGet(ctx, k, "id", "attempts").Result()
			if err != nil {
				return err
			}
			id, _ := vals[0].(string)
			if id != challengeID {
				return store.ErrNotFound
			}
			attempts, err := strconv.Atoi(fmt.Sprint(vals[1]))
			if err != nil {
				return fmt.Errorf("redis: corrupt attempts for %s: %w", accountID, err)
			}
			if attempts <= 0 {
				return store.ErrNotFound
			}

			remaining = attempts - 1
			_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
				pipe.HSet(ctx, k, "attempts", remaining)
				return nil
			})
			return err
		}, k)

		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		if err != nil {
			return 0, err
		}
		return remaining, nil
	}
	return 0, store.ErrConflict
}

func (s *ChallengeStore) Consume(ctx context.Context, accountID, challengeID string) error {
	k := key(accountID)

	for range maxRetries {
		err := s.rdb.Watch(ctx, func(tx *goredis.Tx) error {
			id, err := tx.HGet(ctx, k, "id").Result()
			if errors.Is(err, goredis.Nil) || (err == nil && id != challengeID) {
				return store.ErrNotFound
			}
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
				pipe.Del(ctx, k)
				return nil
			})
			return err
		}, k)

		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		return err
	}
	return store.ErrConflict
}

// DeleteExpired is a no-op: Redis drops the hash when its TTL elapses.
func (s *ChallengeStore) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func decode(accountID string, f map[string]string) (domain.MFAChallenge, error) {
	attempts, err := strconv.Atoi(f["attempts"])
	if err != nil {
		return domain.MFAChallenge{}, fmt.Errorf("redis: corrupt attempts for %s: %w", accountID, err)
	}
	created, err := strconv.ParseInt(f["created_at"], 10, 64)
	if err != nil {
		return domain.MFAChallenge{}, fmt.Errorf("redis: corrupt created_at for %s: %w", accountID, err)
	}
	expires, err := strconv.ParseInt(f["expires_at"], 10, 64)
	if err != nil {
		return domain.MFAChallenge{}, fmt.Errorf("redis: corrupt expires_at for %s: %w", accountID, err)
	}

	return domain.MFAChallenge{
		ID:                f["id"],
		AccountID:         accountID,
		CodeHash:          f["code_hash"],
		AttemptsRemaining: attempts,
		CreatedAt:         time.UnixMilli(created).UTC(),
		ExpiresAt:         time.UnixMilli(expires).UTC(),
	}, nil
}
