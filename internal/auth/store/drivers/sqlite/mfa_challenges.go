package sqlite

import (
	"context"
	"time"

	"github.com/Kishorekomminenik/CleanrMLP1-sub001/internal/auth/domain"
)

type mfaChallengesRepo struct {
	db DBTX
}

func (r *mfaChallengesRepo) Upsert(ctx context.Context, c domain.MFAChallenge) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO mfa_challenges (account_id, id, code_hash, attempts_remaining, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (account_id) DO UPDATE SET
			id                 = excluded.id,
			code_hash          = excluded.code_hash,
			attempts_remaining = excluded.attempts_remaining,
			created_at         = excluded.created_at,
			expires_at         = excluded.expires_at`,
		c.AccountID, c.ID, c.CodeHash, c.AttemptsRemaining,
		c.CreatedAt.UnixMilli(), c.ExpiresAt.UnixMilli(),
	)
	return err
}

func (r *mfaChallengesRepo) Get(ctx context.Context, accountID string) (domain.MFAChallenge, error) {
	var (
		c                  domain.MFAChallenge
		created, expiresAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT account_id, id, code_hash, attempts_remaining, created_at, expires_at
		FROM mfa_challenges
		WHERE account_id = ?`, accountID,
	).Scan(&c.AccountID, &c.ID, &c.CodeHash, &c.AttemptsRemaining, &created, &expiresAt)
	if err != nil {
		return domain.MFAChallenge{}, mapNotFound(err)
	}

	c.CreatedAt = time.UnixMilli(created).UTC()
	c.ExpiresAt = time.UnixMilli(expiresAt).UTC()
	return c, nil
}

func (r *mfaChallengesRepo) DecrementAttempts(ctx context.Context, accountID, challengeID string) (int, error) {
	var remaining int
	err := r.db.QueryRowContext(ctx, `
		UPDATE mfa_challenges
		SET attempts_remaining = attempts_remaining - 1
		WHERE account_id = ? AND id = ? AND attempts_remaining > 0
		RETURNING attempts_remaining`,
		accountID, challengeID,
	).Scan(&remaining)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return remaining, nil
}

func (r *mfaChallengesRepo) Consume(ctx context.Context, accountID, challengeID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM mfa_challenges WHERE account_id = ? AND id = ?`,
		accountID, challengeID,
	)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (r *mfaChallengesRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM mfa_challenges WHERE expires_at < ?`,
		now.UnixMilli(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
