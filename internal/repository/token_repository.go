package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/sports-complex/internal/database"
	"github.com/iliyamo/sports-complex/internal/model"
)

// ResetTokenRepo persists password reset tokens (only the SHA-256 hash of
// the secret is stored, in token_hash).
type ResetTokenRepo struct{ db database.Querier }

func NewResetTokenRepo(db database.Querier) *ResetTokenRepo { return &ResetTokenRepo{db: db} }

// WithTx returns a copy of the repository bound to q.
func (r *ResetTokenRepo) WithTx(q database.Querier) *ResetTokenRepo { return &ResetTokenRepo{db: q} }

// Store inserts a token hash row.
func (r *ResetTokenRepo) Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO password_reset_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, exp.UTC())
	return err
}

// GetByHash loads a token regardless of state.  ErrTokenNotFound when absent.
func (r *ResetTokenRepo) GetByHash(ctx context.Context, tokenHash string) (model.PasswordResetToken, error) {
	var (
		t      model.PasswordResetToken
		usedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, token_hash, expires_at, used_at, created_at FROM password_reset_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &usedAt, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PasswordResetToken{}, ErrTokenNotFound
	}
	if err != nil {
		return model.PasswordResetToken{}, err
	}
	if usedAt.Valid {
		ut := usedAt.Time
		t.UsedAt = &ut
	}
	return t, nil
}

// MarkUsed sets used_at on an unused token.  It reports false when the
// token was already used, which makes concurrent redemption single-winner.
func (r *ResetTokenRepo) MarkUsed(ctx context.Context, id uint64, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE password_reset_tokens SET used_at=? WHERE id=? AND used_at IS NULL", at.UTC(), id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// InvalidateForUser marks every outstanding token of the user as used.
func (r *ResetTokenRepo) InvalidateForUser(ctx context.Context, userID uint64, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE password_reset_tokens SET used_at=? WHERE user_id=? AND used_at IS NULL", at.UTC(), userID)
	return err
}
