package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidToken = errors.New("invalid token")

type AccessToken struct {
	ID        int64
	UserID    int64
	Abilities string
	ExpiresAt *time.Time
}

func (t AccessToken) Expired(at time.Time) bool {
	return t.ExpiresAt != nil && t.ExpiresAt.Before(at)
}

type AccessTokenRepository struct {
	db *sql.DB
}

func NewAccessTokenRepository(db *sql.DB) *AccessTokenRepository {
	return &AccessTokenRepository{db: db}
}

// HashToken returns the hex sha256 stored for a plain token.
func HashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// FindByPlainToken accepts either "<id>|<secret>" or a bare secret. Only the hash is ever queried.
func (r *AccessTokenRepository) FindByPlainToken(ctx context.Context, plain string) (*AccessToken, error) {
	plain = strings.TrimSpace(plain)
	if plain == "" {
		return nil, ErrInvalidToken
	}

	secret := plain
	var tokenID int64
	if idx := strings.IndexByte(plain, '|'); idx > 0 {
		id, err := strconv.ParseInt(plain[:idx], 10, 64)
		if err != nil {
			return nil, ErrInvalidToken
		}
		tokenID, secret = id, plain[idx+1:]
	}

	query := `
		SELECT id, user_id, COALESCE(abilities, ''), expires_at
		FROM personal_access_tokens
		WHERE token = $1
		  AND (expires_at IS NULL OR expires_at > $2)
	`
	args := []any{HashToken(secret), time.Now()}
	if tokenID > 0 {
		query += ` AND id = $3`
		args = append(args, tokenID)
	}

	var (
		tok       AccessToken
		expiresAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&tok.ID, &tok.UserID, &tok.Abilities, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("lookup token: %w", err)
	}
	if expiresAt.Valid {
		tok.ExpiresAt = &expiresAt.Time
	}
	return &tok, nil
}
