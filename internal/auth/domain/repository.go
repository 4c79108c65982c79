package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id snowflake.ID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
}

type SessionRepository interface {
	CreateSession(ctx context.Context, session *Session) error
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (*Session, error)
	UpdateLastSeen(ctx context.Context, id snowflake.ID, seenAt time.Time) error
	UpdateActiveOrg(ctx context.Context, id snowflake.ID, orgID snowflake.ID) error
	RevokeSession(ctx context.Context, id snowflake.ID, revokedAt time.Time) error
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)
}
