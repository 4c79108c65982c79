package scheduler

import (
	"context"
	"testing"
	"time"

	authdomain "github.com/bukusaha/bukusaha/internal/auth/domain"
	"github.com/bukusaha/bukusaha/internal/auth/repository"
	"github.com/bukusaha/bukusaha/internal/clock"
	"github.com/bukusaha/bukusaha/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestJanitor(t *testing.T, now time.Time) (*SessionJanitor, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&authdomain.Session{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(6)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	_, sessions := repository.New(dbConn)
	janitor := NewSessionJanitor(sessions, clock.NewFakeClock(now), zap.NewNop())
	return janitor, dbConn, node
}

func seedSession(t *testing.T, dbConn *gorm.DB, node *snowflake.Node, expiresAt time.Time) snowflake.ID {
	t.Helper()
	session := authdomain.Session{
		ID:               node.Generate(),
		UserID:           node.Generate(),
		SessionTokenHash: "hash-" + node.Generate().String(),
		ExpiresAt:        expiresAt,
		CreatedAt:        expiresAt.Add(-time.Hour),
		LastSeenAt:       expiresAt.Add(-time.Hour),
	}
	if err := dbConn.Create(&session).Error; err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}
	return session.ID
}

func TestRunOnceDeletesOnlyStaleSessions(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	janitor, dbConn, node := newTestJanitor(t, now)

	stale := seedSession(t, dbConn, node, now.Add(-48*time.Hour))
	recent := seedSession(t, dbConn, node, now.Add(-time.Hour))
	live := seedSession(t, dbConn, node, now.Add(time.Hour))

	janitor.RunOnce(context.Background())

	var remaining []authdomain.Session
	if err := dbConn.Find(&remaining).Error; err != nil {
		t.Fatalf("failed to list sessions: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("expected 2 sessions to survive, got %d", len(remaining))
	}
	for _, s := range remaining {
		if s.ID == stale {
			t.Fatal("expected stale session to be deleted")
		}
		if s.ID != recent && s.ID != live {
			t.Fatalf("unexpected surviving session %s", s.ID)
		}
	}
}

func TestRunOnceKeepsRecentlyRevoked(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	janitor, dbConn, node := newTestJanitor(t, now)

	id := seedSession(t, dbConn, node, now.Add(time.Hour))
	revokedAt := now.Add(-time.Minute)
	err := dbConn.Model(&authdomain.Session{}).
		Where("id = ?", id).
		Update("revoked_at", revokedAt).Error
	if err != nil {
		t.Fatalf("failed to revoke session: %v", err)
	}

	janitor.RunOnce(context.Background())

	var count int64
	if err := dbConn.Model(&authdomain.Session{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected recently revoked session kept, got %d rows", count)
	}
}
