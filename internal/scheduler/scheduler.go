package scheduler

import (
	"context"
	"time"

	authdomain "github.com/bukusaha/bukusaha/internal/auth/domain"
	"github.com/bukusaha/bukusaha/internal/clock"
	"go.uber.org/zap"
)

const (
	defaultInterval    = time.Hour
	defaultRetainAfter = 24 * time.Hour
)

// SessionJanitor periodically deletes sessions that expired or were
// revoked longer than the retention window ago. Recently expired rows
// are kept so audit trails can still resolve a session id.
type SessionJanitor struct {
	sessions authdomain.SessionRepository
	clock    clock.Clock
	log      *zap.Logger

	interval time.Duration
	retain   time.Duration

	stop chan struct{}
	done chan struct{}
}

func NewSessionJanitor(sessions authdomain.SessionRepository, clk clock.Clock, log *zap.Logger) *SessionJanitor {
	return &SessionJanitor{
		sessions: sessions,
		clock:    clk,
		log:      log.Named("scheduler.sessions"),
		interval: defaultInterval,
		retain:   defaultRetainAfter,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (j *SessionJanitor) Start() {
	go j.loop()
}

func (j *SessionJanitor) Stop() {
	close(j.stop)
	<-j.done
}

func (j *SessionJanitor) loop() {
	defer close(j.done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.stop:
			return
		case <-ticker.C:
			j.RunOnce(context.Background())
		}
	}
}

// RunOnce executes a single sweep. Exposed for tests and manual runs.
func (j *SessionJanitor) RunOnce(ctx context.Context) {
	cutoff := j.clock.Now().Add(-j.retain)
	deleted, err := j.sessions.DeleteExpiredSessions(ctx, cutoff)
	if err != nil {
		j.log.Warn("session sweep failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		j.log.Info("expired sessions removed", zap.Int64("count", deleted))
	}
}
