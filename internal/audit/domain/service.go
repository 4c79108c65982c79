package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bukusaha/bukusaha/pkg/db/pagination"
)

type Entry struct {
	Action     string
	TargetType string
	TargetID   string
	Metadata   map[string]any
}

type ListAuditLogRequest struct {
	PageToken string
	PageSize  int32
	Action    string
	StartAt   *time.Time
	EndAt     *time.Time
}

type ListAuditLogResponse struct {
	pagination.PageInfo
	Logs []AuditLog `json:"logs"`
}

type Service interface {
	// Record writes one audit entry. Failures are logged and returned but
	// callers treat the write as best-effort; a failed audit write never
	// rolls back the audited operation.
	Record(ctx context.Context, entry Entry) error
	List(context.Context, ListAuditLogRequest) (ListAuditLogResponse, error)
}

var (
	ErrInvalidAction       = errors.New("invalid_action")
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidTimeRange    = errors.New("invalid_time_range")
)
