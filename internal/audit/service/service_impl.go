package service

import (
	"context"
	"strings"
	"time"

	"github.com/bukusaha/bukusaha/internal/audit/domain"
	obscontext "github.com/bukusaha/bukusaha/internal/observability/context"
	"github.com/bukusaha/bukusaha/internal/orgcontext"
	"github.com/bukusaha/bukusaha/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, entry domain.Entry) error {
	action := strings.TrimSpace(entry.Action)
	if action == "" {
		return domain.ErrInvalidAction
	}

	targetType := strings.TrimSpace(entry.TargetType)
	if targetType == "" {
		targetType = "unknown"
	}

	payload := map[string]any{}
	for key, value := range entry.Metadata {
		if key == "" {
			continue
		}
		payload[key] = value
	}
	if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
		payload["request_id"] = requestID
	}

	actorType, actorID := obscontext.ActorFromContext(ctx)

	record := domain.AuditLog{
		ID:         s.genID.Generate(),
		ActorType:  actorType,
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		Metadata:   datatypes.JSONMap(payload),
		CreatedAt:  time.Now().UTC(),
	}
	if orgID, ok := orgcontext.OrgIDFromContext(ctx); ok && orgID != 0 {
		record.OrgID = &orgID
	}
	if targetID := strings.TrimSpace(entry.TargetID); targetID != "" {
		record.TargetID = &targetID
	}

	if err := s.repo.Insert(ctx, s.db, &record); err != nil {
		s.log.Warn("failed to write audit log", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, req domain.ListAuditLogRequest) (domain.ListAuditLogResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ListAuditLogResponse{}, domain.ErrInvalidOrganization
	}

	if req.StartAt != nil && req.EndAt != nil && req.StartAt.After(*req.EndAt) {
		return domain.ListAuditLogResponse{}, domain.ErrInvalidTimeRange
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	rows, err := s.repo.List(ctx, s.db, orgID, req, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListAuditLogResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(rows, pageSize, func(l *domain.AuditLog) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        l.ID.String(),
			CreatedAt: l.CreatedAt.Format(time.RFC3339Nano),
		})
		return token
	})

	if len(rows) > int(pageSize) {
		rows = rows[:pageSize]
	}

	logs := make([]domain.AuditLog, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		logs = append(logs, *row)
	}

	return domain.ListAuditLogResponse{
		PageInfo: *pageInfo,
		Logs:     logs,
	}, nil
}
