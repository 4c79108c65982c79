package service

import (
	"context"
	"strings"
	"time"

	"github.com/bukusaha/bukusaha/internal/organization/domain"
	"github.com/bukusaha/bukusaha/internal/orgcontext"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
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
		log:   p.Log.Named("organization.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateOrganizationRequest) (domain.Organization, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Organization{}, domain.ErrInvalidName
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "IDR"
	}
	if len(currency) != 3 {
		return domain.Organization{}, domain.ErrInvalidCurrency
	}

	now := time.Now().UTC()
	org := domain.Organization{
		ID:        s.genID.Generate(),
		Name:      name,
		Currency:  currency,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &org); err != nil {
			return err
		}
		if req.OwnerID == 0 {
			return nil
		}
		member := domain.OrganizationMember{
			ID:        s.genID.Generate(),
			OrgID:     org.ID,
			UserID:    req.OwnerID,
			Role:      domain.RoleOwner,
			CreatedAt: now,
		}
		return s.repo.InsertMember(ctx, tx, &member)
	})
	if err != nil {
		return domain.Organization{}, err
	}

	return org, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Organization, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return domain.Organization{}, domain.ErrInvalidID
	}

	org, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Organization{}, err
	}
	if org == nil {
		return domain.Organization{}, domain.ErrNotFound
	}
	return *org, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateOrganizationRequest) (domain.Organization, error) {
	org, err := s.GetByID(ctx, req.ID)
	if err != nil {
		return domain.Organization{}, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		org.Name = name
	}
	if currency := strings.ToUpper(strings.TrimSpace(req.Currency)); currency != "" {
		if len(currency) != 3 {
			return domain.Organization{}, domain.ErrInvalidCurrency
		}
		org.Currency = currency
	}
	org.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, &org); err != nil {
		return domain.Organization{}, err
	}
	return org, nil
}

func (s *Service) ListForUser(ctx context.Context, userID snowflake.ID) ([]domain.Organization, error) {
	items, err := s.repo.ListByUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	orgs := make([]domain.Organization, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		orgs = append(orgs, *item)
	}
	return orgs, nil
}

func (s *Service) AddMember(ctx context.Context, req domain.AddMemberRequest) (domain.OrganizationMember, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.OrganizationMember{}, domain.ErrInvalidID
	}

	userID, err := snowflake.ParseString(strings.TrimSpace(req.UserID))
	if err != nil || userID == 0 {
		return domain.OrganizationMember{}, domain.ErrInvalidID
	}

	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = domain.RoleStaff
	}
	if !domain.ValidRole(role) {
		return domain.OrganizationMember{}, domain.ErrInvalidRole
	}

	existing, err := s.repo.FindMember(ctx, s.db, orgID, userID)
	if err != nil {
		return domain.OrganizationMember{}, err
	}
	if existing != nil {
		return domain.OrganizationMember{}, domain.ErrMemberExists
	}

	member := domain.OrganizationMember{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.InsertMember(ctx, s.db, &member); err != nil {
		return domain.OrganizationMember{}, err
	}
	return member, nil
}

func (s *Service) MemberRole(ctx context.Context, orgID, userID snowflake.ID) (string, error) {
	member, err := s.repo.FindMember(ctx, s.db, orgID, userID)
	if err != nil {
		return "", err
	}
	if member == nil {
		return "", domain.ErrNotMember
	}
	return member.Role, nil
}
