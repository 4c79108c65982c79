package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateOrganizationRequest struct {
	Name     string
	Currency string
	OwnerID  snowflake.ID
}

type UpdateOrganizationRequest struct {
	ID       string
	Name     string
	Currency string
}

type AddMemberRequest struct {
	UserID string
	Role   string
}

type Service interface {
	Create(context.Context, CreateOrganizationRequest) (Organization, error)
	GetByID(ctx context.Context, id string) (Organization, error)
	Update(context.Context, UpdateOrganizationRequest) (Organization, error)
	ListForUser(ctx context.Context, userID snowflake.ID) ([]Organization, error)
	AddMember(context.Context, AddMemberRequest) (OrganizationMember, error)
	MemberRole(ctx context.Context, orgID, userID snowflake.ID) (string, error)
}

var (
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidRole     = errors.New("invalid_role")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
	ErrNotMember       = errors.New("not_member")
	ErrMemberExists    = errors.New("member_exists")
	ErrInvalidCurrency = errors.New("invalid_currency")
)
