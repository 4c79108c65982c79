package authorization

import (
	"context"
	"errors"
)

type Service interface {
	// Authorize checks whether actor (user:<id> or system) may perform
	// action on object within the organization.
	Authorize(ctx context.Context, actor, orgID, object, action string) error
}

var (
	ErrInvalidActor        = errors.New("invalid_actor")
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidObject       = errors.New("invalid_object")
	ErrInvalidAction       = errors.New("invalid_action")
	ErrForbidden           = errors.New("forbidden")
)
