package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	authdomain "github.com/bukusaha/bukusaha/internal/auth/domain"
	"github.com/bukusaha/bukusaha/internal/auth/password"
	organizationdomain "github.com/bukusaha/bukusaha/internal/organization/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultOrgName       = "Main"
	defaultAdminEmail    = "admin@bukusaha.local"
	defaultAdminPassword = "admin-bukusaha"
	defaultAdminDisplay  = "Bukusaha Admin"
)

// EnsureMainOrg seeds the default organization and admin user so a fresh
// install is usable immediately.
func EnsureMainOrg(db *gorm.DB) error {
	return ensure(db, 0)
}

// EnsureMainOrgWithID seeds the default organization with a fixed ID.
func EnsureMainOrgWithID(db *gorm.DB, orgID int64) error {
	return ensure(db, orgID)
}

func ensure(db *gorm.DB, orgID int64) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := ensureMainOrgTx(ctx, tx, node, orgID)
		if err != nil {
			return err
		}

		user, err := ensureAdminTx(ctx, tx, node)
		if err != nil {
			return err
		}

		return ensureMemberTx(ctx, tx, node, org.ID, user.ID)
	})
}

func ensureMainOrgTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID int64) (*organizationdomain.Organization, error) {
	var org organizationdomain.Organization

	stmt := tx.WithContext(ctx)
	if orgID != 0 {
		stmt = stmt.Where("id = ?", orgID)
	} else {
		stmt = stmt.Where("name = ?", defaultOrgName)
	}

	err := stmt.First(&org).Error
	if err == nil {
		return &org, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	org = organizationdomain.Organization{
		ID:        node.Generate(),
		Name:      defaultOrgName,
		Currency:  "IDR",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if orgID != 0 {
		org.ID = snowflake.ID(orgID)
	}
	if err := tx.WithContext(ctx).Create(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func ensureAdminTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (*authdomain.User, error) {
	var user authdomain.User
	err := tx.WithContext(ctx).
		Where("email = ?", strings.ToLower(defaultAdminEmail)).
		First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := password.Hash(defaultAdminPassword)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user = authdomain.User{
		ID:           node.Generate(),
		ExternalID:   uuid.NewString(),
		DisplayName:  defaultAdminDisplay,
		Email:        strings.ToLower(defaultAdminEmail),
		PasswordHash: &hashed,
		IsDefault:    true,
		Metadata:     datatypes.JSONMap{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func ensureMemberTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID, userID snowflake.ID) error {
	var member organizationdomain.OrganizationMember
	err := tx.WithContext(ctx).
		Where("org_id = ? AND user_id = ?", orgID, userID).
		First(&member).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	member = organizationdomain.OrganizationMember{
		ID:        node.Generate(),
		OrgID:     orgID,
		UserID:    userID,
		Role:      organizationdomain.RoleOwner,
		CreatedAt: time.Now().UTC(),
	}
	return tx.WithContext(ctx).Create(&member).Error
}
