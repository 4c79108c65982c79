package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	auditdomain "github.com/bukusaha/bukusaha/internal/audit/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectCustomer     = "customer"
	ObjectTransaction  = "transaction"
	ObjectReport       = "report"
	ObjectInvoice      = "invoice"
	ObjectTransfer     = "transfer"
	ObjectAuditLog     = "audit_log"
	ObjectOrganization = "organization"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"

	ActionInvoiceVoid   = "invoice.void"
	ActionTransferRun   = "transfer.run"
	ActionMemberManage  = "member.manage"
	ActionReportView    = "report.view"
	ActionAuditLogView  = "audit_log.view"
	ActionInvoiceRender = "invoice.render"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, actor, orgID, object, action string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrInvalidActor
	}
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return ErrInvalidOrganization
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject, roleName, err := s.resolveActor(ctx, actor, orgID)
	if err != nil {
		s.auditDenied(ctx, object, action)
		return err
	}

	domain := fmt.Sprintf("org:%s", orgID)
	if err := s.ensureGrouping(subject, roleName, domain); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, domain, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.auditDenied(ctx, object, action)
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) resolveActor(ctx context.Context, actor, orgID string) (string, string, error) {
	if actor == "system" {
		return actor, "role:system", nil
	}
	if strings.HasPrefix(actor, "user:") {
		userID, err := snowflake.ParseString(strings.TrimPrefix(actor, "user:"))
		if err != nil || userID == 0 {
			return "", "", ErrInvalidActor
		}
		parsedOrgID, err := snowflake.ParseString(orgID)
		if err != nil || parsedOrgID == 0 {
			return "", "", ErrInvalidOrganization
		}
		role, err := s.roleForUser(ctx, parsedOrgID, userID)
		if err != nil {
			return "", "", err
		}
		return actor, fmt.Sprintf("role:%s", strings.ToLower(role)), nil
	}
	return "", "", ErrInvalidActor
}

func (s *ServiceImpl) roleForUser(ctx context.Context, orgID, userID snowflake.ID) (string, error) {
	var row struct {
		Role string `gorm:"column:role"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT role
		 FROM organization_members
		 WHERE org_id = ? AND user_id = ?
		 LIMIT 1`,
		orgID,
		userID,
	).Scan(&row).Error; err != nil {
		return "", err
	}

	role := strings.TrimSpace(row.Role)
	if role == "" {
		return "", ErrForbidden
	}
	return role, nil
}

func (s *ServiceImpl) ensureGrouping(subject, roleName, domain string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", domain)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName, domain)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName, domain)
	return err
}

func (s *ServiceImpl) auditDenied(ctx context.Context, object, action string) {
	if s.auditSvc == nil {
		return
	}
	_ = s.auditSvc.Record(ctx, auditdomain.Entry{
		Action:     "authorization.denied",
		TargetType: "authorization",
		TargetID:   object,
		Metadata: map[string]any{
			"object": object,
			"action": action,
		},
	})
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	crud := func(role, object string) [][]string {
		return [][]string{
			{role, object, ActionView},
			{role, object, ActionCreate},
			{role, object, ActionUpdate},
			{role, object, ActionDelete},
		}
	}

	policies := [][]string{
		// Staff work the books but cannot manage the organization.
		{"role:staff", ObjectCustomer, ActionView},
		{"role:staff", ObjectCustomer, ActionCreate},
		{"role:staff", ObjectCustomer, ActionUpdate},
		{"role:staff", ObjectTransaction, ActionView},
		{"role:staff", ObjectTransaction, ActionCreate},
		{"role:staff", ObjectTransaction, ActionUpdate},
		{"role:staff", ObjectReport, ActionReportView},
		{"role:staff", ObjectInvoice, ActionView},
		{"role:staff", ObjectInvoice, ActionInvoiceRender},

		{"role:admin", ObjectReport, ActionReportView},
		{"role:admin", ObjectTransfer, ActionTransferRun},
		{"role:admin", ObjectInvoice, ActionInvoiceRender},
		{"role:admin", ObjectInvoice, ActionInvoiceVoid},
		{"role:admin", ObjectAuditLog, ActionAuditLogView},

		{"role:owner", ObjectReport, ActionReportView},
		{"role:owner", ObjectTransfer, ActionTransferRun},
		{"role:owner", ObjectInvoice, ActionInvoiceRender},
		{"role:owner", ObjectInvoice, ActionInvoiceVoid},
		{"role:owner", ObjectAuditLog, ActionAuditLogView},
		{"role:owner", ObjectOrganization, ActionMemberManage},
		{"role:owner", ObjectOrganization, ActionUpdate},
	}
	for _, object := range []string{ObjectCustomer, ObjectTransaction, ObjectInvoice} {
		policies = append(policies, crud("role:admin", object)...)
		policies = append(policies, crud("role:owner", object)...)
		policies = append(policies, crud("role:system", object)...)
	}
	policies = append(policies,
		[]string{"role:system", ObjectReport, ActionReportView},
		[]string{"role:system", ObjectTransfer, ActionTransferRun},
		[]string{"role:system", ObjectAuditLog, ActionAuditLogView},
	)

	for _, policy := range policies {
		if len(policy) < 3 {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
