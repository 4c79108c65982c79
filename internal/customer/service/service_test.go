package service

import (
	"context"
	"testing"
	"time"

	"github.com/bukusaha/bukusaha/internal/customer/domain"
	"github.com/bukusaha/bukusaha/internal/customer/repository"
	"github.com/bukusaha/bukusaha/internal/orgcontext"
	transactiondomain "github.com/bukusaha/bukusaha/internal/transaction/domain"
	"github.com/bukusaha/bukusaha/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testOrgID int64 = 7000001

func newTestService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&domain.Customer{}, &transactiondomain.Transaction{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	svc := New(Params{
		DB:    dbConn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, dbConn, node
}

func orgCtx() context.Context {
	return orgcontext.WithOrgID(context.Background(), testOrgID)
}

func TestCreateRequiresOrgContext(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CreateCustomerRequest{Name: "Budi"})
	if err != domain.ErrInvalidOrganization {
		t.Fatalf("expected ErrInvalidOrganization, got %v", err)
	}
}

func TestCreateRejectsBadEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(orgCtx(), domain.CreateCustomerRequest{
		Name:  "Budi",
		Email: "not-an-email",
	})
	if err != domain.ErrInvalidEmail {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestCreateAndGetByID(t *testing.T) {
	svc, _, _ := newTestService(t)

	created, err := svc.Create(orgCtx(), domain.CreateCustomerRequest{
		Name:  "Budi Santoso",
		Email: "Budi@Example.com",
		Phone: "0812000111",
	})
	if err != nil {
		t.Fatalf("failed to create customer: %v", err)
	}
	if created.Email != "budi@example.com" {
		t.Fatalf("expected lowercased email, got %s", created.Email)
	}

	got, err := svc.GetByID(orgCtx(), created.ID.String())
	if err != nil {
		t.Fatalf("failed to get customer: %v", err)
	}
	if got.Name != "Budi Santoso" {
		t.Fatalf("expected name Budi Santoso, got %s", got.Name)
	}
}

func TestGetByIDScopedToOrg(t *testing.T) {
	svc, _, _ := newTestService(t)

	created, err := svc.Create(orgCtx(), domain.CreateCustomerRequest{Name: "Budi"})
	if err != nil {
		t.Fatalf("failed to create customer: %v", err)
	}

	otherOrg := orgcontext.WithOrgID(context.Background(), testOrgID+1)
	if _, err := svc.GetByID(otherOrg, created.ID.String()); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound across orgs, got %v", err)
	}
}

func TestUpdatePartialFields(t *testing.T) {
	svc, _, _ := newTestService(t)

	created, err := svc.Create(orgCtx(), domain.CreateCustomerRequest{
		Name:  "Budi",
		Phone: "0812000111",
	})
	if err != nil {
		t.Fatalf("failed to create customer: %v", err)
	}

	newPhone := "0812999888"
	updated, err := svc.Update(orgCtx(), domain.UpdateCustomerRequest{
		ID:    created.ID.String(),
		Phone: &newPhone,
	})
	if err != nil {
		t.Fatalf("failed to update customer: %v", err)
	}
	if updated.Phone != newPhone {
		t.Fatalf("expected phone %s, got %s", newPhone, updated.Phone)
	}
	if updated.Name != "Budi" {
		t.Fatalf("expected name untouched, got %s", updated.Name)
	}
}

func TestUpdateRejectsEmptyName(t *testing.T) {
	svc, _, _ := newTestService(t)

	created, err := svc.Create(orgCtx(), domain.CreateCustomerRequest{Name: "Budi"})
	if err != nil {
		t.Fatalf("failed to create customer: %v", err)
	}

	empty := "  "
	_, err = svc.Update(orgCtx(), domain.UpdateCustomerRequest{
		ID:   created.ID.String(),
		Name: &empty,
	})
	if err != domain.ErrInvalidName {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestDeleteBlockedByTransactions(t *testing.T) {
	svc, dbConn, node := newTestService(t)

	created, err := svc.Create(orgCtx(), domain.CreateCustomerRequest{Name: "Budi"})
	if err != nil {
		t.Fatalf("failed to create customer: %v", err)
	}

	customerID := created.ID
	tr := transactiondomain.Transaction{
		ID:         node.Generate(),
		OrgID:      snowflake.ID(testOrgID),
		OccurredAt: time.Now().UTC(),
		CustomerID: &customerID,
		Product:    "Kopi",
		SalePrice:  15000,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	if err := dbConn.Create(&tr).Error; err != nil {
		t.Fatalf("failed to insert transaction: %v", err)
	}

	if err := svc.Delete(orgCtx(), created.ID.String()); err != domain.ErrHasTransactions {
		t.Fatalf("expected ErrHasTransactions, got %v", err)
	}
}

func TestDeleteRemovesCustomer(t *testing.T) {
	svc, _, _ := newTestService(t)

	created, err := svc.Create(orgCtx(), domain.CreateCustomerRequest{Name: "Budi"})
	if err != nil {
		t.Fatalf("failed to create customer: %v", err)
	}

	if err := svc.Delete(orgCtx(), created.ID.String()); err != nil {
		t.Fatalf("failed to delete customer: %v", err)
	}
	if _, err := svc.GetByID(orgCtx(), created.ID.String()); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestListFiltersByName(t *testing.T) {
	svc, _, _ := newTestService(t)

	for _, name := range []string{"Budi Santoso", "Siti Aminah", "Budi Hartono"} {
		if _, err := svc.Create(orgCtx(), domain.CreateCustomerRequest{Name: name}); err != nil {
			t.Fatalf("failed to create customer: %v", err)
		}
	}

	resp, err := svc.List(orgCtx(), domain.ListCustomerRequest{Name: "Budi"})
	if err != nil {
		t.Fatalf("failed to list customers: %v", err)
	}
	if len(resp.Customers) != 2 {
		t.Fatalf("expected 2 customers, got %d", len(resp.Customers))
	}
}
