package service

import (
	"context"
	"testing"
	"time"

	customerdomain "github.com/bukusaha/bukusaha/internal/customer/domain"
	customerrepo "github.com/bukusaha/bukusaha/internal/customer/repository"
	"github.com/bukusaha/bukusaha/internal/orgcontext"
	"github.com/bukusaha/bukusaha/internal/transaction/domain"
	"github.com/bukusaha/bukusaha/internal/transaction/repository"
	"github.com/bukusaha/bukusaha/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const testOrgID int64 = 7000002

type testEnv struct {
	svc   domain.Service
	db    *gorm.DB
	genID *snowflake.Node
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&customerdomain.Customer{}, &domain.Transaction{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(2)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	svc := New(Params{
		DB:           dbConn,
		Log:          zap.NewNop(),
		GenID:        node,
		Repo:         repository.Provide(),
		CustomerRepo: customerrepo.Provide(),
	})
	return testEnv{svc: svc, db: dbConn, genID: node}
}

func orgCtx() context.Context {
	return orgcontext.WithOrgID(context.Background(), testOrgID)
}

func (e testEnv) seedCustomer(t *testing.T, name string) customerdomain.Customer {
	t.Helper()
	now := time.Now().UTC()
	customer := customerdomain.Customer{
		ID:        e.genID.Generate(),
		OrgID:     snowflake.ID(testOrgID),
		Name:      name,
		Metadata:  datatypes.JSONMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.db.Create(&customer).Error; err != nil {
		t.Fatalf("failed to seed customer: %v", err)
	}
	return customer
}

func TestCreateRequiresOccurredAt(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Create(orgCtx(), domain.CreateTransactionRequest{
		Product:   "Kopi",
		SalePrice: 15000,
	})
	if err != domain.ErrInvalidOccurredAt {
		t.Fatalf("expected ErrInvalidOccurredAt, got %v", err)
	}
}

func TestCreateRejectsUnknownCustomer(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Create(orgCtx(), domain.CreateTransactionRequest{
		OccurredAt: time.Now().UTC(),
		CustomerID: "1234567890",
		Product:    "Kopi",
	})
	if err != domain.ErrInvalidCustomer {
		t.Fatalf("expected ErrInvalidCustomer, got %v", err)
	}
}

func TestCreateClampsNegativeAmounts(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.svc.Create(orgCtx(), domain.CreateTransactionRequest{
		OccurredAt: time.Now().UTC(),
		Product:    "Kopi",
		CostPrice:  -5000,
		SalePrice:  15000,
	})
	if err != nil {
		t.Fatalf("failed to create transaction: %v", err)
	}
	if created.CostPrice != 0 {
		t.Fatalf("expected negative cost clamped to 0, got %f", created.CostPrice)
	}
	if created.Profit() != 15000 {
		t.Fatalf("expected profit 15000, got %f", created.Profit())
	}
}

func TestCreateLinksCustomer(t *testing.T) {
	env := newTestEnv(t)
	customer := env.seedCustomer(t, "Budi")

	created, err := env.svc.Create(orgCtx(), domain.CreateTransactionRequest{
		OccurredAt: time.Now().UTC(),
		CustomerID: customer.ID.String(),
		Product:    "Kopi",
		SalePrice:  15000,
	})
	if err != nil {
		t.Fatalf("failed to create transaction: %v", err)
	}
	if created.CustomerID == nil || *created.CustomerID != customer.ID {
		t.Fatalf("expected customer id %s, got %v", customer.ID, created.CustomerID)
	}
}

func TestUpdateChangesAmounts(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.svc.Create(orgCtx(), domain.CreateTransactionRequest{
		OccurredAt: time.Now().UTC(),
		Product:    "Kopi",
		CostPrice:  8000,
		SalePrice:  15000,
	})
	if err != nil {
		t.Fatalf("failed to create transaction: %v", err)
	}

	newSale := 20000.0
	updated, err := env.svc.Update(orgCtx(), domain.UpdateTransactionRequest{
		ID:        created.ID.String(),
		SalePrice: &newSale,
	})
	if err != nil {
		t.Fatalf("failed to update transaction: %v", err)
	}
	if updated.SalePrice != 20000 {
		t.Fatalf("expected sale price 20000, got %f", updated.SalePrice)
	}
	if updated.CostPrice != 8000 {
		t.Fatalf("expected cost price untouched, got %f", updated.CostPrice)
	}
}

func TestDeleteScopedToOrg(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.svc.Create(orgCtx(), domain.CreateTransactionRequest{
		OccurredAt: time.Now().UTC(),
		Product:    "Kopi",
		SalePrice:  15000,
	})
	if err != nil {
		t.Fatalf("failed to create transaction: %v", err)
	}

	otherOrg := orgcontext.WithOrgID(context.Background(), testOrgID+1)
	if err := env.svc.Delete(otherOrg, created.ID.String()); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound across orgs, got %v", err)
	}
	if err := env.svc.Delete(orgCtx(), created.ID.String()); err != nil {
		t.Fatalf("failed to delete transaction: %v", err)
	}
}

func TestListFiltersByPaymentMethod(t *testing.T) {
	env := newTestEnv(t)

	for _, method := range []string{"Cash", "Transfer", "Cash"} {
		_, err := env.svc.Create(orgCtx(), domain.CreateTransactionRequest{
			OccurredAt:    time.Now().UTC(),
			Product:       "Kopi",
			SalePrice:     15000,
			PaymentMethod: method,
		})
		if err != nil {
			t.Fatalf("failed to create transaction: %v", err)
		}
	}

	resp, err := env.svc.List(orgCtx(), domain.ListTransactionRequest{PaymentMethod: "Cash"})
	if err != nil {
		t.Fatalf("failed to list transactions: %v", err)
	}
	if len(resp.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(resp.Transactions))
	}
}

func TestListAllResolvesCustomerName(t *testing.T) {
	env := newTestEnv(t)
	customer := env.seedCustomer(t, "Budi")

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		_, err := env.svc.Create(orgCtx(), domain.CreateTransactionRequest{
			OccurredAt: base.Add(time.Duration(i) * time.Hour),
			CustomerID: customer.ID.String(),
			Product:    "Kopi",
			SalePrice:  15000,
		})
		if err != nil {
			t.Fatalf("failed to create transaction: %v", err)
		}
	}

	rows, err := env.svc.ListAll(orgCtx(), domain.ListTransactionFilter{})
	if err != nil {
		t.Fatalf("failed to list all: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	for _, row := range rows {
		if row.CustomerName != "Budi" {
			t.Fatalf("expected customer name Budi, got %q", row.CustomerName)
		}
	}
	if rows[0].OccurredAt.After(rows[1].OccurredAt) {
		t.Fatal("expected rows ordered by occurred_at ascending")
	}
}

func TestListAllFiltersByWindow(t *testing.T) {
	env := newTestEnv(t)

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := env.svc.Create(orgCtx(), domain.CreateTransactionRequest{
			OccurredAt: base.AddDate(0, 0, i),
			Product:    "Kopi",
			SalePrice:  15000,
		})
		if err != nil {
			t.Fatalf("failed to create transaction: %v", err)
		}
	}

	from := base.AddDate(0, 0, 1)
	rows, err := env.svc.ListAll(orgCtx(), domain.ListTransactionFilter{From: &from})
	if err != nil {
		t.Fatalf("failed to list all: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows in window, got %d", len(rows))
	}
}
