package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/bukusaha/bukusaha/internal/clock"
	"github.com/bukusaha/bukusaha/internal/config"
	customerdomain "github.com/bukusaha/bukusaha/internal/customer/domain"
	customerrepo "github.com/bukusaha/bukusaha/internal/customer/repository"
	"github.com/bukusaha/bukusaha/internal/invoice/domain"
	"github.com/bukusaha/bukusaha/internal/invoice/repository"
	"github.com/bukusaha/bukusaha/internal/orgcontext"
	organizationdomain "github.com/bukusaha/bukusaha/internal/organization/domain"
	organizationrepo "github.com/bukusaha/bukusaha/internal/organization/repository"
	"github.com/bukusaha/bukusaha/internal/providers/pdf"
	transactiondomain "github.com/bukusaha/bukusaha/internal/transaction/domain"
	transactionrepo "github.com/bukusaha/bukusaha/internal/transaction/repository"
	"github.com/bukusaha/bukusaha/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const testOrgID int64 = 7000004

type testEnv struct {
	svc   domain.Service
	db    *gorm.DB
	genID *snowflake.Node
	clock *clock.FakeClock
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	err = dbConn.AutoMigrate(
		&organizationdomain.Organization{},
		&customerdomain.Customer{},
		&transactiondomain.Transaction{},
		&domain.Invoice{},
		&domain.InvoiceItem{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(4)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	fakeClock := clock.NewFakeClock(time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:              dbConn,
		Log:             zap.NewNop(),
		GenID:           node,
		Config:          config.Config{},
		Clock:           fakeClock,
		Repo:            repository.Provide(),
		CustomerRepo:    customerrepo.Provide(),
		TransactionRepo: transactionrepo.Provide(),
		OrgRepo:         organizationrepo.Provide(),
		PDF:             pdf.New(),
	})
	return testEnv{svc: svc, db: dbConn, genID: node, clock: fakeClock}
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

func (e testEnv) seedTransaction(t *testing.T, customerID snowflake.ID, product string, salePrice float64) transactiondomain.Transaction {
	t.Helper()
	now := time.Now().UTC()
	id := customerID
	tr := transactiondomain.Transaction{
		ID:         e.genID.Generate(),
		OrgID:      snowflake.ID(testOrgID),
		OccurredAt: now,
		CustomerID: &id,
		Product:    product,
		SalePrice:  salePrice,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := e.db.Create(&tr).Error; err != nil {
		t.Fatalf("failed to seed transaction: %v", err)
	}
	return tr
}

func TestCreateRequiresItems(t *testing.T) {
	env := newTestEnv(t)
	customer := env.seedCustomer(t, "Budi")

	_, err := env.svc.Create(orgCtx(), domain.CreateInvoiceRequest{
		CustomerID: customer.ID.String(),
	})
	if err != domain.ErrNoItems {
		t.Fatalf("expected ErrNoItems, got %v", err)
	}
}

func TestCreateRejectsUnknownCustomer(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Create(orgCtx(), domain.CreateInvoiceRequest{
		CustomerID:     "1234567890",
		TransactionIDs: []string{"1"},
	})
	if err != domain.ErrInvalidCustomer {
		t.Fatalf("expected ErrInvalidCustomer, got %v", err)
	}
}

func TestCreateBuildsItemsAndTotals(t *testing.T) {
	env := newTestEnv(t)
	customer := env.seedCustomer(t, "Budi")
	tr1 := env.seedTransaction(t, customer.ID, "Kopi", 15000)
	tr2 := env.seedTransaction(t, customer.ID, "Teh", 8000)

	invoice, err := env.svc.Create(orgCtx(), domain.CreateInvoiceRequest{
		CustomerID:     customer.ID.String(),
		TransactionIDs: []string{tr1.ID.String(), tr2.ID.String()},
	})
	if err != nil {
		t.Fatalf("failed to create invoice: %v", err)
	}

	if invoice.Status != domain.StatusIssued {
		t.Fatalf("expected status issued, got %s", invoice.Status)
	}
	if invoice.Subtotal != 23000 || invoice.Total != 23000 {
		t.Fatalf("expected totals 23000, got %f and %f", invoice.Subtotal, invoice.Total)
	}
	if len(invoice.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(invoice.Items))
	}
	if invoice.Number != "INV-20250307-000001" {
		t.Fatalf("unexpected invoice number %s", invoice.Number)
	}
	wantDue := env.clock.Now().AddDate(0, 0, 14)
	if !invoice.DueDate.Equal(wantDue) {
		t.Fatalf("expected due date %s, got %s", wantDue, invoice.DueDate)
	}
}

func TestCreateIncrementsSequence(t *testing.T) {
	env := newTestEnv(t)
	customer := env.seedCustomer(t, "Budi")

	for i, want := range []string{"INV-20250307-000001", "INV-20250307-000002"} {
		tr := env.seedTransaction(t, customer.ID, "Kopi", 15000)
		invoice, err := env.svc.Create(orgCtx(), domain.CreateInvoiceRequest{
			CustomerID:     customer.ID.String(),
			TransactionIDs: []string{tr.ID.String()},
		})
		if err != nil {
			t.Fatalf("create %d failed: %v", i+1, err)
		}
		if invoice.Number != want {
			t.Fatalf("expected number %s, got %s", want, invoice.Number)
		}
	}
}

func TestVoidTwiceFails(t *testing.T) {
	env := newTestEnv(t)
	customer := env.seedCustomer(t, "Budi")
	tr := env.seedTransaction(t, customer.ID, "Kopi", 15000)

	invoice, err := env.svc.Create(orgCtx(), domain.CreateInvoiceRequest{
		CustomerID:     customer.ID.String(),
		TransactionIDs: []string{tr.ID.String()},
	})
	if err != nil {
		t.Fatalf("failed to create invoice: %v", err)
	}

	voided, err := env.svc.Void(orgCtx(), invoice.ID.String())
	if err != nil {
		t.Fatalf("failed to void invoice: %v", err)
	}
	if voided.Status != domain.StatusVoid {
		t.Fatalf("expected status void, got %s", voided.Status)
	}

	if _, err := env.svc.Void(orgCtx(), invoice.ID.String()); err != domain.ErrAlreadyVoid {
		t.Fatalf("expected ErrAlreadyVoid, got %v", err)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	env := newTestEnv(t)
	customer := env.seedCustomer(t, "Budi")

	var firstID string
	for i := 0; i < 2; i++ {
		tr := env.seedTransaction(t, customer.ID, "Kopi", 15000)
		invoice, err := env.svc.Create(orgCtx(), domain.CreateInvoiceRequest{
			CustomerID:     customer.ID.String(),
			TransactionIDs: []string{tr.ID.String()},
		})
		if err != nil {
			t.Fatalf("failed to create invoice: %v", err)
		}
		if i == 0 {
			firstID = invoice.ID.String()
		}
	}
	if _, err := env.svc.Void(orgCtx(), firstID); err != nil {
		t.Fatalf("failed to void invoice: %v", err)
	}

	resp, err := env.svc.List(orgCtx(), domain.ListInvoiceRequest{Status: domain.StatusVoid})
	if err != nil {
		t.Fatalf("failed to list invoices: %v", err)
	}
	if len(resp.Invoices) != 1 {
		t.Fatalf("expected 1 void invoice, got %d", len(resp.Invoices))
	}
}

func TestRenderPDFProducesDocument(t *testing.T) {
	env := newTestEnv(t)
	customer := env.seedCustomer(t, "Budi")
	tr := env.seedTransaction(t, customer.ID, "Kopi", 15000)

	invoice, err := env.svc.Create(orgCtx(), domain.CreateInvoiceRequest{
		CustomerID:     customer.ID.String(),
		TransactionIDs: []string{tr.ID.String()},
	})
	if err != nil {
		t.Fatalf("failed to create invoice: %v", err)
	}

	reader, err := env.svc.RenderPDF(orgCtx(), invoice.ID.String())
	if err != nil {
		t.Fatalf("failed to render pdf: %v", err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("failed to read pdf: %v", err)
	}
	if !strings.HasPrefix(string(data), "%PDF") {
		t.Fatal("expected a pdf document")
	}
}
