package service

import (
	"context"
	"testing"
	"time"

	"github.com/bukusaha/bukusaha/internal/clock"
	customerdomain "github.com/bukusaha/bukusaha/internal/customer/domain"
	customerrepo "github.com/bukusaha/bukusaha/internal/customer/repository"
	"github.com/bukusaha/bukusaha/internal/orgcontext"
	"github.com/bukusaha/bukusaha/internal/report/domain"
	transactiondomain "github.com/bukusaha/bukusaha/internal/transaction/domain"
	transactionrepo "github.com/bukusaha/bukusaha/internal/transaction/repository"
	transactionservice "github.com/bukusaha/bukusaha/internal/transaction/service"
	"github.com/bukusaha/bukusaha/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
)

const testOrgID int64 = 7000005

func newTestService(t *testing.T) (domain.Service, transactiondomain.Service) {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&customerdomain.Customer{}, &transactiondomain.Transaction{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(5)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	transactions := transactionservice.New(transactionservice.Params{
		DB:           dbConn,
		Log:          zap.NewNop(),
		GenID:        node,
		Repo:         transactionrepo.Provide(),
		CustomerRepo: customerrepo.Provide(),
	})

	svc := New(Params{
		Log:          zap.NewNop(),
		Clock:        clock.NewFakeClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)),
		Transactions: transactions,
	})
	return svc, transactions
}

func orgCtx() context.Context {
	return orgcontext.WithOrgID(context.Background(), testOrgID)
}

func TestSummaryRequiresOrg(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Summary(context.Background(), domain.ReportRequest{})
	if err != domain.ErrInvalidOrganization {
		t.Fatalf("expected ErrInvalidOrganization, got %v", err)
	}
}

func TestSummaryEmptyOrg(t *testing.T) {
	svc, _ := newTestService(t)

	summary, err := svc.Summary(orgCtx(), domain.ReportRequest{})
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.TotalSales != 0 || summary.TotalTransactions != 0 {
		t.Fatalf("expected empty summary, got %+v", summary)
	}
	if summary.PaymentMethods == nil || summary.SalesTrend == nil {
		t.Fatal("expected empty slices, not nil")
	}
}

func TestSummaryAggregatesStoredTransactions(t *testing.T) {
	svc, transactions := newTestService(t)

	seed := []transactiondomain.CreateTransactionRequest{
		{
			OccurredAt:    time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
			Product:       "Kopi",
			CostPrice:     100000,
			SalePrice:     150000,
			PaymentMethod: "Cash",
			Destination:   "Toko",
		},
		{
			OccurredAt:    time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC),
			Product:       "Teh",
			CostPrice:     150000,
			SalePrice:     200000,
			PaymentMethod: "Transfer",
			Destination:   "Online",
		},
	}
	for _, req := range seed {
		if _, err := transactions.Create(orgCtx(), req); err != nil {
			t.Fatalf("failed to seed transaction: %v", err)
		}
	}

	summary, err := svc.Summary(orgCtx(), domain.ReportRequest{})
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}

	if summary.TotalSales != 350000 {
		t.Fatalf("expected total sales 350000, got %f", summary.TotalSales)
	}
	if summary.TotalProfit != 100000 {
		t.Fatalf("expected total profit 100000, got %f", summary.TotalProfit)
	}
	if summary.TotalTransactions != 2 {
		t.Fatalf("expected 2 transactions, got %d", summary.TotalTransactions)
	}
	if len(summary.PaymentMethods) != 2 {
		t.Fatalf("expected 2 payment methods, got %d", len(summary.PaymentMethods))
	}
	if len(summary.SalesTrend) != 2 {
		t.Fatalf("expected 2 trend points, got %d", len(summary.SalesTrend))
	}
	if summary.SalesTrend[0].Date != "2025-03-01" {
		t.Fatalf("expected trend to start at 2025-03-01, got %s", summary.SalesTrend[0].Date)
	}
}

func TestSummaryHonorsFilter(t *testing.T) {
	svc, transactions := newTestService(t)

	for _, method := range []string{"Cash", "Transfer"} {
		_, err := transactions.Create(orgCtx(), transactiondomain.CreateTransactionRequest{
			OccurredAt:    time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
			Product:       "Kopi",
			SalePrice:     150000,
			PaymentMethod: method,
		})
		if err != nil {
			t.Fatalf("failed to seed transaction: %v", err)
		}
	}

	summary, err := svc.Summary(orgCtx(), domain.ReportRequest{PaymentMethod: "Cash"})
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.TotalTransactions != 1 {
		t.Fatalf("expected 1 filtered transaction, got %d", summary.TotalTransactions)
	}
	if summary.TotalSales != 150000 {
		t.Fatalf("expected total sales 150000, got %f", summary.TotalSales)
	}
}
