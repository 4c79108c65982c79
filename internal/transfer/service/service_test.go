package service

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	customerdomain "github.com/bukusaha/bukusaha/internal/customer/domain"
	customerrepo "github.com/bukusaha/bukusaha/internal/customer/repository"
	"github.com/bukusaha/bukusaha/internal/orgcontext"
	transactiondomain "github.com/bukusaha/bukusaha/internal/transaction/domain"
	transactionrepo "github.com/bukusaha/bukusaha/internal/transaction/repository"
	transactionservice "github.com/bukusaha/bukusaha/internal/transaction/service"
	"github.com/bukusaha/bukusaha/internal/transfer/domain"
	"github.com/bukusaha/bukusaha/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testOrgID int64 = 7000003

func newTestService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&customerdomain.Customer{}, &transactiondomain.Transaction{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(3)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	customerRepo := customerrepo.Provide()
	transactions := transactionservice.New(transactionservice.Params{
		DB:           dbConn,
		Log:          zap.NewNop(),
		GenID:        node,
		Repo:         transactionrepo.Provide(),
		CustomerRepo: customerRepo,
	})

	svc := New(Params{
		DB:           dbConn,
		Log:          zap.NewNop(),
		GenID:        node,
		Transactions: transactions,
		CustomerRepo: customerRepo,
	})
	return svc, dbConn
}

func orgCtx() context.Context {
	return orgcontext.WithOrgID(context.Background(), testOrgID)
}

func TestImportUnsupportedFormat(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Import(orgCtx(), "xml", strings.NewReader(""))
	if err != domain.ErrUnsupportedFormat {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestImportCSVHappyPath(t *testing.T) {
	svc, dbConn := newTestService(t)

	payload := strings.Join([]string{
		"date,customer_name,product,cost_price,sale_price,payment_method,destination,tag,note",
		"2025-03-01,Budi,Kopi,8000,15000,Cash,Toko,retail,",
		"2025-03-02,Budi,Teh,3000,8000,Transfer,Online,,",
		"2025-03-03,,Gula,5000,9000,Cash,Toko,,",
	}, "\n")

	result, err := svc.Import(orgCtx(), domain.FormatCSV, strings.NewReader(payload))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.Imported != 3 {
		t.Fatalf("expected 3 imported, got %d", result.Imported)
	}
	if result.Skipped != 0 {
		t.Fatalf("expected 0 skipped, got %d", result.Skipped)
	}

	var customers int64
	if err := dbConn.Model(&customerdomain.Customer{}).Count(&customers).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if customers != 1 {
		t.Fatalf("expected one customer created for Budi, got %d", customers)
	}

	var transactions int64
	if err := dbConn.Model(&transactiondomain.Transaction{}).Count(&transactions).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if transactions != 3 {
		t.Fatalf("expected 3 transactions, got %d", transactions)
	}
}

func TestImportCSVCollectsRowErrors(t *testing.T) {
	svc, _ := newTestService(t)

	payload := strings.Join([]string{
		"date,customer_name,product,sale_price",
		"not-a-date,Budi,Kopi,15000",
		"2025-03-01,Budi,Teh,8000",
	}, "\n")

	result, err := svc.Import(orgCtx(), domain.FormatCSV, strings.NewReader(payload))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.Imported != 1 {
		t.Fatalf("expected 1 imported, got %d", result.Imported)
	}
	if result.Skipped != 1 {
		t.Fatalf("expected 1 skipped, got %d", result.Skipped)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 row error, got %d", len(result.Errors))
	}
	if result.Errors[0].Row != 2 {
		t.Fatalf("expected error on row 2, got row %d", result.Errors[0].Row)
	}
}

func TestImportCSVMissingDateColumn(t *testing.T) {
	svc, _ := newTestService(t)

	payload := "customer_name,product\nBudi,Kopi\n"
	_, err := svc.Import(orgCtx(), domain.FormatCSV, strings.NewReader(payload))
	if err != domain.ErrMalformedPayload {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
}

func TestImportJSON(t *testing.T) {
	svc, _ := newTestService(t)

	payload := `[
		{"date":"2025-03-01","customer_name":"Siti","product":"Kopi","cost_price":8000,"sale_price":15000,"payment_method":"Cash"},
		{"date":"bad","customer_name":"Siti","product":"Teh"}
	]`

	result, err := svc.Import(orgCtx(), domain.FormatJSON, strings.NewReader(payload))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.Imported != 1 || result.Skipped != 1 {
		t.Fatalf("expected 1 imported and 1 skipped, got %d and %d", result.Imported, result.Skipped)
	}
}

func TestImportJSONMalformed(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Import(orgCtx(), domain.FormatJSON, strings.NewReader("{not json"))
	if err != domain.ErrMalformedPayload {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
}

func TestExportCSVRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)

	payload := strings.Join([]string{
		"date,customer_name,product,cost_price,sale_price,payment_method",
		"2025-03-01,Budi,Kopi,8000,15000,Cash",
	}, "\n")
	if _, err := svc.Import(orgCtx(), domain.FormatCSV, strings.NewReader(payload)); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	var buf bytes.Buffer
	if err := svc.ExportCSV(orgCtx(), transactiondomain.ListTransactionFilter{}, &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], "Budi") || !strings.Contains(lines[1], "15000") {
		t.Fatalf("unexpected export row: %s", lines[1])
	}
}

func TestExportJSON(t *testing.T) {
	svc, _ := newTestService(t)

	payload := strings.Join([]string{
		"date,customer_name,product,cost_price,sale_price,payment_method",
		"2025-03-01,Budi,Kopi,8000,15000,Cash",
	}, "\n")
	if _, err := svc.Import(orgCtx(), domain.FormatCSV, strings.NewReader(payload)); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	var buf bytes.Buffer
	if err := svc.ExportJSON(orgCtx(), transactiondomain.ListTransactionFilter{}, &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var rows []domain.ImportRow
	if err := json.Unmarshal(buf.Bytes(), &rows); err != nil {
		t.Fatalf("failed to decode export: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].CustomerName != "Budi" || rows[0].SalePrice != 15000 {
		t.Fatalf("unexpected row: %+v", rows[0])
	}

	parsed, err := time.Parse(time.RFC3339, rows[0].Date)
	if err != nil {
		t.Fatalf("expected RFC3339 date, got %q", rows[0].Date)
	}
	if parsed.Day() != 1 {
		t.Fatalf("unexpected date %s", parsed)
	}
}
