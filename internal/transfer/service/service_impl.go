package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	customerdomain "github.com/bukusaha/bukusaha/internal/customer/domain"
	"github.com/bukusaha/bukusaha/internal/orgcontext"
	transactiondomain "github.com/bukusaha/bukusaha/internal/transaction/domain"
	"github.com/bukusaha/bukusaha/internal/transfer/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Transactions transactiondomain.Service
	CustomerRepo customerdomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	transactions transactiondomain.Service
	customerRepo customerdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("transfer.service"),
		genID:        p.GenID,
		transactions: p.Transactions,
		customerRepo: p.CustomerRepo,
	}
}

var csvHeader = []string{
	"date", "customer_name", "product", "cost_price", "sale_price",
	"payment_method", "destination", "tag", "note",
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// parseAmount coerces a free-form amount cell. Anything unparseable,
// non-finite, or negative becomes zero instead of rejecting the row.
func parseAmount(raw string) float64 {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func (s *Service) Import(ctx context.Context, format string, r io.Reader) (domain.ImportResult, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case domain.FormatCSV:
		return s.importCSV(ctx, r)
	case domain.FormatJSON:
		return s.importJSON(ctx, r)
	default:
		return domain.ImportResult{}, domain.ErrUnsupportedFormat
	}
}

func (s *Service) importCSV(ctx context.Context, r io.Reader) (domain.ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return domain.ImportResult{}, domain.ErrMalformedPayload
	}

	columns := map[string]int{}
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns["date"]; !ok {
		return domain.ImportResult{}, domain.ErrMalformedPayload
	}

	cell := func(row []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	result := domain.ImportResult{Errors: []domain.RowError{}}
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, domain.RowError{Row: line, Message: err.Error()})
			continue
		}

		imported := domain.ImportRow{
			Date:          cell(row, "date"),
			CustomerName:  cell(row, "customer_name"),
			Product:       cell(row, "product"),
			CostPrice:     parseAmount(cell(row, "cost_price")),
			SalePrice:     parseAmount(cell(row, "sale_price")),
			PaymentMethod: cell(row, "payment_method"),
			Destination:   cell(row, "destination"),
			Tag:           cell(row, "tag"),
			Note:          cell(row, "note"),
		}
		if err := s.importRow(ctx, imported); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, domain.RowError{Row: line, Message: err.Error()})
			continue
		}
		result.Imported++
	}
	return result, nil
}

func (s *Service) importJSON(ctx context.Context, r io.Reader) (domain.ImportResult, error) {
	var rows []domain.ImportRow
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return domain.ImportResult{}, domain.ErrMalformedPayload
	}

	result := domain.ImportResult{Errors: []domain.RowError{}}
	for i, row := range rows {
		if err := s.importRow(ctx, row); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, domain.RowError{Row: i + 1, Message: err.Error()})
			continue
		}
		result.Imported++
	}
	return result, nil
}

func (s *Service) importRow(ctx context.Context, row domain.ImportRow) error {
	occurredAt, err := parseDate(row.Date)
	if err != nil {
		return err
	}

	customerID, err := s.ensureCustomer(ctx, row.CustomerName)
	if err != nil {
		return err
	}

	_, err = s.transactions.Create(ctx, transactiondomain.CreateTransactionRequest{
		OccurredAt:    occurredAt,
		CustomerID:    customerID,
		Product:       row.Product,
		CostPrice:     row.CostPrice,
		SalePrice:     row.SalePrice,
		PaymentMethod: row.PaymentMethod,
		Destination:   row.Destination,
		Tag:           row.Tag,
		Note:          row.Note,
	})
	return err
}

// ensureCustomer resolves an imported customer name, creating the
// customer on first sight. Blank names import as anonymous sales.
func (s *Service) ensureCustomer(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}

	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return "", transactiondomain.ErrInvalidOrganization
	}

	existing, err := s.customerRepo.FindByName(ctx, s.db, orgID, name)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return existing.ID.String(), nil
	}

	now := time.Now().UTC()
	customer := customerdomain.Customer{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		Name:      name,
		Metadata:  datatypes.JSONMap{"source": "import"},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.customerRepo.Insert(ctx, s.db, &customer); err != nil {
		return "", err
	}
	return customer.ID.String(), nil
}

func (s *Service) ExportCSV(ctx context.Context, filter transactiondomain.ListTransactionFilter, w io.Writer) error {
	rows, err := s.transactions.ListAll(ctx, filter)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.OccurredAt.UTC().Format(time.RFC3339),
			row.CustomerName,
			row.Product,
			strconv.FormatFloat(row.CostPrice, 'f', -1, 64),
			strconv.FormatFloat(row.SalePrice, 'f', -1, 64),
			row.PaymentMethod,
			row.Destination,
			row.Tag,
			row.Note,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func (s *Service) ExportJSON(ctx context.Context, filter transactiondomain.ListTransactionFilter, w io.Writer) error {
	rows, err := s.transactions.ListAll(ctx, filter)
	if err != nil {
		return err
	}

	out := make([]domain.ImportRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.ImportRow{
			Date:          row.OccurredAt.UTC().Format(time.RFC3339),
			CustomerName:  row.CustomerName,
			Product:       row.Product,
			CostPrice:     row.CostPrice,
			SalePrice:     row.SalePrice,
			PaymentMethod: row.PaymentMethod,
			Destination:   row.Destination,
			Tag:           row.Tag,
			Note:          row.Note,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
