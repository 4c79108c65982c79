package service

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/bukusaha/bukusaha/internal/clock"
	"github.com/bukusaha/bukusaha/internal/config"
	customerdomain "github.com/bukusaha/bukusaha/internal/customer/domain"
	"github.com/bukusaha/bukusaha/internal/invoice/domain"
	"github.com/bukusaha/bukusaha/internal/invoice/format"
	"github.com/bukusaha/bukusaha/internal/orgcontext"
	organizationdomain "github.com/bukusaha/bukusaha/internal/organization/domain"
	"github.com/bukusaha/bukusaha/internal/providers/pdf"
	transactiondomain "github.com/bukusaha/bukusaha/internal/transaction/domain"
	"github.com/bukusaha/bukusaha/pkg/db"
	"github.com/bukusaha/bukusaha/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultDueDays = 14

type Params struct {
	fx.In

	DB              *gorm.DB
	Log             *zap.Logger
	GenID           *snowflake.Node
	Config          config.Config
	Clock           clock.Clock
	Repo            domain.Repository
	CustomerRepo    customerdomain.Repository
	TransactionRepo transactiondomain.Repository
	OrgRepo         organizationdomain.Repository
	PDF             pdf.Provider
}

type Service struct {
	db              *gorm.DB
	log             *zap.Logger
	genID           *snowflake.Node
	cfg             config.Config
	clock           clock.Clock
	repo            domain.Repository
	customerRepo    customerdomain.Repository
	transactionRepo transactiondomain.Repository
	orgRepo         organizationdomain.Repository
	pdf             pdf.Provider
}

func New(p Params) domain.Service {
	return &Service{
		db:              p.DB,
		log:             p.Log.Named("invoice.service"),
		genID:           p.GenID,
		cfg:             p.Config,
		clock:           p.Clock,
		repo:            p.Repo,
		customerRepo:    p.CustomerRepo,
		transactionRepo: p.TransactionRepo,
		orgRepo:         p.OrgRepo,
		pdf:             p.PDF,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (domain.Invoice, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Invoice{}, domain.ErrInvalidOrganization
	}

	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil || customerID == 0 {
		return domain.Invoice{}, domain.ErrInvalidCustomer
	}
	customer, err := s.customerRepo.FindByID(ctx, s.db, orgID, customerID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if customer == nil {
		return domain.Invoice{}, domain.ErrInvalidCustomer
	}
	if len(req.TransactionIDs) == 0 {
		return domain.Invoice{}, domain.ErrNoItems
	}

	currency := "IDR"
	if org, err := s.orgRepo.FindByID(ctx, s.db, orgID); err == nil && org != nil {
		currency = org.Currency
	}

	now := s.clock.Now()
	dueDate := now.AddDate(0, 0, defaultDueDays)
	if req.DueDate != nil && !req.DueDate.IsZero() {
		dueDate = req.DueDate.UTC()
	}

	invoice := domain.Invoice{
		ID:         s.genID.Generate(),
		OrgID:      orgID,
		CustomerID: customerID,
		Status:     domain.StatusIssued,
		Currency:   currency,
		IssueDate:  now,
		DueDate:    dueDate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := make([]domain.InvoiceItem, 0, len(req.TransactionIDs))
		for _, raw := range req.TransactionIDs {
			trID, err := snowflake.ParseString(strings.TrimSpace(raw))
			if err != nil || trID == 0 {
				return domain.ErrInvalidID
			}
			tr, err := s.transactionRepo.FindByID(ctx, tx, orgID, trID)
			if err != nil {
				return err
			}
			if tr == nil {
				return domain.ErrNotFound
			}

			id := tr.ID
			description := tr.Product
			if description == "" {
				description = "Sale"
			}
			items = append(items, domain.InvoiceItem{
				ID:            s.genID.Generate(),
				InvoiceID:     invoice.ID,
				TransactionID: &id,
				Description:   description,
				Quantity:      1,
				UnitPrice:     tr.SalePrice,
				Amount:        tr.SalePrice,
			})
			invoice.Subtotal += tr.SalePrice
		}
		invoice.Total = invoice.Subtotal

		seq, err := s.repo.NextSequence(ctx, tx, orgID)
		if err != nil {
			return err
		}
		template := s.cfg.InvoiceNumberTemplate
		if template == "" {
			template = format.DefaultNumberTemplate
		}
		number, err := format.InvoiceNumber(template, now, seq)
		if err != nil {
			return err
		}
		invoice.Number = number

		if err := s.repo.Insert(ctx, tx, &invoice); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrDuplicateNumber
			}
			return err
		}
		if err := s.repo.InsertItems(ctx, tx, items); err != nil {
			return err
		}
		invoice.Items = items
		return nil
	})
	if err != nil {
		return domain.Invoice{}, err
	}
	return invoice, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Invoice, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Invoice{}, domain.ErrInvalidOrganization
	}

	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return domain.Invoice{}, domain.ErrInvalidID
	}

	invoice, err := s.repo.FindByID(ctx, s.db, orgID, parsed)
	if err != nil {
		return domain.Invoice{}, err
	}
	if invoice == nil {
		return domain.Invoice{}, domain.ErrNotFound
	}

	items, err := s.repo.FindItems(ctx, s.db, invoice.ID)
	if err != nil {
		return domain.Invoice{}, err
	}
	invoice.Items = items
	return *invoice, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ListInvoiceResponse{}, domain.ErrInvalidOrganization
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	rows, err := s.repo.List(ctx, s.db, orgID, req, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(rows, pageSize, func(inv *domain.Invoice) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        inv.ID.String(),
			CreatedAt: inv.CreatedAt.Format(time.RFC3339Nano),
		})
		return token
	})

	if len(rows) > int(pageSize) {
		rows = rows[:pageSize]
	}

	invoices := make([]domain.Invoice, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		invoices = append(invoices, *row)
	}

	return domain.ListInvoiceResponse{
		PageInfo: *pageInfo,
		Invoices: invoices,
	}, nil
}

func (s *Service) Void(ctx context.Context, id string) (domain.Invoice, error) {
	invoice, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	if invoice.Status == domain.StatusVoid {
		return domain.Invoice{}, domain.ErrAlreadyVoid
	}

	invoice.Status = domain.StatusVoid
	invoice.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateStatus(ctx, s.db, &invoice); err != nil {
		return domain.Invoice{}, err
	}
	return invoice, nil
}

func (s *Service) RenderPDF(ctx context.Context, id string) (io.Reader, error) {
	invoice, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	orgName := "Bukusaha"
	if org, err := s.orgRepo.FindByID(ctx, s.db, invoice.OrgID); err == nil && org != nil {
		orgName = org.Name
	}

	var billToName, billToAddress, billToEmail string
	if customer, err := s.customerRepo.FindByID(ctx, s.db, invoice.OrgID, invoice.CustomerID); err == nil && customer != nil {
		billToName = customer.Name
		billToAddress = customer.Address
		billToEmail = customer.Email
	}

	doc := pdf.InvoiceDocument{
		OrgName:       orgName,
		InvoiceNumber: invoice.Number,
		Status:        invoice.Status,
		IssueDate:     invoice.IssueDate.Format("02 Jan 2006"),
		DueDate:       invoice.DueDate.Format("02 Jan 2006"),
		BillToName:    billToName,
		BillToAddress: billToAddress,
		BillToEmail:   billToEmail,
		Subtotal:      format.Currency(invoice.Currency, invoice.Subtotal),
		Total:         format.Currency(invoice.Currency, invoice.Total),
	}
	for _, item := range invoice.Items {
		doc.Items = append(doc.Items, pdf.InvoiceLine{
			Description: item.Description,
			Qty:         item.Quantity,
			UnitPrice:   format.Currency(invoice.Currency, item.UnitPrice),
			Amount:      format.Currency(invoice.Currency, item.Amount),
		})
	}

	return s.pdf.RenderInvoice(ctx, doc)
}
