package service

import (
	"context"
	"math"
	"strings"
	"time"

	customerdomain "github.com/bukusaha/bukusaha/internal/customer/domain"
	"github.com/bukusaha/bukusaha/internal/orgcontext"
	"github.com/bukusaha/bukusaha/internal/transaction/domain"
	"github.com/bukusaha/bukusaha/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Repo         domain.Repository
	CustomerRepo customerdomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	repo         domain.Repository
	customerRepo customerdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("transaction.service"),
		genID:        p.GenID,
		repo:         p.Repo,
		customerRepo: p.CustomerRepo,
	}
}

// sanitizeAmount clamps non-finite and negative amounts to zero so every
// stored price is safe to aggregate.
func sanitizeAmount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func (s *Service) resolveCustomer(ctx context.Context, orgID snowflake.ID, raw string) (*snowflake.ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidCustomer
	}
	customer, err := s.customerRepo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrInvalidCustomer
	}
	return &id, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateTransactionRequest) (domain.Transaction, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Transaction{}, domain.ErrInvalidOrganization
	}

	occurredAt := req.OccurredAt.UTC()
	if occurredAt.IsZero() {
		return domain.Transaction{}, domain.ErrInvalidOccurredAt
	}

	customerID, err := s.resolveCustomer(ctx, orgID, req.CustomerID)
	if err != nil {
		return domain.Transaction{}, err
	}

	now := time.Now().UTC()
	tr := domain.Transaction{
		ID:            s.genID.Generate(),
		OrgID:         orgID,
		OccurredAt:    occurredAt,
		CustomerID:    customerID,
		Product:       strings.TrimSpace(req.Product),
		CostPrice:     sanitizeAmount(req.CostPrice),
		SalePrice:     sanitizeAmount(req.SalePrice),
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		Destination:   strings.TrimSpace(req.Destination),
		Tag:           strings.TrimSpace(req.Tag),
		Note:          strings.TrimSpace(req.Note),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, &tr); err != nil {
		return domain.Transaction{}, err
	}
	return tr, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateTransactionRequest) (domain.Transaction, error) {
	tr, err := s.GetByID(ctx, req.ID)
	if err != nil {
		return domain.Transaction{}, err
	}

	if req.OccurredAt != nil {
		occurredAt := req.OccurredAt.UTC()
		if occurredAt.IsZero() {
			return domain.Transaction{}, domain.ErrInvalidOccurredAt
		}
		tr.OccurredAt = occurredAt
	}
	if req.CustomerID != nil {
		customerID, err := s.resolveCustomer(ctx, tr.OrgID, *req.CustomerID)
		if err != nil {
			return domain.Transaction{}, err
		}
		tr.CustomerID = customerID
	}
	if req.Product != nil {
		tr.Product = strings.TrimSpace(*req.Product)
	}
	if req.CostPrice != nil {
		tr.CostPrice = sanitizeAmount(*req.CostPrice)
	}
	if req.SalePrice != nil {
		tr.SalePrice = sanitizeAmount(*req.SalePrice)
	}
	if req.PaymentMethod != nil {
		tr.PaymentMethod = strings.TrimSpace(*req.PaymentMethod)
	}
	if req.Destination != nil {
		tr.Destination = strings.TrimSpace(*req.Destination)
	}
	if req.Tag != nil {
		tr.Tag = strings.TrimSpace(*req.Tag)
	}
	if req.Note != nil {
		tr.Note = strings.TrimSpace(*req.Note)
	}
	tr.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, &tr); err != nil {
		return domain.Transaction{}, err
	}
	return tr, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	tr, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, tr.OrgID, tr.ID)
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Transaction, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Transaction{}, domain.ErrInvalidOrganization
	}

	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return domain.Transaction{}, domain.ErrInvalidID
	}

	tr, err := s.repo.FindByID(ctx, s.db, orgID, parsed)
	if err != nil {
		return domain.Transaction{}, err
	}
	if tr == nil {
		return domain.Transaction{}, domain.ErrNotFound
	}
	return *tr, nil
}

func (s *Service) List(ctx context.Context, req domain.ListTransactionRequest) (domain.ListTransactionResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ListTransactionResponse{}, domain.ErrInvalidOrganization
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	filter := domain.ListTransactionFilter{
		From:          req.From,
		To:            req.To,
		CustomerID:    strings.TrimSpace(req.CustomerID),
		Product:       strings.TrimSpace(req.Product),
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		Destination:   strings.TrimSpace(req.Destination),
		Tag:           strings.TrimSpace(req.Tag),
	}

	rows, err := s.repo.List(ctx, s.db, orgID, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListTransactionResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(rows, pageSize, func(t *domain.TransactionWithCustomer) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        t.ID.String(),
			CreatedAt: t.CreatedAt.Format(time.RFC3339Nano),
		})
		return token
	})

	if len(rows) > int(pageSize) {
		rows = rows[:pageSize]
	}

	transactions := make([]domain.TransactionWithCustomer, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		transactions = append(transactions, *row)
	}

	return domain.ListTransactionResponse{
		PageInfo:     *pageInfo,
		Transactions: transactions,
	}, nil
}

func (s *Service) ListAll(ctx context.Context, filter domain.ListTransactionFilter) ([]domain.TransactionWithCustomer, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	rows, err := s.repo.ListAll(ctx, s.db, orgID, filter)
	if err != nil {
		return nil, err
	}

	transactions := make([]domain.TransactionWithCustomer, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		transactions = append(transactions, *row)
	}
	return transactions, nil
}
