package service

import (
	"context"
	"errors"

	"github.com/bukusaha/bukusaha/internal/clock"
	"github.com/bukusaha/bukusaha/internal/report/aggregate"
	"github.com/bukusaha/bukusaha/internal/report/domain"
	transactiondomain "github.com/bukusaha/bukusaha/internal/transaction/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log          *zap.Logger
	Clock        clock.Clock
	Transactions transactiondomain.Service
}

type Service struct {
	log          *zap.Logger
	clock        clock.Clock
	transactions transactiondomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		log:          p.Log.Named("report.service"),
		clock:        p.Clock,
		transactions: p.Transactions,
	}
}

func (s *Service) Summary(ctx context.Context, req domain.ReportRequest) (aggregate.Summary, error) {
	rows, err := s.transactions.ListAll(ctx, transactiondomain.ListTransactionFilter{
		From:          req.From,
		To:            req.To,
		PaymentMethod: req.PaymentMethod,
		Destination:   req.Destination,
		Tag:           req.Tag,
	})
	if err != nil {
		if errors.Is(err, transactiondomain.ErrInvalidOrganization) {
			return aggregate.Summary{}, domain.ErrInvalidOrganization
		}
		return aggregate.Summary{}, err
	}

	records := make([]aggregate.Record, 0, len(rows))
	for _, row := range rows {
		var customerID string
		if row.CustomerID != nil {
			customerID = row.CustomerID.String()
		}
		records = append(records, aggregate.NewRecord(aggregate.RecordInput{
			ID:            row.ID.String(),
			Date:          row.OccurredAt,
			CustomerID:    customerID,
			CustomerName:  row.CustomerName,
			Product:       row.Product,
			CostPrice:     row.CostPrice,
			SalePrice:     row.SalePrice,
			PaymentMethod: row.PaymentMethod,
			Destination:   row.Destination,
			Tag:           row.Tag,
		}))
	}

	return aggregate.Compute(records, s.clock.Now()), nil
}
