package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bukusaha/bukusaha/internal/report/aggregate"
)

type ReportRequest struct {
	From          *time.Time
	To            *time.Time
	PaymentMethod string
	Destination   string
	Tag           string
}

type Service interface {
	// Summary fetches the organization's transactions matching the
	// request window and reduces them into a report. A fetch failure is
	// returned as an error and is never collapsed into an empty report.
	Summary(context.Context, ReportRequest) (aggregate.Summary, error)
}

var ErrInvalidOrganization = errors.New("invalid_organization")
