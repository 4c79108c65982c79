package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bukusaha/bukusaha/internal/audit"
	auditdomain "github.com/bukusaha/bukusaha/internal/audit/domain"
	"github.com/bukusaha/bukusaha/internal/auth"
	authdomain "github.com/bukusaha/bukusaha/internal/auth/domain"
	"github.com/bukusaha/bukusaha/internal/auth/session"
	"github.com/bukusaha/bukusaha/internal/authorization"
	"github.com/bukusaha/bukusaha/internal/clock"
	"github.com/bukusaha/bukusaha/internal/config"
	"github.com/bukusaha/bukusaha/internal/customer"
	customerdomain "github.com/bukusaha/bukusaha/internal/customer/domain"
	"github.com/bukusaha/bukusaha/internal/invoice"
	invoicedomain "github.com/bukusaha/bukusaha/internal/invoice/domain"
	"github.com/bukusaha/bukusaha/internal/observability"
	obslogger "github.com/bukusaha/bukusaha/internal/observability/logger"
	obsmetrics "github.com/bukusaha/bukusaha/internal/observability/metrics"
	obstracing "github.com/bukusaha/bukusaha/internal/observability/tracing"
	"github.com/bukusaha/bukusaha/internal/organization"
	organizationdomain "github.com/bukusaha/bukusaha/internal/organization/domain"
	"github.com/bukusaha/bukusaha/internal/providers/pdf"
	"github.com/bukusaha/bukusaha/internal/ratelimit"
	"github.com/bukusaha/bukusaha/internal/report"
	reportdomain "github.com/bukusaha/bukusaha/internal/report/domain"
	"github.com/bukusaha/bukusaha/internal/transaction"
	transactiondomain "github.com/bukusaha/bukusaha/internal/transaction/domain"
	"github.com/bukusaha/bukusaha/internal/transfer"
	transferdomain "github.com/bukusaha/bukusaha/internal/transfer/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	clock.Module,
	observability.Module,
	authorization.Module,
	audit.Module,
	auth.Module,
	session.Module,
	organization.Module,
	customer.Module,
	transaction.Module,
	report.Module,
	transfer.Module,
	invoice.Module,
	pdf.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	log             *zap.Logger
	genID           *snowflake.Node
	sessions        *session.Manager
	authsvc         authdomain.Service
	authzSvc        authorization.Service
	auditSvc        auditdomain.Service
	organizationSvc organizationdomain.Service
	customerSvc     customerdomain.Service
	transactionSvc  transactiondomain.Service
	reportSvc       reportdomain.Service
	transferSvc     transferdomain.Service
	invoiceSvc      invoicedomain.Service
	requestLimiter  *ratelimit.RequestLimiter
	loginLimiter    *ratelimit.LoginLimiter
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	Log             *zap.Logger
	GenID           *snowflake.Node
	Sessions        *session.Manager
	Authsvc         authdomain.Service
	AuthzSvc        authorization.Service
	AuditSvc        auditdomain.Service
	OrganizationSvc organizationdomain.Service
	CustomerSvc     customerdomain.Service
	TransactionSvc  transactiondomain.Service
	ReportSvc       reportdomain.Service
	TransferSvc     transferdomain.Service
	InvoiceSvc      invoicedomain.Service
	RequestLimiter  *ratelimit.RequestLimiter `optional:"true"`
	LoginLimiter    *ratelimit.LoginLimiter   `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		log:             p.Log.Named("server"),
		genID:           p.GenID,
		sessions:        p.Sessions,
		authsvc:         p.Authsvc,
		authzSvc:        p.AuthzSvc,
		auditSvc:        p.AuditSvc,
		organizationSvc: p.OrganizationSvc,
		customerSvc:     p.CustomerSvc,
		transactionSvc:  p.TransactionSvc,
		reportSvc:       p.ReportSvc,
		transferSvc:     p.TransferSvc,
		invoiceSvc:      p.InvoiceSvc,
		requestLimiter:  p.RequestLimiter,
		loginLimiter:    p.LoginLimiter,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/register", s.Register)
	auth.POST("/login", s.RateLimitLogin(), s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.Me)
	auth.POST("/change-password", s.AuthRequired(), s.ChangePassword)

	user := auth.Group("/user", s.AuthRequired())
	{
		user.GET("/orgs", s.ListUserOrgs)
		user.POST("/using/:orgId", s.UseOrg)
	}
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")

	api.Use(s.AuthRequired())
	api.Use(s.RateLimit())

	// Organization creation happens before any org context exists.
	api.POST("/organizations", s.CreateOrganization)

	org := api.Group("")
	org.Use(s.OrgContext())

	org.GET("/organizations/current", s.GetCurrentOrganization)
	org.PATCH("/organizations/current", s.RequireRole(organizationdomain.RoleOwner), s.UpdateCurrentOrganization)
	org.POST("/organizations/members", s.RequireRole(organizationdomain.RoleOwner), s.authorizeOrgAction(authorization.ObjectOrganization, authorization.ActionMemberManage), s.AddOrganizationMember)

	// -------- Customers --------
	org.GET("/customers", s.ListCustomers)
	org.POST("/customers", s.CreateCustomer)
	org.GET("/customers/:id", s.GetCustomerByID)
	org.PATCH("/customers/:id", s.UpdateCustomer)
	org.DELETE("/customers/:id", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin), s.DeleteCustomer)

	// -------- Transactions --------
	org.GET("/transactions", s.ListTransactions)
	org.POST("/transactions", s.CreateTransaction)
	org.GET("/transactions/:id", s.GetTransactionByID)
	org.PATCH("/transactions/:id", s.UpdateTransaction)
	org.DELETE("/transactions/:id", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin), s.DeleteTransaction)

	// -------- Reports --------
	org.GET("/reports/sales", s.authorizeOrgAction(authorization.ObjectReport, authorization.ActionReportView), s.GetReportSummary)

	// -------- Import / Export --------
	org.POST("/transactions/import", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin), s.authorizeOrgAction(authorization.ObjectTransfer, authorization.ActionTransferRun), s.ImportTransactions)
	org.GET("/transactions/export", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin), s.authorizeOrgAction(authorization.ObjectTransfer, authorization.ActionTransferRun), s.ExportTransactions)

	// -------- Invoices --------
	org.GET("/invoices", s.ListInvoices)
	org.POST("/invoices", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin), s.CreateInvoice)
	org.GET("/invoices/:id", s.GetInvoiceByID)
	org.GET("/invoices/:id/render", s.authorizeOrgAction(authorization.ObjectInvoice, authorization.ActionInvoiceRender), s.RenderInvoice)
	org.POST("/invoices/:id/void", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin), s.authorizeOrgAction(authorization.ObjectInvoice, authorization.ActionInvoiceVoid), s.VoidInvoice)

	// -------- Audit Logs --------
	org.GET("/audit-logs", s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleAdmin), s.authorizeOrgAction(authorization.ObjectAuditLog, authorization.ActionAuditLogView), s.ListAuditLogs)
}
