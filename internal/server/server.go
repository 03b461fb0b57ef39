// Package server exposes the billpay Ledger over HTTP using gin.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/xraph/billpay/invoice"
)

// Ledger is the subset of *billpay.Ledger the handlers use.
type Ledger interface {
	FindInvoice(ctx context.Context, subscriberNo, month string) (*invoice.Invoice, error)
	FindInvoicesPage(ctx context.Context, subscriberNo, month string, page, pageSize int) ([]*invoice.Invoice, error)
	FindUnpaid(ctx context.Context, subscriberNo string) ([]*invoice.Invoice, error)
	Pay(ctx context.Context, subscriberNo, month string, amountPaid decimal.Decimal) (*invoice.Invoice, error)
	AddInvoice(ctx context.Context, subscriberNo, month string, total decimal.Decimal) (*invoice.Invoice, error)
	Ping(ctx context.Context) error
}

// Server is the billpay HTTP server
type Server struct {
	ledger  Ledger
	router  *gin.Engine
	log     zerolog.Logger
	metrics http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithMetricsHandler serves h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// New creates a new server backed by l
func New(l Ledger, log zerolog.Logger, opts ...Option) *Server {
	s := &Server{
		ledger: l,
		router: gin.New(),
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router.Use(requestID(), accessLog(s.log), recovery(s.log))
	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Not found"})
	})

	// Invoice routes
	invoices := s.router.Group("/invoices")
	{
		invoices.GET("", s.handleGetInvoice)
		invoices.GET("/details", s.handleInvoiceDetails)
		invoices.GET("/notpaid", s.handleNotPaid)
		invoices.PUT("/pay", s.handlePay)
		invoices.POST("/add", s.handleAdd)
	}

	// Operational routes
	s.router.GET("/health/live", s.handleLive)
	s.router.GET("/health/ready", s.handleReady)
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics))
	}

	return s
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}
