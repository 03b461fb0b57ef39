package server

import (
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/xraph/billpay"
)

const (
	msgKeyRequired        = "Subscriber number and month parameters are required."
	msgSubscriberRequired = "Subscriber number parameter is required."
	msgPayRequired        = "Subscriber number, month, and amountPaid parameters are required."
	msgInvoiceNotFound    = "Invoice not found"
	msgInvoicesNotFound   = "Invoices not found"
	msgUnpaidNotFound     = "Unpaid invoices not found"
	msgPaid               = "Invoice successfully paid"
	msgAdded              = "Invoice successfully added"
	msgDuplicate          = "An invoice for this month already exists."
	msgInvalidBody        = "Invalid request body."
	msgInternal           = "Internal server error"
)

type payRequest struct {
	SubscriberNo string          `json:"subscriberNo"`
	Month        string          `json:"month"`
	AmountPaid   decimal.Decimal `json:"amountPaid"`
}

type addRequest struct {
	SubscriberNo string          `json:"subscriberNo"`
	Month        string          `json:"month"`
	Total        decimal.Decimal `json:"total"`
}

// Invoice handlers

func (s *Server) handleGetInvoice(c *gin.Context) {
	inv, err := s.ledger.FindInvoice(c.Request.Context(), c.Query("subscriberNo"), c.Query("month"))
	if err != nil {
		s.fail(c, err, msgKeyRequired, msgInvoiceNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "invoice": inv})
}

func (s *Server) handleInvoiceDetails(c *gin.Context) {
	page := leadingInt(c.Query("page"))
	pageSize := leadingInt(c.Query("pageSize"))

	invs, err := s.ledger.FindInvoicesPage(c.Request.Context(), c.Query("subscriberNo"), c.Query("month"), page, pageSize)
	if err != nil {
		s.fail(c, err, msgKeyRequired, msgInvoicesNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "invoices": invs})
}

func (s *Server) handleNotPaid(c *gin.Context) {
	invs, err := s.ledger.FindUnpaid(c.Request.Context(), c.Query("subscriberNo"))
	if err != nil {
		s.fail(c, err, msgSubscriberRequired, msgUnpaidNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "unpaidBills": invs})
}

func (s *Server) handlePay(c *gin.Context) {
	var req payRequest
	if !s.bind(c, &req) {
		return
	}

	inv, err := s.ledger.Pay(c.Request.Context(), req.SubscriberNo, req.Month, req.AmountPaid)
	if err != nil {
		s.fail(c, err, msgPayRequired, msgInvoiceNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": msgPaid,
		"invoice": inv,
	})
}

func (s *Server) handleAdd(c *gin.Context) {
	var req addRequest
	if !s.bind(c, &req) {
		return
	}

	_, err := s.ledger.AddInvoice(c.Request.Context(), req.SubscriberNo, req.Month, req.Total)
	if billpay.IsConflict(err) {
		respond(c, http.StatusBadRequest, msgDuplicate)
		return
	}
	if err != nil {
		s.fail(c, err, msgKeyRequired, msgInvoiceNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"message":           msgAdded,
		"transactionStatus": "SUCCESS",
	})
}

// Operational handlers

func (s *Server) handleLive(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleReady(c *gin.Context) {
	if err := s.ledger.Ping(c.Request.Context()); err != nil {
		s.log.Warn().Err(err).Msg("readiness check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// bind decodes the JSON body into dst. An empty body leaves dst zeroed so the
// ledger reports the missing fields.
func (s *Server) bind(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	respond(c, http.StatusBadRequest, msgInvalidBody)
	return false
}

// fail maps a ledger error to its HTTP response.
func (s *Server) fail(c *gin.Context, err error, badRequest, notFound string) {
	switch {
	case billpay.IsBadRequest(err):
		respond(c, http.StatusBadRequest, badRequest)
	case billpay.IsNotFound(err):
		respond(c, http.StatusNotFound, notFound)
	default:
		s.log.Error().
			Err(err).
			Str("request_id", c.GetString(requestIDHeader)).
			Msg("ledger operation failed")
		respond(c, http.StatusInternalServerError, msgInternal)
	}
}

// leadingInt parses the integer prefix of s, so "2abc" is 2. Input without
// leading digits yields 0, which the ledger replaces with its defaults.
// Values too large for an int saturate.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}

	n, err := strconv.Atoi(s[:end])
	if errors.Is(err, strconv.ErrRange) {
		if s[0] == '-' {
			return math.MinInt
		}
		return math.MaxInt
	}
	return n
}

func respond(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}
