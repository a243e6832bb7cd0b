package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	auditdomain "github.com/udyogmart/udyogmart/internal/audit/domain"
	escrowdomain "github.com/udyogmart/udyogmart/internal/escrow/domain"
	"github.com/udyogmart/udyogmart/pkg/db/pagination"
)

type createEscrowRequest struct {
	OrderID    string `json:"order_id"`
	BuyerID    string `json:"buyer_id"`
	SupplierID string `json:"supplier_id"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
}

type fundEscrowRequest struct {
	PaymentMethod string `json:"payment_method"`
	TransactionID string `json:"transaction_id"`
}

type releaseEscrowRequest struct {
	QCPassed bool `json:"qc_passed"`
}

type refundEscrowRequest struct {
	Reason string `json:"reason"`
}

// escrowResponse augments the stored account with the read-time expiry
// observation. Expiry is never written back as a state.
type escrowResponse struct {
	*escrowdomain.EscrowAccount
	Expired bool `json:"expired"`
}

func (s *Server) CreateEscrow(c *gin.Context) {
	var req createEscrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	orderID, err := parseID(req.OrderID)
	if err != nil {
		AbortWithError(c, newValidationError("order_id", "invalid_order_id", "invalid order_id"))
		return
	}
	buyerID, err := parseID(req.BuyerID)
	if err != nil {
		AbortWithError(c, newValidationError("buyer_id", "invalid_buyer_id", "invalid buyer_id"))
		return
	}
	supplierID, err := parseID(req.SupplierID)
	if err != nil {
		AbortWithError(c, newValidationError("supplier_id", "invalid_supplier_id", "invalid supplier_id"))
		return
	}

	resp, err := s.settlementSvc.CreateEscrow(c.Request.Context(), escrowdomain.CreateEscrowRequest{
		OrderID:    orderID,
		BuyerID:    buyerID,
		SupplierID: supplierID,
		Amount:     req.Amount,
		Currency:   strings.TrimSpace(req.Currency),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": s.escrowResponse(resp)})
}

func (s *Server) GetEscrowByID(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	resp, err := s.escrowSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": s.escrowResponse(resp)})
}

func (s *Server) ListEscrowAuditLogs(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	var query pagination.Pagination
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.auditSvc.List(c.Request.Context(), auditdomain.ListRequest{
		EscrowID:  id,
		PageToken: query.PageToken,
		PageSize:  query.PageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) FundEscrow(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	var req fundEscrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.settlementSvc.FundEscrow(c.Request.Context(), escrowdomain.FundEscrowRequest{
		EscrowID:      id,
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		TransactionID: strings.TrimSpace(req.TransactionID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": s.escrowResponse(resp)})
}

func (s *Server) ReleaseEscrow(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	var req releaseEscrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.settlementSvc.ReleaseEscrow(c.Request.Context(), escrowdomain.ReleaseEscrowRequest{
		EscrowID: id,
		QCPassed: req.QCPassed,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": s.escrowResponse(resp)})
}

func (s *Server) RefundEscrow(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	var req refundEscrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.settlementSvc.RefundEscrow(c.Request.Context(), escrowdomain.RefundEscrowRequest{
		EscrowID: id,
		Reason:   strings.TrimSpace(req.Reason),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": s.escrowResponse(resp)})
}

// FundRateLimit throttles funding attempts per buyer. The buyer is resolved
// from the escrow record; unknown accounts fall through so the handler can
// return its usual not found response.
func (s *Server) FundRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.fundLimiter.Enabled() {
			c.Next()
			return
		}

		id, err := parseID(c.Param("id"))
		if err != nil {
			c.Next()
			return
		}

		account, err := s.escrowSvc.GetByID(c.Request.Context(), id)
		if err != nil {
			c.Next()
			return
		}

		allowed, err := s.fundLimiter.AllowBuyer(c.Request.Context(), account.BuyerID.String())
		if err != nil {
			// Redis trouble never blocks settlement traffic.
			c.Next()
			return
		}
		if !allowed {
			AbortWithError(c, ErrTooManyRequests)
			return
		}

		c.Next()
	}
}

func (s *Server) escrowResponse(account *escrowdomain.EscrowAccount) escrowResponse {
	return escrowResponse{
		EscrowAccount: account,
		Expired:       account.Expired(s.clock.Now()),
	}
}

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}
