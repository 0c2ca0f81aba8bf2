package handler

import (
	"strconv"
	"time"

	"paytrust-gateway/internal/adapter/http/dto"
	"paytrust-gateway/internal/core/domain"
	"paytrust-gateway/internal/core/ports"
	"paytrust-gateway/pkg/apperror"
	"paytrust-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TransactionHandler handles the transaction ledger endpoints. Checkout
// creation and settlement arrive over the HMAC-signed merchant API; the
// read endpoints serve JWT dashboard sessions and resolve the merchant
// from the session user.
type TransactionHandler struct {
	ledger      ports.TransactionLedger
	merchantSvc ports.MerchantService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ledger ports.TransactionLedger, merchantSvc ports.MerchantService) *TransactionHandler {
	return &TransactionHandler{ledger: ledger, merchantSvc: merchantSvc}
}

// CreateCheckout handles POST /api/v1/transactions (HMAC).
func (h *TransactionHandler) CreateCheckout(c *gin.Context) {
	identity, ok := sessionIdentity(c)
	if !ok {
		return
	}

	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	tx, err := h.ledger.CreateCheckout(c.Request.Context(), ports.CheckoutRequest{
		MerchantID:    identity.MerchantID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		CustomerEmail: req.CustomerEmail,
		Metadata:      req.Metadata,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewTransactionResponse(tx))
}

// Settle handles POST /api/v1/transactions/:id/settle (HMAC). Only the
// owning merchant can settle; other merchants' transactions 404.
func (h *TransactionHandler) Settle(c *gin.Context) {
	identity, ok := sessionIdentity(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrNotFound("transaction"))
		return
	}

	if _, err := h.ledger.GetDetails(c.Request.Context(), identity.MerchantID, id); err != nil {
		response.Error(c, err)
		return
	}

	tx, err := h.ledger.Settle(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewTransactionResponse(tx))
}

// List handles GET /api/v1/transactions (JWT) with optional filters:
// status, from, to (RFC3339), min_amount, max_amount, limit, skip.
func (h *TransactionHandler) List(c *gin.Context) {
	merchant, ok := h.resolveMerchant(c)
	if !ok {
		return
	}

	params := ports.TransactionListParams{MerchantID: merchant.ID}

	if s := c.Query("status"); s != "" {
		status := domain.TransactionStatus(s)
		params.Status = &status
	}
	if s := c.Query("from"); s != "" {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			response.Error(c, apperror.Validation("invalid 'from' timestamp"))
			return
		}
		params.From = &ts
	}
	if s := c.Query("to"); s != "" {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			response.Error(c, apperror.Validation("invalid 'to' timestamp"))
			return
		}
		params.To = &ts
	}
	if s := c.Query("min_amount"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			response.Error(c, apperror.Validation("invalid 'min_amount'"))
			return
		}
		params.MinAmount = &v
	}
	if s := c.Query("max_amount"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			response.Error(c, apperror.Validation("invalid 'max_amount'"))
			return
		}
		params.MaxAmount = &v
	}
	if s := c.Query("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			response.Error(c, apperror.Validation("invalid 'limit'"))
			return
		}
		params.Limit = v
	}
	if s := c.Query("skip"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			response.Error(c, apperror.Validation("invalid 'skip'"))
			return
		}
		params.Skip = v
	}

	page, err := h.ledger.History(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewTransactionListResponse(page))
}

// Summary handles GET /api/v1/transactions/summary (JWT).
func (h *TransactionHandler) Summary(c *gin.Context) {
	merchant, ok := h.resolveMerchant(c)
	if !ok {
		return
	}

	summary, err := h.ledger.Summary(c.Request.Context(), merchant.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, summary)
}

// GetByID handles GET /api/v1/transactions/:id (JWT).
func (h *TransactionHandler) GetByID(c *gin.Context) {
	merchant, ok := h.resolveMerchant(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrNotFound("transaction"))
		return
	}

	tx, err := h.ledger.GetDetails(c.Request.Context(), merchant.ID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewTransactionResponse(tx))
}

func (h *TransactionHandler) resolveMerchant(c *gin.Context) (*domain.Merchant, bool) {
	identity, ok := sessionIdentity(c)
	if !ok {
		return nil, false
	}

	merchant, err := h.merchantSvc.GetByUserID(c.Request.Context(), identity.UserID)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return merchant, true
}
