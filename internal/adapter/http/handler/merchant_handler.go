package handler

import (
	"paytrust-gateway/internal/adapter/http/dto"
	"paytrust-gateway/internal/adapter/http/middleware"
	"paytrust-gateway/internal/core/domain"
	"paytrust-gateway/internal/core/ports"
	"paytrust-gateway/pkg/apperror"
	"paytrust-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// MerchantHandler handles merchant self-service endpoints. All routes are
// JWT-authenticated and keyed by the session user.
type MerchantHandler struct {
	merchantSvc ports.MerchantService
}

// NewMerchantHandler creates a new merchant handler.
func NewMerchantHandler(merchantSvc ports.MerchantService) *MerchantHandler {
	return &MerchantHandler{merchantSvc: merchantSvc}
}

func sessionIdentity(c *gin.Context) (domain.Identity, bool) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return domain.Identity{}, false
	}
	return identity, true
}

// Create handles POST /api/v1/merchants. The plaintext api_secret appears
// in this response only.
func (h *MerchantHandler) Create(c *gin.Context) {
	identity, ok := sessionIdentity(c)
	if !ok {
		return
	}

	var req dto.CreateMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	creds, err := h.merchantSvc.Create(c.Request.Context(), identity.UserID, req.BusinessName, req.WebhookURL)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewMerchantCredentialsResponse(creds))
}

// GetProfile handles GET /api/v1/merchants/me. The secret is never part
// of this view.
func (h *MerchantHandler) GetProfile(c *gin.Context) {
	identity, ok := sessionIdentity(c)
	if !ok {
		return
	}

	merchant, err := h.merchantSvc.GetByUserID(c.Request.Context(), identity.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewMerchantResponse(merchant))
}

// RotateCredentials handles POST /api/v1/merchants/rotate. The previous
// secret stops verifying immediately; the new one is shown once.
func (h *MerchantHandler) RotateCredentials(c *gin.Context) {
	identity, ok := sessionIdentity(c)
	if !ok {
		return
	}

	creds, err := h.merchantSvc.RotateCredentials(c.Request.Context(), identity.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewMerchantCredentialsResponse(creds))
}

// UpdateWebhookURL handles PUT /api/v1/merchants/webhook.
func (h *MerchantHandler) UpdateWebhookURL(c *gin.Context) {
	identity, ok := sessionIdentity(c)
	if !ok {
		return
	}

	var req dto.UpdateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	if err := h.merchantSvc.UpdateWebhookURL(c.Request.Context(), identity.UserID, req.WebhookURL); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"message": "webhook URL updated"})
}

// GetStats handles GET /api/v1/merchants/stats.
func (h *MerchantHandler) GetStats(c *gin.Context) {
	identity, ok := sessionIdentity(c)
	if !ok {
		return
	}

	summary, err := h.merchantSvc.GetStats(c.Request.Context(), identity.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, summary)
}
