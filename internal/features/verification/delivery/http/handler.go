package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wallet-verify-backend/internal/common/logger"
	"wallet-verify-backend/internal/features/verification/models"
	"wallet-verify-backend/internal/features/verification/service"
)

type VerificationHandler struct {
	service *service.Service
}

func NewVerificationHandler(svc *service.Service) *VerificationHandler {
	return &VerificationHandler{service: svc}
}

func (h *VerificationHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/verify", h.verify)
}

// @Summary Submit a wallet ownership proof
// @Description Accepts a verification token with a signed message. The 200 response means the submission was accepted for processing; validation runs asynchronously and reports nothing back.
// @Tags verification
// @Accept json
// @Produce json
// @Param request body models.VerifyRequest true "Token, wallet address and signature"
// @Success 200 {object} models.VerifyResponse "Accepted for processing"
// @Failure 400 {object} models.ErrorResponse "Missing data"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /verify [post]
func (h *VerificationHandler) verify(c *gin.Context) {
	var req models.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error().Err(err).Msg("Failed to parse verification request")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
		return
	}

	if req.Token == "" || req.WalletAddress == "" || req.Signature == "" {
		logger.Error().Msg("Missing data: one or more fields are empty")
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Missing data"})
		return
	}

	// Hand off and answer optimistically; the outcome is deliberately
	// invisible to the submitter.
	h.service.Submit(service.Submission{
		Token:         req.Token,
		WalletAddress: req.WalletAddress,
		Signature:     req.Signature,
	})

	c.JSON(http.StatusOK, models.VerifyResponse{Message: "Verification successful"})
}
