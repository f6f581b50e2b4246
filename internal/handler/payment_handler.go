package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/enlistment-api/internal/service"
	appErrors "github.com/noah-isme/enlistment-api/pkg/errors"
	"github.com/noah-isme/enlistment-api/pkg/response"
)

// PaymentHandler records cashier walk-in payments.
type PaymentHandler struct {
	enlistments *service.EnlistmentService
	metrics     *service.MetricsService
}

// NewPaymentHandler creates a new handler.
func NewPaymentHandler(enlistments *service.EnlistmentService, metrics *service.MetricsService) *PaymentHandler {
	return &PaymentHandler{enlistments: enlistments, metrics: metrics}
}

// WalkIn godoc
// @Summary Record a walk-in payment
// @Description Appends an over-the-counter payment and reconciles the applicant status
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body service.WalkInPaymentRequest true "Payment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /payments/walk-in [post]
// @Security BearerAuth
func (h *PaymentHandler) WalkIn(c *gin.Context) {
	var req service.WalkInPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payment payload"))
		return
	}

	result, err := h.enlistments.RecordWalkInPayment(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordWalkInPayment(req.Amount)
	}
	response.Created(c, result)
}
