package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/enlistment-api/internal/service"
	appErrors "github.com/noah-isme/enlistment-api/pkg/errors"
	"github.com/noah-isme/enlistment-api/pkg/response"
)

// EnlistmentHandler wires the enrollment flows to HTTP.
type EnlistmentHandler struct {
	enlistments *service.EnlistmentService
	waitlist    *service.WaitlistService
	metrics     *service.MetricsService
}

// NewEnlistmentHandler creates a new handler.
func NewEnlistmentHandler(enlistments *service.EnlistmentService, waitlist *service.WaitlistService, metrics *service.MetricsService) *EnlistmentHandler {
	return &EnlistmentHandler{enlistments: enlistments, waitlist: waitlist, metrics: metrics}
}

// Enlist godoc
// @Summary Enlist a student into a section
// @Description Adds the student, or waitlists them when the section is full
// @Tags Enlistments
// @Accept json
// @Produce json
// @Param payload body service.EnlistSubjectRequest true "Enlistment payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /enlistments [post]
// @Security BearerAuth
func (h *EnlistmentHandler) Enlist(c *gin.Context) {
	var req service.EnlistSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid enlistment payload"))
		return
	}

	result, err := h.enlistments.EnlistSubject(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordEnlistOutcome(result.Outcome)
	}
	status := http.StatusOK
	if result.Outcome == service.EnlistOutcomeAdded {
		status = http.StatusCreated
	}
	response.JSON(c, status, result, nil)
}

// RemoveBulk godoc
// @Summary Remove enlisted subjects
// @Description Deletes the selected enlistments and promotes waiters into freed seats
// @Tags Enlistments
// @Accept json
// @Produce json
// @Param payload body service.RemoveSubjectsRequest true "Removal payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enlistments/bulk-remove [post]
// @Security BearerAuth
func (h *EnlistmentHandler) RemoveBulk(c *gin.Context) {
	var req service.RemoveSubjectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid removal payload"))
		return
	}

	result, err := h.enlistments.RemoveSubjectsBulk(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordRemovals(result.RemovedCount)
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// CancelWaitlist godoc
// @Summary Cancel a waitlist entry
// @Description Withdraws a WAITING entry from its course queue
// @Tags Enlistments
// @Produce json
// @Param id path string true "Waitlist entry id"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /waitlist/{id}/cancel [post]
// @Security BearerAuth
func (h *EnlistmentHandler) CancelWaitlist(c *gin.Context) {
	if err := h.waitlist.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
