package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/logistik-admin-api/internal/dto"
	"github.com/noah-isme/logistik-admin-api/internal/models"
	appErrors "github.com/noah-isme/logistik-admin-api/pkg/errors"
	"github.com/noah-isme/logistik-admin-api/pkg/response"
)

type periodService interface {
	Get(ctx context.Context, date string) (*models.Period, error)
	Close(ctx context.Context, req dto.ClosePeriodRequest, closedBy string) (*models.Period, error)
}

// PeriodHandler exposes weekly period lookups and closing.
type PeriodHandler struct {
	service periodService
}

// NewPeriodHandler constructs a period handler.
func NewPeriodHandler(svc periodService) *PeriodHandler {
	return &PeriodHandler{service: svc}
}

// Get godoc
// @Summary Weekly period for a date
// @Tags Periods
// @Produce json
// @Security BearerAuth
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /periods [get]
func (h *PeriodHandler) Get(c *gin.Context) {
	period, err := h.service.Get(c.Request.Context(), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}

// Close godoc
// @Summary Close weekly period
// @Description Closed periods reject further attendance changes
// @Tags Periods
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.ClosePeriodRequest true "Close payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /periods/close [post]
func (h *PeriodHandler) Close(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ClosePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid request body"))
		return
	}

	period, err := h.service.Close(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}
