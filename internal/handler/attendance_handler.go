package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/logistik-admin-api/internal/dto"
	"github.com/noah-isme/logistik-admin-api/internal/middleware"
	"github.com/noah-isme/logistik-admin-api/internal/service"
	appErrors "github.com/noah-isme/logistik-admin-api/pkg/errors"
	"github.com/noah-isme/logistik-admin-api/pkg/response"
)

type attendanceService interface {
	Weekly(ctx context.Context, req dto.WeeklyAttendanceRequest) ([]dto.EmployeeAttendanceResponse, bool, error)
	Batch(ctx context.Context, req dto.BatchAttendanceRequest) (*dto.BatchAttendanceResult, error)
}

type attendanceExporter interface {
	Week(ctx context.Context, req dto.ExportAttendanceRequest) (*service.ExportResult, error)
}

// AttendanceHandler exposes the weekly attendance endpoints.
type AttendanceHandler struct {
	service  attendanceService
	exporter attendanceExporter
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(svc attendanceService, exporter attendanceExporter) *AttendanceHandler {
	return &AttendanceHandler{service: svc, exporter: exporter}
}

// Weekly godoc
// @Summary Weekly attendance
// @Description Employees who joined on or before endDate with their attendance records in range
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param startDate query string true "Start date (YYYY-MM-DD)"
// @Param endDate query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) Weekly(c *gin.Context) {
	req := dto.WeeklyAttendanceRequest{
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
	}

	rows, hit, err := h.service.Weekly(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, rows, nil, middleware.ExtractMeta(c))
}

// Batch godoc
// @Summary Apply attendance changes
// @Description Upserts or soft-deletes attendance per date in one transaction
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.BatchAttendanceRequest true "Batch payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /attendance/batch [post]
func (h *AttendanceHandler) Batch(c *gin.Context) {
	var req dto.BatchAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid request body"))
		return
	}

	result, err := h.service.Batch(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, nil)
}

// Export godoc
// @Summary Export weekly attendance
// @Description Renders the week containing date as csv, pdf or xlsx
// @Tags Attendance
// @Produce octet-stream
// @Security BearerAuth
// @Param date query string true "Any date in the week (YYYY-MM-DD)"
// @Param format query string false "csv, pdf or xlsx"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /attendance/export [get]
func (h *AttendanceHandler) Export(c *gin.Context) {
	req := dto.ExportAttendanceRequest{
		Date:   c.Query("date"),
		Format: c.Query("format"),
	}

	result, err := h.exporter.Week(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.File(c, result.Filename, result.ContentType, result.Data)
}
