package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/logistik-admin-api/internal/attendance"
	"github.com/noah-isme/logistik-admin-api/internal/dto"
	appErrors "github.com/noah-isme/logistik-admin-api/pkg/errors"
	"github.com/noah-isme/logistik-admin-api/pkg/export"
)

const (
	ExportFormatCSV  = "csv"
	ExportFormatPDF  = "pdf"
	ExportFormatXLSX = "xlsx"

	nameHeader = "Nama"
)

type weeklyAttendanceReader interface {
	Weekly(ctx context.Context, req dto.WeeklyAttendanceRequest) ([]dto.EmployeeAttendanceResponse, bool, error)
	Location() *time.Location
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type tableRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult is a rendered weekly attendance file.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders the weekly attendance grid into downloadable files.
type ExportService struct {
	attendance weeklyAttendanceReader
	csv        csvRenderer
	pdf        tableRenderer
	xlsx       tableRenderer
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(reader weeklyAttendanceReader, validate *validator.Validate, logger *zap.Logger, csv csvRenderer, pdf, xlsx tableRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if xlsx == nil {
		xlsx = export.NewXLSXExporter()
	}
	return &ExportService{attendance: reader, csv: csv, pdf: pdf, xlsx: xlsx, validator: validate, logger: logger}
}

// Week renders the week containing req.Date. The format defaults to CSV.
func (s *ExportService) Week(ctx context.Context, req dto.ExportAttendanceRequest) (*ExportResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date wajib diisi (YYYY-MM-DD) dan format harus csv, pdf, atau xlsx")
	}
	anchor, err := attendance.ParseDateKey(req.Date, s.attendance.Location())
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date tidak valid")
	}
	window := attendance.ComputeWeek(anchor)

	rows, _, err := s.attendance.Weekly(ctx, dto.WeeklyAttendanceRequest{StartDate: window.StartKey(), EndDate: window.EndKey()})
	if err != nil {
		return nil, err
	}
	grid := attendance.BuildGrid(window, dto.BaselineFromWeekly(rows), nil)
	dataset := datasetFromGrid(grid)
	title := "Absensi " + window.Label()

	format := strings.ToLower(req.Format)
	if format == "" {
		format = ExportFormatCSV
	}
	result := &ExportResult{Filename: fmt.Sprintf("absensi_%s_%s.%s", window.StartKey(), window.EndKey(), format)}
	switch format {
	case ExportFormatCSV:
		result.ContentType = "text/csv"
		result.Data, err = s.csv.Render(dataset)
	case ExportFormatPDF:
		result.ContentType = "application/pdf"
		result.Data, err = s.pdf.Render(dataset, title)
	case ExportFormatXLSX:
		result.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		result.Data, err = s.xlsx.Render(dataset, title)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format tidak didukung: "+req.Format)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.logger.Debug("attendance exported", zap.String("format", format), zap.String("start_date", window.StartKey()), zap.Int("employees", len(grid.Rows)))
	return result, nil
}

func datasetFromGrid(grid attendance.Grid) export.Dataset {
	headers := make([]string, 0, len(grid.Columns)+1)
	headers = append(headers, nameHeader)
	for _, col := range grid.Columns {
		headers = append(headers, col.Label)
	}
	data := export.Dataset{Headers: headers}
	for _, row := range grid.Rows {
		record := map[string]string{nameHeader: row.Employee.Name}
		for i, col := range grid.Columns {
			if row.Cells[i].IsSet() {
				record[col.Label] = row.Cells[i].Short()
			}
		}
		data.Rows = append(data.Rows, record)
	}
	return data
}
