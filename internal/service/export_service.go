package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/card-order-api/internal/models"
	"github.com/noah-isme/card-order-api/pkg/export"
)

type applicationLister interface {
	List(ctx context.Context, statusFilter string) ([]models.Application, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Name        string
	ContentType string
	Content     []byte
}

// ExportService renders the application list for offline use.
type ExportService struct {
	applications applicationLister
	logger       *zap.Logger
	now          func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(applications applicationLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{applications: applications, logger: logger, now: time.Now}
}

// ApplicationsCSV lists applications with the same filter rules as List and
// renders them with the worksheet's headers and labels.
func (s *ExportService) ApplicationsCSV(ctx context.Context, statusFilter string) (*ExportFile, error) {
	apps, err := s.applications.List(ctx, statusFilter)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(apps))
	for _, app := range apps {
		rows = append(rows, exportRow(app))
	}
	content, err := export.CSV(export.Dataset{Headers: models.ApplicationHeaders, Rows: rows})
	if err != nil {
		return nil, err
	}

	s.logger.Info("applications exported", zap.Int("rows", len(rows)), zap.String("status", statusFilter))
	return &ExportFile{
		Name:        fmt.Sprintf("applications-%s.csv", s.now().Format("20060102-150405")),
		ContentType: "text/csv; charset=utf-8",
		Content:     content,
	}, nil
}

func exportRow(app models.Application) []string {
	status := app.StatusLabel
	if status == "" {
		status = string(app.Status)
	}
	row := []string{
		app.ID,
		status,
		app.ApplicantEmail,
		app.ApplicantName,
		strconv.Itoa(app.Quantity),
		labelOr(app.SameAsExisting.Label(), string(app.SameAsExisting)),
		labelOr(app.IsLawyer.Label(), string(app.IsLawyer)),
		app.LawyerName,
		app.Remarks,
		exportTime(app.CreatedAt),
		app.AttachmentURL,
		app.ProcessedBy,
		"",
	}
	if app.ProcessedAt != nil {
		row[12] = exportTime(*app.ProcessedAt)
	}
	return row
}

func labelOr(label, raw string) string {
	if label != "" {
		return label
	}
	return raw
}

func exportTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
