package reporting

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/fieldops/internal/domain"
	"github.com/mamadbah2/fieldops/internal/domain/models"
	"github.com/mamadbah2/fieldops/internal/repository/mongodb"
)

const (
	dateLayout     = "2006-01-02"
	defaultCompany = "COMERCIALIZADORA AGRÍCOLA AAA S.A. DE C.V."
)

// DocumentStore persists report documents.
type DocumentStore interface {
	CreateReport(ctx context.Context, report models.FieldReport) (string, error)
	SetReportImages(ctx context.Context, reportID string, urls []string) error
	GetReport(ctx context.Context, reportID string) (models.FieldReport, error)
}

// ImageStore persists uploaded image bytes.
type ImageStore interface {
	UploadImage(ctx context.Context, filename string, content io.Reader) (string, error)
	OpenImage(ctx context.Context, fileID string) (io.ReadCloser, error)
}

// Image is one picture attached to a report.
type Image struct {
	Name    string
	Content io.Reader
}

// Service creates field inspection reports.
type Service struct {
	docs    DocumentStore
	images  ImageStore
	baseURL string
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a new reporting service instance. baseURL prefixes the
// URLs recorded for uploaded images.
func NewService(docs DocumentStore, images ImageStore, baseURL string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		docs:    docs,
		images:  images,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
		now:     time.Now,
	}
}

// CreateReport stores the report, uploads its images one by one and records
// the resulting URLs on the document. It returns the generated document id.
func (s *Service) CreateReport(ctx context.Context, report models.FieldReport, images []Image) (string, error) {
	if err := s.normalize(&report); err != nil {
		return "", err
	}

	id, err := s.docs.CreateReport(ctx, report)
	if err != nil {
		s.logger.Error("failed to create field report", zap.Error(err))
		return "", domain.ExternalService("create field report", err)
	}

	urls := make([]string, 0, len(images))
	for i, img := range images {
		filename := fmt.Sprintf("reportes/%s/%d.jpg", id, s.now().UnixNano())
		fileID, err := s.images.UploadImage(ctx, filename, img.Content)
		if err != nil {
			s.logger.Error("failed to upload report image",
				zap.String("report_id", id),
				zap.Int("index", i),
				zap.String("name", img.Name),
				zap.Error(err))
			return id, domain.ExternalService(fmt.Sprintf("upload image %d of report %s", i+1, id), err)
		}
		urls = append(urls, s.ImageURL(fileID))
	}

	if len(urls) > 0 {
		if err := s.docs.SetReportImages(ctx, id, urls); err != nil {
			s.logger.Error("failed to attach images to report", zap.String("report_id", id), zap.Error(err))
			return id, domain.ExternalService("attach images to report "+id, err)
		}
	}

	s.logger.Info("field report created", zap.String("report_id", id), zap.String("crop", report.Crop), zap.Int("images", len(urls)))
	return id, nil
}

// GetReport fetches a stored report.
func (s *Service) GetReport(ctx context.Context, reportID string) (models.FieldReport, error) {
	report, err := s.docs.GetReport(ctx, reportID)
	if errors.Is(err, mongodb.ErrNotFound) {
		return models.FieldReport{}, domain.NotFoundf("report %s not found", reportID)
	}
	if err != nil {
		return models.FieldReport{}, domain.ExternalService("load report", err)
	}
	return report, nil
}

// OpenImage returns the bytes of an uploaded image.
func (s *Service) OpenImage(ctx context.Context, fileID string) (io.ReadCloser, error) {
	rc, err := s.images.OpenImage(ctx, fileID)
	if errors.Is(err, mongodb.ErrNotFound) {
		return nil, domain.NotFoundf("image %s not found", fileID)
	}
	if err != nil {
		return nil, domain.ExternalService("open image", err)
	}
	return rc, nil
}

// ImageURL is the public URL of an uploaded image.
func (s *Service) ImageURL(fileID string) string {
	return fmt.Sprintf("%s/api/reports/images/%s", s.baseURL, fileID)
}

func (s *Service) normalize(report *models.FieldReport) error {
	report.Crop = strings.TrimSpace(report.Crop)
	if report.Crop == "" {
		return domain.Validationf("crop is required")
	}

	report.Date = strings.TrimSpace(report.Date)
	if report.Date == "" {
		report.Date = s.now().Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, report.Date); err != nil {
		return domain.Validationf("date must use YYYY-MM-DD, got %q", report.Date)
	}

	if loc := report.Location; loc != nil {
		if loc.Lat < -90 || loc.Lat > 90 || loc.Lng < -180 || loc.Lng > 180 {
			return domain.Validationf("location %.5f,%.5f is out of range", loc.Lat, loc.Lng)
		}
	}

	if report.Company == "" {
		report.Company = defaultCompany
	}
	if report.Pests == nil {
		report.Pests = map[string]models.PestObservation{}
	}
	if report.Diseases == nil {
		report.Diseases = map[string]models.DiseaseObservation{}
	}
	report.Images = []string{}
	report.CreatedAt = s.now().UTC()
	return nil
}
