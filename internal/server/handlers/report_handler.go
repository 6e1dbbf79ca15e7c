package handlers

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/fieldops/internal/domain"
	"github.com/mamadbah2/fieldops/internal/domain/models"
	"github.com/mamadbah2/fieldops/internal/service/reporting"
)

// Reports is the field report surface exposed over HTTP.
type Reports interface {
	CreateReport(ctx context.Context, report models.FieldReport, images []reporting.Image) (string, error)
	GetReport(ctx context.Context, reportID string) (models.FieldReport, error)
	OpenImage(ctx context.Context, fileID string) (io.ReadCloser, error)
}

// ReportHandler exposes field inspection reports.
type ReportHandler struct {
	svc    Reports
	logger *zap.Logger
}

// NewReportHandler constructs the HTTP handler adapter.
func NewReportHandler(svc Reports, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{svc: svc, logger: logger}
}

// Create accepts either a JSON report or a multipart form with a "report"
// JSON field and any number of "images" files.
func (h *ReportHandler) Create(c *gin.Context) {
	var report models.FieldReport
	var images []reporting.Image

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		form, err := c.MultipartForm()
		if err != nil {
			respondError(c, h.logger, domain.Validationf("invalid multipart form: %v", err))
			return
		}
		raw := form.Value["report"]
		if len(raw) == 0 {
			respondError(c, h.logger, domain.Validationf("multipart field \"report\" is required"))
			return
		}
		if err := json.Unmarshal([]byte(raw[0]), &report); err != nil {
			respondError(c, h.logger, domain.Validationf("invalid report payload: %v", err))
			return
		}

		files, closeAll, err := openAll(form.File["images"])
		defer closeAll()
		if err != nil {
			respondError(c, h.logger, domain.Validationf("cannot open image upload: %v", err))
			return
		}
		images = files
	} else if err := c.ShouldBindJSON(&report); err != nil {
		respondError(c, h.logger, domain.Validationf("invalid report payload: %v", err))
		return
	}

	id, err := h.svc.CreateReport(c.Request.Context(), report, images)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// Get returns a stored report.
func (h *ReportHandler) Get(c *gin.Context) {
	report, err := h.svc.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Image streams an uploaded report image.
func (h *ReportHandler) Image(c *gin.Context) {
	rc, err := h.svc.OpenImage(c.Request.Context(), c.Param("fileId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer rc.Close()

	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, -1, "image/jpeg", rc, nil)
}

func openAll(headers []*multipart.FileHeader) ([]reporting.Image, func(), error) {
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	images := make([]reporting.Image, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, closeAll, err
		}
		opened = append(opened, f)
		images = append(images, reporting.Image{Name: fh.Filename, Content: f})
	}
	return images, closeAll, nil
}
