package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/pkg/export"
	"github.com/noah-isme/exam-seating-api/pkg/storage"
)

type planReader interface {
	Load(ctx context.Context) (*models.SeatingPlan, error)
}

type fileStorage interface {
	Save(ctx context.Context, name string, data []byte, contentType string) (string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
	CleanupOlderThan(ctx context.Context, ttl time.Duration) ([]string, error)
}

type documentRenderer interface {
	Render(doc export.Document) ([]byte, error)
	ContentType() string
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders plan documents and persists them behind signed URLs.
type ExportService struct {
	plans   planReader
	storage fileStorage
	csv     documentRenderer
	pdf     documentRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService. Nil renderers fall back to the
// package exporters.
func NewExportService(plans planReader, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv, pdf documentRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		plans:   plans,
		storage: store,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

// Generate renders the job's document from the current plan and stores it.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	plan, err := s.plans.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load plan: %w", err)
	}
	if job.PlanID != "" && plan.ID != job.PlanID {
		return nil, fmt.Errorf("seating plan %s was replaced by %s", job.PlanID, plan.ID)
	}

	doc, err := BuildDocument(plan, job.Type)
	if err != nil {
		return nil, err
	}
	renderer, err := s.renderer(job.Format)
	if err != nil {
		return nil, err
	}
	payload, err := renderer.Render(doc)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", job.Format, err)
	}

	relPath, err := s.storage.Save(ctx, s.buildFilename(job), payload, renderer.ContentType())
	if err != nil {
		return nil, fmt.Errorf("store export: %w", err)
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	s.logger.Debug("export rendered", zap.String("job_id", job.ID), zap.String("path", relPath), zap.Int("bytes", len(payload)))
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       job.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (storage.DownloadClaims, error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a reader over the stored file.
func (s *ExportService) Open(ctx context.Context, relPath string) (io.ReadCloser, error) {
	return s.storage.Open(ctx, relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(ctx context.Context, relPath string) error {
	return s.storage.Delete(ctx, relPath)
}

// Cleanup removes stored files older than the result TTL.
func (s *ExportService) Cleanup(ctx context.Context) ([]string, error) {
	return s.storage.CleanupOlderThan(ctx, s.cfg.ResultTTL)
}

// ContentType returns the MIME type for a format.
func (s *ExportService) ContentType(format models.ExportFormat) string {
	renderer, err := s.renderer(format)
	if err != nil {
		return "application/octet-stream"
	}
	return renderer.ContentType()
}

func (s *ExportService) renderer(format models.ExportFormat) (documentRenderer, error) {
	switch format {
	case models.ExportFormatCSV:
		return s.csv, nil
	case models.ExportFormatPDF:
		return s.pdf, nil
	default:
		return nil, fmt.Errorf("unsupported format %s", format)
	}
}

func (s *ExportService) buildFilename(job *models.ExportJob) string {
	plan := job.PlanID
	if len(plan) > 8 {
		plan = plan[:8]
	}
	return fmt.Sprintf("%s/%s_%s_%s.%s", time.Now().UTC().Format("20060102"), job.Type, plan, job.ID, job.Format)
}
