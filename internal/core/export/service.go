package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/upload"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/shared/utils"
)

// ErrMissingQuotationID rejects exports of documents that were never stored
var ErrMissingQuotationID = errors.New("quotation id is required for export")

// htmlExporter stores the rendered page as-is
type htmlExporter struct{}

func (htmlExporter) Export(doc *QuotationDocument, w io.Writer) error {
	page, err := RenderQuotationHTML(doc)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, page)
	return err
}

func (htmlExporter) GetContentType() string   { return "text/html; charset=utf-8" }
func (htmlExporter) GetFileExtension() string { return ".html" }

// Service renders quotations and stores the files
type Service struct {
	exporters map[ExportFormat]Exporter
	storage   upload.Provider
}

// NewService creates a new export service. storage may be nil when only
// in-memory rendering (Render) is needed.
func NewService(storage upload.Provider) *Service {
	return &Service{
		exporters: map[ExportFormat]Exporter{
			FormatPDF:   NewPDFExporter(),
			FormatExcel: NewExcelExporter(),
			FormatHTML:  htmlExporter{},
		},
		storage: storage,
	}
}

func (s *Service) exporter(format ExportFormat) (Exporter, error) {
	e, ok := s.exporters[format]
	if !ok {
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
	return e, nil
}

// Render writes the quotation in the given format and returns its content type
func (s *Service) Render(doc *QuotationDocument, format ExportFormat, w io.Writer) (string, error) {
	e, err := s.exporter(format)
	if err != nil {
		return "", err
	}
	if err := e.Export(doc, w); err != nil {
		return "", fmt.Errorf("%s export failed: %w", format, err)
	}
	return e.GetContentType(), nil
}

// FileName is the sanitized storage name for a quotation export
func (s *Service) FileName(doc *QuotationDocument, format ExportFormat) string {
	ext := ".bin"
	if e, err := s.exporter(format); err == nil {
		ext = e.GetFileExtension()
	}
	base := "quotation_" + utils.SafeFileName(doc.Client.CompanyName)
	return strings.TrimSuffix(base, ext) + ext
}

// ExportQuotation renders the quotation and stores it under quotations/{id}/, returning where it landed
func (s *Service) ExportQuotation(ctx context.Context, doc *QuotationDocument, format ExportFormat) (*upload.UploadResult, error) {
	if s.storage == nil {
		return nil, fmt.Errorf("export storage not configured")
	}
	if doc == nil || doc.ID == "" {
		return nil, ErrMissingQuotationID
	}

	var buf bytes.Buffer
	contentType, err := s.Render(doc, format, &buf)
	if err != nil {
		return nil, err
	}

	name := s.FileName(doc, format)
	folder := "quotations/" + utils.SafeFileName(doc.ID)

	res, err := s.storage.Upload(ctx, &buf, name, &upload.UploadOptions{
		Folder:      folder,
		ContentType: contentType,
		Overwrite:   true,
	})
	if err != nil {
		utils.LogError("Failed to store quotation export", err, map[string]interface{}{
			"quotation_id": doc.ID,
			"file":         name,
			"provider":     s.storage.GetProviderName(),
		})
		return nil, fmt.Errorf("failed to store export: %w", err)
	}

	utils.LogInfo("Quotation exported", map[string]interface{}{
		"file": name,
		"url":  res.URL,
		"size": res.Size,
	})
	return res, nil
}
