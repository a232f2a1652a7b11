package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/Rhymond/go-money"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/proposal"
)

// ExportFormat represents the export file format
type ExportFormat string

const (
	FormatPDF   ExportFormat = "pdf"
	FormatExcel ExportFormat = "xlsx"
	FormatHTML  ExportFormat = "html"
)

// ParseFormat accepts the query-string spellings used by the API
func ParseFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pdf":
		return FormatPDF, nil
	case "xlsx", "excel":
		return FormatExcel, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", s)
	}
}

// Exporter is the interface for all export formats
type Exporter interface {
	Export(doc *QuotationDocument, writer io.Writer) error
	GetContentType() string
	GetFileExtension() string
}

// DefaultValidityDays is printed in the quotation footer
const DefaultValidityDays = 30

// QuotationDocument is everything a rendered quotation shows
type QuotationDocument struct {
	// ID is the stored quotation's id; exports are filed under it
	ID           string
	Reference    string
	Date         string
	Issuer       string
	Tagline      string
	Client       proposal.ClientDetails
	Services     []proposal.LineItem
	TotalCost    int64
	RawContent   string
	ValidityDays int
}

// NewQuotationDocument fills issuer defaults around a parsed quotation
func NewQuotationDocument(reference, date string, client proposal.ClientDetails, result *proposal.QuotationResult) *QuotationDocument {
	doc := &QuotationDocument{
		Reference:    reference,
		Date:         date,
		Issuer:       proposal.CompanyName,
		Tagline:      proposal.CompanyTagline,
		Client:       client,
		ValidityDays: DefaultValidityDays,
	}
	if result != nil {
		doc.Services = result.Services
		doc.TotalCost = result.TotalCost
		doc.RawContent = result.RawContent
	}
	return doc
}

// FormatINR renders whole rupees the way the quotation shows them, e.g. ₹70,000.00
func FormatINR(rupees int64) string {
	return money.New(rupees*100, money.INR).Display()
}
