package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ExcelExporter writes the quotation's line items and total with excelize
type ExcelExporter struct {
	sheetName string
}

// NewExcelExporter creates a new Excel exporter
func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{
		sheetName: "Quotation",
	}
}

// Export exports a quotation to xlsx
func (e *ExcelExporter) Export(doc *QuotationDocument, writer io.Writer) error {
	if doc == nil {
		return fmt.Errorf("quotation document is nil")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", e.sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	sheet := e.sheetName

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	if err != nil {
		return fmt.Errorf("failed to create title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#0066CC"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "#DDDDDD", Style: 1},
			{Type: "right", Color: "#DDDDDD", Style: 1},
			{Type: "top", Color: "#DDDDDD", Style: 1},
			{Type: "bottom", Color: "#DDDDDD", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	// Whole rupees with Indian grouping
	costFmt := `"₹"#,##,##0`
	costStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &costFmt})
	if err != nil {
		return fmt.Errorf("failed to create cost style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: &costFmt})
	if err != nil {
		return fmt.Errorf("failed to create total style: %w", err)
	}

	set := func(cell string, v interface{}) {
		if err == nil {
			err = f.SetCellValue(sheet, cell, v)
		}
	}

	set("A1", doc.Issuer)
	set("A2", "Quote No. "+doc.Reference)
	set("B2", "Date: "+doc.Date)
	set("A3", "Client: "+doc.Client.ClientName)
	set("B3", doc.Client.CompanyName)
	set("A5", "Service")
	set("B5", "Cost")
	if err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	_ = f.SetCellStyle(sheet, "A1", "A1", titleStyle)
	_ = f.SetCellStyle(sheet, "A5", "B5", headerStyle)

	row := 6
	for _, item := range doc.Services {
		set(fmt.Sprintf("A%d", row), item.Name)
		set(fmt.Sprintf("B%d", row), item.Cost)
		row++
	}
	if err != nil {
		return fmt.Errorf("failed to write line items: %w", err)
	}
	if row > 6 {
		_ = f.SetCellStyle(sheet, "B6", fmt.Sprintf("B%d", row-1), costStyle)
	}

	totalRow := row
	set(fmt.Sprintf("A%d", totalRow), "Total")
	set(fmt.Sprintf("B%d", totalRow), doc.TotalCost)
	set(fmt.Sprintf("A%d", totalRow+2), fmt.Sprintf("This quotation is valid for %d days from the date of issue.", validityDays(doc)))
	if err != nil {
		return fmt.Errorf("failed to write total: %w", err)
	}
	_ = f.SetCellStyle(sheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("B%d", totalRow), totalStyle)

	_ = f.SetColWidth(sheet, "A", "A", 48)
	_ = f.SetColWidth(sheet, "B", "B", 18)
	_ = f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      5,
		TopLeftCell: "A6",
		ActivePane:  "bottomLeft",
	})

	if err := f.Write(writer); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}

	return nil
}

// GetContentType returns the MIME type for Excel files
func (e *ExcelExporter) GetContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// GetFileExtension returns the file extension for Excel files
func (e *ExcelExporter) GetFileExtension() string {
	return ".xlsx"
}

func validityDays(doc *QuotationDocument) int {
	if doc.ValidityDays <= 0 {
		return DefaultValidityDays
	}
	return doc.ValidityDays
}
