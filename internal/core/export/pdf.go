package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// PDFExporter renders the quotation page and lays it out with gofpdf
type PDFExporter struct {
	pageSize string
}

// NewPDFExporter creates a new PDF exporter
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{pageSize: "A4"}
}

// Export exports a quotation to PDF
func (p *PDFExporter) Export(doc *QuotationDocument, writer io.Writer) error {
	page, err := RenderQuotationHTML(doc)
	if err != nil {
		return err
	}
	return htmlToPDF(page, p.pageSize, writer)
}

// GetContentType returns the MIME type for PDF files
func (p *PDFExporter) GetContentType() string {
	return "application/pdf"
}

// GetFileExtension returns the file extension for PDF files
func (p *PDFExporter) GetFileExtension() string {
	return ".pdf"
}

// HTMLToPDF converts an HTML document to an A4 PDF. Headings, paragraphs,
// list items and table rows are kept; styling is not.
func HTMLToPDF(src string, w io.Writer) error {
	return htmlToPDF(src, "A4", w)
}

type blockKind int

const (
	blockHeading blockKind = iota
	blockParagraph
	blockListItem
	blockTableRow
	blockRule
)

type block struct {
	kind   blockKind
	level  int // heading level, or list nesting depth
	text   string
	cells  []string
	header bool
}

// extractBlocks flattens the parsed document into printable blocks
func extractBlocks(src string) ([]block, error) {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	var blocks []block
	var walk func(n *html.Node, depth int)
	walk = func(n *html.Node, depth int) {
		switch n.Type {
		case html.TextNode:
			if t := normalizeText(n.Data); t != "" {
				blocks = append(blocks, block{kind: blockParagraph, text: t})
			}
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Head, atom.Style, atom.Script, atom.Title:
				return
			case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
				if t := textContent(n); t != "" {
					blocks = append(blocks, block{kind: blockHeading, level: int(n.Data[1] - '0'), text: t})
				}
				return
			case atom.P:
				if t := textContent(n); t != "" {
					blocks = append(blocks, block{kind: blockParagraph, text: t})
				}
				return
			case atom.Li:
				var own strings.Builder
				var nested []*html.Node
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.ElementNode && (c.DataAtom == atom.Ul || c.DataAtom == atom.Ol) {
						nested = append(nested, c)
						continue
					}
					writeText(&own, c)
				}
				if t := normalizeText(own.String()); t != "" {
					blocks = append(blocks, block{kind: blockListItem, level: depth, text: t})
				}
				for _, l := range nested {
					walk(l, depth+1)
				}
				return
			case atom.Tr:
				row := block{kind: blockTableRow}
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type != html.ElementNode {
						continue
					}
					if c.DataAtom == atom.Th {
						row.header = true
					}
					if c.DataAtom == atom.Th || c.DataAtom == atom.Td {
						row.cells = append(row.cells, textContent(c))
					}
				}
				if len(row.cells) > 0 {
					blocks = append(blocks, row)
				}
				return
			case atom.Hr:
				blocks = append(blocks, block{kind: blockRule})
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, depth)
		}
	}
	walk(root, 0)

	return blocks, nil
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	writeText(&sb, n)
	return normalizeText(sb.String())
}

// writeText appends the raw text under n. Inline elements join without
// spacing; block elements are separated by a space.
func writeText(sb *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		return
	}
	spaced := n.Type == html.ElementNode && isBlockElement(n.DataAtom)
	if spaced {
		sb.WriteString(" ")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(sb, c)
	}
	if spaced {
		sb.WriteString(" ")
	}
}

func isBlockElement(a atom.Atom) bool {
	switch a {
	case atom.Br, atom.P, atom.Div, atom.Li, atom.Ul, atom.Ol, atom.Tr, atom.Td, atom.Th,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return false
}

// normalizeText collapses whitespace and swaps the rupee sign, which the
// core PDF fonts (cp1252) cannot draw
func normalizeText(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.ReplaceAll(s, "₹", "Rs.")
}

type pdfWriter struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	width  float64
	bottom float64
}

func htmlToPDF(src, pageSize string, w io.Writer) error {
	blocks, err := extractBlocks(src)
	if err != nil {
		return err
	}

	pdf := gofpdf.New("P", "mm", pageSize, "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	pdf.SetFont("Arial", "", 11)

	pageW, pageH := pdf.GetPageSize()
	left, _, right, bottom := pdf.GetMargins()
	pw := &pdfWriter{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		width:  pageW - left - right,
		bottom: pageH - bottom,
	}

	// Column count is fixed per table; consecutive rows form one table
	cols := 0
	for i, b := range blocks {
		if b.kind != blockTableRow {
			cols = 0
		} else if cols == 0 {
			cols = tableColumns(blocks[i:])
		}
		pw.write(b, cols)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

func tableColumns(rows []block) int {
	n := 0
	for _, r := range rows {
		if r.kind != blockTableRow {
			break
		}
		if len(r.cells) > n {
			n = len(r.cells)
		}
	}
	return n
}

func (w *pdfWriter) write(b block, cols int) {
	pdf := w.pdf
	switch b.kind {
	case blockHeading:
		size := 18.0 - float64(b.level-1)*2
		if size < 11 {
			size = 11
		}
		pdf.Ln(2)
		pdf.SetFont("Arial", "B", size)
		if b.level == 1 {
			pdf.SetFillColor(0, 102, 204)
			pdf.SetTextColor(255, 255, 255)
			pdf.MultiCell(0, size*0.5, w.tr(b.text), "", "L", true)
			pdf.SetTextColor(0, 0, 0)
		} else {
			pdf.MultiCell(0, size*0.5, w.tr(b.text), "", "L", false)
		}
		pdf.SetFont("Arial", "", 11)
		pdf.Ln(1)
	case blockParagraph:
		pdf.MultiCell(0, 5.5, w.tr(b.text), "", "L", false)
		pdf.Ln(1)
	case blockListItem:
		indent := 5.0 * float64(b.level+1)
		x := pdf.GetX()
		pdf.SetX(x + indent)
		pdf.MultiCell(w.width-indent, 5.5, w.tr("- "+b.text), "", "L", false)
		pdf.SetX(x)
	case blockTableRow:
		w.tableRow(b, cols)
	case blockRule:
		y := pdf.GetY() + 2
		left, _, _, _ := pdf.GetMargins()
		pdf.Line(left, y, left+w.width, y)
		pdf.Ln(4)
	}
}

func (w *pdfWriter) tableRow(b block, cols int) {
	pdf := w.pdf
	if cols < 1 {
		cols = 1
	}
	colW := w.width / float64(cols)
	const lineH = 6.0

	style := ""
	if b.header {
		style = "B"
		pdf.SetFillColor(242, 242, 242)
	}
	pdf.SetFont("Arial", style, 10)

	lines := 1
	texts := make([]string, len(b.cells))
	for i, c := range b.cells {
		texts[i] = w.tr(c)
		if n := len(pdf.SplitLines([]byte(texts[i]), colW-2)); n > lines {
			lines = n
		}
	}
	rowH := float64(lines) * lineH

	x0, y0 := pdf.GetXY()
	if y0+rowH > w.bottom {
		pdf.AddPage()
		x0, y0 = pdf.GetXY()
	}

	for i := 0; i < cols; i++ {
		x := x0 + float64(i)*colW
		rectStyle := "D"
		if b.header {
			rectStyle = "FD"
		}
		pdf.Rect(x, y0, colW, rowH, rectStyle)
		if i < len(texts) {
			pdf.SetXY(x+1, y0)
			pdf.MultiCell(colW-2, lineH, texts[i], "", "L", false)
		}
	}
	pdf.SetXY(x0, y0+rowH)
	pdf.SetFont("Arial", "", 11)
}
