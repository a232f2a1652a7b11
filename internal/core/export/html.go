package export

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/russross/blackfriday/v2"
)

const quotationTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Quotation {{.Reference}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 0; padding: 20px; }
.header { background-color: #0066cc; color: white; padding: 20px; }
.company-name { font-size: 24px; margin-bottom: 5px; }
.client-info { background-color: #0066cc; color: white; padding: 20px; margin-top: 20px; }
.services { margin-top: 20px; }
table { width: 100%; border-collapse: collapse; }
th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
th { background-color: #f2f2f2; }
.total { font-weight: bold; }
.footer { margin-top: 30px; font-size: 12px; text-align: center; }
</style>
</head>
<body>
<div class="header">
<h1 class="company-name">{{.Issuer}}</h1>
<p>{{.Tagline}}</p>
<p>Quote No. {{.Reference}}</p>
<p>Date: {{.Date}}</p>
</div>
<div class="client-info">
<h2>Client Information</h2>
<p>Client Name: {{.Client.ClientName}}</p>
<p>Company Name: {{.Client.CompanyName}}</p>
<p>Address: {{.Client.Address}}</p>
<p>Phone Number: {{.Client.PhoneNumber}}</p>
<p>Email: {{.Client.Email}}</p>
</div>
<div class="services">
<h2>Quotation Details</h2>
{{- if .Services}}
<table>
<tr><th>Service</th><th>Cost</th></tr>
{{- range .Services}}
<tr><td>{{.Name}}</td><td>{{inr .Cost}}</td></tr>
{{- end}}
<tr class="total"><td>Total</td><td>{{inr .TotalCost}}</td></tr>
</table>
{{- end}}
{{.Content}}
</div>
<div class="footer">
<p>This quotation is valid for {{.ValidityDays}} days from the date of issue.</p>
<p>Authorized Signature: _______________________</p>
</div>
</body>
</html>
`

var quotationTmpl = template.Must(template.New("quotation").
	Funcs(template.FuncMap{"inr": FormatINR}).
	Parse(quotationTemplate))

type quotationView struct {
	*QuotationDocument
	Content template.HTML
}

// RenderMarkdown converts generated markdown to HTML. Raw HTML in the input is escaped.
func RenderMarkdown(md string) string {
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.CommonHTMLFlags | blackfriday.SkipHTML,
	})
	out := blackfriday.Run([]byte(md),
		blackfriday.WithExtensions(blackfriday.CommonExtensions),
		blackfriday.WithRenderer(renderer),
	)
	return string(out)
}

// RenderQuotationHTML renders the printable quotation page
func RenderQuotationHTML(doc *QuotationDocument) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("quotation document is nil")
	}
	d := *doc
	if d.ValidityDays <= 0 {
		d.ValidityDays = DefaultValidityDays
	}

	var buf bytes.Buffer
	err := quotationTmpl.Execute(&buf, quotationView{
		QuotationDocument: &d,
		Content:           template.HTML(RenderMarkdown(d.RawContent)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render quotation html: %w", err)
	}
	return buf.String(), nil
}
