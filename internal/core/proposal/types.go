package proposal

// Kind distinguishes the two generation flows
type Kind string

const (
	KindProposal  Kind = "proposal"
	KindQuotation Kind = "quotation"
)

// ClientDetails is the contact block interpolated into quotation prompts.
// Every field is optional; empty values are passed through as-is.
type ClientDetails struct {
	ClientName  string `json:"client_name"`
	CompanyName string `json:"company_name"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
}

// LineItem is one "Service Name: ₹Price" line recognised in a quotation
type LineItem struct {
	Name string `json:"name"`
	Cost int64  `json:"cost"`
}

// QuotationResult holds the parsed line items plus the formatted text they came from.
// TotalCost always equals the sum of Services[*].Cost.
type QuotationResult struct {
	Services   []LineItem `json:"services"`
	TotalCost  int64      `json:"total_cost"`
	RawContent string     `json:"raw_content"`
}

// ProposalResult is a formatted proposal with the prompt metadata it was generated from
type ProposalResult struct {
	Content string `json:"content"`
	Prompt  Prompt `json:"-"`
}
