package proposal

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

const (
	CompanyName    = "Cehpoint E-Learning & Cyber Security Solutions"
	CompanyTagline = "A Secure Choice for Your Career and Our World"

	// DateLayout is the en-US long date form, e.g. "October 19, 2026"
	DateLayout = "January 2, 2006"
)

// Rand is the random source used for reference numbers. *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Prompt is a built generation request
type Prompt struct {
	Kind      Kind
	Text      string
	Reference string
	Date      string
}

type PromptBuilder struct {
	now func() time.Time
	rnd Rand
}

type PromptOption func(*PromptBuilder)

// WithClock fixes the time source
func WithClock(now func() time.Time) PromptOption {
	return func(b *PromptBuilder) { b.now = now }
}

// WithRand fixes the random source
func WithRand(r Rand) PromptOption {
	return func(b *PromptBuilder) { b.rnd = r }
}

func NewPromptBuilder(opts ...PromptOption) *PromptBuilder {
	b := &PromptBuilder{now: time.Now, rnd: globalRand{}}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// reference returns CEH-#### with #### in [1000, 9999]
func (b *PromptBuilder) reference() string {
	return fmt.Sprintf("CEH-%d", 1000+b.rnd.IntN(9000))
}

// Proposal builds the business proposal request. business is interpolated verbatim, empty included.
func (b *PromptBuilder) Proposal(business string) Prompt {
	date := b.now().Format(DateLayout)
	ref := b.reference()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate a professional business proposal for %s (%s).\n", CompanyName, CompanyTagline)
	fmt.Fprintf(&sb, "Date: %s\n", date)
	fmt.Fprintf(&sb, "Proposal Reference Number: %s\n", ref)
	fmt.Fprintf(&sb, "The client is in the following business/profession: %s.\n", business)
	sb.WriteString("They need tailored services, including cybersecurity, IT services, and software development solutions at Indian rates.\n\n")

	sb.WriteString("Please structure the proposal in the following format:\n")
	fmt.Fprintf(&sb, "1. Start with a formal introduction of %s\n", CompanyName)
	sb.WriteString("2. Create sections with clear headings for:\n")
	sb.WriteString("   - Executive Summary\n")
	sb.WriteString("   - Identified Business Needs\n")
	sb.WriteString("   - Our Proposed Solutions\n")
	sb.WriteString("   - Benefits of Partnership\n")
	fmt.Fprintf(&sb, "   - Why Choose %s\n", CompanyName)
	sb.WriteString("   - Next Steps\n\n")

	sb.WriteString("Important formatting requirements:\n")
	sb.WriteString("- Use clear section headings\n")
	sb.WriteString("- Use bullet points instead of asterisks\n")
	sb.WriteString("- Use proper indentation for sub-points\n")
	sb.WriteString("- Highlight key benefits and advantages\n")
	fmt.Fprintf(&sb, "- Include specific examples relevant to %s\n", business)
	sb.WriteString("- Format all pricing in INR with proper comma separation\n\n")

	sb.WriteString("Emphasize our expertise in:\n")
	sb.WriteString("- Cybersecurity solutions\n")
	sb.WriteString("- E-Learning platforms\n")
	sb.WriteString("- Software development\n")
	sb.WriteString("- IT infrastructure management")

	return Prompt{Kind: KindProposal, Text: sb.String(), Reference: ref, Date: date}
}

// Quotation builds the priced quotation request. Client fields are copied as given.
func (b *PromptBuilder) Quotation(business string, client ClientDetails) Prompt {
	date := b.now().Format(DateLayout)
	ref := b.reference()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate a detailed professional quotation from %s for a %s business.\n\n", CompanyName, business)

	sb.WriteString("Structure the quotation as follows:\n")
	sb.WriteString("1. Company letterhead section with:\n")
	fmt.Fprintf(&sb, "   - %s\n", CompanyName)
	fmt.Fprintf(&sb, "   - %s\n", CompanyTagline)
	fmt.Fprintf(&sb, "   - Date: %s\n", date)
	fmt.Fprintf(&sb, "   - Quotation Reference Number: %s\n\n", ref)

	sb.WriteString("2. Client Information section for:\n")
	fmt.Fprintf(&sb, "   - Client Name: %s\n", client.ClientName)
	fmt.Fprintf(&sb, "   - Company Name: %s\n", client.CompanyName)
	fmt.Fprintf(&sb, "   - Address: %s\n", client.Address)
	fmt.Fprintf(&sb, "   - Phone Number: %s\n", client.PhoneNumber)
	fmt.Fprintf(&sb, "   - Email: %s\n\n", client.Email)

	sb.WriteString("3. Service Breakdown with clear pricing tables for:\n")
	sb.WriteString("   - Cybersecurity Solutions\n")
	sb.WriteString("   - E-Learning Implementation\n")
	sb.WriteString("   - Software Development\n")
	sb.WriteString("   - IT Infrastructure\n\n")

	sb.WriteString("Requirements:\n")
	sb.WriteString("- All prices should be in INR with proper formatting (e.g., ₹1,50,000)\n")
	sb.WriteString("- Include GST calculations\n")
	sb.WriteString("- Separate one-time costs from recurring costs\n")
	sb.WriteString("- Add payment terms and conditions\n")
	sb.WriteString("- Include service level agreements\n")
	sb.WriteString("- Valid for 30 days clause\n\n")

	sb.WriteString("Make sure all services are properly categorized and priced according to Indian market rates. ")
	sb.WriteString("Present each service on a new line in the format 'Service Name: ₹Price'.")

	return Prompt{Kind: KindQuotation, Text: sb.String(), Reference: ref, Date: date}
}
