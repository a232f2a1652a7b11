package proposal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fixedRand int

func (f fixedRand) IntN(n int) int { return int(f) % n }

func fixedBuilder(r int) *PromptBuilder {
	return NewPromptBuilder(
		WithClock(func() time.Time { return time.Date(2026, time.October, 19, 15, 4, 5, 0, time.UTC) }),
		WithRand(fixedRand(r)),
	)
}

func TestPromptBuilder_Quotation(t *testing.T) {
	client := ClientDetails{
		ClientName:  "Jane Doe",
		CompanyName: "Jane's Bakery",
		Address:     "12 Main St",
		PhoneNumber: "555-1234",
		Email:       "jane@example.com",
	}

	p := fixedBuilder(234).Quotation("bakery", client)

	assert.Equal(t, KindQuotation, p.Kind)
	assert.Equal(t, "CEH-1234", p.Reference)
	assert.Equal(t, "October 19, 2026", p.Date)
	assert.Contains(t, p.Text, "for a bakery business")
	assert.Contains(t, p.Text, CompanyName)
	assert.Contains(t, p.Text, CompanyTagline)
	assert.Contains(t, p.Text, "Date: October 19, 2026")
	assert.Contains(t, p.Text, "Quotation Reference Number: CEH-1234")
	assert.Contains(t, p.Text, "Client Name: Jane Doe")
	assert.Contains(t, p.Text, "Company Name: Jane's Bakery")
	assert.Contains(t, p.Text, "Address: 12 Main St")
	assert.Contains(t, p.Text, "Phone Number: 555-1234")
	assert.Contains(t, p.Text, "Email: jane@example.com")
	assert.Contains(t, p.Text, "'Service Name: ₹Price'")
}

func TestPromptBuilder_Deterministic(t *testing.T) {
	a := fixedBuilder(42).Proposal("dental clinic")
	b := fixedBuilder(42).Proposal("dental clinic")
	assert.Equal(t, a, b)
	assert.Contains(t, a.Text, "business/profession: dental clinic.")
	assert.Contains(t, a.Text, "Proposal Reference Number: CEH-1042")
}

func TestPromptBuilder_ReferenceRange(t *testing.T) {
	assert.Equal(t, "CEH-1000", fixedBuilder(0).Proposal("x").Reference)
	assert.Equal(t, "CEH-9999", fixedBuilder(8999).Proposal("x").Reference)

	b := NewPromptBuilder()
	for i := 0; i < 500; i++ {
		ref := b.Quotation("x", ClientDetails{}).Reference
		assert.Regexp(t, `^CEH-[1-9]\d{3}$`, ref)
	}
}

func TestPromptBuilder_NoValidation(t *testing.T) {
	p := fixedBuilder(1).Quotation("", ClientDetails{})
	assert.Contains(t, p.Text, "for a  business")
	assert.Contains(t, p.Text, "Client Name: \n")
	assert.Contains(t, p.Text, "Email: \n")
}
