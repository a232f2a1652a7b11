package proposal

import (
	"context"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/llm"
)

// Generator turns a prompt into raw text. *llm.Service implements it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Facade runs prompt → generate → format (→ parse). It holds no per-call state.
type Facade struct {
	prompts   *PromptBuilder
	generator Generator
}

func NewFacade(generator Generator, prompts *PromptBuilder) *Facade {
	if prompts == nil {
		prompts = NewPromptBuilder()
	}
	return &Facade{prompts: prompts, generator: generator}
}

// GenerateProposal returns the formatted proposal text
func (f *Facade) GenerateProposal(ctx context.Context, business string) (string, error) {
	res, err := f.ProposalWithMeta(ctx, business)
	if err != nil {
		return "", err
	}
	return res.Content, nil
}

// ProposalWithMeta is GenerateProposal plus the reference and date that went into the prompt
func (f *Facade) ProposalWithMeta(ctx context.Context, business string) (*ProposalResult, error) {
	prompt := f.prompts.Proposal(business)

	raw, err := f.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &ProposalResult{Content: Format(raw), Prompt: prompt}, nil
}

// GenerateQuotation returns parsed line items and the formatted text
func (f *Facade) GenerateQuotation(ctx context.Context, business string, client ClientDetails) (*QuotationResult, error) {
	res, _, err := f.QuotationWithMeta(ctx, business, client)
	return res, err
}

// QuotationWithMeta is GenerateQuotation plus the prompt it was built from
func (f *Facade) QuotationWithMeta(ctx context.Context, business string, client ClientDetails) (*QuotationResult, Prompt, error) {
	prompt := f.prompts.Quotation(business, client)

	raw, err := f.generate(ctx, prompt)
	if err != nil {
		return nil, prompt, err
	}

	formatted := Format(raw)
	result := Parse(formatted)
	result.RawContent = formatted

	return &result, prompt, nil
}

// generate guarantees every failure surfaces as *llm.GenerationError
func (f *Facade) generate(ctx context.Context, prompt Prompt) (string, error) {
	raw, err := f.generator.Generate(ctx, prompt.Text)
	if err != nil {
		if llm.IsGenerationError(err) {
			return "", err
		}
		return "", &llm.GenerationError{Provider: "unknown", Err: err}
	}
	return raw, nil
}
