package proposal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/llm"
)

type stubGenerator struct {
	mu      sync.Mutex
	text    string
	err     error
	prompts []string
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	return s.text, s.err
}

func TestFacade_GenerateQuotation_Bakery(t *testing.T) {
	raw := "Cybersecurity Audit: ₹50,000\nTraining: ₹20,000\nMisc line with no price\n"
	gen := &stubGenerator{text: raw}
	f := NewFacade(gen, fixedBuilder(5))

	client := ClientDetails{
		ClientName:  "Jane Doe",
		CompanyName: "Jane's Bakery",
		Address:     "12 Main St",
		PhoneNumber: "555-1234",
		Email:       "jane@example.com",
	}

	res, err := f.GenerateQuotation(context.Background(), "bakery", client)
	require.NoError(t, err)

	assert.Equal(t, []LineItem{
		{Name: "Cybersecurity Audit", Cost: 50000},
		{Name: "Training", Cost: 20000},
	}, res.Services)
	assert.Equal(t, int64(70000), res.TotalCost)
	assert.Equal(t, "Cybersecurity Audit: ₹50,000\nTraining: ₹20,000\nMisc line with no price", res.RawContent)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Jane's Bakery")
}

func TestFacade_GenerateQuotation_NoPrices(t *testing.T) {
	raw := "  We will get back to you with pricing.\nThank you.  "
	f := NewFacade(&stubGenerator{text: raw}, nil)

	res, err := f.GenerateQuotation(context.Background(), "bakery", ClientDetails{})
	require.NoError(t, err)

	assert.Empty(t, res.Services)
	assert.NotNil(t, res.Services)
	assert.Zero(t, res.TotalCost)
	assert.Equal(t, "We will get back to you with pricing.\nThank you.", res.RawContent)
}

func TestFacade_QuotationWithMeta_EmptyInputs(t *testing.T) {
	gen := &stubGenerator{text: "Audit: ₹1,000"}
	f := NewFacade(gen, fixedBuilder(5))

	res, prompt, err := f.QuotationWithMeta(context.Background(), "", ClientDetails{})
	require.NoError(t, err)

	assert.Equal(t, "CEH-1005", prompt.Reference)
	assert.Equal(t, KindQuotation, prompt.Kind)
	require.Len(t, gen.prompts, 1)
	assert.Equal(t, prompt.Text, gen.prompts[0])
	assert.Contains(t, prompt.Text, "for a  business.")
	assert.Equal(t, int64(1000), res.TotalCost)
}

func TestFacade_GenerateProposal(t *testing.T) {
	f := NewFacade(&stubGenerator{text: "\n\nExecutive Summary\n- item\n\n"}, fixedBuilder(0))

	out, err := f.GenerateProposal(context.Background(), "bakery")
	require.NoError(t, err)
	assert.Equal(t, "Executive Summary\n- item", out)

	meta, err := f.ProposalWithMeta(context.Background(), "bakery")
	require.NoError(t, err)
	assert.Equal(t, "CEH-1000", meta.Prompt.Reference)
}

func TestFacade_GenerationFailure(t *testing.T) {
	t.Run("plain error becomes GenerationError", func(t *testing.T) {
		f := NewFacade(&stubGenerator{err: errors.New("network down")}, nil)

		out, err := f.GenerateProposal(context.Background(), "bakery")
		require.Error(t, err)
		assert.Empty(t, out)

		var genErr *llm.GenerationError
		require.ErrorAs(t, err, &genErr)
		assert.EqualError(t, genErr.Err, "network down")
	})

	t.Run("GenerationError passes through", func(t *testing.T) {
		orig := &llm.GenerationError{Provider: "Google Gemini", Err: llm.ErrEmptyResponse}
		f := NewFacade(&stubGenerator{err: orig}, nil)

		res, err := f.GenerateQuotation(context.Background(), "bakery", ClientDetails{})
		assert.Nil(t, res)
		assert.Same(t, orig, err)
	})
}

func TestFacade_ConcurrentCalls(t *testing.T) {
	f := NewFacade(&stubGenerator{text: "Audit: ₹1,000"}, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.GenerateQuotation(context.Background(), fmt.Sprintf("business-%d", i), ClientDetails{})
			if err != nil {
				errs <- err
				return
			}
			if res.TotalCost != 1000 {
				errs <- fmt.Errorf("unexpected total %d", res.TotalCost)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
