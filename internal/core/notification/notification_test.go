package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/email"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/events"
)

type fakeEmail struct {
	enabled bool
	err     error
	to      string
	subject string
	data    email.TemplateData
}

func (f *fakeEmail) Enabled() bool { return f.enabled }

func (f *fakeEmail) SendTemplateEmail(_ context.Context, to, subject string, data email.TemplateData) error {
	f.to, f.subject, f.data = to, subject, data
	return f.err
}

type fakePublisher struct {
	envs []events.Envelope
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, env events.Envelope) error {
	f.envs = append(f.envs, env)
	return f.err
}

func (f *fakePublisher) Close() error { return nil }

func accepted() AcceptedQuotation {
	return AcceptedQuotation{
		QuotationID:   "q1",
		UserID:        "u1",
		UserEmail:     "asha@acme.test",
		Reference:     "CEH-1234",
		CompanyName:   "Acme",
		TotalCost:     70000,
		AcceptedAt:    time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC),
		CorrelationID: "req-9",
	}
}

func TestQuotationAccepted_EmailAndEvent(t *testing.T) {
	mail := &fakeEmail{enabled: true}
	pub := &fakePublisher{}
	svc := NewService(mail, pub, "sales@cehpoint.co.in")

	require.NoError(t, svc.QuotationAccepted(context.Background(), accepted()))

	require.Len(t, pub.envs, 1)
	assert.Equal(t, events.QuotationAccepted, pub.envs[0].Meta.Type)
	assert.Equal(t, "req-9", *pub.envs[0].Meta.CorrelationID)
	data := pub.envs[0].Data.(events.QuotationAcceptedData)
	assert.Equal(t, int64(70000), data.TotalCost)

	assert.Equal(t, "sales@cehpoint.co.in", mail.to)
	assert.Equal(t, "Quotation CEH-1234 accepted by Acme", mail.subject)
	assert.Contains(t, mail.data.Rows, [2]string{"Total", "₹70,000.00"})
}

func TestQuotationAccepted_SkipsDisabledChannels(t *testing.T) {
	mail := &fakeEmail{enabled: false}
	svc := NewService(mail, nil, "sales@cehpoint.co.in")
	require.NoError(t, svc.QuotationAccepted(context.Background(), accepted()))
	assert.Empty(t, mail.to)

	mail = &fakeEmail{enabled: true}
	svc = NewService(mail, nil, "")
	require.NoError(t, svc.QuotationAccepted(context.Background(), accepted()))
	assert.Empty(t, mail.to)
}

func TestQuotationAccepted_JoinsFailures(t *testing.T) {
	mailErr := errors.New("smtp down")
	pubErr := errors.New("broker down")
	mail := &fakeEmail{enabled: true, err: mailErr}
	pub := &fakePublisher{err: pubErr}

	err := NewService(mail, pub, "sales@cehpoint.co.in").QuotationAccepted(context.Background(), accepted())
	require.Error(t, err)
	assert.ErrorIs(t, err, mailErr)
	assert.ErrorIs(t, err, pubErr)
	assert.NotEmpty(t, mail.to, "email still attempted after publish failure")
}

func TestDisplayName(t *testing.T) {
	q := AcceptedQuotation{ClientName: "Asha"}
	assert.Equal(t, "Asha", displayName(q))
	assert.Equal(t, "A client", displayName(AcceptedQuotation{}))
}
