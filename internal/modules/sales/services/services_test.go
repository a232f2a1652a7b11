package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/events"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/export"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/llm"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/proposal"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/upload"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/modules/sales/models"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/modules/sales/repositories"
)

var fixedNow = time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)

func clientActor() Actor {
	return Actor{UserID: uuid.New(), Email: "client@example.com", Role: auth.RoleClient, RequestID: "req-1"}
}

func supportActor() Actor {
	return Actor{UserID: uuid.New(), Email: "support@example.com", Role: auth.RoleSupport}
}

func quotationResult() *proposal.QuotationResult {
	return &proposal.QuotationResult{
		Services: []proposal.LineItem{
			{Name: "Web Development", Cost: 50000},
			{Name: "SEO", Cost: 20000},
		},
		TotalCost:  70000,
		RawContent: "Web Development: ₹50,000\nSEO: ₹20,000",
	}
}

func TestActorFrom(t *testing.T) {
	_, err := ActorFrom(auth.AnonymousState(), "")
	assert.True(t, auth.IsAuthError(err))

	_, err = ActorFrom(auth.AuthenticatedState(auth.Identity{UserID: "nope"}, auth.RoleClient), "")
	assert.Error(t, err)

	id := uuid.New()
	actor, err := ActorFrom(auth.AuthenticatedState(auth.Identity{UserID: id.String(), Email: "a@b.c"}, auth.RoleSupport), "r1")
	require.NoError(t, err)
	assert.Equal(t, id, actor.UserID)
	assert.True(t, actor.IsSupport())
	assert.Equal(t, "r1", actor.RequestID)
}

func TestProposalService_GenerateSaves(t *testing.T) {
	repo := newFakeProposalRepo()
	auditLog := &fakeAudit{}
	pub := &fakePublisher{}
	gen := &fakeGenerator{proposal: &proposal.ProposalResult{
		Content: "Proposal for a bakery",
		Prompt:  proposal.Prompt{Reference: "CEH-1234"},
	}}
	svc := NewProposalService(repo, gen, auditLog, pub)

	actor := clientActor()
	resp, err := svc.Generate(context.Background(), actor, "bakery")
	require.NoError(t, err)

	assert.True(t, resp.Saved)
	assert.Empty(t, resp.SaveError)
	assert.Equal(t, "Proposal for a bakery", resp.Proposal.Content)
	assert.Equal(t, "CEH-1234", resp.Proposal.Reference)
	assert.Equal(t, actor.UserID, resp.Proposal.UserID)
	assert.Equal(t, models.ProposalStatusPending, resp.Proposal.Status)
	assert.Len(t, repo.items, 1)
	assert.Equal(t, []string{audit.ActionCreate}, auditLog.actions())

	assert.Eventually(t, func() bool {
		return len(pub.types()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, events.ProposalGenerated, pub.types()[0])
}

func TestProposalService_GenerateReturnsContentWhenSaveFails(t *testing.T) {
	repo := newFakeProposalRepo()
	repo.createErr = &repositories.PersistenceError{Op: "create proposal", Err: errors.New("db down")}
	auditLog := &fakeAudit{}
	svc := NewProposalService(repo, &fakeGenerator{proposal: &proposal.ProposalResult{Content: "text"}}, auditLog, nil)

	resp, err := svc.Generate(context.Background(), clientActor(), "bakery")
	require.NoError(t, err)
	assert.False(t, resp.Saved)
	assert.Contains(t, resp.SaveError, "db down")
	assert.Equal(t, "text", resp.Proposal.Content)
	assert.Equal(t, uuid.Nil, resp.Proposal.ID)
	assert.Empty(t, auditLog.actions())
}

func TestProposalService_GenerateErrorPropagates(t *testing.T) {
	repo := newFakeProposalRepo()
	genErr := &llm.GenerationError{Provider: "gemini", Err: errors.New("quota")}
	svc := NewProposalService(repo, &fakeGenerator{err: genErr}, nil, nil)

	resp, err := svc.Generate(context.Background(), clientActor(), "bakery")
	assert.Nil(t, resp)
	assert.True(t, llm.IsGenerationError(err))
	assert.Empty(t, repo.items)
}

func TestProposalService_ListScopesByRole(t *testing.T) {
	repo := newFakeProposalRepo()
	svc := NewProposalService(repo, &fakeGenerator{}, nil, nil)

	client := clientActor()
	other := clientActor()
	repo.items[uuid.New()] = models.Proposal{UserID: client.UserID, Status: models.ProposalStatusAccepted}
	repo.items[uuid.New()] = models.Proposal{UserID: client.UserID, Status: models.ProposalStatusPending}
	repo.items[uuid.New()] = models.Proposal{UserID: other.UserID, Status: models.ProposalStatusAccepted}

	list, err := svc.List(context.Background(), client, models.ProposalStatusAccepted)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	require.NotNil(t, repo.lastList.UserID)
	assert.Equal(t, client.UserID, *repo.lastList.UserID)

	list, err = svc.List(context.Background(), supportActor(), "")
	require.NoError(t, err)
	assert.Len(t, list, 3)
	assert.Nil(t, repo.lastList.UserID)

	_, err = svc.List(context.Background(), client, "archived")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestProposalService_UpdateStatus(t *testing.T) {
	repo := newFakeProposalRepo()
	auditLog := &fakeAudit{}
	pub := &fakePublisher{}
	svc := NewProposalService(repo, &fakeGenerator{}, auditLog, pub)

	owner := clientActor()
	id := uuid.New()
	repo.items[id] = models.Proposal{ID: id, UserID: owner.UserID, Status: models.ProposalStatusPending}

	_, err := svc.UpdateStatus(context.Background(), clientActor(), id, models.ProposalStatusAccepted)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.UpdateStatus(context.Background(), owner, id, "done")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.UpdateStatus(context.Background(), owner, uuid.New(), models.ProposalStatusAccepted)
	assert.ErrorIs(t, err, ErrNotFound)

	p, err := svc.UpdateStatus(context.Background(), owner, id, models.ProposalStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStatusAccepted, p.Status)
	assert.Equal(t, models.ProposalStatusAccepted, repo.items[id].Status)
	assert.Equal(t, []string{audit.ActionStatusChange}, auditLog.actions())

	// same status again changes nothing
	_, err = svc.UpdateStatus(context.Background(), owner, id, models.ProposalStatusAccepted)
	require.NoError(t, err)
	assert.Len(t, auditLog.actions(), 1)

	assert.Eventually(t, func() bool {
		return len(pub.types()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, events.ProposalStatusChanged, pub.types()[0])
}

func newQuotationService(t *testing.T, repo *fakeQuotationRepo, notifier AcceptanceNotifier, auditLog AuditLogger) *QuotationService {
	t.Helper()
	storage, err := upload.NewLocalProvider(t.TempDir(), "http://localhost/exports")
	require.NoError(t, err)

	gen := &fakeGenerator{
		quotation: quotationResult(),
		prompt:    proposal.Prompt{Kind: proposal.KindQuotation, Reference: "CEH-1234", Date: "March 5, 2024"},
	}
	return NewQuotationService(repo, gen, export.NewService(storage), auditLog, notifier, nil, 30).
		WithClock(func() time.Time { return fixedNow })
}

func pendingQuotation(owner uuid.UUID) models.Quotation {
	return models.Quotation{
		UserID:        owner,
		Reference:     "CEH-1234",
		IssuedOn:      "March 5, 2024",
		ClientDetails: datatypes.NewJSONType(proposal.ClientDetails{CompanyName: "Acme Corp", ClientName: "Jane"}),
		Services:      datatypes.JSONSlice[proposal.LineItem](quotationResult().Services),
		TotalCost:     70000,
		Content:       quotationResult().RawContent,
		ExpiresAt:     fixedNow.AddDate(0, 0, 30),
	}
}

func TestQuotationService_Generate(t *testing.T) {
	repo := newFakeQuotationRepo()
	svc := newQuotationService(t, repo, nil, &fakeAudit{})

	actor := clientActor()
	resp, err := svc.Generate(context.Background(), actor, &models.GenerateQuotationRequest{
		Business:      "bakery",
		ClientDetails: proposal.ClientDetails{CompanyName: "Acme Corp"},
	})
	require.NoError(t, err)
	require.True(t, resp.Saved)

	q := resp.Quotation
	assert.Equal(t, "CEH-1234", q.Reference)
	assert.Equal(t, "March 5, 2024", q.IssuedOn)
	assert.Equal(t, int64(70000), q.TotalCost)
	assert.Len(t, q.Services, 2)
	assert.Equal(t, "Acme Corp", q.Client().CompanyName)
	assert.Equal(t, fixedNow.AddDate(0, 0, 30), q.ExpiresAt)
	assert.Equal(t, models.QuotationStatusPending, q.Status)
}

func TestQuotationService_GenerateSaveFailure(t *testing.T) {
	repo := newFakeQuotationRepo()
	repo.createErr = &repositories.PersistenceError{Op: "create quotation", Err: errors.New("timeout")}
	svc := newQuotationService(t, repo, nil, nil)

	resp, err := svc.Generate(context.Background(), clientActor(), &models.GenerateQuotationRequest{Business: "bakery"})
	require.NoError(t, err)
	assert.False(t, resp.Saved)
	assert.Contains(t, resp.SaveError, "timeout")
	assert.Equal(t, int64(70000), resp.Quotation.TotalCost)
}

func TestQuotationService_Accept(t *testing.T) {
	repo := newFakeQuotationRepo()
	notifier := newFakeNotifier()
	auditLog := &fakeAudit{}
	svc := newQuotationService(t, repo, notifier, auditLog)

	owner := clientActor()
	q := repo.put(pendingQuotation(owner.UserID))

	_, err := svc.Accept(context.Background(), clientActor(), q.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	accepted, err := svc.Accept(context.Background(), owner, q.ID)
	require.NoError(t, err)
	assert.True(t, accepted.Accepted)
	assert.Equal(t, models.QuotationStatusAccepted, accepted.Status)
	require.NotNil(t, accepted.AcceptedAt)
	assert.Equal(t, fixedNow, *accepted.AcceptedAt)
	assert.Equal(t, []string{audit.ActionAccept}, auditLog.actions())

	select {
	case n := <-notifier.accepted:
		assert.Equal(t, q.ID.String(), n.QuotationID)
		assert.Equal(t, "Acme Corp", n.CompanyName)
		assert.Equal(t, owner.Email, n.UserEmail)
		assert.Equal(t, int64(70000), n.TotalCost)
	case <-time.After(time.Second):
		t.Fatal("acceptance notification not sent")
	}

	// accepting again is idempotent
	again, err := svc.Accept(context.Background(), owner, q.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QuotationStatusAccepted, again.Status)
	assert.Equal(t, 1, repo.markCalls)
	assert.Len(t, auditLog.actions(), 1)
}

func TestQuotationService_AcceptExpired(t *testing.T) {
	repo := newFakeQuotationRepo()
	svc := newQuotationService(t, repo, nil, nil)
	owner := clientActor()

	stale := pendingQuotation(owner.UserID)
	stale.ExpiresAt = fixedNow.Add(-time.Minute)
	staleQ := repo.put(stale)

	_, err := svc.Accept(context.Background(), owner, staleQ.ID)
	assert.ErrorIs(t, err, ErrQuotationExpired)

	expired := pendingQuotation(owner.UserID)
	expired.Status = models.QuotationStatusExpired
	expiredQ := repo.put(expired)

	_, err = svc.Accept(context.Background(), owner, expiredQ.ID)
	assert.ErrorIs(t, err, ErrQuotationExpired)
	assert.Zero(t, repo.markCalls)
}

func TestQuotationService_AcceptLostRace(t *testing.T) {
	repo := newFakeQuotationRepo()
	svc := newQuotationService(t, repo, nil, nil)
	owner := clientActor()
	q := repo.put(pendingQuotation(owner.UserID))

	repo.refuseMark = true
	repo.onMarkRaced = func(q *models.Quotation) {
		q.Status = models.QuotationStatusAccepted
		q.Accepted = true
	}

	got, err := svc.Accept(context.Background(), owner, q.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QuotationStatusAccepted, got.Status)

	other := repo.put(pendingQuotation(owner.UserID))
	repo.onMarkRaced = func(q *models.Quotation) { q.Status = models.QuotationStatusExpired }
	_, err = svc.Accept(context.Background(), owner, other.ID)
	assert.ErrorIs(t, err, ErrQuotationExpired)
}

func TestQuotationService_GetAndList(t *testing.T) {
	repo := newFakeQuotationRepo()
	svc := newQuotationService(t, repo, nil, nil)
	owner := clientActor()
	q := repo.put(pendingQuotation(owner.UserID))
	repo.put(pendingQuotation(uuid.New()))

	_, err := svc.Get(context.Background(), clientActor(), q.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := svc.Get(context.Background(), supportActor(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, q.ID, got.ID)

	list, err := svc.List(context.Background(), owner, "", nil)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	accepted := true
	list, err = svc.List(context.Background(), supportActor(), "", &accepted)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.List(context.Background(), owner, "draft", nil)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestQuotationService_RenderPDF(t *testing.T) {
	repo := newFakeQuotationRepo()
	svc := newQuotationService(t, repo, nil, nil)
	owner := clientActor()
	q := repo.put(pendingQuotation(owner.UserID))

	var buf bytes.Buffer
	contentType, name, err := svc.Render(context.Background(), owner, q.ID, export.FormatPDF, &buf)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.Equal(t, "quotation_Acme_Corp.pdf", name)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestQuotationService_ExportAndHistory(t *testing.T) {
	repo := newFakeQuotationRepo()
	auditLog := &fakeAudit{}
	svc := newQuotationService(t, repo, newFakeNotifier(), auditLog)
	owner := clientActor()
	q := repo.put(pendingQuotation(owner.UserID))

	res, err := svc.Export(context.Background(), owner, q.ID, export.FormatExcel)
	require.NoError(t, err)
	assert.Equal(t, "quotations/"+q.ID.String()+"/quotation_Acme_Corp.xlsx", res.Key)
	assert.Equal(t, "http://localhost/exports/quotations/"+q.ID.String()+"/quotation_Acme_Corp.xlsx", res.URL)

	_, err = svc.Accept(context.Background(), owner, q.ID)
	require.NoError(t, err)

	history, err := svc.History(context.Background(), owner, q.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, audit.ActionExport, history[0].Action)
	assert.Equal(t, audit.ActionAccept, history[1].Action)

	_, err = svc.History(context.Background(), clientActor(), q.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestQuotationService_ExpireStale(t *testing.T) {
	repo := newFakeQuotationRepo()
	auditLog := &fakeAudit{}
	svc := newQuotationService(t, repo, nil, auditLog)
	owner := uuid.New()

	for i := 0; i < 2; i++ {
		q := pendingQuotation(owner)
		q.ExpiresAt = fixedNow.Add(-time.Hour)
		repo.put(q)
	}
	fresh := repo.put(pendingQuotation(owner))

	n, err := svc.ExpireStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{audit.ActionExpire, audit.ActionExpire}, auditLog.actions())
	assert.Equal(t, models.QuotationStatusPending, repo.items[fresh.ID].Status)
	for _, c := range auditLog.changes {
		assert.Nil(t, c.UserID)
	}

	n, err = svc.ExpireStale(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
