package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/chat"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/export"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/llm"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/proposal"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/upload"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/modules/sales/models"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/modules/sales/repositories"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/modules/sales/services"
)

// stubGenerator returns canned results
type stubGenerator struct {
	err error
}

func (g *stubGenerator) ProposalWithMeta(ctx context.Context, business string) (*proposal.ProposalResult, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &proposal.ProposalResult{Content: "Proposal for " + business, Prompt: proposal.Prompt{Reference: "CEH-4321"}}, nil
}

func (g *stubGenerator) QuotationWithMeta(ctx context.Context, business string, client proposal.ClientDetails) (*proposal.QuotationResult, proposal.Prompt, error) {
	prompt := proposal.Prompt{Reference: "CEH-4321", Date: "March 5, 2024"}
	if g.err != nil {
		return nil, prompt, g.err
	}
	return &proposal.QuotationResult{
		Services:   []proposal.LineItem{{Name: "Audit", Cost: 15000}},
		TotalCost:  15000,
		RawContent: "Audit: ₹15,000",
	}, prompt, nil
}

type memProposals struct {
	mu        sync.Mutex
	items     map[uuid.UUID]models.Proposal
	createErr error
}

func (r *memProposals) Create(ctx context.Context, p *models.Proposal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	p.ID = uuid.New()
	p.Status = models.ProposalStatusPending
	r.items[p.ID] = *p
	return nil
}

func (r *memProposals) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (r *memProposals) List(ctx context.Context, filter repositories.ProposalFilter) ([]models.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Proposal{}
	for _, p := range r.items {
		if filter.UserID == nil || p.UserID == *filter.UserID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProposals) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ProposalStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return repositories.ErrNotFound
	}
	p.Status = status
	r.items[id] = p
	return nil
}

type memQuotations struct {
	mu    sync.Mutex
	items map[uuid.UUID]models.Quotation
}

func (r *memQuotations) Create(ctx context.Context, q *models.Quotation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q.ID = uuid.New()
	q.Status = models.QuotationStatusPending
	r.items[q.ID] = *q
	return nil
}

func (r *memQuotations) GetByID(ctx context.Context, id uuid.UUID) (*models.Quotation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &q, nil
}

func (r *memQuotations) List(ctx context.Context, filter repositories.QuotationFilter) ([]models.Quotation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Quotation{}
	for _, q := range r.items {
		if filter.UserID == nil || q.UserID == *filter.UserID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *memQuotations) MarkAccepted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.items[id]
	if !ok || q.Status != models.QuotationStatusPending {
		return false, nil
	}
	q.Status = models.QuotationStatusAccepted
	q.Accepted = true
	q.AcceptedAt = &at
	r.items[id] = q
	return true, nil
}

func (r *memQuotations) ExpirePending(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	return nil, nil
}

func withState(state auth.State) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth.SetState(c, state)
		return c.Next()
	}
}

func clientState(id uuid.UUID) auth.State {
	return auth.AuthenticatedState(auth.Identity{UserID: id.String(), Email: "client@example.com"}, auth.RoleClient)
}

func supportState() auth.State {
	return auth.AuthenticatedState(auth.Identity{UserID: uuid.NewString(), Email: "support@example.com"}, auth.RoleSupport)
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func proposalApp(state auth.State, repo *memProposals, gen *stubGenerator) *fiber.App {
	app := fiber.New()
	app.Use(withState(state))
	NewProposalHandler(services.NewProposalService(repo, gen, nil, nil)).RegisterRoutes(app)
	return app
}

func TestProposalHandler_Generate(t *testing.T) {
	repo := &memProposals{items: map[uuid.UUID]models.Proposal{}}
	app := proposalApp(clientState(uuid.New()), repo, &stubGenerator{})

	status, body := doJSON(t, app, "POST", "/proposals", `{"business":"bakery"}`)
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, true, body["saved"])
	p := body["proposal"].(map[string]interface{})
	assert.Equal(t, "Proposal for bakery", p["content"])
	assert.Equal(t, "pending", p["status"])

	status, _ = doJSON(t, app, "POST", "/proposals", `{"business":"`+strings.Repeat("x", 4001)+`"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doJSON(t, app, "POST", "/proposals", `not json`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

// recordingLLM answers every prompt with the same draft and keeps the prompts
type recordingLLM struct {
	mu      sync.Mutex
	prompts []string
}

func (r *recordingLLM) Generate(ctx context.Context, prompt string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts = append(r.prompts, prompt)
	return "  Proposal draft\n", nil
}

func TestProposalHandler_GenerateEmptyBusiness(t *testing.T) {
	gen := &recordingLLM{}
	repo := &memProposals{items: map[uuid.UUID]models.Proposal{}}
	app := fiber.New()
	app.Use(withState(clientState(uuid.New())))
	NewProposalHandler(services.NewProposalService(repo, proposal.NewFacade(gen, nil), nil, nil)).RegisterRoutes(app)

	for _, payload := range []string{`{"business":""}`, `{}`} {
		status, body := doJSON(t, app, "POST", "/proposals", payload)
		require.Equal(t, fiber.StatusCreated, status, payload)
		assert.Equal(t, true, body["saved"])
		p := body["proposal"].(map[string]interface{})
		assert.Equal(t, "", p["business"])
		assert.Equal(t, "Proposal draft", p["content"])
	}

	require.Len(t, gen.prompts, 2)
	for _, prompt := range gen.prompts {
		assert.Contains(t, prompt, "The client is in the following business/profession: .\n")
		assert.Contains(t, prompt, "- Include specific examples relevant to \n")
	}
	assert.Len(t, repo.items, 2)
}

func TestProposalHandler_GenerateUnsaved(t *testing.T) {
	repo := &memProposals{
		items:     map[uuid.UUID]models.Proposal{},
		createErr: &repositories.PersistenceError{Op: "create proposal", Err: errors.New("db down")},
	}
	app := proposalApp(clientState(uuid.New()), repo, &stubGenerator{})

	status, body := doJSON(t, app, "POST", "/proposals", `{"business":"bakery"}`)
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, false, body["saved"])
	assert.Contains(t, body["save_error"], "db down")
}

func TestProposalHandler_GenerationError(t *testing.T) {
	repo := &memProposals{items: map[uuid.UUID]models.Proposal{}}
	gen := &stubGenerator{err: &llm.GenerationError{Provider: "gemini", Err: errors.New("quota exceeded")}}
	app := proposalApp(clientState(uuid.New()), repo, gen)

	status, body := doJSON(t, app, "POST", "/proposals", `{"business":"bakery"}`)
	assert.Equal(t, fiber.StatusBadGateway, status)
	assert.Contains(t, body["error"], "quota exceeded")
	assert.Empty(t, repo.items)
}

func TestProposalHandler_AuthGuards(t *testing.T) {
	repo := &memProposals{items: map[uuid.UUID]models.Proposal{}}

	status, _ := doJSON(t, proposalApp(auth.AnonymousState(), repo, &stubGenerator{}), "GET", "/proposals", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = doJSON(t, proposalApp(supportState(), repo, &stubGenerator{}), "POST", "/proposals", `{"business":"bakery"}`)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestProposalHandler_UpdateStatus(t *testing.T) {
	owner := uuid.New()
	id := uuid.New()
	repo := &memProposals{items: map[uuid.UUID]models.Proposal{
		id: {ID: id, UserID: owner, Status: models.ProposalStatusPending},
	}}
	app := proposalApp(clientState(owner), repo, &stubGenerator{})

	status, body := doJSON(t, app, "PATCH", "/proposals/"+id.String()+"/status", `{"status":"accepted"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "accepted", body["status"])

	status, _ = doJSON(t, app, "PATCH", "/proposals/"+id.String()+"/status", `{"status":"archived"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doJSON(t, app, "PATCH", "/proposals/"+uuid.NewString()+"/status", `{"status":"rejected"}`)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = doJSON(t, app, "PATCH", "/proposals/not-a-uuid/status", `{"status":"rejected"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	other := proposalApp(clientState(uuid.New()), repo, &stubGenerator{})
	status, _ = doJSON(t, other, "PATCH", "/proposals/"+id.String()+"/status", `{"status":"rejected"}`)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func quotationApp(t *testing.T, state auth.State, repo *memQuotations) *fiber.App {
	t.Helper()
	storage, err := upload.NewLocalProvider(t.TempDir(), "http://localhost/exports")
	require.NoError(t, err)

	svc := services.NewQuotationService(repo, &stubGenerator{}, export.NewService(storage), nil, nil, nil, 30)
	app := fiber.New()
	app.Use(withState(state))
	NewQuotationHandler(svc).RegisterRoutes(app)
	NewExportFileHandler(svc, storage.BasePath()).RegisterRoutes(app)
	return app
}

func storedQuotation(repo *memQuotations, owner uuid.UUID, status models.QuotationStatus, expiresAt time.Time) uuid.UUID {
	id := uuid.New()
	repo.items[id] = models.Quotation{
		ID:            id,
		UserID:        owner,
		Reference:     "CEH-4321",
		IssuedOn:      "March 5, 2024",
		ClientDetails: datatypes.NewJSONType(proposal.ClientDetails{CompanyName: "Globex"}),
		Services:      datatypes.JSONSlice[proposal.LineItem]{{Name: "Audit", Cost: 15000}},
		TotalCost:     15000,
		Content:       "Audit: ₹15,000",
		Status:        status,
		ExpiresAt:     expiresAt,
	}
	return id
}

func TestQuotationHandler_GenerateAndList(t *testing.T) {
	owner := uuid.New()
	repo := &memQuotations{items: map[uuid.UUID]models.Quotation{}}
	app := quotationApp(t, clientState(owner), repo)

	status, body := doJSON(t, app, "POST", "/quotations", `{"business":"security","client_details":{"company_name":"Globex"}}`)
	assert.Equal(t, fiber.StatusCreated, status)
	q := body["quotation"].(map[string]interface{})
	assert.Equal(t, float64(15000), q["total_cost"])
	assert.Equal(t, "CEH-4321", q["reference"])

	req := httptest.NewRequest("GET", "/quotations?accepted=false", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list []models.Quotation
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Len(t, list, 1)

	status, _ = doJSON(t, app, "GET", "/quotations?accepted=maybe", "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = doJSON(t, app, "POST", "/quotations", `{"client_details":{"company_name":"Globex"}}`)
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "", body["quotation"].(map[string]interface{})["business"])
}

func TestQuotationHandler_Accept(t *testing.T) {
	owner := uuid.New()
	repo := &memQuotations{items: map[uuid.UUID]models.Quotation{}}
	app := quotationApp(t, clientState(owner), repo)

	live := storedQuotation(repo, owner, models.QuotationStatusPending, time.Now().Add(24*time.Hour))
	stale := storedQuotation(repo, owner, models.QuotationStatusPending, time.Now().Add(-time.Hour))

	status, body := doJSON(t, app, "POST", "/quotations/"+live.String()+"/accept", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["accepted"])
	assert.Equal(t, "accepted", body["status"])

	status, _ = doJSON(t, app, "POST", "/quotations/"+live.String()+"/accept", "")
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = doJSON(t, app, "POST", "/quotations/"+stale.String()+"/accept", "")
	assert.Equal(t, fiber.StatusConflict, status)

	status, _ = doJSON(t, app, "POST", "/quotations/"+uuid.NewString()+"/accept", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestQuotationHandler_PDFAndExport(t *testing.T) {
	owner := uuid.New()
	repo := &memQuotations{items: map[uuid.UUID]models.Quotation{}}
	app := quotationApp(t, clientState(owner), repo)
	id := storedQuotation(repo, owner, models.QuotationStatusPending, time.Now().Add(time.Hour))

	resp, err := app.Test(httptest.NewRequest("GET", "/quotations/"+id.String()+"/pdf", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="quotation_Globex.pdf"`)
	pdf, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF-"))

	status, body := doJSON(t, app, "POST", "/quotations/"+id.String()+"/export?format=xlsx", "")
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "quotations/"+id.String()+"/quotation_Globex.xlsx", body["key"])
	assert.Equal(t, "xlsx", body["format"])

	status, _ = doJSON(t, app, "POST", "/quotations/"+id.String()+"/export?format=docx", "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	stranger := quotationApp(t, clientState(uuid.New()), repo)
	status, _ = doJSON(t, stranger, "GET", "/quotations/"+id.String()+"/pdf", "")
	assert.Equal(t, fiber.StatusForbidden, status)

	resp, err = app.Test(httptest.NewRequest("GET", "/quotations/"+id.String()+"/history", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestExportFileHandler_OwnerOnly(t *testing.T) {
	owner := uuid.New()
	repo := &memQuotations{items: map[uuid.UUID]models.Quotation{}}
	app := quotationApp(t, clientState(owner), repo)
	id := storedQuotation(repo, owner, models.QuotationStatusPending, time.Now().Add(time.Hour))

	status, body := doJSON(t, app, "POST", "/quotations/"+id.String()+"/export?format=xlsx", "")
	require.Equal(t, fiber.StatusCreated, status)
	path := "/exports/" + body["key"].(string)
	assert.Equal(t, "http://localhost"+path, body["url"])

	resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="quotation_Globex.xlsx"`)
	data, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.HasPrefix(string(data), "PK"))

	status, _ = doJSON(t, app, "GET", "/exports/quotations/"+id.String()+"/quotation_Globex.pdf", "")
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = doJSON(t, app, "GET", "/exports/quotations/"+id.String()+"/.hidden", "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doJSON(t, app, "GET", "/exports/quotations/not-a-uuid/quotation_Globex.xlsx", "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	stranger := quotationApp(t, clientState(uuid.New()), repo)
	status, _ = doJSON(t, stranger, "GET", path, "")
	assert.Equal(t, fiber.StatusForbidden, status)

	anonymous := quotationApp(t, auth.AnonymousState(), repo)
	status, _ = doJSON(t, anonymous, "GET", path, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func chatApp(state auth.State, store chat.Store) *fiber.App {
	sender := NewChatSender(store, nil)
	app := fiber.New()
	app.Use(withState(state))
	NewChatHandler(store, sender).RegisterRoutes(app)
	NewSupportHandler(store, sender).RegisterRoutes(app)
	return app
}

func TestChatHandler_SendAndRead(t *testing.T) {
	store := chat.NewMemoryStore()
	user := uuid.New()
	app := chatApp(clientState(user), store)

	status, body := doJSON(t, app, "POST", "/chat/messages", `{"text":"   "}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Message text is required", body["error"])

	for _, text := range []string{"first", "second"} {
		status, _ = doJSON(t, app, "POST", "/chat/messages", `{"text":"`+text+`"}`)
		require.Equal(t, fiber.StatusCreated, status)
	}

	status, body = doJSON(t, app, "GET", "/chat/messages", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "user_"+user.String(), body["key"])
	assert.Equal(t, "asc", body["order"])
	msgs := body["messages"].([]interface{})
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].(map[string]interface{})["text"])

	participants, err := store.Participants(context.Background(), "user_"+user.String())
	require.NoError(t, err)
	assert.Equal(t, []string{user.String()}, participants)

	status, _ = doJSON(t, app, "GET", "/support/conversations", "")
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestSupportHandler_ConsoleViews(t *testing.T) {
	store := chat.NewMemoryStore()
	user := uuid.New()
	key := "user_" + user.String()

	client := chatApp(clientState(user), store)
	for _, text := range []string{"hello", "anyone there?"} {
		status, _ := doJSON(t, client, "POST", "/chat/messages", `{"text":"`+text+`"}`)
		require.Equal(t, fiber.StatusCreated, status)
	}

	support := chatApp(supportState(), store)
	status, body := doJSON(t, support, "GET", "/support/conversations", "")
	assert.Equal(t, fiber.StatusOK, status)
	convs := body["conversations"].([]interface{})
	require.Len(t, convs, 1)
	assert.Equal(t, key, convs[0].(map[string]interface{})["key"])

	status, body = doJSON(t, support, "POST", "/support/conversations/"+key+"/messages", `{"text":"yes, how can I help?"}`)
	assert.Equal(t, fiber.StatusCreated, status)

	status, body = doJSON(t, support, "GET", "/support/conversations/"+key+"/messages", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "desc", body["order"])
	msgs := body["messages"].([]interface{})
	require.Len(t, msgs, 3)
	assert.Equal(t, "yes, how can I help?", msgs[0].(map[string]interface{})["text"])

	status, _ = doJSON(t, support, "GET", "/support/conversations/nokey/messages", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestHealthHandler(t *testing.T) {
	app := fiber.New()
	app.Get("/health", NewHealthHandler(nil, nil, "memory").GetHealth)

	status, body := doJSON(t, app, "GET", "/health", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "memory", body["chat_store"])
}
