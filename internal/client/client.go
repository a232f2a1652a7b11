package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/chat"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/modules/sales/models"
)

// APIError is a non-2xx answer from the API, carrying its {"error": ...} message
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status: %d): %s", e.Status, e.Message)
}

// Client talks to cmd/api over JSON/HTTP
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken switches the bearer token, e.g. after a refresh
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	return sendWith(c.http, req)
}

// sendWith turns non-2xx answers into *APIError
func sendWith(hc *http.Client, req *http.Request) (*http.Response, error) {
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", req.Method, req.URL.Path, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{Status: resp.StatusCode}
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		apiErr.Message = payload.Error
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return nil, apiErr
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// Auth

func (c *Client) Signup(ctx context.Context, req auth.SignupRequest) (*auth.AuthResponse, error) {
	var out auth.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/signup", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*auth.AuthResponse, error) {
	var out auth.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", auth.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) LoginWithGoogle(ctx context.Context, idToken string) (*auth.AuthResponse, error) {
	var out auth.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/google", auth.GoogleLoginRequest{GoogleIDToken: idToken}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*auth.AuthResponse, error) {
	var out auth.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", auth.RefreshTokenRequest{RefreshToken: refreshToken}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Me returns the server's view of the current token
func (c *Client) Me(ctx context.Context) (*auth.StateView, error) {
	var out auth.StateView
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Proposals

func (c *Client) GenerateProposal(ctx context.Context, business string) (*models.GenerateProposalResponse, error) {
	var out models.GenerateProposalResponse
	if err := c.do(ctx, http.MethodPost, "/proposals", models.GenerateProposalRequest{Business: business}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListProposals(ctx context.Context, status string) ([]models.Proposal, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	var out []models.Proposal
	if err := c.do(ctx, http.MethodGet, withQuery("/proposals", q), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateProposalStatus(ctx context.Context, id string, status models.ProposalStatus) (*models.Proposal, error) {
	var out models.Proposal
	path := "/proposals/" + url.PathEscape(id) + "/status"
	if err := c.do(ctx, http.MethodPatch, path, models.UpdateProposalStatusRequest{Status: status}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Quotations

func (c *Client) GenerateQuotation(ctx context.Context, req models.GenerateQuotationRequest) (*models.GenerateQuotationResponse, error) {
	var out models.GenerateQuotationResponse
	if err := c.do(ctx, http.MethodPost, "/quotations", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListQuotations(ctx context.Context, status string, accepted *bool) ([]models.Quotation, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if accepted != nil {
		q.Set("accepted", strconv.FormatBool(*accepted))
	}
	var out []models.Quotation
	if err := c.do(ctx, http.MethodGet, withQuery("/quotations", q), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AcceptQuotation(ctx context.Context, id string) (*models.Quotation, error) {
	var out models.Quotation
	if err := c.do(ctx, http.MethodPost, "/quotations/"+url.PathEscape(id)+"/accept", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DownloadPDF copies the rendered quotation into w and returns the server's file name
func (c *Client) DownloadPDF(ctx context.Context, id string, w io.Writer) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/quotations/"+url.PathEscape(id)+"/pdf", nil)
	if err != nil {
		return "", err
	}
	resp, err := c.send(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	name := "quotation.pdf"
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		name = params["filename"]
	}
	return name, nil
}

func (c *Client) ExportQuotation(ctx context.Context, id, format string) (*models.ExportResponse, error) {
	q := url.Values{"format": {format}}
	var out models.ExportResponse
	if err := c.do(ctx, http.MethodPost, withQuery("/quotations/"+url.PathEscape(id)+"/export", q), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) QuotationHistory(ctx context.Context, id string) ([]audit.AuditLog, error) {
	var out []audit.AuditLog
	if err := c.do(ctx, http.MethodGet, "/quotations/"+url.PathEscape(id)+"/history", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Chat

func (c *Client) Messages(ctx context.Context, supportID string) (*models.MessagesResponse, error) {
	q := url.Values{}
	if supportID != "" {
		q.Set("support_id", supportID)
	}
	var out models.MessagesResponse
	if err := c.do(ctx, http.MethodGet, withQuery("/chat/messages", q), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SendMessage(ctx context.Context, text, supportID string) (*chat.Message, error) {
	var out chat.Message
	if err := c.do(ctx, http.MethodPost, "/chat/messages", models.SendMessageRequest{Text: text, SupportID: supportID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Conversations(ctx context.Context) ([]chat.Conversation, error) {
	var out models.ConversationsResponse
	if err := c.do(ctx, http.MethodGet, "/support/conversations", nil, &out); err != nil {
		return nil, err
	}
	return out.Conversations, nil
}

func (c *Client) ConversationMessages(ctx context.Context, key string) (*models.MessagesResponse, error) {
	var out models.MessagesResponse
	if err := c.do(ctx, http.MethodGet, "/support/conversations/"+url.PathEscape(key)+"/messages", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Reply(ctx context.Context, key, text string) (*chat.Message, error) {
	var out chat.Message
	path := "/support/conversations/" + url.PathEscape(key) + "/messages"
	if err := c.do(ctx, http.MethodPost, path, models.SendMessageRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
