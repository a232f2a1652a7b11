package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/core/chat"
	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/modules/sales/models"
)

func TestClient_LoginAndBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			var req auth.LoginRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "a@example.com", req.Email)
			json.NewEncoder(w).Encode(auth.AuthResponse{
				AccessToken: "tok",
				User:        &auth.UserInfo{ID: "u-1", Email: req.Email, Role: auth.RoleClient},
			})
		case "/proposals":
			gotAuth = r.Header.Get("Authorization")
			assert.Equal(t, "accepted", r.URL.Query().Get("status"))
			w.Write([]byte(`[]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL + "/")
	resp, err := c.Login(context.Background(), "a@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.AccessToken)

	c.SetToken(resp.AccessToken)
	list, err := c.ListProposals(context.Background(), "accepted")
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, "Bearer tok", gotAuth)
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"quotation has expired"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).AcceptQuotation(context.Background(), "q-1")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "quotation has expired", apiErr.Message)
}

func TestClient_DownloadPDF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quotations/q-1/pdf", r.URL.Path)
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="quotation_Globex.pdf"`)
		w.Write([]byte("%PDF-1.3"))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	name, err := New(srv.URL).DownloadPDF(context.Background(), "q-1", &buf)
	require.NoError(t, err)
	assert.Equal(t, "quotation_Globex.pdf", name)
	assert.Equal(t, "%PDF-1.3", buf.String())
}

func TestClient_SendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.SendMessageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "agent-7", req.SupportID)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(chat.Message{ID: "m1", Text: req.Text, Timestamp: 42})
	}))
	defer srv.Close()

	msg, err := New(srv.URL).SendMessage(context.Background(), "hi", "agent-7")
	require.NoError(t, err)
	assert.Equal(t, "m1", msg.ID)
	assert.Equal(t, "hi", msg.Text)
}

func TestReadEvents(t *testing.T) {
	body := ": ping\n\n" +
		"event: conversations\ndata: {\"conversations\":[]}\n\n" +
		"event: messages\ndata: {\"key\":\"user_1\",\n" +
		"data: \"order\":\"asc\"}\n\n"

	var got []Event
	err := readEvents(strings.NewReader(body), func(ev Event) error {
		got = append(got, ev)
		return nil
	})
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	require.Len(t, got, 2)
	assert.Equal(t, "conversations", got[0].Name)
	assert.Equal(t, "messages", got[1].Name)
	assert.JSONEq(t, `{"key":"user_1","order":"asc"}`, string(got[1].Data))

	stop := errors.New("stop")
	err = readEvents(strings.NewReader(body), func(Event) error { return stop })
	assert.ErrorIs(t, err, stop)
}

func TestClient_ChatStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/stream", r.URL.Path)
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("event: messages\ndata: {\"key\":\"user_1\",\"order\":\"asc\",\"messages\":[{\"id\":\"m1\",\"text\":\"hello\"}]}\n\n"))
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stop := errors.New("seen")
	err := New(srv.URL).ChatStream(ctx, "", func(resp models.MessagesResponse) error {
		assert.Equal(t, "user_1", resp.Key)
		require.Len(t, resp.Messages, 1)
		assert.Equal(t, "hello", resp.Messages[0].Text)
		return stop
	})
	assert.ErrorIs(t, err, stop)
}
