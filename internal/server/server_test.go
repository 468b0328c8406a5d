package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openelig/eligibility-tracker/internal/export"
	"github.com/openelig/eligibility-tracker/internal/extract"
	"github.com/openelig/eligibility-tracker/internal/ocr"
	"github.com/openelig/eligibility-tracker/internal/pipeline"
	"github.com/openelig/eligibility-tracker/internal/repository"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	store, err := export.NewWorkbookStore(t.TempDir(), nil)
	require.NoError(t, err)

	dedup, err := repository.OpenDedupStore(filepath.Join(t.TempDir(), "seen.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { dedup.Close() })

	extractor := extract.NewExtractor(nil)
	proc := pipeline.NewProcessor(nil, extractor, ocr.NewClient("", 0, nil), store, dedup, nil)

	return NewServer(
		":0",
		NewHub(10, nil),
		proc,
		store,
		export.NewService(store, nil),
		"eligibility-tracker",
		nil,
	)
}

func postJSON(t *testing.T, srv *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func get(srv *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	w := get(testServer(t), "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestSubmitMessage(t *testing.T) {
	srv := testServer(t)

	w := postJSON(t, srv, "/v1/messages", submitRequest{
		Text:           "member id 12345 status active",
		UserIdentifier: "agent.smith",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res submitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotNil(t, res.Record)
	assert.Equal(t, "12345", res.Record.MemberID)
	assert.Equal(t, "ACTIVE", res.Record.MemberStatus)
	assert.Equal(t, "agent.smith", res.Record.UserIdentifier)
	assert.False(t, res.Deduplicated)
	assert.NotEmpty(t, res.MessageID)
}

func TestSubmitMessage_Validation(t *testing.T) {
	srv := testServer(t)

	w := postJSON(t, srv, "/v1/messages", submitRequest{UserIdentifier: "agent.smith"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "text or image required")

	w = postJSON(t, srv, "/v1/messages", submitRequest{Text: "member id 1"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "user_identifier required")

	req := httptest.NewRequest(http.MethodPost, "/v1/messages", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitMessage_Dedup(t *testing.T) {
	srv := testServer(t)
	msg := submitRequest{
		MessageID:      "msg-42",
		Text:           "member id 12345",
		UserIdentifier: "agent.smith",
	}

	w := postJSON(t, srv, "/v1/messages", msg)
	require.Equal(t, http.StatusOK, w.Code)
	var first submitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	assert.False(t, first.Deduplicated)

	w = postJSON(t, srv, "/v1/messages", msg)
	require.Equal(t, http.StatusOK, w.Code)
	var second submitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.True(t, second.Deduplicated)
	assert.Nil(t, second.Record)
}

func TestListRecords(t *testing.T) {
	srv := testServer(t)
	w := postJSON(t, srv, "/v1/messages", submitRequest{
		Text:           "member id 12345",
		UserIdentifier: "agent.smith",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = get(srv, "/v1/records")
	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Count)

	w = get(srv, "/v1/records?from=not-a-date")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebsocketBroadcastManyWriters(t *testing.T) {
	store, err := export.NewWorkbookStore(t.TempDir(), nil)
	require.NoError(t, err)
	extractor := extract.NewExtractor(nil)
	proc := pipeline.NewProcessor(nil, extractor, ocr.NewClient("", 0, nil), store, nil, nil)
	hub := NewHub(50, nil)
	srv := NewServer(":0", hub, proc, store, export.NewService(store, nil), "eligibility-tracker", nil)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	for i := 0; i < 4; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
		go func(c *websocket.Conn) {
			for {
				if _, _, err := c.ReadMessage(); err != nil {
					return
				}
			}
		}(conn)
	}
	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.clients) == 4
	}, 2*time.Second, 10*time.Millisecond)

	// every read loop and every background processor can broadcast at once;
	// each connection must still see one writer at a time
	payload := strings.Repeat("x", 2048)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				hub.Broadcast(ChatMessage{Type: "message", Text: payload, User: "load"})
			}
		}()
	}
	wg.Wait()
}

func TestExportRecords(t *testing.T) {
	srv := testServer(t)
	w := postJSON(t, srv, "/v1/messages", submitRequest{
		Text:           "member id 12345",
		UserIdentifier: "agent.smith",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = get(srv, "/v1/records/export")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Body.Bytes())
}
