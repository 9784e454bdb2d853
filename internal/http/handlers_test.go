package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/perch-labs/noticeboard/internal/board"
	"github.com/perch-labs/noticeboard/internal/config"
)

func buildTestServer(tb testing.TB) *Server {
	tb.Helper()
	cfg := config.Config{
		Port:             "0",
		AuthToken:        "secret",
		AdminPrincipal:   "admin-1",
		ReadTimeoutSecs:  15,
		WriteTimeoutSecs: 15,
		IdleTimeoutSecs:  60,
	}

	logger := log.New(io.Discard, "", 0)
	brd := board.New(board.Options{Admin: "admin-1", Logger: logger})
	srv := New(cfg, nil, brd, nil, logger)
	// Replace chi router to avoid default middleware noise.
	router := chi.NewRouter()
	srv.router = router
	srv.registerRoutes()
	return srv
}

func attachIDParam(req *http.Request, id string) *http.Request {
	ctx := chi.NewRouteContext()
	ctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, ctx))
}

func postNote(tb testing.TB, srv *Server, principal, title, body string) *httptest.ResponseRecorder {
	tb.Helper()
	payload, _ := json.Marshal(noteCreateRequest{Title: title, Body: body})
	req := httptest.NewRequest(http.MethodPost, "/notes", bytes.NewReader(payload))
	if principal != "" {
		req.Header.Set("X-Principal-Id", principal)
	}
	rec := httptest.NewRecorder()
	srv.handlePostNote(rec, req)
	return rec
}

func mustPostNote(tb testing.TB, srv *Server, principal string) noteResponse {
	tb.Helper()
	rec := postNote(tb, srv, principal, "A valid title", "A body that is comfortably long enough.")
	if rec.Code != http.StatusCreated {
		tb.Fatalf("post note status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp noteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		tb.Fatalf("decode note response: %v", err)
	}
	return resp
}

func mustAddCatalogEntry(tb testing.TB, srv *Server, principal string) catalogResponse {
	tb.Helper()
	payload, _ := json.Marshal(catalogCreateRequest{
		Title:    "A fine picture",
		Synopsis: "A heist inside dreams.",
		Director: "C. Nolan",
		Cast:     []string{"L. DiCaprio"},
	})
	req := httptest.NewRequest(http.MethodPost, "/catalog", bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("X-Principal-Id", principal)
	rec := httptest.NewRecorder()
	srv.handleAddCatalogEntry(rec, req)
	if rec.Code != http.StatusCreated {
		tb.Fatalf("add catalog entry status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp catalogResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		tb.Fatalf("decode catalog response: %v", err)
	}
	return resp
}

func castVote(tb testing.TB, srv *Server, principal, id string, score int) *httptest.ResponseRecorder {
	tb.Helper()
	payload, _ := json.Marshal(voteRequest{Score: score})
	req := httptest.NewRequest(http.MethodPost, "/catalog/"+id+"/votes", bytes.NewReader(payload))
	if principal != "" {
		req.Header.Set("X-Principal-Id", principal)
	}
	req = attachIDParam(req, id)
	rec := httptest.NewRecorder()
	srv.handleCastVote(rec, req)
	return rec
}

func TestHandlePostNote(t *testing.T) {
	srv := buildTestServer(t)

	resp := mustPostNote(t, srv, "alice")
	if resp.Author != "alice" {
		t.Fatalf("author = %q, want alice", resp.Author)
	}
	if resp.ID == "" {
		t.Fatalf("response missing id")
	}

	// The note is readable back through the read endpoint.
	req := httptest.NewRequest(http.MethodGet, "/notes/"+resp.ID, nil)
	req = attachIDParam(req, resp.ID)
	rec := httptest.NewRecorder()
	srv.handleReadNote(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("read note status = %d", rec.Code)
	}
}

func TestHandlePostNote_MissingPrincipal(t *testing.T) {
	srv := buildTestServer(t)
	rec := postNote(t, srv, "", "A valid title", "A body that is comfortably long enough.")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestHandlePostNote_Validation(t *testing.T) {
	srv := buildTestServer(t)

	rec := postNote(t, srv, "alice", "short", "A body that is comfortably long enough.")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("short title status = %d, want 422", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Code != "VALIDATION_ERROR" || !strings.Contains(resp.Message, "title") {
		t.Fatalf("unexpected error payload: %+v", resp)
	}

	rec = postNote(t, srv, "alice", strings.Repeat("t", 101), "A body that is comfortably long enough.")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("long title status = %d, want 422", rec.Code)
	}

	// Invalid JSON
	req := httptest.NewRequest(http.MethodPost, "/notes", bytes.NewBufferString("invalid json"))
	req.Header.Set("X-Principal-Id", "alice")
	rec2 := httptest.NewRecorder()
	srv.handlePostNote(rec2, req)
	if rec2.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid json status = %d, want 422", rec2.Code)
	}
}

func TestHandlePostNote_WithReference(t *testing.T) {
	srv := buildTestServer(t)
	first := mustPostNote(t, srv, "alice")

	payload, _ := json.Marshal(noteCreateRequest{
		Title:       "A reply title",
		Body:        "This reply body clears the minimum.",
		ReferenceID: &first.ID,
	})
	req := httptest.NewRequest(http.MethodPost, "/notes", bytes.NewReader(payload))
	req.Header.Set("X-Principal-Id", "bob")
	rec := httptest.NewRecorder()
	srv.handlePostNote(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp noteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ReferenceID == nil || *resp.ReferenceID != first.ID {
		t.Fatalf("referenceId = %v, want %s", resp.ReferenceID, first.ID)
	}
}

func TestHandlePostAdminNote_Auth(t *testing.T) {
	srv := buildTestServer(t)
	payload, _ := json.Marshal(noteCreateRequest{Title: "A valid title", Body: "A body that is comfortably long enough."})

	// No bearer token.
	req := httptest.NewRequest(http.MethodPost, "/admin/notes", bytes.NewReader(payload))
	req.Header.Set("X-Principal-Id", "admin-1")
	rec := httptest.NewRecorder()
	srv.handlePostAdminNote(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no bearer status = %d, want 401", rec.Code)
	}

	// Bearer but not the capability holder.
	req = httptest.NewRequest(http.MethodPost, "/admin/notes", bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("X-Principal-Id", "mallory")
	rec = httptest.NewRecorder()
	srv.handlePostAdminNote(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-holder status = %d, want 403", rec.Code)
	}

	// Bearer plus the capability holder.
	req = httptest.NewRequest(http.MethodPost, "/admin/notes", bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("X-Principal-Id", "admin-1")
	rec = httptest.NewRecorder()
	srv.handlePostAdminNote(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("holder status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleReadNote_NotFound(t *testing.T) {
	srv := buildTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/notes/nope", nil)
	req = attachIDParam(req, "nope")
	rec := httptest.NewRecorder()
	srv.handleReadNote(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleCastVoteAndRating(t *testing.T) {
	srv := buildTestServer(t)
	entry := mustAddCatalogEntry(t, srv, "admin-1")

	for voter, score := range map[string]int{"alice": 4, "bob": 7, "carol": 9} {
		if rec := castVote(t, srv, voter, entry.ID, score); rec.Code != http.StatusCreated {
			t.Fatalf("vote %s/%d status = %d: %s", voter, score, rec.Code, rec.Body.String())
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/catalog/"+entry.ID+"/rating", nil)
	req = attachIDParam(req, entry.ID)
	rec := httptest.NewRecorder()
	srv.handleGetRating(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("rating status = %d", rec.Code)
	}
	var rating ratingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &rating); err != nil {
		t.Fatalf("decode rating: %v", err)
	}
	if rating.Average != 6 || rating.Votes != 3 {
		t.Fatalf("rating = %+v, want avg 6 votes 3", rating)
	}
}

func TestHandleCastVote_Rejections(t *testing.T) {
	srv := buildTestServer(t)
	entry := mustAddCatalogEntry(t, srv, "admin-1")

	if rec := castVote(t, srv, "", entry.ID, 5); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing principal status = %d, want 401", rec.Code)
	}
	if rec := castVote(t, srv, "alice", entry.ID, 11); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("out-of-range status = %d, want 422", rec.Code)
	}
	if rec := castVote(t, srv, "alice", "missing", 5); rec.Code != http.StatusNotFound {
		t.Fatalf("missing entry status = %d, want 404", rec.Code)
	}

	if rec := castVote(t, srv, "alice", entry.ID, 5); rec.Code != http.StatusCreated {
		t.Fatalf("first vote status = %d", rec.Code)
	}
	rec := castVote(t, srv, "alice", entry.ID, 5)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate vote status = %d, want 409", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Code != "ALREADY_VOTED" {
		t.Fatalf("error code = %s, want ALREADY_VOTED", resp.Code)
	}
}

func TestHandleTransferAdmin(t *testing.T) {
	srv := buildTestServer(t)

	transfer := func(principal, newHolder string) *httptest.ResponseRecorder {
		payload, _ := json.Marshal(transferRequest{NewHolder: newHolder})
		req := httptest.NewRequest(http.MethodPost, "/admin/transfer", bytes.NewReader(payload))
		req.Header.Set("Authorization", "Bearer secret")
		req.Header.Set("X-Principal-Id", principal)
		rec := httptest.NewRecorder()
		srv.handleTransferAdmin(rec, req)
		return rec
	}

	if rec := transfer("mallory", "mallory"); rec.Code != http.StatusForbidden {
		t.Fatalf("non-holder transfer status = %d, want 403", rec.Code)
	}
	if rec := transfer("admin-1", "bob"); rec.Code != http.StatusOK {
		t.Fatalf("transfer status = %d: %s", rec.Code, rec.Body.String())
	}

	// The previous holder is locked out of gated writes now.
	payload, _ := json.Marshal(noteCreateRequest{Title: "A valid title", Body: "A body that is comfortably long enough."})
	req := httptest.NewRequest(http.MethodPost, "/admin/notes", bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("X-Principal-Id", "admin-1")
	rec := httptest.NewRecorder()
	srv.handlePostAdminNote(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("previous holder status = %d, want 403", rec.Code)
	}
}

func TestHandleListEvents_RequiresBearer(t *testing.T) {
	srv := buildTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/admin/events", nil)
	rec := httptest.NewRecorder()
	srv.handleListEvents(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestVerifyBearer(t *testing.T) {
	srv := &Server{cfg: config.Config{AuthToken: "secret"}}
	cases := []struct {
		header  string
		allowed bool
	}{
		{"Bearer secret", true},
		{"Bearer secret ", true},
		{"Bearer other", false},
		{"secret", false},
		{"", false},
	}
	for _, c := range cases {
		if srv.verifyBearer(c.header) != c.allowed {
			t.Fatalf("verifyBearer(%q) expected %v", c.header, c.allowed)
		}
	}
}

func BenchmarkHandleCastVote(b *testing.B) {
	srv := buildTestServer(b)
	entry := mustAddCatalogEntry(b, srv, "admin-1")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := castVote(b, srv, fmt.Sprintf("bench-%d", i), entry.ID, 1+i%10)
		if rec.Code != http.StatusCreated {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}
