package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Postboard/internal/api/middleware"
	"Postboard/internal/auth"
	"Postboard/internal/core/posts"
	"Postboard/internal/db/memory"
)

const testSecret = "routes-test-secret"

type testServer struct {
	*httptest.Server
	t *testing.T
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	verifier, err := auth.NewHS256Verifier(testSecret, "")
	require.NoError(t, err)

	service := posts.NewService(memory.NewPostRepository())
	r := chi.NewRouter()
	RegisterHealthRoutes(r)
	RegisterPostRoutes(r, service, middleware.NewAuthMiddleware(verifier, nil))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, t: t}
}

func (s *testServer) token(userID string) string {
	token, err := auth.IssueHS256(testSecret, userID, "", time.Hour)
	require.NoError(s.t, err)
	return token
}

func (s *testServer) do(method, path, userID, body string) (*http.Response, map[string]json.RawMessage) {
	s.t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), method, s.URL+path, strings.NewReader(body))
	require.NoError(s.t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+s.token(userID))
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(s.t, err)
	defer func() { _ = resp.Body.Close() }()

	var out map[string]json.RawMessage
	if resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&out)
	}
	return resp, out
}

func decodePost(t *testing.T, body map[string]json.RawMessage) posts.Post {
	t.Helper()
	require.Contains(t, body, "post")
	var p posts.Post
	require.NoError(t, json.Unmarshal(body["post"], &p))
	return p
}

func errorName(t *testing.T, body map[string]json.RawMessage) string {
	t.Helper()
	var name string
	require.NoError(t, json.Unmarshal(body["error"], &name))
	return name
}

func TestPostRoutes_Scenarios(t *testing.T) {
	srv := newTestServer(t)

	// A: create
	resp, body := srv.do("POST", "/post", "user-1", `{"content":"test post content"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodePost(t, body)
	assert.Equal(t, "test post content", created.Content)
	assert.Equal(t, "user-1", created.AuthorID)
	assert.Equal(t, 0, created.Votes.UpVotes.Count)
	assert.Equal(t, []string{}, created.Votes.UpVotes.Users)
	assert.Equal(t, []string{}, created.Votes.DownVotes.Users)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body["post"], &raw))
	assert.Contains(t, raw, "_id")
	assert.Contains(t, raw, "userId")
	assert.NotContains(t, raw, "Version")

	// B: upvote
	resp, body = srv.do("PUT", "/post/upvote/"+created.ID, "user-2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	upvoted := decodePost(t, body)
	assert.Equal(t, posts.NewLedger("user-2"), upvoted.Votes.UpVotes)
	assert.Equal(t, 0, upvoted.Votes.DownVotes.Count)

	// C: downvote
	resp, body = srv.do("PUT", "/post/downvote/"+created.ID, "user-2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	downvoted := decodePost(t, body)
	assert.Equal(t, 0, downvoted.Votes.UpVotes.Count)
	assert.Equal(t, posts.NewLedger("user-2"), downvoted.Votes.DownVotes)

	// E: non-owner delete
	resp, body = srv.do("DELETE", "/post/"+created.ID, "user-2", "")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "NotAuthorized", errorName(t, body))

	resp, _ = srv.do("GET", "/post/"+created.ID, "user-2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// D: owner delete
	resp, body = srv.do("DELETE", "/post/"+created.ID, "user-1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body)

	resp, body = srv.do("GET", "/post/"+created.ID, "user-1", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "PostNotFound", errorName(t, body))
}

func TestPostRoutes_Update(t *testing.T) {
	srv := newTestServer(t)

	resp, body := srv.do("POST", "/post", "user-1", `{"content":"first"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := decodePost(t, body).ID

	resp, _ = srv.do("PATCH", "/post/"+id, "user-1", `{"content":"second"}`)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = srv.do("GET", "/post/"+id, "user-2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "second", decodePost(t, body).Content)

	resp, body = srv.do("PATCH", "/post/"+id, "user-2", `{"content":"third"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "NotAuthorized", errorName(t, body))

	resp, body = srv.do("PATCH", "/post/"+id, "user-1", `{"content":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "InvalidContent", errorName(t, body))

	resp, body = srv.do("PATCH", "/post/missing", "user-1", `{"content":"x"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "PostNotFound", errorName(t, body))
}

func TestPostRoutes_BadRequests(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name       string
		method     string
		path       string
		user       string
		body       string
		wantStatus int
		wantError  string
	}{
		{"no token", "POST", "/post", "", `{"content":"x"}`, http.StatusUnauthorized, "AuthenticationRequired"},
		{"no token on read", "GET", "/post/any", "", "", http.StatusUnauthorized, "AuthenticationRequired"},
		{"no token on vote", "PUT", "/post/upvote/any", "", "", http.StatusUnauthorized, "AuthenticationRequired"},
		{"malformed json", "POST", "/post", "user-1", `{"content":`, http.StatusBadRequest, "InvalidRequest"},
		{"empty content", "POST", "/post", "user-1", `{"content":"   "}`, http.StatusBadRequest, "InvalidContent"},
		{"too long", "POST", "/post", "user-1", `{"content":"` + strings.Repeat("x", posts.MaxContentLength+1) + `"}`, http.StatusBadRequest, "InvalidContent"},
		{"vote on missing post", "PUT", "/post/downvote/missing", "user-1", "", http.StatusNotFound, "PostNotFound"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := srv.do(tt.method, tt.path, tt.user, tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantError, errorName(t, body))
		})
	}
}

func TestHealthRoute(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
