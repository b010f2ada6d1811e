package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type envelope struct {
	Status        int             `json:"status"`
	Message       string          `json:"message"`
	Data          json.RawMessage `json:"data"`
	ErrorMessages []string        `json:"errorMessages"`
}

func newTestHTTPServer(t *testing.T) (*HTTPServer, *memStore, string) {
	t.Helper()
	ms := newMemStore()
	svc, _ := newTestService(ms)
	user := seedUser(ms, "usr_a", "A")

	sess, err := svc.issueSession(context.Background(), user)
	if err != nil {
		t.Fatalf("issueSession failed: %v", err)
	}
	return NewHTTPServer(svc, "*", nil), ms, sess.Token
}

func doRequest(t *testing.T, server *HTTPServer, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, req)

	var env envelope
	if recorder.Body.Len() > 0 {
		_ = json.Unmarshal(recorder.Body.Bytes(), &env)
	}
	return recorder, env
}

func TestHealthEndpoint(t *testing.T) {
	server, _, _ := newTestHTTPServer(t)

	recorder, _ := doRequest(t, server, http.MethodGet, "/api/health", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body["ok"] != true {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestReadyEndpoint(t *testing.T) {
	server, _, _ := newTestHTTPServer(t)

	recorder, _ := doRequest(t, server, http.MethodGet, "/api/ready", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body["status"] != "ready" {
		t.Errorf("unexpected readiness body: %v", body)
	}
}

func TestRequestIDHeaderEchoed(t *testing.T) {
	server, _, _ := newTestHTTPServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, req)

	if got := recorder.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("expected request id to round-trip, got %q", got)
	}
}

func TestProtectedRoutesRequireBearer(t *testing.T) {
	server, _, _ := newTestHTTPServer(t)

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/spaces"},
		{http.MethodPost, "/api/moments"},
		{http.MethodGet, "/api/users"},
		{http.MethodPost, "/api/ai/recommend"},
	} {
		recorder, env := doRequest(t, server, route.method, route.path, "", map[string]any{})
		if recorder.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", route.method, route.path, recorder.Code)
			continue
		}
		if len(env.ErrorMessages) == 0 || env.ErrorMessages[0] != msgUnauthorized {
			t.Errorf("%s %s: unexpected envelope %+v", route.method, route.path, env)
		}
	}
}

func TestPublicReadsNeedNoSession(t *testing.T) {
	server, _, _ := newTestHTTPServer(t)

	for _, path := range []string{"/api/spaces", "/api/moments", "/api/search?q=go"} {
		recorder, env := doRequest(t, server, http.MethodGet, path, "", nil)
		if recorder.Code != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d", path, recorder.Code)
			continue
		}
		if env.Status != http.StatusOK {
			t.Errorf("GET %s: unexpected envelope status %d", path, env.Status)
		}
	}
}

func TestSignInReturnsRedirectURL(t *testing.T) {
	server, _, _ := newTestHTTPServer(t)

	recorder, env := doRequest(t, server, http.MethodGet, "/api/auth/signin", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var data struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("invalid data: %v", err)
	}
	if data.URL == "" {
		t.Error("expected a redirect url")
	}
}

func TestSessionEndpoint(t *testing.T) {
	server, _, token := newTestHTTPServer(t)

	recorder, _ := doRequest(t, server, http.MethodGet, "/api/session", "", nil)
	var anon map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &anon); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if anon["authenticated"] != false {
		t.Errorf("expected unauthenticated, got %v", anon)
	}

	recorder, _ = doRequest(t, server, http.MethodGet, "/api/session", token, nil)
	var authed map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &authed); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if authed["authenticated"] != true || authed["userId"] != "usr_a" {
		t.Errorf("unexpected session body: %v", authed)
	}
}

func TestSpaceLifecycleOverHTTP(t *testing.T) {
	server, _, token := newTestHTTPServer(t)

	recorder, env := doRequest(t, server, http.MethodPost, "/api/spaces", token, CreateSpaceInput{
		Title:        "HTTP Space",
		Contributors: []string{"usr_a"},
		Tags:         []string{"go"},
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("create: expected 200, got %d (%s)", recorder.Code, recorder.Body.String())
	}
	if env.Message != "Space가 성공적으로 생성되었습니다." {
		t.Errorf("unexpected message %q", env.Message)
	}
	var created struct {
		ID     string `json:"id"`
		Layout string `json:"layout"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("invalid data: %v", err)
	}
	if created.ID == "" || created.Layout != "blog" {
		t.Fatalf("unexpected space data: %+v", created)
	}

	// Duplicate title comes back as a conflict envelope.
	recorder, env = doRequest(t, server, http.MethodPost, "/api/spaces", token, CreateSpaceInput{
		Title:        "HTTP Space",
		Contributors: []string{"usr_a"},
	})
	if recorder.Code != http.StatusConflict {
		t.Fatalf("duplicate: expected 409, got %d", recorder.Code)
	}
	if env.Status != http.StatusConflict || len(env.ErrorMessages) == 0 || env.ErrorMessages[0] != msgSpaceTitleTaken {
		t.Errorf("unexpected failure envelope: %+v", env)
	}

	// Public read sees the created Space.
	recorder, env = doRequest(t, server, http.MethodGet, "/api/spaces/"+created.ID, "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", recorder.Code)
	}

	// Update, then delete.
	title := "Renamed Space"
	recorder, _ = doRequest(t, server, http.MethodPatch, "/api/spaces/"+created.ID, token, UpdateSpaceInput{Title: &title})
	if recorder.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d (%s)", recorder.Code, recorder.Body.String())
	}

	recorder, _ = doRequest(t, server, http.MethodDelete, "/api/spaces/"+created.ID, token, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", recorder.Code)
	}

	recorder, env = doRequest(t, server, http.MethodGet, "/api/spaces/"+created.ID, "", nil)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", recorder.Code)
	}
	if len(env.ErrorMessages) == 0 || env.ErrorMessages[0] != msgSpaceNotFound {
		t.Errorf("unexpected failure envelope: %+v", env)
	}
}

func TestMomentLifecycleOverHTTP(t *testing.T) {
	server, _, token := newTestHTTPServer(t)

	recorder, env := doRequest(t, server, http.MethodPost, "/api/moments", token, CreateMomentInput{
		Title:   "First Post",
		Author:  "usr_a",
		Content: "hello world",
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("create: expected 200, got %d (%s)", recorder.Code, recorder.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("invalid data: %v", err)
	}

	content := "edited content"
	recorder, env = doRequest(t, server, http.MethodPatch, "/api/moments/"+created.ID, token, UpdateMomentInput{Content: &content})
	if recorder.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", recorder.Code)
	}
	var updated struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(env.Data, &updated); err != nil {
		t.Fatalf("invalid data: %v", err)
	}
	if updated.Content != "edited content" {
		t.Errorf("unexpected content %q", updated.Content)
	}

	recorder, _ = doRequest(t, server, http.MethodDelete, "/api/moments/"+created.ID, token, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", recorder.Code)
	}
}

func TestAITextEndpoint(t *testing.T) {
	server, _, token := newTestHTTPServer(t)

	recorder, env := doRequest(t, server, http.MethodPost, "/api/ai/text", token, map[string]any{
		"action":  "spellcheck",
		"content": "안녕하세요",
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", recorder.Code, recorder.Body.String())
	}
	var data struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("invalid data: %v", err)
	}
	if data.Text != "refined: 안녕하세요" {
		t.Errorf("unexpected text %q", data.Text)
	}

	recorder, env = doRequest(t, server, http.MethodPost, "/api/ai/text", token, map[string]any{
		"action":  "nope",
		"content": "x",
	})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("unknown action: expected 400, got %d", recorder.Code)
	}
	if len(env.ErrorMessages) == 0 || env.ErrorMessages[0] != msgBadInput {
		t.Errorf("unexpected failure envelope: %+v", env)
	}
}

func TestUnknownRouteEnvelope(t *testing.T) {
	server, _, token := newTestHTTPServer(t)

	recorder, env := doRequest(t, server, http.MethodGet, "/api/nonsense", token, nil)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", recorder.Code)
	}
	if env.Status != http.StatusNotFound {
		t.Errorf("unexpected envelope: %+v", env)
	}
}
