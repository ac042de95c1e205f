package api

import (
	"Abridge_1.0/backend/go/internal/config"
	"Abridge_1.0/backend/go/internal/database/sqlite"
	"Abridge_1.0/backend/go/internal/llm"
	"Abridge_1.0/backend/go/internal/models"
	"Abridge_1.0/backend/go/internal/summary_service/service"
	"Abridge_1.0/backend/go/internal/summary_service/store"
	userapi "Abridge_1.0/backend/go/internal/user_service/api"
	usersvc "Abridge_1.0/backend/go/internal/user_service/service"
	"Abridge_1.0/backend/go/internal/webcontent"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type fakeLLM struct {
	text string
	err  error
}

func (f *fakeLLM) GenerateContent(context.Context, *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.GenerateContentResponse{Content: []models.Content{{Parts: []*models.Part{{Text: f.text}}}}}, nil
}

type loopback struct{}

func (loopback) LookupHost(context.Context, string) ([]string, error) {
	return []string{"127.0.0.1"}, nil
}

type fixture struct {
	router *gin.Engine
	token  string
	userID uint
	model  *fakeLLM
}

func newFixture(t *testing.T, opts ...func(*config.AppConfig)) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.Summary.Retry.InitialInterval = "1ms"
	cfg.Summary.Retry.MaxInterval = "2ms"
	cfg.Fetcher.BackoffFactor = "1ms"
	for _, opt := range opts {
		opt(cfg)
	}

	db, err := sqlite.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatal(err)
	}
	records := store.NewGormRecordStore(db)
	user := &models.User{Username: "ada", Email: "ada@example.com", Password: "x"}
	if err := db.Create(user).Error; err != nil {
		t.Fatal(err)
	}

	model := &fakeLLM{text: "A concise and faithful summary."}
	svc := service.New(service.Deps{
		Policy:    cfg.Summary,
		Generator: service.NewGenerator(model, cfg.Summary, nil),
		Records:   records,
		Validator: webcontent.NewValidator(loopback{}, time.Second),
		Fetcher:   webcontent.NewFetcher(cfg.Fetcher),
		Extractor: webcontent.NewExtractor(cfg.Extraction),
	})

	tokens := usersvc.NewTokenIssuer(config.AuthConfig{JwtSecret: "secret", Issuer: "test"})
	token, err := tokens.Issue(user.ID, usersvc.TokenAccess)
	if err != nil {
		t.Fatal(err)
	}

	r := gin.New()
	RegisterRoutes(r, NewHandler(svc), userapi.AuthMiddleware(tokens))
	return &fixture{router: r, token: token, userID: user.ID, model: model}
}

func (f *fixture) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.token)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return m
}

var longText = strings.Repeat("Large language models condense long documents. ", 4)

func TestSummarizeSuccess(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/summarize/", gin.H{"text": longText, "summary_type": "short"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["summary"] != f.model.text || body["summary_type"] != "short" || body["success"] != true {
		t.Errorf("unexpected body %v", body)
	}
	if body["characters"] != float64(len(f.model.text)) {
		t.Errorf("characters = %v", body["characters"])
	}

	w = f.do(http.MethodGet, "/summaries/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	list := decode(t, w)
	if list["count"] != float64(1) {
		t.Errorf("history count = %v, want 1", list["count"])
	}
}

func TestSummarizeTooShort(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/summarize/", gin.H{"text": strings.Repeat("x", 49), "summary_type": "short"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if body := decode(t, w); body["code"] != "content_too_short" {
		t.Errorf("code = %v, want content_too_short", body["code"])
	}
}

func TestSummarizeErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		typ    string
		model  fakeLLM
		status int
		code   string
	}{
		{name: "empty summary", text: longText, model: fakeLLM{text: ""}, status: http.StatusUnprocessableEntity, code: "empty_summary"},
		{name: "content filtered", text: longText, model: fakeLLM{err: llm.ErrContentFiltered}, status: http.StatusBadRequest, code: "content_violation"},
		{name: "provider down", text: longText, model: fakeLLM{err: llm.ErrUnavailable}, status: http.StatusServiceUnavailable, code: "service_unavailable"},
		{name: "bad type", text: longText, typ: "tiny", model: fakeLLM{text: "unused summary"}, status: http.StatusBadRequest, code: "invalid_summary_type"},
		{name: "too long", text: strings.Repeat("y", 15001), model: fakeLLM{text: "unused summary"}, status: http.StatusBadRequest, code: "content_too_long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			*f.model = tt.model

			w := f.do(http.MethodPost, "/summarize/", gin.H{"text": tt.text, "summary_type": tt.typ})
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
			if body := decode(t, w); body["code"] != tt.code {
				t.Errorf("code = %v, want %s", body["code"], tt.code)
			}
		})
	}
}

func TestSummarizeFilteredPastDeadline(t *testing.T) {
	f := newFixture(t, func(cfg *config.AppConfig) {
		cfg.Summary.Retry.MaxAttempts = 1000
		cfg.Summary.Retry.Deadline = "20ms"
	})
	*f.model = fakeLLM{err: llm.ErrContentFiltered}

	w := f.do(http.MethodPost, "/summarize/", gin.H{"text": longText})
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 (%s)", w.Code, w.Body.String())
	}
	if body := decode(t, w); body["code"] != "service_unavailable" {
		t.Errorf("code = %v, want service_unavailable", body["code"])
	}
}

func TestSummarizeRequiresToken(t *testing.T) {
	f := newFixture(t)
	f.token = "garbage"

	w := f.do(http.MethodPost, "/summarize/", gin.H{"text": longText})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestFetchURLContentScenarios(t *testing.T) {
	article := strings.Repeat("Readable words inside the main article body. ", 3)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/article":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><body><div>sidebar text</div><article>" + article + "</article></body></html>"))
		case "/pdf":
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write([]byte("%PDF-1.4"))
		case "/forbidden":
			w.WriteHeader(http.StatusForbidden)
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/empty":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><body><p>hi</p></body></html>"))
		}
	}))
	defer srv.Close()

	tests := []struct {
		url    string
		status int
		code   string
	}{
		{url: "ftp://example.com", status: http.StatusBadRequest, code: "invalid_url"},
		{url: "", status: http.StatusBadRequest, code: "missing_url"},
		{url: srv.URL + "/pdf", status: http.StatusBadRequest, code: "non_html_content"},
		{url: srv.URL + "/forbidden", status: http.StatusBadRequest, code: "forbidden"},
		{url: srv.URL + "/missing", status: http.StatusBadRequest, code: "http_404"},
		{url: srv.URL + "/empty", status: http.StatusBadRequest, code: "no_content"},
	}
	f := newFixture(t)
	for _, tt := range tests {
		w := f.do(http.MethodPost, "/fetch-url-content/", gin.H{"url": tt.url})
		if w.Code != tt.status {
			t.Errorf("%s: status = %d, want %d", tt.url, w.Code, tt.status)
			continue
		}
		if body := decode(t, w); body["code"] != tt.code {
			t.Errorf("%s: code = %v, want %s", tt.url, body["code"], tt.code)
		}
	}

	w := f.do(http.MethodPost, "/fetch-url-content/", gin.H{"url": srv.URL + "/article"})
	if w.Code != http.StatusOK {
		t.Fatalf("article: status = %d, body %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["content"] != strings.TrimSpace(article) || body["source_url"] != srv.URL+"/article" || body["success"] != true {
		t.Errorf("unexpected body %v", body)
	}
}

func TestListSummariesRejectsBadPage(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/summaries/?page=zero", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
