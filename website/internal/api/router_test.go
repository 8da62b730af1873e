package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oe/sunrain-sub002/content-fetcher/catalog"
	infralogger "github.com/oe/sunrain-sub002/infrastructure/logger"
	"github.com/oe/sunrain-sub002/website/internal/api"
	"github.com/oe/sunrain-sub002/website/internal/assessment"
	"github.com/oe/sunrain-sub002/website/internal/config"
	"github.com/oe/sunrain-sub002/website/internal/i18n"
	"github.com/oe/sunrain-sub002/website/internal/questionnaire"
	"github.com/oe/sunrain-sub002/website/internal/storage"
	"github.com/oe/sunrain-sub002/website/locales"
)

var languages = []string{"en", "zh", "es", "ja"}

func newRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	return newRouterWithLogger(t, infralogger.NewNop())
}

func newRouterWithLogger(t *testing.T, log infralogger.Logger) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	bank := questionnaire.NewBank(filepath.Join("..", "..", "content", "questionnaires"), log)
	require.NoError(t, bank.Reload())

	reg := i18n.NewRegistry()
	reg.RegisterFS(locales.FS, languages, locales.Namespaces)
	manager := i18n.NewManager(reg, i18n.NewCache(i18n.CacheOptions{}, log), "en", log)

	store := storage.NewSecureStore(storage.NewMemoryBackend(), "sunrain", log)
	svc := assessment.NewService(assessment.Config{Store: store, Questionnaires: bank, Logger: log})

	contentDir := t.TempDir()
	router := gin.New()
	api.SetupRoutes(router, api.Deps{
		Questionnaires: bank,
		Assessments:    svc,
		Translations:   manager,
		Negotiator:     i18n.NewNegotiator(languages),
		ContentDir:     contentDir,
		QuoteThreshold: 50,
	}, log)
	return router, contentDir
}

func do(t *testing.T, router http.Handler, method, path string, body any, headers ...string) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func TestQuestionnaires_Localized(t *testing.T) {
	router, _ := newRouter(t)

	code, body := do(t, router, http.MethodGet, "/api/v1/questionnaires?lang=es", nil)
	require.Equal(t, http.StatusOK, code)
	assert.InDelta(t, 3, body["count"], 0)
	assert.Equal(t, "es", body["language"])

	code, body = do(t, router, http.MethodGet, "/api/v1/questionnaires/phq9", nil, "Accept-Language", "zh-CN,zh;q=0.9")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "抑郁症筛查量表（PHQ-9）", body["title"])
	questions := body["questions"].([]any)
	assert.Len(t, questions, 9)

	// Japanese ships no questionnaire text, so English is used.
	code, body = do(t, router, http.MethodGet, "/api/v1/questionnaires/gad7?lang=ja", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Anxiety Screening (GAD-7)", body["title"])

	code, _ = do(t, router, http.MethodGet, "/api/v1/questionnaires/nope", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSessionLifecycle(t *testing.T) {
	router, _ := newRouter(t)

	code, session := do(t, router, http.MethodPost, "/api/v1/sessions",
		map[string]any{"questionnaireId": "phq9"}, "Accept-Language", "zh")
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "zh", session["language"])
	id := session["id"].(string)

	code, _ = do(t, router, http.MethodPost, "/api/v1/sessions/"+id+"/complete", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = do(t, router, http.MethodPost, "/api/v1/sessions/"+id+"/pause", nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = do(t, router, http.MethodPost, "/api/v1/sessions/"+id+"/answers",
		map[string]any{"questionId": "q1", "optionId": "nearly_every_day"})
	assert.Equal(t, http.StatusConflict, code)
	code, _ = do(t, router, http.MethodPost, "/api/v1/sessions/"+id+"/resume", nil)
	require.Equal(t, http.StatusOK, code)

	for i := 1; i <= 9; i++ {
		code, _ = do(t, router, http.MethodPost, "/api/v1/sessions/"+id+"/answers",
			map[string]any{"questionId": fmt.Sprintf("q%d", i), "optionId": "nearly_every_day"})
		require.Equal(t, http.StatusOK, code)
	}

	code, _ = do(t, router, http.MethodPost, "/api/v1/sessions/"+id+"/answers",
		map[string]any{"questionId": "q1", "optionId": "sometimes"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, result := do(t, router, http.MethodPost, "/api/v1/sessions/"+id+"/complete", nil)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, true, result["crisisFlag"])
	assert.NotEmpty(t, result["crisisMessage"])
	scores := result["scores"].([]any)
	require.Len(t, scores, 1)
	score := scores[0].(map[string]any)
	assert.InDelta(t, 27, score["raw"], 0)
	assert.Equal(t, "重度", score["label"])

	code, _ = do(t, router, http.MethodPost, "/api/v1/sessions/"+id+"/abandon", nil)
	assert.Equal(t, http.StatusConflict, code)

	resultID := result["id"].(string)
	code, got := do(t, router, http.MethodGet, "/api/v1/results/"+resultID+"?lang=en", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Severe", got["scores"].([]any)[0].(map[string]any)["label"])

	code, list := do(t, router, http.MethodGet, "/api/v1/results?questionnaireId=phq9", nil)
	require.Equal(t, http.StatusOK, code)
	assert.InDelta(t, 1, list["count"], 0)

	code, _ = do(t, router, http.MethodGet, "/api/v1/sessions/missing", nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = do(t, router, http.MethodGet, "/api/v1/results/missing", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSessions_BadRequests(t *testing.T) {
	router, _ := newRouter(t)

	code, _ := do(t, router, http.MethodPost, "/api/v1/sessions", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, router, http.MethodPost, "/api/v1/sessions", map[string]any{"questionnaireId": "unknown"})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestTranslations(t *testing.T) {
	router, _ := newRouter(t)

	code, body := do(t, router, http.MethodGet, "/api/v1/translations/zh/common", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["fallback"])
	nav := body["messages"].(map[string]any)["nav"].(map[string]any)
	assert.Equal(t, "首页", nav["home"])

	code, body = do(t, router, http.MethodGet, "/api/v1/translations/ja/assessment", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["fallback"])
	assert.Equal(t, "en", body["language"])

	code, _ = do(t, router, http.MethodGet, "/api/v1/translations/fr/common", nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = do(t, router, http.MethodGet, "/api/v1/translations/en/unknown", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = do(t, router, http.MethodGet, "/api/v1/translations", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "en", body["defaultLanguage"])
	cache := body["cache"].(map[string]any)
	assert.InDelta(t, 2, cache["size"], 0)

	code, _ = do(t, router, http.MethodDelete, "/api/v1/translations/cache", nil)
	assert.Equal(t, http.StatusNoContent, code)
}

func TestContent(t *testing.T) {
	router, dir := newRouter(t)

	code, body := do(t, router, http.MethodGet, "/api/v1/content/books", nil)
	require.Equal(t, http.StatusOK, code)
	assert.InDelta(t, 0, body["count"], 0)

	require.NoError(t, catalog.WriteJSON(filepath.Join(dir, "books.json"), []catalog.Book{
		{ID: "isbn:1", Title: "One", Source: "mock"},
		{ID: "isbn:2", Title: "Two", Source: "mock"},
	}))
	code, body = do(t, router, http.MethodGet, "/api/v1/content/books?limit=1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.InDelta(t, 1, body["count"], 0)

	code, _ = do(t, router, http.MethodGet, "/api/v1/content/podcasts", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, router, http.MethodGet, "/api/v1/content/quotes/daily", nil)
	assert.Equal(t, http.StatusNotFound, code)

	require.NoError(t, catalog.WriteJSON(filepath.Join(dir, "quotes.json"), []catalog.Quote{
		{ID: "a", Text: "Breathe.", Quality: 90},
		{ID: "b", Text: "Low quality", Quality: 10},
	}))
	code, body = do(t, router, http.MethodGet, "/api/v1/content/quotes/daily", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "a", body["quote"].(map[string]any)["id"])

	code, body = do(t, router, http.MethodGet, "/api/v1/content/quotes", nil)
	require.Equal(t, http.StatusOK, code)
	assert.InDelta(t, 2, body["count"], 0)
}

// recordingLogger keeps Info messages.
type recordingLogger struct {
	infralogger.Logger
	mu    sync.Mutex
	infos []string
}

func (l *recordingLogger) Info(msg string, _ ...infralogger.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}

func (l *recordingLogger) With(...infralogger.Field) infralogger.Logger { return l }

func TestSessions_StartLoggedOnce(t *testing.T) {
	log := &recordingLogger{Logger: infralogger.NewNop()}
	router, _ := newRouterWithLogger(t, log)

	code, _ := do(t, router, http.MethodPost, "/api/v1/sessions", map[string]any{"questionnaireId": "phq9"})
	require.Equal(t, http.StatusCreated, code)

	started := 0
	for _, msg := range log.infos {
		if strings.Contains(strings.ToLower(msg), "session started") {
			started++
		}
	}
	assert.Equal(t, 1, started, log.infos)
}

func TestNewServer_HealthAndMetrics(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "none.yml"))
	require.NoError(t, err)

	log := infralogger.NewNop()
	bank := questionnaire.NewBank(filepath.Join("..", "..", "content", "questionnaires"), log)
	require.NoError(t, bank.Reload())
	reg := i18n.NewRegistry()
	reg.RegisterFS(locales.FS, languages, locales.Namespaces)

	promReg := prometheus.NewRegistry()
	server := api.NewServer(api.Deps{
		Questionnaires: bank,
		Assessments: assessment.NewService(assessment.Config{
			Store:          storage.NewSecureStore(storage.NewMemoryBackend(), "sunrain", log),
			Questionnaires: bank,
			Logger:         log,
		}),
		Translations: i18n.NewManager(reg, i18n.NewCache(i18n.CacheOptions{TTL: time.Minute}, log), "en", log),
		Negotiator:   i18n.NewNegotiator(languages),
		ContentDir:   t.TempDir(),
		Registry:     promReg,
	}, cfg, "test", log)

	code, body := do(t, server.Router(), http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "website", body["service"])

	code, _ = do(t, server.Router(), http.MethodGet, "/api/v1/questionnaires", nil)
	require.Equal(t, http.StatusOK, code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `website_http_requests_total{method="GET",route="/api/v1/questionnaires",status="200"} 1`)
}
