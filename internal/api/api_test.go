package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Umc8th-Snack/Back-end-sub000/internal/api"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/category"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/config"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/db"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/db/dbtest"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/logger"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/pipeline"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeRunner struct {
	mu    sync.Mutex
	jobs  []pipeline.Job
	err   error
	count int
}

func (f *fakeRunner) Submit(kind pipeline.JobKind, links []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.count++
	id := fmt.Sprintf("run-%d", f.count)
	f.jobs = append(f.jobs, pipeline.Job{ID: id, Kind: kind, Links: links})
	return id, nil
}

type testServer struct {
	router http.Handler
	db     *gorm.DB
	runner *fakeRunner
}

var auth = config.AuthConfig{JWTSecret: "test-secret", TokenDuration: time.Hour}

func newServer(t *testing.T) *testServer {
	t.Helper()
	gdb := dbtest.New(t)
	require.NoError(t, db.SeedCategories(gdb, category.Names()))

	hash, err := bcrypt.GenerateFromPassword([]byte("operator-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = service.CreateUser(gdb, "operator", string(hash))
	require.NoError(t, err)

	runner := &fakeRunner{}
	return &testServer{
		router: api.NewRouter(api.Deps{DB: gdb, Runner: runner, Auth: auth, Log: logger.NewNop()}),
		db:     gdb,
		runner: runner,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": "operator", "password": "operator-pass"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp api.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestHealthIsPublic(t *testing.T) {
	s := newServer(t)
	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin(t *testing.T) {
	s := newServer(t)
	s.login(t)

	w := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": "operator", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": "nobody", "password": "whatever"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": "operator"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newServer(t)
	for _, path := range []string{"/crawled-articles", "/articles/1"} {
		assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, path, "", nil).Code, path)
		assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, path, "garbage", nil).Code, path)
	}
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/jobs/enrich", "", nil).Code)
}

func TestJobEndpoints(t *testing.T) {
	s := newServer(t)
	token := s.login(t)

	w := s.do(t, http.MethodPost, "/jobs/crawl", token, nil)
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = s.do(t, http.MethodPost, "/jobs/enrich", token, nil)
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = s.do(t, http.MethodPost, "/jobs/crawl/links", token, map[string]any{
		"items": []map[string]string{{"link": "https://n.news.example/article/028/1"}},
	})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	var resp api.JobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "run-3", resp.RunID)
	assert.Equal(t, 1, resp.Links)

	s.runner.mu.Lock()
	assert.Equal(t, []pipeline.Job{
		{ID: "run-1", Kind: pipeline.KindCollectCrawl},
		{ID: "run-2", Kind: pipeline.KindEnrich},
		{ID: "run-3", Kind: pipeline.KindCrawlLinks, Links: []string{"https://n.news.example/article/028/1"}},
	}, s.runner.jobs)
	s.runner.mu.Unlock()

	w = s.do(t, http.MethodPost, "/jobs/crawl/links", token, map[string]any{"items": []any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodPost, "/jobs/crawl/links", token, map[string]any{
		"items": []map[string]string{{"link": "not a url"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s.runner.mu.Lock()
	s.runner.err = pipeline.ErrQueueFull
	s.runner.mu.Unlock()
	w = s.do(t, http.MethodPost, "/jobs/crawl", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestListCrawledArticles(t *testing.T) {
	s := newServer(t)
	token := s.login(t)

	now := time.Now()
	for i := 0; i < 3; i++ {
		status := db.StatusFailed
		if i == 0 {
			status = db.StatusProcessed
		}
		require.NoError(t, service.CreateCrawledArticle(s.db, &db.CrawledArticle{
			ArticleURL: fmt.Sprintf("https://n.news.example/article/028/%d", i),
			Status:     status,
			CrawledAt:  now.Add(time.Duration(i) * time.Minute),
		}))
	}

	w := s.do(t, http.MethodGet, "/crawled-articles?page=1&size=2", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Data  []api.CrawledArticleResponse `json:"data"`
		Total int64                        `json:"total"`
		Pages int                          `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.Pages)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "https://n.news.example/article/028/2", page.Data[0].ArticleURL)

	w = s.do(t, http.MethodGet, "/crawled-articles?status=processed", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.Total)

	w = s.do(t, http.MethodGet, "/crawled-articles?status=bogus", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetArticle(t *testing.T) {
	s := newServer(t)
	token := s.login(t)

	article, err := service.GetOrCreateArticle(s.db, db.Article{ArticleURL: "https://n.news.example/article/028/9", Title: "제목"})
	require.NoError(t, err)
	require.NoError(t, service.UpdateArticleSummary(s.db, article.ID, "요약"))
	cat, err := category.Resolve(s.db, "경제")
	require.NoError(t, err)
	require.NoError(t, service.LinkArticleCategory(s.db, article.ID, cat.ID))
	_, err = service.CreateArticleQuiz(s.db, article.ID, []byte(`{"question":"q","options":[
		{"id":1,"text":"a"},{"id":2,"text":"b"},{"id":3,"text":"c"},{"id":4,"text":"d"}],
		"answer":{"id":3,"text":"c"},"explanation":"e"}`))
	require.NoError(t, err)
	term, err := service.GetOrCreateTerm(s.db, "금리", "돈을 빌린 대가")
	require.NoError(t, err)
	_, err = service.LinkArticleTerm(s.db, article.ID, term.ID)
	require.NoError(t, err)

	w := s.do(t, http.MethodGet, fmt.Sprintf("/articles/%d", article.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp api.ArticleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Summary)
	assert.Equal(t, "요약", *resp.Summary)
	assert.Equal(t, []string{"경제"}, resp.Categories)
	require.Len(t, resp.Quizzes, 1)
	assert.Equal(t, db.OptionID(3), resp.Quizzes[0].Answer.ID)
	assert.Len(t, resp.Quizzes[0].Options, 4)
	require.Len(t, resp.Terms, 1)
	assert.Equal(t, "금리", resp.Terms[0].Word)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/articles/9999", token, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/articles/abc", token, nil).Code)
}
