package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"careerhub/internal/config"
	"careerhub/internal/listing"
	"careerhub/internal/models"
	"careerhub/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type testApp struct {
	app    *fiber.App
	db     *gorm.DB
	search *testutil.ListingStoreStub
}

func newTestApp(t *testing.T, withRedis bool) *testApp {
	t.Helper()
	return newTestAppWithFlags(t, withRedis, "ingest_consumer=off,keyword_feed=on")
}

func newTestAppWithFlags(t *testing.T, withRedis bool, flags string) *testApp {
	t.Helper()
	cfg := &config.Config{
		Env:                "test",
		JWTSecret:          testSecret,
		AllowedOrigins:     "http://localhost:3000",
		QnetImage:          "https://cdn.example.com/qnet.png",
		RandomPickTTLHours: 12,
		FeatureFlags:       flags,
	}

	var rdb *redis.Client
	if withRedis {
		mr := miniredis.RunT(t)
		rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
	}

	db := testutil.OpenSQLite(t)
	search := testutil.NewListingStoreStub()
	srv, err := NewServerWithDeps(cfg, db, rdb, search)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)
	return &testApp{app: app, db: db, search: search}
}

func bearer(t *testing.T, userID uint) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + s
}

func (a *testApp) do(t *testing.T, method, target, auth string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestHealthChecks(t *testing.T) {
	a := newTestApp(t, false)

	status, body := a.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "up", body["status"])

	status, body = a.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "healthy", checks["database"])
	assert.Equal(t, "unavailable", checks["redis"])
	assert.Equal(t, "unavailable", checks["search"])
}

func TestCommunityRoutes(t *testing.T) {
	a := newTestApp(t, false)
	require.NoError(t, a.db.Create(&models.User{ID: 1, Email: "a@example.com", Nickname: "alice"}).Error)
	auth := bearer(t, 1)

	t.Run("create requires auth", func(t *testing.T) {
		status, _ := a.do(t, http.MethodPost, "/api/community/create", "", map[string]string{"path": "free"})
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("create validates input", func(t *testing.T) {
		status, body := a.do(t, http.MethodPost, "/api/community/create", auth,
			map[string]string{"path": "free", "title": "", "content": "x"})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, models.CodeValidation, body["code"])
	})

	status, body := a.do(t, http.MethodPost, "/api/community/create", auth,
		map[string]string{"path": "free", "title": "Hello", "content": "First post"})
	require.Equal(t, http.StatusCreated, status)
	postID := uint(body["data"].(map[string]any)["id"].(float64))
	target := "/api/community/" + strconv.FormatUint(uint64(postID), 10)

	status, body = a.do(t, http.MethodGet, "/api/community?path=free", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)

	status, body = a.do(t, http.MethodGet, "/api/community?path=jobs", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["data"])

	for want := 1; want <= 2; want++ {
		status, body = a.do(t, http.MethodGet, target, auth, nil)
		require.Equal(t, http.StatusOK, status)
		assert.EqualValues(t, want, body["data"].(map[string]any)["view"])
	}

	status, body = a.do(t, http.MethodPost, target+"/like", auth, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["data"].(map[string]any)["liked"])

	status, body = a.do(t, http.MethodPost, target+"/like", auth, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["data"].(map[string]any)["liked"])

	status, body = a.do(t, http.MethodPost, target+"/comments", auth, map[string]string{"comment": "nice"})
	require.Equal(t, http.StatusCreated, status)
	comments := body["data"].([]any)
	require.Len(t, comments, 1)
	commentID := uint(comments[0].(map[string]any)["id"].(float64))

	status, body = a.do(t, http.MethodPost,
		"/api/community/comments/"+strconv.FormatUint(uint64(commentID), 10)+"/like", auth, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["data"].(map[string]any)["liked"])

	t.Run("invalid id", func(t *testing.T) {
		status, body := a.do(t, http.MethodGet, "/api/community/abc", auth, nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Invalid ID", body["error"])

		status, body = a.do(t, http.MethodPost, "/api/community/comments/0/like", auth, nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Invalid comment ID", body["error"])
	})

	t.Run("missing post", func(t *testing.T) {
		status, body := a.do(t, http.MethodGet, "/api/community/999", auth, nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, models.CodeNotFound, body["code"])
	})

	t.Run("unknown user cannot write", func(t *testing.T) {
		status, _ := a.do(t, http.MethodPost, target+"/like", bearer(t, 42), nil)
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func outsideRecord(id string, view int) listing.Record {
	return listing.Record{
		"id": id, "title": "Contest " + id, "enterprise": "acme", "mainImage": "img",
		"view": view, "scrap": 0, "Dday": "D-5", "field": "design", "detail": "long text",
		"internalScore": 7,
	}
}

func TestCrawlingRoutes(t *testing.T) {
	a := newTestApp(t, true)
	a.search.Add(listing.Outside, outsideRecord("1", 5), outsideRecord("2", 9))
	require.NoError(t, a.db.Create(&models.Language{
		Test: "toeic", Classify: "listening", ExamDate: time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC),
	}).Error)

	t.Run("list", func(t *testing.T) {
		status, body := a.do(t, http.MethodGet, "/api/crawling/outside?page=1&field=design", "", nil)
		require.Equal(t, http.StatusOK, status)
		items := body["data"].([]any)
		require.Len(t, items, 2)
		assert.NotContains(t, items[0], "internalScore")
		assert.NotContains(t, items[0], "detail")
	})

	t.Run("count", func(t *testing.T) {
		for _, v := range []string{"true", "yes", "on", "1"} {
			status, body := a.do(t, http.MethodGet, "/api/crawling/outside?count="+v, "", nil)
			require.Equal(t, http.StatusOK, status, v)
			assert.EqualValues(t, 2, body["data"], v)
		}

		status, body := a.do(t, http.MethodGet, "/api/crawling/outside?count=", "", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Len(t, body["data"], 2)
	})

	t.Run("relational category", func(t *testing.T) {
		status, body := a.do(t, http.MethodGet, "/api/crawling/language", "", nil)
		require.Equal(t, http.StatusOK, status)
		items := body["data"].([]any)
		require.Len(t, items, 1)
		assert.Equal(t, "TOEIC", items[0].(map[string]any)["title"])

		status, body = a.do(t, http.MethodGet, "/api/crawling/language?test=TOEIC", "", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Len(t, body["data"], 1)
	})

	t.Run("unknown category", func(t *testing.T) {
		status, body := a.do(t, http.MethodGet, "/api/crawling/movies", "", nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, models.CodeValidation, body["code"])
	})

	t.Run("detail counts views", func(t *testing.T) {
		status, body := a.do(t, http.MethodGet, "/api/crawling/outside/1", "", nil)
		require.Equal(t, http.StatusOK, status)
		detail := body["data"].(map[string]any)
		assert.EqualValues(t, 6, detail["view"])
		assert.Equal(t, "long text", detail["detail"])

		status, _ = a.do(t, http.MethodGet, "/api/crawling/outside/missing", "", nil)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("best", func(t *testing.T) {
		status, body := a.do(t, http.MethodGet, "/api/crawling/outside/best", "", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Len(t, body["data"], 2)
		assert.Equal(t, "view", a.search.LastQuery.Sort.Field)

		status, body = a.do(t, http.MethodGet, "/api/crawling/community/best", "", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Empty(t, body["data"])
	})

	t.Run("random", func(t *testing.T) {
		status, body := a.do(t, http.MethodGet, "/api/crawling/random", "", nil)
		require.Equal(t, http.StatusOK, status)
		picks := body["data"].(map[string]any)
		require.Contains(t, picks, "outside")
		assert.NotNil(t, picks["outside"])
		assert.Nil(t, picks["intern"])
		assert.Nil(t, picks["qnet"])

		samples := a.search.Samples
		status, _ = a.do(t, http.MethodGet, "/api/crawling/random", "", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, samples, a.search.Samples, "cached pick must not resample")
	})
}

func TestKeywordRoutes(t *testing.T) {
	a := newTestApp(t, false)
	require.NoError(t, a.db.Create(&models.User{ID: 7, Email: "k@example.com", Nickname: "kim"}).Error)
	a.search.Add(listing.Outside, outsideRecord("1", 1))
	auth := bearer(t, 7)

	status, _ := a.do(t, http.MethodGet, "/api/crawling/outside/mine", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	finds := a.search.Finds
	status, body := a.do(t, http.MethodGet, "/api/crawling/outside/mine", auth, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["data"])
	assert.Equal(t, finds, a.search.Finds, "no keywords means no query")

	status, body = a.do(t, http.MethodPut, "/api/users/me/keywords/outside", auth,
		map[string][]string{"keywords": {" design ", "design", "marketing"}})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"design", "marketing"}, body["data"])

	status, body = a.do(t, http.MethodGet, "/api/users/me/keywords/outside", auth, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"design", "marketing"}, body["data"])

	status, body = a.do(t, http.MethodGet, "/api/crawling/outside/mine", auth, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)
	assert.Equal(t, finds+1, a.search.Finds)

	status, _ = a.do(t, http.MethodPut, "/api/users/me/keywords/outside", auth,
		map[string][]string{"keywords": {"a,b"}})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestFeatureFlagRoute(t *testing.T) {
	a := newTestApp(t, false)

	status, _ := a.do(t, http.MethodGet, "/api/users/me/feature-flags", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := a.do(t, http.MethodGet, "/api/users/me/feature-flags", bearer(t, 3), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"ingest_consumer": false, "keyword_feed": true, "random_pick": true}, body["data"])
}

func TestSwitchedOffRoutes(t *testing.T) {
	a := newTestAppWithFlags(t, false, "ingest_consumer=off,keyword_feed=off,category.outside=off")
	require.NoError(t, a.db.Create(&models.User{ID: 4, Email: "s@example.com", Nickname: "sun"}).Error)
	a.search.Add(listing.Outside, outsideRecord("1", 5))
	a.search.Add(listing.Competition, outsideRecord("2", 3))

	for _, target := range []string{"/api/crawling/outside", "/api/crawling/outside/1", "/api/crawling/outside/best"} {
		status, body := a.do(t, http.MethodGet, target, "", nil)
		assert.Equal(t, http.StatusNotFound, status, target)
		assert.Equal(t, models.CodeNotFound, body["code"], target)
	}

	status, _ := a.do(t, http.MethodGet, "/api/crawling/competition", "", nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = a.do(t, http.MethodGet, "/api/crawling/competition/mine", bearer(t, 4), nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body := a.do(t, http.MethodGet, "/api/crawling/random", "", nil)
	require.Equal(t, http.StatusOK, status)
	picks := body["data"].(map[string]any)
	assert.NotContains(t, picks, "outside")
	assert.NotNil(t, picks["competition"])

	a = newTestAppWithFlags(t, false, "random_pick=off")
	status, _ = a.do(t, http.MethodGet, "/api/crawling/random", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}
