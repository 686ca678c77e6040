package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/IL272/Wilddict/internal/config"
	"github.com/IL272/Wilddict/internal/database"
	"github.com/IL272/Wilddict/internal/handler"
	"github.com/IL272/Wilddict/internal/metrics"
	"github.com/IL272/Wilddict/internal/middleware"
	"github.com/IL272/Wilddict/internal/repository"
	"github.com/IL272/Wilddict/internal/service"
	"github.com/IL272/Wilddict/internal/utils"
)

type app struct {
	e        *echo.Echo
	accounts *repository.AccountRepo
	codec    *utils.TokenCodec
}

func newApp(t *testing.T) *app {
	t.Helper()
	ctx := context.Background()
	log := zap.NewNop()

	db, err := database.Open(database.Options{Driver: database.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(ctx, db, database.DriverSQLite, log))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	cache := middleware.NewScopedCache(config.CacheConfig{
		Enabled: true, Methods: []string{http.MethodGet}, TTL: time.Minute, Prefix: "t",
	}, rdb, log)

	m := metrics.NewAuth()
	accounts := repository.NewAccountRepo(db)
	codec := utils.NewTokenCodec("router-test-secret")
	registry := service.NewRegistry(accounts, utils.NewHasher(bcrypt.MinCost), codec, time.Hour, nil, m, log)
	resolver := service.NewResolver(codec, accounts, true, m, log)
	words := service.NewWordService(repository.NewWordRepo(db), nil, cache, log)

	e := echo.New()
	auth := middleware.Authenticate(resolver, time.Second, log)
	RegisterRoutes(e, echo.WrapHandler(m.Handler()))
	RegisterAuth(e, handler.NewAuthHandler(registry, time.Second, log), auth)
	RegisterWords(e, handler.NewWordHandler(words, time.Second, log), auth, cache.Middleware())
	return &app{e: e, accounts: accounts, codec: codec}
}

func (a *app) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r *strings.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		require.NoError(t, err)
		r = strings.NewReader(string(bs))
	} else {
		r = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

type tokenBody struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        struct {
		ID       uint64 `json:"id"`
		Email    string `json:"email"`
		Username string `json:"username"`
		IsActive bool   `json:"is_active"`
	} `json:"user"`
}

type wordBody struct {
	ID       uint64   `json:"id"`
	OwnerID  uint64   `json:"owner_id"`
	Word     string   `json:"word"`
	Language string   `json:"language"`
	Tags     []string `json:"tags"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (a *app) register(t *testing.T, email, username string) tokenBody {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/auth/register", "",
		map[string]string{"email": email, "username": username, "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[tokenBody](t, rec)
}

func TestPublicRoutes(t *testing.T) {
	a := newApp(t)
	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/", "", nil).Code)
	rec := a.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/metrics", "", nil).Code)
}

func TestRegisterLoginMe(t *testing.T) {
	a := newApp(t)
	reg := a.register(t, "alice@example.com", "alice")
	assert.Equal(t, "bearer", reg.TokenType)
	assert.NotEmpty(t, reg.AccessToken)
	assert.True(t, reg.User.IsActive)
	assert.NotContains(t, a.do(t, http.MethodGet, "/api/auth/me", reg.AccessToken, nil).Body.String(), "password")

	me := a.do(t, http.MethodGet, "/api/auth/me", reg.AccessToken, nil)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), `"email":"alice@example.com"`)

	login := a.do(t, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "alice@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, login.Code)
	assert.Equal(t, reg.User.ID, decode[tokenBody](t, login).User.ID)

	wrong := a.do(t, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "alice@example.com", "password": "wrong-one"})
	unknown := a.do(t, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "ghost@example.com", "password": "password123"})
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
}

func TestRegisterErrors(t *testing.T) {
	a := newApp(t)
	a.register(t, "alice@example.com", "alice")

	dup := a.do(t, http.MethodPost, "/api/auth/register", "",
		map[string]string{"email": "alice@example.com", "username": "other", "password": "password123"})
	assert.Equal(t, http.StatusBadRequest, dup.Code)
	assert.Contains(t, dup.Body.String(), "email already registered")

	dupName := a.do(t, http.MethodPost, "/api/auth/register", "",
		map[string]string{"email": "other@example.com", "username": "alice", "password": "password123"})
	assert.Equal(t, http.StatusBadRequest, dupName.Code)
	assert.Contains(t, dupName.Body.String(), "username already taken")

	short := a.do(t, http.MethodPost, "/api/auth/register", "",
		map[string]string{"email": "b@example.com", "username": "bob", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, short.Code)
}

func TestInactiveAccount(t *testing.T) {
	a := newApp(t)
	reg := a.register(t, "alice@example.com", "alice")
	require.NoError(t, a.accounts.SetActive(context.Background(), reg.User.ID, false))

	login := a.do(t, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "alice@example.com", "password": "password123"})
	assert.Equal(t, http.StatusBadRequest, login.Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/api/auth/me", reg.AccessToken, nil).Code)
}

func TestUnauthenticatedRequestsLookAlike(t *testing.T) {
	a := newApp(t)
	a.register(t, "alice@example.com", "alice")
	expired, err := a.codec.Issue("alice@example.com", -time.Second)
	require.NoError(t, err)
	ghost, err := a.codec.Issue("ghost@example.com", time.Hour)
	require.NoError(t, err)

	var bodies []string
	for _, tok := range []string{"", "garbage", expired.Token, ghost.Token} {
		for _, path := range []string{"/api/auth/me", "/api/words", "/api/stats"} {
			rec := a.do(t, http.MethodGet, path, tok, nil)
			require.Equal(t, http.StatusUnauthorized, rec.Code, path)
			bodies = append(bodies, rec.Body.String())
		}
	}
	for _, b := range bodies {
		assert.Equal(t, bodies[0], b)
	}
}

func TestWordsAreScopedToOwner(t *testing.T) {
	a := newApp(t)
	alice := a.register(t, "alice@example.com", "alice")
	bob := a.register(t, "bob@example.com", "bob")

	rec := a.do(t, http.MethodPost, "/api/words", alice.AccessToken, map[string]any{
		"word": "hola", "definition": "hello", "language": "es", "source_language": "en",
		"tags": []string{"greeting"},
		// an owner in the body is ignored
		"owner_id": bob.User.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	w := decode[wordBody](t, rec)
	assert.Equal(t, alice.User.ID, w.OwnerID)
	assert.Equal(t, []string{"greeting"}, w.Tags)
	path := "/api/words/" + strconv.FormatUint(w.ID, 10)

	// bob sees nothing of alice's
	assert.Equal(t, "[]", strings.TrimSpace(a.do(t, http.MethodGet, "/api/words", bob.AccessToken, nil).Body.String()))
	missing := a.do(t, http.MethodGet, "/api/words/999999", bob.AccessToken, nil)
	foreign := a.do(t, http.MethodGet, path, bob.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, foreign.Code)
	assert.Equal(t, missing.Code, foreign.Code)
	assert.Equal(t, missing.Body.String(), foreign.Body.String())
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodPut, path, bob.AccessToken,
		map[string]any{"word": "x", "language": "es"}).Code)
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodDelete, path, bob.AccessToken, nil).Code)

	// alice still owns an untouched word
	got := a.do(t, http.MethodGet, path, alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, "hola", decode[wordBody](t, got).Word)
}

func TestWordLifecycleAndStats(t *testing.T) {
	a := newApp(t)
	alice := a.register(t, "alice@example.com", "alice")
	tok := alice.AccessToken

	stats := a.do(t, http.MethodGet, "/api/stats", tok, nil)
	require.Equal(t, http.StatusOK, stats.Code)
	assert.JSONEq(t, `{"total_words":0,"languages":[],"language_count":0}`, stats.Body.String())

	var ids []uint64
	for _, in := range []map[string]any{
		{"word": "hola", "language": "es"},
		{"word": "Haus", "language": "de"},
		{"word": "adios", "language": "es"},
	} {
		rec := a.do(t, http.MethodPost, "/api/words", tok, in)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		ids = append(ids, decode[wordBody](t, rec).ID)
	}

	// the earlier cached stats were invalidated by the writes
	stats = a.do(t, http.MethodGet, "/api/stats", tok, nil)
	assert.JSONEq(t, `{"total_words":3,"languages":["de","es"],"language_count":2}`, stats.Body.String())

	es := decode[[]wordBody](t, a.do(t, http.MethodGet, "/api/words?language=es", tok, nil))
	assert.Len(t, es, 2)
	page := decode[[]wordBody](t, a.do(t, http.MethodGet, "/api/words?skip=1&limit=1", tok, nil))
	require.Len(t, page, 1)
	assert.Equal(t, "Haus", page[0].Word)
	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodGet, "/api/words?limit=abc", tok, nil).Code)

	path := "/api/words/" + strconv.FormatUint(ids[0], 10)
	up := a.do(t, http.MethodPut, path, tok, map[string]any{"word": "hola", "definition": "hi", "language": "es"})
	require.Equal(t, http.StatusOK, up.Code)

	assert.Equal(t, http.StatusNoContent, a.do(t, http.MethodDelete, path, tok, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodGet, path, tok, nil).Code)

	stats = a.do(t, http.MethodGet, "/api/stats", tok, nil)
	assert.JSONEq(t, `{"total_words":2,"languages":["de","es"],"language_count":2}`, stats.Body.String())

	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodPost, "/api/words", tok,
		map[string]any{"word": "", "language": "es"}).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodGet, "/api/words/abc", tok, nil).Code)

	// ids past the signed 64-bit range are rejected like any malformed id
	for _, huge := range []string{"18446744073709551615", "9223372036854775808"} {
		for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
			rec := a.do(t, method, "/api/words/"+huge, tok, map[string]any{"word": "x", "language": "es"})
			assert.Equal(t, http.StatusBadRequest, rec.Code, method+" "+huge)
			assert.JSONEq(t, `{"error":"invalid word id"}`, rec.Body.String())
		}
	}
	// the largest representable id is simply missing
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodGet, "/api/words/9223372036854775807", tok, nil).Code)
}
