package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	go_redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"referral-giveaway-bot/internal/common/errors"
	rplatform "referral-giveaway-bot/internal/platform/redis"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestStatusCode(t *testing.T) {
	cases := map[errors.ErrorCode]int{
		errors.ErrCodeValidation:               http.StatusBadRequest,
		errors.ErrCodeInvalidReferral:          http.StatusBadRequest,
		errors.ErrCodeInvalidReward:            http.StatusBadRequest,
		errors.ErrCodeNotFound:                 http.StatusNotFound,
		errors.ErrCodeUnauthorized:             http.StatusUnauthorized,
		errors.ErrCodeForbidden:                http.StatusForbidden,
		errors.ErrCodePaused:                   http.StatusServiceUnavailable,
		errors.ErrCodeInsufficientParticipants: http.StatusConflict,
		errors.ErrCodeOracleUnavailable:        http.StatusBadGateway,
		errors.ErrCodeDatabaseError:            http.StatusInternalServerError,
		errors.ErrCodeInternal:                 http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, StatusCode(errors.New(code, "x")), string(code))
	}
}

func TestWriteError_HidesUntypedErrors(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/boom", func(c *gin.Context) {
		WriteError(c, assert.AnError)
	})
	r.GET("/paused", func(c *gin.Context) {
		WriteError(c, errors.NewPausedError())
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("X-Request-ID", "req-1")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"INTERNAL_ERROR"`)
	assert.Contains(t, w.Body.String(), `"request_id":"req-1"`)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/paused", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"PAUSED"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestRequireAdmin(t *testing.T) {
	admins := map[int64]struct{}{7: {}}
	build := func(id int64) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) {
			if id != 0 {
				c.Set(UserIdCtxParam, id)
			}
			c.Next()
		})
		r.GET("/admin", RequireAdmin(admins), func(c *gin.Context) { c.Status(http.StatusNoContent) })
		return r
	}

	for _, tc := range []struct {
		name string
		id   int64
		want int
	}{
		{"anonymous", 0, http.StatusUnauthorized},
		{"regular user", 8, http.StatusForbidden},
		{"admin", 7, http.StatusNoContent},
	} {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			build(tc.id).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestInitDataMiddleware_Rejections(t *testing.T) {
	r := gin.New()
	r.GET("/me", InitDataMiddleware("123:token", time.Hour), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("X-Telegram-Init-Data", "user=%7B%22id%22%3A1%7D&auth_date=1&hash=deadbeef")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	unconfigured := gin.New()
	unconfigured.GET("/me", InitDataMiddleware("", time.Hour), func(c *gin.Context) { c.Status(http.StatusOK) })
	w = httptest.NewRecorder()
	unconfigured.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "@alice", DisplayName(initdata.User{Username: "alice", FirstName: "Alice"}))
	assert.Equal(t, "Bob Stone", DisplayName(initdata.User{FirstName: "Bob", LastName: "Stone"}))
	assert.Equal(t, "Eve", DisplayName(initdata.User{FirstName: "Eve"}))
}

func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := rplatform.Wrap(go_redis.NewClient(&go_redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = rdb.Close() })

	calls := 0
	r := gin.New()
	r.GET("/leaderboard", RedisCache(rdb, time.Minute), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})
	r.GET("/missing", RedisCache(rdb, time.Minute), func(c *gin.Context) {
		calls++
		c.Status(http.StatusNotFound)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leaderboard", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"calls":1}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leaderboard", nil))
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"calls":1}`, w.Body.String())
	assert.Equal(t, 1, calls)

	// different query is a different key
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leaderboard?limit=5", nil))
	assert.JSONEq(t, `{"calls":2}`, w.Body.String())

	// non-2xx responses are not stored
	for i := 0; i < 2; i++ {
		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	}
	assert.Equal(t, 4, calls)

	mr.FastForward(2 * time.Minute)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leaderboard", nil))
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
}

func TestRedisCache_Disabled(t *testing.T) {
	calls := 0
	r := gin.New()
	r.GET("/x", RedisCache(nil, time.Minute), func(c *gin.Context) {
		calls++
		c.Status(http.StatusOK)
	})
	for i := 0; i < 2; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
	}
	assert.Equal(t, 2, calls)
}
