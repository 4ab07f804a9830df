package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func init() { gin.SetMode(gin.TestMode) }

func echoViewer(c *gin.Context) { c.String(http.StatusOK, ViewerID(c)) }

func do(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthRequired(t *testing.T) {
	r := gin.New()
	r.GET("/", AuthRequired(secret), echoViewer)

	token, err := IssueToken(secret, "u1", time.Hour)
	require.NoError(t, err)
	rec := do(r, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(r, "").Code)

	forged, err := IssueToken("other-secret", "u1", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(r, forged).Code)

	expired, err := IssueToken(secret, "u1", -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(r, expired).Code)
}

func TestAuthOptional(t *testing.T) {
	r := gin.New()
	r.GET("/", AuthOptional(secret), echoViewer)

	rec := do(r, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	token, err := IssueToken(secret, "u2", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "u2", do(r, token).Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(r, "garbage").Code)
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.GET("/", NewRateLimiter(0.001, 2).Handler(), echoViewer)

	assert.Equal(t, http.StatusOK, do(r, "").Code)
	assert.Equal(t, http.StatusOK, do(r, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, "").Code)
}
