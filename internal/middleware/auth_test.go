package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Umc8th-Snack/Back-end-sub000/internal/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestIssueAndValidateToken(t *testing.T) {
	token, expiresAt, err := IssueToken("secret", 7, "operator", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := ValidateToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, float64(7), claims["user_id"])
	assert.Equal(t, "operator", claims["username"])

	_, err = ValidateToken(token, "other-secret")
	assert.Error(t, err)

	expired, _, err := IssueToken("secret", 7, "operator", -time.Minute)
	require.NoError(t, err)
	_, err = ValidateToken(expired, "secret")
	assert.Error(t, err)
}

func TestJWTRequiredSetsOperator(t *testing.T) {
	r := gin.New()
	r.GET("/me", JWTRequired("secret", logger.NewNop()), func(c *gin.Context) {
		op, ok := OperatorFromContext(c)
		require.True(t, ok)
		c.String(http.StatusOK, op.Username)
	})

	token, _, err := IssueToken("secret", 1, "operator", time.Hour)
	require.NoError(t, err)

	cases := map[string]int{
		"":                   http.StatusUnauthorized,
		"Token " + token:     http.StatusUnauthorized,
		"Bearer ":            http.StatusUnauthorized,
		"Bearer not-a-token": http.StatusUnauthorized,
		"Bearer " + token:    http.StatusOK,
	}
	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, header)
		if want == http.StatusOK {
			assert.Equal(t, "operator", w.Body.String())
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
