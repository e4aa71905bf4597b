package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, userID string, role string, expires time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"email":   "ana@example.com",
		"role":    role,
		"exp":     expires.Unix(),
		"iat":     time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newAuthRouter(roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := []gin.HandlerFunc{Auth(testSecret)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c).String(), "role": GetUserRole(c)})
	})
	r.GET("/me", handlers...)
	return r
}

func TestAuth(t *testing.T) {
	userID := uuid.New()
	valid := signToken(t, testSecret, userID.String(), models.RoleAdmin, time.Now().Add(time.Hour))

	tests := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{name: "bearer token", header: "Bearer " + valid, status: http.StatusOK},
		{name: "query token", query: "?token=" + valid, status: http.StatusOK},
		{name: "missing header", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + valid, status: http.StatusUnauthorized},
		{name: "bad signature", header: "Bearer " + signToken(t, "other", userID.String(), models.RoleAdmin, time.Now().Add(time.Hour)), status: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + signToken(t, testSecret, userID.String(), models.RoleAdmin, time.Now().Add(-time.Hour)), status: http.StatusUnauthorized},
		{name: "non uuid subject", header: "Bearer " + signToken(t, testSecret, "42", models.RoleAdmin, time.Now().Add(time.Hour)), status: http.StatusUnauthorized},
	}

	router := newAuthRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Contains(t, w.Body.String(), userID.String())
			} else {
				assert.Contains(t, w.Body.String(), `"success":false`)
			}
		})
	}
}

func TestAuth_ExpiredMessage(t *testing.T) {
	router := newAuthRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, uuid.NewString(), models.RoleVoter, time.Now().Add(-time.Minute)))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "el token ha expirado")
}

func TestRequireRole(t *testing.T) {
	router := newAuthRouter(models.RoleAdmin, models.RoleDelegate)

	for role, status := range map[string]int{
		models.RoleAdmin:    http.StatusOK,
		models.RoleDelegate: http.StatusOK,
		models.RoleVoter:    http.StatusForbidden,
	} {
		t.Run(role, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, uuid.NewString(), role, time.Now().Add(time.Hour)))
			router.ServeHTTP(w, req)
			assert.Equal(t, status, w.Code)
		})
	}
}

func TestGetUserID_Unauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, uuid.Nil, GetUserID(c))
	assert.Equal(t, "", GetUserRole(c))
	assert.False(t, IsAdmin(c))
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/vote", RateLimit(2, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	send := func(remote string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/vote", nil)
		req.RemoteAddr = remote
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusCreated, send("10.0.0.1:1111").Code)
	assert.Equal(t, http.StatusCreated, send("10.0.0.1:2222").Code)
	limited := send("10.0.0.1:3333")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Contains(t, limited.Body.String(), `"success":false`)

	assert.Equal(t, http.StatusCreated, send("10.0.0.2:1111").Code)
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"https://panel.example.com"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://panel.example.com")
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://panel.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://panel.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_WildcardDropsCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, origins := range [][]string{{"*"}, {"*", "https://panel.example.com"}, nil, {"panel.example.com"}} {
		r := gin.New()
		r.Use(CORS(origins))
		r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://anywhere.example.org")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	}
}

func TestSecureHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SecureHeaders(false))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}
