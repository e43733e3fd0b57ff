package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/content-review-api/internal/models"
	appErrors "github.com/noah-isme/content-review-api/pkg/errors"
)

type stubValidator map[string]*models.JWTClaims

func (s stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Wrap(errors.New("bad signature"), appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append(mw, func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.PUT("/pages/:id/review-settings", handlers...)
	return r
}

func doRequest(r http.Handler, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPut, "/pages/p-1/review-settings", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAndRoles(t *testing.T) {
	validator := stubValidator{
		"admin":  {UserID: "a-1", Role: models.RoleAdmin},
		"author": {UserID: "u-1", Role: models.RoleAuthor},
	}
	r := newRouter(JWT(validator), RequireRoles(models.RoleAdmin))

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"invalid token", "Bearer nope", http.StatusUnauthorized},
		{"wrong role", "Bearer author", http.StatusForbidden},
		{"admin", "bearer admin", http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, doRequest(r, tc.header).Code)
		})
	}
}

func TestRequireRolesWithoutClaims(t *testing.T) {
	r := newRouter(RequireRoles(models.RoleAdmin))
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "").Code)
}

func TestAuditLogsSuccessfulChanges(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	validator := stubValidator{"admin": {UserID: "a-1", Role: models.RoleAdmin}}
	r := newRouter(JWT(validator), Audit(zap.New(core), "update", "page_review_settings"))

	require.Equal(t, http.StatusNoContent, doRequest(r, "Bearer admin").Code)
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "update", fields["action"])
	assert.Equal(t, "p-1", fields["resource_id"])
	assert.Equal(t, "a-1", fields["user_id"])

	doRequest(r, "Bearer nope")
	assert.Equal(t, 1, logs.Len())
}
