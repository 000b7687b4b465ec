package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/logistik-admin-api/internal/models"
	"github.com/noah-isme/logistik-admin-api/internal/service"
	appErrors "github.com/noah-isme/logistik-admin-api/pkg/errors"
	"github.com/noah-isme/logistik-admin-api/pkg/middleware/requestid"
)

type validatorStub struct {
	claims *models.JWTClaims
	token  string
}

func (v *validatorStub) ValidateToken(token string) (*models.JWTClaims, error) {
	v.token = token
	if v.claims == nil {
		return nil, appErrors.Wrap(errors.New("expired"), appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}
	return v.claims, nil
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", handlers...)
	return r
}

func serve(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func ok(c *gin.Context) { c.Status(http.StatusOK) }

func TestJWT(t *testing.T) {
	valid := &validatorStub{claims: &models.JWTClaims{UserID: "u1", Role: models.RoleOwner}}

	tests := []struct {
		name      string
		validator *validatorStub
		header    string
		want      int
	}{
		{name: "missing header", validator: valid, want: http.StatusUnauthorized},
		{name: "wrong scheme", validator: valid, header: "Basic abc", want: http.StatusUnauthorized},
		{name: "empty token", validator: valid, header: "Bearer ", want: http.StatusUnauthorized},
		{name: "rejected token", validator: &validatorStub{}, header: "Bearer bad", want: http.StatusUnauthorized},
		{name: "valid token", validator: valid, header: "Bearer good", want: http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(newRouter(JWT(tc.validator), ok), tc.header)
			assert.Equal(t, tc.want, w.Code)
		})
	}
	assert.Equal(t, "good", valid.token)
}

func TestRequireRoles(t *testing.T) {
	withRole := func(role models.UserRole) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.Set(ContextUserKey, &models.JWTClaims{UserID: "u1", Role: role})
			c.Next()
		}
	}

	w := serve(newRouter(withRole(models.RoleWarehouseHead), RequireRoles(models.RoleSuperAdmin, models.RoleOwner), ok), "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(newRouter(withRole(models.RoleOwner), RequireRoles(models.RoleSuperAdmin, models.RoleOwner), ok), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(newRouter(RequireRoles(models.RoleOwner), ok), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestResponseMetaCarriesRequestIDAndCacheFlag(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(requestid.Middleware(), WithResponseMeta())
	r.GET("/protected", func(c *gin.Context) {
		SetCacheHit(c, true)
		c.JSON(http.StatusOK, gin.H{"meta": ExtractMeta(c)})
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body struct {
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "req-42", body.Meta["request_id"])
	assert.Equal(t, true, body.Meta["cache_hit"])
	assert.Contains(t, body.Meta, "processing_time_ms")
}

func TestExtractMetaEmpty(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, ExtractMeta(c))
}

func TestMetricsMiddlewareRecordsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics, "/metrics"))
	r.GET("/protected", ok)
	r.GET("/metrics", ok)

	for _, path := range []string{"/protected", "/metrics", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.EqualValues(t, 2, metrics.Snapshot().RequestsTotal)
}
