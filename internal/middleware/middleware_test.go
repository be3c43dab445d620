package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/exam-seating-api/internal/models"
	appErrors "github.com/noah-isme/exam-seating-api/pkg/errors"
	"github.com/noah-isme/exam-seating-api/pkg/logger"
)

type validatorStub struct{}

func (validatorStub) ValidateToken(token string) (*models.JWTClaims, error) {
	switch token {
	case "admin-token":
		return &models.JWTClaims{FacultyID: "F001", Role: models.RoleAdmin}, nil
	case "faculty-token":
		return &models.JWTClaims{FacultyID: "F002", Role: models.RoleFaculty}, nil
	default:
		return nil, appErrors.Wrap(errors.New("bad token"), appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}
}

type observerStub struct {
	method, path string
	status       int
}

func (o *observerStub) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	o.method, o.path, o.status = method, path, status
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newProtectedRouter(roles ...models.UserRole) *gin.Engine {
	r := gin.New()
	r.GET("/plan", JWT(validatorStub{}), RequireRoles(roles...), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"faculty": Claims(c).FacultyID, "actor": c.GetString(logger.ActorKey)})
	})
	return r
}

func perform(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAndRoles(t *testing.T) {
	r := newProtectedRouter(models.RoleAdmin)

	w := perform(r, http.MethodGet, "/plan", "Bearer admin-token")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"actor":"F001"`)

	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodGet, "/plan", "Bearer faculty-token").Code)
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/plan", "").Code)
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/plan", "Token admin-token").Code)
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/plan", "Bearer nope").Code)

	both := newProtectedRouter(models.RoleAdmin, models.RoleFaculty)
	assert.Equal(t, http.StatusOK, perform(both, http.MethodGet, "/plan", "bearer faculty-token").Code)
}

func TestRequireRolesWithoutJWT(t *testing.T) {
	r := gin.New()
	r.GET("/x", RequireRoles(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/x", "").Code)
}

func TestOptionalJWT(t *testing.T) {
	r := gin.New()
	r.GET("/x", OptionalJWT(validatorStub{}), func(c *gin.Context) {
		if claims := Claims(c); claims != nil {
			c.String(http.StatusOK, claims.FacultyID)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	assert.Equal(t, "F002", perform(r, http.MethodGet, "/x", "Bearer faculty-token").Body.String())
	assert.Equal(t, "anonymous", perform(r, http.MethodGet, "/x", "Bearer nope").Body.String())
	assert.Equal(t, "anonymous", perform(r, http.MethodGet, "/x", "").Body.String())
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	obs := &observerStub{}
	r := gin.New()
	r.Use(Metrics(obs))
	r.GET("/seats/:hallTicket", func(c *gin.Context) { c.Status(http.StatusOK) })

	perform(r, http.MethodGet, "/seats/CS01", "")
	assert.Equal(t, "/seats/:hallTicket", obs.path)
	assert.Equal(t, http.StatusOK, obs.status)

	perform(r, http.MethodGet, "/missing", "")
	assert.Equal(t, "unmatched", obs.path)
	assert.Equal(t, http.StatusNotFound, obs.status)
}

func TestAuditLogsSuccessfulActions(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.DELETE("/plan", JWT(validatorStub{}), Audit(zap.New(core), "plan.clear"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.POST("/plan", JWT(validatorStub{}), Audit(zap.New(core), "plan.allocate"), func(c *gin.Context) {
		c.Status(http.StatusConflict)
	})

	perform(r, http.MethodDelete, "/plan", "Bearer admin-token")
	perform(r, http.MethodPost, "/plan", "Bearer admin-token")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "plan.clear", fields["action"])
	assert.Equal(t, "F001", fields["faculty_id"])
}
