package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ngo-pm/backend/internal/application/deadline"
	"github.com/ngo-pm/backend/internal/domain/identity"
	"github.com/ngo-pm/backend/internal/infrastructure/auth"
	"github.com/ngo-pm/backend/internal/infrastructure/config"
	"github.com/ngo-pm/backend/internal/infrastructure/scheduler"
	"github.com/ngo-pm/backend/internal/interfaces/http/handler"
	"github.com/ngo-pm/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	var order []string
	r.Use(func(c *gin.Context) { order = append(order, "api") })

	group := NewDomainGroup("/test").Use(func(c *gin.Context) { order = append(order, "group") })
	group.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	group.Group("/nested").DELETE("/:id", func(c *gin.Context) { c.String(http.StatusOK, c.Param("id")) })
	r.Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/test/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.Equal(t, []string{"api", "group"}, order)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v2/test/nested/42", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "42", w.Body.String())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/test/ping", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDomainGroupMethods(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("/items")
	echo := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method) }
	g.GET("", echo).POST("", echo).PUT("/:id", echo).PATCH("/:id", echo).DELETE("/:id", echo)
	g.RegisterRoutes(engine.Group("/api"))

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/items"},
		{http.MethodPost, "/api/items"},
		{http.MethodPut, "/api/items/1"},
		{http.MethodPatch, "/api/items/1"},
		{http.MethodDelete, "/api/items/1"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.method, w.Body.String())
		})
	}
}

type idleScheduler struct{}

func (idleScheduler) TriggerImmediateSweep(context.Context) (*deadline.SweepResult, error) {
	return &deadline.SweepResult{}, nil
}

func (idleScheduler) Status() scheduler.Status {
	return scheduler.Status{Running: true}
}

func TestRegisterAPI_Guards(t *testing.T) {
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "router-test-secret-at-least-32-chars",
		RefreshSecret:          "router-test-refresh-secret-32-chars!",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "ngo-pm-test",
		MaxRefreshCount:        1,
	})
	token := func(role identity.Role) string {
		pair, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{
			OrgID: uuid.New(), UserID: uuid.New(), Email: "officer@example.org", Role: string(role),
		})
		require.NoError(t, err)
		return pair.AccessToken
	}

	engine := gin.New()
	r := NewRouter(engine)
	RegisterAPI(r, Handlers{
		Auth:         handler.NewAuthHandler(nil),
		Organization: handler.NewOrganizationHandler(nil),
		Member:       handler.NewMemberHandler(nil),
		Project:      handler.NewProjectHandler(nil),
		Report:       handler.NewReportHandler(nil),
		Deadline:     handler.NewDeadlineHandler(idleScheduler{}),
	}, Guards{
		Auth: middleware.JWTAuth(middleware.JWTMiddlewareConfig{Validator: jwtService}),
	})
	r.Setup()

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{"anonymous project list", http.MethodGet, "/api/v1/projects", "", http.StatusUnauthorized},
		{"officer creates project", http.MethodPost, "/api/v1/projects", token(identity.RoleOfficer), http.StatusForbidden},
		{"officer approves report", http.MethodPost, "/api/v1/reports/" + uuid.NewString() + "/approve", token(identity.RoleOfficer), http.StatusForbidden},
		{"officer triggers sweep", http.MethodPost, "/api/v1/deadlines/sweep", token(identity.RoleOfficer), http.StatusForbidden},
		{"officer reads scheduler status", http.MethodGet, "/api/v1/deadlines/status", token(identity.RoleOfficer), http.StatusOK},
		{"admin triggers sweep", http.MethodPost, "/api/v1/deadlines/sweep", token(identity.RoleAdmin), http.StatusOK},
		{"no outbox routes inline", http.MethodGet, "/api/v1/notifications/deliveries/dead", token(identity.RoleAdmin), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+tt.token)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}
