package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	projectapp "github.com/ngo-pm/backend/internal/application/project"
	"github.com/ngo-pm/backend/internal/domain/project"
	"github.com/ngo-pm/backend/internal/domain/shared"
	"github.com/ngo-pm/backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockProjectRepository implements project.Repository for testing
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) Create(ctx context.Context, p *project.Project) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProjectRepository) Save(ctx context.Context, p *project.Project) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *MockProjectRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*project.Project, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *MockProjectRepository) List(ctx context.Context, orgID uuid.UUID, filter project.ListFilter) ([]*project.Project, int64, error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*project.Project), args.Get(1).(int64), args.Error(2)
}

func (m *MockProjectRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return m.Called(ctx, orgID, id).Error(0)
}

var testNow = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func projectRouter(t *testing.T, repo *MockProjectRepository, orgID, userID uuid.UUID) *gin.Engine {
	t.Helper()
	require.NoError(t, middleware.RegisterValidators())

	svc := projectapp.NewProjectService(repo, zap.NewNop()).WithClock(func() time.Time { return testNow })
	h := NewProjectHandler(svc)

	router := gin.New()
	g := router.Group("/projects", withCaller(orgID, userID, "admin"))
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Delete)
	g.GET("/:id/deadline-status", h.DeadlineStatus)
	return router
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestProjectHandler_Create(t *testing.T) {
	orgID, userID := uuid.New(), uuid.New()
	repo := new(MockProjectRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *project.Project) bool {
		return p.OrganizationID == orgID &&
			p.CreatedBy != nil && *p.CreatedBy == userID &&
			p.Status == project.StatusActive &&
			p.Deadline != nil && p.Deadline.Format("2006-01-02") == "2026-03-04"
	})).Return(nil)

	w := httptest.NewRecorder()
	projectRouter(t, repo, orgID, userID).ServeHTTP(w, jsonRequest(http.MethodPost, "/projects",
		`{"name":"Borehole rehabilitation","budget":"12500.50","deadline":"2026-03-04"}`))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "Borehole rehabilitation", data["name"])
	assert.Equal(t, "active", data["status"])
	assert.Equal(t, "2026-03-04", data["deadline"])
	assert.EqualValues(t, 0, data["progress"])
	assert.Equal(t, false, data["overdue_notification_sent"])
	label := data["deadline_status"].(map[string]any)
	assert.Equal(t, "3 days left", label["label"])
	repo.AssertExpectations(t)
}

func TestProjectHandler_CreateValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"deadline":"2026-03-04"}`},
		{"day-first deadline", `{"name":"Clinic","deadline":"04/03/2026"}`},
		{"malformed json", `{"name":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockProjectRepository)
			w := httptest.NewRecorder()
			projectRouter(t, repo, uuid.New(), uuid.New()).ServeHTTP(w, jsonRequest(http.MethodPost, "/projects", tt.body))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "VALIDATION_ERROR", decodeResponse(t, w).Error.Code)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestProjectHandler_GetNotFound(t *testing.T) {
	orgID, id := uuid.New(), uuid.New()
	repo := new(MockProjectRepository)
	repo.On("FindByIDForOrg", mock.Anything, orgID, id).Return(nil, shared.ErrNotFound)

	w := httptest.NewRecorder()
	projectRouter(t, repo, orgID, uuid.New()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/projects/"+id.String(), nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decodeResponse(t, w).Error.Code)
}

func TestProjectHandler_List(t *testing.T) {
	orgID := uuid.New()
	p1, err := project.NewProject(orgID, uuid.New(), "Water", "", decimal.Zero, nil)
	require.NoError(t, err)
	p2, err := project.NewProject(orgID, uuid.New(), "Schools", "", decimal.Zero, nil)
	require.NoError(t, err)

	repo := new(MockProjectRepository)
	repo.On("List", mock.Anything, orgID, mock.MatchedBy(func(f project.ListFilter) bool {
		return f.Page == 2 && f.PageSize == 2 && f.Status != nil && *f.Status == project.StatusOverdue
	})).Return([]*project.Project{p1, p2}, int64(5), nil)

	w := httptest.NewRecorder()
	projectRouter(t, repo, orgID, uuid.New()).ServeHTTP(w,
		httptest.NewRequest(http.MethodGet, "/projects?status=overdue&page=2&page_size=2", nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeResponse(t, w)
	assert.Len(t, resp.Data.([]any), 2)
	require.NotNil(t, resp.Meta)
	assert.EqualValues(t, 5, resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
	repo.AssertExpectations(t)
}

func TestProjectHandler_DeadlineStatus(t *testing.T) {
	orgID := uuid.New()
	deadline := time.Date(2026, 2, 26, 0, 0, 0, 0, time.UTC)
	p, err := project.NewProject(orgID, uuid.New(), "Latrines", "", decimal.Zero, &deadline)
	require.NoError(t, err)

	repo := new(MockProjectRepository)
	repo.On("FindByIDForOrg", mock.Anything, orgID, p.ID).Return(p, nil)

	w := httptest.NewRecorder()
	projectRouter(t, repo, orgID, uuid.New()).ServeHTTP(w,
		httptest.NewRequest(http.MethodGet, "/projects/"+p.ID.String()+"/deadline-status", nil))

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "3 days overdue", data["label"])
	assert.Equal(t, "overdue", data["urgency"])
	assert.Equal(t, "2026-02-26", data["deadline"])
}

func TestProjectHandler_Delete(t *testing.T) {
	orgID, id := uuid.New(), uuid.New()
	repo := new(MockProjectRepository)
	repo.On("Delete", mock.Anything, orgID, id).Return(nil)

	w := httptest.NewRecorder()
	projectRouter(t, repo, orgID, uuid.New()).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/projects/"+id.String(), nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	repo.AssertExpectations(t)
}
