package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type deadlineRequest struct {
	Name     string  `json:"name" binding:"required,min=1,max=20"`
	Deadline *string `json:"deadline" binding:"omitempty,deadline_date"`
	Progress *int    `json:"progress" binding:"omitempty,min=0,max=100"`
}

func validationRouter(t *testing.T) *gin.Engine {
	t.Helper()
	require.NoError(t, RegisterValidators())

	router := gin.New()
	router.Use(RequestID())
	router.POST("/projects", func(c *gin.Context) {
		var req deadlineRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestDeadlineDateValidation(t *testing.T) {
	router := validationRouter(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"calendar date", `{"name":"Well","deadline":"2026-06-30"}`, http.StatusNoContent},
		{"RFC 3339 timestamp", `{"name":"Well","deadline":"2026-06-30T00:00:00Z"}`, http.StatusNoContent},
		{"no deadline", `{"name":"Well"}`, http.StatusNoContent},
		{"day first", `{"name":"Well","deadline":"30/06/2026"}`, http.StatusBadRequest},
		{"impossible date", `{"name":"Well","deadline":"2026-02-30"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/projects", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestHandleValidationError_Details(t *testing.T) {
	router := validationRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/projects",
		strings.NewReader(`{"deadline":"tomorrow","progress":140}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	errInfo := decodeError(t, w)
	assert.Equal(t, "VALIDATION_ERROR", errInfo.Code)
	assert.NotEmpty(t, errInfo.RequestID)

	messages := map[string]string{}
	for _, d := range errInfo.Details {
		messages[d.Field] = d.Message
	}
	assert.Equal(t, "This field is required", messages["name"])
	assert.Equal(t, "Must be a date in YYYY-MM-DD format", messages["deadline"])
	assert.Equal(t, "Must be at most 100", messages["progress"])
}

func TestHandleValidationError_MalformedJSON(t *testing.T) {
	router := validationRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/projects", strings.NewReader(`{"name":`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	errInfo := decodeError(t, w)
	require.Len(t, errInfo.Details, 1)
	assert.Equal(t, "body", errInfo.Details[0].Field)
}
