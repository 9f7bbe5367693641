package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classflow/classflow-api/internal/dto"
	"github.com/classflow/classflow-api/internal/service"
	appErrors "github.com/classflow/classflow-api/pkg/errors"
	"github.com/classflow/classflow-api/pkg/response"
)

type assignmentServiceMock struct {
	autoAssignResp *service.AutoAssignResult
	autoAssignErr  error
	assignErr      error
	timelineResp   *dto.ClassTimeline
	timelineErr    error

	autoAssignClassID string
	assignLessonID    string
	assignSessionID   string
}

func (m *assignmentServiceMock) AutoAssignClass(_ context.Context, classID string) (*service.AutoAssignResult, error) {
	m.autoAssignClassID = classID
	return m.autoAssignResp, m.autoAssignErr
}

func (m *assignmentServiceMock) AssignLessonToSession(_ context.Context, lessonID, sessionID string) error {
	m.assignLessonID = lessonID
	m.assignSessionID = sessionID
	return m.assignErr
}

func (m *assignmentServiceMock) ClassTimeline(_ context.Context, classID string) (*dto.ClassTimeline, error) {
	return m.timelineResp, m.timelineErr
}

func TestAssignmentHandlerAutoAssign(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &assignmentServiceMock{autoAssignResp: &service.AutoAssignResult{Assigned: 3}}
	handler := NewAssignmentHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/classes/class-1/auto-assign", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "class-1"}}

	handler.AutoAssign(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "class-1", mockSvc.autoAssignClassID)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	payload := envelope.Data.(map[string]interface{})
	assert.Equal(t, float64(3), payload["lessons_assigned"])
}

func TestAssignmentHandlerAutoAssignNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &assignmentServiceMock{autoAssignErr: appErrors.ErrNotFound}
	handler := NewAssignmentHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/classes/missing/auto-assign", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.AutoAssign(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAssignmentHandlerAssignLesson(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &assignmentServiceMock{}
	handler := NewAssignmentHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/lessons/lesson-1/session", bytes.NewBufferString(`{"session_id":"session-9"}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "lesson-1"}}

	handler.AssignLesson(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "lesson-1", mockSvc.assignLessonID)
	assert.Equal(t, "session-9", mockSvc.assignSessionID)
}

func TestAssignmentHandlerAssignLessonInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAssignmentHandler(&assignmentServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/lessons/lesson-1/session", bytes.NewBufferString(`{"session_id":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "lesson-1"}}

	handler.AssignLesson(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssignmentHandlerTimeline(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &assignmentServiceMock{timelineResp: &dto.ClassTimeline{
		ClassID:     "class-1",
		GeneratedAt: time.Now().UTC(),
	}}
	handler := NewAssignmentHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/classes/class-1/timeline", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "class-1"}}

	handler.Timeline(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	payload := envelope.Data.(map[string]interface{})
	assert.Equal(t, "class-1", payload["class_id"])
}
