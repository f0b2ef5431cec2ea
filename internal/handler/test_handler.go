package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/questguide/questguide-backend/internal/model"
	"github.com/questguide/questguide-backend/internal/response"
	"github.com/questguide/questguide-backend/internal/validator"
)

// TestHandler handles test management, submission and result endpoints.
type TestHandler struct {
	testService TestService
}

// NewTestHandler creates a new TestHandler.
func NewTestHandler(testService TestService) *TestHandler {
	return &TestHandler{testService: testService}
}

// ListTests godoc
// GET /api/tests
// Students see active tests; admins see every test with its statistics.
func (h *TestHandler) ListTests(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	tests, err := h.testService.List(c.Request.Context(), user)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.SuccessList(c, http.StatusOK, gin.H{"tests": tests}, len(tests))
}

// CreateTest godoc
// POST /api/tests
func (h *TestHandler) CreateTest(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req model.CreateTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		bindError(c, fields)
		return
	}

	test, err := h.testService.Create(c.Request.Context(), user, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"test": test.Public()})
}

// GetTest godoc
// GET /api/tests/:id
// Returns the test without correct answers.
func (h *TestHandler) GetTest(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	test, err := h.testService.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"test": test.Public()})
}

// UpdateTest godoc
// PUT /api/tests/:id
// Partially updates a test. Only its creator or an admin may do so.
func (h *TestHandler) UpdateTest(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req model.UpdateTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		bindError(c, fields)
		return
	}

	test, err := h.testService.Update(c.Request.Context(), user, id, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"test": test.Public()})
}

// DeleteTest godoc
// DELETE /api/tests/:id
// Deletes a test and all of its results.
func (h *TestHandler) DeleteTest(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.testService.Delete(c.Request.Context(), user, id); err != nil {
		_ = c.Error(err)
		return
	}
	response.NoContent(c)
}

// TestStats godoc
// GET /api/tests/:id/stats
func (h *TestHandler) TestStats(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	stats, err := h.testService.Stats(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

// SubmitTest godoc
// POST /api/tests/:id/submit
// Grades the caller's answers and stores the attempt. The response is the only
// place correct answers are revealed.
func (h *TestHandler) SubmitTest(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req model.SubmitTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		bindError(c, fields)
		return
	}

	res, err := h.testService.Submit(c.Request.Context(), user, id, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, res)
}

// MyResults godoc
// GET /api/tests/results
func (h *TestHandler) MyResults(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	results, err := h.testService.Results(c.Request.Context(), user)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.SuccessList(c, http.StatusOK, gin.H{"results": results}, len(results))
}
