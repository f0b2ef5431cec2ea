package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/questguide/questguide-backend/internal/model"
	"github.com/questguide/questguide-backend/internal/response"
	"github.com/questguide/questguide-backend/internal/service"
	"github.com/questguide/questguide-backend/internal/validator"
)

// ResourceHandler handles learning resource endpoints.
type ResourceHandler struct {
	resourceService ResourceService
}

// NewResourceHandler creates a new ResourceHandler.
func NewResourceHandler(resourceService ResourceService) *ResourceHandler {
	return &ResourceHandler{resourceService: resourceService}
}

// ListResources godoc
// GET /api/resources?category=&type=&tag=
func (h *ResourceHandler) ListResources(c *gin.Context) {
	var filter model.ResourceFilter
	if fields := validator.BindQuery(c, &filter); fields != nil {
		bindError(c, fields)
		return
	}

	resources, err := h.resourceService.List(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.SuccessList(c, http.StatusOK, gin.H{"resources": resources}, len(resources))
}

// CreateResource godoc
// POST /api/resources
func (h *ResourceHandler) CreateResource(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req model.CreateResourceRequest
	if fields := validator.Bind(c, &req); fields != nil {
		bindError(c, fields)
		return
	}

	res, err := h.resourceService.Create(c.Request.Context(), user, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"resource": res})
}

// GetResource godoc
// GET /api/resources/:id
// Returns the resource and records the view.
func (h *ResourceHandler) GetResource(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	res, err := h.resourceService.View(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"resource": res})
}

// UpdateResource godoc
// PATCH /api/resources/:id
func (h *ResourceHandler) UpdateResource(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req model.UpdateResourceRequest
	if fields := validator.Bind(c, &req); fields != nil {
		bindError(c, fields)
		return
	}

	res, err := h.resourceService.Update(c.Request.Context(), user, id, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"resource": res})
}

// DeleteResource godoc
// DELETE /api/resources/:id
func (h *ResourceHandler) DeleteResource(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.resourceService.Delete(c.Request.Context(), user, id); err != nil {
		_ = c.Error(err)
		return
	}
	response.NoContent(c)
}

// SimilarResources godoc
// GET /api/resources/:id/similar?limit=5
func (h *ResourceHandler) SimilarResources(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultSimilarLimit)))
	if err != nil || limit < 1 {
		bindError(c, map[string]string{"limit": "limit must be a positive integer"})
		return
	}

	similar, err := h.resourceService.Similar(c.Request.Context(), id, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.SuccessList(c, http.StatusOK, gin.H{"resources": similar}, len(similar))
}
