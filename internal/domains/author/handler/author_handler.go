package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"inventory-backend/internal/domains/author/model"
	"inventory-backend/internal/domains/author/service"
	"inventory-backend/internal/shared/response"
)

type AuthorHandler struct {
	service service.ServiceInterface
}

func NewAuthorHandler(svc service.ServiceInterface) *AuthorHandler {
	return &AuthorHandler{
		service: svc,
	}
}

// Create handles POST /api/v1/authors
func (h *AuthorHandler) Create(c *gin.Context) {
	var req model.CreateAuthorRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	created, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), "AUTHOR_CREATE_FAILED", err.Error())
		return
	}

	response.Success(c, http.StatusCreated, "Author created successfully", created.ToResponse())
}

// GetByID handles GET /api/v1/authors/:id
func (h *AuthorHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid UUID format")
		return
	}

	a, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), "AUTHOR_LOOKUP_FAILED", err.Error())
		return
	}

	response.Success(c, http.StatusOK, "Author retrieved successfully", a.ToResponse())
}

// List handles GET /api/v1/authors?limit=20&offset=0
func (h *AuthorHandler) List(c *gin.Context) {
	filter := model.AuthorFilter{
		Limit:  20,
		Offset: 0,
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			if l > 100 {
				l = 100
			}
			filter.Limit = l
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			filter.Offset = o
		}
	}

	authors, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.InternalServerError(c, err.Error())
		return
	}

	response.Success(c, http.StatusOK, "Authors retrieved successfully", gin.H{
		"authors": model.ToResponseList(authors),
		"total":   total,
		"limit":   filter.Limit,
		"offset":  filter.Offset,
	})
}

// Update handles PUT /api/v1/authors/:id
func (h *AuthorHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid UUID format")
		return
	}

	var req model.UpdateAuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), "AUTHOR_UPDATE_FAILED", err.Error())
		return
	}

	response.Success(c, http.StatusOK, "Author updated successfully", updated.ToResponse())
}

// Delete handles DELETE /api/v1/authors/:id
func (h *AuthorHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid UUID format")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.ErrorResponse(c, model.ToHTTPStatus(err), "AUTHOR_DELETE_FAILED", err.Error())
		return
	}

	response.Success(c, http.StatusOK, "Author deleted successfully", nil)
}
