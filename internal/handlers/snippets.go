package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gorm-trashbin/internal/services"
	"gorm-trashbin/pkg/response"
)

// SnippetHandler exposes snippet CRUD plus trash operations.
type SnippetHandler struct {
	service *services.SnippetService
}

func NewSnippetHandler(service *services.SnippetService) *SnippetHandler {
	return &SnippetHandler{service: service}
}

type createSnippetRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=128"`
	Description string `json:"description" validate:"max=512"`
	Command     string `json:"command" validate:"required"`
	Language    string `json:"language" validate:"max=32"`
	OwnerUserID string `json:"owner_user_id"`
}

type updateSnippetRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Command     *string `json:"command"`
	Language    *string `json:"language"`
}

// GET /api/snippets
func (h *SnippetHandler) List(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	perPage := parseIntQuery(c, "per_page", 50)

	opts := services.ListSnippetsOptions{
		Page:     page,
		PageSize: perPage,
		Filters: services.SnippetFilters{
			Language:       c.Query("language"),
			OwnerUserID:    c.Query("owner_id"),
			Query:          c.Query("q"),
			IncludeDeleted: parseBoolQuery(c, "include_deleted"),
		},
	}

	snippets, total, err := h.service.List(requestContext(c), opts)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, snippets, response.NewMeta(page, perPage, total))
}

// GET /api/snippets/:id
func (h *SnippetHandler) Get(c *gin.Context) {
	snippet, err := h.service.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, snippet)
}

// POST /api/snippets
func (h *SnippetHandler) Create(c *gin.Context) {
	var body createSnippetRequest
	if !bindAndValidate(c, &body) {
		return
	}

	snippet, err := h.service.Create(requestContext(c), services.CreateSnippetInput{
		Name:        body.Name,
		Description: body.Description,
		Command:     body.Command,
		Language:    body.Language,
		OwnerUserID: body.OwnerUserID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, snippet)
}

// PATCH /api/snippets/:id
func (h *SnippetHandler) Update(c *gin.Context) {
	var body updateSnippetRequest
	if !bindAndValidate(c, &body) {
		return
	}

	snippet, err := h.service.Update(requestContext(c), c.Param("id"), services.UpdateSnippetInput{
		Name:        body.Name,
		Description: body.Description,
		Command:     body.Command,
		Language:    body.Language,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, snippet)
}

// DELETE /api/snippets/:id — moves the snippet to the trash unless ?permanent=true.
func (h *SnippetHandler) Delete(c *gin.Context) {
	permanent := parseBoolQuery(c, "permanent")

	if err := h.service.Delete(requestContext(c), c.Param("id"), permanent); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true, "permanent": permanent})
}

// POST /api/snippets/:id/restore
func (h *SnippetHandler) Restore(c *gin.Context) {
	snippet, err := h.service.Restore(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, snippet)
}

// DELETE /api/users/:id/snippets — bulk-trashes every snippet the user owns.
func (h *SnippetHandler) DeleteByOwner(c *gin.Context) {
	permanent := parseBoolQuery(c, "permanent")

	affected, err := h.service.DeleteByOwner(requestContext(c), c.Param("id"), permanent)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": affected, "permanent": permanent})
}
