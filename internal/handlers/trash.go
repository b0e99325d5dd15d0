package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gorm-trashbin/internal/services"
	"gorm-trashbin/pkg/response"
)

// TrashHandler exposes the administrative trash endpoints that work across
// every registered resource.
type TrashHandler struct {
	service *services.TrashService
}

func NewTrashHandler(service *services.TrashService) *TrashHandler {
	return &TrashHandler{service: service}
}

type trashSelectionRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

// GET /api/trash
func (h *TrashHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// GET /api/trash/:resource
func (h *TrashHandler) List(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	perPage := parseIntQuery(c, "per_page", 50)

	records, total, err := h.service.ListTrashed(requestContext(c), c.Param("resource"), page, perPage)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, records, response.NewMeta(page, perPage, total))
}

// POST /api/trash/:resource/restore
func (h *TrashHandler) Restore(c *gin.Context) {
	var body trashSelectionRequest
	if !bindAndValidate(c, &body) {
		return
	}

	restored, err := h.service.Restore(requestContext(c), c.Param("resource"), body.IDs)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"restored": restored})
}

// POST /api/trash/:resource/purge
func (h *TrashHandler) Purge(c *gin.Context) {
	var body trashSelectionRequest
	if !bindAndValidate(c, &body) {
		return
	}

	purged, err := h.service.Purge(requestContext(c), c.Param("resource"), body.IDs)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"purged": purged})
}
