package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gorm-trashbin/internal/services"
	"gorm-trashbin/pkg/response"
)

// TrashEventHandler serves the trash audit trail.
type TrashEventHandler struct {
	service *services.TrashEventService
}

func NewTrashEventHandler(service *services.TrashEventService) *TrashEventHandler {
	return &TrashEventHandler{service: service}
}

// GET /api/events
func (h *TrashEventHandler) List(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	perPage := parseIntQuery(c, "per_page", 50)

	var filters services.TrashEventFilters
	filters.Action = c.Query("action")
	filters.Resource = c.Query("resource")
	filters.Trigger = c.Query("triggered_by")
	filters.ActorID = c.Query("actor_id")

	if s := c.Query("since"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			filters.Since = &t
		}
	}
	if u := c.Query("until"); u != "" {
		if t, err := time.Parse(time.RFC3339, u); err == nil {
			filters.Until = &t
		}
	}

	events, total, err := h.service.List(requestContext(c), services.TrashEventListOptions{
		Page:     page,
		PageSize: perPage,
		Filters:  filters,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, events, response.NewMeta(page, perPage, total))
}
