package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/ngo-pm/backend/internal/application/notification"
)

// DeliveryHandler exposes the notification outbox dead letter queue
type DeliveryHandler struct {
	BaseHandler
	deliveryService *notification.DeliveryService
}

// NewDeliveryHandler creates a new delivery handler
func NewDeliveryHandler(deliveryService *notification.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{deliveryService: deliveryService}
}

// ListDead godoc
// @Summary      List dead notification deliveries
// @Tags         notifications
// @Security     BearerAuth
// @Produce      json
// @Param        page      query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=notification.DeliveryListResult}
// @Router       /notifications/deliveries/dead [get]
func (h *DeliveryHandler) ListDead(c *gin.Context) {
	orgID, _, ok := h.caller(c)
	if !ok {
		return
	}
	var filter notification.DeliveryFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	result, err := h.deliveryService.ListDead(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Retry godoc
// @Summary      Requeue a dead delivery
// @Tags         notifications
// @Security     BearerAuth
// @Produce      json
// @Param        id path string true "Delivery ID" format(uuid)
// @Success      200 {object} dto.Response{data=notification.DeliveryDTO}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /notifications/deliveries/{id}/retry [post]
func (h *DeliveryHandler) Retry(c *gin.Context) {
	orgID, _, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	result, err := h.deliveryService.RetryDead(c.Request.Context(), orgID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Stats returns delivery counts per status
func (h *DeliveryHandler) Stats(c *gin.Context) {
	stats, err := h.deliveryService.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}
