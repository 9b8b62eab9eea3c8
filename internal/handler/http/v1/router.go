package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Маршруты для управления инцидентами, закрыты API-ключом
	incidents := api.Group("/incidents", APIKeyAuthMiddleware(h.cfg, h.logger))
	{
		incidents.POST("", h.createIncident)
		incidents.GET("", h.listIncidents)
		incidents.GET("/:id", h.getIncident)
		incidents.POST("/:id/acknowledge", h.acknowledgeIncident)
		incidents.POST("/:id/resolve", h.resolveIncident)
		incidents.POST("/:id/escalate", h.escalateIncident)
	}

	// Событийный канал: туристы и дашборды
	api.GET("/ws", h.serveWS)

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}
