package handler

import (
	"net/http"

	"github.com/SergeiKhy/campaign-tracker/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type StatsHandler struct {
	service service.StatsService
	logger  *zap.Logger
}

func NewStatsHandler(service service.StatsService, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		service: service,
		logger:  logger,
	}
}

// Dashboard возвращает гистограмму по времени суток, рейтинг клиентов
// и сводные показатели
func (h *StatsHandler) Dashboard(c *gin.Context) {
	stats, err := h.service.DashboardStats(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to build dashboard stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to build statistics",
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// HealthCheck отвечает статусом сервиса
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"message": "Server is running",
	})
}
