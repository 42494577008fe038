package handler

import (
	"time"

	"github.com/SergeiKhy/campaign-tracker/internal/middleware"
	"github.com/SergeiKhy/campaign-tracker/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(
	campaignService service.CampaignService,
	trackingService service.TrackingService,
	statsService service.StatsService,
	rateLimiter *middleware.RateLimiter,
	apiKeyMiddleware gin.HandlerFunc,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.Default()

	// Middleware для логгирования: пишем после обработки, когда известны
	// статус и длительность
	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})

	// Rate limiting для всех запросов
	router.Use(rateLimiter.Middleware())

	// Инициализация обработчиков
	campaignHandler := NewCampaignHandler(campaignService, logger)
	trackHandler := NewTrackHandler(trackingService, logger)
	statsHandler := NewStatsHandler(statsService, logger)

	// API v.1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", HealthCheck)

		// Применяем API Key middleware только к защищенным эндпоинтам
		if apiKeyMiddleware != nil {
			v1.Use(apiKeyMiddleware)
		}

		v1.POST("/campaigns", campaignHandler.CreateCampaign)
		v1.GET("/campaigns", campaignHandler.ListCampaigns)
		v1.GET("/campaigns/:id", campaignHandler.GetCampaign)
		v1.DELETE("/campaigns/:id", campaignHandler.DeleteCampaign)
		v1.GET("/stats/dashboard", statsHandler.Dashboard)
	}

	// Трекинговая ссылка из писем - без API key проверки
	router.GET("/track/:campaignId/:email", trackHandler.Track)

	return router
}
