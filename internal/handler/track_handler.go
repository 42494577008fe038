package handler

import (
	"errors"
	"net/http"

	"github.com/SergeiKhy/campaign-tracker/internal/models"
	"github.com/SergeiKhy/campaign-tracker/internal/repository"
	"github.com/SergeiKhy/campaign-tracker/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TrackHandler struct {
	service service.TrackingService
	logger  *zap.Logger
}

func NewTrackHandler(service service.TrackingService, logger *zap.Logger) *TrackHandler {
	return &TrackHandler{
		service: service,
		logger:  logger,
	}
}

// Track обрабатывает визит по трекинговой ссылке: учитывает клик и либо
// уводит посетителя по redirect, либо показывает страницу-раскрытие.
// Ответ уходит только после того, как записи выполнены.
func (h *TrackHandler) Track(c *gin.Context) {
	input := &models.ClickInput{
		CampaignID:     c.Param("campaignId"),
		Email:          c.Param("email"),
		RemoteAddr:     c.Request.RemoteAddr,
		UserAgent:      c.GetHeader("User-Agent"),
		Referrer:       c.GetHeader("Referer"),
		AcceptLanguage: c.GetHeader("Accept-Language"),
		ForwardedFor:   c.GetHeader("X-Forwarded-For"),
	}

	_, err := h.service.RecordClick(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, repository.ErrCampaignNotFound) {
			h.logger.Warn("Click for unknown campaign",
				zap.String("campaign_id", input.CampaignID),
			)
			c.String(http.StatusNotFound, "Campaign not found")
			return
		}

		h.logger.Error("Failed to record click", zap.Error(err))
		c.String(http.StatusInternalServerError, "System error")
		return
	}

	if redirect := c.Query("redirect"); redirect != "" {
		c.Redirect(http.StatusFound, redirect)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(disclosurePage))
}
