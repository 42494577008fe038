package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/SergeiKhy/campaign-tracker/internal/models"
	"github.com/SergeiKhy/campaign-tracker/internal/repository"
	"github.com/SergeiKhy/campaign-tracker/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CampaignHandler struct {
	service service.CampaignService
	logger  *zap.Logger
}

func NewCampaignHandler(service service.CampaignService, logger *zap.Logger) *CampaignHandler {
	return &CampaignHandler{
		service: service,
		logger:  logger,
	}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type CreateCampaignResponse struct {
	Message      string             `json:"message"`
	Campaign     *models.Campaign   `json:"campaign"`
	EmailResults *models.SendReport `json:"emailResults"`
}

type DeleteCampaignResponse struct {
	Message  string           `json:"message"`
	Campaign *models.Campaign `json:"campaign"`
}

// CreateCampaign создаёт кампанию и запускает рассылку по всем получателям
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var input models.CreateCampaignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("Invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	campaign, report, err := h.service.CreateCampaign(c.Request.Context(), &input)
	if err != nil {
		h.logger.Error("Failed to create campaign", zap.Error(err))

		switch {
		case errors.Is(err, service.ErrNoRecipients):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "no_recipients",
				Message: "Recipient list is empty",
			})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to create campaign",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, CreateCampaignResponse{
		Message:      fmt.Sprintf("Sent %d/%d emails", report.Success, report.Total),
		Campaign:     campaign,
		EmailResults: report,
	})
}

// ListCampaigns возвращает все кампании, новые первыми
func (h *CampaignHandler) ListCampaigns(c *gin.Context) {
	campaigns, err := h.service.ListCampaigns(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list campaigns", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to list campaigns",
		})
		return
	}

	c.JSON(http.StatusOK, campaigns)
}

// GetCampaign возвращает одну кампанию по идентификатору
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	id := c.Param("id")

	campaign, err := h.service.GetCampaign(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrCampaignNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Campaign not found",
			})
			return
		}

		h.logger.Error("Failed to get campaign", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to get campaign",
		})
		return
	}

	c.JSON(http.StatusOK, campaign)
}

// DeleteCampaign удаляет кампанию и каскадно все её события кликов
func (h *CampaignHandler) DeleteCampaign(c *gin.Context) {
	id := c.Param("id")

	campaign, err := h.service.DeleteCampaign(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrCampaignNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Campaign not found",
			})
			return
		}

		// Частичный сбой каскада не замалчивается: остаться могут осиротевшие события
		h.logger.Error("Failed to delete campaign", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to delete campaign",
		})
		return
	}

	c.JSON(http.StatusOK, DeleteCampaignResponse{
		Message:  "Campaign deleted successfully",
		Campaign: campaign,
	})
}
