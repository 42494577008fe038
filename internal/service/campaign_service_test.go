package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/SergeiKhy/campaign-tracker/internal/models"
	"github.com/SergeiKhy/campaign-tracker/internal/repository"
	"github.com/SergeiKhy/campaign-tracker/internal/service"
	"github.com/SergeiKhy/campaign-tracker/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// campaignTestEnv тестовое окружение сервиса кампаний
type campaignTestEnv struct {
	service      service.CampaignService
	campaignRepo *mocks.MockCampaignRepository
	clickRepo    *mocks.MockClickRepository
	cacheRepo    *mocks.MockCacheRepository
	mailer       *mocks.MockMailer
}

// setupCampaignService создаёт тестовое окружение с моковыми репозиториями
func setupCampaignService() *campaignTestEnv {
	campaignRepo := mocks.NewMockCampaignRepository()
	clickRepo := mocks.NewMockClickRepository()
	cacheRepo := mocks.NewMockCacheRepository()
	campaignRepo.ClickRepo = clickRepo
	clickRepo.Campaigns = campaignRepo

	mockMailer := mocks.NewMockMailer()
	logger := zap.NewNop()
	pool := service.NewSenderPool(mockMailer, logger)

	campaignService := service.NewCampaignService(
		campaignRepo,
		cacheRepo,
		pool,
		"http://tracker.local",
		"https://example.com/landing",
		logger,
	)

	return &campaignTestEnv{
		service:      campaignService,
		campaignRepo: campaignRepo,
		clickRepo:    clickRepo,
		cacheRepo:    cacheRepo,
		mailer:       mockMailer,
	}
}

// TestCampaignService_CreateCampaign_Success проверяет создание кампании и рассылку
func TestCampaignService_CreateCampaign_Success(t *testing.T) {
	env := setupCampaignService()

	input := &models.CreateCampaignInput{
		Name:       "Awareness Q3",
		Subject:    "Free training materials",
		Message:    "<p>Download the handbook</p>",
		Recipients: []string{"a@x.com", "b@x.com"},
	}

	ctx := context.Background()
	campaign, report, err := env.service.CreateCampaign(ctx, input)

	require.NoError(t, err)
	assert.NotEmpty(t, campaign.ID)
	assert.Equal(t, input.Recipients, campaign.Recipients)
	assert.False(t, campaign.SentAt.IsZero())

	require.NotNil(t, report)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 2, report.Success)
	assert.Equal(t, 0, report.Failed)
	assert.Len(t, report.Details, 2)
	for _, detail := range report.Details {
		assert.Equal(t, "success", detail.Status)
		assert.NotEmpty(t, detail.MessageID)
	}

	// Кампания сохранена и закэширована
	stored, err := env.campaignRepo.GetByID(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, campaign.ID, stored.ID)

	cached, err := env.cacheRepo.Get(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, campaign.ID, cached.ID)
}

// TestCampaignService_CreateCampaign_TrackedLinks проверяет трекинговые ссылки в письмах
func TestCampaignService_CreateCampaign_TrackedLinks(t *testing.T) {
	env := setupCampaignService()

	input := &models.CreateCampaignInput{
		Name:       "Links",
		Subject:    "Subject",
		Message:    "Body",
		Recipients: []string{"a@x.com"},
	}

	ctx := context.Background()
	campaign, _, err := env.service.CreateCampaign(ctx, input)
	require.NoError(t, err)

	sent := env.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "a@x.com", sent[0].To)
	assert.Equal(t, "Subject", sent[0].Subject)

	// Ссылка содержит идентификатор кампании, адрес как сегмент пути и redirect
	expected := fmt.Sprintf("http://tracker.local/track/%s/a@x.com?redirect=", campaign.ID)
	assert.Contains(t, sent[0].HTML, expected)
}

// TestCampaignService_CreateCampaign_PlusAddressLink проверяет, что «+» в
// plus-адресации переживает кодирование ссылки
func TestCampaignService_CreateCampaign_PlusAddressLink(t *testing.T) {
	env := setupCampaignService()

	input := &models.CreateCampaignInput{
		Name:       "Plus",
		Subject:    "Subject",
		Message:    "Body",
		Recipients: []string{"user+tag@gmail.com"},
	}

	ctx := context.Background()
	campaign, _, err := env.service.CreateCampaign(ctx, input)
	require.NoError(t, err)

	sent := env.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].HTML,
		fmt.Sprintf("http://tracker.local/track/%s/user+tag@gmail.com", campaign.ID))
}

// TestCampaignService_CreateCampaign_NoRecipients проверяет отклонение пустого списка
func TestCampaignService_CreateCampaign_NoRecipients(t *testing.T) {
	env := setupCampaignService()

	input := &models.CreateCampaignInput{
		Name:       "Empty",
		Subject:    "Subject",
		Message:    "Body",
		Recipients: []string{},
	}

	ctx := context.Background()
	campaign, report, err := env.service.CreateCampaign(ctx, input)

	assert.Error(t, err)
	assert.ErrorIs(t, err, service.ErrNoRecipients)
	assert.Nil(t, campaign)
	assert.Nil(t, report)
}

// TestCampaignService_CreateCampaign_DuplicateRecipients проверяет, что дубликаты
// адресов не схлопываются: каждый получает своё письмо
func TestCampaignService_CreateCampaign_DuplicateRecipients(t *testing.T) {
	env := setupCampaignService()

	input := &models.CreateCampaignInput{
		Name:       "Dups",
		Subject:    "Subject",
		Message:    "Body",
		Recipients: []string{"a@x.com", "a@x.com", "b@x.com"},
	}

	ctx := context.Background()
	campaign, report, err := env.service.CreateCampaign(ctx, input)

	require.NoError(t, err)
	assert.Len(t, campaign.Recipients, 3)
	assert.Equal(t, 3, report.Total)
	assert.Len(t, env.mailer.Sent(), 3)
}

// TestCampaignService_CreateCampaign_PartialDeliveryFailure проверяет, что сбой
// доставки одному получателю не отменяет кампанию
func TestCampaignService_CreateCampaign_PartialDeliveryFailure(t *testing.T) {
	env := setupCampaignService()
	env.mailer.FailFor["bad@x.com"] = errors.New("mailbox unavailable")

	input := &models.CreateCampaignInput{
		Name:       "Partial",
		Subject:    "Subject",
		Message:    "Body",
		Recipients: []string{"good@x.com", "bad@x.com"},
	}

	ctx := context.Background()
	campaign, report, err := env.service.CreateCampaign(ctx, input)

	require.NoError(t, err)
	assert.NotNil(t, campaign)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Success)
	assert.Equal(t, 1, report.Failed)

	// Результаты в исходном порядке получателей
	assert.Equal(t, "good@x.com", report.Details[0].Email)
	assert.Equal(t, "success", report.Details[0].Status)
	assert.Equal(t, "bad@x.com", report.Details[1].Email)
	assert.Equal(t, "failed", report.Details[1].Status)
	assert.NotEmpty(t, report.Details[1].Error)
}

// TestCampaignService_GetCampaign_NotFound проверяет обработку несуществующей кампании
func TestCampaignService_GetCampaign_NotFound(t *testing.T) {
	env := setupCampaignService()

	ctx := context.Background()
	campaign, err := env.service.GetCampaign(ctx, "00000000-0000-0000-0000-000000000000")

	assert.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrCampaignNotFound)
	assert.Nil(t, campaign)
}

// TestCampaignService_DeleteCampaign_Cascade проверяет каскадное удаление событий кликов
func TestCampaignService_DeleteCampaign_Cascade(t *testing.T) {
	env := setupCampaignService()

	input := &models.CreateCampaignInput{
		Name:       "To delete",
		Subject:    "Subject",
		Message:    "Body",
		Recipients: []string{"a@x.com"},
	}

	ctx := context.Background()
	campaign, _, err := env.service.CreateCampaign(ctx, input)
	require.NoError(t, err)

	// Несколько событий кликов по кампании
	trackingService := service.NewTrackingService(env.campaignRepo, env.clickRepo, env.cacheRepo, zap.NewNop())
	for i := 0; i < 3; i++ {
		_, err := trackingService.RecordClick(ctx, &models.ClickInput{
			CampaignID: campaign.ID,
			Email:      "a@x.com",
			RemoteAddr: "10.0.0.1:1234",
		})
		require.NoError(t, err)
	}

	events, err := env.clickRepo.ListByCampaign(ctx, campaign.ID)
	require.NoError(t, err)
	require.Len(t, events, 3)

	deleted, err := env.service.DeleteCampaign(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, campaign.ID, deleted.ID)

	// Ни одного осиротевшего события после удаления
	events, err = env.clickRepo.ListByCampaign(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Empty(t, events)

	// Кампания удалена из кэша и из хранилища
	_, err = env.cacheRepo.Get(ctx, campaign.ID)
	assert.Error(t, err)
	_, err = env.campaignRepo.GetByID(ctx, campaign.ID)
	assert.Error(t, err)
}

// TestCampaignService_DeleteCampaign_NoClicks проверяет удаление кампании без кликов
func TestCampaignService_DeleteCampaign_NoClicks(t *testing.T) {
	env := setupCampaignService()

	input := &models.CreateCampaignInput{
		Name:       "No clicks",
		Subject:    "Subject",
		Message:    "Body",
		Recipients: []string{"a@x.com"},
	}

	ctx := context.Background()
	campaign, _, err := env.service.CreateCampaign(ctx, input)
	require.NoError(t, err)

	deleted, err := env.service.DeleteCampaign(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, campaign.ID, deleted.ID)
}

// TestCampaignService_DeleteCampaign_NotFound проверяет удаление несуществующей кампании
func TestCampaignService_DeleteCampaign_NotFound(t *testing.T) {
	env := setupCampaignService()

	ctx := context.Background()
	campaign, err := env.service.DeleteCampaign(ctx, "00000000-0000-0000-0000-000000000000")

	assert.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrCampaignNotFound)
	assert.Nil(t, campaign)
}
