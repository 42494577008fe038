package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/SergeiKhy/campaign-tracker/internal/mailer"
	"github.com/SergeiKhy/campaign-tracker/internal/models"
	"github.com/SergeiKhy/campaign-tracker/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Ошибки сервиса
var (
	ErrNoRecipients = errors.New("список получателей пуст")
)

// Константы сервиса
const (
	campaignCacheTTL = 24 * time.Hour
)

// CampaignService интерфейс сервиса кампаний
type CampaignService interface {
	CreateCampaign(ctx context.Context, input *models.CreateCampaignInput) (*models.Campaign, *models.SendReport, error)
	GetCampaign(ctx context.Context, id string) (*models.Campaign, error)
	ListCampaigns(ctx context.Context) ([]*models.Campaign, error)
	DeleteCampaign(ctx context.Context, id string) (*models.Campaign, error)
}

// campaignService реализация сервиса кампаний
type campaignService struct {
	campaignRepo repository.CampaignRepository
	cacheRepo    repository.CacheRepository
	senderPool   *SenderPool
	baseURL      string
	redirectURL  string
	logger       *zap.Logger
}

// NewCampaignService создаёт новый экземпляр сервиса
func NewCampaignService(
	campaignRepo repository.CampaignRepository,
	cacheRepo repository.CacheRepository,
	senderPool *SenderPool,
	baseURL string,
	redirectURL string,
	logger *zap.Logger,
) CampaignService {
	return &campaignService{
		campaignRepo: campaignRepo,
		cacheRepo:    cacheRepo,
		senderPool:   senderPool,
		baseURL:      baseURL,
		redirectURL:  redirectURL,
		logger:       logger,
	}
}

// CreateCampaign сохраняет кампанию и рассылает письма всем получателям.
// Список получателей фиксируется на момент создания; дубликаты адресов
// не отбрасываются. Сбои доставки попадают в отчёт, но не отменяют кампанию.
func (s *campaignService) CreateCampaign(ctx context.Context, input *models.CreateCampaignInput) (*models.Campaign, *models.SendReport, error) {
	if len(input.Recipients) == 0 {
		return nil, nil, ErrNoRecipients
	}

	campaign := &models.Campaign{
		ID:         uuid.NewString(),
		Name:       input.Name,
		Subject:    input.Subject,
		Message:    input.Message,
		Recipients: input.Recipients,
		SentAt:     time.Now().UTC(),
		Clicks:     []models.CampaignClick{},
	}

	if err := s.campaignRepo.Create(ctx, campaign); err != nil {
		return nil, nil, err
	}

	// Кэширование для горячего пути трекинга
	if err := s.cacheRepo.Set(ctx, campaign.ID, campaign, campaignCacheTTL); err != nil {
		s.logger.Warn("Не удалось закэшировать кампанию", zap.Error(err))
	}

	// Письмо каждому получателю со своей трекинговой ссылкой
	msgs := make([]*mailer.Message, 0, len(input.Recipients))
	for _, recipient := range input.Recipients {
		msgs = append(msgs, &mailer.Message{
			To:      recipient,
			Subject: campaign.Subject,
			HTML:    s.renderMessage(campaign, recipient),
		})
	}

	results := s.senderPool.SendAll(ctx, msgs)

	report := &models.SendReport{
		Total:   len(results),
		Details: results,
	}
	for _, r := range results {
		if r.Status == "success" {
			report.Success++
		} else {
			report.Failed++
		}
	}

	s.logger.Info("Кампания отправлена",
		zap.String("campaign_id", campaign.ID),
		zap.Int("total", report.Total),
		zap.Int("success", report.Success),
		zap.Int("failed", report.Failed),
	)

	return campaign, report, nil
}

// GetCampaign получает кампанию по идентификатору
func (s *campaignService) GetCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	return s.campaignRepo.GetByID(ctx, id)
}

// ListCampaigns возвращает все кампании, новые первыми
func (s *campaignService) ListCampaigns(ctx context.Context) ([]*models.Campaign, error) {
	return s.campaignRepo.List(ctx)
}

// DeleteCampaign удаляет кампанию и каскадно все её события кликов
func (s *campaignService) DeleteCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	// Сначала инвалидируем кэш, чтобы трекинг не принял клик по удалённой кампании
	if err := s.cacheRepo.Delete(ctx, id); err != nil {
		s.logger.Warn("Не удалось удалить кампанию из кэша", zap.Error(err))
	}

	return s.campaignRepo.Delete(ctx, id)
}

// trackedLink собирает трекинговую ссылку для одного получателя.
// Адрес кодируется как сегмент пути: query-кодирование здесь не годится,
// оно превращает «+» из plus-адресации в пробел при декодировании.
func (s *campaignService) trackedLink(campaignID, email string) string {
	link := fmt.Sprintf("%s/track/%s/%s", s.baseURL, campaignID, url.PathEscape(email))
	if s.redirectURL != "" {
		link += "?redirect=" + url.QueryEscape(s.redirectURL)
	}
	return link
}

// renderMessage оборачивает текст кампании в HTML с кнопкой-ссылкой
func (s *campaignService) renderMessage(campaign *models.Campaign, recipient string) string {
	trackURL := s.trackedLink(campaign.ID, recipient)
	return fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
			%s
			<a href="%s" style="display:inline-block;margin:10px 0;padding:12px 24px;background:#3b82f6;color:#fff;text-decoration:none;border-radius:6px;font-weight:bold;">Open</a>
		</div>
	`, campaign.Message, trackURL)
}
