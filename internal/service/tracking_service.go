package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/SergeiKhy/campaign-tracker/internal/models"
	"github.com/SergeiKhy/campaign-tracker/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Константы трекинга
const (
	tokenBytes = 16 // 128 бит энтропии на токен
)

// TrackingService интерфейс учёта кликов по трекинговым ссылкам
type TrackingService interface {
	RecordClick(ctx context.Context, input *models.ClickInput) (*models.ClickEvent, error)
}

// trackingService реализация учёта кликов
type trackingService struct {
	campaignRepo repository.CampaignRepository
	clickRepo    repository.ClickRepository
	cacheRepo    repository.CacheRepository
	logger       *zap.Logger
}

// NewTrackingService создаёт новый сервис трекинга
func NewTrackingService(
	campaignRepo repository.CampaignRepository,
	clickRepo repository.ClickRepository,
	cacheRepo repository.CacheRepository,
	logger *zap.Logger,
) TrackingService {
	return &trackingService{
		campaignRepo: campaignRepo,
		clickRepo:    clickRepo,
		cacheRepo:    cacheRepo,
		logger:       logger,
	}
}

// RecordClick превращает визит по трекинговой ссылке в долговременное событие.
// Адрес получателя берётся из ссылки и НЕ сверяется со списком получателей
// кампании: подделанный адрес всё равно даёт валидное событие. Атрибуция
// пишется как есть, отсутствующие заголовки не считаются ошибкой.
func (s *trackingService) RecordClick(ctx context.Context, input *models.ClickInput) (*models.ClickEvent, error) {
	// Несуществующая кампания: никаких записей
	campaign, err := s.resolveCampaign(ctx, input.CampaignID)
	if err != nil {
		return nil, err
	}

	token, err := mintToken()
	if err != nil {
		return nil, fmt.Errorf("failed to mint token: %w", err)
	}

	event := &models.ClickEvent{
		ID:             uuid.NewString(),
		CampaignID:     campaign.ID,
		Email:          decodeEmail(input.Email),
		Token:          token,
		Timestamp:      time.Now().UTC(),
		IP:             clientIP(input.ForwardedFor, input.RemoteAddr),
		UserAgent:      input.UserAgent,
		Referrer:       input.Referrer,
		AcceptLanguage: input.AcceptLanguage,
		ForwardedFor:   input.ForwardedFor,
	}

	// Обе записи (легаси-лог кампании и детальное событие) в одной транзакции
	if err := s.clickRepo.RecordClick(ctx, event); err != nil {
		return nil, err
	}

	s.logger.Info("Клик учтён",
		zap.String("campaign_id", event.CampaignID),
		zap.String("email", event.Email),
	)

	return event, nil
}

// resolveCampaign находит кампанию: сначала кэш, затем БД
func (s *trackingService) resolveCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	campaign, err := s.cacheRepo.Get(ctx, id)
	if err == nil {
		return campaign, nil
	}

	campaign, err = s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cacheRepo.Set(ctx, id, campaign, campaignCacheTTL); err != nil {
		s.logger.Debug("Не удалось закэшировать кампанию", zap.Error(err))
	}

	return campaign, nil
}

// mintToken генерирует свежий непрозрачный токен для одного клика.
// Токены не переиспользуются и не проверяются на коллизии.
func mintToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// decodeEmail снимает URL-кодирование с адреса из ссылки. Декодируем как
// сегмент пути, а не query: «+» это легальный символ адреса, не пробел.
// Некорректное кодирование не является ошибкой: берём значение как есть.
func decodeEmail(raw string) string {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// clientIP выбирает адрес клиента: первый элемент цепочки X-Forwarded-For,
// иначе транспортный адрес соединения
func clientIP(forwardedFor, remoteAddr string) string {
	if forwardedFor != "" {
		first := strings.TrimSpace(strings.Split(forwardedFor, ",")[0])
		if first != "" {
			return first
		}
	}

	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
