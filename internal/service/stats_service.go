package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/SergeiKhy/campaign-tracker/internal/models"
	"github.com/SergeiKhy/campaign-tracker/internal/repository"
	"go.uber.org/zap"
)

// Константы агрегации
const (
	statsWindowDays = 7             // Скользящее окно гистограммы
	localTimeShift  = 7 * time.Hour // Фиксированный сдвиг в локальный часовой пояс
	topClientsLimit = 5             // Размер рейтинга клиентов
)

// dayPartLabels фиксированные подписи четырёх шестичасовых интервалов.
// Порядок вывода всегда такой, независимо от данных.
var dayPartLabels = [4]string{
	"00:00 - 05:59 (Night)",
	"06:00 - 11:59 (Morning)",
	"12:00 - 17:59 (Afternoon)",
	"18:00 - 23:59 (Evening)",
}

// clientRule правило классификации user-agent по подстроке
type clientRule struct {
	tokens []string
	label  string
}

// clientRules упорядоченный список правил, срабатывает первое совпадение.
// Порядок значим: реальные строки содержат несколько токенов сразу
// (например Chrome и Safari), поэтому это именно список, а не отображение.
var clientRules = []clientRule{
	{tokens: []string{"Edg"}, label: "Edge"},
	{tokens: []string{"OPR", "Opera"}, label: "Opera"},
	{tokens: []string{"Chrome"}, label: "Chrome"},
	{tokens: []string{"Firefox"}, label: "Firefox"},
	{tokens: []string{"Safari"}, label: "Safari"},
	{tokens: []string{"MSIE", "Trident"}, label: "Internet Explorer"},
}

// StatsService интерфейс витрины статистики
type StatsService interface {
	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

// statsService реализация витрины статистики.
// Все отчёты считаются по требованию, без кэширования и инкрементальных
// обновлений; snapshot-изоляция не гарантируется.
type statsService struct {
	campaignRepo repository.CampaignRepository
	clickRepo    repository.ClickRepository
	logger       *zap.Logger
}

// NewStatsService создаёт новый сервис статистики
func NewStatsService(
	campaignRepo repository.CampaignRepository,
	clickRepo repository.ClickRepository,
	logger *zap.Logger,
) StatsService {
	return &statsService{
		campaignRepo: campaignRepo,
		clickRepo:    clickRepo,
		logger:       logger,
	}
}

// DashboardStats собирает полный ответ для дашборда: гистограмму по времени
// суток, рейтинг клиентов и сводные показатели
func (s *statsService) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	since := time.Now().UTC().Add(-statsWindowDays * 24 * time.Hour)
	times, err := s.clickRepo.ListEventTimesSince(ctx, since)
	if err != nil {
		return nil, err
	}

	topAgents, err := s.clickRepo.TopUserAgents(ctx, topClientsLimit)
	if err != nil {
		return nil, err
	}

	overall, err := s.overallStats(ctx)
	if err != nil {
		return nil, err
	}

	return &models.DashboardStats{
		TimeSeriesData: dayPartHistogram(times),
		BrowserData:    classifyClients(topAgents),
		OverallStats:   *overall,
	}, nil
}

// dayPartHistogram суммирует клики по четырём интервалам времени суток.
// Суммирование идёт по всему окну сразу, а не по отдельным дням; пустые
// интервалы выводятся с нулём.
func dayPartHistogram(times []time.Time) []models.DayPartStat {
	var counts [4]int64
	for _, ts := range times {
		localHour := ts.UTC().Add(localTimeShift).Hour()
		counts[localHour/6]++
	}

	stats := make([]models.DayPartStat, 0, len(dayPartLabels))
	for i, label := range dayPartLabels {
		stats = append(stats, models.DayPartStat{
			Time:   label,
			Clicks: counts[i],
		})
	}
	return stats
}

// classifyClients навешивает метку семейства клиента на каждую строку рейтинга
func classifyClients(topAgents []models.UserAgentCount) []models.ClientTypeStat {
	stats := make([]models.ClientTypeStat, 0, len(topAgents))
	for _, agent := range topAgents {
		stats = append(stats, models.ClientTypeStat{
			Browser:       classifyUserAgent(agent.UserAgent),
			Count:         agent.Count,
			FullUserAgent: agent.UserAgent,
		})
	}
	return stats
}

// classifyUserAgent определяет семейство клиента по сырой строке user-agent.
// Правила проверяются строго по порядку, побеждает первое совпадение.
func classifyUserAgent(userAgent string) string {
	for _, rule := range clientRules {
		for _, token := range rule.tokens {
			if strings.Contains(userAgent, token) {
				return rule.label
			}
		}
	}
	return "Unknown"
}

// overallStats считает сводные показатели по всем кампаниям
func (s *statsService) overallStats(ctx context.Context) (*models.OverallStats, error) {
	totalCampaigns, err := s.campaignRepo.CountCampaigns(ctx)
	if err != nil {
		return nil, err
	}

	totalRecipients, err := s.campaignRepo.CountRecipients(ctx)
	if err != nil {
		return nil, err
	}

	totalClicks, err := s.clickRepo.CountClicks(ctx)
	if err != nil {
		return nil, err
	}

	return &models.OverallStats{
		TotalCampaigns:  totalCampaigns,
		TotalRecipients: totalRecipients,
		TotalClicks:     totalClicks,
		TotalClickRate:  clickRate(totalClicks, totalRecipients),
	}, nil
}

// clickRate отношение кликов к получателям в процентах, два знака после
// запятой. При нуле получателей возвращает 0, а не ошибку деления.
func clickRate(clicks, recipients int64) float64 {
	if recipients == 0 {
		return 0
	}
	rate := float64(clicks) / float64(recipients) * 100
	return math.Round(rate*100) / 100
}
