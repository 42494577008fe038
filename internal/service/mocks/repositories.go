package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/SergeiKhy/campaign-tracker/internal/models"
	"github.com/SergeiKhy/campaign-tracker/internal/repository"
)

// MockCampaignRepository implements repository.CampaignRepository for testing
type MockCampaignRepository struct {
	mu        sync.RWMutex
	campaigns map[string]*models.Campaign

	// ClickRepo, если задан, участвует в каскадном удалении
	ClickRepo *MockClickRepository

	CreateErr error
	DeleteErr error
}

func NewMockCampaignRepository() *MockCampaignRepository {
	return &MockCampaignRepository{
		campaigns: make(map[string]*models.Campaign),
	}
}

func (m *MockCampaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.campaigns[campaign.ID] = campaign
	return nil
}

func (m *MockCampaignRepository) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	campaign, exists := m.campaigns[id]
	if !exists {
		return nil, repository.ErrCampaignNotFound
	}
	return campaign, nil
}

func (m *MockCampaignRepository) List(ctx context.Context) ([]*models.Campaign, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	campaigns := make([]*models.Campaign, 0, len(m.campaigns))
	for _, campaign := range m.campaigns {
		campaigns = append(campaigns, campaign)
	}
	sort.Slice(campaigns, func(i, j int) bool {
		return campaigns[i].SentAt.After(campaigns[j].SentAt)
	})
	return campaigns, nil
}

func (m *MockCampaignRepository) Delete(ctx context.Context, id string) (*models.Campaign, error) {
	if m.DeleteErr != nil {
		return nil, m.DeleteErr
	}

	m.mu.Lock()
	campaign, exists := m.campaigns[id]
	if !exists {
		m.mu.Unlock()
		return nil, repository.ErrCampaignNotFound
	}
	delete(m.campaigns, id)
	m.mu.Unlock()

	// Каскад: зависимые события удаляются вместе с кампанией
	if m.ClickRepo != nil {
		m.ClickRepo.deleteByCampaign(id)
	}

	return campaign, nil
}

func (m *MockCampaignRepository) CountCampaigns(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.campaigns)), nil
}

func (m *MockCampaignRepository) CountRecipients(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var total int64
	for _, campaign := range m.campaigns {
		total += int64(len(campaign.Recipients))
	}
	return total, nil
}

func (m *MockCampaignRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.campaigns = make(map[string]*models.Campaign)
}

// MockCacheRepository implements repository.CacheRepository for testing
type MockCacheRepository struct {
	mu    sync.RWMutex
	cache map[string]*models.Campaign
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		cache: make(map[string]*models.Campaign),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, id string) (*models.Campaign, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	campaign, exists := m.cache[id]
	if !exists {
		return nil, repository.ErrCampaignNotFound
	}
	return campaign, nil
}

func (m *MockCacheRepository) Set(ctx context.Context, id string, campaign *models.Campaign, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[id] = campaign
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, id)
	return nil
}

func (m *MockCacheRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = make(map[string]*models.Campaign)
}

// MockClickRepository implements repository.ClickRepository for testing
type MockClickRepository struct {
	mu     sync.RWMutex
	events []*models.ClickEvent

	// Campaigns, если задан, получает запись в легаси-лог при каждом клике
	// (зеркало транзакционной двойной записи)
	Campaigns *MockCampaignRepository

	RecordErr error
}

func NewMockClickRepository() *MockClickRepository {
	return &MockClickRepository{
		events: []*models.ClickEvent{},
	}
}

func (m *MockClickRepository) RecordClick(ctx context.Context, event *models.ClickEvent) error {
	if m.RecordErr != nil {
		return m.RecordErr
	}

	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()

	if m.Campaigns != nil {
		m.Campaigns.mu.Lock()
		if campaign, ok := m.Campaigns.campaigns[event.CampaignID]; ok {
			campaign.Clicks = append(campaign.Clicks, models.CampaignClick{
				Email:     event.Email,
				ClickedAt: event.Timestamp,
			})
		}
		m.Campaigns.mu.Unlock()
	}

	return nil
}

func (m *MockClickRepository) ListByCampaign(ctx context.Context, campaignID string) ([]*models.ClickEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := []*models.ClickEvent{}
	for _, event := range m.events {
		if event.CampaignID == campaignID {
			events = append(events, event)
		}
	}
	return events, nil
}

func (m *MockClickRepository) ListEventTimesSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	times := []time.Time{}
	for _, event := range m.events {
		if !event.Timestamp.Before(since) {
			times = append(times, event.Timestamp)
		}
	}
	return times, nil
}

func (m *MockClickRepository) TopUserAgents(ctx context.Context, limit int) ([]models.UserAgentCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int64)
	for _, event := range m.events {
		if event.UserAgent != "" {
			counts[event.UserAgent]++
		}
	}

	result := []models.UserAgentCount{}
	for ua, count := range counts {
		result = append(result, models.UserAgentCount{UserAgent: ua, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockClickRepository) CountClicks(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.events)), nil
}

func (m *MockClickRepository) deleteByCampaign(campaignID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.events[:0]
	for _, event := range m.events {
		if event.CampaignID != campaignID {
			kept = append(kept, event)
		}
	}
	m.events = kept
}

func (m *MockClickRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = []*models.ClickEvent{}
}
