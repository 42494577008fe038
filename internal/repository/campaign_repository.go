package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/SergeiKhy/campaign-tracker/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrCampaignNotFound = errors.New("campaign not found")
)

type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	GetByID(ctx context.Context, id string) (*models.Campaign, error)
	List(ctx context.Context) ([]*models.Campaign, error)
	Delete(ctx context.Context, id string) (*models.Campaign, error)
	CountCampaigns(ctx context.Context) (int64, error)
	CountRecipients(ctx context.Context) (int64, error)
}

type campaignRepository struct {
	db *PostgresDB
}

func NewCampaignRepository(db *PostgresDB) CampaignRepository {
	return &campaignRepository{db: db}
}

func (r *campaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	query := `
		INSERT INTO campaigns (id, name, subject, message, recipients, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Pool.Exec(
		ctx,
		query,
		campaign.ID,
		campaign.Name,
		campaign.Subject,
		campaign.Message,
		campaign.Recipients,
		campaign.SentAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}

	return nil
}

func (r *campaignRepository) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	// Некорректный идентификатор эквивалентен отсутствующей кампании
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrCampaignNotFound
	}

	query := `
		SELECT id, name, subject, message, recipients, sent_at
		FROM campaigns
		WHERE id = $1
	`

	campaign := &models.Campaign{}
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&campaign.ID,
		&campaign.Name,
		&campaign.Subject,
		&campaign.Message,
		&campaign.Recipients,
		&campaign.SentAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}

	clicks, err := r.loadClicks(ctx, campaign.ID)
	if err != nil {
		return nil, err
	}
	campaign.Clicks = clicks

	return campaign, nil
}

func (r *campaignRepository) List(ctx context.Context) ([]*models.Campaign, error) {
	query := `
		SELECT id, name, subject, message, recipients, sent_at
		FROM campaigns
		ORDER BY sent_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := []*models.Campaign{}
	byID := make(map[string]*models.Campaign)
	for rows.Next() {
		campaign := &models.Campaign{Clicks: []models.CampaignClick{}}
		if err := rows.Scan(
			&campaign.ID,
			&campaign.Name,
			&campaign.Subject,
			&campaign.Message,
			&campaign.Recipients,
			&campaign.SentAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		campaigns = append(campaigns, campaign)
		byID[campaign.ID] = campaign
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating campaigns: %w", err)
	}

	// Подгружаем легаси-логи кликов одним запросом
	clickRows, err := r.db.Pool.Query(ctx, `
		SELECT campaign_id, email, clicked_at
		FROM campaign_clicks
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaign clicks: %w", err)
	}
	defer clickRows.Close()

	for clickRows.Next() {
		var campaignID string
		var click models.CampaignClick
		if err := clickRows.Scan(&campaignID, &click.Email, &click.ClickedAt); err != nil {
			return nil, fmt.Errorf("failed to scan campaign click: %w", err)
		}
		if campaign, ok := byID[campaignID]; ok {
			campaign.Clicks = append(campaign.Clicks, click)
		}
	}

	if err := clickRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating campaign clicks: %w", err)
	}

	return campaigns, nil
}

// Delete удаляет кампанию вместе со всеми зависимыми событиями кликов.
// Каскад выполняется одной транзакцией: сперва находим кампанию (ключ каскада),
// затем удаляем зависимые записи и только потом саму кампанию.
func (r *campaignRepository) Delete(ctx context.Context, id string) (*models.Campaign, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrCampaignNotFound
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	campaign := &models.Campaign{}
	err = tx.QueryRow(ctx, `
		SELECT id, name, subject, message, recipients, sent_at
		FROM campaigns
		WHERE id = $1
	`, id).Scan(
		&campaign.ID,
		&campaign.Name,
		&campaign.Subject,
		&campaign.Message,
		&campaign.Recipients,
		&campaign.SentAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to get campaign for delete: %w", err)
	}

	clicks := []models.CampaignClick{}
	clickRows, err := tx.Query(ctx, `
		SELECT email, clicked_at FROM campaign_clicks WHERE campaign_id = $1 ORDER BY id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign clicks: %w", err)
	}
	for clickRows.Next() {
		var click models.CampaignClick
		if err := clickRows.Scan(&click.Email, &click.ClickedAt); err != nil {
			clickRows.Close()
			return nil, fmt.Errorf("failed to scan campaign click: %w", err)
		}
		clicks = append(clicks, click)
	}
	clickRows.Close()
	if err := clickRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating campaign clicks: %w", err)
	}
	campaign.Clicks = clicks

	// Ноль совпадений для зависимых записей — нормальная ситуация
	if _, err := tx.Exec(ctx, `DELETE FROM click_events WHERE campaign_id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to delete click events: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM campaign_clicks WHERE campaign_id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to delete campaign clicks: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to delete campaign: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit delete transaction: %w", err)
	}

	return campaign, nil
}

func (r *campaignRepository) CountCampaigns(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM campaigns`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count campaigns: %w", err)
	}
	return count, nil
}

// CountRecipients суммирует длины списков получателей по всем кампаниям.
// Дубликаты адресов считаются отдельно, без дедупликации.
func (r *campaignRepository) CountRecipients(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(cardinality(recipients)), 0) FROM campaigns
	`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recipients: %w", err)
	}
	return count, nil
}

func (r *campaignRepository) loadClicks(ctx context.Context, campaignID string) ([]models.CampaignClick, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT email, clicked_at
		FROM campaign_clicks
		WHERE campaign_id = $1
		ORDER BY id
	`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign clicks: %w", err)
	}
	defer rows.Close()

	clicks := []models.CampaignClick{}
	for rows.Next() {
		var click models.CampaignClick
		if err := rows.Scan(&click.Email, &click.ClickedAt); err != nil {
			return nil, fmt.Errorf("failed to scan campaign click: %w", err)
		}
		clicks = append(clicks, click)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating campaign clicks: %w", err)
	}

	return clicks, nil
}
