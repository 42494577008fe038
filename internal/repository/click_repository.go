package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/SergeiKhy/campaign-tracker/internal/models"
)

type ClickRepository interface {
	RecordClick(ctx context.Context, event *models.ClickEvent) error
	ListByCampaign(ctx context.Context, campaignID string) ([]*models.ClickEvent, error)
	ListEventTimesSince(ctx context.Context, since time.Time) ([]time.Time, error)
	TopUserAgents(ctx context.Context, limit int) ([]models.UserAgentCount, error)
	CountClicks(ctx context.Context) (int64, error)
}

type clickRepository struct {
	db *PostgresDB
}

func NewClickRepository(db *PostgresDB) ClickRepository {
	return &clickRepository{db: db}
}

// RecordClick сохраняет событие клика в детальном логе и дописывает запись
// в легаси-лог кампании. Обе записи выполняются одной транзакцией, поэтому
// логи не могут разойтись при частичном сбое.
func (r *clickRepository) RecordClick(ctx context.Context, event *models.ClickEvent) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin click transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO click_events
			(id, campaign_id, email, token, ts, ip, user_agent, referrer, accept_language, forwarded_for)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		event.ID,
		event.CampaignID,
		event.Email,
		event.Token,
		event.Timestamp,
		event.IP,
		event.UserAgent,
		event.Referrer,
		event.AcceptLanguage,
		event.ForwardedFor,
	)
	if err != nil {
		return fmt.Errorf("failed to record click event: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO campaign_clicks (campaign_id, email, clicked_at)
		VALUES ($1, $2, $3)
	`,
		event.CampaignID,
		event.Email,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to append campaign click: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit click transaction: %w", err)
	}

	return nil
}

func (r *clickRepository) ListByCampaign(ctx context.Context, campaignID string) ([]*models.ClickEvent, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, campaign_id, email, token, ts, ip, user_agent, referrer, accept_language, forwarded_for
		FROM click_events
		WHERE campaign_id = $1
		ORDER BY ts DESC
	`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to list click events: %w", err)
	}
	defer rows.Close()

	events := []*models.ClickEvent{}
	for rows.Next() {
		event := &models.ClickEvent{}
		if err := rows.Scan(
			&event.ID,
			&event.CampaignID,
			&event.Email,
			&event.Token,
			&event.Timestamp,
			&event.IP,
			&event.UserAgent,
			&event.Referrer,
			&event.AcceptLanguage,
			&event.ForwardedFor,
		); err != nil {
			return nil, fmt.Errorf("failed to scan click event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating click events: %w", err)
	}

	return events, nil
}

// ListEventTimesSince возвращает метки времени всех событий не старше since
func (r *clickRepository) ListEventTimesSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT ts FROM click_events WHERE ts >= $1 ORDER BY ts
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list event times: %w", err)
	}
	defer rows.Close()

	times := []time.Time{}
	for rows.Next() {
		var ts time.Time
		if err := rows.Scan(&ts); err != nil {
			return nil, fmt.Errorf("failed to scan event time: %w", err)
		}
		times = append(times, ts)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event times: %w", err)
	}

	return times, nil
}

// TopUserAgents группирует события по точной строке user-agent и возвращает
// limit самых частых. Пустые строки не участвуют в рейтинге.
func (r *clickRepository) TopUserAgents(ctx context.Context, limit int) ([]models.UserAgentCount, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT user_agent, COUNT(*) AS count
		FROM click_events
		WHERE user_agent <> ''
		GROUP BY user_agent
		ORDER BY count DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top user agents: %w", err)
	}
	defer rows.Close()

	counts := []models.UserAgentCount{}
	for rows.Next() {
		var uac models.UserAgentCount
		if err := rows.Scan(&uac.UserAgent, &uac.Count); err != nil {
			return nil, fmt.Errorf("failed to scan user agent count: %w", err)
		}
		counts = append(counts, uac)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user agent counts: %w", err)
	}

	return counts, nil
}

func (r *clickRepository) CountClicks(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM click_events`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count clicks: %w", err)
	}
	return count, nil
}
