package models

import (
	"time"
)

// Campaign представляет одну рассылку с фиксированным списком получателей
type Campaign struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Subject    string          `json:"subject"`
	Message    string          `json:"message"`
	Recipients []string        `json:"recipients"`
	SentAt     time.Time       `json:"sentAt"`
	Clicks     []CampaignClick `json:"clicks"`
}

// CampaignClick запись легаси-лога кликов внутри кампании
type CampaignClick struct {
	Email     string    `json:"email"`
	ClickedAt time.Time `json:"clickedAt"`
}

type CreateCampaignInput struct {
	Name       string   `json:"name" binding:"required"`
	Subject    string   `json:"subject" binding:"required"`
	Message    string   `json:"message" binding:"required"`
	Recipients []string `json:"recipients" binding:"required"`
}

// DeliveryResult результат доставки письма одному получателю
type DeliveryResult struct {
	Email     string `json:"email"`
	Status    string `json:"status"` // "success" или "failed"
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SendReport сводка по отправке кампании
type SendReport struct {
	Total   int              `json:"total"`
	Success int              `json:"success"`
	Failed  int              `json:"failed"`
	Details []DeliveryResult `json:"details"`
}
