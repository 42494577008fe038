package models

import (
	"time"
)

// ClickEvent одна запись в детальном логе кликов.
// После создания запись неизменяема, лог append-only.
type ClickEvent struct {
	ID             string    `json:"id"`
	CampaignID     string    `json:"campaignId"`
	Email          string    `json:"email"`
	Token          string    `json:"token"`
	Timestamp      time.Time `json:"timestamp"`
	IP             string    `json:"ip,omitempty"`
	UserAgent      string    `json:"userAgent,omitempty"`
	Referrer       string    `json:"referrer,omitempty"`
	AcceptLanguage string    `json:"acceptLanguage,omitempty"`
	ForwardedFor   string    `json:"forwardedFor,omitempty"`
}

// ClickInput атрибуция входящего визита по трекинговой ссылке.
// Все поля кроме CampaignID и Email опциональны и берутся из запроса как есть.
type ClickInput struct {
	CampaignID     string
	Email          string
	RemoteAddr     string
	UserAgent      string
	Referrer       string
	AcceptLanguage string
	ForwardedFor   string
}

// UserAgentCount сырая строка user-agent с количеством кликов
type UserAgentCount struct {
	UserAgent string
	Count     int64
}

// DayPartStat количество кликов в одном из четырёх фиксированных
// шестичасовых интервалов локального времени
type DayPartStat struct {
	Time   string `json:"time"`
	Clicks int64  `json:"clicks"`
}

// ClientTypeStat одна позиция рейтинга клиентов по user-agent
type ClientTypeStat struct {
	Browser       string `json:"browser"`
	Count         int64  `json:"count"`
	FullUserAgent string `json:"fullUserAgent"`
}

// OverallStats сводные показатели по всем кампаниям
type OverallStats struct {
	TotalCampaigns  int64   `json:"totalCampaigns"`
	TotalRecipients int64   `json:"totalRecipients"`
	TotalClicks     int64   `json:"totalClicks"`
	TotalClickRate  float64 `json:"totalClickRate"`
}

// DashboardStats полный ответ эндпоинта статистики
type DashboardStats struct {
	TimeSeriesData []DayPartStat    `json:"timeSeriesData"`
	BrowserData    []ClientTypeStat `json:"browserData"`
	OverallStats   OverallStats     `json:"overallStats"`
}
