package models

import (
	"time"

	"github.com/google/uuid"
)

// IncidentStatus - статус инцидента в жизненном цикле new -> acknowledged -> resolved
type IncidentStatus string

const (
	IncidentNew          IncidentStatus = "new"
	IncidentAcknowledged IncidentStatus = "acknowledged"
	IncidentResolved     IncidentStatus = "resolved"
)

// Severity - серьёзность инцидента
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Media - ссылки на медиа-вложения SOS-сигнала
type Media struct {
	Audio string `json:"audio,omitempty"`
	Video string `json:"video,omitempty"`
	Photo string `json:"photo,omitempty"`
}

// Officer - сотрудник, отреагировавший на инцидент
type Officer struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// TimelineEntry - запись хронологии инцидента
type TimelineEntry struct {
	Event string    `json:"event"`
	Time  time.Time `json:"time"`
	Actor string    `json:"actor,omitempty"`
}

// Incident - экстренное обращение туриста (SOS). Создаётся клиентом,
// далее управляется только действиями acknowledge/resolve/escalate;
// ядро никогда не удаляет инциденты.
type Incident struct {
	ID           uuid.UUID       `json:"id"`
	SessionID    string          `json:"session_id"`
	TouristID    string          `json:"tourist_id,omitempty"`
	TouristName  string          `json:"tourist_name,omitempty"`
	TouristPhone string          `json:"tourist_phone,omitempty"`
	TouristEmail string          `json:"tourist_email,omitempty"`
	Location     *LatLng         `json:"location,omitempty"`
	Description  string          `json:"description,omitempty"`
	Media        Media           `json:"media"`
	Severity     Severity        `json:"severity"`
	Status       IncidentStatus  `json:"status"`
	Officer      *Officer        `json:"officer,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	Timeline     []TimelineEntry `json:"timeline"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
