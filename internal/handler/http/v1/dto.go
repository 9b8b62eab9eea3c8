package v1

import (
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/tourist_safety_system/internal/models"
)

// LatLngDTO - точка в градусах
// @Description Географическая точка
type LatLngDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ShapeDTO - геометрия зоны или границы
// @Description Геометрия региона: окружность либо полигон
type ShapeDTO struct {
	Type         string     `json:"type" validate:"required,oneof=circle polygon"`
	Center       *LatLngDTO `json:"center,omitempty"`
	RadiusMeters float64    `json:"radius_meters,omitempty" validate:"gte=0"`
	Ring         []LatLngDTO `json:"ring,omitempty"`
}

// RegisterRequest - явная регистрация туриста на сессии
type RegisterRequest struct {
	TouristID   string `json:"tourist_id,omitempty"`
	PersonalID  string `json:"personal_id,omitempty"`
	Name        string `json:"name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	Nationality string `json:"nationality,omitempty"`
	Destination string `json:"destination,omitempty"`
}

// PositionReportRequest - отчёт о позиции туриста. Координаты валидируются
// на конечность в реестре, а не здесь: некорректный отчёт должен быть
// отброшен с логом, а не превращён в ошибку протокола.
type PositionReportRequest struct {
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Timestamp   time.Time `json:"timestamp,omitempty"`
	TouristID   string    `json:"tourist_id,omitempty"`
	PersonalID  string    `json:"personal_id,omitempty"`
	Name        string    `json:"name,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Email       string    `json:"email,omitempty"`
	Nationality string    `json:"nationality,omitempty"`
	Destination string    `json:"destination,omitempty"`
}

// ZoneUpsertRequest - создание/обновление зоны риска
type ZoneUpsertRequest struct {
	ID    string   `json:"id" validate:"required"`
	Name  string   `json:"name" validate:"required,min=1,max=255"`
	Risk  string   `json:"risk,omitempty" validate:"omitempty,oneof=low medium high"`
	Shape ShapeDTO `json:"shape" validate:"required"`
}

// BoundaryUpsertRequest - создание/обновление разрешённой области
type BoundaryUpsertRequest struct {
	ID    string   `json:"id" validate:"required"`
	Name  string   `json:"name" validate:"required,min=1,max=255"`
	Shape ShapeDTO `json:"shape" validate:"required"`
}

// DeleteRequest - удаление зоны или границы по идентификатору
type DeleteRequest struct {
	ID string `json:"id" validate:"required"`
}

// MediaDTO - ссылки на медиа-вложения SOS
type MediaDTO struct {
	Audio string `json:"audio,omitempty"`
	Video string `json:"video,omitempty"`
	Photo string `json:"photo,omitempty"`
}

// CreateIncidentRequest DTO для создания инцидента (SOS)
// @Description DTO для создания инцидента
type CreateIncidentRequest struct {
	TouristID    string     `json:"tourist_id,omitempty"`
	TouristName  string     `json:"tourist_name,omitempty"`
	TouristPhone string     `json:"tourist_phone,omitempty"`
	TouristEmail string     `json:"tourist_email,omitempty" validate:"omitempty,email"`
	Location     *LatLngDTO `json:"location,omitempty"`
	Description  string     `json:"description,omitempty"`
	Media        MediaDTO   `json:"media,omitempty"`
	Severity     string     `json:"severity,omitempty" validate:"omitempty,oneof=low medium high"`
}

// AcknowledgeIncidentRequest DTO для подтверждения инцидента сотрудником
// @Description DTO для подтверждения инцидента
type AcknowledgeIncidentRequest struct {
	OfficerID   string `json:"officer_id,omitempty"`
	OfficerName string `json:"officer_name,omitempty"`
}

// ResolveIncidentRequest DTO для закрытия инцидента
// @Description DTO для закрытия инцидента
type ResolveIncidentRequest struct {
	Notes string `json:"notes,omitempty"`
}

// IncidentActionRequest - действие над инцидентом по событийному каналу
type IncidentActionRequest struct {
	ID          string `json:"id" validate:"required,uuid"`
	OfficerID   string `json:"officer_id,omitempty"`
	OfficerName string `json:"officer_name,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	ID           uuid.UUID              `json:"id"`
	SessionID    string                 `json:"session_id,omitempty"`
	TouristID    string                 `json:"tourist_id,omitempty"`
	TouristName  string                 `json:"tourist_name,omitempty"`
	TouristPhone string                 `json:"tourist_phone,omitempty"`
	TouristEmail string                 `json:"tourist_email,omitempty"`
	Location     *LatLngDTO             `json:"location,omitempty"`
	Description  string                 `json:"description,omitempty"`
	Media        MediaDTO               `json:"media"`
	Severity     models.Severity        `json:"severity"`
	Status       models.IncidentStatus  `json:"status"`
	Officer      *models.Officer        `json:"officer,omitempty"`
	Notes        string                 `json:"notes,omitempty"`
	Timeline     []models.TimelineEntry `json:"timeline"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}
