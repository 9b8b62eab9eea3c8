package v1

import (
	"github.com/shenikar/tourist_safety_system/internal/models"
	"github.com/shenikar/tourist_safety_system/internal/service"
)

// identityFromRegister преобразует DTO регистрации в доменную модель
func identityFromRegister(dto RegisterRequest) models.Identity {
	return models.Identity{
		TouristID:   dto.TouristID,
		PersonalID:  dto.PersonalID,
		Name:        dto.Name,
		Phone:       dto.Phone,
		Email:       dto.Email,
		Nationality: dto.Nationality,
		Destination: dto.Destination,
	}
}

// identityFromPosition достаёт атрибуты туриста из отчёта о позиции
func identityFromPosition(dto PositionReportRequest) models.Identity {
	return models.Identity{
		TouristID:   dto.TouristID,
		PersonalID:  dto.PersonalID,
		Name:        dto.Name,
		Phone:       dto.Phone,
		Email:       dto.Email,
		Nationality: dto.Nationality,
		Destination: dto.Destination,
	}
}

func shapeFromDTO(dto ShapeDTO) models.Shape {
	shape := models.Shape{
		Type:         models.ShapeType(dto.Type),
		RadiusMeters: dto.RadiusMeters,
	}
	if dto.Center != nil {
		shape.Center = &models.LatLng{Lat: dto.Center.Lat, Lng: dto.Center.Lng}
	}
	for _, p := range dto.Ring {
		shape.Ring = append(shape.Ring, models.LatLng{Lat: p.Lat, Lng: p.Lng})
	}
	return shape
}

// zoneFromDTO преобразует DTO зоны в доменную модель; пустой риск
// трактуется как низкий
func zoneFromDTO(dto ZoneUpsertRequest) models.Zone {
	risk := models.RiskLevel(dto.Risk)
	if risk == "" {
		risk = models.RiskLow
	}
	return models.Zone{
		ID:    dto.ID,
		Name:  dto.Name,
		Risk:  risk,
		Shape: shapeFromDTO(dto.Shape),
	}
}

func boundaryFromDTO(dto BoundaryUpsertRequest) models.Boundary {
	return models.Boundary{
		ID:    dto.ID,
		Name:  dto.Name,
		Shape: shapeFromDTO(dto.Shape),
	}
}

// incidentParamsFromDTO преобразует SOS-запрос в параметры сервиса
func incidentParamsFromDTO(sessionID string, dto CreateIncidentRequest) service.CreateIncidentParams {
	params := service.CreateIncidentParams{
		SessionID:    sessionID,
		TouristID:    dto.TouristID,
		TouristName:  dto.TouristName,
		TouristPhone: dto.TouristPhone,
		TouristEmail: dto.TouristEmail,
		Description:  dto.Description,
		Media: models.Media{
			Audio: dto.Media.Audio,
			Video: dto.Media.Video,
			Photo: dto.Media.Photo,
		},
		Severity: models.Severity(dto.Severity),
	}
	if dto.Location != nil {
		params.Location = &models.LatLng{Lat: dto.Location.Lat, Lng: dto.Location.Lng}
	}
	return params
}

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	resp := &IncidentResponse{
		ID:           model.ID,
		SessionID:    model.SessionID,
		TouristID:    model.TouristID,
		TouristName:  model.TouristName,
		TouristPhone: model.TouristPhone,
		TouristEmail: model.TouristEmail,
		Description:  model.Description,
		Media: MediaDTO{
			Audio: model.Media.Audio,
			Video: model.Media.Video,
			Photo: model.Media.Photo,
		},
		Severity:  model.Severity,
		Status:    model.Status,
		Officer:   model.Officer,
		Notes:     model.Notes,
		Timeline:  model.Timeline,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
	if model.Location != nil {
		resp.Location = &LatLngDTO{Lat: model.Location.Lat, Lng: model.Location.Lng}
	}
	return resp
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(models []*models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}
