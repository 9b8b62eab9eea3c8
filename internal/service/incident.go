package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/tourist_safety_system/internal/broadcast"
	"github.com/shenikar/tourist_safety_system/internal/config"
	"github.com/shenikar/tourist_safety_system/internal/models"
	"github.com/shenikar/tourist_safety_system/internal/webhook"
	"github.com/sirupsen/logrus"
)

// ErrIncidentNotFound возвращается действиями над отсутствующим инцидентом.
// Это не фатальная ошибка: вызывающая сторона логирует и продолжает.
var ErrIncidentNotFound = errors.New("incident not found")

// IncidentRepository определяет контракт для работы с бд инцидентов
type IncidentRepository interface {
	Create(ctx context.Context, incident *models.Incident) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	Update(ctx context.Context, incident *models.Incident) error
	List(ctx context.Context) ([]*models.Incident, error)
}

// EventPublisher определяет контракт доставки событий подключённым клиентам
type EventPublisher interface {
	Broadcast(eventType string, payload any)
	SendTo(sessionID, eventType string, payload any)
}

// CreateIncidentParams - данные SOS-сигнала туриста
type CreateIncidentParams struct {
	SessionID    string
	TouristID    string
	TouristName  string
	TouristPhone string
	TouristEmail string
	Location     *models.LatLng
	Description  string
	Media        models.Media
	Severity     models.Severity
}

// IncidentService определяет контракт для бизнес-логики управления инцидентами
type IncidentService interface {
	CreateIncident(ctx context.Context, params CreateIncidentParams) (*models.Incident, error)
	AcknowledgeIncident(ctx context.Context, id uuid.UUID, officer models.Officer) (*models.Incident, error)
	ResolveIncident(ctx context.Context, id uuid.UUID, notes string) (*models.Incident, error)
	EscalateIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	ListIncidents(ctx context.Context) ([]*models.Incident, error)
}

// incidentService управляет жизненным циклом new -> acknowledged -> resolved.
// resolved - терминальное состояние; escalate меняет только хронологию.
// Инциденты живут в памяти для событийного тракта и персистятся в бд:
// отказ хранилища логируется, но не лишает дашборды события
// (persist-then-broadcast с доставкой как минимум однажды).
type incidentService struct {
	mu        sync.Mutex
	incidents map[uuid.UUID]*models.Incident

	repo      IncidentRepository
	logger    *logrus.Logger
	cfg       *config.Config
	publisher EventPublisher
	webhooks  webhook.WebhookPublisher
}

func NewIncidentService(repo IncidentRepository, logger *logrus.Logger, cfg *config.Config, publisher EventPublisher, webhooks webhook.WebhookPublisher) IncidentService {
	return &incidentService{
		incidents: make(map[uuid.UUID]*models.Incident),
		repo:      repo,
		logger:    logger,
		cfg:       cfg,
		publisher: publisher,
		webhooks:  webhooks,
	}
}

// CreateIncident создает инцидент по SOS-сигналу туриста
func (s *incidentService) CreateIncident(ctx context.Context, params CreateIncidentParams) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "incident",
		"method":     "CreateIncident",
		"session_id": params.SessionID,
	})
	log.Info("Creating a new SOS incident")

	severity := params.Severity
	if severity == "" {
		severity = models.SeverityHigh
	}

	now := time.Now()
	incident := &models.Incident{
		ID:           uuid.New(),
		SessionID:    params.SessionID,
		TouristID:    params.TouristID,
		TouristName:  params.TouristName,
		TouristPhone: params.TouristPhone,
		TouristEmail: params.TouristEmail,
		Location:     params.Location,
		Description:  params.Description,
		Media:        params.Media,
		Severity:     severity,
		Status:       models.IncidentNew,
		Timeline: []models.TimelineEntry{
			{Event: "SOS created", Time: now, Actor: actorOrDefault(params.TouristName, "Tourist")},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.incidents[incident.ID] = incident
	s.mu.Unlock()

	// Сначала персист, затем рассылка; отказ хранилища не останавливает
	// доставку события дашбордам
	if err := s.repo.Create(ctx, incident); err != nil {
		log.WithError(err).Error("Failed to persist incident, broadcasting anyway")
	}

	snapshot := *incident
	s.publisher.Broadcast(broadcast.EventIncidentCreated, snapshot)
	s.publisher.SendTo(params.SessionID, broadcast.EventSosReceived, map[string]any{"id": incident.ID})
	s.notifyWebhook(ctx, "incident-created", snapshot)

	log.WithField("incident_id", incident.ID).Info("Incident created successfully")
	return &snapshot, nil
}

// AcknowledgeIncident переводит инцидент в статус acknowledged
func (s *incidentService) AcknowledgeIncident(ctx context.Context, id uuid.UUID, officer models.Officer) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "AcknowledgeIncident",
		"incident_id": id,
	})

	return s.mutate(ctx, id, log, func(incident *models.Incident) {
		incident.Status = models.IncidentAcknowledged
		incident.Officer = &officer
		incident.Timeline = append(incident.Timeline, models.TimelineEntry{
			Event: "Incident acknowledged",
			Time:  time.Now(),
			Actor: actorOrDefault(officer.Name, "Officer"),
		})
	})
}

// ResolveIncident переводит инцидент в терминальный статус resolved.
// Повторный resolve оставляет статус и добавляет ещё одну запись
// хронологии: история действий важнее идемпотентности записи.
func (s *incidentService) ResolveIncident(ctx context.Context, id uuid.UUID, notes string) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "ResolveIncident",
		"incident_id": id,
	})

	return s.mutate(ctx, id, log, func(incident *models.Incident) {
		incident.Status = models.IncidentResolved
		incident.Notes = notes
		incident.Timeline = append(incident.Timeline, models.TimelineEntry{
			Event: "Incident resolved",
			Time:  time.Now(),
			Actor: "Officer",
		})
	})
}

// EscalateIncident фиксирует обращение в экстренные службы. Статус не
// меняется: эскалация ортогональна реакции сотрудника, звонок в службы
// может случиться раньше, чем кто-то возьмёт инцидент в работу.
func (s *incidentService) EscalateIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "EscalateIncident",
		"incident_id": id,
	})

	return s.mutate(ctx, id, log, func(incident *models.Incident) {
		incident.Timeline = append(incident.Timeline, models.TimelineEntry{
			Event: "Escalated to emergency services",
			Time:  time.Now(),
			Actor: actorOrDefault(incident.TouristName, "Tourist"),
		})
	})
}

// GetIncident получает инцидент по ID
func (s *incidentService) GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	s.mu.Lock()
	if incident, ok := s.incidents[id]; ok {
		snapshot := *incident
		s.mu.Unlock()
		return &snapshot, nil
	}
	s.mu.Unlock()

	incident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}
	return incident, nil
}

// ListIncidents возвращает все инциденты, новые первыми. Используется
// полной синхронизацией при подключении дашборда. При отказе хранилища
// отдаёт снапшот из памяти, чтобы дашборд не остался пустым.
func (s *incidentService) ListIncidents(ctx context.Context) ([]*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "ListIncidents",
	})

	incidents, err := s.repo.List(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from repository, serving in-memory snapshot")
		return s.memorySnapshot(), nil
	}
	return incidents, nil
}

// mutate применяет изменение к инциденту, персистит и рассылает обновление
func (s *incidentService) mutate(ctx context.Context, id uuid.UUID, log *logrus.Entry, apply func(*models.Incident)) (*models.Incident, error) {
	s.mu.Lock()
	incident, ok := s.incidents[id]
	if !ok {
		s.mu.Unlock()
		log.Warn("Action on unknown incident ignored")
		return nil, ErrIncidentNotFound
	}
	apply(incident)
	incident.UpdatedAt = time.Now()
	snapshot := *incident
	s.mu.Unlock()

	if err := s.repo.Update(ctx, &snapshot); err != nil {
		log.WithError(err).Error("Failed to persist incident update, broadcasting anyway")
	}

	s.publisher.Broadcast(broadcast.EventIncidentUpdated, snapshot)
	s.notifyWebhook(ctx, "incident-updated", snapshot)

	log.WithField("status", snapshot.Status).Info("Incident updated")
	return &snapshot, nil
}

func (s *incidentService) notifyWebhook(ctx context.Context, event string, incident models.Incident) {
	if s.webhooks == nil {
		return
	}
	err := s.webhooks.Publish(ctx, webhook.WebhookEvent{
		Event:     event,
		Incident:  &incident,
		Timestamp: time.Now(),
	})
	if err != nil {
		s.logger.WithError(err).Error("Failed to enqueue incident webhook event")
	}
}

func (s *incidentService) memorySnapshot() []*models.Incident {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.Incident, 0, len(s.incidents))
	for _, incident := range s.incidents {
		snapshot := *incident
		out = append(out, &snapshot)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func actorOrDefault(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}
